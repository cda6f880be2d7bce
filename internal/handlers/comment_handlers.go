package handlers

import (
	stdctx "context"
	"net/http"

	"tribofy/internal/engine/actors"
	"tribofy/internal/utils"
	ws "tribofy/internal/websocket"

	"github.com/google/uuid"
)

// CommentRequest carries the content for a new or edited comment or reply.
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// commentTarget resolves the ids addressing a comment, and optionally a
// reply, from the request path.
type commentTarget struct {
	PostID    uuid.UUID
	CommentID uuid.UUID
	ReplyID   uuid.UUID
}

func (s *Server) commentPath(r *http.Request, withReply bool) (*commentTarget, error) {
	target := &commentTarget{}
	var err error
	if target.PostID, err = pathUUID(r, "postId"); err != nil {
		return nil, err
	}
	if target.CommentID, err = pathUUID(r, "commentId"); err != nil {
		return nil, err
	}
	if withReply {
		if target.ReplyID, err = pathUUID(r, "replyId"); err != nil {
			return nil, err
		}
	}
	return target, nil
}

// HandleAddComment handles requests to comment on a post
func (s *Server) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		postID, err := pathUUID(r, "postId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req CommentRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetPostActor(), &actors.AddCommentMsg{
			PostID:   postID,
			AuthorID: authorID,
			Content:  req.Content,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}

		s.publishCommentEvent(ws.EventCommentAdded, postID, result)
		respondJSON(w, http.StatusCreated, result)
	}
}

// HandleEditComment handles requests to edit a comment
func (s *Server) HandleEditComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editorID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		target, err := s.commentPath(r, false)
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req CommentRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetPostActor(), &actors.EditCommentMsg{
			PostID:    target.PostID,
			CommentID: target.CommentID,
			EditorID:  editorID,
			Content:   req.Content,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDeleteComment handles requests to delete a comment and its replies
func (s *Server) HandleDeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		target, err := s.commentPath(r, false)
		if err != nil {
			s.respondError(w, err)
			return
		}

		if _, reqErr := s.request(s.Engine.GetPostActor(), &actors.DeleteCommentMsg{
			PostID:      target.PostID,
			CommentID:   target.CommentID,
			RequesterID: requesterID,
		}); reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// HandleAddReply handles requests to reply to a comment
func (s *Server) HandleAddReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		target, err := s.commentPath(r, false)
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req CommentRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetPostActor(), &actors.AddReplyMsg{
			PostID:    target.PostID,
			CommentID: target.CommentID,
			AuthorID:  authorID,
			Content:   req.Content,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}

		s.publishCommentEvent(ws.EventReplyAdded, target.PostID, result)
		respondJSON(w, http.StatusCreated, result)
	}
}

// HandleEditReply handles requests to edit a reply
func (s *Server) HandleEditReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editorID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		target, err := s.commentPath(r, true)
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req CommentRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetPostActor(), &actors.EditReplyMsg{
			PostID:    target.PostID,
			CommentID: target.CommentID,
			ReplyID:   target.ReplyID,
			EditorID:  editorID,
			Content:   req.Content,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDeleteReply handles requests to delete a reply
func (s *Server) HandleDeleteReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		target, err := s.commentPath(r, true)
		if err != nil {
			s.respondError(w, err)
			return
		}

		if _, reqErr := s.request(s.Engine.GetPostActor(), &actors.DeleteReplyMsg{
			PostID:      target.PostID,
			CommentID:   target.CommentID,
			ReplyID:     target.ReplyID,
			RequesterID: requesterID,
		}); reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// publishCommentEvent pushes a comment or reply event to the post's
// community subscribers. The community id comes from a post lookup; a miss
// just skips the notification.
func (s *Server) publishCommentEvent(eventType string, postID uuid.UUID, payload interface{}) {
	post, err := s.MongoDB.GetPost(stdctx.Background(), postID)
	if err != nil {
		return
	}
	s.Hub.Publish(eventType, post.CommunityID, map[string]interface{}{
		"postId": postID,
		"item":   payload,
	})
}
