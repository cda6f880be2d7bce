package handlers

import (
	"net/http"
	"strconv"

	"tribofy/internal/engine/actors"
	"tribofy/internal/models"
	"tribofy/internal/utils"
	ws "tribofy/internal/websocket"

	"github.com/google/uuid"
)

// CreatePostRequest represents a request to create a post
type CreatePostRequest struct {
	Title       string              `json:"title" validate:"required,min=1,max=300"`
	Content     string              `json:"content" validate:"required,min=1,max=40000"`
	CommunityID uuid.UUID           `json:"community" validate:"required"`
	CategoryID  uuid.UUID           `json:"category" validate:"required"`
	Tags        []string            `json:"tags" validate:"max=10,dive,min=1,max=30"`
	Status      string              `json:"status" validate:"omitempty,oneof=draft published archived"`
	Attachments []models.Attachment `json:"attachments" validate:"max=10"`
}

// UpdatePostRequest represents a partial post update
type UpdatePostRequest struct {
	Title       *string             `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Content     *string             `json:"content,omitempty" validate:"omitempty,min=1,max=40000"`
	CategoryID  *uuid.UUID          `json:"category,omitempty"`
	Tags        []string            `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
	Status      *string             `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
	Attachments []models.Attachment `json:"attachments,omitempty" validate:"omitempty,max=10"`
}

// PostListResponse is the pagination envelope for post listings.
type PostListResponse struct {
	Items       []*models.Post `json:"items"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalDocs   int64          `json:"totalDocs"`
	HasNextPage bool           `json:"hasNextPage"`
	HasPrevPage bool           `json:"hasPrevPage"`
}

// HandleCreatePost handles requests to create a post
func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req CreatePostRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, err := s.request(s.Engine.GetPostActor(), &actors.CreatePostMsg{
			Title:       req.Title,
			Content:     req.Content,
			AuthorID:    authorID,
			CommunityID: req.CommunityID,
			CategoryID:  req.CategoryID,
			Tags:        req.Tags,
			Status:      req.Status,
			Attachments: req.Attachments,
		})
		if err != nil {
			s.respondError(w, err)
			return
		}

		if post, ok := result.(*models.Post); ok && post.Status == models.StatusPublished {
			s.Hub.Publish(ws.EventPostCreated, post.CommunityID, post)
		}
		respondJSON(w, http.StatusCreated, result)
	}
}

// HandleGetPost handles requests to fetch a post; each fetch counts a view
func (s *Server) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathUUID(r, "postId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetPostActor(), &actors.GetPostMsg{
			PostID:    postID,
			CountView: true,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// listPosts serves both the global feed and per-community listings.
func (s *Server) listPosts(w http.ResponseWriter, r *http.Request, communityID *uuid.UUID) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	sort := r.URL.Query().Get("sort")
	if sort == "" {
		sort = "-createdAt"
	}

	result, err := s.request(s.Engine.GetPostActor(), &actors.ListPostsMsg{
		CommunityID: communityID,
		Page:        page,
		Limit:       limit,
		Sort:        sort,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	pageResult := result.(*actors.PostPage)
	totalPages := int((pageResult.TotalDocs + int64(limit) - 1) / int64(limit))
	items := pageResult.Posts
	if items == nil {
		items = []*models.Post{}
	}

	respondJSON(w, http.StatusOK, &PostListResponse{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalDocs:   pageResult.TotalDocs,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && totalPages > 0,
	})
}

// HandleListPosts handles requests for the global post feed
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.listPosts(w, r, nil)
	}
}

// HandleListCommunityPosts handles requests for one community's posts
func (s *Server) HandleListCommunityPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.listPosts(w, r, &communityID)
	}
}

// HandleUpdatePost handles requests to edit a post
func (s *Server) HandleUpdatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editorID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		postID, err := pathUUID(r, "postId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req UpdatePostRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetPostActor(), &actors.UpdatePostMsg{
			PostID:      postID,
			EditorID:    editorID,
			Title:       req.Title,
			Content:     req.Content,
			CategoryID:  req.CategoryID,
			Tags:        req.Tags,
			Status:      req.Status,
			Attachments: req.Attachments,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDeletePost handles requests to delete a post
func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		postID, err := pathUUID(r, "postId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		if _, reqErr := s.request(s.Engine.GetPostActor(), &actors.DeletePostMsg{
			PostID:      postID,
			RequesterID: requesterID,
		}); reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// HandleLikePost handles requests to toggle the caller's like on a post
func (s *Server) HandleLikePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		postID, err := pathUUID(r, "postId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetPostActor(), &actors.LikePostMsg{
			PostID: postID,
			UserID: userID,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}

		likeResult := result.(*actors.LikeResult)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"liked":     likeResult.Liked,
			"likeCount": likeResult.LikeCount,
		})
	}
}
