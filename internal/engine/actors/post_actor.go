package actors

import (
	"log"
	"time"

	stdctx "context"

	"tribofy/internal/database"
	"tribofy/internal/models"
	"tribofy/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Message types for post, comment and reply operations
type (
	CreatePostMsg struct {
		Title       string
		Content     string
		AuthorID    uuid.UUID
		CommunityID uuid.UUID
		CategoryID  uuid.UUID
		Tags        []string
		Status      string
		Attachments []models.Attachment
	}

	GetPostMsg struct {
		PostID    uuid.UUID
		CountView bool
	}

	ListPostsMsg struct {
		CommunityID *uuid.UUID
		Page        int
		Limit       int
		Sort        string
	}

	UpdatePostMsg struct {
		PostID      uuid.UUID
		EditorID    uuid.UUID
		Title       *string
		Content     *string
		CategoryID  *uuid.UUID
		Tags        []string
		Status      *string
		Attachments []models.Attachment
	}

	DeletePostMsg struct {
		PostID      uuid.UUID
		RequesterID uuid.UUID
	}

	LikePostMsg struct {
		PostID uuid.UUID
		UserID uuid.UUID
	}

	AddCommentMsg struct {
		PostID   uuid.UUID
		AuthorID uuid.UUID
		Content  string
	}

	EditCommentMsg struct {
		PostID    uuid.UUID
		CommentID uuid.UUID
		EditorID  uuid.UUID
		Content   string
	}

	DeleteCommentMsg struct {
		PostID      uuid.UUID
		CommentID   uuid.UUID
		RequesterID uuid.UUID
	}

	AddReplyMsg struct {
		PostID    uuid.UUID
		CommentID uuid.UUID
		AuthorID  uuid.UUID
		Content   string
	}

	EditReplyMsg struct {
		PostID    uuid.UUID
		CommentID uuid.UUID
		ReplyID   uuid.UUID
		EditorID  uuid.UUID
		Content   string
	}

	DeleteReplyMsg struct {
		PostID      uuid.UUID
		CommentID   uuid.UUID
		ReplyID     uuid.UUID
		RequesterID uuid.UUID
	}
)

// PostPage is one page of posts plus the totals the listing endpoints
// paginate with.
type PostPage struct {
	Posts     []*models.Post
	TotalDocs int64
}

// LikeResult reports the post's like state after a toggle.
type LikeResult struct {
	Liked     bool
	LikeCount int
}

// PostActor owns posts together with their embedded comment trees.
type PostActor struct {
	metrics *utils.MetricsCollector
	mongodb *database.MongoDB
}

func NewPostActor(metrics *utils.MetricsCollector, mongodb *database.MongoDB) actor.Actor {
	return &PostActor{
		metrics: metrics,
		mongodb: mongodb,
	}
}

// Receive handles incoming messages
func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("PostActor started")

	case *actor.Stopping:
		log.Printf("PostActor stopping")

	case *CreatePostMsg:
		a.handleCreatePost(context, msg)

	case *GetPostMsg:
		a.handleGetPost(context, msg)

	case *ListPostsMsg:
		a.handleListPosts(context, msg)

	case *UpdatePostMsg:
		a.handleUpdatePost(context, msg)

	case *DeletePostMsg:
		a.handleDeletePost(context, msg)

	case *LikePostMsg:
		a.handleLikePost(context, msg)

	case *AddCommentMsg:
		a.handleAddComment(context, msg)

	case *EditCommentMsg:
		a.handleEditComment(context, msg)

	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)

	case *AddReplyMsg:
		a.handleAddReply(context, msg)

	case *EditReplyMsg:
		a.handleEditReply(context, msg)

	case *DeleteReplyMsg:
		a.handleDeleteReply(context, msg)
	}
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	log.Printf("PostActor: Creating post %q in community %s", msg.Title, msg.CommunityID)
	startTime := time.Now()
	ctx := stdctx.Background()

	community, err := a.mongodb.GetCommunity(ctx, msg.CommunityID)
	if err != nil {
		context.Respond(err)
		return
	}

	category, err := a.mongodb.GetCategory(ctx, msg.CategoryID)
	if err != nil {
		context.Respond(err)
		return
	}
	if category.CommunityID != msg.CommunityID {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Category belongs to a different community", nil))
		return
	}

	if community.OwnerID != msg.AuthorID {
		member, err := a.mongodb.IsInCommunity(ctx, msg.AuthorID, msg.CommunityID)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to check membership", err))
			return
		}
		if !member {
			context.Respond(utils.NewAppError(utils.ErrNotMember, "Only community members can post", nil))
			return
		}
		if !community.Settings.AllowMemberPosts {
			context.Respond(utils.NewAppError(utils.ErrForbidden, "This community does not accept member posts", nil))
			return
		}
	}

	status := msg.Status
	if status == "" {
		status = models.StatusPublished
	}
	if status != models.StatusDraft && status != models.StatusPublished && status != models.StatusArchived {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Invalid post status", nil))
		return
	}

	now := time.Now()
	post := &models.Post{
		ID:          uuid.New(),
		Title:       msg.Title,
		Content:     msg.Content,
		AuthorID:    msg.AuthorID,
		CommunityID: msg.CommunityID,
		CategoryID:  msg.CategoryID,
		Tags:        msg.Tags,
		Likes:       []uuid.UUID{},
		Comments:    []models.Comment{},
		Status:      status,
		Attachments: msg.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Attachments == nil {
		post.Attachments = []models.Attachment{}
	}

	if err := a.mongodb.CreatePost(ctx, post); err != nil {
		log.Printf("PostActor: Failed to create post: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to create post", err))
		return
	}

	if err := a.mongodb.IncrementCommunityPosts(ctx, msg.CommunityID, 1); err != nil {
		log.Printf("PostActor: Failed to bump post counter for community %s: %v", msg.CommunityID, err)
	}
	if err := a.mongodb.TouchMembershipActivity(ctx, msg.AuthorID, msg.CommunityID); err != nil {
		log.Printf("PostActor: Failed to refresh membership activity for %s: %v", msg.AuthorID, err)
	}

	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	log.Printf("PostActor: Successfully created post: %s", post.ID)
	context.Respond(post)
}

func (a *PostActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	ctx := stdctx.Background()

	if msg.CountView {
		if _, err := a.mongodb.IncrementPostViews(ctx, msg.PostID); err != nil {
			context.Respond(err)
			return
		}
	}

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(post)
}

func (a *PostActor) handleListPosts(context actor.Context, msg *ListPostsMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	page := msg.Page
	if page < 1 {
		page = 1
	}
	limit := msg.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	posts, totalDocs, err := a.mongodb.GetPosts(ctx, msg.CommunityID, page, limit, msg.Sort)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list posts", err))
		return
	}

	a.metrics.AddOperationLatency("list_posts", time.Since(startTime))
	context.Respond(&PostPage{Posts: posts, TotalDocs: totalDocs})
}

func (a *PostActor) handleUpdatePost(context actor.Context, msg *UpdatePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}
	if post.AuthorID != msg.EditorID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Only the author can edit this post", nil))
		return
	}

	fields := bson.M{}
	if msg.Title != nil {
		fields["title"] = *msg.Title
	}
	if msg.Content != nil {
		fields["content"] = *msg.Content
	}
	if msg.CategoryID != nil {
		category, err := a.mongodb.GetCategory(ctx, *msg.CategoryID)
		if err != nil {
			context.Respond(err)
			return
		}
		if category.CommunityID != post.CommunityID {
			context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Category belongs to a different community", nil))
			return
		}
		fields["category"] = msg.CategoryID.String()
	}
	if msg.Tags != nil {
		fields["tags"] = msg.Tags
	}
	if msg.Status != nil {
		if *msg.Status != models.StatusDraft && *msg.Status != models.StatusPublished && *msg.Status != models.StatusArchived {
			context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Invalid post status", nil))
			return
		}
		fields["status"] = *msg.Status
	}
	if msg.Attachments != nil {
		fields["attachments"] = msg.Attachments
	}
	if len(fields) == 0 {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "No post fields to update", nil))
		return
	}

	updated, err := a.mongodb.UpdatePost(ctx, msg.PostID, fields)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("update_post", time.Since(startTime))
	context.Respond(updated)
}

func (a *PostActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}
	if post.AuthorID != msg.RequesterID {
		community, err := a.mongodb.GetCommunity(ctx, post.CommunityID)
		if err != nil {
			context.Respond(err)
			return
		}
		if community.OwnerID != msg.RequesterID {
			context.Respond(utils.NewAppError(utils.ErrForbidden, "Only the author or community owner can delete this post", nil))
			return
		}
	}

	deleted, err := a.mongodb.DeletePost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	if err := a.mongodb.IncrementCommunityPosts(ctx, deleted.CommunityID, -1); err != nil {
		log.Printf("PostActor: Failed to decrement post counter for community %s: %v", deleted.CommunityID, err)
	}

	a.metrics.AddOperationLatency("delete_post", time.Since(startTime))
	log.Printf("PostActor: Deleted post %s with %d comments", deleted.ID, len(deleted.Comments))
	context.Respond(deleted)
}

func (a *PostActor) handleLikePost(context actor.Context, msg *LikePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	liked := true
	for _, id := range post.Likes {
		if id == msg.UserID {
			liked = false
			break
		}
	}

	count, err := a.mongodb.UpdatePostLike(ctx, msg.PostID, msg.UserID, liked)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("like_post", time.Since(startTime))
	context.Respond(&LikeResult{Liked: liked, LikeCount: count})
}

// loadCommentTarget fetches the post and the community settings gate for
// comment mutations.
func (a *PostActor) loadCommentTarget(ctx stdctx.Context, postID uuid.UUID) (*models.Post, error) {
	post, err := a.mongodb.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	community, err := a.mongodb.GetCommunity(ctx, post.CommunityID)
	if err != nil {
		return nil, err
	}
	if !community.Settings.AllowComments {
		return nil, utils.NewAppError(utils.ErrForbidden, "Comments are disabled in this community", nil)
	}
	return post, nil
}

func (a *PostActor) handleAddComment(context actor.Context, msg *AddCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.loadCommentTarget(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	author, err := a.mongodb.GetUser(ctx, msg.AuthorID)
	if err != nil {
		context.Respond(err)
		return
	}

	comment := models.NewComment(author, msg.Content)
	if err := a.mongodb.PushComment(ctx, post.ID, &comment); err != nil {
		context.Respond(err)
		return
	}

	if err := a.mongodb.TouchMembershipActivity(ctx, msg.AuthorID, post.CommunityID); err != nil {
		log.Printf("PostActor: Failed to refresh membership activity for %s: %v", msg.AuthorID, err)
	}

	a.metrics.AddOperationLatency("add_comment", time.Since(startTime))
	log.Printf("PostActor: User %s commented on post %s", msg.AuthorID, msg.PostID)
	context.Respond(&comment)
}

func (a *PostActor) handleEditComment(context actor.Context, msg *EditCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	comment := post.FindComment(msg.CommentID)
	if comment == nil {
		context.Respond(utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil))
		return
	}
	if comment.AuthorID != msg.EditorID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Only the author can edit this comment", nil))
		return
	}

	if err := a.mongodb.SetCommentContent(ctx, msg.PostID, msg.CommentID, msg.Content); err != nil {
		context.Respond(err)
		return
	}

	comment.Content = msg.Content
	comment.IsEdited = true

	a.metrics.AddOperationLatency("edit_comment", time.Since(startTime))
	context.Respond(comment)
}

func (a *PostActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	comment := post.FindComment(msg.CommentID)
	if comment == nil {
		context.Respond(utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil))
		return
	}
	if comment.AuthorID != msg.RequesterID && post.AuthorID != msg.RequesterID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Only the comment author or post author can delete this comment", nil))
		return
	}

	if err := a.mongodb.PullComment(ctx, msg.PostID, msg.CommentID); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("delete_comment", time.Since(startTime))
	log.Printf("PostActor: Deleted comment %s and its %d replies from post %s", msg.CommentID, len(comment.Replies), msg.PostID)
	context.Respond(comment)
}

func (a *PostActor) handleAddReply(context actor.Context, msg *AddReplyMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.loadCommentTarget(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	if post.FindComment(msg.CommentID) == nil {
		context.Respond(utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil))
		return
	}

	author, err := a.mongodb.GetUser(ctx, msg.AuthorID)
	if err != nil {
		context.Respond(err)
		return
	}

	reply := models.NewReply(author, msg.Content)
	if err := a.mongodb.PushReply(ctx, msg.PostID, msg.CommentID, &reply); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("add_reply", time.Since(startTime))
	log.Printf("PostActor: User %s replied to comment %s on post %s", msg.AuthorID, msg.CommentID, msg.PostID)
	context.Respond(&reply)
}

func (a *PostActor) handleEditReply(context actor.Context, msg *EditReplyMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	comment := post.FindComment(msg.CommentID)
	if comment == nil {
		context.Respond(utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil))
		return
	}
	reply := comment.FindReply(msg.ReplyID)
	if reply == nil {
		context.Respond(utils.NewAppError(utils.ErrReplyNotFound, "Reply not found", nil))
		return
	}
	if reply.AuthorID != msg.EditorID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Only the author can edit this reply", nil))
		return
	}

	if err := a.mongodb.SetReplyContent(ctx, msg.PostID, msg.CommentID, msg.ReplyID, msg.Content); err != nil {
		context.Respond(err)
		return
	}

	reply.Content = msg.Content
	reply.IsEdited = true

	a.metrics.AddOperationLatency("edit_reply", time.Since(startTime))
	context.Respond(reply)
}

func (a *PostActor) handleDeleteReply(context actor.Context, msg *DeleteReplyMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.mongodb.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}

	comment := post.FindComment(msg.CommentID)
	if comment == nil {
		context.Respond(utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil))
		return
	}
	reply := comment.FindReply(msg.ReplyID)
	if reply == nil {
		context.Respond(utils.NewAppError(utils.ErrReplyNotFound, "Reply not found", nil))
		return
	}
	if reply.AuthorID != msg.RequesterID && post.AuthorID != msg.RequesterID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Only the reply author or post author can delete this reply", nil))
		return
	}

	if err := a.mongodb.PullReply(ctx, msg.PostID, msg.CommentID, msg.ReplyID); err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("delete_reply", time.Since(startTime))
	context.Respond(reply)
}
