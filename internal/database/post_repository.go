// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tribofy/internal/models"
	"tribofy/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReplyDocument is the innermost element of the embedded comment tree.
type ReplyDocument struct {
	ID              string    `bson:"_id"`
	Author          string    `bson:"author"`
	AuthorUsername  string    `bson:"authorUsername"`
	AuthorFirstName string    `bson:"authorFirstName"`
	AuthorLastName  string    `bson:"authorLastName"`
	Content         string    `bson:"content"`
	CreatedAt       time.Time `bson:"createdAt"`
	IsEdited        bool      `bson:"isEdited"`
	Likes           []string  `bson:"likes"`
}

// CommentDocument is one element of a post's comments array.
type CommentDocument struct {
	ID              string          `bson:"_id"`
	Author          string          `bson:"author"`
	AuthorUsername  string          `bson:"authorUsername"`
	AuthorFirstName string          `bson:"authorFirstName"`
	AuthorLastName  string          `bson:"authorLastName"`
	Content         string          `bson:"content"`
	CreatedAt       time.Time       `bson:"createdAt"`
	IsEdited        bool            `bson:"isEdited"`
	Likes           []string        `bson:"likes"`
	Replies         []ReplyDocument `bson:"replies"`
}

// PostDocument represents the MongoDB schema for a post. Comments and
// replies live inside the post document; they have no collection of their
// own.
type PostDocument struct {
	ID          string              `bson:"_id"`
	Title       string              `bson:"title"`
	Content     string              `bson:"content"`
	Author      string              `bson:"author"`
	Community   string              `bson:"community"`
	Category    string              `bson:"category"`
	Tags        []string            `bson:"tags"`
	Likes       []string            `bson:"likes"`
	Comments    []CommentDocument   `bson:"comments"`
	Status      string              `bson:"status"`
	Views       int64               `bson:"views"`
	Attachments []models.Attachment `bson:"attachments"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToUUIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(ids))
	for i, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ID in database: %v", err)
		}
		out[i] = id
	}
	return out, nil
}

func replyToDocument(reply *models.Reply) ReplyDocument {
	return ReplyDocument{
		ID:              reply.ID.String(),
		Author:          reply.AuthorID.String(),
		AuthorUsername:  reply.AuthorUsername,
		AuthorFirstName: reply.AuthorFirstName,
		AuthorLastName:  reply.AuthorLastName,
		Content:         reply.Content,
		CreatedAt:       reply.CreatedAt,
		IsEdited:        reply.IsEdited,
		Likes:           uuidsToStrings(reply.Likes),
	}
}

func replyDocumentToModel(doc *ReplyDocument) (models.Reply, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return models.Reply{}, fmt.Errorf("invalid reply ID: %v", err)
	}
	authorID, err := uuid.Parse(doc.Author)
	if err != nil {
		return models.Reply{}, fmt.Errorf("invalid author ID: %v", err)
	}
	likes, err := stringsToUUIDs(doc.Likes)
	if err != nil {
		return models.Reply{}, err
	}
	return models.Reply{
		ID:              id,
		AuthorID:        authorID,
		AuthorUsername:  doc.AuthorUsername,
		AuthorFirstName: doc.AuthorFirstName,
		AuthorLastName:  doc.AuthorLastName,
		Content:         doc.Content,
		CreatedAt:       doc.CreatedAt,
		IsEdited:        doc.IsEdited,
		Likes:           likes,
	}, nil
}

func commentToDocument(comment *models.Comment) CommentDocument {
	doc := CommentDocument{
		ID:              comment.ID.String(),
		Author:          comment.AuthorID.String(),
		AuthorUsername:  comment.AuthorUsername,
		AuthorFirstName: comment.AuthorFirstName,
		AuthorLastName:  comment.AuthorLastName,
		Content:         comment.Content,
		CreatedAt:       comment.CreatedAt,
		IsEdited:        comment.IsEdited,
		Likes:           uuidsToStrings(comment.Likes),
		Replies:         make([]ReplyDocument, len(comment.Replies)),
	}
	for i := range comment.Replies {
		doc.Replies[i] = replyToDocument(&comment.Replies[i])
	}
	return doc
}

func commentDocumentToModel(doc *CommentDocument) (models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("invalid comment ID: %v", err)
	}
	authorID, err := uuid.Parse(doc.Author)
	if err != nil {
		return models.Comment{}, fmt.Errorf("invalid author ID: %v", err)
	}
	likes, err := stringsToUUIDs(doc.Likes)
	if err != nil {
		return models.Comment{}, err
	}

	replies := make([]models.Reply, len(doc.Replies))
	for i := range doc.Replies {
		reply, err := replyDocumentToModel(&doc.Replies[i])
		if err != nil {
			return models.Comment{}, err
		}
		replies[i] = reply
	}

	return models.Comment{
		ID:              id,
		AuthorID:        authorID,
		AuthorUsername:  doc.AuthorUsername,
		AuthorFirstName: doc.AuthorFirstName,
		AuthorLastName:  doc.AuthorLastName,
		Content:         doc.Content,
		CreatedAt:       doc.CreatedAt,
		IsEdited:        doc.IsEdited,
		Likes:           likes,
		Replies:         replies,
	}, nil
}

func postToDocument(post *models.Post) *PostDocument {
	doc := &PostDocument{
		ID:          post.ID.String(),
		Title:       post.Title,
		Content:     post.Content,
		Author:      post.AuthorID.String(),
		Community:   post.CommunityID.String(),
		Category:    post.CategoryID.String(),
		Tags:        post.Tags,
		Likes:       uuidsToStrings(post.Likes),
		Comments:    make([]CommentDocument, len(post.Comments)),
		Status:      post.Status,
		Views:       post.Views,
		Attachments: post.Attachments,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	for i := range post.Comments {
		doc.Comments[i] = commentToDocument(&post.Comments[i])
	}
	return doc
}

func postDocumentToModel(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}
	authorID, err := uuid.Parse(doc.Author)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}
	communityID, err := uuid.Parse(doc.Community)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID: %v", err)
	}
	categoryID, err := uuid.Parse(doc.Category)
	if err != nil {
		return nil, fmt.Errorf("invalid category ID: %v", err)
	}
	likes, err := stringsToUUIDs(doc.Likes)
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, len(doc.Comments))
	for i := range doc.Comments {
		comment, err := commentDocumentToModel(&doc.Comments[i])
		if err != nil {
			return nil, err
		}
		comments[i] = comment
	}

	return &models.Post{
		ID:          id,
		Title:       doc.Title,
		Content:     doc.Content,
		AuthorID:    authorID,
		CommunityID: communityID,
		CategoryID:  categoryID,
		Tags:        doc.Tags,
		Likes:       likes,
		Comments:    comments,
		Status:      doc.Status,
		Views:       doc.Views,
		Attachments: doc.Attachments,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// CreatePost inserts a new post document.
func (m *MongoDB) CreatePost(ctx context.Context, post *models.Post) error {
	_, err := m.Posts.InsertOne(ctx, postToDocument(post))
	if err != nil {
		return fmt.Errorf("failed to create post: %v", err)
	}
	return nil
}

// GetPost retrieves a post by its ID, including the full comment tree.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument
	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrPostNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}
	return postDocumentToModel(&doc)
}

// parseSortParam turns a mongoose-style sort string ("-createdAt",
// "title") into a bson sort document.
func parseSortParam(sort string) bson.D {
	field := strings.TrimSpace(sort)
	direction := 1
	if strings.HasPrefix(field, "-") {
		field = strings.TrimPrefix(field, "-")
		direction = -1
	}
	if field == "" {
		field = "createdAt"
		direction = -1
	}
	return bson.D{{Key: field, Value: direction}}
}

// GetPosts returns one page of posts plus the total document count for the
// filter, sorted per the mongoose-style sort parameter.
func (m *MongoDB) GetPosts(ctx context.Context, communityID *uuid.UUID, page, limit int, sort string) ([]*models.Post, int64, error) {
	filter := bson.M{}
	if communityID != nil {
		filter["community"] = communityID.String()
	}

	totalDocs, err := m.Posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %v", err)
	}

	opts := options.Find().
		SetSort(parseSortParam(sort)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch posts: %v", err)
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode post: %v", err)
		}
		post, err := postDocumentToModel(&doc)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}
	return posts, totalDocs, nil
}

// UpdatePost applies a partial update to the post's own fields (never the
// comment tree) and returns the new document.
func (m *MongoDB) UpdatePost(ctx context.Context, id uuid.UUID, fields bson.M) (*models.Post, error) {
	fields["updatedAt"] = time.Now()

	var doc PostDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": fields},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrPostNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}
	return postDocumentToModel(&doc)
}

// DeletePost removes the post and, with it, the entire embedded
// comment/reply tree it owns.
func (m *MongoDB) DeletePost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument
	err := m.Posts.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrPostNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}
	return postDocumentToModel(&doc)
}

// IncrementPostViews bumps the view counter atomically and returns the new
// value. Views only ever go up.
func (m *MongoDB) IncrementPostViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var doc struct {
		Views int64 `bson:"views"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"views": 1})
	err := m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, utils.NewAppError(utils.ErrPostNotFound, "Post not found", err)
	}
	if err != nil {
		return 0, err
	}
	return doc.Views, nil
}

// UpdatePostLike adds or removes a user from the post's like set and
// returns the like count after the write, so concurrent toggles never
// report a count computed from a stale read.
func (m *MongoDB) UpdatePostLike(ctx context.Context, postID, userID uuid.UUID, liked bool) (int, error) {
	var update bson.M
	if liked {
		update = bson.M{"$addToSet": bson.M{"likes": userID.String()}}
	} else {
		update = bson.M{"$pull": bson.M{"likes": userID.String()}}
	}

	var doc struct {
		Likes []string `bson:"likes"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})
	err := m.Posts.FindOneAndUpdate(ctx, bson.M{"_id": postID.String()}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, utils.NewAppError(utils.ErrPostNotFound, "Post not found", err)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update post likes: %v", err)
	}
	return len(doc.Likes), nil
}

// The comment/reply mutations below address embedded elements by id with
// targeted update operators. Two edits to different elements of the same
// post therefore never overwrite each other; the whole document is never
// rewritten for a subtree change.

// PushComment appends a comment to the post's sequence.
func (m *MongoDB) PushComment(ctx context.Context, postID uuid.UUID, comment *models.Comment) error {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID.String()},
		bson.M{"$push": bson.M{"comments": commentToDocument(comment)}},
	)
	if err != nil {
		return fmt.Errorf("failed to add comment: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrPostNotFound, "Post not found", nil)
	}
	return nil
}

// SetCommentContent replaces a comment's content and marks it edited. The
// positional operator resolves the element matched by the filter.
func (m *MongoDB) SetCommentContent(ctx context.Context, postID, commentID uuid.UUID, content string) error {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID.String(), "comments._id": commentID.String()},
		bson.M{"$set": bson.M{
			"comments.$.content":  content,
			"comments.$.isEdited": true,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to edit comment: %v", err)
	}
	if result.MatchedCount == 0 {
		return m.commentNotFoundReason(ctx, postID)
	}
	return nil
}

// PullComment removes a comment (and its replies) from the sequence by id.
func (m *MongoDB) PullComment(ctx context.Context, postID, commentID uuid.UUID) error {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID.String()},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID.String()}}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrPostNotFound, "Post not found", nil)
	}
	if result.ModifiedCount == 0 {
		return utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil)
	}
	return nil
}

// PushReply appends a reply to one comment of the post. The filter requires
// the comment to belong to this post, so a comment id from another post
// fails as not found.
func (m *MongoDB) PushReply(ctx context.Context, postID, commentID uuid.UUID, reply *models.Reply) error {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID.String(), "comments._id": commentID.String()},
		bson.M{"$push": bson.M{"comments.$.replies": replyToDocument(reply)}},
	)
	if err != nil {
		return fmt.Errorf("failed to add reply: %v", err)
	}
	if result.MatchedCount == 0 {
		return m.commentNotFoundReason(ctx, postID)
	}
	return nil
}

// SetReplyContent replaces a reply's content and marks it edited, using
// array filters to address both nesting levels by id.
func (m *MongoDB) SetReplyContent(ctx context.Context, postID, commentID, replyID uuid.UUID, content string) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"c._id": commentID.String()},
			bson.M{"r._id": replyID.String()},
		},
	})
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID.String(), "comments._id": commentID.String()},
		bson.M{"$set": bson.M{
			"comments.$[c].replies.$[r].content":  content,
			"comments.$[c].replies.$[r].isEdited": true,
		}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to edit reply: %v", err)
	}
	if result.MatchedCount == 0 {
		return m.commentNotFoundReason(ctx, postID)
	}
	if result.ModifiedCount == 0 {
		// A $set writing values identical to the stored ones also reports
		// zero modifications, so only fail when the reply is truly absent.
		return m.confirmReplyExists(ctx, postID, commentID, replyID)
	}
	return nil
}

// confirmReplyExists resolves a zero-modification edit: nil when the reply
// is present (the write was a no-op), ErrReplyNotFound when it is missing.
func (m *MongoDB) confirmReplyExists(ctx context.Context, postID, commentID, replyID uuid.UUID) error {
	err := m.Posts.FindOne(ctx,
		bson.M{
			"_id": postID.String(),
			"comments": bson.M{"$elemMatch": bson.M{
				"_id":         commentID.String(),
				"replies._id": replyID.String(),
			}},
		},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err == mongo.ErrNoDocuments {
		return utils.NewAppError(utils.ErrReplyNotFound, "Reply not found", nil)
	}
	return err
}

// PullReply removes a reply from its comment by id.
func (m *MongoDB) PullReply(ctx context.Context, postID, commentID, replyID uuid.UUID) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"c._id": commentID.String()},
		},
	})
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID.String()},
		bson.M{"$pull": bson.M{"comments.$[c].replies": bson.M{"_id": replyID.String()}}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrPostNotFound, "Post not found", nil)
	}
	if result.ModifiedCount == 0 {
		return m.replyNotFoundReason(ctx, postID, commentID)
	}
	return nil
}

// commentNotFoundReason distinguishes a missing post from a missing comment
// after a combined filter matched nothing.
func (m *MongoDB) commentNotFoundReason(ctx context.Context, postID uuid.UUID) error {
	err := m.Posts.FindOne(ctx,
		bson.M{"_id": postID.String()},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err == mongo.ErrNoDocuments {
		return utils.NewAppError(utils.ErrPostNotFound, "Post not found", nil)
	}
	if err != nil {
		return err
	}
	return utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil)
}

// replyNotFoundReason distinguishes a missing comment from a missing reply
// when an array-filtered update modified nothing on an existing post.
func (m *MongoDB) replyNotFoundReason(ctx context.Context, postID, commentID uuid.UUID) error {
	err := m.Posts.FindOne(ctx,
		bson.M{"_id": postID.String(), "comments._id": commentID.String()},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err == mongo.ErrNoDocuments {
		return utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil)
	}
	if err != nil {
		return err
	}
	return utils.NewAppError(utils.ErrReplyNotFound, "Reply not found", nil)
}

// EnsurePostIndexes creates the post listing indexes.
func (m *MongoDB) EnsurePostIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "community", Value: 1},
				{Key: "category", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "author", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	_, err := m.Posts.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %v", err)
	}
	return nil
}
