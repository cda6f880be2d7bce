package models

import (
	"time"

	"github.com/google/uuid"
)

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Attachment is a file reference carried by a post.
type Attachment struct {
	URL         string `json:"url" bson:"url"`
	Description string `json:"description" bson:"description"`
}

// Reply is the innermost level of the comment tree. Author name fields are a
// snapshot taken when the reply is created and are never refreshed if the
// author later edits their profile.
type Reply struct {
	ID              uuid.UUID   `json:"id"`
	AuthorID        uuid.UUID   `json:"author"`
	AuthorUsername  string      `json:"authorUsername"`
	AuthorFirstName string      `json:"authorFirstName"`
	AuthorLastName  string      `json:"authorLastName"`
	Content         string      `json:"content"`
	CreatedAt       time.Time   `json:"createdAt"`
	IsEdited        bool        `json:"isEdited"`
	Likes           []uuid.UUID `json:"likes"`
}

// Comment is a top-level entry in a post's comment sequence. It owns its
// replies exclusively: removing a comment removes them too.
type Comment struct {
	ID              uuid.UUID   `json:"id"`
	AuthorID        uuid.UUID   `json:"author"`
	AuthorUsername  string      `json:"authorUsername"`
	AuthorFirstName string      `json:"authorFirstName"`
	AuthorLastName  string      `json:"authorLastName"`
	Content         string      `json:"content"`
	CreatedAt       time.Time   `json:"createdAt"`
	IsEdited        bool        `json:"isEdited"`
	Likes           []uuid.UUID `json:"likes"`
	Replies         []Reply     `json:"replies"`
}

// Post is the aggregate root owning the embedded comment/reply tree.
type Post struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	AuthorID    uuid.UUID    `json:"author"`
	CommunityID uuid.UUID    `json:"community"`
	CategoryID  uuid.UUID    `json:"category"`
	Tags        []string     `json:"tags"`
	Likes       []uuid.UUID  `json:"likes"`
	Comments    []Comment    `json:"comments"`
	Status      string       `json:"status"`
	Views       int64        `json:"views"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewComment builds a comment with a freshly assigned id and the author's
// current profile names captured as its snapshot.
func NewComment(author *User, content string) Comment {
	return Comment{
		ID:              uuid.New(),
		AuthorID:        author.ID,
		AuthorUsername:  author.Username,
		AuthorFirstName: author.FirstName,
		AuthorLastName:  author.LastName,
		Content:         content,
		CreatedAt:       time.Now(),
		Likes:           []uuid.UUID{},
		Replies:         []Reply{},
	}
}

// NewReply builds a reply with a freshly assigned id and author snapshot.
func NewReply(author *User, content string) Reply {
	return Reply{
		ID:              uuid.New(),
		AuthorID:        author.ID,
		AuthorUsername:  author.Username,
		AuthorFirstName: author.FirstName,
		AuthorLastName:  author.LastName,
		Content:         content,
		CreatedAt:       time.Now(),
		Likes:           []uuid.UUID{},
	}
}

// FindComment locates a comment by id within the post's sequence. Comments
// are always addressed by id, never by position.
func (p *Post) FindComment(commentID uuid.UUID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// RemoveComment removes a comment and all its replies from the sequence,
// preserving the order of the remaining comments. It reports whether the
// comment was present.
func (p *Post) RemoveComment(commentID uuid.UUID) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// FindReply locates a reply by id within the comment.
func (c *Comment) FindReply(replyID uuid.UUID) *Reply {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			return &c.Replies[i]
		}
	}
	return nil
}

// RemoveReply removes a reply by id, preserving the order of the rest.
func (c *Comment) RemoveReply(replyID uuid.UUID) bool {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			c.Replies = append(c.Replies[:i], c.Replies[i+1:]...)
			return true
		}
	}
	return false
}
