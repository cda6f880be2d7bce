package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthor() *User {
	return &User{
		ID:        uuid.New(),
		Username:  "gatorfan",
		FirstName: "Albert",
		LastName:  "Gator",
	}
}

func TestNewCommentSnapshotsAuthor(t *testing.T) {
	author := testAuthor()

	comment := NewComment(author, "hello swamp")

	assert.NotEqual(t, uuid.Nil, comment.ID)
	assert.Equal(t, author.ID, comment.AuthorID)
	assert.Equal(t, "gatorfan", comment.AuthorUsername)
	assert.Equal(t, "Albert", comment.AuthorFirstName)
	assert.Equal(t, "Gator", comment.AuthorLastName)
	assert.Equal(t, "hello swamp", comment.Content)
	assert.False(t, comment.IsEdited)
	assert.NotNil(t, comment.Likes)
	assert.NotNil(t, comment.Replies)

	// The snapshot must not follow later profile edits.
	author.Username = "renamed"
	assert.Equal(t, "gatorfan", comment.AuthorUsername)
}

func TestFindCommentByID(t *testing.T) {
	author := testAuthor()
	post := &Post{}
	first := NewComment(author, "first")
	second := NewComment(author, "second")
	post.Comments = []Comment{first, second}

	found := post.FindComment(second.ID)
	assert.NotNil(t, found)
	assert.Equal(t, "second", found.Content)

	// The pointer must alias the post's slice so edits stick.
	found.Content = "edited"
	assert.Equal(t, "edited", post.Comments[1].Content)

	assert.Nil(t, post.FindComment(uuid.New()))
}

func TestRemoveCommentPreservesOrder(t *testing.T) {
	author := testAuthor()
	post := &Post{}
	a := NewComment(author, "a")
	b := NewComment(author, "b")
	c := NewComment(author, "c")
	post.Comments = []Comment{a, b, c}

	assert.True(t, post.RemoveComment(b.ID))
	assert.Len(t, post.Comments, 2)
	assert.Equal(t, "a", post.Comments[0].Content)
	assert.Equal(t, "c", post.Comments[1].Content)

	assert.False(t, post.RemoveComment(b.ID))
	assert.Len(t, post.Comments, 2)
}

func TestCommentAddEditDeleteRestoresLength(t *testing.T) {
	author := testAuthor()
	post := &Post{Comments: []Comment{NewComment(author, "existing")}}
	before := len(post.Comments)

	added := NewComment(author, "temporary")
	post.Comments = append(post.Comments, added)

	edited := post.FindComment(added.ID)
	require.NotNil(t, edited)
	edited.Content = "changed"
	edited.IsEdited = true

	assert.True(t, post.RemoveComment(added.ID))
	assert.Len(t, post.Comments, before)
	assert.Equal(t, "existing", post.Comments[0].Content)
}

func TestReplyLifecycle(t *testing.T) {
	author := testAuthor()
	comment := NewComment(author, "parent")
	first := NewReply(author, "reply one")
	second := NewReply(author, "reply two")
	comment.Replies = []Reply{first, second}

	found := comment.FindReply(first.ID)
	assert.NotNil(t, found)
	assert.Equal(t, "reply one", found.Content)
	assert.Nil(t, comment.FindReply(uuid.New()))

	assert.True(t, comment.RemoveReply(first.ID))
	assert.Len(t, comment.Replies, 1)
	assert.Equal(t, "reply two", comment.Replies[0].Content)
	assert.False(t, comment.RemoveReply(first.ID))
}

func TestMembershipFor(t *testing.T) {
	communityID := uuid.New()
	user := &User{
		Communities: []CommunityMembership{
			{CommunityID: uuid.New(), Role: RoleMember},
			{CommunityID: communityID, Role: RoleModerator},
		},
	}

	membership := user.MembershipFor(communityID)
	assert.NotNil(t, membership)
	assert.Equal(t, RoleModerator, membership.Role)

	assert.Nil(t, user.MembershipFor(uuid.New()))
}
