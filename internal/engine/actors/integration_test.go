package actors

import (
	"fmt"
	"os"
	"testing"
	"time"

	stdctx "context"

	"tribofy/internal/database"
	"tribofy/internal/models"
	"tribofy/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive the actors against a real MongoDB (a replica set, since
// membership uses transactions). They skip when MONGO_URL is unset.

func newTestDB(t *testing.T) *database.MongoDB {
	t.Helper()
	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		t.Skip("MONGO_URL not set; skipping live database test")
	}

	name := fmt.Sprintf("tribofy_test_%d", time.Now().UnixNano())
	db, err := database.NewMongoDB(uri, name)
	require.NoError(t, err)

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.EnsureIndexes(ctx))

	t.Cleanup(func() {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 10*time.Second)
		defer cancel()
		_ = db.Client.Database(name).Drop(ctx)
		_ = db.Close(ctx)
	})
	return db
}

type testActors struct {
	system    *actor.ActorSystem
	user      *actor.PID
	community *actor.PID
	category  *actor.PID
	post      *actor.PID
}

func spawnTestActors(db *database.MongoDB) *testActors {
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	root := system.Root

	return &testActors{
		system: system,
		user: root.Spawn(actor.PropsFromProducer(func() actor.Actor {
			return NewUserActor(metrics, db)
		})),
		community: root.Spawn(actor.PropsFromProducer(func() actor.Actor {
			return NewCommunityActor(metrics, db)
		})),
		category: root.Spawn(actor.PropsFromProducer(func() actor.Actor {
			return NewCategoryActor(metrics, db)
		})),
		post: root.Spawn(actor.PropsFromProducer(func() actor.Actor {
			return NewPostActor(metrics, db)
		})),
	}
}

func (ta *testActors) ask(t *testing.T, pid *actor.PID, msg interface{}) interface{} {
	t.Helper()
	result, err := ta.system.Root.RequestFuture(pid, msg, 5*time.Second).Result()
	require.NoError(t, err)
	return result
}

func (ta *testActors) registerUser(t *testing.T, email string) *models.User {
	t.Helper()
	result := ta.ask(t, ta.user, &RegisterUserMsg{
		FirstName: "Albert",
		LastName:  "Gator",
		Email:     email,
		Password:  "password123",
	})
	user, ok := result.(*models.User)
	require.True(t, ok, "registration returned %T: %v", result, result)
	return user
}

func (ta *testActors) createCommunity(t *testing.T, ownerID uuid.UUID, name string) *models.Community {
	t.Helper()
	result := ta.ask(t, ta.community, &CreateCommunityMsg{
		Name:    name,
		OwnerID: ownerID,
	})
	community, ok := result.(*models.Community)
	require.True(t, ok, "community creation returned %T: %v", result, result)
	return community
}

func (ta *testActors) getCommunity(t *testing.T, id uuid.UUID) *models.Community {
	t.Helper()
	result := ta.ask(t, ta.community, &GetCommunityMsg{CommunityID: id})
	community, ok := result.(*models.Community)
	require.True(t, ok, "community fetch returned %T: %v", result, result)
	return community
}

func TestJoinCommunityIncrementsCounterOnce(t *testing.T) {
	db := newTestDB(t)
	ta := spawnTestActors(db)

	owner := ta.registerUser(t, "owner@example.com")
	joiner := ta.registerUser(t, "joiner@example.com")
	community := ta.createCommunity(t, owner.ID, "Gator Talk")

	// The owner is enrolled as moderator at creation time.
	assert.Equal(t, 1, ta.getCommunity(t, community.ID).Stats.TotalMembers)

	joinResult := ta.ask(t, ta.user, &JoinCommunityMsg{UserID: joiner.ID, CommunityID: community.ID})
	joined, ok := joinResult.(*models.User)
	require.True(t, ok, "join returned %T: %v", joinResult, joinResult)
	require.NotNil(t, joined.MembershipFor(community.ID))
	assert.Equal(t, 2, ta.getCommunity(t, community.ID).Stats.TotalMembers)

	// A second join must fail as a conflict and leave the counter alone.
	again := ta.ask(t, ta.user, &JoinCommunityMsg{UserID: joiner.ID, CommunityID: community.ID})
	appErr, ok := again.(*utils.AppError)
	require.True(t, ok, "duplicate join returned %T: %v", again, again)
	assert.Equal(t, utils.ErrAlreadyMember, appErr.Code)
	assert.Equal(t, 2, ta.getCommunity(t, community.ID).Stats.TotalMembers)
}

func TestEditReplyWithUnchangedContent(t *testing.T) {
	db := newTestDB(t)
	ta := spawnTestActors(db)
	ctx := stdctx.Background()

	owner := ta.registerUser(t, "author@example.com")
	community := ta.createCommunity(t, owner.ID, "Reply Editing")

	catResult := ta.ask(t, ta.category, &CreateCategoryMsg{Name: "General", CommunityID: community.ID})
	category, ok := catResult.(*models.Category)
	require.True(t, ok, "category creation returned %T: %v", catResult, catResult)

	postResult := ta.ask(t, ta.post, &CreatePostMsg{
		Title:       "First post",
		Content:     "Hello",
		AuthorID:    owner.ID,
		CommunityID: community.ID,
		CategoryID:  category.ID,
	})
	post, ok := postResult.(*models.Post)
	require.True(t, ok, "post creation returned %T: %v", postResult, postResult)

	commentResult := ta.ask(t, ta.post, &AddCommentMsg{PostID: post.ID, AuthorID: owner.ID, Content: "a comment"})
	comment, ok := commentResult.(*models.Comment)
	require.True(t, ok, "comment returned %T: %v", commentResult, commentResult)

	replyResult := ta.ask(t, ta.post, &AddReplyMsg{PostID: post.ID, CommentID: comment.ID, AuthorID: owner.ID, Content: "a reply"})
	reply, ok := replyResult.(*models.Reply)
	require.True(t, ok, "reply returned %T: %v", replyResult, replyResult)

	edit := &EditReplyMsg{
		PostID:    post.ID,
		CommentID: comment.ID,
		ReplyID:   reply.ID,
		EditorID:  owner.ID,
		Content:   "edited once",
	}
	first := ta.ask(t, ta.post, edit)
	edited, ok := first.(*models.Reply)
	require.True(t, ok, "edit returned %T: %v", first, first)
	assert.True(t, edited.IsEdited)

	// Re-submitting identical content modifies nothing in Mongo but is
	// still a successful edit, not a missing reply.
	second := ta.ask(t, ta.post, edit)
	edited, ok = second.(*models.Reply)
	require.True(t, ok, "unchanged edit returned %T: %v", second, second)
	assert.Equal(t, "edited once", edited.Content)

	err := db.SetReplyContent(ctx, post.ID, comment.ID, uuid.New(), "whatever")
	assert.True(t, utils.IsErrorCode(err, utils.ErrReplyNotFound), "expected reply not found, got %v", err)
}

func TestLikeCountTracksLikeSet(t *testing.T) {
	db := newTestDB(t)
	ta := spawnTestActors(db)

	owner := ta.registerUser(t, "liker1@example.com")
	other := ta.registerUser(t, "liker2@example.com")
	community := ta.createCommunity(t, owner.ID, "Like Counting")

	catResult := ta.ask(t, ta.category, &CreateCategoryMsg{Name: "General", CommunityID: community.ID})
	category, ok := catResult.(*models.Category)
	require.True(t, ok, "category creation returned %T: %v", catResult, catResult)

	postResult := ta.ask(t, ta.post, &CreatePostMsg{
		Title:       "Likeable",
		Content:     "Hello",
		AuthorID:    owner.ID,
		CommunityID: community.ID,
		CategoryID:  category.ID,
	})
	post, ok := postResult.(*models.Post)
	require.True(t, ok, "post creation returned %T: %v", postResult, postResult)

	like := func(userID uuid.UUID) *LikeResult {
		result := ta.ask(t, ta.post, &LikePostMsg{PostID: post.ID, UserID: userID})
		lr, ok := result.(*LikeResult)
		require.True(t, ok, "like returned %T: %v", result, result)
		return lr
	}

	first := like(owner.ID)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.LikeCount)

	second := like(other.ID)
	assert.True(t, second.Liked)
	assert.Equal(t, 2, second.LikeCount)

	// Toggling again removes the caller's like; the count reflects the
	// stored set after the write.
	third := like(owner.ID)
	assert.False(t, third.Liked)
	assert.Equal(t, 1, third.LikeCount)
}

func TestRegisterFailsWhenStoreUnavailable(t *testing.T) {
	db := newTestDB(t)

	closeCtx, cancel := stdctx.WithTimeout(stdctx.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, db.Close(closeCtx))

	ta := spawnTestActors(db)
	result := ta.ask(t, ta.user, &RegisterUserMsg{
		FirstName: "Mary",
		LastName:  "Vanderberg",
		Email:     "unreachable@example.com",
		Password:  "password123",
	})

	// A broken store must surface as a database error, never as a
	// successful registration.
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "registration over a closed client returned %T: %v", result, result)
	assert.Equal(t, utils.ErrDatabase, appErr.Code)
}
