package actors

import (
	"log"
	"strings"
	"time"

	stdctx "context"

	"tribofy/internal/database"
	"tribofy/internal/models"
	"tribofy/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// Message types for user operations
type (
	RegisterUserMsg struct {
		Username  string // optional, generated from the name when empty
		FirstName string
		LastName  string
		Email     string
		Password  string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetUserMsg struct {
		UserID uuid.UUID
	}

	ListUsersMsg struct{}

	UpdateProfileMsg struct {
		UserID         uuid.UUID
		FirstName      *string
		LastName       *string
		Bio            *string
		ProfilePicture *string
	}

	DeleteUserMsg struct {
		UserID uuid.UUID
	}

	JoinCommunityMsg struct {
		UserID      uuid.UUID
		CommunityID uuid.UUID
	}

	LeaveCommunityMsg struct {
		UserID      uuid.UUID
		CommunityID uuid.UUID
	}

	IsInCommunityMsg struct {
		UserID      uuid.UUID
		CommunityID uuid.UUID
	}
)

// MembershipStatus answers IsInCommunityMsg.
type MembershipStatus struct {
	IsMember bool
}

// UserActor handles registration, authentication and membership operations.
type UserActor struct {
	metrics *utils.MetricsCollector
	mongodb *database.MongoDB
}

func NewUserActor(metrics *utils.MetricsCollector, mongodb *database.MongoDB) actor.Actor {
	return &UserActor{
		metrics: metrics,
		mongodb: mongodb,
	}
}

// Receive handles incoming messages
func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("UserActor started")

	case *actor.Stopping:
		log.Printf("UserActor stopping")

	case *RegisterUserMsg:
		a.handleRegister(context, msg)

	case *LoginMsg:
		a.handleLogin(context, msg)

	case *GetUserMsg:
		a.handleGetUser(context, msg)

	case *ListUsersMsg:
		a.handleListUsers(context)

	case *UpdateProfileMsg:
		a.handleUpdateProfile(context, msg)

	case *DeleteUserMsg:
		a.handleDeleteUser(context, msg)

	case *JoinCommunityMsg:
		a.handleJoinCommunity(context, msg)

	case *LeaveCommunityMsg:
		a.handleLeaveCommunity(context, msg)

	case *IsInCommunityMsg:
		a.handleIsInCommunity(context, msg)
	}
}

func (a *UserActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	email := strings.ToLower(strings.TrimSpace(msg.Email))

	existing, err := a.mongodb.GetUserByEmail(ctx, email)
	if err != nil && !utils.IsNotFound(err) {
		log.Printf("UserActor: Email lookup failed: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to create user", err))
		return
	}
	if existing != nil {
		log.Printf("UserActor: Email already registered: %s", email)
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
		return
	}

	username := strings.ToLower(strings.TrimSpace(msg.Username))
	if username != "" {
		taken, err := a.mongodb.UsernameExists(ctx, username)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to create user", err))
			return
		}
		if taken {
			context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Username already taken", nil))
			return
		}
	} else {
		generated, err := models.GenerateUsername(msg.FirstName, msg.LastName, func(candidate string) (bool, error) {
			return a.mongodb.UsernameExists(ctx, candidate)
		})
		if err != nil {
			log.Printf("UserActor: Username generation failed: %v", err)
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to create user", err))
			return
		}
		username = generated
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(msg.Password), bcrypt.DefaultCost)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to create user", err))
		return
	}

	now := time.Now()
	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: string(hashed),
		FirstName:      msg.FirstName,
		LastName:       msg.LastName,
		Communities:    []models.CommunityMembership{},
		Role:           models.RoleUser,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.mongodb.CreateUser(ctx, user); err != nil {
		log.Printf("UserActor: Failed to create user: %v", err)
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	log.Printf("UserActor: Registered user %s as %s", user.ID, user.Username)
	context.Respond(user)
}

func (a *UserActor) handleLogin(context actor.Context, msg *LoginMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	user, err := a.mongodb.GetUserByEmail(ctx, msg.Email)
	if err != nil {
		// Same response as a bad password so login probing learns nothing.
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Invalid credentials", nil))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Invalid credentials", nil))
		return
	}

	if err := a.mongodb.UpdateUserLastLogin(ctx, user.ID); err != nil {
		log.Printf("UserActor: Failed to record last login for %s: %v", user.ID, err)
	}

	a.metrics.AddOperationLatency("login", time.Since(startTime))
	log.Printf("UserActor: User %s logged in", user.ID)
	context.Respond(user)
}

func (a *UserActor) handleGetUser(context actor.Context, msg *GetUserMsg) {
	ctx := stdctx.Background()
	user, err := a.mongodb.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(user)
}

func (a *UserActor) handleListUsers(context actor.Context) {
	ctx := stdctx.Background()
	users, err := a.mongodb.ListUsers(ctx)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list users", err))
		return
	}
	context.Respond(users)
}

func (a *UserActor) handleUpdateProfile(context actor.Context, msg *UpdateProfileMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	fields := bson.M{}
	if msg.FirstName != nil {
		fields["firstName"] = *msg.FirstName
	}
	if msg.LastName != nil {
		fields["lastName"] = *msg.LastName
	}
	if msg.Bio != nil {
		fields["bio"] = *msg.Bio
	}
	if msg.ProfilePicture != nil {
		fields["profilePicture"] = *msg.ProfilePicture
	}
	if len(fields) == 0 {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "No profile fields to update", nil))
		return
	}

	user, err := a.mongodb.UpdateUserProfile(ctx, msg.UserID, fields)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("update_profile", time.Since(startTime))
	context.Respond(user)
}

func (a *UserActor) handleDeleteUser(context actor.Context, msg *DeleteUserMsg) {
	ctx := stdctx.Background()
	user, err := a.mongodb.DeleteUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}
	log.Printf("UserActor: Deleted user %s", user.ID)
	context.Respond(user)
}

func (a *UserActor) handleJoinCommunity(context actor.Context, msg *JoinCommunityMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	community, err := a.mongodb.GetCommunity(ctx, msg.CommunityID)
	if err != nil {
		context.Respond(err)
		return
	}

	user, err := a.mongodb.JoinCommunity(ctx, msg.UserID, community, models.RoleMember)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("join_community", time.Since(startTime))
	log.Printf("UserActor: User %s joined community %s", msg.UserID, msg.CommunityID)
	context.Respond(user)
}

func (a *UserActor) handleLeaveCommunity(context actor.Context, msg *LeaveCommunityMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	user, err := a.mongodb.LeaveCommunity(ctx, msg.UserID, msg.CommunityID)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("leave_community", time.Since(startTime))
	log.Printf("UserActor: User %s left community %s", msg.UserID, msg.CommunityID)
	context.Respond(user)
}

func (a *UserActor) handleIsInCommunity(context actor.Context, msg *IsInCommunityMsg) {
	ctx := stdctx.Background()
	member, err := a.mongodb.IsInCommunity(ctx, msg.UserID, msg.CommunityID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to check membership", err))
		return
	}
	context.Respond(&MembershipStatus{IsMember: member})
}
