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

// Message types for community operations
type (
	CreateCommunityMsg struct {
		Name        string
		Description string
		OwnerID     uuid.UUID
		Tags        []string
		IsPrivate   bool
		Icon        string
		CoverImage  string
		Rules       []models.Rule
	}

	GetCommunityMsg struct {
		CommunityID uuid.UUID
	}

	GetCommunityBySlugMsg struct {
		Slug string
	}

	ListCommunitiesMsg struct{}

	UpdateCommunityMsg struct {
		CommunityID   uuid.UUID
		Description   *string
		Tags          []string
		IsPrivate     *bool
		Icon          *string
		CoverImage    *string
		Rules         []models.Rule
		Settings      *models.CommunitySettings
		Customization *models.CommunityCustomization
	}

	DeleteCommunityMsg struct {
		CommunityID uuid.UUID
		RequesterID uuid.UUID
	}
)

// CommunityActor handles community lifecycle operations.
type CommunityActor struct {
	metrics *utils.MetricsCollector
	mongodb *database.MongoDB
}

func NewCommunityActor(metrics *utils.MetricsCollector, mongodb *database.MongoDB) actor.Actor {
	return &CommunityActor{
		metrics: metrics,
		mongodb: mongodb,
	}
}

// Receive handles incoming messages
func (a *CommunityActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommunityActor started")

	case *actor.Stopping:
		log.Printf("CommunityActor stopping")

	case *CreateCommunityMsg:
		a.handleCreateCommunity(context, msg)

	case *GetCommunityMsg:
		a.handleGetCommunity(context, msg)

	case *GetCommunityBySlugMsg:
		a.handleGetCommunityBySlug(context, msg)

	case *ListCommunitiesMsg:
		a.handleListCommunities(context)

	case *UpdateCommunityMsg:
		a.handleUpdateCommunity(context, msg)

	case *DeleteCommunityMsg:
		a.handleDeleteCommunity(context, msg)
	}
}

func (a *CommunityActor) handleCreateCommunity(context actor.Context, msg *CreateCommunityMsg) {
	log.Printf("CommunityActor: Creating community: %s", msg.Name)
	startTime := time.Now()
	ctx := stdctx.Background()

	slug := models.Slugify(msg.Name)

	exists, err := a.mongodb.CommunityExists(ctx, msg.Name, slug)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to check community name", err))
		return
	}
	if exists {
		context.Respond(utils.NewAppError(utils.ErrCommunityExists, "A community with this name already exists", nil))
		return
	}

	now := time.Now()
	community := &models.Community{
		ID:            uuid.New(),
		Name:          msg.Name,
		Description:   msg.Description,
		Slug:          slug,
		OwnerID:       msg.OwnerID,
		Moderators:    []uuid.UUID{msg.OwnerID},
		Members:       []uuid.UUID{},
		Rules:         msg.Rules,
		Categories:    []string{},
		Tags:          msg.Tags,
		IsPrivate:     msg.IsPrivate,
		CoverImage:    msg.CoverImage,
		Icon:          msg.Icon,
		Customization: models.DefaultCustomization(),
		Settings:      models.DefaultSettings(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if community.Rules == nil {
		community.Rules = []models.Rule{}
	}
	if community.Tags == nil {
		community.Tags = []string{}
	}

	if err := a.mongodb.CreateCommunity(ctx, community); err != nil {
		log.Printf("CommunityActor: Failed to create community: %v", err)
		context.Respond(err)
		return
	}

	// The owner joins their own community as a moderator; this also seeds
	// the member counter.
	if _, err := a.mongodb.JoinCommunity(ctx, msg.OwnerID, community, models.RoleModerator); err != nil {
		log.Printf("CommunityActor: Failed to enroll owner in community %s: %v", community.ID, err)
		context.Respond(err)
		return
	}
	community.Members = []uuid.UUID{msg.OwnerID}
	community.Stats.TotalMembers = 1

	a.metrics.AddOperationLatency("create_community", time.Since(startTime))
	log.Printf("CommunityActor: Successfully created community: %s", community.ID)
	context.Respond(community)
}

func (a *CommunityActor) handleGetCommunity(context actor.Context, msg *GetCommunityMsg) {
	ctx := stdctx.Background()
	community, err := a.mongodb.GetCommunity(ctx, msg.CommunityID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(community)
}

func (a *CommunityActor) handleGetCommunityBySlug(context actor.Context, msg *GetCommunityBySlugMsg) {
	ctx := stdctx.Background()
	community, err := a.mongodb.GetCommunityBySlug(ctx, msg.Slug)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(community)
}

func (a *CommunityActor) handleListCommunities(context actor.Context) {
	ctx := stdctx.Background()
	communities, err := a.mongodb.ListCommunities(ctx)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list communities", err))
		return
	}
	context.Respond(communities)
}

func (a *CommunityActor) handleUpdateCommunity(context actor.Context, msg *UpdateCommunityMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	fields := bson.M{}
	if msg.Description != nil {
		fields["description"] = *msg.Description
	}
	if msg.Tags != nil {
		fields["tags"] = msg.Tags
	}
	if msg.IsPrivate != nil {
		fields["isPrivate"] = *msg.IsPrivate
	}
	if msg.Icon != nil {
		fields["icon"] = *msg.Icon
	}
	if msg.CoverImage != nil {
		fields["coverImage"] = *msg.CoverImage
	}
	if msg.Rules != nil {
		fields["rules"] = msg.Rules
	}
	if msg.Settings != nil {
		fields["settings"] = msg.Settings
	}
	if msg.Customization != nil {
		fields["customization"] = msg.Customization
	}
	if len(fields) == 0 {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "No community fields to update", nil))
		return
	}

	community, err := a.mongodb.UpdateCommunity(ctx, msg.CommunityID, fields)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("update_community", time.Since(startTime))
	context.Respond(community)
}

func (a *CommunityActor) handleDeleteCommunity(context actor.Context, msg *DeleteCommunityMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	community, err := a.mongodb.GetCommunity(ctx, msg.CommunityID)
	if err != nil {
		context.Respond(err)
		return
	}
	if community.OwnerID != msg.RequesterID {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Only the community owner can delete it", nil))
		return
	}

	deleted, err := a.mongodb.DeleteCommunity(ctx, msg.CommunityID)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("delete_community", time.Since(startTime))
	log.Printf("CommunityActor: Deleted community %s", deleted.ID)
	context.Respond(deleted)
}
