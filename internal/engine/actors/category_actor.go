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

// Message types for category operations
type (
	CreateCategoryMsg struct {
		Name        string
		Description string
		CommunityID uuid.UUID
		ParentID    *uuid.UUID
	}

	GetCategoryMsg struct {
		CategoryID uuid.UUID
	}

	ListCategoriesMsg struct {
		CommunityID *uuid.UUID
	}

	GetCategoryTreeMsg struct {
		CommunityID uuid.UUID
	}

	UpdateCategoryMsg struct {
		CategoryID  uuid.UUID
		Name        *string
		Description *string
		ParentID    *uuid.UUID
		ClearParent bool
	}

	DeleteCategoryMsg struct {
		CategoryID uuid.UUID
	}
)

// CategoryActor handles the community-scoped category forest.
type CategoryActor struct {
	metrics *utils.MetricsCollector
	mongodb *database.MongoDB
}

func NewCategoryActor(metrics *utils.MetricsCollector, mongodb *database.MongoDB) actor.Actor {
	return &CategoryActor{
		metrics: metrics,
		mongodb: mongodb,
	}
}

// Receive handles incoming messages
func (a *CategoryActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CategoryActor started")

	case *actor.Stopping:
		log.Printf("CategoryActor stopping")

	case *CreateCategoryMsg:
		a.handleCreateCategory(context, msg)

	case *GetCategoryMsg:
		a.handleGetCategory(context, msg)

	case *ListCategoriesMsg:
		a.handleListCategories(context, msg)

	case *GetCategoryTreeMsg:
		a.handleGetCategoryTree(context, msg)

	case *UpdateCategoryMsg:
		a.handleUpdateCategory(context, msg)

	case *DeleteCategoryMsg:
		a.handleDeleteCategory(context, msg)
	}
}

// validateParent checks that a prospective parent exists and belongs to the
// same community as the child.
func (a *CategoryActor) validateParent(ctx stdctx.Context, parentID, communityID uuid.UUID) *utils.AppError {
	parent, err := a.mongodb.GetCategory(ctx, parentID)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			return appErr
		}
		return utils.NewAppError(utils.ErrDatabase, "Failed to look up parent category", err)
	}
	if parent.CommunityID != communityID {
		return utils.NewAppError(utils.ErrInvalidInput, "Parent category belongs to a different community", nil)
	}
	return nil
}

// wouldCreateCycle walks the ancestor chain from newParentID; encountering
// categoryID means the proposed edge would close a loop.
func (a *CategoryActor) wouldCreateCycle(ctx stdctx.Context, categoryID, newParentID uuid.UUID) (bool, error) {
	seen := map[uuid.UUID]bool{}
	current := &newParentID
	for current != nil {
		if *current == categoryID {
			return true, nil
		}
		if seen[*current] {
			// Pre-existing loop above the insertion point.
			return true, nil
		}
		seen[*current] = true

		ancestor, err := a.mongodb.GetCategory(ctx, *current)
		if err != nil {
			if utils.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		current = ancestor.ParentID
	}
	return false, nil
}

func (a *CategoryActor) handleCreateCategory(context actor.Context, msg *CreateCategoryMsg) {
	log.Printf("CategoryActor: Creating category %s in community %s", msg.Name, msg.CommunityID)
	startTime := time.Now()
	ctx := stdctx.Background()

	if _, err := a.mongodb.GetCommunity(ctx, msg.CommunityID); err != nil {
		context.Respond(err)
		return
	}

	exists, err := a.mongodb.CategoryNameExists(ctx, msg.Name, msg.CommunityID, nil)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to check category name", err))
		return
	}
	if exists {
		context.Respond(utils.NewAppError(utils.ErrCategoryExists, "A category with this name already exists in the community", nil))
		return
	}

	if msg.ParentID != nil {
		if appErr := a.validateParent(ctx, *msg.ParentID, msg.CommunityID); appErr != nil {
			context.Respond(appErr)
			return
		}
	}

	now := time.Now()
	category := &models.Category{
		ID:          uuid.New(),
		Name:        msg.Name,
		Description: msg.Description,
		Slug:        models.Slugify(msg.Name),
		CommunityID: msg.CommunityID,
		ParentID:    msg.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.mongodb.CreateCategory(ctx, category); err != nil {
		log.Printf("CategoryActor: Failed to create category: %v", err)
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("create_category", time.Since(startTime))
	context.Respond(category)
}

func (a *CategoryActor) handleGetCategory(context actor.Context, msg *GetCategoryMsg) {
	ctx := stdctx.Background()
	category, err := a.mongodb.GetCategory(ctx, msg.CategoryID)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(category)
}

func (a *CategoryActor) handleListCategories(context actor.Context, msg *ListCategoriesMsg) {
	ctx := stdctx.Background()
	categories, err := a.mongodb.ListCategories(ctx, msg.CommunityID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list categories", err))
		return
	}
	context.Respond(categories)
}

func (a *CategoryActor) handleGetCategoryTree(context actor.Context, msg *GetCategoryTreeMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	categories, err := a.mongodb.GetCommunityCategories(ctx, msg.CommunityID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load categories", err))
		return
	}

	tree, err := models.BuildCategoryTree(categories)
	if err != nil {
		log.Printf("CategoryActor: Category forest for community %s is corrupt: %v", msg.CommunityID, err)
		context.Respond(utils.NewAppError(utils.ErrCycleDetected, "Category parent references form a cycle", err))
		return
	}

	a.metrics.AddOperationLatency("category_tree", time.Since(startTime))
	context.Respond(tree)
}

func (a *CategoryActor) handleUpdateCategory(context actor.Context, msg *UpdateCategoryMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	category, err := a.mongodb.GetCategory(ctx, msg.CategoryID)
	if err != nil {
		context.Respond(err)
		return
	}

	fields := bson.M{}
	if msg.Name != nil && *msg.Name != category.Name {
		exists, err := a.mongodb.CategoryNameExists(ctx, *msg.Name, category.CommunityID, &category.ID)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to check category name", err))
			return
		}
		if exists {
			context.Respond(utils.NewAppError(utils.ErrCategoryExists, "A category with this name already exists in the community", nil))
			return
		}
		fields["name"] = *msg.Name
		fields["slug"] = models.Slugify(*msg.Name)
	}
	if msg.Description != nil {
		fields["description"] = *msg.Description
	}

	switch {
	case msg.ClearParent:
		fields["parentCategory"] = nil
	case msg.ParentID != nil:
		if *msg.ParentID == category.ID {
			context.Respond(utils.NewAppError(utils.ErrInvalidInput, "A category cannot be its own parent", nil))
			return
		}
		if appErr := a.validateParent(ctx, *msg.ParentID, category.CommunityID); appErr != nil {
			context.Respond(appErr)
			return
		}
		cyclic, err := a.wouldCreateCycle(ctx, category.ID, *msg.ParentID)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to validate parent chain", err))
			return
		}
		if cyclic {
			context.Respond(utils.NewAppError(utils.ErrCycleDetected, "Moving the category under this parent would create a cycle", nil))
			return
		}
		fields["parentCategory"] = msg.ParentID.String()
	}

	if len(fields) == 0 {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "No category fields to update", nil))
		return
	}

	updated, err := a.mongodb.UpdateCategory(ctx, msg.CategoryID, fields)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("update_category", time.Since(startTime))
	context.Respond(updated)
}

func (a *CategoryActor) handleDeleteCategory(context actor.Context, msg *DeleteCategoryMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	deleted, err := a.mongodb.DeleteCategory(ctx, msg.CategoryID)
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("delete_category", time.Since(startTime))
	log.Printf("CategoryActor: Deleted category %s, children re-parented to root", deleted.ID)
	context.Respond(deleted)
}
