// internal/database/category_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"tribofy/internal/models"
	"tribofy/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryDocument represents the MongoDB schema for a category
type CategoryDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Slug        string    `bson:"slug"`
	Community   string    `bson:"community"`
	Parent      *string   `bson:"parentCategory,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func categoryToDocument(category *models.Category) *CategoryDocument {
	doc := &CategoryDocument{
		ID:          category.ID.String(),
		Name:        category.Name,
		Description: category.Description,
		Slug:        category.Slug,
		Community:   category.CommunityID.String(),
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
	if category.ParentID != nil {
		parentStr := category.ParentID.String()
		doc.Parent = &parentStr
	}
	return doc
}

func categoryDocumentToModel(doc *CategoryDocument) (*models.Category, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid category ID in database: %v", err)
	}

	communityID, err := uuid.Parse(doc.Community)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID in database: %v", err)
	}

	var parentID *uuid.UUID
	if doc.Parent != nil {
		parsed, err := uuid.Parse(*doc.Parent)
		if err != nil {
			return nil, fmt.Errorf("invalid parent category ID in database: %v", err)
		}
		parentID = &parsed
	}

	return &models.Category{
		ID:          id,
		Name:        doc.Name,
		Description: doc.Description,
		Slug:        doc.Slug,
		CommunityID: communityID,
		ParentID:    parentID,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// CreateCategory inserts a new category. The composite (name, community)
// unique index backs the duplicate check.
func (m *MongoDB) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := m.Categories.InsertOne(ctx, categoryToDocument(category))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewAppError(utils.ErrCategoryExists,
				"A category with this name already exists in this community", err)
		}
		return fmt.Errorf("failed to create category: %v", err)
	}
	return nil
}

// GetCategory retrieves a category by ID
func (m *MongoDB) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var doc CategoryDocument
	err := m.Categories.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %v", err)
	}
	return categoryDocumentToModel(&doc)
}

// ListCategories retrieves all categories, optionally filtered by community.
func (m *MongoDB) ListCategories(ctx context.Context, communityID *uuid.UUID) ([]*models.Category, error) {
	filter := bson.M{}
	if communityID != nil {
		filter["community"] = communityID.String()
	}

	cursor, err := m.Categories.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %v", err)
	}
	defer cursor.Close(ctx)

	var categories []*models.Category
	for cursor.Next(ctx) {
		var doc CategoryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode category: %v", err)
		}
		category, err := categoryDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return categories, nil
}

// GetCommunityCategories loads every category of one community in a single
// query; tree assembly happens in the actor.
func (m *MongoDB) GetCommunityCategories(ctx context.Context, communityID uuid.UUID) ([]*models.Category, error) {
	return m.ListCategories(ctx, &communityID)
}

// CategoryNameExists reports whether another category in the community
// already uses the name. excludeID skips the category being updated.
func (m *MongoDB) CategoryNameExists(ctx context.Context, name string, communityID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	filter := bson.M{"name": name, "community": communityID.String()}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": excludeID.String()}
	}

	err := m.Categories.FindOne(ctx, filter,
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateCategory applies a partial update and returns the new document.
func (m *MongoDB) UpdateCategory(ctx context.Context, id uuid.UUID, fields bson.M) (*models.Category, error) {
	fields["updatedAt"] = time.Now()

	var doc CategoryDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Categories.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": fields},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", err)
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.NewAppError(utils.ErrCategoryExists,
				"A category with this name already exists in this community", err)
		}
		return nil, err
	}
	return categoryDocumentToModel(&doc)
}

// DeleteCategory removes the category and re-parents its direct children to
// null. Children are flattened up a level, never deleted.
func (m *MongoDB) DeleteCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var doc CategoryDocument
	err := m.Categories.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", err)
	}
	if err != nil {
		return nil, err
	}

	_, err = m.Categories.UpdateMany(ctx,
		bson.M{"parentCategory": id.String()},
		bson.M{"$set": bson.M{"parentCategory": nil}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to re-parent child categories: %v", err)
	}

	return categoryDocumentToModel(&doc)
}

// EnsureCategoryIndexes creates the composite (name, community) unique
// index plus the lookup indexes.
func (m *MongoDB) EnsureCategoryIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "name", Value: 1},
				{Key: "community", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "community", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "parentCategory", Value: 1}},
		},
	}

	_, err := m.Categories.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create category indexes: %v", err)
	}
	return nil
}
