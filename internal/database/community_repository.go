// internal/database/community_repository.go
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

// CommunityDocument represents the MongoDB schema for a community
type CommunityDocument struct {
	ID            string                        `bson:"_id"`
	Name          string                        `bson:"name"`
	Description   string                        `bson:"description"`
	Slug          string                        `bson:"slug"`
	Owner         string                        `bson:"owner"`
	Moderators    []string                      `bson:"moderators"`
	Members       []string                      `bson:"members"`
	Rules         []models.Rule                 `bson:"rules"`
	Categories    []string                      `bson:"categories"`
	Tags          []string                      `bson:"tags"`
	IsPrivate     bool                          `bson:"isPrivate"`
	CoverImage    string                        `bson:"coverImage"`
	Icon          string                        `bson:"icon"`
	Customization models.CommunityCustomization `bson:"customization"`
	Stats         models.CommunityStats         `bson:"stats"`
	Settings      models.CommunitySettings      `bson:"settings"`
	CreatedAt     time.Time                     `bson:"createdAt"`
	UpdatedAt     time.Time                     `bson:"updatedAt"`
}

func communityToDocument(community *models.Community) *CommunityDocument {
	doc := &CommunityDocument{
		ID:            community.ID.String(),
		Name:          community.Name,
		Description:   community.Description,
		Slug:          community.Slug,
		Owner:         community.OwnerID.String(),
		Moderators:    make([]string, len(community.Moderators)),
		Members:       make([]string, len(community.Members)),
		Rules:         community.Rules,
		Categories:    community.Categories,
		Tags:          community.Tags,
		IsPrivate:     community.IsPrivate,
		CoverImage:    community.CoverImage,
		Icon:          community.Icon,
		Customization: community.Customization,
		Stats:         community.Stats,
		Settings:      community.Settings,
		CreatedAt:     community.CreatedAt,
		UpdatedAt:     community.UpdatedAt,
	}
	for i, id := range community.Moderators {
		doc.Moderators[i] = id.String()
	}
	for i, id := range community.Members {
		doc.Members[i] = id.String()
	}
	return doc
}

func communityDocumentToModel(doc *CommunityDocument) (*models.Community, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID in database: %v", err)
	}

	ownerID, err := uuid.Parse(doc.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID in database: %v", err)
	}

	moderators := make([]uuid.UUID, len(doc.Moderators))
	for i, idStr := range doc.Moderators {
		moderatorID, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid moderator ID in database: %v", err)
		}
		moderators[i] = moderatorID
	}

	members := make([]uuid.UUID, len(doc.Members))
	for i, idStr := range doc.Members {
		memberID, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid member ID in database: %v", err)
		}
		members[i] = memberID
	}

	return &models.Community{
		ID:            id,
		Name:          doc.Name,
		Description:   doc.Description,
		Slug:          doc.Slug,
		OwnerID:       ownerID,
		Moderators:    moderators,
		Members:       members,
		Rules:         doc.Rules,
		Categories:    doc.Categories,
		Tags:          doc.Tags,
		IsPrivate:     doc.IsPrivate,
		CoverImage:    doc.CoverImage,
		Icon:          doc.Icon,
		Customization: doc.Customization,
		Stats:         doc.Stats,
		Settings:      doc.Settings,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

// CreateCommunity creates a new community in MongoDB
func (m *MongoDB) CreateCommunity(ctx context.Context, community *models.Community) error {
	_, err := m.Communities.InsertOne(ctx, communityToDocument(community))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewAppError(utils.ErrCommunityExists,
				fmt.Sprintf("community with name %s already exists", community.Name), err)
		}
		return fmt.Errorf("failed to create community: %v", err)
	}
	return nil
}

// GetCommunity retrieves a community by its ID
func (m *MongoDB) GetCommunity(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	var doc CommunityDocument
	err := m.Communities.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCommunityNotFound, "Community not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %v", err)
	}
	return communityDocumentToModel(&doc)
}

// GetCommunityBySlug retrieves a community by its URL slug
func (m *MongoDB) GetCommunityBySlug(ctx context.Context, slug string) (*models.Community, error) {
	var doc CommunityDocument
	err := m.Communities.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCommunityNotFound, "Community not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %v", err)
	}
	return communityDocumentToModel(&doc)
}

// CommunityExists reports whether a community with the given name or slug
// is already registered.
func (m *MongoDB) CommunityExists(ctx context.Context, name, slug string) (bool, error) {
	filter := bson.M{"$or": []bson.M{
		{"name": name},
		{"slug": slug},
	}}
	err := m.Communities.FindOne(ctx, filter,
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

// ListCommunities retrieves all communities
func (m *MongoDB) ListCommunities(ctx context.Context) ([]*models.Community, error) {
	cursor, err := m.Communities.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %v", err)
	}
	defer cursor.Close(ctx)

	var communities []*models.Community
	for cursor.Next(ctx) {
		var doc CommunityDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode community: %v", err)
		}
		community, err := communityDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		communities = append(communities, community)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return communities, nil
}

// UpdateCommunity applies a partial update and returns the new document.
func (m *MongoDB) UpdateCommunity(ctx context.Context, id uuid.UUID, fields bson.M) (*models.Community, error) {
	fields["updatedAt"] = time.Now()

	var doc CommunityDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Communities.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": fields},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCommunityNotFound, "Community not found", err)
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.NewAppError(utils.ErrCommunityExists, "community name or slug already taken", err)
		}
		return nil, err
	}
	return communityDocumentToModel(&doc)
}

// DeleteCommunity removes the community document. There is no cascade:
// categories and posts referencing it become orphans (known gap).
func (m *MongoDB) DeleteCommunity(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	var doc CommunityDocument
	err := m.Communities.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCommunityNotFound, "Community not found", err)
	}
	if err != nil {
		return nil, err
	}
	return communityDocumentToModel(&doc)
}

// IncrementCommunityPosts bumps stats.totalPosts at the storage layer so
// concurrent post creations never lose an update.
func (m *MongoDB) IncrementCommunityPosts(ctx context.Context, id uuid.UUID, delta int) error {
	result, err := m.Communities.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$inc": bson.M{"stats.totalPosts": delta}},
	)
	if err != nil {
		return fmt.Errorf("failed to update post count: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrCommunityNotFound, "Community not found", nil)
	}
	return nil
}

// EnsureCommunityIndexes creates required indexes
func (m *MongoDB) EnsureCommunityIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
	}

	_, err := m.Communities.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create community indexes: %v", err)
	}
	return nil
}
