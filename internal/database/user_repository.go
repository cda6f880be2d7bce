// internal/database/user_repository.go
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

// MembershipDocument is one element of a user's communities array.
type MembershipDocument struct {
	CommunityID string    `bson:"communityId"`
	Name        string    `bson:"name"`
	Role        string    `bson:"role"`
	JoinedAt    time.Time `bson:"joinedAt"`
	LastActive  time.Time `bson:"lastActive"`
}

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string               `bson:"_id"`
	Username       string               `bson:"username"`
	Email          string               `bson:"email"`
	HashedPassword string               `bson:"password"`
	FirstName      string               `bson:"firstName"`
	LastName       string               `bson:"lastName"`
	ProfilePicture string               `bson:"profilePicture"`
	Bio            string               `bson:"bio"`
	Communities    []MembershipDocument `bson:"communities"`
	Role           string               `bson:"role"`
	IsActive       bool                 `bson:"isActive"`
	LastLogin      time.Time            `bson:"lastLogin"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func userToDocument(user *models.User) *UserDocument {
	doc := &UserDocument{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          strings.ToLower(user.Email),
		HashedPassword: user.HashedPassword,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		ProfilePicture: user.ProfilePicture,
		Bio:            user.Bio,
		Communities:    make([]MembershipDocument, len(user.Communities)),
		Role:           user.Role,
		IsActive:       user.IsActive,
		LastLogin:      user.LastLogin,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
	for i, membership := range user.Communities {
		doc.Communities[i] = MembershipDocument{
			CommunityID: membership.CommunityID.String(),
			Name:        membership.Name,
			Role:        membership.Role,
			JoinedAt:    membership.JoinedAt,
			LastActive:  membership.LastActive,
		}
	}
	return doc
}

func userDocumentToModel(doc *UserDocument) (*models.User, error) {
	userID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	communities := make([]models.CommunityMembership, len(doc.Communities))
	for i, membership := range doc.Communities {
		communityID, err := uuid.Parse(membership.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("invalid community ID in database: %v", err)
		}
		communities[i] = models.CommunityMembership{
			CommunityID: communityID,
			Name:        membership.Name,
			Role:        membership.Role,
			JoinedAt:    membership.JoinedAt,
			LastActive:  membership.LastActive,
		}
	}

	return &models.User{
		ID:             userID,
		Username:       doc.Username,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		FirstName:      doc.FirstName,
		LastName:       doc.LastName,
		ProfilePicture: doc.ProfilePicture,
		Bio:            doc.Bio,
		Communities:    communities,
		Role:           doc.Role,
		IsActive:       doc.IsActive,
		LastLogin:      doc.LastLogin,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// CreateUser inserts a new user. The unique indexes on username and email
// are the backstop for concurrent registrations.
func (m *MongoDB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := m.Users.InsertOne(ctx, userToDocument(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewAppError(utils.ErrUserAlreadyExists, "Username or email already registered", err)
		}
		return utils.NewAppError(utils.ErrDatabase, "failed to create user", err)
	}
	return nil
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}
	return userDocumentToModel(&doc)
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}
	return userDocumentToModel(&doc)
}

// UsernameExists reports whether a username is already taken.
func (m *MongoDB) UsernameExists(ctx context.Context, username string) (bool, error) {
	err := m.Users.FindOne(ctx,
		bson.M{"username": username},
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

// ListUsers retrieves all users
func (m *MongoDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := m.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		user, err := userDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return users, nil
}

// UpdateUserProfile applies a partial update to the user's profile fields.
func (m *MongoDB) UpdateUserProfile(ctx context.Context, userID uuid.UUID, fields bson.M) (*models.User, error) {
	fields["updatedAt"] = time.Now()

	var doc UserDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$set": fields},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.NewAppError(utils.ErrUserAlreadyExists, "Username or email already registered", err)
		}
		return nil, err
	}
	return userDocumentToModel(&doc)
}

// UpdateUserLastLogin stamps a successful login.
func (m *MongoDB) UpdateUserLastLogin(ctx context.Context, userID uuid.UUID) error {
	result, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$set": bson.M{"lastLogin": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}

// DeleteUser hard-deletes a user. Posts and comments authored by the user
// are intentionally left in place.
func (m *MongoDB) DeleteUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOneAndDelete(ctx, bson.M{"_id": userID.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}
	return userDocumentToModel(&doc)
}

// EnsureUserIndexes creates the unique username and email indexes.
func (m *MongoDB) EnsureUserIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "communities.communityId", Value: 1}},
		},
	}

	_, err := m.Users.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}
	return nil
}
