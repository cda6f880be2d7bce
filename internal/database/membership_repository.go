// internal/database/membership_repository.go
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

// IsInCommunity reports whether the user carries a membership entry for the
// community.
func (m *MongoDB) IsInCommunity(ctx context.Context, userID, communityID uuid.UUID) (bool, error) {
	count, err := m.Users.CountDocuments(ctx, bson.M{
		"_id":                     userID.String(),
		"communities.communityId": communityID.String(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %v", err)
	}
	return count > 0, nil
}

// JoinCommunity records a membership on the user document and bumps the
// community's member counter. Both writes happen in one transaction so the
// counter and the membership list cannot drift apart. Returns the updated
// user.
func (m *MongoDB) JoinCommunity(ctx context.Context, userID uuid.UUID, community *models.Community, role string) (*models.User, error) {
	now := time.Now()
	membership := MembershipDocument{
		CommunityID: community.ID.String(),
		Name:        community.Name,
		Role:        role,
		JoinedAt:    now,
		LastActive:  now,
	}

	session, err := m.Client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// The filter excludes users already holding the membership, so a
		// concurrent duplicate join matches nothing instead of pushing a
		// second entry.
		var doc UserDocument
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err := m.Users.FindOneAndUpdate(sc,
			bson.M{
				"_id":                     userID.String(),
				"communities.communityId": bson.M{"$ne": community.ID.String()},
			},
			bson.M{"$push": bson.M{"communities": membership}},
			opts,
		).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			exists, checkErr := m.userExists(sc, userID)
			if checkErr != nil {
				return nil, checkErr
			}
			if !exists {
				return nil, utils.NewUserNotFoundError(userID.String())
			}
			return nil, utils.NewAppError(utils.ErrAlreadyMember, "User is already a member of this community", nil)
		}
		if err != nil {
			return nil, err
		}

		update, err := m.Communities.UpdateOne(sc,
			bson.M{"_id": community.ID.String()},
			bson.M{
				"$addToSet": bson.M{"members": userID.String()},
				"$inc":      bson.M{"stats.totalMembers": 1},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update community stats: %v", err)
		}
		if update.MatchedCount == 0 {
			return nil, utils.NewCommunityNotFoundError(community.ID.String())
		}

		return userDocumentToModel(&doc)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// LeaveCommunity removes the membership entry and decrements the member
// counter in one transaction.
func (m *MongoDB) LeaveCommunity(ctx context.Context, userID, communityID uuid.UUID) (*models.User, error) {
	session, err := m.Client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc UserDocument
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err := m.Users.FindOneAndUpdate(sc,
			bson.M{
				"_id":                     userID.String(),
				"communities.communityId": communityID.String(),
			},
			bson.M{"$pull": bson.M{"communities": bson.M{"communityId": communityID.String()}}},
			opts,
		).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			exists, checkErr := m.userExists(sc, userID)
			if checkErr != nil {
				return nil, checkErr
			}
			if !exists {
				return nil, utils.NewUserNotFoundError(userID.String())
			}
			return nil, utils.NewAppError(utils.ErrNotMember, "User is not a member of this community", nil)
		}
		if err != nil {
			return nil, err
		}

		update, err := m.Communities.UpdateOne(sc,
			bson.M{"_id": communityID.String()},
			bson.M{
				"$pull": bson.M{"members": userID.String()},
				"$inc":  bson.M{"stats.totalMembers": -1},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update community stats: %v", err)
		}
		if update.MatchedCount == 0 {
			return nil, utils.NewCommunityNotFoundError(communityID.String())
		}

		return userDocumentToModel(&doc)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// TouchMembershipActivity refreshes the lastActive timestamp on a
// membership entry. Callers treat failures as non-fatal.
func (m *MongoDB) TouchMembershipActivity(ctx context.Context, userID, communityID uuid.UUID) error {
	_, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": userID.String(), "communities.communityId": communityID.String()},
		bson.M{"$set": bson.M{"communities.$.lastActive": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update membership activity: %v", err)
	}
	return nil
}

func (m *MongoDB) userExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	err := m.Users.FindOne(ctx,
		bson.M{"_id": userID.String()},
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
