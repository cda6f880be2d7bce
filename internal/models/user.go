package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform-wide and per-community roles.
const (
	RoleUser      = "user"
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// CommunityMembership is one entry in a user's communities list. The
// community name is denormalized at join time.
type CommunityMembership struct {
	CommunityID uuid.UUID `json:"communityId"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
	LastActive  time.Time `json:"lastActive"`
}

type User struct {
	ID             uuid.UUID             `json:"id"`
	Username       string                `json:"username"`
	Email          string                `json:"email"`
	HashedPassword string                `json:"-"`
	FirstName      string                `json:"firstName"`
	LastName       string                `json:"lastName"`
	ProfilePicture string                `json:"profilePicture"`
	Bio            string                `json:"bio"`
	Communities    []CommunityMembership `json:"communities"`
	Role           string                `json:"role"`
	IsActive       bool                  `json:"isActive"`
	LastLogin      time.Time             `json:"lastLogin"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// MembershipFor returns the user's membership record for the given community,
// or nil if the user has not joined it.
func (u *User) MembershipFor(communityID uuid.UUID) *CommunityMembership {
	for i := range u.Communities {
		if u.Communities[i].CommunityID == communityID {
			return &u.Communities[i]
		}
	}
	return nil
}
