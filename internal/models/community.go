package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rule is a single community rule.
type Rule struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
}

// CommunityStats holds the community's denormalized counters. TotalMembers
// must equal len(Members) after every join or leave.
type CommunityStats struct {
	TotalMembers     int `json:"totalMembers" bson:"totalMembers"`
	TotalPosts       int `json:"totalPosts" bson:"totalPosts"`
	DailyActiveUsers int `json:"dailyActiveUsers" bson:"dailyActiveUsers"`
}

type CommunitySettings struct {
	AllowMemberPosts    bool `json:"allowMemberPosts" bson:"allowMemberPosts"`
	RequirePostApproval bool `json:"requirePostApproval" bson:"requirePostApproval"`
	AllowComments       bool `json:"allowComments" bson:"allowComments"`
}

type CommunityCustomization struct {
	PrimaryColor    string `json:"primaryColor" bson:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor" bson:"secondaryColor"`
	BackgroundColor string `json:"backgroundColor" bson:"backgroundColor"`
}

type Community struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Slug          string                 `json:"slug"`
	OwnerID       uuid.UUID              `json:"owner"`
	Moderators    []uuid.UUID            `json:"moderators"`
	Members       []uuid.UUID            `json:"members"`
	Rules         []Rule                 `json:"rules"`
	Categories    []string               `json:"categories"`
	Tags          []string               `json:"tags"`
	IsPrivate     bool                   `json:"isPrivate"`
	CoverImage    string                 `json:"coverImage"`
	Icon          string                 `json:"icon"`
	Customization CommunityCustomization `json:"customization"`
	Stats         CommunityStats         `json:"stats"`
	Settings      CommunitySettings      `json:"settings"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// DefaultCustomization returns the stock community color scheme.
func DefaultCustomization() CommunityCustomization {
	return CommunityCustomization{
		PrimaryColor:    "#3490dc",
		SecondaryColor:  "#38c172",
		BackgroundColor: "#f8fafc",
	}
}

// DefaultSettings returns the settings applied to a new community.
func DefaultSettings() CommunitySettings {
	return CommunitySettings{
		AllowMemberPosts: true,
		AllowComments:    true,
	}
}

// Slugify derives a URL slug from a display name: lowercased, whitespace
// collapsed to single dashes.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "-")
}
