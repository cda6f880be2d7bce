package handlers

import (
	"net/http"

	"tribofy/internal/engine/actors"
	"tribofy/internal/models"
	"tribofy/internal/utils"

	"github.com/google/uuid"
)

// CreateCommunityRequest represents a request to create a community
type CreateCommunityRequest struct {
	Name        string        `json:"name" validate:"required,min=3,max=50"`
	Description string        `json:"description" validate:"max=1000"`
	Tags        []string      `json:"tags" validate:"max=10,dive,min=1,max=30"`
	IsPrivate   bool          `json:"isPrivate"`
	Icon        string        `json:"icon" validate:"omitempty,url"`
	CoverImage  string        `json:"coverImage" validate:"omitempty,url"`
	Rules       []models.Rule `json:"rules" validate:"max=20"`
}

// UpdateCommunityRequest represents a partial community update
type UpdateCommunityRequest struct {
	Description   *string                        `json:"description,omitempty" validate:"omitempty,max=1000"`
	Tags          []string                       `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
	IsPrivate     *bool                          `json:"isPrivate,omitempty"`
	Icon          *string                        `json:"icon,omitempty" validate:"omitempty,url"`
	CoverImage    *string                        `json:"coverImage,omitempty" validate:"omitempty,url"`
	Rules         []models.Rule                  `json:"rules,omitempty" validate:"omitempty,max=20"`
	Settings      *models.CommunitySettings      `json:"settings,omitempty"`
	Customization *models.CommunityCustomization `json:"customization,omitempty"`
}

// HandleCreateCommunity handles requests to create a community
func (s *Server) HandleCreateCommunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req CreateCommunityRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, err := s.request(s.Engine.GetCommunityActor(), &actors.CreateCommunityMsg{
			Name:        req.Name,
			Description: req.Description,
			OwnerID:     ownerID,
			Tags:        req.Tags,
			IsPrivate:   req.IsPrivate,
			Icon:        req.Icon,
			CoverImage:  req.CoverImage,
			Rules:       req.Rules,
		})
		if err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, result)
	}
}

// HandleGetCommunity handles requests to fetch one community by id
func (s *Server) HandleGetCommunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetCommunityActor(), &actors.GetCommunityMsg{CommunityID: communityID})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetCommunityBySlug handles requests to fetch one community by slug
func (s *Server) HandleGetCommunityBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if slug == "" {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "Missing community slug", nil))
			return
		}

		result, err := s.request(s.Engine.GetCommunityActor(), &actors.GetCommunityBySlugMsg{Slug: slug})
		if err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleListCommunities handles requests to list all communities
func (s *Server) HandleListCommunities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.request(s.Engine.GetCommunityActor(), &actors.ListCommunitiesMsg{})
		if err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleUpdateCommunity handles requests to update a community's settings
func (s *Server) HandleUpdateCommunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerUUID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		// Only moderators may reconfigure the community.
		community, getErr := s.request(s.Engine.GetCommunityActor(), &actors.GetCommunityMsg{CommunityID: communityID})
		if getErr != nil {
			s.respondError(w, getErr)
			return
		}
		if !isModerator(community.(*models.Community), callerUUID) {
			s.respondError(w, utils.NewAppError(utils.ErrForbidden, "Only moderators can update the community", nil))
			return
		}

		var req UpdateCommunityRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetCommunityActor(), &actors.UpdateCommunityMsg{
			CommunityID:   communityID,
			Description:   req.Description,
			Tags:          req.Tags,
			IsPrivate:     req.IsPrivate,
			Icon:          req.Icon,
			CoverImage:    req.CoverImage,
			Rules:         req.Rules,
			Settings:      req.Settings,
			Customization: req.Customization,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDeleteCommunity handles requests to delete a community
func (s *Server) HandleDeleteCommunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerUUID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		if _, reqErr := s.request(s.Engine.GetCommunityActor(), &actors.DeleteCommunityMsg{
			CommunityID: communityID,
			RequesterID: callerUUID,
		}); reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

func isModerator(community *models.Community, userID uuid.UUID) bool {
	for _, id := range community.Moderators {
		if id == userID {
			return true
		}
	}
	return community.OwnerID == userID
}
