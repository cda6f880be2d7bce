package handlers

import (
	"net/http"

	"tribofy/internal/engine/actors"
	"tribofy/internal/utils"

	"github.com/google/uuid"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=50"`
	Description string     `json:"description" validate:"max=500"`
	ParentID    *uuid.UUID `json:"parentCategory,omitempty"`
}

// UpdateCategoryRequest represents a partial category update. Setting
// clearParent detaches the category from its parent.
type UpdateCategoryRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	ParentID    *uuid.UUID `json:"parentCategory,omitempty"`
	ClearParent bool       `json:"clearParent,omitempty"`
}

// HandleCreateCategory handles requests to create a category in a community
func (s *Server) HandleCreateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := callerID(r); !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req CreateCategoryRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetCategoryActor(), &actors.CreateCategoryMsg{
			Name:        req.Name,
			Description: req.Description,
			CommunityID: communityID,
			ParentID:    req.ParentID,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusCreated, result)
	}
}

// HandleGetCategory handles requests to fetch a single category
func (s *Server) HandleGetCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathUUID(r, "categoryId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetCategoryActor(), &actors.GetCategoryMsg{CategoryID: categoryID})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleListCategories handles requests to list a community's categories as
// a flat list
func (s *Server) HandleListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetCategoryActor(), &actors.ListCategoriesMsg{CommunityID: &communityID})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetCategoryTree handles requests for a community's category forest
func (s *Server) HandleGetCategoryTree() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetCategoryActor(), &actors.GetCategoryTreeMsg{CommunityID: communityID})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleUpdateCategory handles requests to rename or re-parent a category
func (s *Server) HandleUpdateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := callerID(r); !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		categoryID, err := pathUUID(r, "categoryId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req UpdateCategoryRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetCategoryActor(), &actors.UpdateCategoryMsg{
			CategoryID:  categoryID,
			Name:        req.Name,
			Description: req.Description,
			ParentID:    req.ParentID,
			ClearParent: req.ClearParent,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDeleteCategory handles requests to delete a category. Children are
// re-parented to the root, never deleted.
func (s *Server) HandleDeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := callerID(r); !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		categoryID, err := pathUUID(r, "categoryId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		if _, reqErr := s.request(s.Engine.GetCategoryActor(), &actors.DeleteCategoryMsg{CategoryID: categoryID}); reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}
