package handlers

import (
	"log"
	"net/http"

	"tribofy/internal/engine/actors"
	"tribofy/internal/models"
	"tribofy/internal/utils"
	ws "tribofy/internal/websocket"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username  string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the access token alongside the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UpdateProfileRequest represents a partial profile update.
type UpdateProfileRequest struct {
	FirstName      *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName       *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfilePicture *string `json:"profilePicture,omitempty" validate:"omitempty,url"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterUserRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, err := s.request(s.Engine.GetUserActor(), &actors.RegisterUserMsg{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Password:  req.Password,
		})
		if err != nil {
			s.respondError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, result)
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		log.Printf("HTTP Handler: Received login request for email: %s", req.Email)

		result, err := s.request(s.Engine.GetUserActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			s.respondError(w, err)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			log.Printf("HTTP Handler: Invalid response type: %T", result)
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "Internal server error", nil))
			return
		}

		token, err := s.Tokens.GenerateToken(user.ID, user.Email)
		if err != nil {
			log.Printf("HTTP Handler: Failed to generate token: %v", err)
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate auth token", err))
			return
		}

		respondJSON(w, http.StatusOK, &LoginResponse{Token: token, User: user})
	}
}

// HandleGetUser handles requests to get a user's profile
func (s *Server) HandleGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetUserActor(), &actors.GetUserMsg{UserID: userID})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleListUsers handles requests to list all users
func (s *Server) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.request(s.Engine.GetUserActor(), &actors.ListUsersMsg{})
		if err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleUpdateProfile handles requests to update the caller's profile
func (s *Server) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req UpdateProfileRequest
		if err := s.decodeAndValidate(r, &req); err != nil {
			s.respondError(w, err)
			return
		}

		result, err := s.request(s.Engine.GetUserActor(), &actors.UpdateProfileMsg{
			UserID:         userID,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Bio:            req.Bio,
			ProfilePicture: req.ProfilePicture,
		})
		if err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDeleteUser handles requests to delete the caller's account
func (s *Server) HandleDeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		if _, err := s.request(s.Engine.GetUserActor(), &actors.DeleteUserMsg{UserID: userID}); err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// HandleJoinCommunity handles requests for the caller to join a community
func (s *Server) HandleJoinCommunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetUserActor(), &actors.JoinCommunityMsg{
			UserID:      userID,
			CommunityID: communityID,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}

		s.Hub.Publish(ws.EventMemberJoined, communityID, map[string]interface{}{"userId": userID})
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetMembership reports whether the caller belongs to a community
func (s *Server) HandleGetMembership() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetUserActor(), &actors.IsInCommunityMsg{
			UserID:      userID,
			CommunityID: communityID,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}

		status := result.(*actors.MembershipStatus)
		respondJSON(w, http.StatusOK, map[string]interface{}{"isMember": status.IsMember})
	}
}

// HandleLeaveCommunity handles requests for the caller to leave a community
func (s *Server) HandleLeaveCommunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		communityID, err := pathUUID(r, "communityId")
		if err != nil {
			s.respondError(w, err)
			return
		}

		result, reqErr := s.request(s.Engine.GetUserActor(), &actors.LeaveCommunityMsg{
			UserID:      userID,
			CommunityID: communityID,
		})
		if reqErr != nil {
			s.respondError(w, reqErr)
			return
		}

		s.Hub.Publish(ws.EventMemberLeft, communityID, map[string]interface{}{"userId": userID})
		respondJSON(w, http.StatusOK, result)
	}
}
