package handlers

import (
	"net/http"
	"time"

	"tribofy/internal/middleware"
)

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, errors, uptime := s.Metrics.Snapshot()
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":         "healthy",
			"requests":       requests,
			"errors":         errors,
			"uptime_seconds": int64(uptime.Seconds()),
			"server_time":    time.Now(),
		})
	}
}

// Routes builds the full HTTP routing table. Every handler gets CORS;
// mutating and caller-scoped routes additionally require a valid token.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	public := func(h http.HandlerFunc) http.HandlerFunc {
		return s.countRequests(middleware.ApplyCORS(h, s.CORS))
	}
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return s.countRequests(middleware.ApplyCORS(s.Tokens.RequireAuth(h), s.CORS))
	}

	mux.HandleFunc("GET /health", public(s.HandleHealth()))
	mux.HandleFunc("GET /ws", s.countRequests(s.HandleWebSocket()))

	// Users and auth
	mux.HandleFunc("POST /api/users/register", public(s.HandleUserRegistration()))
	mux.HandleFunc("POST /api/users/login", public(s.HandleUserLogin()))
	mux.HandleFunc("GET /api/users", protected(s.HandleListUsers()))
	mux.HandleFunc("GET /api/users/{userId}", protected(s.HandleGetUser()))
	mux.HandleFunc("PUT /api/users/me", protected(s.HandleUpdateProfile()))
	mux.HandleFunc("DELETE /api/users/me", protected(s.HandleDeleteUser()))

	// Communities and membership
	mux.HandleFunc("POST /api/communities", protected(s.HandleCreateCommunity()))
	mux.HandleFunc("GET /api/communities", public(s.HandleListCommunities()))
	mux.HandleFunc("GET /api/communities/{communityId}", public(s.HandleGetCommunity()))
	mux.HandleFunc("GET /api/communities/slug/{slug}", public(s.HandleGetCommunityBySlug()))
	mux.HandleFunc("PUT /api/communities/{communityId}", protected(s.HandleUpdateCommunity()))
	mux.HandleFunc("DELETE /api/communities/{communityId}", protected(s.HandleDeleteCommunity()))
	mux.HandleFunc("POST /api/communities/{communityId}/join", protected(s.HandleJoinCommunity()))
	mux.HandleFunc("POST /api/communities/{communityId}/leave", protected(s.HandleLeaveCommunity()))
	mux.HandleFunc("GET /api/communities/{communityId}/membership", protected(s.HandleGetMembership()))

	// Categories
	mux.HandleFunc("POST /api/communities/{communityId}/categories", protected(s.HandleCreateCategory()))
	mux.HandleFunc("GET /api/communities/{communityId}/categories", public(s.HandleListCategories()))
	mux.HandleFunc("GET /api/communities/{communityId}/categories/tree", public(s.HandleGetCategoryTree()))
	mux.HandleFunc("GET /api/categories/{categoryId}", public(s.HandleGetCategory()))
	mux.HandleFunc("PUT /api/categories/{categoryId}", protected(s.HandleUpdateCategory()))
	mux.HandleFunc("DELETE /api/categories/{categoryId}", protected(s.HandleDeleteCategory()))

	// Posts
	mux.HandleFunc("POST /api/posts", protected(s.HandleCreatePost()))
	mux.HandleFunc("GET /api/posts", public(s.HandleListPosts()))
	mux.HandleFunc("GET /api/posts/{postId}", public(s.HandleGetPost()))
	mux.HandleFunc("PUT /api/posts/{postId}", protected(s.HandleUpdatePost()))
	mux.HandleFunc("DELETE /api/posts/{postId}", protected(s.HandleDeletePost()))
	mux.HandleFunc("POST /api/posts/{postId}/like", protected(s.HandleLikePost()))
	mux.HandleFunc("GET /api/communities/{communityId}/posts", public(s.HandleListCommunityPosts()))

	// Comments and replies
	mux.HandleFunc("POST /api/posts/{postId}/comments", protected(s.HandleAddComment()))
	mux.HandleFunc("PUT /api/posts/{postId}/comments/{commentId}", protected(s.HandleEditComment()))
	mux.HandleFunc("DELETE /api/posts/{postId}/comments/{commentId}", protected(s.HandleDeleteComment()))
	mux.HandleFunc("POST /api/posts/{postId}/comments/{commentId}/replies", protected(s.HandleAddReply()))
	mux.HandleFunc("PUT /api/posts/{postId}/comments/{commentId}/replies/{replyId}", protected(s.HandleEditReply()))
	mux.HandleFunc("DELETE /api/posts/{postId}/comments/{commentId}/replies/{replyId}", protected(s.HandleDeleteReply()))

	return mux
}

func (s *Server) countRequests(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		h(w, r)
	}
}
