package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tribofy/internal/database"
	"tribofy/internal/engine"
	"tribofy/internal/middleware"
	"tribofy/internal/utils"
	"tribofy/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	MongoDB        *database.MongoDB
	Tokens         *middleware.TokenManager
	Validate       *validator.Validate
	CORS           *middleware.CORSConfig
	Hub            *websocket.Hub
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	engine *engine.Engine,
	metrics *utils.MetricsCollector,
	mongodb *database.MongoDB,
	tokens *middleware.TokenManager,
	cors *middleware.CORSConfig,
	hub *websocket.Hub,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         engine,
		Metrics:        metrics,
		MongoDB:        mongodb,
		Tokens:         tokens,
		Validate:       validator.New(),
		CORS:           cors,
		Hub:            hub,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// errorBody is the JSON error envelope every non-2xx response carries.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("HTTP Handler: Failed to encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.Metrics.IncrementErrors()

	var body errorBody
	status := http.StatusInternalServerError
	body.Error.Code = utils.ErrDatabase
	body.Error.Message = "Internal server error"

	if appErr, ok := err.(*utils.AppError); ok {
		status = utils.AppErrorToHTTPStatus(appErr.Code)
		body.Error.Code = appErr.Code
		body.Error.Message = appErr.Message
	} else {
		log.Printf("HTTP Handler: Unexpected error: %v", err)
	}

	respondJSON(w, status, body)
}

// decodeAndValidate parses the request body into dst and runs the struct
// validation tags on it.
func (s *Server) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.NewAppError(utils.ErrInvalidInput, "Invalid request body", err)
	}
	if err := s.Validate.Struct(dst); err != nil {
		return utils.NewValidationError(err.Error())
	}
	return nil
}

// request sends a message to a domain actor and waits for the reply. An
// AppError reply comes back as the error return.
func (s *Server) request(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(pid.String())
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	if resErr, ok := result.(error); ok {
		return nil, resErr
	}
	return result, nil
}

// pathUUID parses a UUID path segment.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, utils.NewAppError(utils.ErrInvalidInput, "Invalid "+name, err)
	}
	return id, nil
}

// callerID returns the authenticated user id placed in the context by the
// JWT middleware.
func callerID(r *http.Request) (uuid.UUID, bool) {
	return middleware.GetUserIDFromContext(r.Context())
}
