package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/auth"
	"github.com/UzumakiODZ/backEndChat/internal/core"
	"github.com/UzumakiODZ/backEndChat/internal/geo"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

// APIHandlers provides HTTP handlers for registration and login.
type APIHandlers struct {
	authService *auth.Service
	users       store.UserStore
	locations   *core.Locations
	limiter     *rateLimiter
	log         *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. authRateLimit bounds
// register/login attempts per minute; zero disables the bound.
func NewAPIHandlers(authService *auth.Service, users store.UserStore, locations *core.Locations, authRateLimit int, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		authService: authService,
		users:       users,
		locations:   locations,
		limiter:     newRateLimiter(authRateLimit),
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username  string   `json:"username" binding:"required,min=3,max=32"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=6"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CheckUserRequest asks whether an email is registered.
type CheckUserRequest struct {
	Email string `json:"email" binding:"required"`
}

// UserResponse represents a user in API responses. Password hashes never
// leave the server.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userResponse(u *store.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if u.Location != nil {
		lat, lon := u.Location.Latitude, u.Location.Longitude
		resp.Latitude = &lat
		resp.Longitude = &lon
	}
	return resp
}

// Register handles user registration.
// POST /api/register
func (h *APIHandlers) Register(c *gin.Context) {
	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	// Coordinates come in pairs or not at all.
	if (req.Latitude == nil) != (req.Longitude == nil) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude must be provided together"})
		return
	}
	var location *geo.Point
	if req.Latitude != nil {
		location = &geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password, location)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "user already exists"})
			return
		}
		if errors.Is(err, auth.ErrInvalidUsername) || errors.Is(err, auth.ErrInvalidEmail) || errors.Is(err, auth.ErrInvalidPassword) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Str("email", req.Email).Msg("failed to register user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	// Registration already wrote the coordinates durably; the cache only
	// needs to catch up so proximity queries see the new user immediately.
	if location != nil {
		h.locations.Put(user.ID, user.Username, *location)
	}

	h.log.Info().Int64("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusCreated, AuthResponse{User: userResponse(user), Token: token})
}

// Login handles user login.
// POST /api/login
func (h *APIHandlers) Login(c *gin.Context) {
	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Str("email", req.Email).Msg("failed to login user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	c.JSON(http.StatusOK, AuthResponse{User: userResponse(user), Token: token})
}

// CheckUser reports whether an email is registered.
// POST /api/check-user
func (h *APIHandlers) CheckUser(c *gin.Context) {
	var req CheckUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	_, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"exists": true})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"exists": false})
	default:
		h.log.Error().Err(err).Msg("failed to check user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
