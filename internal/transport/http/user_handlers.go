package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/core"
	"github.com/UzumakiODZ/backEndChat/internal/geo"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

// defaultNearbyRadiusKm is used when the client omits radius_km.
const defaultNearbyRadiusKm = 10

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	store     store.UserStore
	registry  *core.Registry
	locations *core.Locations
	proximity *core.Proximity
	log       *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.UserStore, registry *core.Registry, locations *core.Locations, proximity *core.Proximity, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store:     st,
		registry:  registry,
		locations: locations,
		proximity: proximity,
		log:       logger,
	}
}

// LocationRequest carries a coordinate update.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// NearbyUserResponse is one proximity-query result on the wire.
type NearbyUserResponse struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}

// ListUsers returns all registered users.
// GET /api/users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, userResponse(u))
	}
	c.JSON(http.StatusOK, response)
}

// DeleteUser removes the caller's account.
// DELETE /api/users/:id
func (h *UserHandlers) DeleteUser(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}
	// Accounts are self-service only.
	if id != uid {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "cannot delete another user"})
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	// Open sessions of the deleted account must stop receiving fan-out.
	h.registry.Evict(id)
	h.locations.Forget(id)
	c.Status(http.StatusNoContent)
}

// UpdateLocation sets the caller's coordinates. The identity comes from the
// verified token, never from the request body.
// PUT /api/users/me/location
func (h *UserHandlers) UpdateLocation(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude are required"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	pt := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := h.locations.Update(c.Request.Context(), uid, user.Username, pt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to update location")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "unable to update location"})
		return
	}

	user.Location = &pt
	c.JSON(http.StatusOK, userResponse(user))
}

// NearbyUsers answers the proximity query for the caller.
// GET /api/nearby-users?radius_km=10
func (h *UserHandlers) NearbyUsers(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	radiusKm := float64(defaultNearbyRadiusKm)
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
			return
		}
		radiusKm = parsed
	}

	neighbors, err := h.proximity.Nearby(uid, radiusKm)
	if err != nil {
		if errors.Is(err, core.ErrLocationUnavailable) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user location not set"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", uid).Msg("proximity query failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]NearbyUserResponse, 0, len(neighbors))
	for _, n := range neighbors {
		response = append(response, NearbyUserResponse{
			ID:         n.UserID,
			Username:   n.Username,
			Latitude:   n.Location.Latitude,
			Longitude:  n.Location.Longitude,
			DistanceKm: n.DistanceKm,
		})
	}
	c.JSON(http.StatusOK, response)
}
