package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/core"
	"github.com/UzumakiODZ/backEndChat/internal/proto"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

// MessageHandlers provides HTTP handlers for message history and sending.
type MessageHandlers struct {
	store  store.Store
	router *core.Router
	log    *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.Store, router *core.Router, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store:  st,
		router: router,
		log:    logger,
	}
}

// SendMessageRequest represents the message send request body. The sender is
// always the authenticated caller.
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

func messagePayload(m *store.Message) proto.MessagePayload {
	return proto.MessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

// History returns the conversation between the caller and a peer, ascending
// by creation time. Offline receivers catch up through this endpoint.
// GET /api/messages?peer_id=N
func (h *MessageHandlers) History(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	peerID, err := strconv.ParseInt(c.Query("peer_id"), 10, 64)
	if err != nil || peerID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "peer_id is required"})
		return
	}

	if _, err := h.store.GetUserByID(c.Request.Context(), peerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("peer_id", peerID).Msg("failed to load peer")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages, err := h.store.ListMessagesBetween(c.Request.Context(), uid, peerID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]proto.MessagePayload, 0, len(messages))
	for _, m := range messages {
		response = append(response, messagePayload(m))
	}
	c.JSON(http.StatusOK, response)
}

// Send persists a message and fans it out to the live connections of sender
// and receiver.
// POST /api/messages
func (h *MessageHandlers) Send(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "receiver_id and content are required"})
		return
	}

	msg, err := h.router.Send(c.Request.Context(), uid, req.ReceiverID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, core.ErrPersistence):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "failed to send message"})
		default:
			h.log.Error().Err(err).Msg("message send failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, messagePayload(msg))
}
