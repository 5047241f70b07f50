package http

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/core"
	"github.com/UzumakiODZ/backEndChat/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to a connection
// session.
type WSHandler struct {
	verifier core.TokenVerifier
	registry *core.Registry
	router   *core.Router
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(verifier core.TokenVerifier, registry *core.Registry, router *core.Router, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		verifier: verifier,
		registry: registry,
		router:   router,
		log:      logger,
	}
}

// Handle runs one connection from accept to close.
// GET /ws
func (h *WSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(uuid.NewString())
	session := core.NewSession(client, h.verifier, h.registry, h.router, h.log)
	// Disconnect in any state removes the connection from the registry
	// before this handler returns, so no later fan-out can reach it.
	defer session.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	// Both loops have stopped; flush any event the session emitted on its
	// way down (e.g. the unauthorized error) before closing the transport.
	h.flushEvents(conn, client)

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF):
	case errors.Is(err, core.ErrInvalidCredential):
		status = websocket.StatusPolicyViolation
		reason = "authentication failed"
	default:
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		} else {
			status = websocket.StatusInternalError
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) flushEvents(conn *websocket.Conn, client *core.Client) {
	flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(flushCtx, conn, outboundFromEvent(event)); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, session *core.Session) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		cmd, protoErr, err := inboundToCommand(inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("failed to map inbound")
			return err
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}

		if err := session.Handle(ctx, cmd); err != nil {
			// Fatal for the session: terminate the transport.
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
