package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/gincana-dev/gincana-go-api/internal/dto"
	"github.com/gincana-dev/gincana-go-api/internal/game"
	"github.com/gincana-dev/gincana-go-api/internal/models"
	"github.com/gincana-dev/gincana-go-api/internal/observability"
)

// StreamHandler pushes role-aware state snapshots over a websocket whenever
// any mirror advances. Clients never send commands over the stream; writes
// go through the HTTP API and come back as a fresh snapshot.
type StreamHandler struct {
	coordinator *game.Coordinator
	logger      zerolog.Logger
}

// NewStreamHandler constructs the handler.
func NewStreamHandler(coordinator *game.Coordinator, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		coordinator: coordinator,
		logger:      logger.With().Str("component", "stream_handler").Logger(),
	}
}

// Register binds the websocket upgrade route.
func (h *StreamHandler) Register(router fiber.Router) {
	router.Use("/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/stream", websocket.New(h.handleConnection))
}

func (h *StreamHandler) handleConnection(conn *websocket.Conn) {
	viewerID := localString(conn, "user_id")
	if viewerID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}
	role := localString(conn, "user_role")
	instructor := role == models.RoleInstructor || role == models.RoleAdmin

	observability.StreamClientsActive().Inc()
	defer observability.StreamClientsActive().Dec()

	signals, cancel := h.coordinator.SubscribeState()
	defer cancel()

	// Drain client frames so close and ping control messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Info().Str("user_id", viewerID).Str("role", role).Msg("state stream connected")

	if err := h.writeSnapshot(conn, viewerID, instructor); err != nil {
		h.logger.Debug().Err(err).Str("user_id", viewerID).Msg("initial snapshot write failed")
		_ = conn.Close()
		<-done
		return
	}

	for {
		select {
		case <-done:
			h.logger.Info().Str("user_id", viewerID).Msg("state stream disconnected")
			return
		case <-signals:
			if err := h.writeSnapshot(conn, viewerID, instructor); err != nil {
				h.logger.Debug().Err(err).Str("user_id", viewerID).Msg("snapshot write failed")
				_ = conn.Close()
				<-done
				return
			}
		}
	}
}

func (h *StreamHandler) writeSnapshot(conn *websocket.Conn, viewerID string, instructor bool) error {
	snapshot := dto.NewStateSnapshot(
		h.coordinator.Teams(),
		h.coordinator.Provas(),
		h.coordinator.Ranking(),
		h.coordinator.RankingVisible(),
		h.coordinator.ReviewRequests(),
		viewerID,
		instructor,
	)
	return conn.WriteJSON(snapshot)
}

func localString(conn *websocket.Conn, key string) string {
	if value := conn.Locals(key); value != nil {
		return strings.TrimSpace(fmt.Sprint(value))
	}
	return ""
}
