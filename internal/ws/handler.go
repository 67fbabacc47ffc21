package ws

import (
	"context"
	"log"
	"net/http"
	"strings"

	"skill-hire/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type QuizAccess interface {
	CanViewQuiz(ctx context.Context, userID, quizID uuid.UUID) (bool, error)
}

type Handler struct {
	hub     *Hub
	tokens  jwt.Service
	quizzes QuizAccess
	logger  *log.Logger
}

func NewHandler(hub *Hub, tokens jwt.Service, quizzes QuizAccess, logger *log.Logger) *Handler {
	return &Handler{hub: hub, tokens: tokens, quizzes: quizzes, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleQuiz streams quiz_ready for one quiz the caller may see.
func (h *Handler) HandleQuiz(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	userID, err := h.authenticate(c)
	if err != nil {
		return err
	}
	quizID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid quiz id")
	}
	ok, err := h.quizzes.CanViewQuiz(c.Context(), userID, quizID)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "quiz not found")
	}
	return h.upgrade(c, QuizTopic(quizID))
}

// HandleUser streams application status changes for the caller.
func (h *Handler) HandleUser(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	userID, err := h.authenticate(c)
	if err != nil {
		return err
	}
	return h.upgrade(c, UserTopic(userID))
}

// authenticate accepts the access token as a bearer header or, since browsers
// cannot set headers on websocket requests, a token query parameter.
func (h *Handler) authenticate(c fiber.Ctx) (uuid.UUID, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		parts := strings.SplitN(strings.TrimSpace(c.Get("Authorization")), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" || h.tokens == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	claims, err := h.tokens.ValidateAccess(token)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return claims.UserID, nil
}

func (h *Handler) upgrade(c fiber.Ctx, topic string) error {
	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("ws upgrade topic=%s status=error err=%v", topic, err)
			}
			return
		}

		client := NewClient(h.hub, conn, topic)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
