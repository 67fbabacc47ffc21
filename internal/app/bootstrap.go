package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"skill-hire/internal/config"
	"skill-hire/internal/delivery/http/handler"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/delivery/http/routes"
	v1 "skill-hire/internal/delivery/http/routes/v1"
	"skill-hire/internal/pkg/validation"
	"skill-hire/internal/poller"
	"skill-hire/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// multipart framing on top of the resume itself
const uploadOverhead = 1 << 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(cfg config.Config, c *Container) *App {
	bodyLimit := int(cfg.Storage.MaxResumeBytes) + uploadOverhead
	if bodyLimit < 4<<20 {
		bodyLimit = 4 << 20
	}

	f := fiber.New(fiber.Config{
		AppName:         cfg.App.AppName,
		BodyLimit:       bodyLimit,
		StructValidator: validation.New(),
	})

	registerGlobalMiddleware(f, cfg, c.Logger)
	registerRoutes(f, cfg, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and starts the background pieces the API
// process owns: the websocket hub, the stale quiz sweeper and, when enabled,
// a generation queue consumer.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.Default()

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	go c.Hub.Run()

	if err := c.Sweeper.Start(); err != nil {
		c.Hub.Stop()
		_ = c.Close()
		return nil, nil, fmt.Errorf("start sweeper: %w", err)
	}

	consumeCtx, stopConsume := context.WithCancel(context.Background())
	consumeDone := make(chan struct{})
	if c.Queue.Enabled() && cfg.Queue.ConsumeInServer {
		go func() {
			defer close(consumeDone)
			if err := c.Queue.Consume(consumeCtx, c.QuizAssembly.HandleJob); err != nil {
				logger.Printf("queue consume status=stopped err=%v", err)
			}
		}()
	} else {
		close(consumeDone)
	}

	cleanup := func() error {
		c.Sweeper.Stop()
		stopConsume()
		select {
		case <-consumeDone:
		case <-time.After(30 * time.Second):
			logger.Printf("queue consume status=shutdown_timeout")
		}
		c.Hub.Stop()
		return c.Close()
	}

	return New(cfg, c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, cfg config.Config, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger, "/health", "/metrics").Middleware())
	app.Use(middleware.NewCORSMiddleware(cfg.App.CORSOrigins))
	app.Use(middleware.NewMetricsMiddleware().Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, cfg config.Config, c *Container) {
	if app == nil || c == nil {
		return
	}

	health := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"postgres": c.DB.Ping,
	})

	handlers := v1.Handlers{
		Auth:          handler.NewAuthHandler(c.Auth),
		User:          handler.NewUserHandler(c.User),
		Skill:         handler.NewSkillHandler(c.Skill),
		EmployeeSkill: handler.NewEmployeeSkillHandler(c.EmployeeSkill),
		Job:           handler.NewJobHandler(c.Job),
		Application:   handler.NewApplicationHandler(c.Application, cfg.Storage.SignedURLExpiry),
		Quiz: handler.NewQuizHandler(c.QuizAssembly, c.QuizSession, poller.Options{
			MaxAttempts: cfg.Quiz.PollMaxAttempts,
			Interval:    cfg.Quiz.PollInterval,
		}),
		WS:             ws.NewHandler(c.Hub, c.JWT, c.QuizSession, c.Logger),
		AuthMiddleware: middleware.NewAuthMiddleware(c.JWT),
	}

	routes.NewRegistry(health, handlers).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", errors.New("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
