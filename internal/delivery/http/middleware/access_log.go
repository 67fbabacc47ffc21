package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger *log.Logger
	skip   map[string]struct{}
}

// NewAccessLogMiddleware logs one line per request. Paths in skip (health checks,
// scrapes) still get a request id but are not logged.
func NewAccessLogMiddleware(logger *log.Logger, skip ...string) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	m := &AccessLogMiddleware{logger: logger, skip: make(map[string]struct{}, len(skip))}
	for _, p := range skip {
		m.skip[p] = struct{}{}
	}
	return m
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		if _, quiet := m.skip[c.Path()]; quiet {
			return err
		}

		user := "-"
		if id, ok := c.Locals(CtxUserIDKey).(uuid.UUID); ok && id != uuid.Nil {
			user = id.String()
		}

		m.logger.Printf(
			"http rid=%s method=%s path=%s status=%d latency=%s user=%s ip=%s resp_bytes=%d ua=%q",
			rid, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start),
			user, c.IP(), len(c.Response().Body()), c.Get(fiber.HeaderUserAgent),
		)
		return err
	}
}
