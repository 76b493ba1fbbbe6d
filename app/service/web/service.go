package web

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cleanmachine/app/config"
	"cleanmachine/app/service/queue"
	"cleanmachine/app/service/sandbox"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Service is the HTTP/JSON API the demo UI drives the sandbox with.
type Service struct {
	cfg        *config.Config
	app        *fiber.App
	sandboxSvc *sandbox.Service
	queueSvc   *queue.Service
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*sandbox.Service](di),
		do.MustInvoke[*queue.Service](di),
	), nil
}

func NewService(cfg *config.Config, sandboxSvc *sandbox.Service, queueSvc *queue.Service) *Service {
	s := &Service{
		cfg:        cfg,
		sandboxSvc: sandboxSvc,
		queueSvc:   queueSvc,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/healthz", s.handleHealth)

	api := app.Group("/api/sandbox")
	api.Get("/", s.handleState)
	api.Post("/messages", s.handleMessage)
	api.Put("/mode", s.handleMode)
	api.Post("/reset", s.handleReset)

	s.app = app

	return s
}

// App exposes the fiber app for tests.
func (s *Service) App() *fiber.App {
	return s.app
}

func (s *Service) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP API listening", "addr", addr)

		return s.app.Listen(addr)
	})

	g.Go(func() error {
		<-ctx.Done()

		return s.app.ShutdownWithTimeout(shutdownTimeout)
	})

	return g.Wait()
}

type messageRequest struct {
	Text string `json:"text"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Service) handleState(c *fiber.Ctx) error {
	return c.JSON(s.sandboxSvc.Snapshot())
}

func (s *Service) handleMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	s.queueSvc.Add(req.Text)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":    "queued",
		"typing_ms": s.sandboxSvc.TypingDuration(req.Text).Milliseconds(),
	})
}

func (s *Service) handleMode(c *fiber.Ctx) error {
	var req modeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	mode, err := sandbox.ParseMode(req.Mode)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.sandboxSvc.Initialize(mode)

	return c.JSON(s.sandboxSvc.Snapshot())
}

func (s *Service) handleReset(c *fiber.Ctx) error {
	s.sandboxSvc.Reset()

	return c.JSON(s.sandboxSvc.Snapshot())
}
