package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cleanmachine/app/config"
	"cleanmachine/app/service/mcpserver"
	"cleanmachine/app/service/queue"
	"cleanmachine/app/service/sandbox"
	"cleanmachine/app/service/web"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

// Service supervises the transports and drains the utterance queue into the
// sandbox. A single consumer goroutine processes utterances in arrival
// order, so replies stay FIFO.
type Service struct {
	cfg        *config.Config
	sandboxSvc *sandbox.Service
	queueSvc   *queue.Service
	webSvc     *web.Service
	mcpSvc     *mcpserver.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		sandboxSvc: do.MustInvoke[*sandbox.Service](di),
		queueSvc:   do.MustInvoke[*queue.Service](di),
		webSvc:     do.MustInvoke[*web.Service](di),
		mcpSvc:     do.MustInvoke[*mcpserver.Service](di),
	}, nil
}

func (s *Service) Run(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.webSvc.Run(ctx)
	})

	if s.mcpSvc.Enabled() {
		g.Go(func() error {
			return s.mcpSvc.Run(ctx)
		})
	}

	g.Go(func() error {
		return s.consume(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Engine stopped", "error", err)
	}
}

func (s *Service) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-s.queueSvc.Channel():
			if !ok {
				return context.Canceled
			}

			start := time.Now()
			s.sandboxSvc.ProcessMessage(u.Text)

			slog.Info("Processed utterance",
				"text", u.Text,
				"duration", time.Since(start))
		}
	}
}
