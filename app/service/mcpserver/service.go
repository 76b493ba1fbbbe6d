package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cleanmachine/app/config"
	"cleanmachine/app/service/queue"
	"cleanmachine/app/service/sandbox"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Service exposes the sandbox as MCP tools over streamable HTTP, so an
// agent host can drive the same conversation the web UI does.
type Service struct {
	cfg        *config.Config
	sandboxSvc *sandbox.Service
	queueSvc   *queue.Service
	srv        *server.MCPServer
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		sandboxSvc: do.MustInvoke[*sandbox.Service](di),
		queueSvc:   do.MustInvoke[*queue.Service](di),
	}

	srv := server.NewMCPServer(
		"cleanmachine-sandbox",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(srv)
	s.srv = srv

	return s, nil
}

func (s *Service) Enabled() bool {
	return s.cfg.MCP.Enabled
}

func (s *Service) registerTools(srv *server.MCPServer) {
	send := mcp.NewTool("send_message",
		mcp.WithDescription("Send a customer message into the sandbox conversation"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text")),
	)
	srv.AddTool(send, s.handleSendMessage)

	setMode := mcp.NewTool("set_mode",
		mcp.WithDescription("Switch the sandbox to a scenario, discarding the current conversation"),
		mcp.WithString("mode", mcp.Required(),
			mcp.Description("One of: free, new-lead, rain-reschedule, follow-up, upsell")),
	)
	srv.AddTool(setMode, s.handleSetMode)

	reset := mcp.NewTool("reset_sandbox",
		mcp.WithDescription("Reset the current scenario to its initial state"),
	)
	srv.AddTool(reset, s.handleReset)

	state := mcp.NewTool("get_state",
		mcp.WithDescription("Get the current conversation snapshot (messages, timeline events, phase, slots) as JSON"),
	)
	srv.AddTool(state, s.handleGetState)
}

func (s *Service) handleSendMessage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.queueSvc.Add(text)

	return mcp.NewToolResultText("queued"), nil
}

func (s *Service) handleSetMode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mode, err := sandbox.ParseMode(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.sandboxSvc.Initialize(mode)

	return mcp.NewToolResultText("mode set to " + raw), nil
}

func (s *Service) handleReset(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sandboxSvc.Reset()

	return mcp.NewToolResultText("sandbox reset"), nil
}

func (s *Service) handleGetState(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.sandboxSvc.Snapshot())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Service) Run(ctx context.Context) error {
	stream := server.NewStreamableHTTPServer(
		s.srv,
		server.WithEndpointPath("/mcp"),
	)

	httpSrv := &http.Server{
		Addr:        s.cfg.MCP.Listen,
		Handler:     stream,
		ReadTimeout: 5 * time.Second,
		// no write deadline, required for streaming responses
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("MCP server listening", "addr", s.cfg.MCP.Listen)

		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
