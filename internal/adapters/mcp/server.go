package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gonewton"
)

// Server exposes the calculator as Model Context Protocol tools.
type Server struct {
	mcpServer *server.MCPServer
	log       *slog.Logger
	defaults  []gonewton.Option
}

// NewServer registers the tools. maxIterations and samples are used when a
// call leaves them out.
func NewServer(version string, logger *slog.Logger, maxIterations, samples int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcpServer: server.NewMCPServer("gonewton", version, server.WithToolCapabilities(false)),
		log:       logger,
		defaults: []gonewton.Option{
			gonewton.WithLogger(logger),
			gonewton.WithDefaults(maxIterations, samples),
		},
	}
	s.registerTools()
	return s
}

// ServeStdio serves on Stdin/Stdout. Logs must not go to Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	solveTool := mcp.NewTool("newton_raphson",
		mcp.WithDescription("Find a root of f(x) with Newton-Raphson. Returns the iteration trace, the terminal result and plot data."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("f(x), e.g. x^2 - 4, 3x + sin x, e^x - 2")),
		mcp.WithString("initialGuess", mcp.Required(), mcp.Description("Starting point x0")),
		mcp.WithString("stopPercent", mcp.Required(), mcp.Description("Stop when the relative error in percent drops below this")),
		mcp.WithNumber("maxIterations", mcp.Description("Iteration cap (default 50)"), mcp.Min(0), mcp.Max(gonewton.MaxIterationsLimit)),
		mcp.WithNumber("samples", mcp.Description("Curve samples for the plot data (default 400)"), mcp.Min(0), mcp.Max(gonewton.MaxSamples)),
	)
	s.mcpServer.AddTool(solveTool, mcp.NewStructuredToolHandler(s.handleSolve))

	diffTool := mcp.NewTool("differentiate",
		mcp.WithDescription("Exact derivative of an expression."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression to differentiate")),
		mcp.WithString("var", mcp.Description("Variable (default x)")),
		mcp.WithNumber("order", mcp.Description("Derivative order (default 1)"), mcp.Min(1), mcp.Max(gonewton.MaxDiffOrder)),
	)
	s.mcpServer.AddTool(diffTool, s.toolHandler("differentiate"))

	evalTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate f(x) at a point."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("f(x)")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Point to evaluate at")),
	)
	s.mcpServer.AddTool(evalTool, s.toolHandler("evaluate"))
}

func (s *Server) handleSolve(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (*gonewton.Response, error) {
	req, err := gonewton.DecodeRequest(args)
	if err != nil {
		return nil, err
	}
	resp := gonewton.Calculate(req, s.defaults...)
	if resp.Result.Status.IsRequestError() {
		return nil, errors.New(resp.Result.Message)
	}
	return resp, nil
}

// toolHandler forwards a call to the generic tool surface and returns its
// text form.
func (s *Server) toolHandler(tool string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := gonewton.HandleToolCall(gonewton.ToolRequest{
			Tool:   tool,
			Params: request.GetArguments(),
		}, s.defaults...)
		if resp.Error != "" {
			return mcp.NewToolResultError(resp.Error), nil
		}
		return mcp.NewToolResultText(resp.String), nil
	}
}
