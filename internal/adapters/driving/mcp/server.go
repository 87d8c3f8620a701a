package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/restgate/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// DefaultHost is the interface the HTTP transport binds to. The tools write
// gateway metadata without authentication, so only loopback is the default.
const DefaultHost = "127.0.0.1"

const shutdownTimeout = 5 * time.Second

const instructions = `restgate administers the metadata of a REST gateway:
services (host + context root), their auth apps, static content sets and
the auth vendors.

Tools never prompt. Name a service by service_id or by url_host_name plus
url_context_root; with no reference the current service, or the only
service, is used. Paths start with "/". Mutations return the affected IDs.`

// Server is the MCP server for restgate.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "restgate",
		Title:   "REST gateway metadata",
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions:       instructions,
		InitializedHandler: s.clientConnected,
	})
	s.server.AddReceivingMiddleware(logToolCalls)

	s.registerTools()
	s.registerResources()

	return s, nil
}

func (s *Server) clientConnected(_ context.Context, req *mcp.InitializedRequest) {
	client := "unknown client"
	if req.Session != nil {
		if p := req.Session.InitializeParams(); p != nil && p.ClientInfo != nil {
			client = p.ClientInfo.Name + " " + p.ClientInfo.Version
		}
	}
	logger.Info("mcp: %s connected", client)
}

// logToolCalls tags each tool call with an operation id, so the log lines of
// the admin services it runs can be told apart.
func logToolCalls(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		call, ok := req.(*mcp.CallToolRequest)
		if !ok || call.Params == nil {
			return next(ctx, method, req)
		}

		ctx, log := logger.WithOperation(ctx, "mcp."+call.Params.Name)
		start := time.Now()
		res, err := next(ctx, method, req)
		log = log.WithField("duration", time.Since(start).Round(time.Millisecond))

		switch r, _ := res.(*mcp.CallToolResult); {
		case err != nil:
			log.WithError(err).Warn("tool call failed")
		case r != nil && r.IsError:
			log.Warn("tool call returned an error")
		default:
			log.Debug("tool call done")
		}
		return res, err
	}
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Listen opens the HTTP listener for Serve. An empty host means DefaultHost
// and port 0 picks a free port.
func Listen(host string, port int) (net.Listener, error) {
	if host == "" {
		host = DefaultHost
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("listening on %s:%d: %w", host, port, err)
	}
	return ln, nil
}

// Serve serves streamable HTTP on ln until ctx is cancelled, then shuts
// down. Sessions still open after the shutdown timeout are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()
	logger.Debug("mcp: serving on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("mcp: shutdown: %v", err)
		return httpServer.Close()
	}
	return nil
}
