// ABOUTME: MCP server for the journey tracker.
// ABOUTME: Exposes tracking tools and summary resources over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/cache"
	"github.com/harperreed/journey/internal/state"
	"github.com/harperreed/journey/internal/storage"
	"github.com/harperreed/journey/internal/tracker"
)

// Server wraps the MCP server with the tracker and state facade.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	svc       *tracker.Service
	state     *state.Facade
	cache     cache.Cache
}

// NewServer creates an MCP server backed by repo.
func NewServer(repo storage.Repository) (*Server, error) {
	rc, err := cache.NewRistrettoCache()
	if err != nil {
		return nil, fmt.Errorf("create state cache: %w", err)
	}
	return newServer(tracker.New(repo), rc), nil
}

func newServer(svc *tracker.Service, c cache.Cache) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "journey",
		Version: "1.0.0",
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		repo:      svc.Repository(),
		svc:       svc,
		state:     state.New(svc, c),
		cache:     c,
	}

	s.registerTools()
	s.registerResources()

	return s
}

// Serve runs the server on stdio until ctx is cancelled or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	log.Info("mcp: serving on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Close releases the state cache.
func (s *Server) Close() {
	if rc, ok := s.cache.(*cache.RistrettoCache); ok {
		rc.Close()
	}
}
