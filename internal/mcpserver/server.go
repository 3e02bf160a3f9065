// Package mcpserver exposes the job wizard as MCP tools so an agent can
// fill in and submit a draft through the same controller the terminal
// wizard uses.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/recruitdash/recruitdash/internal/ats"
	"github.com/recruitdash/recruitdash/internal/logger"
	"github.com/recruitdash/recruitdash/internal/lookup"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

// Directory is the ATS lookup surface the tools need. *ats.Client
// satisfies it.
type Directory interface {
	SearchOrganizations(ctx context.Context, query string) ([]ats.Organization, error)
	GetOrganization(ctx context.Context, id int64) (ats.Organization, error)
	ListDepartments(ctx context.Context, orgID int64) ([]ats.Department, error)
	ListContacts(ctx context.Context, orgID int64) ([]ats.Contact, error)
	ListRecruiters(ctx context.Context) ([]ats.Recruiter, error)
	ListWorkflows(ctx context.Context) ([]ats.Workflow, error)
	ListCategories(ctx context.Context) ([]ats.Category, error)
}

// listTTL bounds how long lookup lists are reused for label resolution.
const listTTL = 5 * time.Minute

// Server manages an embedded MCP HTTP server over one wizard controller.
type Server struct {
	ctrl *wizard.Controller
	dir  Directory
	log  *logger.Logger

	departments *lookup.Keyed[int64, []ats.Department]
	contacts    *lookup.Keyed[int64, []ats.Contact]
	recruiters  *lookup.Keyed[struct{}, []ats.Recruiter]
	workflows   *lookup.Keyed[struct{}, []ats.Workflow]
	categories  *lookup.Keyed[struct{}, []ats.Category]

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	addr       string
	mu         sync.Mutex
}

// New creates a server. It is not listening until Start is called.
func New(ctrl *wizard.Controller, dir Directory) *Server {
	s := &Server{
		ctrl:        ctrl,
		dir:         dir,
		log:         logger.Named("mcp"),
		departments: lookup.NewKeyed[int64, []ats.Department](listTTL),
		contacts:    lookup.NewKeyed[int64, []ats.Contact](listTTL),
		recruiters:  lookup.NewKeyed[struct{}, []ats.Recruiter](listTTL),
		workflows:   lookup.NewKeyed[struct{}, []ats.Workflow](listTTL),
		categories:  lookup.NewKeyed[struct{}, []ats.Category](listTTL),
	}
	s.mcpServer = server.NewMCPServer(
		"recruitdash-wizard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Start listens on addr and serves the MCP endpoint in the background.
// An addr with port 0 picks a free port. It returns the bound address.
func (s *Server) Start(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return "", fmt.Errorf("server already started")
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	// Listen first so the reported port is the bound one.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.addr = listener.Addr().String()

	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = mcpHandler

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error: %v", err)
		}
	}()

	s.log.Info("listening on %s", s.addr)
	return s.addr, nil
}

// Stop shuts the HTTP server down. It is a no-op when not started.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	s.log.Debug("stopping")
	if err := s.stdServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.httpServer = nil
	s.stdServer = nil
	return nil
}

// URL returns the HTTP URL of the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://%s/mcp", s.addr)
}

// session reopens the controller when the previous session ended, so the
// next tool call starts a fresh one.
func (s *Server) session() *wizard.Controller {
	if s.ctrl.Closed() {
		s.log.Debug("starting a new wizard session")
		s.ctrl.Reopen()
	}
	return s.ctrl
}
