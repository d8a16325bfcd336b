// Package api exposes the append/read/submission operations described in
// the external-interfaces design over HTTP using gin-gonic/gin. It is
// consumed only by optional external collaborators (an admin UI, a GraphQL
// facade) — no other RootSignal package imports it.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/metrics"
	"github.com/fourthplaces/rootsignal/pkg/promote"
)

// maxSubmissionBodyBytes caps request bodies at 64 KB — generous for a
// URL-plus-reason submission, small enough to reject abusive payloads
// before they reach JSON decoding.
const maxSubmissionBodyBytes = 64 * 1024

// eventAppender is the narrow slice of *eventstore.Store the API needs:
// appending new events and pinging Postgres for the health check. Narrowed
// to an interface so tests can exercise routes without a live connection,
// the same technique pkg/reap's appender interface uses for the event
// store.
type eventAppender interface {
	Append(ctx context.Context, ev eventstore.Event) (eventstore.StoredEvent, error)
	Ping(ctx context.Context) error
}

// Server is the read/submission HTTP API.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	store      eventAppender
	reader     *graph.Reader
	projector  *graph.Projector
	promoter   *promote.Promoter
}

// NewServer builds a Server and registers its routes. promoter is reused
// from the same Link Promoter config the Scout Pipeline uses, so a
// submitted URL is canonicalized and deduplicated identically regardless
// of whether it arrived via scraping or a human submission.
func NewServer(cfg *config.Config, store eventAppender, reader *graph.Reader, projector *graph.Projector, promoter *promote.Promoter) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), securityHeaders(), bodyLimit(maxSubmissionBodyBytes))

	s := &Server{
		engine:    engine,
		cfg:       cfg,
		store:     store,
		reader:    reader,
		projector: projector,
		promoter:  promoter,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.engine.Group("/api/v1")

	v1.GET("/nodes", s.listRecentHandler)
	v1.GET("/nodes/scope", s.listRecentForScopeHandler)
	v1.GET("/nodes/:id", s.getNodeDetailHandler)

	v1.GET("/stories/top", s.topStoriesByEnergyHandler)
	v1.GET("/stories/scope", s.topStoriesForScopeHandler)
	v1.GET("/stories/:id", s.storyWithSignalsHandler)

	v1.GET("/tensions/:id/responses", s.tensionResponsesHandler)

	v1.GET("/actors/scope", s.actorsActiveInAreaHandler)
	v1.GET("/actors/:id", s.actorDetailHandler)
	v1.GET("/actors/:id/stories", s.actorStoriesHandler)

	v1.POST("/submissions", s.submitHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener. Used
// by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health. Only RootSignal's own dependencies
// (Postgres event log) are checked; Neo4j is probed too but a single slow
// query there degrades rather than fails the check, since the graph is
// rebuildable from the event log and should not take the process down.
func (s *Server) healthHandler(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := healthStatusHealthy
	checks := make(map[string]HealthCheck)

	if err := s.store.Ping(reqCtx); err != nil {
		status = healthStatusUnhealthy
		checks["event_log"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
	} else {
		checks["event_log"] = HealthCheck{Status: healthStatusHealthy}
	}

	if _, err := s.reader.ListRecent(reqCtx, 1, nil); err != nil {
		if status == healthStatusHealthy {
			status = healthStatusDegraded
		}
		checks["graph"] = HealthCheck{Status: healthStatusDegraded, Message: err.Error()}
	} else {
		checks["graph"] = HealthCheck{Status: healthStatusHealthy}
	}

	httpStatus := http.StatusOK
	if status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, &HealthResponse{Status: status, Checks: checks})
}
