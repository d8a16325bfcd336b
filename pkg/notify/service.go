// Package notify delivers editorial dispatch notifications to Slack,
// adapted from the teacher's session-notification client onto RootSignal's
// dispatch_created events.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/config"
)

// DispatchInput carries everything BuildDispatchMessage needs for one
// dispatch_created event.
type DispatchInput struct {
	DispatchID        string
	SituationID       string
	SituationHeadline string
	Sensitivity       string
	Body              string
	CitedSignalIDs    []string
	InvalidCitation   bool
	FlagReasons       []string
	DashboardURL      string
}

// Service handles Slack dispatch delivery. Nil-safe: every method is a
// no-op when the service itself is nil, so callers need not branch on
// whether notifications are configured.
type Service struct {
	client       *Client
	dashboardURL string
	logger       *slog.Logger
}

// NewService builds a Service from resolved config, or returns nil if
// notifications are disabled.
func NewService(cfg *config.NotifyConfig, token, dashboardURL string) *Service {
	if cfg == nil || !cfg.Enabled || token == "" || cfg.Channel == "" {
		return nil
	}
	return &Service{
		client:       NewClient(token, cfg.Channel),
		dashboardURL: dashboardURL,
		logger:       slog.Default().With("component", "notify-service"),
	}
}

// NewServiceWithClient builds a Service backed by a pre-built Client.
// Useful for testing against a mock API server.
func NewServiceWithClient(client *Client, dashboardURL string) *Service {
	return &Service{
		client:       client,
		dashboardURL: dashboardURL,
		logger:       slog.Default().With("component", "notify-service"),
	}
}

// NotifyDispatch posts a dispatch_created event to the configured channel.
// Fail-open: errors are logged, never returned, so a Slack outage never
// blocks the pipeline that produced the dispatch. Re-posting the same
// DispatchID is suppressed via the embedded fingerprint.
func (s *Service) NotifyDispatch(ctx context.Context, input DispatchInput) {
	if s == nil {
		return
	}

	existing, err := s.client.FindMessageByFingerprint(ctx, dispatchFingerprint(input.DispatchID))
	if err != nil {
		s.logger.Warn("notify: fingerprint lookup failed", "dispatch_id", input.DispatchID, "error", err)
	}
	if existing != "" {
		return
	}

	if input.DashboardURL == "" {
		input.DashboardURL = s.dashboardURL
	}
	blocks := BuildDispatchMessage(input)
	if err := s.client.PostMessage(ctx, blocks, "", 10*time.Second); err != nil {
		s.logger.Error("notify: failed to post dispatch", "dispatch_id", input.DispatchID, "error", err)
	}
}
