package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/llm"
)

// Materializer runs the four always-on phases of the Story Materializer
// (C10) in order: Materialize, Grow, Enrich, Velocity/Energy. Like
// pkg/weave, a run only returns events; it never appends or projects them
// itself. That means each phase within one Run still reads the graph as it
// stood at the start of the run: a Story created by Materialize is not
// visible to Grow/Enrich/Score until the caller appends and projects this
// run's events and a subsequent Run begins.
type Materializer struct {
	reader *graph.Reader
	client llm.Client
	cfg    *config.MaterializeConfig
	logger *slog.Logger

	// now is a seam for deterministic tests; defaults to time.Now().UTC().
	now func() time.Time
}

func New(reader *graph.Reader, client llm.Client, cfg *config.MaterializeConfig, logger *slog.Logger) *Materializer {
	if cfg == nil {
		cfg = config.DefaultMaterializeConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		reader: reader,
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run executes all four phases in order and returns every event they
// produced, unappended. The caller appends and projects them (see
// cmd/rootsignal) before the next Run, so that run's Materialize output
// becomes visible to Grow/Enrich/Score.
func (m *Materializer) Run(ctx context.Context) (Result, error) {
	var total Result

	phases := []struct {
		name string
		fn   func(context.Context) (Result, error)
	}{
		{"materialize", m.materializeHubs},
		{"grow", m.growStories},
		{"enrich", m.enrichStories},
		{"score", m.scoreStories},
	}

	for _, phase := range phases {
		r, err := phase.fn(ctx)
		if err != nil {
			return total, fmt.Errorf("materialize: phase %s: %w", phase.name, err)
		}
		m.logger.Info("materialize: phase complete", "phase", phase.name,
			"materialized", len(r.Materialized), "changed", len(r.Changed))
		total.merge(r)
	}

	return total, nil
}
