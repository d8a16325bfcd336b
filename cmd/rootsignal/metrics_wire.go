package main

import (
	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/metrics"
)

// metricsFromConfig sets the gauges that reflect static configuration
// rather than run-to-run activity.
func metricsFromConfig(cfg *config.Config) {
	if cfg.Scout != nil {
		metrics.ScoutLLMBudgetRequestsPerRun.Set(float64(cfg.Scout.LLMBudgetRequestsPerRun))
	}
}
