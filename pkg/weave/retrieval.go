package weave

import (
	"sort"

	"github.com/fourthplaces/rootsignal/pkg/embed"
)

const (
	defaultCandidateThreshold = 0.60
	coldNarrativeThreshold    = 0.75
	coldCausalThreshold       = 0.80
	wideNetCauseHeatMin       = 0.50
	wideNetThreshold          = 0.45
)

// Thresholds mirrors config.WeaveConfig, kept as a plain struct so retrieval
// has no dependency on the config package.
type Thresholds struct {
	Candidate        float64
	ColdNarrative    float64
	ColdCausal       float64
	WideNetCauseHeat float64
	WideNet          float64
}

// DefaultThresholds returns the built-in thresholds from spec.md §4.6.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Candidate:        defaultCandidateThreshold,
		ColdNarrative:    coldNarrativeThreshold,
		ColdCausal:       coldCausalThreshold,
		WideNetCauseHeat: wideNetCauseHeatMin,
		WideNet:          wideNetThreshold,
	}
}

// scored is one SituationCandidate paired with its score against a signal.
type scored struct {
	candidate SituationCandidate
	score     float64
}

// candidatesFor scores every situation against signal and returns the ones
// that pass, highest score first.
//
// Base rule: candidate passes if its best embedding (narrative or causal)
// scores above t.Candidate. If the single best-scoring candidate overall has
// arc=cold, the bar tightens to t.ColdNarrative/t.ColdCausal for that
// comparison. If nothing passes and the signal's cause_heat >= t.WideNetCauseHeat,
// arc=developing candidates above t.WideNet are admitted instead.
func candidatesFor(signal CandidateSignal, situations []SituationCandidate, t Thresholds) []SituationCandidate {
	if len(situations) == 0 {
		return nil
	}

	all := make([]scored, 0, len(situations))
	for _, sit := range situations {
		all = append(all, scored{candidate: sit, score: bestScore(signal.Embedding, sit)})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score > all[j].score })

	threshold := t.Candidate
	if all[0].candidate.Arc == ArcCold {
		threshold = coldThresholdFor(signal.Embedding, all[0].candidate, t)
	}

	var passing []SituationCandidate
	for _, s := range all {
		if s.score >= threshold {
			passing = append(passing, s.candidate)
		}
	}
	if len(passing) > 0 {
		return passing
	}

	if signal.CauseHeat < t.WideNetCauseHeat {
		return nil
	}
	for _, s := range all {
		if s.candidate.Arc == ArcDeveloping && s.score >= t.WideNet {
			passing = append(passing, s.candidate)
		}
	}
	return passing
}

// bestScore is max(cos(signal, narrative), cos(signal, causal)).
func bestScore(signalEmb []float32, sit SituationCandidate) float64 {
	n := embed.Cosine(signalEmb, sit.NarrativeEmbedding)
	c := embed.Cosine(signalEmb, sit.CausalEmbedding)
	if c > n {
		return c
	}
	return n
}

// coldThresholdFor picks whichever of narrative/causal is driving the match
// and returns the matching tightened threshold for a cold-arc top candidate.
func coldThresholdFor(signalEmb []float32, sit SituationCandidate, t Thresholds) float64 {
	n := embed.Cosine(signalEmb, sit.NarrativeEmbedding)
	c := embed.Cosine(signalEmb, sit.CausalEmbedding)
	if c > n {
		return t.ColdCausal
	}
	return t.ColdNarrative
}
