package weave

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal/pkg/embed"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/llm"
	"github.com/fourthplaces/rootsignal/pkg/pii"
)

// Weaver wraps the LLM weave tool call plus the embedding and retrieval work
// around it.
type Weaver struct {
	client     llm.Client
	embedder   embed.Embedder
	pii        *pii.Service
	thresholds Thresholds
	logger     *slog.Logger
}

func New(client llm.Client, embedder embed.Embedder, piiSvc *pii.Service, logger *slog.Logger) *Weaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Weaver{
		client:     client,
		embedder:   embedder,
		pii:        piiSvc,
		thresholds: DefaultThresholds(),
		logger:     logger,
	}
}

// Weave runs retrieval for every signal in batch, sends the batch plus its
// candidates to the LLM, and translates the response into projector-ready
// payloads. Dispatches that fail verification are flagged, never dropped.
func (w *Weaver) Weave(ctx context.Context, batch []CandidateSignal, situations []SituationCandidate) (Result, error) {
	if len(batch) == 0 {
		return Result{}, nil
	}

	byID := make(map[string]CandidateSignal, len(batch))
	candidatesBySignal := make(map[string][]SituationCandidate, len(batch))
	knownSignalIDs := make(map[string]bool, len(batch))
	for _, s := range batch {
		byID[s.SignalID] = s
		knownSignalIDs[s.SignalID] = true
		candidatesBySignal[s.SignalID] = candidatesFor(s, situations, w.thresholds)
	}

	raw, err := w.client.CallTool(ctx, llm.ToolRequest{
		System:      systemPrompt,
		User:        buildPrompt(batch, candidatesBySignal),
		ToolName:    "weave_situations",
		Description: "Assign signals to situations and write cited dispatches.",
		Schema:      toolSchema(),
		MaxTokens:   4096,
	})
	if err != nil {
		return Result{}, fmt.Errorf("weave: llm call: %w", err)
	}

	var resp WeavingResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Result{}, fmt.Errorf("weave: decode tool response: %w", err)
	}

	tempIDs := make(map[string]string, len(resp.NewSituations))
	for _, ns := range resp.NewSituations {
		tempIDs[ns.TempID] = uuid.NewString()
	}
	resolveSituationID := func(id string) string {
		if real, ok := tempIDs[id]; ok {
			return real
		}
		return id
	}

	now := time.Now().UTC()
	var result Result

	for _, ns := range resp.NewSituations {
		situationID := tempIDs[ns.TempID]
		for _, sid := range ns.SignalIDs {
			knownSignalIDs[sid] = true
		}

		narrativeEmb := w.narrativeEmbedding(byID, ns.SignalIDs)
		causalEmb, err := w.causalEmbedding(ctx, ns.RootCauseThesis, narrativeEmb)
		if err != nil {
			return Result{}, fmt.Errorf("weave: causal embedding: %w", err)
		}

		result.Identified = append(result.Identified, eventstore.SituationIdentified{
			SituationID:        situationID,
			Headline:           ns.Headline,
			Lede:               ns.Lede,
			Arc:                ns.Arc,
			Sensitivity:        maxSensitivity(byID, ns.SignalIDs),
			StructuredState:    ns.StructuredState,
			SignalIDs:          ns.SignalIDs,
			NarrativeEmbedding: narrativeEmb,
			CausalEmbedding:    causalEmb,
			IdentifiedAt:       now,
		})
	}

	for _, cs := range resp.ChangedSituations {
		situationID := resolveSituationID(cs.SituationID)
		for _, sid := range cs.AddedSignalIDs {
			knownSignalIDs[sid] = true
		}
		result.Changed = append(result.Changed, eventstore.SituationChanged{
			SituationID:    situationID,
			Changes:        fieldChangesToCorrections(situationID, cs.FieldChanges),
			AddedSignalIDs: cs.AddedSignalIDs,
			ChangedAt:      now,
		})
	}

	for _, d := range resp.Dispatches {
		situationID := resolveSituationID(d.SituationID)
		invalidCitation, reasons := verifyDispatch(d.Body, d.CitedSignalIDs, knownSignalIDs, w.pii)
		if len(reasons) > 0 {
			w.logger.Warn("weave: dispatch flagged by verification", "situation_id", situationID, "reasons", reasons)
		}
		result.Dispatches = append(result.Dispatches, eventstore.DispatchCreated{
			DispatchID:      uuid.NewString(),
			SituationID:     situationID,
			Body:            d.Body,
			CitedSignalIDs:  d.CitedSignalIDs,
			InvalidCitation: invalidCitation,
			FlagReasons:     reasons,
			CreatedAt:       now,
		})
	}

	return result, nil
}

func (w *Weaver) narrativeEmbedding(byID map[string]CandidateSignal, signalIDs []string) []float32 {
	var vecs [][]float32
	for _, sid := range signalIDs {
		if s, ok := byID[sid]; ok && len(s.Embedding) > 0 {
			vecs = append(vecs, s.Embedding)
		}
	}
	return meanEmbedding(vecs)
}

func (w *Weaver) causalEmbedding(ctx context.Context, thesis string, narrative []float32) ([]float32, error) {
	if thesis == "" {
		return narrative, nil
	}
	vecs, err := w.embedder.Embed(ctx, []string{thesis})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return narrative, nil
	}
	return vecs[0], nil
}

func meanEmbedding(vecs [][]float32) []float32 {
	if len(vecs) == 0 {
		return nil
	}
	dim := len(vecs[0])
	sum := make([]float64, dim)
	for _, v := range vecs {
		for i := 0; i < dim && i < len(v); i++ {
			sum[i] += float64(v[i])
		}
	}
	out := make([]float32, dim)
	for i, s := range sum {
		out[i] = float32(s / float64(len(vecs)))
	}
	return out
}

var sensitivityRank = map[eventstore.Sensitivity]int{
	eventstore.SensitivityGeneral:   0,
	eventstore.SensitivityElevated:  1,
	eventstore.SensitivitySensitive: 2,
}

func maxSensitivity(byID map[string]CandidateSignal, signalIDs []string) eventstore.Sensitivity {
	best := eventstore.SensitivityGeneral
	for _, sid := range signalIDs {
		s, ok := byID[sid]
		if !ok || s.Sensitivity == "" {
			continue
		}
		if sensitivityRank[s.Sensitivity] > sensitivityRank[best] {
			best = s.Sensitivity
		}
	}
	return best
}

// fieldChangesToCorrections turns an LLM-supplied field_changes map into
// Correction records the projector's allow-list will check. OldValue is left
// nil: the weaver does not track the prior value, only the projector does
// via its own read-before-write when it chooses to.
func fieldChangesToCorrections(situationID string, changes map[string]any) []eventstore.Correction {
	if len(changes) == 0 {
		return nil
	}
	out := make([]eventstore.Correction, 0, len(changes))
	for field, newValue := range changes {
		out = append(out, eventstore.Correction{
			EntityID: situationID,
			Field:    field,
			NewValue: newValue,
		})
	}
	return out
}
