package weave

// WeavingResponse is the forced tool-call shape the weave LLM call returns.
type WeavingResponse struct {
	NewSituations     []NewSituation     `json:"new_situations"`
	ChangedSituations []ChangedSituation `json:"changed_situations"`
	Dispatches        []Dispatch         `json:"dispatches"`
}

// NewSituation is created when no retrieval candidate fits a signal. TempID
// is an opaque string the caller remaps to a real UUID before projection.
type NewSituation struct {
	TempID          string   `json:"temp_id"`
	Headline        string   `json:"headline"`
	Lede            string   `json:"lede"`
	Arc             string   `json:"arc"`
	StructuredState string   `json:"structured_state,omitempty"`
	RootCauseThesis string   `json:"root_cause_thesis,omitempty"`
	SignalIDs       []string `json:"signal_ids"`
}

// ChangedSituation patches an existing Situation's state, optionally
// widening its signal set.
type ChangedSituation struct {
	SituationID    string         `json:"situation_id"`
	FieldChanges   map[string]any `json:"field_changes,omitempty"`
	AddedSignalIDs []string       `json:"added_signal_ids,omitempty"`
}

// Dispatch is one editorial write-up. SituationID may be a TempID from
// NewSituations in the same response; the caller remaps it.
type Dispatch struct {
	SituationID    string   `json:"situation_id"`
	Body           string   `json:"body"`
	CitedSignalIDs []string `json:"cited_signal_ids"`
}
