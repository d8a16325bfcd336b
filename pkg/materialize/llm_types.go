package materialize

// synthesisResponse is the decoded shape of the Phase C Enrich tool call.
type synthesisResponse struct {
	Headline       string `json:"headline"`
	Lede           string `json:"lede"`
	Narrative      string `json:"narrative"`
	Arc            string `json:"arc"`
	Category       string `json:"category"`
	ActionGuidance string `json:"action_guidance"`
}
