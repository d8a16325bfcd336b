package materialize

// storyCategories is the fixed editorial category list the Synthesizer must
// choose from. Housing/labor/etc. map to how respondent signals cluster in
// practice; "other" is the escape hatch for anything that doesn't fit.
var storyCategories = []any{
	"housing", "labor", "health", "environment", "governance",
	"safety", "education", "economy", "other",
}

// synthesisSchema is the JSON Schema handed to llm.ToolRequest.Schema for the
// Phase C Enrich call.
func synthesisSchema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline":  str,
			"lede":      str,
			"narrative": str,
			"arc": map[string]any{
				"type": "string",
				"enum": []any{"emerging", "growing", "stable", "fading", "resurgent"},
			},
			"category":        map[string]any{"type": "string", "enum": storyCategories},
			"action_guidance": str,
		},
		"required": []any{"headline", "lede", "narrative", "arc", "category"},
	}
}
