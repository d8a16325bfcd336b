package extract

// toolSchema is the JSON Schema handed to llm.ToolRequest.Schema, mirroring
// the Signal struct's json tags. Kept hand-written rather than reflected off
// the struct so the LLM-facing contract can evolve independently of the
// internal decode shape (e.g. enum wording, which fields are emphasized).
func toolSchema() map[string]any {
	str := map[string]any{"type": "string"}
	num := map[string]any{"type": "number"}
	boolean := map[string]any{"type": "boolean"}
	strArray := map[string]any{"type": "array", "items": str}

	signal := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"signal_type":      map[string]any{"type": "string", "enum": []any{"gathering", "aid", "need", "notice", "tension"}},
			"title":            str,
			"summary":          str,
			"sensitivity":      map[string]any{"type": "string", "enum": []any{"general", "elevated", "sensitive"}},
			"confidence":       num,
			"latitude":         num,
			"longitude":        num,
			"geo_precision":    map[string]any{"type": "string", "enum": []any{"exact", "neighborhood", "approximate"}},
			"location_name":    str,
			"starts_at":        str,
			"ends_at":          str,
			"action_url":       str,
			"organizer":        str,
			"is_recurring":     boolean,
			"availability":     str,
			"is_ongoing":       boolean,
			"urgency":          map[string]any{"type": "string", "enum": []any{"low", "medium", "high", "critical"}},
			"what_needed":      str,
			"goal":             str,
			"severity":         map[string]any{"type": "string", "enum": []any{"low", "medium", "high", "critical"}},
			"category":         str,
			"effective_date":   str,
			"source_authority": str,
			"content_date":     str,
			"mentioned_actors": strArray,
			"author_actor":     str,
			"what_would_help":  str,
			"implied_queries":  strArray,
			"resources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"slug":       str,
						"role":       map[string]any{"type": "string", "enum": []any{"requires", "prefers", "offers"}},
						"confidence": num,
						"context":    str,
					},
					"required": []any{"slug", "role", "confidence"},
				},
			},
			"tags":         strArray,
			"is_firsthand": boolean,
		},
		"required": []any{"signal_type", "title", "summary", "sensitivity", "confidence"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"signals": map[string]any{
				"type":  "array",
				"items": signal,
			},
		},
		"required": []any{"signals"},
	}
}
