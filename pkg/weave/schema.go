package weave

// toolSchema is the JSON Schema handed to llm.ToolRequest.Schema, mirroring
// WeavingResponse's json tags.
func toolSchema() map[string]any {
	str := map[string]any{"type": "string"}
	strArray := map[string]any{"type": "array", "items": str}

	newSituation := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"temp_id":           str,
			"headline":          str,
			"lede":              str,
			"arc":               str,
			"structured_state":  str,
			"root_cause_thesis": str,
			"signal_ids":        strArray,
		},
		"required": []any{"temp_id", "headline", "arc", "signal_ids"},
	}

	changedSituation := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"situation_id": str,
			"field_changes": map[string]any{
				"type": "object",
			},
			"added_signal_ids": strArray,
		},
		"required": []any{"situation_id"},
	}

	dispatch := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"situation_id":     str,
			"body":             str,
			"cited_signal_ids": strArray,
		},
		"required": []any{"situation_id", "body", "cited_signal_ids"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"new_situations":     map[string]any{"type": "array", "items": newSituation},
			"changed_situations": map[string]any{"type": "array", "items": changedSituation},
			"dispatches":         map[string]any{"type": "array", "items": dispatch},
		},
		"required": []any{"new_situations", "changed_situations", "dispatches"},
	}
}
