package pii

// Finding is one PII match surfaced by Detect.
type Finding struct {
	Pattern string
	Match   string
}

// Service sweeps free text for PII. Created once at application startup;
// stateless aside from its compiled patterns, safe for concurrent use.
type Service struct {
	patterns []*CompiledPattern
}

func NewService() *Service {
	return &Service{patterns: builtinPatterns()}
}

// Detect returns every PII match found in text, across all builtin patterns.
// A nil/empty result means the text is clean.
func (s *Service) Detect(text string) []Finding {
	var findings []Finding
	for _, p := range s.patterns {
		for _, m := range p.Regex.FindAllString(text, -1) {
			findings = append(findings, Finding{Pattern: p.Name, Match: m})
		}
	}
	return findings
}

// Mask replaces every PII match in text with its pattern's placeholder.
func (s *Service) Mask(text string) string {
	masked := text
	for _, p := range s.patterns {
		masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked
}
