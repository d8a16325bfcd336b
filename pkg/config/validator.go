package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate runs go-playground/validator struct-tag validation over the
// fully-resolved Config, the same library jordigilh-kubernaut uses for its
// own request validation and RootSignal's extraction responses (pkg/extract).
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		first := verrs[0]
		return fmt.Errorf("%w: %w", ErrValidationFailed, &ValidationError{
			Field: first.Namespace(),
			Tag:   first.Tag(),
			Err:   first,
		})
	}

	if len(cfg.Scopes) == 0 {
		return fmt.Errorf("%w: at least one scope is required", ErrValidationFailed)
	}
	seen := make(map[string]bool, len(cfg.Scopes))
	for _, s := range cfg.Scopes {
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate scope name %q", ErrValidationFailed, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
