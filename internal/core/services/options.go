package services

import (
	"embed"
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/xeipuuv/gojsonschema"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// optionsSchema validates service and content set options. Unknown
// top-level keys are allowed; the gateway ignores what it does not know.
var optionsSchema = mustLoadSchema("schemas/options.json")

func mustLoadSchema(name string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// DefaultServiceOptions returns the options a new service starts with.
func DefaultServiceOptions() map[string]any {
	return map[string]any{
		"headers": map[string]any{
			"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Requested-With",
			"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
			"Access-Control-Allow-Origin":  "*",
		},
		"logging": map[string]any{
			"request": map[string]any{
				"headers": true,
				"body":    true,
			},
			"response": map[string]any{
				"headers": true,
				"body":    true,
			},
			"exceptions": true,
		},
		"returnInternalErrorDetails": true,
	}
}

// mergeOptions deep-merges options over the defaults. Values given by the
// caller win.
func mergeOptions(options map[string]any) (map[string]any, error) {
	merged := DefaultServiceOptions()
	if err := mergo.Merge(&merged, options, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge options: %w", err)
	}
	return merged, nil
}

// ValidateOptions checks options against the options schema.
func ValidateOptions(options map[string]any) error {
	if options == nil {
		return nil
	}
	result, err := optionsSchema.Validate(gojsonschema.NewGoLoader(options))
	if err != nil {
		return fmt.Errorf("%w: options: %v", domain.ErrValidation, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: options: %s", domain.ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}
