package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

func TestDefaultServiceOptions_Fresh(t *testing.T) {
	a := DefaultServiceOptions()
	a["headers"].(map[string]any)["X-Mutated"] = "1"

	b := DefaultServiceOptions()
	assert.NotContains(t, b["headers"], "X-Mutated")
}

func TestMergeOptions(t *testing.T) {
	merged, err := mergeOptions(map[string]any{
		"logging": map[string]any{"exceptions": false},
		"custom":  "kept",
	})
	require.NoError(t, err)

	logging := merged["logging"].(map[string]any)
	assert.Equal(t, false, logging["exceptions"])
	assert.Contains(t, logging, "request")
	assert.Equal(t, "kept", merged["custom"])
	assert.Equal(t, true, merged["returnInternalErrorDetails"])
}

func TestMergeOptions_Nil(t *testing.T) {
	merged, err := mergeOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultServiceOptions(), merged)
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]any
		wantErr bool
	}{
		{name: "nil", options: nil},
		{name: "defaults", options: DefaultServiceOptions()},
		{name: "unknown keys", options: map[string]any{"anything": []any{1, 2}}},
		{name: "headers not object", options: map[string]any{"headers": "x"}, wantErr: true},
		{name: "header not string", options: map[string]any{"headers": map[string]any{"X": 1}}, wantErr: true},
		{name: "flag not boolean", options: map[string]any{"returnInternalErrorDetails": "yes"}, wantErr: true},
		{
			name:    "log target",
			options: map[string]any{"logging": map[string]any{"request": map[string]any{"body": "no"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOptions(tt.options)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
