package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStep(id string) Step {
	return Step{
		ID:      id,
		Handler: "account-post-create",
		Message: "Create",
		Entity:  "account",
		Stage:   "PostOperation",
		Mode:    "Synchronous",
		Rank:    1,
		PostImage: &ImageDefinition{
			Name:       "PostImage",
			Attributes: []string{"name", "parentaccountid"},
		},
	}
}

func TestStepRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StepRegistry)
		wantErr string
	}{
		{"valid", func(r *StepRegistry) {}, ""},
		{"no steps", func(r *StepRegistry) { r.Steps = nil }, "no steps"},
		{"missing id", func(r *StepRegistry) { r.Steps[0].ID = "" }, "id is required"},
		{"duplicate id", func(r *StepRegistry) { r.Steps = append(r.Steps, validStep("s1")) }, "duplicate id"},
		{"missing handler", func(r *StepRegistry) { r.Steps[0].Handler = "" }, "handler is required"},
		{"missing entity", func(r *StepRegistry) { r.Steps[0].Entity = "" }, "message and entity"},
		{"invalid stage", func(r *StepRegistry) { r.Steps[0].Stage = "PostCommit" }, "invalid stage"},
		{"invalid mode", func(r *StepRegistry) { r.Steps[0].Mode = "Deferred" }, "invalid mode"},
		{"unnamed post-image", func(r *StepRegistry) { r.Steps[0].PostImage = &ImageDefinition{} }, "post-image name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &StepRegistry{Version: "1.0.0", Steps: []Step{validStep("s1")}}
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.json")
	manifest := `{
		"version": "1.0.0",
		"lastUpdated": "2026-08-20",
		"steps": [
			{
				"id": "account-post-create",
				"handler": "account-post-create",
				"message": "Create",
				"entity": "account",
				"stage": "PostOperation",
				"mode": "Synchronous",
				"rank": 1,
				"postImage": {"name": "PostImage", "attributes": ["name"]}
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	require.Len(t, reg.Steps, 1)
	assert.Equal(t, "1.0.0", reg.Version)

	step, ok := reg.FindByHandler("account-post-create")
	require.True(t, ok)
	assert.Equal(t, "PostImage", step.PostImage.Name)

	_, ok = reg.FindByHandler("unknown")
	assert.False(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
