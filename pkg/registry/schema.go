// Package registry describes the step-registration manifest: the deployment
// contract binding each handler to a platform message, entity, pipeline
// stage, execution mode, and the post-image it needs.
package registry

import "fmt"

type StepRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Steps       []Step `json:"steps"`
}

type Step struct {
	ID          string           `json:"id"`
	Handler     string           `json:"handler"`
	DisplayName string           `json:"displayName,omitempty"`
	Description string           `json:"description,omitempty"`
	Message     string           `json:"message"`
	Entity      string           `json:"entity"`
	Stage       string           `json:"stage"`
	Mode        string           `json:"mode"`
	Rank        int              `json:"rank,omitempty"`
	PostImage   *ImageDefinition `json:"postImage,omitempty"`
}

// ImageDefinition names the record snapshot the platform must capture for the
// step, and the attributes it must contain.
type ImageDefinition struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes,omitempty"`
}

var validStages = map[string]bool{
	"PreValidation": true,
	"PreOperation":  true,
	"PostOperation": true,
}

var validModes = map[string]bool{
	"Synchronous":  true,
	"Asynchronous": true,
}

// Validate checks structural consistency of the manifest.
func (r *StepRegistry) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("registry contains no steps")
	}

	seen := make(map[string]bool, len(r.Steps))
	for i, step := range r.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d: id is required", i)
		}
		if seen[step.ID] {
			return fmt.Errorf("step %q: duplicate id", step.ID)
		}
		seen[step.ID] = true

		if step.Handler == "" {
			return fmt.Errorf("step %q: handler is required", step.ID)
		}
		if step.Message == "" || step.Entity == "" {
			return fmt.Errorf("step %q: message and entity are required", step.ID)
		}
		if !validStages[step.Stage] {
			return fmt.Errorf("step %q: invalid stage %q", step.ID, step.Stage)
		}
		if !validModes[step.Mode] {
			return fmt.Errorf("step %q: invalid mode %q", step.ID, step.Mode)
		}
		if step.PostImage != nil && step.PostImage.Name == "" {
			return fmt.Errorf("step %q: post-image name is required", step.ID)
		}
	}

	return nil
}

// FindByHandler returns the step registered for the named handler.
func (r *StepRegistry) FindByHandler(handler string) (*Step, bool) {
	for i := range r.Steps {
		if r.Steps[i].Handler == handler {
			return &r.Steps[i], true
		}
	}
	return nil, false
}
