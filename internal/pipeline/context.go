// Package pipeline models the execution context the hosting CRM platform
// supplies to event handlers: the triggering message, named post-images, the
// acting user, and the per-operation results handlers report back.
package pipeline

import (
	"encoding/json"
	"fmt"
)

// Stage identifies where in the platform's event pipeline a handler runs.
type Stage string

const (
	StagePreValidation Stage = "PreValidation"
	StagePreOperation  Stage = "PreOperation"
	StagePostOperation Stage = "PostOperation"
)

// Mode identifies how the platform invokes the handler.
type Mode string

const (
	ModeSynchronous  Mode = "Synchronous"
	ModeAsynchronous Mode = "Asynchronous"
)

// Platform message names handlers register against.
const (
	MessageCreate = "Create"
	MessageUpdate = "Update"
	MessageDelete = "Delete"
)

// EntityReference is a typed pointer to another record.
type EntityReference struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// Record is a snapshot of a record's field values, as captured in a named
// image. Attribute access is through typed getters because the platform
// delivers attributes as loosely typed JSON.
type Record struct {
	ID         string                 `json:"id"`
	Entity     string                 `json:"entity,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// GetString returns the named attribute as a string. The second return value
// reports whether the attribute was present at all; an empty string that is
// present is returned as-is.
func (r *Record) GetString(name string) (string, bool) {
	v, ok := r.Attributes[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the named attribute as a bool.
func (r *Record) GetBool(name string) (bool, bool) {
	v, ok := r.Attributes[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetRef returns the named attribute as an entity reference. References
// arrive either as a decoded JSON object or as an already-typed
// EntityReference when events are constructed in-process.
func (r *Record) GetRef(name string) (*EntityReference, bool) {
	v, ok := r.Attributes[name]
	if !ok || v == nil {
		return nil, false
	}

	switch ref := v.(type) {
	case *EntityReference:
		return ref, true
	case EntityReference:
		return &ref, true
	case map[string]interface{}:
		out := &EntityReference{}
		if entity, ok := ref["entity"].(string); ok {
			out.Entity = entity
		}
		if id, ok := ref["id"].(string); ok {
			out.ID = id
		}
		if out.ID == "" {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

// Event is the execution context for one pipeline invocation. It carries
// everything a handler may depend on; handlers receive it as an explicit
// parameter, never through ambient lookups.
type Event struct {
	MessageName   string             `json:"messageName"`
	EntityName    string             `json:"entityName"`
	Stage         Stage              `json:"stage"`
	Mode          Mode               `json:"mode"`
	UserID        string             `json:"userId"`
	CorrelationID string             `json:"correlationId,omitempty"`
	PostImages    map[string]*Record `json:"postImages,omitempty"`
}

// PostImage returns the named post-image, reporting absence explicitly. The
// platform does not guarantee a registered image is present.
func (e *Event) PostImage(name string) (*Record, bool) {
	img, ok := e.PostImages[name]
	if !ok || img == nil {
		return nil, false
	}
	return img, true
}

// DecodeEvent parses a service-hook callback body into an Event.
func DecodeEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}
	return &event, nil
}
