package activity

import (
	"maps"
	"strings"
	"time"
)

// Verbs emitted by form sessions.
const (
	VerbValuesUpdated = "form.values.updated"
	VerbValidated     = "form.validated"
	VerbDestroyed     = "form.destroyed"
)

// ObjectTypeForm is the object type of every form session event.
const ObjectTypeForm = "form"

// Identity names who is driving a form session.
type Identity struct {
	ActorID  string
	UserID   string
	TenantID string
}

// FormEventInput describes the common fields of form session events.
type FormEventInput struct {
	Identity
	SessionID  string
	FormName   string
	Channel    string
	Fields     []string
	State      string
	ErrorCount int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildValuesUpdatedEvent describes a successful write of values onto a form.
func BuildValuesUpdatedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbValuesUpdated, input)
}

// BuildValidatedEvent describes a completed validation pass.
func BuildValidatedEvent(input FormEventInput) Event {
	event := buildFormEvent(VerbValidated, input)
	event.Metadata = ensureMetadata(event.Metadata)
	event.Metadata["error_count"] = input.ErrorCount
	event.Metadata["valid"] = input.ErrorCount == 0
	return event
}

// BuildDestroyedEvent describes a session releasing its form.
func BuildDestroyedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbDestroyed, input)
}

func buildFormEvent(verb string, input FormEventInput) Event {
	var metadata map[string]any
	if len(input.Metadata) > 0 {
		metadata = maps.Clone(input.Metadata)
	}
	if len(input.Fields) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["fields"] = append([]string{}, input.Fields...)
	}
	if input.State != "" {
		metadata = ensureMetadata(metadata)
		metadata["state"] = input.State
	}

	objectID := strings.TrimSpace(input.SessionID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.FormName)
	}
	if objectID == "" {
		objectID = ObjectTypeForm
	}

	return Event{
		Identity: Identity{
			ActorID:  strings.TrimSpace(input.ActorID),
			UserID:   strings.TrimSpace(input.UserID),
			TenantID: strings.TrimSpace(input.TenantID),
		},
		Verb:       verb,
		ObjectType: ObjectTypeForm,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		FormName:   strings.TrimSpace(input.FormName),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
