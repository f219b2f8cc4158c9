package queue

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// Schemas holds one compiled JSON schema per event name. Schemas are
// reflected from the payload structs, so the Go type is the contract.
type Schemas struct {
	compiled map[EventName]*validator.Schema
}

var payloadTypes = map[EventName]any{
	EventTaskAssigned:     TaskAssignedPayload{},
	EventWorkspaceCreated: WorkspaceCreatedPayload{},
	EventUserUpdated:      UserUpdatedPayload{},
	EventUserDeleted:      UserDeletedPayload{},
}

// NewSchemas reflects and compiles the schema of every known event.
func NewSchemas() (*Schemas, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	compiler := validator.NewCompiler()
	for name, payload := range payloadTypes {
		raw, err := json.Marshal(reflector.Reflect(payload))
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", name, err)
		}
		doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode schema for %s: %w", name, err)
		}
		if err := compiler.AddResource(schemaURL(name), doc); err != nil {
			return nil, fmt.Errorf("add schema for %s: %w", name, err)
		}
	}

	s := &Schemas{compiled: make(map[EventName]*validator.Schema, len(payloadTypes))}
	for name := range payloadTypes {
		sch, err := compiler.Compile(schemaURL(name))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", name, err)
		}
		s.compiled[name] = sch
	}
	return s, nil
}

// Validate checks a JSON payload against the schema for name.
func (s *Schemas) Validate(name EventName, data []byte) error {
	sch, ok := s.compiled[name]
	if !ok {
		return fmt.Errorf("unknown event %q", name)
	}
	inst, err := validator.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", name, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid %s payload: %w", name, err)
	}
	return nil
}

func schemaURL(name EventName) string {
	return "mem://events/" + string(name) + ".json"
}
