package schema

import (
	"errors"
	"strings"
)

// ErrIncompleteSchemaSet matches every ConfigurationError, whether raised by
// Resolve or by a resource missing one of its collaborators.
var ErrIncompleteSchemaSet = errors.New("incomplete schema set")

// ConfigurationError reports a resource that cannot be mounted.
type ConfigurationError struct {
	Direction string   // "request", "response" or "resource"
	Missing   []string // slot or option names left empty
}

func (e *ConfigurationError) Error() string {
	msg := "incomplete " + e.Direction + " schema set"
	if e.Direction == "resource" {
		msg = "incomplete resource configuration"
	}
	if len(e.Missing) > 0 {
		msg += ": missing " + strings.Join(e.Missing, ", ")
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrIncompleteSchemaSet
}

// Overrides holds the ten optional schema slots of a resource. Request and
// Response are the bases every operation slot defaults to.
type Overrides struct {
	Request              *Schema
	CreateRequest        *Schema
	UpdateRequest        *Schema
	PartialUpdateRequest *Schema

	Response              *Schema
	RetrieveResponse      *Schema
	ListResponse          *Schema // item schema; wrapped as a sequence on resolve
	CreateResponse        *Schema
	UpdateResponse        *Schema
	PartialUpdateResponse *Schema
}

// Set is the resolved schema of every operation.
type Set struct {
	CreateRequest        *Schema
	UpdateRequest        *Schema
	PartialUpdateRequest *Schema

	RetrieveResponse      *Schema
	ListResponse          *Schema
	CreateResponse        *Schema
	UpdateResponse        *Schema
	PartialUpdateResponse *Schema
}

// Resolve seeds every operation slot from its base, lets each non-nil
// override win, and fails when a slot is still empty.
func Resolve(o Overrides) (Set, error) {
	set := Set{
		CreateRequest:        pick(o.CreateRequest, o.Request),
		UpdateRequest:        pick(o.UpdateRequest, o.Request),
		PartialUpdateRequest: pick(o.PartialUpdateRequest, o.Request),

		RetrieveResponse:      pick(o.RetrieveResponse, o.Response),
		ListResponse:          ListOf(pick(o.ListResponse, o.Response)),
		CreateResponse:        pick(o.CreateResponse, o.Response),
		UpdateResponse:        pick(o.UpdateResponse, o.Response),
		PartialUpdateResponse: pick(o.PartialUpdateResponse, o.Response),
	}

	if missing := empty(
		slot{"create", set.CreateRequest},
		slot{"update", set.UpdateRequest},
		slot{"partial_update", set.PartialUpdateRequest},
	); len(missing) > 0 {
		return Set{}, &ConfigurationError{Direction: "request", Missing: missing}
	}
	if missing := empty(
		slot{"retrieve", set.RetrieveResponse},
		slot{"list", set.ListResponse},
		slot{"create", set.CreateResponse},
		slot{"update", set.UpdateResponse},
		slot{"partial_update", set.PartialUpdateResponse},
	); len(missing) > 0 {
		return Set{}, &ConfigurationError{Direction: "response", Missing: missing}
	}
	return set, nil
}

type slot struct {
	name   string
	schema *Schema
}

func pick(override, base *Schema) *Schema {
	if override != nil {
		return override
	}
	return base
}

func empty(slots ...slot) []string {
	var missing []string
	for _, s := range slots {
		if s.schema == nil {
			missing = append(missing, s.name)
		}
	}
	return missing
}
