// Package schema carries the JSON Schema for the persisted failure document.
// Two independent reporters in two ecosystems write this document; the schema
// is the contract that keeps them (and the dashboard reading them) aligned.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed failure_record.schema.json
var failureRecordSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// FailureRecordSchema returns the raw schema document, for export to other
// consumers (reportctl prints it, the JS reporter vendors it).
func FailureRecordSchema() []byte {
	out := make([]byte, len(failureRecordSchema))
	copy(out, failureRecordSchema)
	return out
}

func compile() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("failure_record.schema.json", bytes.NewReader(failureRecordSchema)); err != nil {
			compileErr = fmt.Errorf("schema: add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile("failure_record.schema.json")
	})
	return compiled, compileErr
}

// ValidateJSON checks a marshaled failure document against the schema.
func ValidateJSON(doc []byte) error {
	sch, err := compile()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("schema: invalid JSON: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// Validate marshals the value and checks it against the schema. Intended for
// record types; used by tests and reportctl validate.
func Validate(record any) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("schema: marshal record: %w", err)
	}
	return ValidateJSON(doc)
}
