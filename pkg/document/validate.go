package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks the document against a JSON Schema given as a generic map.
// Surfaces use it to reject malformed input before it reaches the pipeline.
func Validate(schema map[string]any, doc Document) error {
	b, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("document: marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("document: add schema: %w", err)
	}

	compiled, err := compiler.Compile("document.json")
	if err != nil {
		return fmt.Errorf("document: compile schema: %w", err)
	}

	// Round-trip through JSON so the validator sees plain JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document: marshal: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("document: unmarshal: %w", err)
	}

	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("document: does not match schema: %w", err)
	}

	return nil
}
