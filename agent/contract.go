package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// OutputContract constrains the shape of the terminal answer. It is built by
// reflecting a Go struct into JSON Schema; the schema is rendered into the
// system prompt and the final_answer tool description, and the terminal
// payload is validated against it before a run is allowed to finish.
type OutputContract struct {
	name     string
	schema   *jsonschema.Schema
	required map[string]bool
	// propTypes maps property name to its JSON Schema type.
	propTypes map[string]string
	propOrder []string
}

// ContractError reports a terminal payload that does not satisfy the
// contract. It is never fatal: the executor turns it into a corrective
// observation.
type ContractError struct {
	Contract   string
	Missing    []string
	Mismatched []string
	Cause      error
}

func (e *ContractError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required field(s): "+strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		parts = append(parts, "wrong type for field(s): "+strings.Join(e.Mismatched, ", "))
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	if len(parts) == 0 {
		parts = append(parts, "payload does not satisfy the contract")
	}
	return fmt.Sprintf("%s: %s", e.Contract, strings.Join(parts, "; "))
}

// NewContract reflects sample's type into an output contract. sample must be
// a struct or pointer to struct with exported fields.
func NewContract(sample any) (*OutputContract, error) {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("output contract requires a struct, got %T", sample)
	}

	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(sample)

	c := &OutputContract{
		name:      t.Name(),
		schema:    schema,
		required:  make(map[string]bool),
		propTypes: make(map[string]string),
	}
	for _, name := range schema.Required {
		c.required[name] = true
	}
	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			c.propOrder = append(c.propOrder, pair.Key)
			c.propTypes[pair.Key] = pair.Value.Type
		}
	}
	return c, nil
}

// Name returns the contract's type name.
func (c *OutputContract) Name() string { return c.name }

// SchemaJSON renders the full JSON Schema, indented for prompt embedding.
func (c *OutputContract) SchemaJSON() string {
	b, err := json.MarshalIndent(c.schema, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Hint renders the compact one-line schema summary, e.g.
// "{name: string, email: string}".
func (c *OutputContract) Hint() string {
	var parts []string
	for _, name := range c.propOrder {
		parts = append(parts, name+": "+c.propTypes[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Example renders one concrete payload satisfying the contract.
func (c *OutputContract) Example() string {
	example := make(map[string]any, len(c.propOrder))
	for _, name := range c.propOrder {
		example[name] = exampleValue(c.propTypes[name], name)
	}
	b, err := json.Marshal(example)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func exampleValue(schemaType, name string) any {
	switch schemaType {
	case "string":
		return "example " + name
	case "integer":
		return 1
	case "number":
		return 1.5
	case "boolean":
		return true
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		return nil
	}
}

// Validate parses raw (strict JSON first, lenient repair second) and checks
// it against the contract's required fields and property types. On success
// it returns the canonical mapping.
func (c *OutputContract) Validate(raw string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		repaired, repErr := jsonrepair.JSONRepair(raw)
		if repErr != nil {
			return nil, &ContractError{Contract: c.name, Cause: fmt.Errorf("not a JSON object: %w", err)}
		}
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			return nil, &ContractError{Contract: c.name, Cause: fmt.Errorf("not a JSON object: %w", err)}
		}
	}

	cerr := &ContractError{Contract: c.name}
	for _, name := range c.propOrder {
		v, present := payload[name]
		if !present {
			if c.required[name] {
				cerr.Missing = append(cerr.Missing, name)
			}
			continue
		}
		if !typeMatches(c.propTypes[name], v) {
			cerr.Mismatched = append(cerr.Mismatched, name)
		}
	}
	if len(cerr.Missing) > 0 || len(cerr.Mismatched) > 0 {
		return nil, cerr
	}
	return payload, nil
}

// Decode validates raw and unmarshals the payload into target.
func (c *OutputContract) Decode(raw string, target any) error {
	payload, err := c.Validate(raw)
	if err != nil {
		return err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}

func typeMatches(schemaType string, v any) bool {
	switch schemaType {
	case "string":
		_, ok := v.(string)
		return ok
	case "integer", "number":
		switch v.(type) {
		case float64, json.Number:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}
