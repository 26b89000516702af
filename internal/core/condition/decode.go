package condition

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Expr wraps a Condition so it can be embedded in JSON and YAML content.
// A condition is written either as a bare string or as an object with one
// of the keys "and", "or" or "not".
type Expr struct {
	Condition Condition
}

// IsZero reports whether no condition was supplied.
func (e Expr) IsZero() bool {
	return e.Condition == nil
}

// UnmarshalJSON decodes a string or composite condition.
func (e *Expr) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode condition: %w", err)
	}
	e.Condition = FromValue(raw)
	return nil
}

// MarshalJSON encodes the condition in the same shape it is read from.
func (e Expr) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToValue(e.Condition))
}

// UnmarshalYAML decodes a string or composite condition from YAML content.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode condition: %w", err)
	}
	e.Condition = FromValue(raw)
	return nil
}

// FromValue builds a Condition from a generically decoded value.
// Keys are checked in the order and, or, not. Anything else becomes Unknown.
func FromValue(v any) Condition {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return Target(val)
	case map[string]any:
		if sub, ok := val["and"]; ok {
			list, ok := sub.([]any)
			if !ok {
				return Unknown{}
			}
			return And(fromList(list))
		}
		if sub, ok := val["or"]; ok {
			list, ok := sub.([]any)
			if !ok {
				return Unknown{}
			}
			return Or(fromList(list))
		}
		if sub, ok := val["not"]; ok {
			return Not{Inner: FromValue(sub)}
		}
		return Unknown{}
	default:
		return Unknown{}
	}
}

func fromList(list []any) []Condition {
	out := make([]Condition, 0, len(list))
	for _, item := range list {
		out = append(out, FromValue(item))
	}
	return out
}

// ToValue is the inverse of FromValue. Unknown nodes encode as an empty object.
func ToValue(c Condition) any {
	switch node := c.(type) {
	case nil:
		return nil
	case Target:
		return string(node)
	case And:
		return map[string]any{"and": toList(node)}
	case Or:
		return map[string]any{"or": toList(node)}
	case Not:
		return map[string]any{"not": ToValue(node.Inner)}
	default:
		return map[string]any{}
	}
}

func toList(list []Condition) []any {
	out := make([]any, 0, len(list))
	for _, c := range list {
		out = append(out, ToValue(c))
	}
	return out
}
