package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind tags the variant held by a ConditionValue.
type ValueKind string

const (
	ValueNull   ValueKind = "null"
	ValueNumber ValueKind = "number"
	ValueString ValueKind = "string"
	ValueBool   ValueKind = "bool"
)

// ConditionValue is the comparison operand of an alert condition. It is a
// tagged union over the JSON scalar types so operator semantics stay total
// instead of relying on dynamic coercion.
type ConditionValue struct {
	Kind ValueKind `bson:"kind"`
	Num  float64   `bson:"num,omitempty"`
	Str  string    `bson:"str,omitempty"`
	Bool bool      `bson:"bool,omitempty"`
}

func NumberValue(f float64) ConditionValue {
	return ConditionValue{Kind: ValueNumber, Num: f}
}

func StringValue(s string) ConditionValue {
	return ConditionValue{Kind: ValueString, Str: s}
}

func BoolValue(b bool) ConditionValue {
	return ConditionValue{Kind: ValueBool, Bool: b}
}

func NullValue() ConditionValue {
	return ConditionValue{Kind: ValueNull}
}

// AsNumber returns the numeric operand, reporting whether the value holds one.
func (v ConditionValue) AsNumber() (float64, bool) {
	if v.Kind == ValueNumber {
		return v.Num, true
	}
	return 0, false
}

// AsString returns the string operand, reporting whether the value holds one.
func (v ConditionValue) AsString() (string, bool) {
	if v.Kind == ValueString {
		return v.Str, true
	}
	return "", false
}

// Display renders the operand for trigger messages.
func (v ConditionValue) Display() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueString:
		return v.Str
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "null"
	}
}

// MarshalJSON emits the bare scalar, so API payloads read
// `"value": 100` rather than the tagged representation.
func (v ConditionValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueString:
		return json.Marshal(v.Str)
	case ValueBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar and tags it.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = NullValue()
	case float64:
		*v = NumberValue(val)
	case string:
		*v = StringValue(val)
	case bool:
		*v = BoolValue(val)
	default:
		return fmt.Errorf("condition value must be a scalar, got %T", raw)
	}
	return nil
}
