package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// Wire field names of the tagged-union format:
//
//	{"t":"n","v":1}            number
//	{"t":"s","v":"x"}          string
//	{"t":"m","v":[1,2]}        matrix
//	{"t":"b","v":true}         bool
//	{"t":"u"}                  null
//	{"t":"l","v":["a","_0"]}   list
//	{"t":"c","f":"+","a":[..]} call
//	{"t":"f","p":[..],"b":{}}  function
//	{"t":"w","m":[{"c":"_0","v":"_1"},{"c":null,"v":"_2"}]} switch
const (
	fieldTag    = "t"
	fieldValue  = "v"
	fieldFunc   = "f"
	fieldArgs   = "a"
	fieldParams = "p"
	fieldBody   = "b"
	fieldCases  = "m"
	fieldCond   = "c"
)

func stringsToWire(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ToWire converts defs into plain maps, slices and scalars that every
// encoder below understands.
func ToWire(defs Defs) map[string]interface{} {
	out := make(map[string]interface{}, len(defs))
	for id, def := range defs {
		out[id] = defToWire(def)
	}
	return out
}

func defToWire(def Def) map[string]interface{} {
	m := map[string]interface{}{fieldTag: string(def.Kind())}
	switch d := def.(type) {
	case *Number:
		m[fieldValue] = d.Value
	case *String:
		m[fieldValue] = d.Value
	case *Matrix:
		values := make([]interface{}, len(d.Values))
		copy(values, d.Values)
		m[fieldValue] = values
	case *Bool:
		m[fieldValue] = d.Value
	case *Null:
	case *List:
		m[fieldValue] = stringsToWire(d.Items)
	case *Call:
		m[fieldFunc] = d.F
		m[fieldArgs] = stringsToWire(d.Args)
	case *Func:
		m[fieldParams] = stringsToWire(d.Params)
		m[fieldBody] = ToWire(d.Body)
	case *Switch:
		cases := make([]interface{}, len(d.Cases))
		for i, c := range d.Cases {
			var cond interface{}
			if !c.IsDefault() {
				cond = c.Cond
			}
			cases[i] = map[string]interface{}{fieldCond: cond, fieldValue: c.Value}
		}
		m[fieldCases] = cases
	default:
		panic(fmt.Sprintf("ir: unknown def %T", def))
	}
	return m
}

// FromWire is the inverse of ToWire. It accepts the generic shapes produced
// by encoding/json, yaml.v3 and structpb.
func FromWire(wire map[string]interface{}) (Defs, error) {
	defs := make(Defs, len(wire))
	for id, raw := range wire {
		m, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("def %q: expected object, got %T", id, raw)
		}
		def, err := defFromWire(m)
		if err != nil {
			return nil, fmt.Errorf("def %q: %w", id, err)
		}
		defs[id] = def
	}
	return defs, nil
}

func asMap(raw interface{}) (map[string]interface{}, bool) {
	switch m := raw.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprintf("%v", k)] = v
		}
		return out, true
	}
	return nil, false
}

func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func stringsFromWire(raw interface{}) ([]string, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected list of identifiers, got %T", raw)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("identifier %d: expected string, got %T", i, item)
		}
		out[i] = s
	}
	return out, nil
}

func defFromWire(m map[string]interface{}) (Def, error) {
	tag, _ := m[fieldTag].(string)
	switch Kind(tag) {
	case KindNumber:
		v, ok := asFloat(m[fieldValue])
		if !ok {
			return nil, fmt.Errorf("number: bad value %v", m[fieldValue])
		}
		return &Number{Value: v}, nil
	case KindString:
		v, ok := m[fieldValue].(string)
		if !ok {
			return nil, fmt.Errorf("string: bad value %v", m[fieldValue])
		}
		return &String{Value: v}, nil
	case KindMatrix:
		items, ok := m[fieldValue].([]interface{})
		if !ok {
			return nil, fmt.Errorf("matrix: bad value %v", m[fieldValue])
		}
		values := make([]interface{}, len(items))
		for i, item := range items {
			if b, ok := item.(bool); ok {
				values[i] = b
				continue
			}
			f, ok := asFloat(item)
			if !ok {
				return nil, fmt.Errorf("matrix: element %d is %T", i, item)
			}
			values[i] = f
		}
		return &Matrix{Values: values}, nil
	case KindBool:
		v, ok := m[fieldValue].(bool)
		if !ok {
			return nil, fmt.Errorf("bool: bad value %v", m[fieldValue])
		}
		return &Bool{Value: v}, nil
	case KindNull:
		return &Null{}, nil
	case KindList:
		items, err := stringsFromWire(m[fieldValue])
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		return &List{Items: items}, nil
	case KindCall:
		f, ok := m[fieldFunc].(string)
		if !ok {
			return nil, fmt.Errorf("call: missing target")
		}
		args, err := stringsFromWire(m[fieldArgs])
		if err != nil {
			return nil, fmt.Errorf("call: %w", err)
		}
		if len(args) == 0 {
			args = nil
		}
		return &Call{F: f, Args: args}, nil
	case KindFunc:
		params, err := stringsFromWire(m[fieldParams])
		if err != nil {
			return nil, fmt.Errorf("function: %w", err)
		}
		bodyRaw, ok := asMap(m[fieldBody])
		if !ok {
			return nil, fmt.Errorf("function: missing body")
		}
		body, err := FromWire(bodyRaw)
		if err != nil {
			return nil, fmt.Errorf("function body: %w", err)
		}
		return &Func{Params: params, Body: body}, nil
	case KindSwitch:
		rawCases, ok := m[fieldCases].([]interface{})
		if !ok {
			return nil, fmt.Errorf("switch: missing cases")
		}
		cases := make([]SwitchCase, len(rawCases))
		for i, rc := range rawCases {
			cm, ok := asMap(rc)
			if !ok {
				return nil, fmt.Errorf("switch: case %d is %T", i, rc)
			}
			value, ok := cm[fieldValue].(string)
			if !ok {
				return nil, fmt.Errorf("switch: case %d has no value", i)
			}
			cond, _ := cm[fieldCond].(string)
			cases[i] = SwitchCase{Cond: cond, Value: value}
		}
		return &Switch{Cases: cases}, nil
	}
	return nil, fmt.Errorf("unknown tag %q", tag)
}

// EncodeJSON writes the compact JSON form. Keys are sorted.
func EncodeJSON(defs Defs) ([]byte, error) {
	return json.Marshal(ToWire(defs))
}

// DecodeJSON parses the output of EncodeJSON.
func DecodeJSON(data []byte) (Defs, error) {
	var wire map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding ir: %w", err)
	}
	return FromWire(wire)
}

// EncodeYAML writes the same structure as YAML.
func EncodeYAML(defs Defs) ([]byte, error) {
	return yaml.Marshal(ToWire(defs))
}

// DecodeYAML parses the output of EncodeYAML.
func DecodeYAML(data []byte) (Defs, error) {
	var wire map[string]interface{}
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding ir: %w", err)
	}
	return FromWire(wire)
}

// ToStruct converts defs into a google.protobuf.Struct.
func ToStruct(defs Defs) (*structpb.Struct, error) {
	return structpb.NewStruct(ToWire(defs))
}

// FromStruct is the inverse of ToStruct.
func FromStruct(s *structpb.Struct) (Defs, error) {
	return FromWire(s.AsMap())
}

// EncodeProto writes defs as a binary google.protobuf.Struct message.
func EncodeProto(defs Defs) ([]byte, error) {
	s, err := ToStruct(defs)
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

// DecodeProto parses the output of EncodeProto.
func DecodeProto(data []byte) (Defs, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding ir: %w", err)
	}
	return FromStruct(&s)
}
