// Package validation checks create and replace bodies against a JSON Schema
// derived from each record's field list, then decodes them.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zhouzirui/marketplace/backend/internal/model/market"
)

const idField = "id"

// Validator holds the compiled create and replace schemas for one collection.
type Validator struct {
	collection string
	fields     []Field
	create     *jsonschema.Schema
	replace    *jsonschema.Schema
}

// New compiles the schemas for a collection.
func New(collection string, fields []Field) (*Validator, error) {
	create, err := compile(collection+"-create.json", fields, true)
	if err != nil {
		return nil, err
	}
	replace, err := compile(collection+"-replace.json", fields, false)
	if err != nil {
		return nil, err
	}
	return &Validator{collection: collection, fields: fields, create: create, replace: replace}, nil
}

// MustNew is like New but panics on a schema error. The field lists are
// static, so a failure is a programming error.
func MustNew(collection string, fields []Field) *Validator {
	v, err := New(collection, fields)
	if err != nil {
		panic(err)
	}
	return v
}

// DecodeCreate validates a create body, which must carry every field
// including id, and decodes it into dst.
func (v *Validator) DecodeCreate(body []byte, dst any) error {
	doc, err := parse(body)
	if err != nil {
		return err
	}
	if err := v.check(v.create, doc, true); err != nil {
		return err
	}
	return v.decode(doc, dst)
}

// DecodeReplace validates a replace body, which must carry every non-id
// field, and decodes it into dst. An id in the body must match the path id.
func (v *Validator) DecodeReplace(body []byte, id int64, dst any) error {
	doc, err := parse(body)
	if err != nil {
		return err
	}
	if err := v.check(v.replace, doc, false); err != nil {
		return err
	}
	if obj, ok := doc.(map[string]any); ok {
		if raw, present := obj[idField]; present {
			bodyID, err := integer(raw)
			if err != nil || bodyID != id {
				return &market.ValidationError{Field: idField, Message: fmt.Sprintf("id is immutable and must equal %d", id)}
			}
		}
	}
	return v.decode(doc, dst)
}

func (v *Validator) check(schema *jsonschema.Schema, doc any, requireID bool) error {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &market.ValidationError{Message: err.Error()}
	}

	obj, _ := doc.(map[string]any)
	best := -1
	var bestErr *market.ValidationError
	for _, leaf := range leaves(verr) {
		fe := v.fieldError(leaf, obj, requireID)
		idx := v.index(fe.Field)
		if bestErr == nil || idx < best {
			best, bestErr = idx, fe
		}
	}
	return bestErr
}

// fieldError names the field a schema failure refers to. Missing-property
// failures are reported at the object itself, so the first absent field in
// declaration order is used.
func (v *Validator) fieldError(leaf *jsonschema.ValidationError, obj map[string]any, requireID bool) *market.ValidationError {
	field := strings.ReplaceAll(strings.TrimPrefix(leaf.InstanceLocation, "/"), "/", ".")
	if field == "" && strings.HasSuffix(leaf.KeywordLocation, "/required") && obj != nil {
		for _, f := range v.fields {
			if f.Name == idField && !requireID {
				continue
			}
			if _, ok := obj[f.Name]; !ok {
				return &market.ValidationError{Field: f.Name, Message: "field is required"}
			}
		}
	}
	if field == "" {
		return &market.ValidationError{Message: "request body must be a JSON object: " + leaf.Message}
	}
	return &market.ValidationError{Field: field, Message: leaf.Message}
}

// index orders errors by field declaration; body-level errors come first.
func (v *Validator) index(field string) int {
	if field == "" {
		return -1
	}
	for i, f := range v.fields {
		if f.Name == field {
			return i
		}
	}
	return len(v.fields)
}

func leaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

func compile(url string, fields []Field, requireID bool) (*jsonschema.Schema, error) {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		properties[f.Name] = map[string]any{"type": string(f.Type)}
		if f.Name == idField && !requireID {
			continue
		}
		required = append(required, f.Name)
	}

	schema, err := json.Marshal(map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", url, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", url, err)
	}
	return compiler.Compile(url)
}

func parse(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &market.ValidationError{Message: "request body is required"}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &market.ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	if dec.More() {
		return nil, &market.ValidationError{Message: "invalid JSON body: trailing data"}
	}
	return doc, nil
}

// decode builds dst from the declared fields of the validated document only.
// json.Unmarshal matches keys case-insensitively, so an undeclared "FIRST_NAME"
// would otherwise overwrite "first_name".
func (v *Validator) decode(doc any, dst any) error {
	obj, _ := doc.(map[string]any)
	projected := make(map[string]any, len(v.fields))
	for _, f := range v.fields {
		raw, ok := obj[f.Name]
		if !ok {
			continue
		}
		if f.Type == Integer {
			n, err := integer(raw)
			if err != nil {
				return &market.ValidationError{Field: f.Name, Message: err.Error()}
			}
			projected[f.Name] = n
			continue
		}
		projected[f.Name] = raw
	}

	data, err := json.Marshal(projected)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", v.collection, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s body: %w", v.collection, err)
	}
	return nil
}

// integer converts a JSON number to int64. Integral literals such as 1e3 or
// 1.0 are accepted, matching the schema's notion of an integer.
func integer(raw any) (int64, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, errors.New("must be an integer")
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}

	f, _, err := big.ParseFloat(n.String(), 10, 256, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return 0, errors.New("must be an integral literal")
	}
	i, acc := f.Int64()
	if acc != big.Exact {
		return 0, errors.New("integer out of range for int64")
	}
	return i, nil
}
