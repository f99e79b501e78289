package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"whatsapp-recruiting-funnel/internal/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func fieldRules() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(buttonRule, Button{})
		validate = v
	})
	return validate
}

// buttonRule is the URL/CALL refinement of the button shape.
func buttonRule(sl validator.StructLevel) {
	b := sl.Current().Interface().(Button)
	switch b.Type {
	case ButtonURL:
		if b.URL == "" {
			sl.ReportError(b.URL, "url", "URL", "required_for_url_button", "")
		}
	case ButtonCall:
		if b.Phone == "" {
			sl.ReportError(b.Phone, "phone", "Phone", "required_for_call_button", "")
		}
	}
}

// decodeObject is the structural phase: the value must be a JSON object with a
// string "type" field.
func decodeObject(v any) (map[string]any, Type, []byte, error) {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil, "", nil, structural("value", "is null")
	case []byte:
		raw = x
	case json.RawMessage:
		raw = x
	case string:
		return nil, "", nil, structural("value", "is a string, not an object")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, "", nil, structural("value", "is not serializable")
		}
		raw = b
	}

	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, "", nil, structural("value", "is not valid JSON")
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return nil, "", nil, structural("value", "is not an object")
	}
	t, ok := obj["type"].(string)
	if !ok {
		return nil, "", nil, structural("type", "must be a string")
	}
	return obj, Type(t), raw, nil
}

func structural(field, reason string) error {
	ve := &domain.ValidationError{}
	ve.Add(field, reason)
	return ve
}

// decodeStrict parses obj (without its discriminant) into a P, rejecting
// unknown, missing-required, null and mistyped fields, then applies the field rules.
func decodeStrict[P Payload](obj map[string]any) (P, error) {
	var out P
	body := make(map[string]any, len(obj))
	for k, v := range obj {
		if k != "type" {
			body[k] = v
		}
	}

	ve := &domain.ValidationError{}
	checkKeys("", body, reflect.TypeOf(out), ve)
	if err := ve.OrNil(); err != nil {
		return out, err
	}

	b, err := json.Marshal(body)
	if err != nil {
		return out, structural("value", "is not serializable")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, structural(decodeField(err), "has the wrong type")
	}
	if err := checkRules(out); err != nil {
		return out, err
	}
	return out, nil
}

func checkRules(p any) error {
	err := fieldRules().Struct(p)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return structural("value", err.Error())
	}
	ve := &domain.ValidationError{}
	for _, fe := range fes {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		ve.Add(ns, "failed "+fe.Tag())
	}
	return ve
}

func decodeField(err error) string {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return te.Field
	}
	return "value"
}

type fieldSpec struct {
	typ      reflect.Type
	required bool
}

var specCache sync.Map // reflect.Type -> map[string]fieldSpec

func fieldsOf(t reflect.Type) map[string]fieldSpec {
	if cached, ok := specCache.Load(t); ok {
		return cached.(map[string]fieldSpec)
	}
	out := make(map[string]fieldSpec, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		parts := strings.Split(f.Tag.Get("json"), ",")
		name := parts[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		required := true
		for _, opt := range parts[1:] {
			if opt == "omitempty" {
				required = false
			}
		}
		out[name] = fieldSpec{typ: f.Type, required: required}
	}
	specCache.Store(t, out)
	return out
}

// checkKeys compares object keys case-sensitively against the json names of t,
// recursing into nested objects and arrays.
func checkKeys(path string, v any, t reflect.Type, ve *domain.ValidationError) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		known := fieldsOf(t)
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fs, ok := known[k]
			if !ok {
				ve.Add(join(path, k), "unknown field")
				continue
			}
			if obj[k] == nil {
				ve.Add(join(path, k), "must not be null")
				continue
			}
			checkKeys(join(path, k), obj[k], fs.typ, ve)
		}
		names := make([]string, 0, len(known))
		for name := range known {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, present := obj[name]; !present && known[name].required {
				ve.Add(join(path, name), "required")
			}
		}
	case reflect.Slice:
		arr, ok := v.([]any)
		if !ok {
			return
		}
		for i, el := range arr {
			p := fmt.Sprintf("%s[%d]", path, i)
			if el == nil {
				ve.Add(p, "must not be null")
				continue
			}
			checkKeys(p, el, t.Elem(), ve)
		}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
