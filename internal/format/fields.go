package format

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

type field struct {
	key   string
	value interface{}
}

// indirect follows pointers and interfaces. ok is false for nil.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// record flattens a struct or string-keyed map into key/value pairs. Struct
// keys are json tag names in declaration order; map keys are sorted.
func record(v reflect.Value) ([]field, bool) {
	v, ok := indirect(v)
	if !ok {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Struct:
		if _, isTime := v.Interface().(time.Time); isTime {
			return nil, false
		}
		t := v.Type()
		fields := make([]field, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := strings.Split(sf.Tag.Get("json"), ",")[0]
			if name == "-" {
				continue
			}
			if name == "" {
				name = sf.Name
			}
			fields = append(fields, field{key: name, value: v.Field(i).Interface()})
		}
		return fields, true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		fields := make([]field, 0, len(keys))
		for _, k := range keys {
			value := v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key()))
			fields = append(fields, field{key: k, value: value.Interface()})
		}
		return fields, true
	}
	return nil, false
}

// records flattens every element of a slice. ok is false when any element
// is not a struct or map; keys is the union of element keys.
func records(v reflect.Value) (keys []string, rows []map[string]interface{}, ok bool) {
	seen := map[string]bool{}
	sortKeys := false
	for i := 0; i < v.Len(); i++ {
		elem, _ := indirect(v.Index(i))
		fields, isRecord := record(elem)
		if !isRecord {
			return nil, nil, false
		}
		if elem.Kind() == reflect.Map {
			sortKeys = true
		}
		row := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			if !seen[f.key] {
				seen[f.key] = true
				keys = append(keys, f.key)
			}
			row[f.key] = f.value
		}
		rows = append(rows, row)
	}
	if sortKeys {
		sort.Strings(keys)
	}
	return keys, rows, true
}

// scalar renders a value as a single line of text.
func scalar(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return scalar(*v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	}

	rv, ok := indirect(reflect.ValueOf(value))
	if !ok {
		return ""
	}
	switch rv.Kind() {
	case reflect.Map:
		fields, _ := record(rv)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.key+"="+scalar(f.value))
		}
		return strings.Join(parts, ", ")
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return fmt.Sprintf("%d bytes", rv.Len())
		}
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, scalar(rv.Index(i).Interface()))
		}
		return strings.Join(parts, ", ")
	}
	if rv.Kind() != reflect.ValueOf(value).Kind() {
		return scalar(rv.Interface())
	}
	return fmt.Sprintf("%v", value)
}

// titleKey converts snake_case keys to Title Case. Keys that already carry
// capitals, such as table entity properties, are left alone.
func titleKey(key string) string {
	if key != strings.ToLower(key) {
		return key
	}
	words := strings.Split(key, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
