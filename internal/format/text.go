package format

import (
	"fmt"
	"io"
	"reflect"
)

// TextFormatter handles simple text output formatting
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format formats data as simple text
func (f *TextFormatter) Format(w io.Writer, data interface{}) error {
	v, ok := indirect(reflect.ValueOf(data))
	if !ok {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return f.formatSlice(w, v)
	case reflect.Struct, reflect.Map:
		if fields, isRecord := record(v); isRecord {
			f.formatFields(w, "", fields)
			return nil
		}
	}

	_, err := fmt.Fprintln(w, f.formatValue(v.Interface()))
	return err
}

// formatSlice prints each element, records as numbered blocks
func (f *TextFormatter) formatSlice(w io.Writer, v reflect.Value) error {
	if v.Len() == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	for i := 0; i < v.Len(); i++ {
		fields, isRecord := record(v.Index(i))
		if !isRecord {
			fmt.Fprintln(w, f.formatValue(v.Index(i).Interface()))
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Item %d:\n", i+1)
		f.formatFields(w, "  ", fields)
	}
	return nil
}

func (f *TextFormatter) formatFields(w io.Writer, indent string, fields []field) {
	for _, fd := range fields {
		fmt.Fprintf(w, "%s%s: %s\n", indent, titleKey(fd.key), f.formatValue(fd.value))
	}
}

// formatValue formats a value for display
func (f *TextFormatter) formatValue(value interface{}) string {
	if text := scalar(value); text != "" {
		return text
	}
	return "N/A"
}
