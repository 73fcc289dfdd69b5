package format

import (
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const noData = "No data to display"

// TableFormatter handles table output formatting
type TableFormatter struct {
	useColors bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(useColors bool) *TableFormatter {
	return &TableFormatter{
		useColors: useColors,
	}
}

// Format formats data as a table. Slices of structs or maps become one row
// per element; a single struct or map becomes a vertical property table.
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	v, ok := indirect(reflect.ValueOf(data))
	if !ok {
		_, err := fmt.Fprintln(w, noData)
		return err
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return f.formatSlice(w, v)
	case reflect.Struct, reflect.Map:
		if fields, isRecord := record(v); isRecord {
			return f.formatRecord(w, fields)
		}
	}

	_, err := fmt.Fprintln(w, f.formatValue(v.Interface()))
	return err
}

// formatSlice formats a slice as a table with one row per element
func (f *TableFormatter) formatSlice(w io.Writer, v reflect.Value) error {
	if v.Len() == 0 {
		_, err := fmt.Fprintln(w, noData)
		return err
	}

	keys, rows, ok := records(v)
	if !ok {
		return f.formatSimpleList(w, v)
	}

	headers := make([]string, len(keys))
	for i, key := range keys {
		headers[i] = titleKey(key)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	f.configureTable(table, len(headers))

	for _, row := range rows {
		values := make([]string, len(keys))
		for i, key := range keys {
			values[i] = f.formatValue(row[key])
		}
		table.Append(values)
	}

	table.Render()
	return nil
}

// formatRecord formats a single record as a vertical table
func (f *TableFormatter) formatRecord(w io.Writer, fields []field) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Property", "Value"})
	f.configureTable(table, 2)

	for _, fd := range fields {
		table.Append([]string{titleKey(fd.key), f.formatValue(fd.value)})
	}

	table.Render()
	return nil
}

// formatSimpleList formats a list of plain values
func (f *TableFormatter) formatSimpleList(w io.Writer, v reflect.Value) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Value"})
	f.configureTable(table, 1)

	for i := 0; i < v.Len(); i++ {
		table.Append([]string{f.formatValue(v.Index(i).Interface())})
	}

	table.Render()
	return nil
}

// configureTable sets up table appearance. columns must match the header
// count for header colors to apply.
func (f *TableFormatter) configureTable(table *tablewriter.Table, columns int) {
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	if f.useColors {
		colors := make([]tablewriter.Colors, columns)
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor}
		}
		table.SetHeaderColor(colors...)
	}
}

// formatValue formats a value for display
func (f *TableFormatter) formatValue(value interface{}) string {
	if b, ok := value.(bool); ok {
		if f.useColors {
			if b {
				return color.GreenString("true")
			}
			return color.RedString("false")
		}
		return strconv.FormatBool(b)
	}
	return scalar(value)
}
