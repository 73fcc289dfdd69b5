package format

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/demoray/azure-storage-blob-client/internal/config"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(w io.Writer, data interface{}) error
}

// Formats lists the accepted --output values.
var Formats = []string{"table", "json", "json-compact", "yaml", "text"}

// GetFormatter returns a formatter based on the specified format
func GetFormatter(format string) (Formatter, error) {
	cfg := config.Get()
	useColors := cfg.Format.Colors

	switch format {
	case "table":
		return NewTableFormatter(useColors), nil
	case "json":
		return NewJSONFormatter(true), nil
	case "json-compact":
		return NewJSONFormatter(false), nil
	case "yaml":
		return NewYAMLFormatter(), nil
	case "text":
		return NewTextFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Print formats data to w using the configured output format
func Print(w io.Writer, data interface{}) error {
	format := config.GetOutputFormat()
	formatter, err := GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(w, data)
}

func printMessage(w io.Writer, attr color.Attribute, prefix, message string, args ...interface{}) {
	if config.Get().Format.Colors {
		color.New(attr).Fprintf(w, message+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+message+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string, args ...interface{}) {
	printMessage(w, color.FgGreen, "", message, args...)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string, args ...interface{}) {
	printMessage(w, color.FgRed, "", "Error: "+message, args...)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string, args ...interface{}) {
	printMessage(w, color.FgYellow, "Warning: ", message, args...)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string, args ...interface{}) {
	printMessage(w, color.FgBlue, "Info: ", message, args...)
}
