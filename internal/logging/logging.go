// Package logging builds the CLI's structured logger and routes the Azure
// SDK's own diagnostics into it.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	azlog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"golang.org/x/term"
)

// Handler formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a logger writing to w. With FormatAuto, a terminal gets
// slog.TextHandler and anything else (pipes, CI, files) gets
// slog.JSONHandler. debug lowers the level from warn to debug.
func New(w io.Writer, debug bool, format string) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelWarn}
	if debug {
		options.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if useText(w, format) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

func useText(w io.Writer, format string) bool {
	switch strings.ToLower(format) {
	case FormatText:
		return true
	case FormatJSON:
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

const redacted = "[REDACTED]"

// BridgeSDK forwards Azure SDK request, response and retry events to logger
// at debug level. Every occurrence of a redact value is masked first; the
// SDK's request lines carry the account name in the endpoint host.
func BridgeSDK(logger *slog.Logger, redact ...string) {
	replacements := make([]string, 0, 2*len(redact))
	for _, value := range redact {
		if value != "" {
			replacements = append(replacements, value, redacted)
		}
	}
	replacer := strings.NewReplacer(replacements...)

	azlog.SetEvents(azlog.EventRequest, azlog.EventResponse, azlog.EventResponseError, azlog.EventRetryPolicy)
	azlog.SetListener(func(event azlog.Event, message string) {
		logger.Debug(replacer.Replace(message), "component", "azure-sdk", "event", string(event))
	})
}

// DisableSDK stops forwarding SDK events.
func DisableSDK() {
	azlog.SetListener(nil)
}
