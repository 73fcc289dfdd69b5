// Package docs renders the command tree as Markdown.
package docs

import (
	"strings"

	"github.com/demoray/azure-storage-blob-client/internal/command"
)

// Options controls headings and the whole-document rewrites.
type Options struct {
	// MaxHeadingDepth caps the number of '#' markers. Deeper nodes repeat
	// the cap.
	MaxHeadingDepth int

	// BinaryName is replaced everywhere by Alias.
	BinaryName string
	Alias      string

	// ExecutableSuffix is dropped from Alias+ExecutableSuffix.
	ExecutableSuffix string

	// Title and Description replace the root heading.
	Title       string
	Description string
}

// Description is the one-line project description used under the title.
const Description = "Interact with Azure Storage accounts: containers and blobs, queues, datalake filesystems and tables."

// DefaultOptions returns the options used for the project README.
func DefaultOptions() Options {
	return Options{
		MaxHeadingDepth:  6,
		BinaryName:       "azure-storage-cli",
		Alias:            "azs",
		ExecutableSuffix: ".exe",
		Title:            "Azure Storage CLI",
		Description:      Description,
	}
}

// Render walks root in pre-order and emits one section per visible node,
// then applies PostProcess. Hidden nodes and everything below them are
// skipped.
func Render(root *command.Node, opts Options) string {
	var b strings.Builder

	root.Walk(func(node *command.Node, path []*command.Node) bool {
		if node.Hidden && node != root {
			return false
		}
		writeSection(&b, path, opts.MaxHeadingDepth)
		return true
	})

	return PostProcess(b.String(), opts)
}

func writeSection(b *strings.Builder, path []*command.Node, maxDepth int) {
	segments := make([]string, 0, len(path))
	for _, node := range path {
		segments = append(segments, node.Segment())
	}
	node := path[len(path)-1]

	b.WriteString(strings.Repeat("#", headingLevel(len(path), maxDepth)))
	b.WriteString(" ")
	b.WriteString(strings.Join(segments, " "))
	b.WriteString("\n\n```\n")
	b.WriteString(node.Usage)
	b.WriteString("\n```\n")
}

func headingLevel(depth, maxDepth int) int {
	if maxDepth > 0 && depth > maxDepth {
		return maxDepth
	}
	return depth
}

// PostProcess applies the whole-document rewrites in order: binary name to
// alias, the first root heading to title plus description, then trailing
// whitespace removal and blank-line collapsing.
func PostProcess(doc string, opts Options) string {
	if opts.BinaryName != "" && opts.Alias != "" {
		doc = strings.ReplaceAll(doc, opts.BinaryName, opts.Alias)
	}
	if opts.Alias != "" && opts.ExecutableSuffix != "" {
		doc = strings.ReplaceAll(doc, opts.Alias+opts.ExecutableSuffix, opts.Alias)
	}

	if opts.Title != "" {
		heading := "# " + opts.Alias
		replacement := "# " + opts.Title
		if opts.Description != "" {
			replacement += "\n\n" + opts.Description
		}
		doc = strings.Replace(doc, heading, replacement, 1)
	}

	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	doc = strings.Join(lines, "\n")

	for strings.Contains(doc, "\n\n\n") {
		doc = strings.ReplaceAll(doc, "\n\n\n", "\n\n")
	}
	return doc
}
