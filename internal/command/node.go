// Package command models the CLI's command tree independently of the parser
// that executes it. A Node tree is built once from the declared cobra
// commands and is read-only afterwards; the documentation renderer and the
// tree-level checks only ever look at Nodes.
package command

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// Node is one command or command group.
type Node struct {
	// Name is the command name, unique among its siblings.
	Name string

	// Positionals are the positional arguments the command consumes, in
	// declaration order.
	Positionals []string

	// Children are the subcommands in declaration order.
	Children []*Node

	// Hidden nodes are left out of generated documentation but can still be
	// executed.
	Hidden bool

	// Usage is the fully rendered long help for the command.
	Usage string
}

var placeholderPattern = regexp.MustCompile(`[<\[]([A-Za-z0-9_-]+)(?:\.\.\.)?[>\]]`)

// placeholders that describe the usage line rather than an argument
var reservedPlaceholders = map[string]bool{
	"flags":   true,
	"command": true,
	"options": true,
}

// Positionals extracts positional argument names from a cobra Use line,
// e.g. "upload <blob-name> <file>" yields ["blob-name", "file"].
func Positionals(use string) []string {
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(use, -1) {
		if reservedPlaceholders[strings.ToLower(match[1])] {
			continue
		}
		names = append(names, match[1])
	}
	return names
}

// Build snapshots the cobra tree rooted at root.
func Build(root *cobra.Command) *Node {
	return build(root, true)
}

func build(cmd *cobra.Command, isRoot bool) *Node {
	node := &Node{
		Name:        cmd.Name(),
		Positionals: Positionals(cmd.Use),
		Hidden:      !isRoot && !cmd.IsAvailableCommand(),
		Usage:       helpText(cmd),
	}
	for _, sub := range cmd.Commands() {
		node.Children = append(node.Children, build(sub, false))
	}
	return node
}

// helpText mirrors cobra's default help template: the long description
// followed by the usage block.
func helpText(cmd *cobra.Command) string {
	var b strings.Builder
	description := cmd.Long
	if description == "" {
		description = cmd.Short
	}
	if description = strings.TrimRight(description, " \t\n"); description != "" {
		b.WriteString(description)
		b.WriteString("\n\n")
	}
	if cmd.Runnable() || cmd.HasSubCommands() {
		b.WriteString(cmd.UsageString())
	}
	return strings.TrimRight(b.String(), "\n")
}

// IsLeaf reports whether the node has no subcommands.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Segment is the node's part of a display name: its name followed by its
// positionals as upper-cased <PLACEHOLDERS>.
func (n *Node) Segment() string {
	parts := make([]string, 0, len(n.Positionals)+1)
	parts = append(parts, n.Name)
	for _, positional := range n.Positionals {
		parts = append(parts, "<"+strings.ToUpper(positional)+">")
	}
	return strings.Join(parts, " ")
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Find follows names from n and returns the node reached, or nil.
func (n *Node) Find(names ...string) *Node {
	current := n
	for _, name := range names {
		if current = current.Child(name); current == nil {
			return nil
		}
	}
	return current
}

// Walk visits n and its descendants in pre-order. path holds the nodes from
// the root down to and including the visited node. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(node *Node, path []*Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(parents []*Node, fn func(*Node, []*Node) bool) {
	path := append(parents[:len(parents):len(parents)], n)
	if !fn(n, path) {
		return
	}
	for _, child := range n.Children {
		child.walk(path, fn)
	}
}

// Leaves returns the name paths of every leaf below n, in pre-order.
func (n *Node) Leaves() [][]string {
	var leaves [][]string
	n.Walk(func(node *Node, path []*Node) bool {
		if node.IsLeaf() && len(path) > 1 {
			names := make([]string, 0, len(path)-1)
			for _, p := range path[1:] {
				names = append(names, p.Name)
			}
			leaves = append(leaves, names)
		}
		return true
	})
	return leaves
}
