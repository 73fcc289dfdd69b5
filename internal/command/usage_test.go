package command

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestCommandPathSpellsOutForwardedPositionals(t *testing.T) {
	root := newForwardHarness().root
	container, _, err := root.Find([]string{"container"})
	assert.NoError(t, err)
	upload, _, err := root.Find([]string{"container", "blob", "upload"})
	assert.NoError(t, err)

	assert.Equal(t, "tool", CommandPath(root))
	assert.Equal(t, "tool container <container-name>", CommandPath(container))
	assert.Equal(t, "tool container <container-name> blob upload", CommandPath(upload))
	assert.Equal(t, "tool container <container-name> blob upload <blob-name> <file> [flags]", UseLine(upload))
}

func TestUseLineWithoutFlags(t *testing.T) {
	root := &cobra.Command{Use: "tool"}
	leaf := &cobra.Command{Use: "leaf <name>", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(leaf)

	assert.Equal(t, "tool leaf <name>", UseLine(leaf))

	root.PersistentFlags().Bool("debug", false, "")
	assert.Equal(t, "tool leaf <name> [flags]", UseLine(leaf))
}

func TestShowPositionals(t *testing.T) {
	root := newForwardHarness().root
	container, _, _ := root.Find([]string{"container"})
	list, _, _ := root.Find([]string{"container", "list"})

	assert.Contains(t, list.UsageString(), "tool container list [flags]")

	ShowPositionals(container)
	usage := list.UsageString()
	assert.Contains(t, usage, "tool container <container-name> list [flags]")
	assert.Contains(t, container.UsageString(), "tool container <container-name> [command]")

	// Commands outside the forwarder keep cobra's template.
	assert.NotContains(t, root.UsageString(), "<container-name>")
}
