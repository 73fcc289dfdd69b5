package command

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cobra.AddTemplateFunc("positionalUseLine", UseLine)
	cobra.AddTemplateFunc("positionalCommandPath", CommandPath)
}

// CommandPath is cmd.CommandPath with the positionals consumed by forwarding
// ancestors spelled out, e.g. "azure-storage-cli container <container-name> blob".
func CommandPath(cmd *cobra.Command) string {
	var parts []string
	for c := cmd; c != nil; c = c.Parent() {
		part := c.Name()
		if isForwarder(c) {
			for _, positional := range Positionals(c.Use) {
				part += " <" + positional + ">"
			}
		}
		parts = append([]string{part}, parts...)
	}
	return strings.Join(parts, " ")
}

// UseLine is cmd.UseLine built on CommandPath.
func UseLine(cmd *cobra.Command) string {
	line := cmd.Use
	if cmd.HasParent() {
		line = CommandPath(cmd.Parent()) + " " + cmd.Use
	}
	if cmd.DisableFlagsInUseLine {
		return line
	}
	// Inherited flags count once they are merged into cmd.Flags().
	cmd.InheritedFlags()
	if cmd.HasAvailableFlags() && !strings.Contains(line, "[flags]") {
		line += " [flags]"
	}
	return line
}

// ShowPositionals switches the usage template of a forwarding command, and
// through inheritance that of its subcommands, to the paths of CommandPath.
// Without it "container <container-name> create" documents itself as
// "container create".
func ShowPositionals(cmd *cobra.Command) {
	template := cmd.UsageTemplate()
	template = strings.ReplaceAll(template, "{{.UseLine}}", "{{positionalUseLine .}}")
	template = strings.ReplaceAll(template, "{{.CommandPath}}", "{{positionalCommandPath .}}")
	cmd.SetUsageTemplate(template)
}
