package command

import "github.com/spf13/cobra"

// RequireSubcommand makes a command group fail with a usage error when no
// subcommand is selected. cobra's default for a group without a run function
// is to print help and succeed.
func RequireSubcommand(cmd *cobra.Command) {
	cmd.Args = func(c *cobra.Command, args []string) error {
		return unknownCommand(c, args)
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return unknownCommand(c, args)
	}
}
