package readme

import (
	"github.com/spf13/cobra"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/config"
	"github.com/demoray/azure-storage-blob-client/internal/dispatch"
)

// ReadmeCmd prints the Markdown documentation of the whole command tree
var ReadmeCmd = &cobra.Command{
	Use:    "readme",
	Short:  "Print the command documentation as Markdown",
	Args:   cobra.NoArgs,
	Hidden: true,
	RunE:   runReadme,
}

func runReadme(cmd *cobra.Command, args []string) error {
	d, err := dispatch.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	return d.Dispatch(cmd.Context(), dispatch.Readme{
		Root:    command.Build(cmd.Root()),
		Options: config.ReadmeOptions(),
	})
}
