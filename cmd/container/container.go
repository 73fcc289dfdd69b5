package container

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/dispatch"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

// containerName is the <container-name> of the running command.
var containerName string

// ContainerCmd represents the container command. The container name comes
// before the subcommand, so flag parsing and subcommand selection are left
// to command.Forward.
var ContainerCmd = &cobra.Command{
	Use:   "container <container-name>",
	Short: "Container and blob commands",
	Long: `Operations on a single blob container and the blobs it holds.

The container name comes first, followed by the operation:

  azure-storage-cli container logs list --prefix 2024/`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return command.Forward(cmd, args, captureName)
	},
}

// captureName records the container of the running command. Naming rules
// are checked by create.
func captureName(value string) error {
	if err := utils.ValidateRequired(value, "container name"); err != nil {
		return err
	}
	containerName = value
	return nil
}

// createCmd creates the container
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the container",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

// deleteCmd deletes the container
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the container",
	Long:  "Delete the container and every blob in it",
	Args:  cobra.NoArgs,
	RunE:  runDelete,
}

// existsCmd checks whether the container exists
var existsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Check whether the container exists",
	Args:  cobra.NoArgs,
	RunE:  runExists,
}

// listCmd lists blobs
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List blobs",
	Long:  "List the blobs in the container",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// propertiesCmd shows container properties
var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Show container properties",
	Args:  cobra.NoArgs,
	RunE:  runProperties,
}

// withContainer runs fn against the container named on the command line.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, client storage.ContainerClient, out io.Writer) error) error {
	d, err := dispatch.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	return d.Dispatch(cmd.Context(), dispatch.Container{
		Name: containerName,
		Run: func(ctx context.Context, client storage.ContainerClient) error {
			return fn(ctx, client, d.Out())
		},
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	if err := utils.ValidateContainerName(containerName); err != nil {
		return err
	}
	ifNotExists, _ := cmd.Flags().GetBool("if-not-exists")

	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		err := client.Create(ctx)
		if ifNotExists && utils.IsConflictError(err) {
			format.PrintWarning(out, "Container %s already exists", client.Name())
			return nil
		}
		if err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Container %s created", client.Name())
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		if err := client.Delete(ctx); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Container %s deleted", client.Name())
		return nil
	})
}

func runExists(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		exists, err := client.Exists(ctx)
		if err != nil {
			return err
		}
		return format.Print(out, models.Existence{Name: client.Name(), Exists: exists})
	})
}

func runList(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")

	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		blobs, err := client.ListBlobs(ctx, prefix)
		if err != nil {
			return err
		}
		return format.Print(out, blobs)
	})
}

func runProperties(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		props, err := client.Properties(ctx)
		if err != nil {
			return err
		}
		return format.Print(out, props)
	})
}

func init() {
	createCmd.Flags().Bool("if-not-exists", false, "succeed when the container already exists")
	listCmd.Flags().String("prefix", "", "only list blobs whose names start with this prefix")

	ContainerCmd.AddCommand(createCmd)
	ContainerCmd.AddCommand(deleteCmd)
	ContainerCmd.AddCommand(existsCmd)
	ContainerCmd.AddCommand(listCmd)
	ContainerCmd.AddCommand(propertiesCmd)
	ContainerCmd.AddCommand(blobCmd)

	command.ShowPositionals(ContainerCmd)
}
