package account

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/dispatch"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
)

// AccountCmd represents the account command
var AccountCmd = &cobra.Command{
	Use:   "account",
	Short: "Account management commands",
	Long: `Account level operations on the blob service.

This command group lists the containers of the account and shows the
account SKU, kind and hierarchical namespace setting.`,
}

// listCmd lists containers
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List containers",
	Long:  "List the containers in the storage account",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// infoCmd shows account information
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show account information",
	Long:  "Display the SKU, kind and hierarchical namespace setting of the storage account",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

// withAccount runs fn against the account's blob service.
func withAccount(cmd *cobra.Command, fn func(ctx context.Context, client storage.AccountClient, out io.Writer) error) error {
	d, err := dispatch.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	return d.Dispatch(cmd.Context(), dispatch.Account{Run: func(ctx context.Context, client storage.AccountClient) error {
		return fn(ctx, client, d.Out())
	}})
}

func runList(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")

	return withAccount(cmd, func(ctx context.Context, client storage.AccountClient, out io.Writer) error {
		containers, err := client.ListContainers(ctx, prefix)
		if err != nil {
			return err
		}
		return format.Print(out, containers)
	})
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withAccount(cmd, func(ctx context.Context, client storage.AccountClient, out io.Writer) error {
		info, err := client.Info(ctx)
		if err != nil {
			return err
		}
		return format.Print(out, info)
	})
}

func init() {
	listCmd.Flags().String("prefix", "", "only list containers whose names start with this prefix")

	AccountCmd.AddCommand(listCmd)
	AccountCmd.AddCommand(infoCmd)
	command.RequireSubcommand(AccountCmd)
}
