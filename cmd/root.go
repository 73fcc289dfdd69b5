package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/demoray/azure-storage-blob-client/cmd/account"
	"github.com/demoray/azure-storage-blob-client/cmd/container"
	"github.com/demoray/azure-storage-blob-client/cmd/datalake"
	"github.com/demoray/azure-storage-blob-client/cmd/queues"
	"github.com/demoray/azure-storage-blob-client/cmd/readme"
	"github.com/demoray/azure-storage-blob-client/cmd/tables"
	"github.com/demoray/azure-storage-blob-client/internal/api"
	"github.com/demoray/azure-storage-blob-client/internal/command"
	appConfig "github.com/demoray/azure-storage-blob-client/internal/config"
	"github.com/demoray/azure-storage-blob-client/internal/dispatch"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/logging"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

var (
	cfgFile string
	debug   bool
	output  string
	noColor bool
)

// newFactory builds the storage clients used by every command family.
var newFactory = func(cfg appConfig.StorageConfig) storage.Factory {
	return api.NewClient(cfg)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "azure-storage-cli",
	Short: "Interact with Azure Storage accounts",
	Long: `Interact with Azure Storage accounts: blob containers, queues,
datalake filesystems and tables.

Requests are signed with the account access key when one is given, and
with the ambient Azure identity (environment, managed identity or an
Azure CLI login) otherwise.`,
	Version:       "0.1.0",
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Forwarding commands run this hook themselves for the subcommand
		// they resolve.
		if cmd.DisableFlagParsing {
			return nil
		}
		return initialize(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	rootCmd.SetArgs(command.Route(rootCmd, os.Args[1:]))
	return rootCmd.Execute()
}

// initialize loads the configuration and stores the dispatcher for cmd in
// its context.
func initialize(cmd *cobra.Command) error {
	if err := appConfig.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	if err := bindFlags(cmd.Root()); err != nil {
		return err
	}

	// Set debug mode
	if debug {
		appConfig.SetDebug(true)
	}

	// Set output format
	if output != "" {
		appConfig.SetOutputFormat(output)
	}
	if _, err := format.GetFormatter(appConfig.GetOutputFormat()); err != nil {
		return utils.NewValidationError("output", fmt.Sprintf("must be one of %s", strings.Join(format.Formats, ", ")))
	}

	cfg := appConfig.Get()
	if noColor {
		cfg.Format.Colors = false
	}
	if !cfg.Format.Colors {
		color.NoColor = true
	}

	// Naming rules are checked when an operation is dispatched; readme only
	// needs the account to be present.
	account := appConfig.Account()
	if account == "" {
		return utils.NewValidationError("account", fmt.Sprintf("is required; use --account or set %s", appConfig.EnvAccount))
	}
	key := appConfig.AccessKey()

	logger := logging.New(cmd.ErrOrStderr(), appConfig.IsDebug(), cfg.Log.Format)
	if appConfig.IsDebug() {
		logging.BridgeSDK(logger, account, key.Reveal())
	} else {
		logging.DisableSDK()
	}

	d := dispatch.New(newFactory(cfg.Storage), nil, dispatch.Invocation{
		Account:   account,
		AccessKey: key,
		Path:      strings.Fields(cmd.CommandPath()),
	}, cmd.OutOrStdout(), logger)
	cmd.SetContext(dispatch.WithDispatcher(cmd.Context(), d))

	// Failures from here on are operation errors, not usage errors.
	cmd.SilenceUsage = true
	return nil
}

// bindFlags lets --account and --access-key take precedence over the
// environment and the config file.
func bindFlags(root *cobra.Command) error {
	if err := viper.BindPFlag(appConfig.KeyAccount, root.PersistentFlags().Lookup("account")); err != nil {
		return fmt.Errorf("failed to bind --account: %w", err)
	}
	if err := viper.BindPFlag(appConfig.KeyAccessKey, root.PersistentFlags().Lookup("access-key")); err != nil {
		return fmt.Errorf("failed to bind --access-key: %w", err)
	}
	return nil
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	// Global flags. The account and key never get a default here so that
	// help output cannot show them.
	rootCmd.PersistentFlags().String("account", "", "storage account name (env "+appConfig.EnvAccount+")")
	rootCmd.PersistentFlags().String("access-key", "", "storage account access key; the Azure identity is used when absent (env "+appConfig.EnvAccessKey+")")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.azs.yaml)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format ("+strings.Join(format.Formats, ", ")+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(account.AccountCmd)
	rootCmd.AddCommand(container.ContainerCmd)
	rootCmd.AddCommand(queues.QueuesCmd)
	rootCmd.AddCommand(datalake.DatalakeCmd)
	rootCmd.AddCommand(tables.TablesCmd)
	rootCmd.AddCommand(readme.ReadmeCmd)
	command.RequireSubcommand(rootCmd)
}
