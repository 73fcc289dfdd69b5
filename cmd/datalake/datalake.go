package datalake

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/dispatch"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

// stdio is the file argument that stands for stdin or stdout.
const stdio = "-"

// DatalakeCmd represents the datalake command
var DatalakeCmd = &cobra.Command{
	Use:   "datalake",
	Short: "Datalake commands",
	Long: `Datalake (hierarchical namespace) commands for the storage account.

This command group manages filesystems and the directories and files
inside them.`,
}

// listCmd lists filesystems
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List filesystems",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// createCmd creates a filesystem
var createCmd = &cobra.Command{
	Use:   "create <filesystem>",
	Short: "Create a filesystem",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

// deleteCmd deletes a filesystem
var deleteCmd = &cobra.Command{
	Use:   "delete <filesystem>",
	Short: "Delete a filesystem",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// pathsCmd lists paths
var pathsCmd = &cobra.Command{
	Use:   "paths <filesystem>",
	Short: "List files and directories",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaths,
}

// mkdirCmd creates a directory
var mkdirCmd = &cobra.Command{
	Use:   "mkdir <filesystem> <directory>",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runMkdir,
}

// uploadCmd uploads a file
var uploadCmd = &cobra.Command{
	Use:   "upload <filesystem> <path> <file>",
	Short: "Upload a file",
	Long:  `Upload a local file to a path in the filesystem. Use "-" to read from stdin.`,
	Args:  cobra.ExactArgs(3),
	RunE:  runUpload,
}

// downloadCmd downloads a file
var downloadCmd = &cobra.Command{
	Use:   "download <filesystem> <path> [file]",
	Short: "Download a file",
	Long:  "Download a file to a local file, or to stdout when no file is given.",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runDownload,
}

// rmCmd deletes a path
var rmCmd = &cobra.Command{
	Use:   "rm <filesystem> <path>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRm,
}

// withDatalake runs fn against the account's datalake service.
func withDatalake(cmd *cobra.Command, fn func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error) error {
	d, err := dispatch.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	return d.Dispatch(cmd.Context(), dispatch.Datalake{Run: func(ctx context.Context, client storage.DatalakeClient) error {
		return fn(ctx, client, d.Out())
	}})
}

// fileSystemArg validates the filesystem name in args[0].
func fileSystemArg(args []string) (string, error) {
	if err := utils.ValidateFileSystemName(args[0]); err != nil {
		return "", err
	}
	return args[0], nil
}

func runList(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		fileSystems, err := client.ListFileSystems(ctx, prefix)
		if err != nil {
			return err
		}
		return format.Print(out, fileSystems)
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	fileSystem, err := fileSystemArg(args)
	if err != nil {
		return err
	}

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		if err := client.CreateFileSystem(ctx, fileSystem); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Filesystem %s created", fileSystem)
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	fileSystem, err := fileSystemArg(args)
	if err != nil {
		return err
	}

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		if err := client.DeleteFileSystem(ctx, fileSystem); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Filesystem %s deleted", fileSystem)
		return nil
	})
}

func runPaths(cmd *cobra.Command, args []string) error {
	fileSystem, err := fileSystemArg(args)
	if err != nil {
		return err
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	recursive, _ := cmd.Flags().GetBool("recursive")

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		paths, err := client.ListPaths(ctx, fileSystem, prefix, recursive)
		if err != nil {
			return err
		}
		return format.Print(out, paths)
	})
}

func runMkdir(cmd *cobra.Command, args []string) error {
	fileSystem, err := fileSystemArg(args)
	if err != nil {
		return err
	}
	directory := args[1]

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		if err := client.CreateDirectory(ctx, fileSystem, directory); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Directory %s created in %s", directory, fileSystem)
		return nil
	})
}

func runUpload(cmd *cobra.Command, args []string) error {
	fileSystem, err := fileSystemArg(args)
	if err != nil {
		return err
	}
	path, local := args[1], args[2]

	var body io.Reader = cmd.InOrStdin()
	if local != stdio {
		file, err := os.Open(local)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", local, err)
		}
		defer file.Close()
		body = file
	}

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		counter := &utils.CountingReader{Reader: body}
		if err := client.UploadFile(ctx, fileSystem, path, counter); err != nil {
			return err
		}
		return format.Print(out, models.Transfer{Name: path, File: local, Bytes: counter.N})
	})
}

func runDownload(cmd *cobra.Command, args []string) error {
	fileSystem, err := fileSystemArg(args)
	if err != nil {
		return err
	}
	path, local := args[1], stdio
	if len(args) > 2 {
		local = args[2]
	}

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		if local == stdio {
			_, err := client.DownloadFile(ctx, fileSystem, path, out)
			return err
		}

		n, err := utils.ReplaceFile(local, func(w io.Writer) (int64, error) {
			return client.DownloadFile(ctx, fileSystem, path, w)
		})
		if err != nil {
			return err
		}
		return format.Print(out, models.Transfer{Name: path, File: local, Bytes: n})
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	fileSystem, err := fileSystemArg(args)
	if err != nil {
		return err
	}
	path := args[1]

	return withDatalake(cmd, func(ctx context.Context, client storage.DatalakeClient, out io.Writer) error {
		if err := client.DeletePath(ctx, fileSystem, path); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ %s deleted from %s", path, fileSystem)
		return nil
	})
}

func init() {
	listCmd.Flags().String("prefix", "", "only list filesystems whose names start with this prefix")
	pathsCmd.Flags().String("prefix", "", "directory to list")
	pathsCmd.Flags().BoolP("recursive", "r", false, "include the contents of subdirectories")

	DatalakeCmd.AddCommand(listCmd)
	DatalakeCmd.AddCommand(createCmd)
	DatalakeCmd.AddCommand(deleteCmd)
	DatalakeCmd.AddCommand(pathsCmd)
	DatalakeCmd.AddCommand(mkdirCmd)
	DatalakeCmd.AddCommand(uploadCmd)
	DatalakeCmd.AddCommand(downloadCmd)
	DatalakeCmd.AddCommand(rmCmd)
	command.RequireSubcommand(DatalakeCmd)
}
