package container

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

// stdio is the file argument that stands for stdin or stdout.
const stdio = "-"

// blobCmd represents the blob command
var blobCmd = &cobra.Command{
	Use:   "blob",
	Short: "Blob commands",
	Long:  "Upload, download, delete and inspect individual blobs in the container.",
}

// blobUploadCmd uploads a file
var blobUploadCmd = &cobra.Command{
	Use:   "upload <blob-name> <file>",
	Short: "Upload a file as a blob",
	Long:  `Upload a local file as a block blob, replacing any existing blob. Use "-" to read from stdin.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runBlobUpload,
}

// blobDownloadCmd downloads a blob
var blobDownloadCmd = &cobra.Command{
	Use:   "download <blob-name> [file]",
	Short: "Download a blob",
	Long:  "Download a blob to a local file, or to stdout when no file is given.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runBlobDownload,
}

// blobDeleteCmd deletes a blob
var blobDeleteCmd = &cobra.Command{
	Use:   "delete <blob-name>",
	Short: "Delete a blob",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlobDelete,
}

// blobExistsCmd checks whether a blob exists
var blobExistsCmd = &cobra.Command{
	Use:   "exists <blob-name>",
	Short: "Check whether a blob exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlobExists,
}

// blobPropertiesCmd shows blob properties
var blobPropertiesCmd = &cobra.Command{
	Use:   "properties <blob-name>",
	Short: "Show blob properties",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlobProperties,
}

func runBlobUpload(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]

	var body io.Reader = cmd.InOrStdin()
	if path != stdio {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()
		body = file
	}

	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		counter := &utils.CountingReader{Reader: body}
		if err := client.UploadBlob(ctx, name, counter); err != nil {
			return err
		}
		return format.Print(out, models.Transfer{Name: name, File: path, Bytes: counter.N})
	})
}

func runBlobDownload(cmd *cobra.Command, args []string) error {
	name := args[0]
	path := stdio
	if len(args) > 1 {
		path = args[1]
	}

	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		if path == stdio {
			_, err := client.DownloadBlob(ctx, name, out)
			return err
		}

		n, err := utils.ReplaceFile(path, func(w io.Writer) (int64, error) {
			return client.DownloadBlob(ctx, name, w)
		})
		if err != nil {
			return err
		}
		return format.Print(out, models.Transfer{Name: name, File: path, Bytes: n})
	})
}

func runBlobDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		if err := client.DeleteBlob(ctx, name); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Blob %s deleted from %s", name, client.Name())
		return nil
	})
}

func runBlobExists(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		exists, err := client.BlobExists(ctx, name)
		if err != nil {
			return err
		}
		return format.Print(out, models.Existence{Name: name, Exists: exists})
	})
}

func runBlobProperties(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withContainer(cmd, func(ctx context.Context, client storage.ContainerClient, out io.Writer) error {
		props, err := client.BlobProperties(ctx, name)
		if err != nil {
			return err
		}
		return format.Print(out, props)
	})
}

func init() {
	blobCmd.AddCommand(blobUploadCmd)
	blobCmd.AddCommand(blobDownloadCmd)
	blobCmd.AddCommand(blobDeleteCmd)
	blobCmd.AddCommand(blobExistsCmd)
	blobCmd.AddCommand(blobPropertiesCmd)
	command.RequireSubcommand(blobCmd)
}
