package main

import (
	"os"

	"github.com/demoray/azure-storage-blob-client/cmd"
	"github.com/demoray/azure-storage-blob-client/internal/config"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

func main() {
	if err := cmd.Execute(); err != nil {
		format.PrintError(os.Stderr, "%v", err)
		if utils.IsAuthError(err) {
			format.PrintInfo(os.Stderr, "check --access-key or %s, or the Azure identity in use", config.EnvAccessKey)
		}
		os.Exit(1)
	}
}
