package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casarom/salesapi/internal/cli"
	"github.com/casarom/salesapi/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "salesd",
		Short: "Casa Rom sales daemon and CLI",
		Long:  "Casa Rom sales daemon for running the API server, managing embeddings and the pricing policy",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.EmbedCmd())
	rootCmd.AddCommand(admin.PolicyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
