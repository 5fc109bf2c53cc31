package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-gallery/pkg/gallery/client"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultServer = "http://localhost:8080"

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gallery",
		Short: "Gallery CLI - list, upload and download images",
		Long: `Gallery Command Line Interface

Talks to a running gallery server over HTTP. The server address comes from
--server, then GALLERY_URL, then ` + defaultServer + `.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("server", "s", "", "gallery server base URL")
	rootCmd.PersistentFlags().Bool("netlify", false, "use the /.netlify/functions endpoint paths")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "request timeout")

	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewUploadCommand())
	rootCmd.AddCommand(NewDownloadCommand())
	rootCmd.AddCommand(NewBrowseCommand())

	return rootCmd
}

// newClientFromFlags builds a gallery client from the persistent flags
func newClientFromFlags(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		server = os.Getenv("GALLERY_URL")
	}
	if server == "" {
		server = defaultServer
	}

	var opts []client.ClientOption
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		opts = append(opts, client.WithTimeout(timeout))
	}
	if netlify, _ := cmd.Flags().GetBool("netlify"); netlify {
		opts = append(opts, client.WithPaths(client.NetlifyPaths))
	}
	return client.NewClient(server, opts...)
}
