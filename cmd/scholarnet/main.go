package main

import (
	"fmt"
	"os"

	"scholarnet/internal/config"
	"scholarnet/internal/logger"
	"scholarnet/internal/logger/console"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	_ = godotenv.Load(".env")
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:   "scholarnet",
		Short: "Collaboration network analysis for patents and publications",
		Long: `scholarnet builds a typed graph of documents, authors, institutions
and keywords, finds research communities and ranks the key players.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg := config.Load()
			logger.Init(console.New(console.Params{
				Debug:  debug || cfg.Debug,
				Prefix: "scholarnet",
				Out:    cmd.ErrOrStderr(),
			}))
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.AddCommand(analyzeCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scholarnet %s\n", version)
		},
	}
}
