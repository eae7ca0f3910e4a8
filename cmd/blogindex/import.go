package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <feed-file>",
	Short: "Import posts from an RSS, Atom or JSON feed file into the CMS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open feed: %w", err)
		}
		defer f.Close()

		app := newApp()
		defer app.Close()
		if err := app.Open(); err != nil {
			return err
		}
		stats, err := app.ImportFeed(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts, skipped %d\n", stats.Imported, stats.Skipped)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the blogindex version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "blogindex %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(importCmd, versionCmd)
}
