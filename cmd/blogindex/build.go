package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var outDir string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the blog into static files",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		if err := app.Open(); err != nil {
			return err
		}
		stats, err := app.Build(cmd.Context(), outDir)
		if err != nil {
			return err
		}
		logger.Info("build finished", zap.String("out", outDir),
			zap.Int("pages", stats.Pages), zap.Int("posts", stats.Posts))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&outDir, "out", "o", "dist", "output directory")
	rootCmd.AddCommand(buildCmd)
}
