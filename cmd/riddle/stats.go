package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/picture-riddle/internal/terminal"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := loadGame(cmd.Context())
		if err != nil {
			return err
		}
		defer g.Close()

		terminal.RenderReport(os.Stdout, g.Controller.Report())
		return nil
	},
}

var resetStatsCmd = &cobra.Command{
	Use:   "reset-stats",
	Short: "Clear lifetime statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := loadGame(cmd.Context())
		if err != nil {
			return err
		}
		defer g.Close()

		if err := g.Controller.OpenStats(); err != nil {
			return err
		}
		if err := g.Controller.ResetStats(); err != nil {
			return err
		}
		fmt.Println("🧹 Statistics cleared.")
		return nil
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the riddle themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := loadGame(cmd.Context())
		if err != nil {
			return err
		}
		defer g.Close()

		terminal.RenderThemes(os.Stdout, g.Catalog)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, resetStatsCmd, themesCmd)
}
