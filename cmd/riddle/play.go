package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/picture-riddle/internal/terminal"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start an interactive game",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, _, err := loadGame(ctx)
		if err != nil {
			return err
		}
		defer g.Close()

		return terminal.NewPlayer(g.Controller, g.Catalog, os.Stdin, os.Stdout).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}
