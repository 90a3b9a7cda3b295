package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"savings/internal/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print totals across all goals",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	e, err := bootstrap(context.Background(), "warn")
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Println()
	fmt.Println(cli.RenderStats(e.ctrl.View().Stats))
	return nil
}
