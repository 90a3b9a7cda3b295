package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"savings/internal/cli"
	"savings/internal/core"
)

var (
	flagCategory string
	flagSort     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print saved goals as cards",
	Long:  "Print saved goals. Without flags the stored filter and sort order are used.",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&flagCategory, "category", "c", "", "Only show goals in this category (or \""+core.FilterAll+"\")")
	listCmd.Flags().StringVarP(&flagSort, "sort", "s", "", "Sort order: date-desc, progress-desc or target-desc")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	e, err := bootstrap(context.Background(), "warn")
	if err != nil {
		return err
	}
	defer e.Close()

	view, err := e.ctrl.Preview(flagCategory, flagSort)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS GOALS"))
	fmt.Println()
	fmt.Print(cli.RenderView(view, time.Now()))
	return nil
}
