package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past summary runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		records, err := svc.History(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no summaries recorded")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  %s  %s/%s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.ID, rec.Model, rec.Style)
			fmt.Printf("  original: %s\n", rec.Excerpt)
			fmt.Printf("  summary:  %s\n\n", rec.Summary)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		if err := svc.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("history cleared")
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
