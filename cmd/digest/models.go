package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		for _, m := range svc.Models(cmd.Context()) {
			fmt.Println(m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
