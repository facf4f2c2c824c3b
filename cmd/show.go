package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task with its subtasks, scans, and change log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		task, err := svc.GetTask(actor, args[0])
		if err != nil {
			return fmt.Errorf("show task: %w", err)
		}
		return printJSON(task)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
