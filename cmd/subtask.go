package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driveops/testledger/ledger"
	"github.com/driveops/testledger/models"
)

var (
	subtaskJira     string
	subtaskScenario string
	subtaskLighting string
	subtaskCategory string
	subtaskStatus   string
	subtaskNotes    string
	subtaskExecuted bool
)

// subtaskCmd groups the subtask verbs
var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Add, update, or delete subtasks",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task-id>",
	Short: "Append a subtask to a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		task, err := svc.AddSubtask(actor, args[0], models.Subtask{
			JiraSubtaskNumber: subtaskJira,
			Category:          subtaskCategory,
			Scenario:          subtaskScenario,
			Lighting:          subtaskLighting,
		})
		if err != nil {
			return fmt.Errorf("add subtask: %w", err)
		}
		cmd.Printf("Task %s now has %d subtask(s), progress %d%%\n", task.ID, task.TotalSubtasks, task.Progress)
		return nil
	},
}

var subtaskUpdateCmd = &cobra.Command{
	Use:   "update <task-id> <subtask-id>",
	Short: "Patch one subtask",
	Long: `Patch one subtask. Only flags that were set are applied; everything
else is left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		var patch ledger.SubtaskPatch
		if cmd.Flags().Changed("jira") {
			patch.JiraSubtaskNumber = &subtaskJira
		}
		if cmd.Flags().Changed("category") {
			patch.Category = &subtaskCategory
		}
		if cmd.Flags().Changed("scenario") {
			patch.Scenario = &subtaskScenario
		}
		if cmd.Flags().Changed("lighting") {
			patch.Lighting = &subtaskLighting
		}
		if cmd.Flags().Changed("status") {
			status := models.TaskStatus(subtaskStatus)
			patch.Status = &status
		}
		if cmd.Flags().Changed("notes") {
			patch.ExecutionNotes = &subtaskNotes
		}
		if cmd.Flags().Changed("executed") {
			patch.IsExecuted = &subtaskExecuted
		}

		task, err := svc.UpdateSubtask(actor, args[0], args[1], patch)
		if err != nil {
			return fmt.Errorf("update subtask: %w", err)
		}
		cmd.Printf("Task %s progress %d/%d (%d%%)\n", task.ID, task.CompletedSubtasks, task.TotalSubtasks, task.Progress)
		return nil
	},
}

var subtaskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id> <subtask-id>",
	Short: "Remove one subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		task, err := svc.DeleteSubtask(actor, args[0], args[1])
		if err != nil {
			return fmt.Errorf("delete subtask: %w", err)
		}
		cmd.Printf("Task %s now has %d subtask(s), progress %d%%\n", task.ID, task.TotalSubtasks, task.Progress)
		return nil
	},
}

func init() {
	subtaskAddCmd.Flags().StringVar(&subtaskJira, "jira", "", "external tracking number")
	subtaskAddCmd.Flags().StringVar(&subtaskCategory, "category", "", "subtask category")
	subtaskAddCmd.Flags().StringVar(&subtaskScenario, "scenario", "", "test scenario")
	subtaskAddCmd.Flags().StringVar(&subtaskLighting, "lighting", "", "lighting condition")

	subtaskUpdateCmd.Flags().StringVar(&subtaskJira, "jira", "", "external tracking number")
	subtaskUpdateCmd.Flags().StringVar(&subtaskCategory, "category", "", "subtask category")
	subtaskUpdateCmd.Flags().StringVar(&subtaskScenario, "scenario", "", "test scenario")
	subtaskUpdateCmd.Flags().StringVar(&subtaskLighting, "lighting", "", "lighting condition")
	subtaskUpdateCmd.Flags().StringVar(&subtaskStatus, "status", "", "subtask status")
	subtaskUpdateCmd.Flags().StringVar(&subtaskNotes, "notes", "", "execution notes")
	subtaskUpdateCmd.Flags().BoolVar(&subtaskExecuted, "executed", false, "mark executed")

	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskUpdateCmd)
	subtaskCmd.AddCommand(subtaskDeleteCmd)
	rootCmd.AddCommand(subtaskCmd)
}
