package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driveops/testledger/models"
)

var (
	addCollection string
	addLocation   string
	addPriority   string
	addType       string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Long: `Create a task in one of the two ledgers.

Examples:
  testledger add "Night highway run" --location EU
  testledger add "Track brake test" --collection ttTasks --location USA --priority high`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := parseCollection(addCollection)
		if err != nil {
			return err
		}

		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		location := addLocation
		if location == "" {
			location = actor.Location
		}
		task, err := svc.CreateTask(actor, collection, models.Task{
			Title:    args[0],
			Location: location,
			Priority: models.TaskPriority(addPriority),
			Type:     addType,
		})
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		cmd.Printf("Created task %s in %s\n", task.ID, collection)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addCollection, "collection", "tasks", "target collection (tasks or ttTasks)")
	addCmd.Flags().StringVar(&addLocation, "location", "", "task location (defaults to the actor's home location)")
	addCmd.Flags().StringVar(&addPriority, "priority", "medium", "task priority (low, medium, high, urgent)")
	addCmd.Flags().StringVar(&addType, "type", "", "free-form task type")
	rootCmd.AddCommand(addCmd)
}
