package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveops/testledger/models"
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <task-id> <payload-file>",
	Short: "Apply a scanned vehicle-data payload to a task",
	Long: `Reconcile a vehicle-data payload against a task's subtasks. Subtasks
whose external number appears in the payload are marked executed; the full
payload is appended to the task's scan history.

The payload file is JSON of the shape:
  {"disks": [{"id": "D1", "sessions": [{"S1": {"subtasks": ["100"], "drops": 2, "cores": 1}}]}]}`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read payload file: %w", err)
		}
		var payload models.VehicleData
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}

		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		result, err := svc.ReconcileVehicleData(actor, args[0], payload)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		cmd.Printf("Scan %s processed %d subtask(s); task progress %d/%d (%d%%)\n",
			result.Scan.ID, result.Scan.ProcessedSubtasks,
			result.Task.CompletedSubtasks, result.Task.TotalSubtasks, result.Task.Progress)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
