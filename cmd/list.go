package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driveops/testledger/store"
)

var listJSON bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List tasks the actor may read",
	Long: `List the tasks of one collection, filtered to the locations the
configured actor may access.

Collections: tasks (data collection), ttTasks (test track)

Examples:
  testledger list            # data-collection tasks
  testledger list ttTasks    # test-track tasks
  testledger list --json     # machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output JSON")
	rootCmd.AddCommand(listCmd)
}

func parseCollection(arg string) (store.Collection, error) {
	switch arg {
	case "", string(store.CollectionTasks):
		return store.CollectionTasks, nil
	case string(store.CollectionTestTrack):
		return store.CollectionTestTrack, nil
	default:
		return "", fmt.Errorf("unknown collection %q (expected tasks or ttTasks)", arg)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	collection, err := parseCollection(arg)
	if err != nil {
		return err
	}

	svc, actor, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	tasks, err := svc.ListTasks(actor, collection)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if listJSON {
		return printJSON(tasks)
	}

	if len(tasks) == 0 {
		cmd.Println("No tasks found.")
		return nil
	}
	for _, t := range tasks {
		cmd.Printf("%s  [%s/%s]  %-12s  %3d%%  %s\n", t.ID, t.Category, t.Location, t.Status, t.Progress, t.Title)
	}
	return nil
}
