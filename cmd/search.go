package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchJSON bool

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <number>...",
	Short: "Find subtasks by external tracking number",
	Long: `Search every task the actor may read for subtasks carrying one of
the given external tracking numbers, grouped by owning task.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		matches, err := svc.FindByExternalNumbers(actor, args)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if searchJSON {
			return printJSON(matches)
		}
		if len(matches) == 0 {
			cmd.Println("No matching subtasks found.")
			return nil
		}
		for _, group := range matches {
			cmd.Printf("%s  [%s/%s]  %s\n", group.TaskID, group.Collection, group.Location, group.TaskTitle)
			for _, st := range group.Subtasks {
				state := "pending"
				if st.IsExecuted {
					state = st.ExecutionStatus
				}
				cmd.Printf("  %s  #%s  %s\n", st.ID, st.JiraSubtaskNumber, state)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output JSON")
	rootCmd.AddCommand(searchCmd)
}
