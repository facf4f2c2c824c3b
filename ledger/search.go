package ledger

import (
	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/policy"
	"github.com/driveops/testledger/store"
)

// TaskMatches groups the subtasks matched in one owning task. Execution
// state rides along on each subtask.
type TaskMatches struct {
	TaskID     string           `json:"taskId"`
	TaskTitle  string           `json:"taskTitle"`
	Collection store.Collection `json:"collection"`
	Location   string           `json:"location"`
	Subtasks   []models.Subtask `json:"subtasks"`
}

// FindByExternalNumbers returns, across every task the actor may read, the
// subtasks whose external correlation number is in the given set, grouped
// by owning task. Zero matches is an empty result, never an error.
func (s *Service) FindByExternalNumbers(actor models.Principal, numbers []string) ([]TaskMatches, error) {
	wanted := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		if n != "" {
			wanted[n] = true
		}
	}

	results := []TaskMatches{}
	if len(wanted) == 0 {
		return results, nil
	}

	for _, c := range store.Collections {
		tasks, err := s.records.Load(c)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if !policy.CanReadTask(actor, t) {
				continue
			}
			var matched []models.Subtask
			for _, st := range t.Subtasks {
				if st.JiraSubtaskNumber != "" && wanted[st.JiraSubtaskNumber] {
					matched = append(matched, st)
				}
			}
			if len(matched) > 0 {
				results = append(results, TaskMatches{
					TaskID:     t.ID,
					TaskTitle:  t.Title,
					Collection: c,
					Location:   t.Location,
					Subtasks:   matched,
				})
			}
		}
	}
	return results, nil
}
