package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/policy"
	"github.com/driveops/testledger/types"
)

// SubtaskPatch is a partial update for one subtask. Nil fields are left
// unchanged; the subtask id is never patchable.
type SubtaskPatch struct {
	JiraSubtaskNumber *string            `json:"jiraSubtaskNumber,omitempty"`
	Category          *string            `json:"category,omitempty"`
	Scenario          *string            `json:"scenario,omitempty"`
	Lighting          *string            `json:"lighting,omitempty"`
	Status            *models.TaskStatus `json:"status,omitempty"`
	IsExecuted        *bool              `json:"isExecuted,omitempty"`
	ExecutionStatus   *string            `json:"executionStatus,omitempty"`
	ExecutionNotes    *string            `json:"executionNotes,omitempty"`
}

func indexOfSubtask(subtasks []models.Subtask, id string) int {
	for i := range subtasks {
		if subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddSubtask appends a new subtask to the task and recomputes its progress.
func (s *Service) AddSubtask(actor models.Principal, taskID string, subtask models.Subtask) (models.Task, error) {
	task, err := s.updateTask(taskID, func(t *models.Task) error {
		if !policy.CanWriteTask(actor, *t) {
			return types.Forbidden(fmt.Sprintf("user %q may not modify tasks in location %q", actor.Username, t.Location))
		}
		now := s.now()
		if subtask.ID == "" {
			subtask.ID = models.NewID()
		} else if indexOfSubtask(t.Subtasks, subtask.ID) >= 0 {
			return types.Conflict(fmt.Sprintf("subtask %q already exists on task %q", subtask.ID, t.ID))
		}
		if subtask.Status == "" {
			subtask.Status = models.StatusPending
		}
		subtask.UpdatedAt = now
		subtask.LastEditedBy = actor.Username
		if err := models.ValidateStruct(subtask); err != nil {
			return types.InvalidPayload("invalid subtask", err)
		}
		t.Subtasks = append(t.Subtasks, subtask)
		t.RecomputeProgress()
		t.UpdatedAt = now
		t.LastEditedBy = actor.Username
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	s.log.WithFields(logrus.Fields{"op": "subtask_add", "task": task.ID, "actor": actor.Username}).Info("subtask added")
	return task, nil
}

// UpdateSubtask applies a partial patch to one subtask. The task-level
// timestamps move, but no change-log entry is written for subtask edits.
func (s *Service) UpdateSubtask(actor models.Principal, taskID, subtaskID string, patch SubtaskPatch) (models.Task, error) {
	task, err := s.updateTask(taskID, func(t *models.Task) error {
		if !policy.CanWriteTask(actor, *t) {
			return types.Forbidden(fmt.Sprintf("user %q may not modify tasks in location %q", actor.Username, t.Location))
		}
		i := indexOfSubtask(t.Subtasks, subtaskID)
		if i < 0 {
			return types.NotFound("subtask", subtaskID)
		}
		now := s.now()
		st := &t.Subtasks[i]
		if patch.JiraSubtaskNumber != nil {
			st.JiraSubtaskNumber = *patch.JiraSubtaskNumber
		}
		if patch.Category != nil {
			st.Category = *patch.Category
		}
		if patch.Scenario != nil {
			st.Scenario = *patch.Scenario
		}
		if patch.Lighting != nil {
			st.Lighting = *patch.Lighting
		}
		if patch.Status != nil {
			st.Status = *patch.Status
		}
		if patch.IsExecuted != nil {
			st.IsExecuted = *patch.IsExecuted
		}
		if patch.ExecutionStatus != nil {
			st.ExecutionStatus = *patch.ExecutionStatus
		}
		if patch.ExecutionNotes != nil {
			st.ExecutionNotes = *patch.ExecutionNotes
		}
		st.UpdatedAt = now
		st.LastEditedBy = actor.Username
		if err := models.ValidateStruct(*st); err != nil {
			return types.InvalidPayload("invalid subtask patch", err)
		}
		t.RecomputeProgress()
		t.UpdatedAt = now
		t.LastEditedBy = actor.Username
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	s.log.WithFields(logrus.Fields{"op": "subtask_update", "task": task.ID, "subtask": subtaskID, "actor": actor.Username}).Info("subtask updated")
	return task, nil
}

// DeleteSubtask removes one subtask by id and recomputes progress.
func (s *Service) DeleteSubtask(actor models.Principal, taskID, subtaskID string) (models.Task, error) {
	task, err := s.updateTask(taskID, func(t *models.Task) error {
		if !policy.CanWriteTask(actor, *t) {
			return types.Forbidden(fmt.Sprintf("user %q may not modify tasks in location %q", actor.Username, t.Location))
		}
		i := indexOfSubtask(t.Subtasks, subtaskID)
		if i < 0 {
			return types.NotFound("subtask", subtaskID)
		}
		now := s.now()
		t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
		t.RecomputeProgress()
		t.UpdatedAt = now
		t.LastEditedBy = actor.Username
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	s.log.WithFields(logrus.Fields{"op": "subtask_delete", "task": task.ID, "subtask": subtaskID, "actor": actor.Username}).Info("subtask deleted")
	return task, nil
}
