package ledger

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/policy"
	"github.com/driveops/testledger/store"
	"github.com/driveops/testledger/types"
)

// GetTask returns one task the actor may read.
func (s *Service) GetTask(actor models.Principal, taskID string) (models.Task, error) {
	task, _, err := s.findTask(taskID)
	if err != nil {
		return models.Task{}, err
	}
	if !policy.CanReadTask(actor, task) {
		return models.Task{}, types.Forbidden(fmt.Sprintf("user %q may not read tasks in location %q", actor.Username, task.Location))
	}
	return task, nil
}

// ListTasks returns the tasks of one collection the actor may read. The
// read predicate is applied per record; records outside the actor's
// locations are filtered, not an error.
func (s *Service) ListTasks(actor models.Principal, collection store.Collection) ([]models.Task, error) {
	tasks, err := s.records.Load(collection)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if policy.CanReadTask(actor, t) {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

func collectionCategory(collection store.Collection) models.TaskCategory {
	if collection == store.CollectionTestTrack {
		return models.CategoryTestTrack
	}
	return models.CategoryDataCollection
}

// CreateTask accepts the new-record shape, stamps identity and timestamps,
// and appends it to the collection.
func (s *Service) CreateTask(actor models.Principal, collection store.Collection, input models.Task) (models.Task, error) {
	if !policy.CanManageTasks(actor) {
		return models.Task{}, types.Forbidden(fmt.Sprintf("role %q may not create tasks", actor.Role))
	}
	if !policy.CanAccessLocation(actor, input.Location) {
		return models.Task{}, types.Forbidden(fmt.Sprintf("user %q may not create tasks in location %q", actor.Username, input.Location))
	}

	now := s.now()
	if input.ID == "" {
		input.ID = models.NewID()
	}
	input.Category = collectionCategory(collection)
	if input.Status == "" {
		input.Status = models.StatusPending
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if input.Subtasks == nil {
		input.Subtasks = []models.Subtask{}
	}
	for i := range input.Subtasks {
		if input.Subtasks[i].ID == "" {
			input.Subtasks[i].ID = models.NewID()
		}
		if input.Subtasks[i].Status == "" {
			input.Subtasks[i].Status = models.StatusPending
		}
		input.Subtasks[i].UpdatedAt = now
	}
	input.CreatedBy = actor.Username
	input.CreatedAt = now
	input.UpdatedAt = now
	input.LastEditedBy = actor.Username
	input.VehicleDataScans = nil
	input.RecomputeProgress()
	input.ChangeLog = []models.ChangeEntry{
		newChangeEntry(now, actor, models.ChangeTaskCreated, input.ID, "task", fmt.Sprintf("Task %q created", input.Title)),
	}

	if err := models.ValidateStruct(input); err != nil {
		return models.Task{}, types.InvalidPayload("invalid task", err)
	}

	_, err := s.records.Update(collection, func(tasks []models.Task) ([]models.Task, error) {
		if indexOfTask(tasks, input.ID) >= 0 {
			return nil, types.Conflict(fmt.Sprintf("task %q already exists", input.ID))
		}
		return append(tasks, input), nil
	})
	if err != nil {
		return models.Task{}, err
	}

	s.log.WithFields(logrus.Fields{"op": "task_create", "task": input.ID, "actor": actor.Username, "location": input.Location}).Info("task created")
	return input, nil
}

// DeleteTask removes one task the actor may write. Deletion is the simple
// ledger-edge operation; reconciliation never deletes.
func (s *Service) DeleteTask(actor models.Principal, taskID string) error {
	for _, c := range store.Collections {
		removed := false
		_, err := s.records.Update(c, func(tasks []models.Task) ([]models.Task, error) {
			i := indexOfTask(tasks, taskID)
			if i < 0 {
				return nil, errNotInCollection
			}
			if !policy.CanWriteTask(actor, tasks[i]) {
				return nil, types.Forbidden(fmt.Sprintf("user %q may not delete tasks in location %q", actor.Username, tasks[i].Location))
			}
			removed = true
			return append(tasks[:i], tasks[i+1:]...), nil
		})
		if err == nil && removed {
			s.log.WithFields(logrus.Fields{"op": "task_delete", "task": taskID, "actor": actor.Username}).Info("task deleted")
			return nil
		}
		if err != nil && !errors.Is(err, errNotInCollection) {
			return err
		}
	}
	return types.NotFound("task", taskID)
}
