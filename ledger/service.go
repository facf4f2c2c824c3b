// Package ledger implements the access-controlled task and subtask
// operations: vehicle-data reconciliation, direct subtask mutation,
// search by external number, task lifecycle, and the user directory.
//
// Every mutating operation is one load-check-mutate-recompute-save cycle
// against the record store; the access policy is consulted before any state
// changes, and a failure anywhere leaves the store untouched.
package ledger

import (
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/store"
	"github.com/driveops/testledger/types"
)

// Service exposes the ledger operations over a record store and the user
// directory.
type Service struct {
	records store.RecordStore
	users   store.UserStore
	log     *logrus.Logger
	now     func() time.Time
}

// NewService creates a ledger service. A nil logger disables logging.
func NewService(records store.RecordStore, users store.UserStore, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Service{
		records: records,
		users:   users,
		log:     logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// errNotInCollection aborts an Update cycle when the target task lives in a
// different collection. Never escapes the package.
var errNotInCollection = errors.New("task not in this collection")

func indexOfTask(tasks []models.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// updateTask locates the task by id across the collections and applies one
// mutation to it under that collection's write lock. The apply callback sees
// a copy; returning an error aborts the cycle with nothing persisted.
func (s *Service) updateTask(id string, apply func(t *models.Task) error) (models.Task, error) {
	var updated models.Task
	for _, c := range store.Collections {
		_, err := s.records.Update(c, func(tasks []models.Task) ([]models.Task, error) {
			i := indexOfTask(tasks, id)
			if i < 0 {
				return nil, errNotInCollection
			}
			t := tasks[i]
			if err := apply(&t); err != nil {
				return nil, err
			}
			tasks[i] = t
			updated = t
			return tasks, nil
		})
		if errors.Is(err, errNotInCollection) {
			continue
		}
		if err != nil {
			return models.Task{}, err
		}
		return updated, nil
	}
	return models.Task{}, types.NotFound("task", id)
}

// findTask loads the task by id from whichever collection holds it.
func (s *Service) findTask(id string) (models.Task, store.Collection, error) {
	for _, c := range store.Collections {
		tasks, err := s.records.Load(c)
		if err != nil {
			return models.Task{}, c, err
		}
		if i := indexOfTask(tasks, id); i >= 0 {
			return tasks[i], c, nil
		}
	}
	return models.Task{}, "", types.NotFound("task", id)
}

// newChangeEntry builds one append-only audit entry.
func newChangeEntry(now time.Time, actor models.Principal, changeType models.ChangeType, targetID, targetType, description string) models.ChangeEntry {
	return models.ChangeEntry{
		ID:          models.NewID(),
		Timestamp:   now,
		UserID:      actor.ID,
		UserName:    actor.Username,
		ChangeType:  changeType,
		TargetID:    targetID,
		TargetType:  targetType,
		Description: description,
	}
}
