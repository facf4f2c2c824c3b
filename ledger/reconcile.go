package ledger

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/policy"
	"github.com/driveops/testledger/types"
)

// ReconcileResult is the caller-visible outcome of one scan submission: the
// updated task (with the recomputed progress triple) and the appended scan
// record.
type ReconcileResult struct {
	Task models.Task
	Scan models.ScanRecord
}

// sessionContext is the provenance attached to a matched subtask.
type sessionContext struct {
	diskID      string
	sessionName string
	drops       int
	cores       int
}

// buildScanIndex maps every subtask number in the payload to the session
// that produced it. A number appearing in several sessions resolves to the
// last one in disk/session iteration order.
func buildScanIndex(payload models.VehicleData) map[string]sessionContext {
	index := make(map[string]sessionContext)
	for _, disk := range payload.Disks {
		for _, session := range disk.Sessions {
			for _, num := range session.Detail.Subtasks {
				index[num] = sessionContext{
					diskID:      disk.ID,
					sessionName: session.Name,
					drops:       session.Detail.Drops,
					cores:       session.Detail.Cores,
				}
			}
		}
	}
	return index
}

// ReconcileVehicleData matches a scanned vehicle-data payload against the
// task's subtasks and marks every match executed. Re-submitting the same
// payload converges to the same subtask state; only the scan and change
// history grow.
func (s *Service) ReconcileVehicleData(actor models.Principal, taskID string, payload models.VehicleData) (ReconcileResult, error) {
	if err := payload.Validate(); err != nil {
		return ReconcileResult{}, types.InvalidPayload("malformed vehicle data payload", err)
	}

	index := buildScanIndex(payload)
	numbers := make([]string, 0, len(index))
	for num := range index {
		numbers = append(numbers, num)
	}
	sort.Strings(numbers)

	var scan models.ScanRecord
	task, err := s.updateTask(taskID, func(t *models.Task) error {
		if !policy.CanWriteTask(actor, *t) {
			return types.Forbidden(fmt.Sprintf("user %q may not modify tasks in location %q", actor.Username, t.Location))
		}

		now := s.now()
		processed := 0
		for i := range t.Subtasks {
			st := &t.Subtasks[i]
			if st.JiraSubtaskNumber == "" {
				continue
			}
			ctx, ok := index[st.JiraSubtaskNumber]
			if !ok {
				continue
			}
			executedAt := now
			st.IsExecuted = true
			st.Status = models.StatusCompleted
			st.ExecutionStatus = models.ExecutionStatusExecuted
			st.ExecutionDate = &executedAt
			st.ExecutionNotes = fmt.Sprintf("Executed via vehicle data scan (disk %s, session %s)", ctx.diskID, ctx.sessionName)
			st.VehicleDataMetadata = &models.VehicleDataMetadata{
				DiskID:      ctx.diskID,
				SessionName: ctx.sessionName,
				Drops:       ctx.drops,
				Cores:       ctx.cores,
				ProcessedAt: now,
				ProcessedBy: actor.Username,
			}
			st.UpdatedAt = now
			st.LastEditedBy = actor.Username
			processed++
		}

		// SubtaskNumbers keeps the full set discovered in the payload, not
		// just the matched ones, so misses stay traceable.
		scan = models.ScanRecord{
			ID:                models.NewID(),
			ScannedAt:         now,
			ScannedBy:         actor.Username,
			VehicleData:       payload,
			ProcessedSubtasks: processed,
			SubtaskNumbers:    numbers,
		}
		t.VehicleDataScans = append(t.VehicleDataScans, scan)

		t.RecomputeProgress()
		t.UpdatedAt = now
		t.LastEditedBy = actor.Username
		t.ChangeLog = append(t.ChangeLog, newChangeEntry(now, actor, models.ChangeTaskUpdated, t.ID, "task",
			fmt.Sprintf("Vehicle data scan marked %d subtask(s) completed", processed)))
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"op":        "reconcile",
		"task":      task.ID,
		"actor":     actor.Username,
		"processed": scan.ProcessedSubtasks,
		"progress":  task.Progress,
	}).Info("vehicle data reconciled")
	return ReconcileResult{Task: task, Scan: scan}, nil
}
