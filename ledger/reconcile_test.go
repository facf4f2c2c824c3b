package ledger

import (
	"reflect"
	"testing"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/store"
	"github.com/driveops/testledger/types"
)

func TestReconcile_SingleMatch(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	result, err := svc.ReconcileVehicleData(managerEU(), "T1", scanPayload("100"))
	if err != nil {
		t.Fatalf("ReconcileVehicleData failed: %v", err)
	}

	task := result.Task
	st1 := task.Subtasks[0]
	if !st1.IsExecuted || st1.Status != models.StatusCompleted {
		t.Errorf("Subtask 100 should be executed/completed, got executed=%v status=%q", st1.IsExecuted, st1.Status)
	}
	if st1.ExecutionStatus != models.ExecutionStatusExecuted {
		t.Errorf("ExecutionStatus = %q, want %q", st1.ExecutionStatus, models.ExecutionStatusExecuted)
	}
	if st1.VehicleDataMetadata == nil {
		t.Fatal("Matched subtask should carry vehicle data metadata")
	}
	if st1.VehicleDataMetadata.DiskID != "D1" || st1.VehicleDataMetadata.SessionName != "S1" {
		t.Errorf("Metadata provenance = %s/%s, want D1/S1", st1.VehicleDataMetadata.DiskID, st1.VehicleDataMetadata.SessionName)
	}
	if st1.VehicleDataMetadata.Drops != 2 || st1.VehicleDataMetadata.Cores != 1 {
		t.Errorf("Metadata counters = %d/%d, want 2/1", st1.VehicleDataMetadata.Drops, st1.VehicleDataMetadata.Cores)
	}

	st2 := task.Subtasks[1]
	if st2.IsExecuted || st2.Status != models.StatusPending {
		t.Errorf("Subtask 101 should be untouched, got executed=%v status=%q", st2.IsExecuted, st2.Status)
	}

	if task.CompletedSubtasks != 1 || task.TotalSubtasks != 2 || task.Progress != 50 {
		t.Errorf("Progress triple = %d/%d/%d%%, want 1/2/50%%", task.CompletedSubtasks, task.TotalSubtasks, task.Progress)
	}

	if result.Scan.ProcessedSubtasks != 1 {
		t.Errorf("Scan.ProcessedSubtasks = %d, want 1", result.Scan.ProcessedSubtasks)
	}
	if len(task.VehicleDataScans) != 1 {
		t.Errorf("Expected 1 scan record, got %d", len(task.VehicleDataScans))
	}
	if len(task.ChangeLog) != 1 || task.ChangeLog[0].ChangeType != models.ChangeTaskUpdated {
		t.Errorf("Expected one task_updated change entry, got %+v", task.ChangeLog)
	}
}

func TestReconcile_AllMatch(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	result, err := svc.ReconcileVehicleData(managerEU(), "T1", scanPayload("100", "101"))
	if err != nil {
		t.Fatalf("ReconcileVehicleData failed: %v", err)
	}
	if result.Task.CompletedSubtasks != 2 || result.Task.Progress != 100 {
		t.Errorf("Progress = %d/%d%%, want 2/100%%", result.Task.CompletedSubtasks, result.Task.Progress)
	}
}

func TestReconcile_ForbiddenOutsideLocation(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	_, err := svc.ReconcileVehicleData(managerUSA(), "T1", scanPayload("100"))
	if !types.IsForbidden(err) {
		t.Fatalf("Expected Forbidden, got %v", err)
	}

	// No state change and no scan record reached the store.
	tasks, loadErr := svc.records.Load(store.CollectionTestTrack)
	if loadErr != nil {
		t.Fatalf("Load failed: %v", loadErr)
	}
	if tasks[0].Subtasks[0].IsExecuted {
		t.Error("Denied reconciliation must not mark subtasks")
	}
	if len(tasks[0].VehicleDataScans) != 0 {
		t.Error("Denied reconciliation must not append a scan record")
	}
}

func TestReconcile_TaskNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ReconcileVehicleData(managerEU(), "missing", scanPayload("100"))
	if !types.IsNotFound(err) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestReconcile_InvalidPayload(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	_, err := svc.ReconcileVehicleData(managerEU(), "T1", models.VehicleData{})
	if !types.IsInvalidPayload(err) {
		t.Errorf("Expected InvalidPayload, got %v", err)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	first, err := svc.ReconcileVehicleData(managerEU(), "T1", scanPayload("100"))
	if err != nil {
		t.Fatalf("First reconcile failed: %v", err)
	}
	second, err := svc.ReconcileVehicleData(managerEU(), "T1", scanPayload("100"))
	if err != nil {
		t.Fatalf("Second reconcile failed: %v", err)
	}

	if !reflect.DeepEqual(first.Task.Subtasks, second.Task.Subtasks) {
		t.Errorf("Subtask state must converge:\nfirst:  %+v\nsecond: %+v", first.Task.Subtasks, second.Task.Subtasks)
	}
	if first.Task.Progress != second.Task.Progress {
		t.Errorf("Progress diverged: %d vs %d", first.Task.Progress, second.Task.Progress)
	}

	// History is cumulative even though state converges.
	if len(second.Task.VehicleDataScans) != 2 {
		t.Errorf("Expected 2 scan records after two submissions, got %d", len(second.Task.VehicleDataScans))
	}
	if len(second.Task.ChangeLog) != 2 {
		t.Errorf("Expected 2 change entries after two submissions, got %d", len(second.Task.ChangeLog))
	}
}

func TestReconcile_LastWriterWinsAcrossSessions(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	payload := models.VehicleData{Disks: []models.Disk{{
		ID: "D1",
		Sessions: []models.Session{
			{Name: "S1", Detail: models.SessionDetail{Subtasks: []string{"100"}, Drops: 1, Cores: 1}},
			{Name: "S2", Detail: models.SessionDetail{Subtasks: []string{"100"}, Drops: 9, Cores: 3}},
		},
	}}}

	result, err := svc.ReconcileVehicleData(managerEU(), "T1", payload)
	if err != nil {
		t.Fatalf("ReconcileVehicleData failed: %v", err)
	}

	meta := result.Task.Subtasks[0].VehicleDataMetadata
	if meta == nil {
		t.Fatal("Expected metadata on matched subtask")
	}
	if meta.SessionName != "S2" || meta.Drops != 9 || meta.Cores != 3 {
		t.Errorf("Later session must win: got %s drops=%d cores=%d", meta.SessionName, meta.Drops, meta.Cores)
	}
}

func TestReconcile_DuplicateNumbersMatchAllOccurrences(t *testing.T) {
	svc := newTestService(t)
	task := trackTask()
	task.Subtasks = append(task.Subtasks, models.Subtask{ID: "st-3", JiraSubtaskNumber: "100", Status: models.StatusPending, UpdatedAt: testClock})
	task.TotalSubtasks = 3
	seedTasks(t, svc, store.CollectionTestTrack, task)

	result, err := svc.ReconcileVehicleData(managerEU(), "T1", scanPayload("100"))
	if err != nil {
		t.Fatalf("ReconcileVehicleData failed: %v", err)
	}

	if result.Scan.ProcessedSubtasks != 2 {
		t.Errorf("Both occurrences of number 100 should be processed, got %d", result.Scan.ProcessedSubtasks)
	}
	if !result.Task.Subtasks[0].IsExecuted || !result.Task.Subtasks[2].IsExecuted {
		t.Error("Every subtask carrying a matched number must be executed")
	}
	if result.Task.Subtasks[1].IsExecuted {
		t.Error("Unmatched subtask must stay untouched")
	}
}

func TestReconcile_ScanKeepsUnmatchedNumbers(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	result, err := svc.ReconcileVehicleData(managerEU(), "T1", scanPayload("100", "999"))
	if err != nil {
		t.Fatalf("ReconcileVehicleData failed: %v", err)
	}

	if result.Scan.ProcessedSubtasks != 1 {
		t.Errorf("ProcessedSubtasks = %d, want 1", result.Scan.ProcessedSubtasks)
	}
	want := []string{"100", "999"}
	if !reflect.DeepEqual(result.Scan.SubtaskNumbers, want) {
		t.Errorf("SubtaskNumbers = %v, want %v (misses stay traceable)", result.Scan.SubtaskNumbers, want)
	}
}

func TestReconcile_SubtaskWithoutNumberIgnored(t *testing.T) {
	svc := newTestService(t)
	task := trackTask()
	task.Subtasks[1].JiraSubtaskNumber = ""
	seedTasks(t, svc, store.CollectionTestTrack, task)

	result, err := svc.ReconcileVehicleData(managerEU(), "T1", scanPayload("100", "101"))
	if err != nil {
		t.Fatalf("ReconcileVehicleData failed: %v", err)
	}
	if result.Task.Subtasks[1].IsExecuted {
		t.Error("Subtask without a correlation number must never match")
	}
	if result.Scan.ProcessedSubtasks != 1 {
		t.Errorf("ProcessedSubtasks = %d, want 1", result.Scan.ProcessedSubtasks)
	}
}
