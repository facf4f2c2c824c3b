package ledger

import (
	"testing"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/store"
	"github.com/driveops/testledger/types"
)

func TestGetTask(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	task, err := svc.GetTask(viewerEU(), "T1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task.ID != "T1" {
		t.Errorf("Got task %q, want T1", task.ID)
	}

	if _, err := svc.GetTask(managerUSA(), "T1"); !types.IsForbidden(err) {
		t.Errorf("Actor outside the task's location must get Forbidden, got %v", err)
	}
	if _, err := svc.GetTask(viewerEU(), "missing"); !types.IsNotFound(err) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestListTasks_FiltersByLocation(t *testing.T) {
	svc := newTestService(t)
	euTask := trackTask()
	usaTask := trackTask()
	usaTask.ID = "T2"
	usaTask.Location = "USA"
	seedTasks(t, svc, store.CollectionTestTrack, euTask, usaTask)

	visible, err := svc.ListTasks(viewerEU(), store.CollectionTestTrack)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "T1" {
		t.Errorf("Expected only the EU task, got %+v", visible)
	}

	all, err := svc.ListTasks(adminAll(), store.CollectionTestTrack)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Multi-location actor should see both tasks, got %d", len(all))
	}
}

func TestCreateTask(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateTask(managerEU(), store.CollectionTasks, models.Task{
		Title:    "City loop recording",
		Location: "EU",
		Subtasks: []models.Subtask{{JiraSubtaskNumber: "300"}},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created.ID == "" || created.CreatedBy != "eu.manager" {
		t.Errorf("Identity stamps missing: %+v", created)
	}
	if created.Category != models.CategoryDataCollection {
		t.Errorf("Category = %q, want %q", created.Category, models.CategoryDataCollection)
	}
	if created.Status != models.StatusPending || created.Priority != models.PriorityMedium {
		t.Errorf("Defaults not applied: status=%q priority=%q", created.Status, created.Priority)
	}
	if created.Subtasks[0].ID == "" || created.Subtasks[0].Status != models.StatusPending {
		t.Errorf("Subtask defaults not applied: %+v", created.Subtasks[0])
	}
	if created.TotalSubtasks != 1 || created.Progress != 0 {
		t.Errorf("Progress triple = %d/%d%%, want 1/0%%", created.TotalSubtasks, created.Progress)
	}
	if len(created.ChangeLog) != 1 || created.ChangeLog[0].ChangeType != models.ChangeTaskCreated {
		t.Errorf("Expected one task_created change entry, got %+v", created.ChangeLog)
	}

	persisted, err := svc.records.Load(store.CollectionTasks)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != created.ID {
		t.Errorf("Task not persisted: %+v", persisted)
	}
}

func TestCreateTask_Forbidden(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateTask(viewerEU(), store.CollectionTasks, models.Task{Title: "x", Location: "EU"})
	if !types.IsForbidden(err) {
		t.Errorf("Viewer must not create tasks, got %v", err)
	}

	_, err = svc.CreateTask(managerEU(), store.CollectionTasks, models.Task{Title: "x", Location: "USA"})
	if !types.IsForbidden(err) {
		t.Errorf("Manager must not create tasks outside their locations, got %v", err)
	}
}

func TestCreateTask_InvalidPayload(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateTask(managerEU(), store.CollectionTasks, models.Task{Location: "EU"})
	if !types.IsInvalidPayload(err) {
		t.Errorf("Expected InvalidPayload for missing title, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	if err := svc.DeleteTask(managerEU(), "T1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	tasks, err := svc.records.Load(store.CollectionTestTrack)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Task should be gone, got %+v", tasks)
	}

	if err := svc.DeleteTask(managerEU(), "T1"); !types.IsNotFound(err) {
		t.Errorf("Second delete should be NotFound, got %v", err)
	}
}

func TestDeleteTask_Forbidden(t *testing.T) {
	svc := newTestService(t)
	seedTasks(t, svc, store.CollectionTestTrack, trackTask())

	if err := svc.DeleteTask(managerUSA(), "T1"); !types.IsForbidden(err) {
		t.Errorf("Expected Forbidden, got %v", err)
	}
	tasks, _ := svc.records.Load(store.CollectionTestTrack)
	if len(tasks) != 1 {
		t.Errorf("Denied delete must leave the collection unchanged, got %d tasks", len(tasks))
	}
}
