package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTask_ValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{
			name: "valid task",
			task: Task{
				ID:        uuid.New().String(),
				Title:     "Highway data run",
				Category:  CategoryDataCollection,
				Location:  "EU",
				Status:    StatusPending,
				Priority:  PriorityMedium,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "empty title",
			task: Task{
				ID:        uuid.New().String(),
				Title:     "",
				Category:  CategoryDataCollection,
				Location:  "EU",
				Status:    StatusPending,
				Priority:  PriorityMedium,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "unknown category",
			task: Task{
				ID:        uuid.New().String(),
				Title:     "Highway data run",
				Category:  "XX",
				Location:  "EU",
				Status:    StatusPending,
				Priority:  PriorityMedium,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing location",
			task: Task{
				ID:        uuid.New().String(),
				Title:     "Highway data run",
				Category:  CategoryTestTrack,
				Status:    StatusPending,
				Priority:  PriorityMedium,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "invalid subtask status rejected via dive",
			task: Task{
				ID:        uuid.New().String(),
				Title:     "Highway data run",
				Category:  CategoryTestTrack,
				Location:  "EU",
				Status:    StatusPending,
				Priority:  PriorityMedium,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
				Subtasks:  []Subtask{{ID: "s1", Status: "bogus"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.task)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask("Track brake test", CategoryTestTrack, "USA")

	if task.ID == "" {
		t.Error("NewTask should assign an ID")
	}
	if task.Status != StatusPending {
		t.Errorf("Status = %q, want %q", task.Status, StatusPending)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("Priority = %q, want %q", task.Priority, PriorityMedium)
	}
	if task.Subtasks == nil {
		t.Error("Subtasks should be initialized")
	}
	if err := ValidateStruct(*task); err != nil {
		t.Errorf("NewTask result should validate: %v", err)
	}
}

func TestPrincipal_AccessibleLocations(t *testing.T) {
	p := Principal{ID: "u1", Username: "ana", Role: RoleViewer, Location: "EU"}
	locs := p.AccessibleLocations()
	if len(locs) != 1 || locs[0] != "EU" {
		t.Errorf("Empty permissions should default to home location, got %v", locs)
	}

	p.Permissions = []string{"EU", "USA"}
	locs = p.AccessibleLocations()
	if len(locs) != 2 {
		t.Errorf("Expected explicit permissions to win, got %v", locs)
	}
}
