package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskCategory distinguishes the two ledgers a task can live in.
type TaskCategory string

const (
	CategoryDataCollection TaskCategory = "DC"
	CategoryTestTrack      TaskCategory = "TT"
)

// TaskStatus represents the possible statuses of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusOnHold     TaskStatus = "on-hold"
)

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// ExecutionStatusExecuted is the execution status stamped on a subtask when a
// vehicle-data scan marks it done.
const ExecutionStatusExecuted = "executed"

// ChangeType identifies what kind of mutation a ChangeEntry records.
type ChangeType string

const (
	ChangeTaskCreated ChangeType = "task_created"
	ChangeTaskUpdated ChangeType = "task_updated"
	ChangeTaskDeleted ChangeType = "task_deleted"
)

// Task is a unit of test work scoped to one location. It owns its subtasks,
// the derived progress triple, and its append-only scan and change history.
type Task struct {
	ID                string       `json:"id" validate:"required"`
	Title             string       `json:"title" validate:"required,min=3,max=255"`
	Category          TaskCategory `json:"category" validate:"required,oneof=DC TT"`
	Location          string       `json:"location" validate:"required"`
	Status            TaskStatus   `json:"status" validate:"required,oneof=pending in-progress completed on-hold"`
	Priority          TaskPriority `json:"priority" validate:"required,oneof=low medium high urgent"`
	Type              string       `json:"type,omitempty"`
	CreatedBy         string       `json:"createdBy,omitempty"`
	CreatedAt         time.Time    `json:"createdAt" validate:"required"`
	UpdatedAt         time.Time    `json:"updatedAt" validate:"required"`
	LastEditedBy      string       `json:"lastEditedBy,omitempty"`
	Subtasks          []Subtask    `json:"subtasks" validate:"dive"`
	CompletedSubtasks int          `json:"completedSubtasks" validate:"min=0"`
	TotalSubtasks     int          `json:"totalSubtasks" validate:"min=0"`
	Progress          int          `json:"progress" validate:"min=0,max=100"`
	VehicleDataScans  []ScanRecord `json:"vehicleDataScans,omitempty"`
	ChangeLog         []ChangeEntry `json:"changeLog,omitempty"`
}

// Subtask is the smallest trackable unit of execution within a task.
// JiraSubtaskNumber is the external correlation key used by reconciliation;
// it may be empty, in which case scans never touch the subtask.
type Subtask struct {
	ID                  string               `json:"id" validate:"required"`
	JiraSubtaskNumber   string               `json:"jiraSubtaskNumber,omitempty"`
	Category            string               `json:"category,omitempty"`
	Scenario            string               `json:"scenario,omitempty"`
	Lighting            string               `json:"lighting,omitempty"`
	Status              TaskStatus           `json:"status" validate:"required,oneof=pending in-progress completed on-hold"`
	IsExecuted          bool                 `json:"isExecuted"`
	ExecutionStatus     string               `json:"executionStatus,omitempty"`
	ExecutionDate       *time.Time           `json:"executionDate,omitempty"`
	ExecutionNotes      string               `json:"executionNotes,omitempty"`
	VehicleDataMetadata *VehicleDataMetadata `json:"vehicleDataMetadata,omitempty"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	LastEditedBy        string               `json:"lastEditedBy,omitempty"`
}

// VehicleDataMetadata records the session context that executed a subtask.
type VehicleDataMetadata struct {
	DiskID      string    `json:"diskId"`
	SessionName string    `json:"sessionName"`
	Drops       int       `json:"drops"`
	Cores       int       `json:"cores"`
	ProcessedAt time.Time `json:"processedAt"`
	ProcessedBy string    `json:"processedBy"`
}

// ScanRecord is one reconciliation submission. Records are append-only and
// never mutated after creation.
type ScanRecord struct {
	ID                string      `json:"id" validate:"required"`
	ScannedAt         time.Time   `json:"scannedAt" validate:"required"`
	ScannedBy         string      `json:"scannedBy"`
	VehicleData       VehicleData `json:"vehicleData"`
	ProcessedSubtasks int         `json:"processedSubtasks" validate:"min=0"`
	SubtaskNumbers    []string    `json:"subtaskNumbers"`
}

// ChangeEntry is one append-only audit-log entry describing a task mutation.
type ChangeEntry struct {
	ID          string     `json:"id" validate:"required"`
	Timestamp   time.Time  `json:"timestamp" validate:"required"`
	UserID      string     `json:"userId"`
	UserName    string     `json:"userName"`
	ChangeType  ChangeType `json:"changeType" validate:"required"`
	TargetID    string     `json:"targetId"`
	TargetType  string     `json:"targetType"`
	Description string     `json:"description"`
}

// TaskCollection is the on-disk shape of one ledger collection.
type TaskCollection struct {
	Tasks      []Task `json:"tasks" validate:"dive"`
	TotalCount int    `json:"totalCount"`
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// NewTask creates a task with identity, defaults, and timestamps filled in.
func NewTask(title string, category TaskCategory, location string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  category,
		Location:  location,
		Status:    StatusPending,
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
		Subtasks:  []Subtask{},
	}
}

// NewID returns a fresh identifier for tasks, subtasks, scans and change entries.
func NewID() string {
	return uuid.NewString()
}
