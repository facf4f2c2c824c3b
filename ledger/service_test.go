package ledger

import (
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/store"
)

var testClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()

	fileStore, err := store.NewFileRecordStore(afero.NewOsFs(), t.TempDir(), "json")
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = fileStore.Close() })

	svc := NewService(fileStore, fileStore, nil)
	svc.now = func() time.Time { return testClock }
	return svc
}

func seedTasks(t *testing.T, svc *Service, collection store.Collection, tasks ...models.Task) {
	t.Helper()
	if err := svc.records.Save(collection, tasks); err != nil {
		t.Fatalf("Failed to seed %s: %v", collection, err)
	}
}

func seedUsers(t *testing.T, svc *Service, users ...models.User) {
	t.Helper()
	if err := svc.users.SaveUsers(users); err != nil {
		t.Fatalf("Failed to seed users: %v", err)
	}
}

func managerEU() models.Principal {
	return models.Principal{ID: "u-eu", Username: "eu.manager", Role: models.RoleDataManager, Location: "EU", Permissions: []string{"EU"}}
}

func managerUSA() models.Principal {
	return models.Principal{ID: "u-usa", Username: "usa.manager", Role: models.RoleDataManager, Location: "USA", Permissions: []string{"USA"}}
}

func viewerEU() models.Principal {
	return models.Principal{ID: "u-view", Username: "eu.viewer", Role: models.RoleViewer, Location: "EU", Permissions: []string{"EU"}}
}

func adminAll() models.Principal {
	return models.Principal{ID: "u-admin", Username: "root.admin", Role: models.RoleAdmin, Location: "EU", Permissions: []string{"EU", "USA", "IL"}}
}

// trackTask is the two-subtask test-track fixture used across the suite.
func trackTask() models.Task {
	return models.Task{
		ID:        "T1",
		Title:     "Track validation run",
		Category:  models.CategoryTestTrack,
		Location:  "EU",
		Status:    models.StatusPending,
		Priority:  models.PriorityMedium,
		CreatedAt: testClock,
		UpdatedAt: testClock,
		Subtasks: []models.Subtask{
			{ID: "st-1", JiraSubtaskNumber: "100", Status: models.StatusPending, UpdatedAt: testClock},
			{ID: "st-2", JiraSubtaskNumber: "101", Status: models.StatusPending, UpdatedAt: testClock},
		},
		TotalSubtasks: 2,
	}
}

func scanPayload(numbers ...string) models.VehicleData {
	return models.VehicleData{Disks: []models.Disk{{
		ID: "D1",
		Sessions: []models.Session{{
			Name:   "S1",
			Detail: models.SessionDetail{Subtasks: numbers, Drops: 2, Cores: 1},
		}},
	}}}
}
