package store

import "github.com/driveops/testledger/models"

// Collection names one of the two task ledgers.
type Collection string

const (
	// CollectionTasks holds the data-collection assignments.
	CollectionTasks Collection = "tasks"
	// CollectionTestTrack holds the test-track assignments. Its subtasks
	// carry the external correlation numbers used by reconciliation.
	CollectionTestTrack Collection = "ttTasks"
)

// Collections lists every task collection in a stable order.
var Collections = []Collection{CollectionTasks, CollectionTestTrack}

// RecordStore persists the task collections. Load returns the full current
// collection; Save replaces it atomically from the caller's perspective.
// No partial-write semantics are exposed: every mutation loads the full
// collection, applies one logical change, and saves it back.
//
// Failures are reported as types.ErrStoreUnavailable when the backing
// medium cannot be read or written, and types.ErrStoreCorrupt when loaded
// content does not parse into the expected shape.
// Update runs one load-mutate-save cycle under the collection's write lock,
// so concurrent writers serialize instead of losing updates. A mutate
// callback that returns an error aborts the cycle with the store untouched.
type RecordStore interface {
	Load(collection Collection) ([]models.Task, error)
	Save(collection Collection, tasks []models.Task) error
	Update(collection Collection, mutate func(tasks []models.Task) ([]models.Task, error)) ([]models.Task, error)
	Close() error
}

// UserStore persists the user directory with the same whole-collection
// load/replace semantics.
type UserStore interface {
	LoadUsers() ([]models.User, error)
	SaveUsers(users []models.User) error
	UpdateUsers(mutate func(users []models.User) ([]models.User, error)) ([]models.User, error)
}
