// Package policy holds the access decisions for the ledger. Every function
// is pure: it looks only at the principal's claims and the record being
// acted on. Callers signal Forbidden on a false answer; filtering of
// collections stays with the caller, applying the same predicate per record.
package policy

import "github.com/driveops/testledger/models"

// CanAccessLocation reports whether the principal may see records scoped to
// the given location. Role has no bearing here; an admin is expected to
// carry every location in its permissions set, but that is a data fact, not
// a rule.
func CanAccessLocation(p models.Principal, location string) bool {
	for _, loc := range p.AccessibleLocations() {
		if loc == location {
			return true
		}
	}
	return false
}

// CanManageTasks reports whether the principal's role allows task mutations.
func CanManageTasks(p models.Principal) bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleDataManager
}

// CanManageUsers reports whether the principal may administer the user
// directory.
func CanManageUsers(p models.Principal) bool {
	return p.Role == models.RoleAdmin
}

// CanReadTask reports whether the principal may read the task. Viewers may
// read anything in their locations.
func CanReadTask(p models.Principal, task models.Task) bool {
	return CanAccessLocation(p, task.Location)
}

// CanWriteTask reports whether the principal may mutate the task: a
// managing role plus access to the task's location.
func CanWriteTask(p models.Principal, task models.Task) bool {
	return CanManageTasks(p) && CanAccessLocation(p, task.Location)
}
