package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/policy"
	"github.com/driveops/testledger/types"
)

func indexOfUser(users []models.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func countAdmins(users []models.User) int {
	n := 0
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

// ListUsers returns the user directory. Requires user management rights.
func (s *Service) ListUsers(actor models.Principal) ([]models.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, types.Forbidden(fmt.Sprintf("role %q may not manage users", actor.Role))
	}
	return s.users.LoadUsers()
}

// CreateUser adds a directory record.
func (s *Service) CreateUser(actor models.Principal, user models.User) (models.User, error) {
	if !policy.CanManageUsers(actor) {
		return models.User{}, types.Forbidden(fmt.Sprintf("role %q may not manage users", actor.Role))
	}
	now := s.now()
	if user.ID == "" {
		user.ID = models.NewID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := models.ValidateStruct(user); err != nil {
		return models.User{}, types.InvalidPayload("invalid user", err)
	}

	_, err := s.users.UpdateUsers(func(users []models.User) ([]models.User, error) {
		if indexOfUser(users, user.ID) >= 0 {
			return nil, types.Conflict(fmt.Sprintf("user %q already exists", user.ID))
		}
		for _, u := range users {
			if u.Username == user.Username {
				return nil, types.Conflict(fmt.Sprintf("username %q already taken", user.Username))
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return models.User{}, err
	}
	s.log.WithFields(logrus.Fields{"op": "user_create", "user": user.ID, "actor": actor.Username}).Info("user created")
	return user, nil
}

// ChangeUserRole updates one user's role. Demoting the last surviving admin
// is refused with Conflict: the operation counts admins that would remain
// and never lets that number reach zero.
func (s *Service) ChangeUserRole(actor models.Principal, userID string, role models.Role) (models.User, error) {
	if !policy.CanManageUsers(actor) {
		return models.User{}, types.Forbidden(fmt.Sprintf("role %q may not manage users", actor.Role))
	}
	switch role {
	case models.RoleAdmin, models.RoleDataManager, models.RoleViewer:
	default:
		return models.User{}, types.InvalidPayload(fmt.Sprintf("unknown role %q", role), nil)
	}

	var updated models.User
	_, err := s.users.UpdateUsers(func(users []models.User) ([]models.User, error) {
		i := indexOfUser(users, userID)
		if i < 0 {
			return nil, types.NotFound("user", userID)
		}
		if users[i].Role == models.RoleAdmin && role != models.RoleAdmin && countAdmins(users) == 1 {
			return nil, types.Conflict("cannot demote the last admin")
		}
		users[i].Role = role
		users[i].UpdatedAt = s.now()
		updated = users[i]
		return users, nil
	})
	if err != nil {
		return models.User{}, err
	}
	s.log.WithFields(logrus.Fields{"op": "user_role", "user": userID, "role": role, "actor": actor.Username}).Info("user role changed")
	return updated, nil
}

// DeleteUser removes one directory record. Deleting the only admin is
// refused with Conflict.
func (s *Service) DeleteUser(actor models.Principal, userID string) error {
	if !policy.CanManageUsers(actor) {
		return types.Forbidden(fmt.Sprintf("role %q may not manage users", actor.Role))
	}
	_, err := s.users.UpdateUsers(func(users []models.User) ([]models.User, error) {
		i := indexOfUser(users, userID)
		if i < 0 {
			return nil, types.NotFound("user", userID)
		}
		if users[i].Role == models.RoleAdmin && countAdmins(users) == 1 {
			return nil, types.Conflict("cannot delete the only admin")
		}
		return append(users[:i], users[i+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"op": "user_delete", "user": userID, "actor": actor.Username}).Info("user deleted")
	return nil
}
