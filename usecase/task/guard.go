package task

import "github.com/fastygo/tasktracker/domain"

// AssertOwner fails with domain.ErrForbidden unless user owns task.
func AssertOwner(task *domain.Task, user *domain.User) error {
	if task == nil || user == nil || user.ID == "" || task.OwnerID != user.ID {
		return domain.ErrForbidden
	}
	return nil
}
