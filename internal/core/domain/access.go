package domain

// Client-side gates. They only decide what the UI offers; the server
// enforces the same rules on every request. All helpers accept a nil
// identity and then deny.

// Control describes how an interactive element is presented.
// A disabled control is still shown.
type Control struct {
	Visible bool
	Enabled bool
}

var (
	controlHidden   = Control{}
	controlDisabled = Control{Visible: true}
	controlEnabled  = Control{Visible: true, Enabled: true}
)

// HasRole reports whether the identity holds one of roles.
func (i *Identity) HasRole(roles ...Role) bool {
	if i == nil {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

func (i *Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

func (i *Identity) CanCreateProject() bool {
	return i.HasRole(RoleAdmin, RoleManager)
}

func (i *Identity) CanCreateTask() bool {
	return i.HasRole(RoleAdmin, RoleManager)
}

// CanChangeTaskStatus: Developers may only move tasks assigned to them.
func (i *Identity) CanChangeTaskStatus(t Task) bool {
	if i == nil {
		return false
	}
	if i.Role == RoleDeveloper {
		return t.AssignedTo == i.ID
	}
	return true
}

// TaskStatusControl is always shown to a logged-in user and disabled when
// CanChangeTaskStatus denies.
func (i *Identity) TaskStatusControl(t Task) Control {
	switch {
	case i == nil:
		return controlHidden
	case i.CanChangeTaskStatus(t):
		return controlEnabled
	default:
		return controlDisabled
	}
}

// CanManageTask gates the edit/delete menu of a task row: task creators and
// the assignee.
func (i *Identity) CanManageTask(t Task) bool {
	if i == nil {
		return false
	}
	return i.CanCreateTask() || t.AssignedTo == i.ID
}

// CanDeleteUser denies deleting one's own account.
func (i *Identity) CanDeleteUser(targetID string) bool {
	if !i.IsAdmin() {
		return false
	}
	return targetID != i.ID
}
