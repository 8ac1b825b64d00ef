// Package remind fires one-time notifications for task reminders.
//
// A Scheduler checks the task list on a fixed interval. Each incomplete task
// whose reminder time has passed produces exactly one notification, recorded
// in a FiredSet so later ticks skip it. Editing the reminder or deleting the
// task clears that record.
package remind

import (
	"context"
	"errors"
)

// Permission is the host's answer to whether notifications may be shown.
type Permission string

const (
	// PermissionDefault means the user has not decided yet.
	PermissionDefault Permission = "default"

	// PermissionGranted allows notifications.
	PermissionGranted Permission = "granted"

	// PermissionDenied means the user blocked notifications.
	PermissionDenied Permission = "denied"

	// PermissionUnsupported means the host cannot show notifications.
	PermissionUnsupported Permission = "unsupported"
)

// ValidPermissions returns all valid permission values.
func ValidPermissions() []Permission {
	return []Permission{PermissionDefault, PermissionGranted, PermissionDenied, PermissionUnsupported}
}

// IsValid returns true if the permission is a known valid value.
func (p Permission) IsValid() bool {
	for _, valid := range ValidPermissions() {
		if p == valid {
			return true
		}
	}
	return false
}

// ReminderTitle is the title of every reminder notification.
const ReminderTitle = "Bee Smart To-Do Reminder"

// Notification is a single message for the user.
type Notification struct {
	Title string
	Body  string
	Icon  string
}

// Notifier is the host notification surface.
type Notifier interface {
	// Permission reports the current permission without prompting.
	Permission() Permission

	// RequestPermission asks the user and returns the resulting permission.
	RequestPermission(ctx context.Context) (Permission, error)

	// Notify shows n. Callers must only call it when permission is granted.
	Notify(ctx context.Context, n Notification) error
}

var (
	// ErrUnsupported is returned by Enable when the host cannot notify.
	ErrUnsupported = errors.New("notifications are not supported on this system")

	// ErrBlocked is returned by Enable when the user previously denied
	// notifications. The caller should explain how to allow them again.
	ErrBlocked = errors.New("notifications are blocked")
)

// Enable asks for permission when it has not been decided yet. A granted
// permission is returned as is. A denied or unsupported permission is
// reported as ErrBlocked or ErrUnsupported without prompting.
func Enable(ctx context.Context, n Notifier) (Permission, error) {
	switch current := n.Permission(); current {
	case PermissionUnsupported:
		return current, ErrUnsupported
	case PermissionDenied:
		return current, ErrBlocked
	case PermissionGranted:
		return current, nil
	default:
		return n.RequestPermission(ctx)
	}
}
