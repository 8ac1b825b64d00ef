package notify

import (
	"context"
	"errors"

	"github.com/beemnet-bee/BeeSmartToDo/remind"
)

// Multi sends each notification to every permitted notifier.
type Multi []remind.Notifier

// Permission is granted when any notifier is granted. Otherwise the first
// notifier's permission is reported.
func (m Multi) Permission() remind.Permission {
	if len(m) == 0 {
		return remind.PermissionUnsupported
	}
	for _, n := range m {
		if n.Permission() == remind.PermissionGranted {
			return remind.PermissionGranted
		}
	}
	return m[0].Permission()
}

// RequestPermission asks every notifier that has not decided yet.
func (m Multi) RequestPermission(ctx context.Context) (remind.Permission, error) {
	var errs []error
	for _, n := range m {
		if n.Permission() != remind.PermissionDefault {
			continue
		}
		if _, err := n.RequestPermission(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return m.Permission(), errors.Join(errs...)
}

// Notify delivers n through every granted notifier.
func (m Multi) Notify(ctx context.Context, n remind.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier.Permission() != remind.PermissionGranted {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
