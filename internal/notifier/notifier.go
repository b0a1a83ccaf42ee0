package notifier

import (
	"context"
	"errors"
	"log"

	"PriceSentinel/internal/model"
)

// Notifier delivers alerts to a user-facing channel.
type Notifier interface {
	Notify(ctx context.Context, a *model.Alert) error
}

// Multi fans an alert out to several notifiers. Every notifier is tried even
// if an earlier one fails; the errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a *model.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes alerts to the process log. Used when no channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, a *model.Alert) error {
	log.Printf("[INFO] alert %s %s/%s value=%.2f threshold=%.2f advice=%s",
		a.Kind, a.ItemID, a.Platform, a.Value, a.Threshold, a.Result.Advice)
	return nil
}
