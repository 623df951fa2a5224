package events

import (
	"context"
	"errors"

	"github.com/mcoot/rpsarena/internal/model"
)

// Publisher broadcasts match events to external consumers
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Event) error { return nil }

// Multi fans each event out to several publishers
type Multi []Publisher

// Publish delivers to every publisher and joins their errors
func (m Multi) Publish(ctx context.Context, event model.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
