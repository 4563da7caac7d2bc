package kvstore

import (
	"context"

	"github.com/yigit/curriculum/internal/pkg/notify"
)

// Observed wraps a Store and publishes a change after every successful write or delete
type Observed struct {
	Store
	publisher notify.Publisher
}

// NewObserved decorates store so that writes are announced on publisher
func NewObserved(store Store, publisher notify.Publisher) *Observed {
	return &Observed{Store: store, publisher: publisher}
}

func (o *Observed) Set(ctx context.Context, key string, value []byte) error {
	if err := o.Store.Set(ctx, key, value); err != nil {
		return err
	}
	o.publisher.Publish(notify.Change{Key: key})
	return nil
}

func (o *Observed) Delete(ctx context.Context, key string) error {
	if err := o.Store.Delete(ctx, key); err != nil {
		return err
	}
	o.publisher.Publish(notify.Change{Key: key, Deleted: true})
	return nil
}
