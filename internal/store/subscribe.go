package store

import (
	"context"
)

// Subscription is a live query: an ordered stream of full result snapshots,
// one emitted immediately and one after every committed write to the
// collection. Snapshots are never deltas and never partially built.
type Subscription struct {
	// Snapshots delivers query results in order. Closed after Cancel or when
	// the parent context ends.
	Snapshots <-chan []Document

	cancel context.CancelFunc
}

// Cancel stops the subscription. No further snapshots are delivered after
// Cancel returns and the channel is eventually closed; a snapshot being
// computed when Cancel is called is dropped, not half-delivered.
func (s *Subscription) Cancel() { s.cancel() }

// Subscribe registers a live query against the collection.
func (c *Collection) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	msgs, err := c.store.bus.Subscribe(ctx, topicFor(c.name))
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan []Document, 1)
	sub := &Subscription{Snapshots: out, cancel: cancel}

	go func() {
		defer close(out)

		send := func() bool {
			docs, err := c.Query(ctx, q)
			if err != nil {
				// Canceled mid-query or store gone; either way the stream
				// ends without a partial update.
				return false
			}
			select {
			case out <- docs:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				msg.Ack()
				if !send() {
					return
				}
			}
		}
	}()

	return sub, nil
}
