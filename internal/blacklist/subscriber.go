package blacklist

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"playermarket-api/internal/storage"
)

// LoadFunc returns the authoritative blacklist snapshot from the store.
type LoadFunc func(ctx context.Context) ([]string, error)

// Subscriber is the push propagation consumer for the key-value backend: one
// long-lived pub/sub reader per process that applies blacklist deltas to the
// local mirror. Delivery is at-most-once; a disconnected process misses
// updates until the next resync from the authoritative hash.
type Subscriber struct {
	client *redis.Client
	mirror *Mirror
	load   LoadFunc

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewSubscriber creates a subscriber applying deltas to the given mirror.
func NewSubscriber(client *redis.Client, mirror *Mirror, load LoadFunc) *Subscriber {
	return &Subscriber{
		client: client,
		mirror: mirror,
		load:   load,
		done:   make(chan struct{}),
	}
}

// Start seeds the mirror and launches the subscription loop. The pub/sub
// subscription is established before the seed so a delta published during the
// seed is not lost.
func (s *Subscriber) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	pubsub := s.client.Subscribe(ctx, storage.ChannelBlacklistAdd, storage.ChannelBlacklistRemove)

	go func() {
		defer close(s.done)
		defer pubsub.Close()

		s.resync(ctx)

		log.Printf("[BlacklistSubscriber] Started")
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.apply(msg.Channel, msg.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Subscriber) apply(channel, item string) {
	switch channel {
	case storage.ChannelBlacklistAdd:
		s.mirror.Add(item)
		log.Printf("[BlacklistSubscriber] Applied add: %s", item)
	case storage.ChannelBlacklistRemove:
		s.mirror.Remove(item)
		log.Printf("[BlacklistSubscriber] Applied remove: %s", item)
	}
}

// resync replaces the mirror with the authoritative snapshot, retrying with
// exponential backoff until it succeeds or the subscriber is stopped.
func (s *Subscriber) resync(ctx context.Context) {
	operation := func() error {
		items, err := s.load(ctx)
		if err != nil {
			return err
		}
		s.mirror.Replace(items)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0 // keep retrying until stopped

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		log.Printf("[BlacklistSubscriber] Mirror resync failed, retrying in %v: %v", next, err)
	}); err != nil {
		log.Printf("[BlacklistSubscriber] Mirror resync abandoned: %v", err)
	}
}

// Stop closes the subscription and waits for the loop to drain.
func (s *Subscriber) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
		log.Printf("[BlacklistSubscriber] Stopped")
	})
}
