package blacklist

import (
	"context"
	"log"
	"sync"
	"time"

	"playermarket-api/internal/model"
)

// EventSource is the slice of the relational store the poller needs.
type EventSource interface {
	PollEvents(ctx context.Context) ([]model.MarketEvent, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// DefaultPollInterval is how often the poller checks for unprocessed events.
const DefaultPollInterval = 1 * time.Second

// Poller is the pull propagation consumer for the relational backend: a
// fixed-interval loop that replays unprocessed market_events rows into the
// local mirror in creation order, then marks them processed. Eventual ordered
// delivery, tolerant of the process being offline, at the cost of
// poll-interval latency.
type Poller struct {
	source   EventSource
	mirror   *Mirror
	interval time.Duration

	ticker   *time.Ticker
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller. A zero interval uses DefaultPollInterval.
func NewPoller(source EventSource, mirror *Mirror, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		source:   source,
		mirror:   mirror,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop.
func (p *Poller) Start() {
	p.ticker = time.NewTicker(p.interval)
	go p.run()
	log.Printf("[BlacklistPoller] Started - interval: %v", p.interval)
}

func (p *Poller) run() {
	defer close(p.done)
	for {
		select {
		case <-p.ticker.C:
			p.poll()
		case <-p.stopCh:
			log.Printf("[BlacklistPoller] Stopped")
			return
		}
	}
}

// poll replays one batch of unprocessed events.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval*5)
	defer cancel()

	events, err := p.source.PollEvents(ctx)
	if err != nil {
		log.Printf("[BlacklistPoller] Failed to poll events: %v", err)
		return
	}

	for _, event := range events {
		switch event.Type {
		case model.EventBlacklistAdd:
			p.mirror.Add(event.Item)
		case model.EventBlacklistRemove:
			p.mirror.Remove(event.Item)
		default:
			log.Printf("[BlacklistPoller] Skipping unknown event type %q (id=%d)", event.Type, event.ID)
		}
		if err := p.source.MarkProcessed(ctx, event.ID); err != nil {
			log.Printf("[BlacklistPoller] Failed to mark event %d processed: %v", event.ID, err)
			// Leave it unprocessed; applying a blacklist delta twice is harmless.
		}
	}
}

// Stop halts the loop after the in-flight iteration drains.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.ticker == nil {
			return
		}
		p.ticker.Stop()
		close(p.stopCh)
		<-p.done
	})
}
