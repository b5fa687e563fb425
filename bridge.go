package main

import (
	"context"
	"log"
)

// Bridge is the single logical stream between ingestion and the overlay.
// Events are handled strictly in arrival order: event N+1 is not routed
// until event N's whole animation (celebration included) has settled. The
// send into the event channel blocks when the stream is busy, which is the
// backpressure that guarantees no event is ever reordered or dropped here.
type Bridge struct {
	cfg      *Config
	router   *Router
	ticker   *Ticker
	channels []Channel
	events   chan Event
}

func NewBridge(cfg *Config, router *Router, ticker *Ticker, channels []Channel) *Bridge {
	return &Bridge{
		cfg:      cfg,
		router:   router,
		ticker:   ticker,
		channels: channels,
		events:   make(chan Event, 100),
	}
}

// OnEvent queues one event for the stream. Blocks when the buffer is full
// so a long celebration stalls ingestion instead of losing events.
func (b *Bridge) OnEvent(event Event) {
	b.events <- event
}

// Run drains the event stream until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.events:
			b.handle(ctx, event)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, event Event) {
	if b.cfg.Logging.AllEvents {
		log.Printf("event: %s - %s", event.Type, event.Text)
		if b.cfg.Logging.EventData {
			log.Printf("event fields: %v", event.Fields)
		}
	}

	b.router.Route(event)

	if b.ticker != nil && b.cfg.tickerEventAllowed(event.Type) {
		b.ticker.Play(ctx, event)
	}

	for _, ch := range b.channels {
		if err := ch.Send(ctx, event); err != nil {
			log.Printf("send to %s: %v", ch.Name(), err)
		}
	}
}
