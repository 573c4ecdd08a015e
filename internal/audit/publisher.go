package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit stamps identity and time onto the event and appends it. The error is
// returned to the caller: commands treat audit failure as command failure.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if client := DescribeUserAgent(event.UserAgent); client != "" {
		if event.Details == nil {
			event.Details = make(map[string]string)
		}
		if _, ok := event.Details["client"]; !ok {
			event.Details["client"] = client
		}
	}
	return p.store.Append(ctx, event)
}

// DescribeUserAgent renders a raw User-Agent string as "browser/version (os)"
// for audit details. Returns the raw string when parsing yields nothing.
func DescribeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	desc := name
	if version != "" {
		desc += "/" + version
	}
	if os := ua.OS(); os != "" {
		desc += " (" + os + ")"
	}
	return desc
}

// List returns the most recent entries, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}
