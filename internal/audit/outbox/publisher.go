// Package outbox ships audit events from the transactional outbox table to
// Kafka. Audit appends stay durable in Postgres even when brokers are down;
// this publisher drains the backlog once they return.
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const batchSize = 100

// Publisher polls the outbox table and produces pending rows to Kafka.
type Publisher struct {
	db       *sql.DB
	client   *kgo.Client
	topic    string
	interval time.Duration
	logger   *slog.Logger
}

// New connects to the brokers and ensures the audit topic exists.
func New(db *sql.DB, brokers []string, topic string, interval time.Duration, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Publisher{
		db:       db,
		client:   client,
		topic:    topic,
		interval: interval,
		logger:   logger,
	}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %q: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Run drains the outbox on an interval until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.client.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.drain(ctx); err != nil {
				// Stay alive: rows remain in the outbox and the next tick retries.
				p.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Payload     []byte
}

func (p *Publisher) drain(ctx context.Context) error {
	for {
		rows, err := p.pending(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			record := &kgo.Record{
				Topic: p.topic,
				Key:   []byte(row.AggregateID.String()),
				Value: row.Payload,
			}
			if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
				return fmt.Errorf("produce outbox row %s: %w", row.ID, err)
			}
			if err := p.markPublished(ctx, row.ID); err != nil {
				return err
			}
		}

		if len(rows) < batchSize {
			return nil
		}
	}
}

func (p *Publisher) pending(ctx context.Context) ([]outboxRow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []outboxRow
	for rows.Next() {
		var r outboxRow
		if err := rows.Scan(&r.ID, &r.AggregateID, &r.EventType, &r.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Publisher) markPublished(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `UPDATE outbox SET published_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox row published: %w", err)
	}
	return nil
}
