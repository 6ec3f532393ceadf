package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sacco-ledger-service/internal/domain"
)

// Event types emitted on the ledger events topic
const (
	EventEntryPosted = "ledger.entry.posted"
	EventEntryVoided = "ledger.entry.voided"
)

// LedgerEvent is the wire payload for downstream consumers (notifications,
// reporting, member portals). Amounts are decimal strings.
type LedgerEvent struct {
	EventType       string    `json:"event_type"`
	EntryID         int64     `json:"entry_id"`
	Reference       string    `json:"reference"`
	Category        string    `json:"category"`
	DebitAccountID  int64     `json:"debit_account_id"`
	CreditAccountID int64     `json:"credit_account_id"`
	Amount          string    `json:"amount"`
	Date            time.Time `json:"date"`
	VoidReason      string    `json:"void_reason,omitempty"`
	VoidActor       string    `json:"void_actor,omitempty"`
	ReversalEntryID int64     `json:"reversal_entry_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventPublisher is what the usecases see. Publishing is best effort: a
// broker outage must never fail a committed posting.
type EventPublisher interface {
	EntryPosted(ctx context.Context, entry *domain.JournalEntry)
	EntryVoided(ctx context.Context, record *domain.VoidRecord, reversal *domain.JournalEntry)
}

// LedgerEventPublisher writes ledger events to Kafka
type LedgerEventPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewLedgerEventPublisher(brokers []string, topic string, logger *zap.Logger) *LedgerEventPublisher {
	return &LedgerEventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			MaxAttempts:  3,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *LedgerEventPublisher) Close() error {
	return p.writer.Close()
}

func (p *LedgerEventPublisher) publish(ctx context.Context, event *LedgerEvent) {
	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal ledger event",
			zap.String("event_type", event.EventType), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.EntryID)),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish ledger event",
			zap.String("event_type", event.EventType),
			zap.Int64("entry_id", event.EntryID),
			zap.Error(err))
		return
	}

	p.logger.Debug("published ledger event",
		zap.String("event_type", event.EventType),
		zap.Int64("entry_id", event.EntryID),
		zap.String("reference", event.Reference))
}

// EntryPosted announces a committed journal entry
func (p *LedgerEventPublisher) EntryPosted(ctx context.Context, entry *domain.JournalEntry) {
	p.publish(ctx, &LedgerEvent{
		EventType:       EventEntryPosted,
		EntryID:         entry.ID,
		Reference:       entry.Reference,
		Category:        entry.Category,
		DebitAccountID:  entry.DebitAccountID,
		CreditAccountID: entry.CreditAccountID,
		Amount:          entry.Amount().String(),
		Date:            entry.Date,
	})
}

// EntryVoided announces a void together with its compensating entry
func (p *LedgerEventPublisher) EntryVoided(ctx context.Context, record *domain.VoidRecord, reversal *domain.JournalEntry) {
	p.publish(ctx, &LedgerEvent{
		EventType:       EventEntryVoided,
		EntryID:         record.JournalEntryID,
		Reference:       reversal.Reference,
		Category:        reversal.Category,
		DebitAccountID:  reversal.DebitAccountID,
		CreditAccountID: reversal.CreditAccountID,
		Amount:          reversal.Amount().String(),
		Date:            reversal.Date,
		VoidReason:      record.Reason,
		VoidActor:       record.Actor,
		ReversalEntryID: record.ReversalEntryID,
	})
}

// NoopPublisher drops events. Used in tests and the in-memory dev mode.
type NoopPublisher struct{}

func (NoopPublisher) EntryPosted(context.Context, *domain.JournalEntry)                     {}
func (NoopPublisher) EntryVoided(context.Context, *domain.VoidRecord, *domain.JournalEntry) {}
