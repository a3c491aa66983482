package services

import (
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/tg-relay-bot/internal/domain/events"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"sync"
	"time"
)

const ledgerDataID = "metrics_ledger"

type dataRepository interface {
	Save(ctx context.Context, id string, data []byte) error
	LoadAndRemove(ctx context.Context, id string) ([]byte, error)
}

// Ledger counts inbound activity for the admin. It only ever adds.
type Ledger struct {
	mu            sync.RWMutex
	totalUpdates  int64
	totalMessages int64
	lastSeen      map[int64]time.Time
	commands      map[string]int64
}

func NewLedger(bus EventBus.Bus) (*Ledger, error) {
	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	l := newEmptyLedger()
	if err := bus.Subscribe(events.UpdateReceivedTopic, l.onUpdateReceived); err != nil {
		return nil, err
	}
	return l, nil
}

func newEmptyLedger() *Ledger {
	return &Ledger{lastSeen: make(map[int64]time.Time), commands: make(map[string]int64)}
}

func (l *Ledger) onUpdateReceived(event events.UpdateReceived) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalUpdates++
	if event.Kind == models.InboundText && event.HasText {
		l.totalMessages++
	}
	if event.Kind == models.InboundCommand && event.Command != "" {
		l.commands[event.Command]++
	}
	if seen, ok := l.lastSeen[event.UserID]; !ok || event.At.After(seen) {
		l.lastSeen[event.UserID] = event.At
	}
}

func (l *Ledger) Snapshot(now time.Time) models.LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := lo.Values(l.lastSeen)
	activeSince := func(window time.Duration) int {
		return lo.CountBy(seen, func(at time.Time) bool { return now.Sub(at) <= window })
	}

	return models.LedgerSnapshot{
		TotalUpdates:  l.totalUpdates,
		TotalMessages: l.totalMessages,
		DistinctUsers: len(l.lastSeen),
		Active24h:     activeSince(24 * time.Hour),
		Active7d:      activeSince(7 * 24 * time.Hour),
		Commands:      lo.Assign(l.commands),
		TakenAt:       now,
	}
}

func (l *Ledger) LastSeen(userID int64) (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	at, ok := l.lastSeen[userID]
	return at, ok
}

type ledgerState struct {
	TotalUpdates  int64               `json:"totalUpdates"`
	TotalMessages int64               `json:"totalMessages"`
	LastSeen      map[int64]time.Time `json:"lastSeen"`
	Commands      map[string]int64    `json:"commands"`
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return json.Marshal(ledgerState{
		TotalUpdates:  l.totalUpdates,
		TotalMessages: l.totalMessages,
		LastSeen:      l.lastSeen,
		Commands:      l.commands,
	})
}

// UnmarshalJSON adds the stored counts to the current ones.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var state ledgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastSeen == nil {
		l.lastSeen = make(map[int64]time.Time)
	}
	if l.commands == nil {
		l.commands = make(map[string]int64)
	}

	l.totalUpdates += state.TotalUpdates
	l.totalMessages += state.TotalMessages
	for userID, at := range state.LastSeen {
		if seen, ok := l.lastSeen[userID]; !ok || at.After(seen) {
			l.lastSeen[userID] = at
		}
	}
	for command, count := range state.Commands {
		l.commands[command] += count
	}
	return nil
}

func (l *Ledger) Persist(ctx context.Context, repo dataRepository) error {
	data, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return repo.Save(ctx, ledgerDataID, data)
}

func (l *Ledger) Restore(ctx context.Context, repo dataRepository) error {
	data, err := repo.LoadAndRemove(ctx, ledgerDataID)
	if err != nil || data == nil {
		return err
	}
	return json.Unmarshal(data, l)
}
