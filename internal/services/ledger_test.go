package services

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/tg-relay-bot/internal/domain/events"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryData struct {
	values map[string][]byte
}

func (m *memoryData) Save(_ context.Context, id string, data []byte) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[id] = data
	return nil
}

func (m *memoryData) LoadAndRemove(_ context.Context, id string) ([]byte, error) {
	data := m.values[id]
	delete(m.values, id)
	return data, nil
}

func Test_Ledger_CountsFromEvents(t *testing.T) {
	bus := EventBus.New()
	ledger, err := NewLedger(bus)
	require.NoError(t, err)

	now := time.Now()
	publish := func(event events.UpdateReceived) { bus.Publish(events.UpdateReceivedTopic, event) }

	publish(events.UpdateReceived{UserID: 1, Kind: models.InboundText, HasText: true, At: now})
	publish(events.UpdateReceived{UserID: 1, Kind: models.InboundText, HasText: false, At: now})
	publish(events.UpdateReceived{UserID: 2, Kind: models.InboundCommand, Command: "start", At: now.Add(-48 * time.Hour)})
	publish(events.UpdateReceived{UserID: 3, Kind: models.InboundCallback, At: now.Add(-10 * 24 * time.Hour)})

	snapshot := ledger.Snapshot(now)

	assert.Equal(t, int64(4), snapshot.TotalUpdates)
	assert.Equal(t, int64(1), snapshot.TotalMessages)
	assert.Equal(t, 3, snapshot.DistinctUsers)
	assert.Equal(t, 1, snapshot.Active24h)
	assert.Equal(t, 2, snapshot.Active7d)
	assert.Equal(t, map[string]int64{"start": 1}, snapshot.Commands)
}

func Test_Ledger_SnapshotIsACopy(t *testing.T) {
	ledger := newEmptyLedger()
	ledger.onUpdateReceived(events.UpdateReceived{UserID: 1, Kind: models.InboundCommand, Command: "help", At: time.Now()})

	snapshot := ledger.Snapshot(time.Now())
	snapshot.Commands["help"] = 100

	assert.Equal(t, int64(1), ledger.Snapshot(time.Now()).Commands["help"])
}

func Test_Ledger_PersistAndRestoreAddsUp(t *testing.T) {
	ctx := context.Background()
	repo := &memoryData{}
	now := time.Now().UTC().Truncate(time.Second)

	first := newEmptyLedger()
	first.onUpdateReceived(events.UpdateReceived{UserID: 1, Kind: models.InboundText, HasText: true, At: now})
	first.onUpdateReceived(events.UpdateReceived{UserID: 1, Kind: models.InboundCommand, Command: "start", At: now})
	require.NoError(t, first.Persist(ctx, repo))

	second := newEmptyLedger()
	second.onUpdateReceived(events.UpdateReceived{UserID: 2, Kind: models.InboundText, HasText: true, At: now})
	require.NoError(t, second.Restore(ctx, repo))

	snapshot := second.Snapshot(now)
	assert.Equal(t, int64(3), snapshot.TotalUpdates)
	assert.Equal(t, int64(2), snapshot.TotalMessages)
	assert.Equal(t, 2, snapshot.DistinctUsers)
	assert.Equal(t, int64(1), snapshot.Commands["start"])

	lastSeen, ok := second.LastSeen(1)
	assert.True(t, ok)
	assert.True(t, now.Equal(lastSeen))

	assert.Empty(t, repo.values, "restored snapshot must be removed")
	assert.NoError(t, newEmptyLedger().Restore(ctx, repo))
}

func Test_NewLedger_NilBus(t *testing.T) {
	_, err := NewLedger(nil)
	assert.Error(t, err)
}
