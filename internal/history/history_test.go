package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLedger(t)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Record(Event{AppID: "nanika", Action: "create", Resource: "load_balancer", Detail: "hako-nanika", At: at}))
	require.NoError(t, l.Record(Event{AppID: "nanika", Action: "create", Resource: "target_group", Detail: "hako-nanika", At: at.Add(time.Second)}))
	require.NoError(t, l.Record(Event{AppID: "other", Action: "delete", Resource: "listener", At: at}))

	events, err := l.Recent("nanika", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// newest first
	assert.Equal(t, "target_group", events[0].Resource)
	assert.Equal(t, "load_balancer", events[1].Resource)
	assert.Equal(t, "hako-nanika", events[1].Detail)
	assert.False(t, events[0].DryRun)
	assert.Equal(t, at, events[1].At)
}

func TestRecord_DryRunFlag(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.Record(Event{AppID: "nanika", Action: "delete", Resource: "target_group", DryRun: true}))

	events, err := l.Recent("nanika", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].DryRun)
	assert.False(t, events[0].At.IsZero())
}

func TestRecent_Limit(t *testing.T) {
	l := openTestLedger(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Record(Event{AppID: "nanika", Action: "create", Resource: "listener"}))
	}

	events, err := l.Recent("nanika", 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
