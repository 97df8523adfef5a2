package guildlog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/model"
	"github.com/soratane/guildcore/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func TestNewWriter_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop())
	require.NotNil(t, w)
	w.Stop(context.Background())
}

func TestRecord_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop())

	actor := uuid.New()
	w.Record(Entry{
		GuildID:     1,
		GuildName:   "Alpha",
		PlayerUUID:  actor,
		PlayerName:  "Alice",
		Type:        model.LogGuildCreated,
		Description: "guild Alpha created",
		Details:     map[string]string{"tag": "A"},
	})

	// Stop flushes remaining entries
	w.Stop(context.Background())

	var logs []model.GuildLog
	db.Find(&logs)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(1), logs[0].GuildID)
	assert.Equal(t, "Alpha", logs[0].GuildName)
	assert.Equal(t, actor, logs[0].PlayerUUID)
	assert.Equal(t, model.LogGuildCreated, logs[0].LogType)
	assert.JSONEq(t, `{"tag":"A"}`, string(logs[0].Details))
}

func TestFlush_CommitsQueuedEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop())
	defer w.Stop(context.Background())

	for i := 0; i < 10; i++ {
		w.Record(Entry{GuildID: 1, Type: model.LogMemberJoined})
	}
	w.Flush()

	var count int64
	db.Model(&model.GuildLog{}).Count(&count)
	assert.Equal(t, int64(10), count)
}

func TestRecord_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop(), WithBatchSize(20))

	for i := 0; i < 100; i++ {
		w.Record(Entry{GuildID: 1, Type: model.LogFundDeposited})
	}

	// Stop waits (via WaitGroup) until the worker has finished flushing.
	w.Stop(context.Background())

	var count int64
	db.Model(&model.GuildLog{}).Count(&count)
	assert.Equal(t, int64(100), count)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop())
	w.Stop(context.Background())
	w.Stop(context.Background()) // must not panic
}

func TestLogs_LimitOffset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop())
	defer w.Stop(context.Background())

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&model.GuildLog{
			GuildID:     7,
			GuildName:   "Alpha",
			LogType:     model.LogMemberJoined,
			Description: "join",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	// Another guild's entry must not leak in.
	require.NoError(t, db.Create(&model.GuildLog{GuildID: 8, LogType: model.LogGuildCreated}).Error)

	logs := w.Logs(context.Background(), 7, 2, 0)
	require.Len(t, logs, 2)
	// Newest first.
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	rest := w.Logs(context.Background(), 7, 10, 2)
	assert.Len(t, rest, 3)
}

func TestCleanOldLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop())
	defer w.Stop(context.Background())

	old := time.Now().AddDate(0, 0, -120)
	require.NoError(t, db.Create(&model.GuildLog{GuildID: 1, LogType: model.LogGuildCreated, CreatedAt: old}).Error)
	require.NoError(t, db.Create(&model.GuildLog{GuildID: 1, LogType: model.LogMemberJoined, CreatedAt: time.Now()}).Error)

	removed := w.CleanOldLogs(context.Background(), 90)
	assert.Equal(t, int64(1), removed)

	var count int64
	db.Model(&model.GuildLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCleanOldLogs_ZeroDays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewWriter(db, nop())
	defer w.Stop(context.Background())

	assert.Equal(t, int64(0), w.CleanOldLogs(context.Background(), 0))
}
