package guildlog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soratane/guildcore/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultChannelBuf = 1024
	defaultBatchSize  = 100
	flushInterval     = 2 * time.Second
)

// Entry holds one guild domain event to be recorded.
type Entry struct {
	GuildID     int64
	GuildName   string
	PlayerUUID  uuid.UUID
	PlayerName  string
	Type        model.GuildLogType
	Description string
	Details     interface{}
}

// Writer appends guild log entries asynchronously in batches. Recording
// never blocks and never fails the caller: when the queue is full the entry
// is dropped and a warning logged.
type Writer struct {
	db        *gorm.DB
	ch        chan *model.GuildLog
	flushCh   chan chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
	batchSize int
	logger    *zap.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithChannelBuf sets the queue capacity.
func WithChannelBuf(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.ch = make(chan *model.GuildLog, n)
		}
	}
}

// WithBatchSize sets the batch size that triggers an immediate flush.
func WithBatchSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// NewWriter creates a Writer and starts its background worker.
func NewWriter(db *gorm.DB, logger *zap.Logger, opts ...Option) *Writer {
	w := &Writer{
		db:        db,
		ch:        make(chan *model.GuildLog, defaultChannelBuf),
		flushCh:   make(chan chan struct{}),
		stopCh:    make(chan struct{}),
		batchSize: defaultBatchSize,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

// Record enqueues a log entry for async DB write.
func (w *Writer) Record(entry Entry) {
	var details datatypes.JSON
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			w.logger.Warn("guild log details not serializable",
				zap.String("log_type", string(entry.Type)),
				zap.Error(err))
		} else {
			details = datatypes.JSON(raw)
		}
	}
	record := &model.GuildLog{
		GuildID:     entry.GuildID,
		GuildName:   entry.GuildName,
		PlayerUUID:  entry.PlayerUUID,
		PlayerName:  entry.PlayerName,
		LogType:     entry.Type,
		Description: entry.Description,
		Details:     details,
	}
	select {
	case w.ch <- record:
	default:
		w.logger.Warn("guild log queue full, dropping entry",
			zap.String("log_type", string(entry.Type)),
			zap.Int64("guild_id", entry.GuildID))
	}
}

// Flush blocks until every entry recorded before the call is committed.
func (w *Writer) Flush() {
	done := make(chan struct{})
	select {
	case w.flushCh <- done:
		<-done
	case <-w.stopCh:
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (w *Writer) Stop(_ context.Context) {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	w.wg.Wait()
}

// Logs returns up to limit entries for a guild, newest first, skipping
// offset rows. Store failures yield an empty slice.
func (w *Writer) Logs(ctx context.Context, guildID int64, limit, offset int) []model.GuildLog {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.GuildLog
	err := w.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	if err != nil {
		w.logger.Error("guild log query failed",
			zap.Int64("guild_id", guildID), zap.Error(err))
		return nil
	}
	return logs
}

// CleanOldLogs deletes entries older than daysToKeep days and returns the
// number of rows removed.
func (w *Writer) CleanOldLogs(ctx context.Context, daysToKeep int) int64 {
	if daysToKeep <= 0 {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -daysToKeep)
	res := w.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.GuildLog{})
	if res.Error != nil {
		w.logger.Error("guild log retention sweep failed", zap.Error(res.Error))
		return 0
	}
	if res.RowsAffected > 0 {
		w.logger.Info("guild log retention sweep",
			zap.Int64("removed", res.RowsAffected),
			zap.Int("days_kept", daysToKeep))
	}
	return res.RowsAffected
}

func (w *Writer) worker() {
	defer w.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.GuildLog, 0, w.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.db.Create(&batch).Error; err != nil {
			w.logger.Error("guild log batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	drain := func() {
		for {
			select {
			case entry := <-w.ch:
				batch = append(batch, entry)
				if len(batch) >= w.batchSize {
					flush()
				}
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case entry := <-w.ch:
			batch = append(batch, entry)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case done := <-w.flushCh:
			drain()
			close(done)
		case <-w.stopCh:
			drain()
			return
		}
	}
}
