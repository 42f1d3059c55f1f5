package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/buffer"
	"github.com/fastygo/tasktracker/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention bounds how long buried entries are kept for inspection.
	Retention time.Duration
}

// ReplayReport summarizes one Drain call.
type ReplayReport struct {
	Replayed int
	Failed   int
	Buried   int
}

// BufferProcessor replays buffered task writes against the primary store.
type BufferProcessor struct {
	store    *buffer.Store
	monitor  ConnectionHealth
	taskRepo repository.TaskRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	taskRepo repository.TaskRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:    store,
		monitor:  monitor,
		taskRepo: taskRepo,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	if _, err := bp.cron.AddFunc("@every "+cfg.Interval.String(), bp.scheduledDrain); err != nil {
		bp.logger.Error("failed to schedule buffer drain", zap.Error(err))
	}
	if _, err := bp.cron.AddFunc("@hourly", bp.scheduledCleanup); err != nil {
		bp.logger.Error("failed to schedule buffer cleanup", zap.Error(err))
	}

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Enqueue persists an entry for later replay.
func (bp *BufferProcessor) Enqueue(_ context.Context, entry buffer.Entry) error {
	if bp == nil || bp.store == nil {
		return errors.New("buffer processor not configured")
	}
	if err := bp.store.Enqueue(entry); err != nil {
		return fmt.Errorf("enqueue %s of task %s: %w", entry.Operation, entry.TaskID, err)
	}
	return nil
}

// Drain replays pending entries in the order they were accepted. A transient
// failure stops the pass so later writes to the same task never overtake it.
func (bp *BufferProcessor) Drain(ctx context.Context) (ReplayReport, error) {
	var report ReplayReport
	if bp == nil || bp.store == nil {
		return report, nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return report, nil
	}

	entries, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return report, err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		err := bp.replay(ctx, entry)
		if err == nil {
			if err := bp.store.Remove(entry); err != nil {
				return report, fmt.Errorf("remove replayed entry: %w", err)
			}
			report.Replayed++
			continue
		}

		log := bp.logger.With(
			zap.String("entry_id", entry.ID),
			zap.String("task_id", entry.TaskID),
			zap.String("operation", entry.Operation),
			zap.Error(err))

		if permanent(err) {
			log.Warn("burying buffered write that can never apply")
			if err := bp.store.Bury(entry); err != nil {
				return report, err
			}
			report.Buried++
			continue
		}

		updated, recErr := bp.store.RecordFailure(entry, err)
		if recErr != nil {
			return report, recErr
		}
		if updated.Attempts >= bp.cfg.MaxRetries {
			log.Warn("burying buffered write (max retries reached)", zap.Int("attempts", updated.Attempts))
			if err := bp.store.Bury(updated); err != nil {
				return report, err
			}
			report.Buried++
			continue
		}
		log.Error("buffered write replay failed", zap.Int("attempts", updated.Attempts))
		report.Failed++
		break
	}
	return report, nil
}

// Size returns the number of pending entries.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) scheduledDrain() {
	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.Interval)
	defer cancel()
	report, err := bp.Drain(ctx)
	if err != nil {
		bp.logger.Error("buffer drain failed", zap.Error(err))
		return
	}
	if report.Replayed+report.Failed+report.Buried > 0 {
		bp.logger.Info("buffer drained",
			zap.Int("replayed", report.Replayed),
			zap.Int("failed", report.Failed),
			zap.Int("buried", report.Buried))
	}
}

func (bp *BufferProcessor) scheduledCleanup() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Info("expired buried buffer entries", zap.Int("removed", removed))
	}
}

func (bp *BufferProcessor) replay(ctx context.Context, entry buffer.Entry) error {
	var task domain.Task
	if err := json.Unmarshal(entry.Task, &task); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "undecodable buffered task", err)
	}
	if task.ID == "" {
		task.ID = entry.TaskID
	}

	switch entry.Operation {
	case buffer.OperationCreate:
		_, err := bp.taskRepo.Create(ctx, &task)
		return err
	case buffer.OperationUpdate:
		return bp.taskRepo.Update(ctx, &task)
	case buffer.OperationDelete:
		err := bp.taskRepo.Delete(ctx, task.ID)
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil
		}
		return err
	default:
		return domain.Invalidf("unsupported buffered operation %q", entry.Operation)
	}
}

// permanent reports errors that retrying cannot fix.
func permanent(err error) bool {
	return domain.IsClassified(err)
}
