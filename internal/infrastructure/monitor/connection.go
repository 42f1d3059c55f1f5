// Package monitor periodically probes the storage dependencies the service was
// started with and exposes an online/offline verdict for the write buffer.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/internal/infrastructure/buffer"
)

// Probe checks one dependency. Check must honour ctx.
type Probe struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

func PostgresProbe(pool *pgxpool.Pool) Probe {
	return Probe{Name: "postgres", Timeout: 3 * time.Second, Check: pool.Ping}
}

func RedisProbe(client *redislib.Client) Probe {
	return Probe{
		Name:    "redis",
		Timeout: 2 * time.Second,
		Check:   func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}

func BufferProbe(store *buffer.Store) Probe {
	return Probe{
		Name:  "buffer",
		Check: func(context.Context) error { return store.Ping() },
	}
}

type Monitor struct {
	probes []Probe
	buffer *buffer.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a monitor over the given probes. buf may be nil; when set its
// queue depth is reported in Status.
func New(interval time.Duration, buf *buffer.Store, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
		status:   Status{Online: true, Checks: map[string]bool{}},
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline is true when every probe passed on the last check. A monitor with
// no probes is always online.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and publishes the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Online:    true,
		Checks:    make(map[string]bool, len(m.probes)),
		LastCheck: time.Now(),
	}
	for _, p := range m.probes {
		ok := m.run(ctx, p)
		status.Checks[p.Name] = ok
		status.Online = status.Online && ok
	}
	if m.buffer != nil {
		if size, err := m.buffer.Size(); err == nil {
			status.BufferSize = size
		}
		if dead, err := m.buffer.DeadCount(); err == nil {
			status.DeadEntries = dead
		}
	}

	m.mu.Lock()
	previous := m.status.Online
	m.status = status
	m.mu.Unlock()

	if previous != status.Online {
		m.logger.Warn("storage connectivity changed",
			zap.Bool("online", status.Online),
			zap.Any("checks", status.Checks))
	}
	return status.clone()
}

func (m *Monitor) run(ctx context.Context, p Probe) bool {
	if p.Check == nil {
		return false
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Check(ctx); err != nil {
		m.logger.Debug("probe failed", zap.String("probe", p.Name), zap.Error(err))
		return false
	}
	return true
}
