package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"tubedeck/internal/domain"
)

// DefaultSweepInterval is how often expired cache entries are cleaned up.
const DefaultSweepInterval = 24 * time.Hour

// Sweeper periodically removes expired entries from every known namespace.
// It never blocks foreground operations and every failure is logged and
// otherwise ignored.
type Sweeper struct {
	kv         domain.KV
	namespaces []Namespace
	interval   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewSweeper(kv domain.KV, namespaces []Namespace, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		kv:         kv,
		namespaces: namespaces,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep scans each namespace once and deletes entries past their TTL.
func (s *Sweeper) Sweep() {
	for _, ns := range s.namespaces {
		removed, err := s.sweepNamespace(ns)
		if err != nil {
			s.logger.Warn("cache sweep failed", "prefix", ns.Prefix, "error", err)
			continue
		}
		if removed > 0 {
			s.logger.Debug("cache sweep", "prefix", ns.Prefix, "removed", removed)
		}
	}
}

func (s *Sweeper) sweepNamespace(ns Namespace) (int, error) {
	keys, err := s.kv.Keys(ns.Prefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		data, ok, err := s.kv.Get(key)
		if err != nil || !ok {
			continue
		}

		var rec record
		expired := true
		if err := json.Unmarshal(data, &rec); err == nil {
			age := s.now().UnixMilli() - rec.Timestamp
			expired = time.Duration(age)*time.Millisecond > ns.Duration
		}
		if !expired {
			continue
		}

		if err := s.kv.Delete(key); err != nil {
			s.logger.Warn("cache sweep delete failed", "key", key, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
