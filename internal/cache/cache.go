package cache

import (
	"encoding/json"
	"log/slog"
	"time"

	"tubedeck/internal/domain"
)

// Namespace declares one cached data family: a key prefix and how long its
// entries stay fresh.
type Namespace struct {
	Prefix   string
	Duration time.Duration
}

// Cache namespaces. Feed results turn over quickly; channel metadata is
// close to static.
var (
	NamespaceFeed        = Namespace{Prefix: "feed:", Duration: 2 * time.Hour}
	NamespaceChannelMeta = Namespace{Prefix: "channel-meta:", Duration: 24 * time.Hour}
)

// Namespaces returns every namespace the sweeper should cover.
func Namespaces() []Namespace {
	return []Namespace{NamespaceFeed, NamespaceChannelMeta}
}

type record struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

// Cache is a namespaced TTL cache over the key-value adapter. It is purely
// advisory: persistence errors are logged and reported as misses (Get) or
// ignored (Set), never propagated to the caller.
type Cache struct {
	kv     domain.KV
	logger *slog.Logger
	now    func() time.Time
}

func New(kv domain.KV, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{kv: kv, logger: logger, now: time.Now}
}

// SetClock overrides the time source. Tests use this to probe freshness
// boundaries.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Get unmarshals the cached value into dest and reports whether a fresh
// entry was found. Missing, malformed, stale, and unreadable entries are
// all misses.
func (c *Cache) Get(ns Namespace, key string, dest interface{}) bool {
	data, ok, err := c.kv.Get(ns.Prefix + key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", ns.Prefix+key, "error", err)
		return false
	}
	if !ok {
		return false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return false
	}

	age := c.now().UnixMilli() - rec.Timestamp
	if age < 0 || time.Duration(age)*time.Millisecond >= ns.Duration {
		return false
	}

	return json.Unmarshal(rec.Data, dest) == nil
}

// Set stores the value with the current timestamp. Failures are logged and
// swallowed; the caller proceeds as if the write succeeded.
func (c *Cache) Set(ns Namespace, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", ns.Prefix+key, "error", err)
		return
	}

	rec, err := json.Marshal(record{Data: data, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return
	}

	if err := c.kv.Put(ns.Prefix+key, rec); err != nil {
		c.logger.Warn("cache write failed", "key", ns.Prefix+key, "error", err)
	}
}
