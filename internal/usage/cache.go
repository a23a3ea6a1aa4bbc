package usage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"usage-map/internal/logger"
	"usage-map/internal/metrics"
)

const (
	DefaultTTL = time.Hour
	DefaultKey = "usage:records:v1"
)

// Fetcher：记录来源（通常为 store.Store）
type Fetcher interface {
	FetchUsageRecords(ctx context.Context) ([]UsageRecord, error)
}

// CacheOptions：记录缓存参数；KV 为空时仅使用进程内缓存
type CacheOptions struct {
	TTL    time.Duration
	KV     KVStore
	Key    string
	Now    func() time.Time
	Logger *slog.Logger
}

// RecordCache：最近一次记录查询结果的显式缓存对象（值 + 取回时间 + TTL）
// 背景：看板每次渲染都需要全量记录，TTL 内复用同一结果以免重复查库；多副本部署时可经 Redis 共享快照
// 约束：刷新由 refreshMu 串行化，并发过期时只查询一次；刷新进行中若已有旧值则直接返回旧值
// 返回的切片在多个调用方之间共享，调用方不得修改
type RecordCache struct {
	src Fetcher
	ttl time.Duration
	kv  KVStore
	key string
	now func() time.Time
	log *slog.Logger

	mu        sync.RWMutex
	records   []UsageRecord
	fetchedAt time.Time
	loaded    bool

	refreshMu sync.Mutex
}

type snapshot struct {
	FetchedAt time.Time     `json:"fetched_at"`
	Records   []UsageRecord `json:"records"`
}

func NewRecordCache(src Fetcher, opts CacheOptions) *RecordCache {
	c := &RecordCache{src: src, ttl: opts.TTL, kv: opts.KV, key: opts.Key, now: opts.Now, log: opts.Logger}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.key == "" {
		c.key = DefaultKey
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = logger.L()
	}
	return c
}

// TTL：缓存有效期
func (c *RecordCache) TTL() time.Duration { return c.ttl }

// FetchedAt：当前缓存值的取回时间；尚未加载时为零值
func (c *RecordCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

func (c *RecordCache) fresh() ([]UsageRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.loaded && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.records, true
	}
	return nil, false
}

// Get：TTL 内返回缓存值，过期或未加载时刷新
func (c *RecordCache) Get(ctx context.Context) ([]UsageRecord, error) {
	if recs, ok := c.fresh(); ok {
		metrics.RecordCacheHitsTotal.Inc()
		return recs, nil
	}
	if !c.refreshMu.TryLock() {
		c.mu.RLock()
		recs, loaded := c.records, c.loaded
		c.mu.RUnlock()
		if loaded {
			metrics.RecordCacheStaleTotal.Inc()
			c.log.Debug("record_cache_stale_read", "fetched_at", c.FetchedAt())
			return recs, nil
		}
		c.refreshMu.Lock()
	}
	defer c.refreshMu.Unlock()
	// 等待期间其他调用方可能已完成刷新
	if recs, ok := c.fresh(); ok {
		metrics.RecordCacheHitsTotal.Inc()
		return recs, nil
	}
	return c.refreshLocked(ctx, true)
}

// Refresh：无视 TTL 直接查询记录来源并覆盖本地与共享缓存
func (c *RecordCache) Refresh(ctx context.Context) ([]UsageRecord, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshLocked(ctx, false)
}

// Invalidate：清空本地缓存并删除共享快照，下一次 Get 将重新加载
func (c *RecordCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.records = nil
	c.fetchedAt = time.Time{}
	c.loaded = false
	c.mu.Unlock()
	if c.kv != nil {
		if err := c.kv.Del(ctx, c.key); err != nil {
			c.log.Warn("shared_cache_del_error", "key", c.key, "err", err)
		}
	}
}

func (c *RecordCache) refreshLocked(ctx context.Context, useShared bool) ([]UsageRecord, error) {
	metrics.RecordCacheMissesTotal.Inc()
	if useShared && c.kv != nil {
		if snap, ok := c.loadShared(ctx); ok {
			metrics.SharedCacheHitsTotal.Inc()
			c.set(snap.Records, snap.FetchedAt)
			c.log.Debug("record_cache_shared_hit", "records", len(snap.Records), "fetched_at", snap.FetchedAt)
			return snap.Records, nil
		}
	}
	recs, err := c.src.FetchUsageRecords(ctx)
	if err != nil {
		return nil, err
	}
	at := c.now()
	c.set(recs, at)
	c.log.Info("record_cache_refreshed", "records", len(recs), "ttl", c.ttl.String())
	if c.kv != nil {
		c.storeShared(ctx, snapshot{FetchedAt: at, Records: recs})
	}
	return recs, nil
}

func (c *RecordCache) set(recs []UsageRecord, at time.Time) {
	c.mu.Lock()
	c.records = recs
	c.fetchedAt = at
	c.loaded = true
	c.mu.Unlock()
}

// 共享层读写失败只记录日志，数据库始终是权威来源
func (c *RecordCache) loadShared(ctx context.Context) (snapshot, bool) {
	var snap snapshot
	raw, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("shared_cache_get_error", "key", c.key, "err", err)
		}
		return snap, false
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.log.Warn("shared_cache_decode_error", "key", c.key, "err", err)
		return snap, false
	}
	if c.now().Sub(snap.FetchedAt) >= c.ttl {
		return snap, false
	}
	return snap, true
}

func (c *RecordCache) storeShared(ctx context.Context, snap snapshot) {
	b, err := json.Marshal(snap)
	if err != nil {
		c.log.Warn("shared_cache_encode_error", "err", err)
		return
	}
	if err := c.kv.Set(ctx, c.key, string(b), c.ttl); err != nil {
		c.log.Warn("shared_cache_set_error", "key", c.key, "err", err)
	}
}
