package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// MappingCacheRepositoryInterface abstracts the durable match cache
type MappingCacheRepositoryInterface interface {
	Entries(ctx context.Context, kind clients.MatchKind) (map[int64][]models.LocalRef, error)
	Put(ctx context.Context, kind clients.MatchKind, externalID int64, refs []models.LocalRef) error
	MarkComplete(ctx context.Context, kind clients.MatchKind) error
	IsComplete(ctx context.Context, kind clients.MatchKind) (bool, error)
	PurgeKind(ctx context.Context, kind clients.MatchKind) (int64, error)
	PurgeAll(ctx context.Context) (int64, error)
}

// MappingCacheRepository is a redis-backed cache of previously resolved
// EAN/OEM/PCD matches, keyed by mapping type + external id. It reduces
// repeated remote lookups across runs and can be purged on demand.
type MappingCacheRepository struct {
	rdb *redis.Client
}

var _ MappingCacheRepositoryInterface = (*MappingCacheRepository)(nil)

// NewMappingCacheRepository creates a new mapping cache repository
func NewMappingCacheRepository(rdb *redis.Client) *MappingCacheRepository {
	return &MappingCacheRepository{rdb: rdb}
}

func cacheKey(kind clients.MatchKind, externalID int64) string {
	return fmt.Sprintf("catalog-sync:mapping-cache:%s:%d", kind, externalID)
}

// completeKey lives under the kind prefix so PurgeKind and PurgeAll drop the
// marker together with the entries. Entries skips it: the suffix is not a
// parseable external id.
func completeKey(kind clients.MatchKind) string {
	return fmt.Sprintf("catalog-sync:mapping-cache:%s:complete", kind)
}

// Entries returns every cached resolution of one mapping type, keyed by
// external id.
func (r *MappingCacheRepository) Entries(ctx context.Context, kind clients.MatchKind) (map[int64][]models.LocalRef, error) {
	prefix := fmt.Sprintf("catalog-sync:mapping-cache:%s:", kind)
	entries := make(map[int64][]models.LocalRef)

	iter := r.rdb.Scan(ctx, 0, prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		externalID, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil {
			continue
		}

		raw, err := r.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}

		var refs []models.LocalRef
		if err := json.Unmarshal(raw, &refs); err != nil {
			return nil, err
		}
		entries[externalID] = refs
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Put stores the resolved local refs for an external id.
func (r *MappingCacheRepository) Put(ctx context.Context, kind clients.MatchKind, externalID int64, refs []models.LocalRef) error {
	raw, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, cacheKey(kind, externalID), raw, 0).Err()
}

// MarkComplete records that the cache holds every resolution of one mapping
// type. Replay is gated on this marker, so a page walk that aborts midway
// never leaves a partial cache that looks authoritative on the next run.
func (r *MappingCacheRepository) MarkComplete(ctx context.Context, kind clients.MatchKind) error {
	return r.rdb.Set(ctx, completeKey(kind), "1", 0).Err()
}

// IsComplete reports whether a full page walk has been cached for this
// mapping type.
func (r *MappingCacheRepository) IsComplete(ctx context.Context, kind clients.MatchKind) (bool, error) {
	err := r.rdb.Get(ctx, completeKey(kind)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeKind deletes all cached matches of one mapping type.
func (r *MappingCacheRepository) PurgeKind(ctx context.Context, kind clients.MatchKind) (int64, error) {
	return r.purgePattern(ctx, fmt.Sprintf("catalog-sync:mapping-cache:%s:*", kind))
}

// PurgeAll deletes the whole mapping cache.
func (r *MappingCacheRepository) PurgeAll(ctx context.Context) (int64, error) {
	return r.purgePattern(ctx, "catalog-sync:mapping-cache:*")
}

func (r *MappingCacheRepository) purgePattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := r.rdb.Scan(ctx, 0, pattern, 500).Iterator()
	for iter.Next(ctx) {
		if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, iter.Err()
}
