package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jadwali_go/config"
	"jadwali_go/database"
	"jadwali_go/services/timetable"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ParsedTimetable is everything one import produced. It is a plain
// serializable structure so it can be cached in Redis and handed read-only to
// the assembler.
type ParsedTimetable struct {
	UploadID     string                    `json:"upload_id"`
	FileName     string                    `json:"file_name"`
	Entries      []timetable.ScheduleEntry `json:"entries"`
	CourseGroups []timetable.CourseGroup   `json:"course_groups"`
	SpanWarnings []string                  `json:"span_warnings,omitempty"`
	ImportedAt   time.Time                 `json:"imported_at"`
}

// TimetableStore holds parsed timetables for the configured TTL. The primary
// copy lives in memory; when Redis caching is enabled entries are written
// through so another instance (or a restarted one, within the TTL) can still
// serve them. There is deliberately no durable persistence.
type TimetableStore struct {
	mu    sync.RWMutex
	items map[string]*ParsedTimetable
	ttl   time.Duration
	redis *redis.Client
}

// NewTimetableStore builds a store from the loaded application config.
func NewTimetableStore() *TimetableStore {
	store := &TimetableStore{
		items: make(map[string]*ParsedTimetable),
		ttl:   config.AppConfig.TimetableTTL,
	}
	if config.AppConfig.UseRedisCache {
		store.redis = database.GetRedisClient()
	}
	return store
}

func cacheKey(uploadID string) string {
	return "timetable:" + uploadID
}

// Put stores a parse result under its upload id.
func (s *TimetableStore) Put(pt *ParsedTimetable) {
	s.mu.Lock()
	s.items[pt.UploadID] = pt
	s.mu.Unlock()

	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(pt)
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal timetable for cache")
		return
	}
	if err := s.redis.Set(context.Background(), cacheKey(pt.UploadID), payload, s.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to cache timetable in Redis")
	}
}

// Get returns the parse result for an upload id, falling back to the Redis
// cache when the in-memory copy is gone.
func (s *TimetableStore) Get(uploadID string) (*ParsedTimetable, bool) {
	s.mu.RLock()
	pt, ok := s.items[uploadID]
	s.mu.RUnlock()
	if ok {
		if s.expired(pt) {
			s.Delete(uploadID)
			return nil, false
		}
		return pt, true
	}

	if s.redis == nil {
		return nil, false
	}
	payload, err := s.redis.Get(context.Background(), cacheKey(uploadID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Warn("Failed to read timetable from Redis")
		}
		return nil, false
	}
	var cached ParsedTimetable
	if err := json.Unmarshal(payload, &cached); err != nil {
		logrus.WithError(err).Warn("Discarding unreadable cached timetable")
		return nil, false
	}
	s.mu.Lock()
	s.items[uploadID] = &cached
	s.mu.Unlock()
	return &cached, true
}

// Delete removes an upload from memory and cache.
func (s *TimetableStore) Delete(uploadID string) {
	s.mu.Lock()
	delete(s.items, uploadID)
	s.mu.Unlock()
	if s.redis != nil {
		if err := s.redis.Del(context.Background(), cacheKey(uploadID)).Err(); err != nil {
			logrus.WithError(err).Warn("Failed to drop cached timetable")
		}
	}
}

// Count returns the number of timetables currently held in memory.
func (s *TimetableStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// PruneExpired drops every in-memory entry past its TTL and reports how many
// were removed. Redis entries expire on their own.
func (s *TimetableStore) PruneExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, pt := range s.items {
		if s.expiredLocked(pt) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *TimetableStore) expired(pt *ParsedTimetable) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiredLocked(pt)
}

func (s *TimetableStore) expiredLocked(pt *ParsedTimetable) bool {
	if s.ttl <= 0 {
		return false
	}
	return time.Since(pt.ImportedAt) > s.ttl
}

// String implements fmt.Stringer for log lines.
func (s *TimetableStore) String() string {
	return fmt.Sprintf("TimetableStore(items=%d, ttl=%s)", s.Count(), s.ttl)
}
