package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type TestData struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func setupTestCache(t *testing.T) *CacheDB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_cache.db")
	cache, err := Open(dbPath, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create cache database: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	return cache
}

func setCachedAt(t *testing.T, cache *CacheDB, tableName, key string, at time.Time) {
	t.Helper()

	if _, err := cache.db.Exec("UPDATE "+tableName+" SET cached_at = ? WHERE cache_key = ?", at.UTC(), key); err != nil {
		t.Fatalf("Failed to update cached_at: %v", err)
	}
}

func TestOpen_CreatesAllTables(t *testing.T) {
	cache := setupTestCache(t)

	for table := range ValidCacheTableNames {
		if err := cache.Set(table, "probe", `{}`); err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
	if cache.TTL() != time.Hour {
		t.Errorf("Expected TTL 1h, got %v", cache.TTL())
	}
}

func TestOpen_ZeroTTLUsesDefault(t *testing.T) {
	cache, err := Open(filepath.Join(t.TempDir(), "c.db"), 0)
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	if cache.TTL() != DefaultCacheTTL {
		t.Errorf("Expected default TTL, got %v", cache.TTL())
	}
}

func TestGetOrFetch_CacheHit(t *testing.T) {
	cache := setupTestCache(t)

	testKey := "isbn:9780143127741"
	testData := TestData{ID: 1, Name: "Test"}

	if err := cache.Set("openlibrary_cache", testKey, `{"id":1,"name":"Test"}`); err != nil {
		t.Fatalf("Failed to pre-populate cache: %v", err)
	}

	fetchCalled := false
	fetchFunc := func() (TestData, error) {
		fetchCalled = true
		return TestData{}, nil
	}

	result, fromCache, err := GetOrFetch(cache, "openlibrary_cache", testKey, fetchFunc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fromCache {
		t.Error("Expected fromCache to be true")
	}
	if fetchCalled {
		t.Error("Expected fetch function not to be called")
	}
	if result != testData {
		t.Errorf("Expected %+v, got %+v", testData, result)
	}
}

func TestGetOrFetch_CacheMiss(t *testing.T) {
	cache := setupTestCache(t)

	expected := TestData{ID: 2, Name: "Fetched"}
	fetchCalled := 0
	fetchFunc := func() (TestData, error) {
		fetchCalled++
		return expected, nil
	}

	result, fromCache, err := GetOrFetch(cache, "googlebooks_cache", "miss", fetchFunc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected fromCache to be false")
	}
	if result != expected {
		t.Errorf("Expected %+v, got %+v", expected, result)
	}
	if !cache.CacheExists("googlebooks_cache", "miss") {
		t.Error("Expected fetched data to be cached")
	}

	_, fromCache, err = GetOrFetch(cache, "googlebooks_cache", "miss", fetchFunc)
	if err != nil {
		t.Fatalf("Expected no error on second call, got %v", err)
	}
	if !fromCache || fetchCalled != 1 {
		t.Errorf("Expected second call to hit cache, fromCache=%v calls=%d", fromCache, fetchCalled)
	}
}

func TestGetOrFetch_NilCacheFetchesDirectly(t *testing.T) {
	calls := 0
	result, fromCache, err := GetOrFetch[TestData](nil, "openlibrary_cache", "k", func() (TestData, error) {
		calls++
		return TestData{ID: 3}, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected fromCache to be false without a cache")
	}
	if calls != 1 || result.ID != 3 {
		t.Errorf("Expected direct fetch, calls=%d result=%+v", calls, result)
	}
}

func TestGetOrFetch_RespectsTTLExpiration(t *testing.T) {
	cache := setupTestCache(t)

	if err := cache.Set("openlibrary_cache", "old", `{"id":1,"name":"Stale"}`); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}
	setCachedAt(t, cache, "openlibrary_cache", "old", time.Now().Add(-2*time.Hour))

	fetchCalled := false
	result, fromCache, err := GetOrFetch(cache, "openlibrary_cache", "old", func() (TestData, error) {
		fetchCalled = true
		return TestData{ID: 1, Name: "Fresh"}, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected expired entry to be refetched")
	}
	if !fetchCalled {
		t.Error("Expected fetch function to be called")
	}
	if result.Name != "Fresh" {
		t.Errorf("Expected fresh data, got %+v", result)
	}
}

func TestGetOrFetch_FetchError(t *testing.T) {
	cache := setupTestCache(t)

	fetchErr := errors.New("network down")
	_, _, err := GetOrFetch(cache, "openlibrary_cache", "err", func() (TestData, error) {
		return TestData{}, fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Expected wrapped fetch error, got %v", err)
	}
	if cache.CacheExists("openlibrary_cache", "err") {
		t.Error("Expected failed fetch not to be cached")
	}
}

func TestCacheDB_GetSet(t *testing.T) {
	cache := setupTestCache(t)

	if err := cache.Set("googlebooks_cache", "k", `{"id":1}`); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	data, fromCache, err := cache.Get("googlebooks_cache", "k")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fromCache {
		t.Error("Expected fromCache to be true")
	}
	if data != `{"id":1}` {
		t.Errorf("Unexpected cached data %s", data)
	}

	_, fromCache, err = cache.Get("googlebooks_cache", "missing")
	if err != nil {
		t.Fatalf("Expected no error for missing key, got %v", err)
	}
	if fromCache {
		t.Error("Expected missing key not to be a cache hit")
	}
}

func TestCacheDB_GetExpired(t *testing.T) {
	cache := setupTestCache(t)

	if err := cache.Set("openlibrary_cache", "k", `{"id":1}`); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}
	setCachedAt(t, cache, "openlibrary_cache", "k", time.Now().Add(-2*time.Hour))

	data, fromCache, err := cache.Get("openlibrary_cache", "k")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected fromCache to be false for expired cache")
	}
	if data != "" {
		t.Errorf("Expected empty string for expired cache, got %s", data)
	}
}

func TestCacheDB_PerEntryTTLOverridesDefault(t *testing.T) {
	cache := setupTestCache(t)

	if err := cache.SetWithTTL("openlibrary_cache", "long", `{}`, 48*time.Hour); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}
	setCachedAt(t, cache, "openlibrary_cache", "long", time.Now().Add(-2*time.Hour))

	_, fromCache, err := cache.Get("openlibrary_cache", "long")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fromCache {
		t.Error("Expected entry with its own 48h TTL to still be live")
	}
}

func TestCacheDB_InvalidTableName(t *testing.T) {
	cache := setupTestCache(t)

	if err := cache.Set("book; DROP TABLE book", "k", "{}"); err == nil {
		t.Error("Expected error for invalid table name on Set")
	}
	if _, _, err := cache.Get("nope", "k"); err == nil {
		t.Error("Expected error for invalid table name on Get")
	}
	if cache.CacheExists("nope", "k") {
		t.Error("Expected CacheExists to be false for invalid table")
	}
}

func TestCacheDB_ClearExpired(t *testing.T) {
	cache := setupTestCache(t)

	_ = cache.Set("openlibrary_cache", "key1", `{"id":1}`)
	_ = cache.Set("openlibrary_cache", "key2", `{"id":2}`)
	_ = cache.Set("openlibrary_cache", "key3", `{"id":3}`)

	setCachedAt(t, cache, "openlibrary_cache", "key1", time.Now().Add(-2*time.Hour))
	setCachedAt(t, cache, "openlibrary_cache", "key2", time.Now().Add(-30*time.Minute))

	if err := cache.ClearExpired("openlibrary_cache", 45*time.Minute); err != nil {
		t.Fatalf("Failed to clear expired cache: %v", err)
	}

	if cache.CacheExists("openlibrary_cache", "key1") {
		t.Error("Expected key1 to be cleared")
	}
	if !cache.CacheExists("openlibrary_cache", "key2") {
		t.Error("Expected key2 to remain")
	}
	if !cache.CacheExists("openlibrary_cache", "key3") {
		t.Error("Expected key3 to remain")
	}
}

func TestCacheDB_InvalidateSource(t *testing.T) {
	cache := setupTestCache(t)

	_ = cache.Set("openlibrary_cache", "key1", `{"id":1}`)
	_ = cache.Set("openlibrary_cache", "key2", `{"id":2}`)
	_ = cache.Set("openlibrary_cache", "key3", `{"id":3}`)

	rowsDeleted, err := cache.InvalidateSource("openlibrary_cache")
	if err != nil {
		t.Fatalf("Failed to invalidate cache: %v", err)
	}
	if rowsDeleted != 3 {
		t.Errorf("Expected 3 rows deleted, got %d", rowsDeleted)
	}
	if cache.CacheExists("openlibrary_cache", "key1") {
		t.Error("Expected key1 to be invalidated")
	}
}

func TestCacheDB_InvalidateSource_InvalidTable(t *testing.T) {
	cache := setupTestCache(t)

	if _, err := cache.InvalidateSource("invalid_table"); err == nil {
		t.Error("Expected error for invalid table name")
	}
}

func TestInvalidateSources(t *testing.T) {
	cache := setupTestCache(t)

	_ = cache.Set("openlibrary_cache", "isbn:1", `{}`)
	_ = cache.Set("openlibrary_search_cache", "q:sapiens", `{}`)
	_ = cache.Set("googlebooks_cache", "isbn:1", `{}`)

	rows, err := InvalidateSources(cache, "openlibrary")
	if err != nil {
		t.Fatalf("Failed to invalidate: %v", err)
	}
	if rows != 2 {
		t.Errorf("Expected 2 rows deleted, got %d", rows)
	}
	if !cache.CacheExists("googlebooks_cache", "isbn:1") {
		t.Error("Expected googlebooks cache to be untouched")
	}

	if _, err := InvalidateSources(cache, "tmdb"); err == nil {
		t.Error("Expected error for unknown source")
	}
}

func TestSelectNegativeCacheTTL(t *testing.T) {
	type CachedResult struct {
		Data     *string `json:"data"`
		NotFound bool    `json:"not_found"`
	}

	selector := SelectNegativeCacheTTL(func(r CachedResult) bool {
		return r.NotFound
	})

	if ttl := selector(CachedResult{NotFound: true}); ttl != NegativeCacheTTL {
		t.Errorf("Expected NegativeCacheTTL (%v) for not found result, got %v", NegativeCacheTTL, ttl)
	}

	data := "test data"
	if ttl := selector(CachedResult{Data: &data}); ttl != DefaultCacheTTL {
		t.Errorf("Expected DefaultCacheTTL (%v) for found result, got %v", DefaultCacheTTL, ttl)
	}
}

func TestGetOrFetchWithTTL_NegativeCaching(t *testing.T) {
	cache := setupTestCache(t)

	type CachedBook struct {
		Title    string
		NotFound bool
	}

	ttlSelector := SelectNegativeCacheTTL(func(r CachedBook) bool {
		return r.NotFound
	})

	result, fromCache, err := GetOrFetchWithTTL(cache, "openlibrary_cache", "book-not-found", func() (CachedBook, error) {
		return CachedBook{NotFound: true}, nil
	}, ttlSelector)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache || !result.NotFound {
		t.Errorf("Unexpected first result fromCache=%v result=%+v", fromCache, result)
	}

	// The entry outlives the 1h cache default because it carries its own 7 day TTL.
	setCachedAt(t, cache, "openlibrary_cache", "book-not-found", time.Now().Add(-3*time.Hour))

	result, fromCache, err = GetOrFetchWithTTL(cache, "openlibrary_cache", "book-not-found", func() (CachedBook, error) {
		t.Fatal("fetch should not be called for a live negative entry")
		return CachedBook{}, nil
	}, ttlSelector)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fromCache || !result.NotFound {
		t.Errorf("Expected cached not-found result, fromCache=%v result=%+v", fromCache, result)
	}
}
