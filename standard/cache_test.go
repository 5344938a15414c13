package standard

import (
	"testing"
	"time"
)

func testSet(code string) *Set {
	return &Set{
		Code:  code,
		Title: "Test unit",
		Elements: []Component{
			{Kind: KindElement, Code: "E1", Description: "First element"},
		},
	}
}

func TestCachePutGet(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put(testSet("HLTINF006"))

	got, ok := cache.Get("HLTINF006")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Code != "HLTINF006" {
		t.Errorf("got code %q, want HLTINF006", got.Code)
	}

	if _, ok := cache.Get("CHCAGE011"); ok {
		t.Error("expected miss for unknown code")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Put(testSet("HLTINF006"))

	if _, ok := cache.Get("HLTINF006"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("HLTINF006"); ok {
		t.Error("expected miss after expiry")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", cache.Len())
	}
}

func TestCachePurgeExpired(t *testing.T) {
	cache := NewCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Put(testSet("AAA111"))
	now = now.Add(30 * time.Second)
	cache.Put(testSet("BBB222"))
	now = now.Add(45 * time.Second)

	dropped := cache.PurgeExpired()
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if _, ok := cache.Get("BBB222"); !ok {
		t.Error("fresh entry should survive purge")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put(testSet("HLTINF006"))
	cache.Invalidate("HLTINF006")

	if _, ok := cache.Get("HLTINF006"); ok {
		t.Error("expected miss after invalidate")
	}
}
