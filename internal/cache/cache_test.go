package cache

import (
	"context"
	"sync"
	"testing"

	"rbformat/internal/record"
)

func TestKeyDependsOnRequest(t *testing.T) {
	rus := record.Options{Language: record.LangRUS, MaxLineLength: 39}
	base := Key(record.KindLibrary, rus, "1\nТекст")

	variants := map[string]string{
		"kind":   Key(record.KindMedal, rus, "1\nТекст"),
		"lang":   Key(record.KindLibrary, record.Options{Language: record.LangJAP, MaxLineLength: 39}, "1\nТекст"),
		"length": Key(record.KindLibrary, record.Options{Language: record.LangRUS, MaxLineLength: 40}, "1\nТекст"),
		"input":  Key(record.KindLibrary, rus, "1\nТекст!"),
	}
	for name, k := range variants {
		if k == base {
			t.Errorf("changing %s kept the same key", name)
		}
	}
	if again := Key(record.KindLibrary, rus, "1\nТекст"); again != base {
		t.Errorf("Key() is not stable: %s != %s", again, base)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewOutputCache(nil)
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error: %v", err)
	}
	if err := c.Preload(ctx); err != nil {
		t.Fatalf("Preload() error: %v", err)
	}

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Get() hit on an empty cache")
	}
	if err := c.Set(ctx, "k", record.KindLibrary, "out"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got, ok := c.Get(ctx, "k"); !ok || got != "out" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewOutputCache(nil)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = c.Set(ctx, key, record.KindMap, key)
			c.Get(ctx, key)
		}()
	}
	wg.Wait()
	if c.Len() != 20 {
		t.Errorf("Len() = %d, want 20", c.Len())
	}
}
