package archcache_test

import (
	"testing"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/codec"
)

func TestKeyConstructorsAgree(t *testing.T) {
	want := "user:2"
	keys := map[string]archcache.Key{
		"borrow": archcache.BorrowBytes([]byte(want)),
		"own":    archcache.OwnBytes([]byte(want)),
		"string": archcache.KeyString(want),
		"format": archcache.Keyf("user:%d", 2),
		"id":     archcache.ID("user", 2),
	}
	for name, k := range keys {
		if k.String() != want || k.Len() != len(want) || string(k.Bytes()) != want {
			t.Fatalf("%s: got %q", name, k.String())
		}
		if !k.Equal(archcache.KeyString(want)) {
			t.Fatalf("%s: not equal", name)
		}
	}
}

func TestBorrowedKeysAlias(t *testing.T) {
	src := []byte("guild:7")
	borrowed := archcache.BorrowBytes(src)
	owned := archcache.OwnBytes(src)
	detached := borrowed.Owned()

	src[0] = 'G'
	if borrowed.String() != "Guild:7" {
		t.Fatalf("borrowed key should see the change, got %q", borrowed)
	}
	if owned.String() != "guild:7" || detached.String() != "guild:7" {
		t.Fatalf("owned keys changed: %q %q", owned, detached)
	}
}

func TestKeysAreNotNormalized(t *testing.T) {
	if archcache.KeyString("User:2").Equal(archcache.KeyString("user:2")) {
		t.Fatalf("keys must not be case folded")
	}
	if archcache.KeyString(" user:2").Equal(archcache.KeyString("user:2")) {
		t.Fatalf("keys must not be trimmed")
	}
	if archcache.KeyString("").Len() != 0 {
		t.Fatalf("empty key")
	}
}

func TestStorageKeysAreStable(t *testing.T) {
	p := archcache.Policy[string, codec.StringView]{Kind: "raw", Codec: codec.String()}
	first := p.StorageKey(archcache.ID("map", 75))
	for i := 0; i < 100; i++ {
		if got := p.StorageKey(archcache.Keyf("map:%d", 75)); got != first {
			t.Fatalf("iteration %d: %q != %q", i, got, first)
		}
	}
	// Fixed across releases: changing it orphans every stored entry.
	if first != "raw:map:75" {
		t.Fatalf("storage key format changed: %q", first)
	}
}
