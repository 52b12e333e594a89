package webcface

import (
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestKeyedStoreSelfMirror(t *testing.T) {
	store := NewKeyedStore[[]float64]("self")

	for i := 0; i < 32; i++ {
		field := fmt.Sprintf("f%d", i%4)
		value := []float64{float64(i), float64(i * 2)}
		store.SetSend(field, value)
		got, ok := store.GetRecv("self", field)
		assert.Equal(t, ok, true)
		assert.Equal(t, got, value)
	}

	// reading self never subscribes
	assert.Equal(t, store.ReqId("self", "f0"), uint32(0))
	assert.Equal(t, store.TransferReq(false), map[string]map[string]uint32{})
	assert.Equal(t, store.TransferReq(true), map[string]map[string]uint32{})
}

func TestKeyedStoreGetSubscribes(t *testing.T) {
	store := NewKeyedStore[string]("self")

	_, ok := store.GetRecv("a", "x")
	assert.Equal(t, ok, false)
	_, ok = store.GetRecv("a", "x")
	assert.Equal(t, ok, false)
	_, ok = store.TryGetRecv("a", "y")
	assert.Equal(t, ok, false)

	assert.Equal(t, store.TransferReq(false), map[string]map[string]uint32{
		"a": {"x": 1},
	})

	reqId := store.AddReq("a", "y")
	assert.Equal(t, reqId, uint32(2))
	assert.Equal(t, store.AddReq("a", "y"), reqId)

	member, field := store.GetReq(reqId, "")
	assert.Equal(t, member, "a")
	assert.Equal(t, field, "y")

	store.SetRecv("a", "y", "hello")
	value, ok := store.GetRecv("a", "y")
	assert.Equal(t, ok, true)
	assert.Equal(t, value, "hello")

	assert.Equal(t, store.UnsetRecv("a", "y"), true)
	_, ok = store.TryGetRecv("a", "y")
	assert.Equal(t, ok, false)
	assert.Equal(t, store.UnsetRecv("a", "y"), false)
}

func TestKeyedStoreTransferSend(t *testing.T) {
	store := NewKeyedStore[int]("self")

	store.SetSend("a", 1)
	store.SetSend("b", 2)
	assert.Equal(t, store.TransferSend(false), map[string]int{"a": 1, "b": 2})
	assert.Equal(t, store.TransferSend(false), map[string]int{})

	store.SetSend("a", 3)
	assert.Equal(t, store.TransferSend(false), map[string]int{"a": 3})

	// the first transfer has the full self state
	store.SetSend("c", 4)
	assert.Equal(t, store.TransferSend(true), map[string]int{"a": 3, "b": 2, "c": 4})
	assert.Equal(t, store.TransferSend(false), map[string]int{})
}

func TestKeyedStoreUnsetSelf(t *testing.T) {
	store := NewKeyedStore[int]("self")

	store.SetSend("a", 1)
	store.SetSend("b", 2)
	assert.Equal(t, store.UnsetRecv("self", "a"), true)

	sent := store.TransferSend(false)
	_, ok := sent["a"]
	assert.Equal(t, ok, false)
	assert.Equal(t, sent["b"], 2)

	_, ok = store.TryGetRecv("self", "a")
	assert.Equal(t, ok, false)

	// another member's pending sends are untouched
	store.SetSend("c", 3)
	store.UnsetRecv("other", "c")
	assert.Equal(t, store.TransferSend(false), map[string]int{"c": 3})
}

func TestKeyedStoreEntries(t *testing.T) {
	store := NewKeyedStore[int]("self")

	store.AddMember("a")
	assert.Equal(t, store.SetEntry("a", "x"), true)
	assert.Equal(t, store.SetEntry("a", "y"), true)
	assert.Equal(t, store.SetEntry("a", "x"), false)
	assert.Equal(t, store.Entries("a"), []string{"x", "y"})
	assert.Equal(t, store.Members(), []string{"a"})

	// a re-joined member starts with no entries
	store.AddMember("a")
	assert.Equal(t, store.Entries("a"), []string{})
	assert.Equal(t, len(store.Entries("b")), 0)
}
