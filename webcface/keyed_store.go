package webcface

import (
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// the per kind data store.
// tracks what this member publishes (`send`), the last known value of every
// field by member (`recv`, including self), the known field names by member
// (`entry`), and the subscription requests.
//
// values are treated as immutable. callers replace values, never mutate them.
type KeyedStore[T any] struct {
	selfMemberName string

	stateLock sync.Mutex
	// field -> value set since the last transfer
	send map[string]T
	// member -> field -> value
	recv map[string]map[string]T
	// member -> field names in arrival order
	entry    map[string][]string
	requests *RequestRegistry
}

func NewKeyedStore[T any](selfMemberName string) *KeyedStore[T] {
	return &KeyedStore[T]{
		selfMemberName: selfMemberName,
		send:           map[string]T{},
		recv:           map[string]map[string]T{},
		entry:          map[string][]string{},
		requests:       NewRequestRegistry(selfMemberName),
	}
}

func (self *KeyedStore[T]) IsSelf(member string) bool {
	return member == self.selfMemberName
}

// sets the value to publish. the value is mirrored into the self receive slot
// so a local reader sees it without a round trip.
func (self *KeyedStore[T]) SetSend(field string, value T) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.send[field] = value
	setNested(self.recv, self.selfMemberName, field, value)
}

func (self *KeyedStore[T]) SetRecv(member string, field string, value T) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	setNested(self.recv, member, field, value)
}

// returns the last known value. reading a field of another member
// subscribes to it on first read.
func (self *KeyedStore[T]) GetRecv(member string, field string) (T, bool) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.requests.AddReq(member, field)
	return self.getRecv(member, field)
}

// same as `GetRecv` without the subscription side effect
func (self *KeyedStore[T]) TryGetRecv(member string, field string) (T, bool) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.getRecv(member, field)
}

// must be called with the state lock
func (self *KeyedStore[T]) getRecv(member string, field string) (T, bool) {
	if fields, ok := self.recv[member]; ok {
		value, ok := fields[field]
		return value, ok
	}
	var empty T
	return empty, false
}

// cancels the subscription and forgets the received value
func (self *KeyedStore[T]) UnsetRecv(member string, field string) bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	removed := self.requests.RemoveReq(member, field)
	if member == self.selfMemberName {
		// a freed self field is not sent again
		delete(self.send, field)
	}
	if fields, ok := self.recv[member]; ok {
		if _, ok := fields[field]; ok {
			delete(fields, field)
			removed = true
		}
	}
	return removed
}

func (self *KeyedStore[T]) AddReq(member string, field string) uint32 {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.requests.AddReq(member, field)
}

func (self *KeyedStore[T]) ReqId(member string, field string) uint32 {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.requests.ReqId(member, field)
}

// resets the entry list of the member. called when the member (re)joins.
func (self *KeyedStore[T]) AddMember(member string) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.entry[member] = []string{}
}

// appends the field to the entry list. returns false if the field was already known.
func (self *KeyedStore[T]) SetEntry(member string, field string) bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	fields := self.entry[member]
	if slices.Contains(fields, field) {
		return false
	}
	self.entry[member] = append(fields, field)
	return true
}

func (self *KeyedStore[T]) Entries(member string) []string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return slices.Clone(self.entry[member])
}

func (self *KeyedStore[T]) Members() []string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	members := maps.Keys(self.entry)
	slices.Sort(members)
	return members
}

// on the first transfer after a connect, returns every self value so the
// server gets the full state. otherwise returns and clears the values set
// since the last transfer.
func (self *KeyedStore[T]) TransferSend(isFirst bool) map[string]T {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.transferSend(isFirst)
}

// must be called with the state lock
func (self *KeyedStore[T]) transferSend(isFirst bool) map[string]T {
	if isFirst {
		self.send = map[string]T{}
		return maps.Clone(self.recv[self.selfMemberName])
	}
	out := self.send
	self.send = map[string]T{}
	return out
}

func (self *KeyedStore[T]) TransferReq(isFirst bool) map[string]map[string]uint32 {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.requests.Transfer(isFirst)
}

// resolves a response request id to (member, field). ("", "") if unknown.
func (self *KeyedStore[T]) GetReq(reqId uint32, subField string) (string, string) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.requests.Resolve(reqId, subField)
}
