package webcface

import (
	"slices"
	"time"
)

type LogLine struct {
	Level   int
	Time    time.Time
	Message string
}

// append only log lines per (member, field).
// self lines are transmitted incrementally using a per field cursor.
type LogStore struct {
	*KeyedStore[[]LogLine]

	// < 0 keeps everything
	keepLines int
	// field -> count of self lines already transmitted
	sentLines map[string]int
}

func NewLogStore(selfMemberName string, keepLines int) *LogStore {
	return &LogStore{
		KeyedStore: NewKeyedStore[[]LogLine](selfMemberName),
		keepLines:  keepLines,
		sentLines:  map[string]int{},
	}
}

func (self *LogStore) AppendSend(field string, lines ...LogLine) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	current, _ := self.getRecv(self.selfMemberName, field)
	next, dropped := self.appendLines(current, lines)
	if sent, ok := self.sentLines[field]; ok {
		self.sentLines[field] = max(0, sent-dropped)
	}
	setNested(self.recv, self.selfMemberName, field, next)
}

func (self *LogStore) AppendRecv(member string, field string, lines ...LogLine) []LogLine {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	current, _ := self.getRecv(member, field)
	next, _ := self.appendLines(current, lines)
	setNested(self.recv, member, field, next)
	return next
}

// must be called with the state lock
func (self *LogStore) appendLines(current []LogLine, lines []LogLine) ([]LogLine, int) {
	next := make([]LogLine, 0, len(current)+len(lines))
	next = append(next, current...)
	next = append(next, lines...)
	dropped := 0
	if 0 <= self.keepLines && self.keepLines < len(next) {
		dropped = len(next) - self.keepLines
		next = slices.Clone(next[dropped:])
	}
	return next, dropped
}

// forgets the received lines. the subscription is kept.
func (self *LogStore) Clear(member string, field string) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	setNested(self.recv, member, field, []LogLine{})
	if self.IsSelf(member) {
		self.sentLines[field] = 0
	}
}

// returns the self lines not yet transmitted. on the first transfer after a
// connect every retained line is returned.
func (self *LogStore) TransferLines(isFirst bool) map[string][]LogLine {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	out := map[string][]LogLine{}
	for field, lines := range self.recv[self.selfMemberName] {
		sent := self.sentLines[field]
		if isFirst || len(lines) < sent {
			sent = 0
		}
		if sent < len(lines) {
			out[field] = slices.Clone(lines[sent:])
		}
		self.sentLines[field] = len(lines)
	}
	return out
}
