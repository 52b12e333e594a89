package webcface

import (
	"github.com/oklog/ulid/v2"
)

// identifies one connection attempt of a client in the logs.
// ulids are ordered by create time, so log lines sort by attempt.
type ConnectionId ulid.ULID

func NewConnectionId() ConnectionId {
	return ConnectionId(ulid.Make())
}

func (self ConnectionId) String() string {
	return ulid.ULID(self).String()
}

func (self ConnectionId) LessThan(b ConnectionId) bool {
	return ulid.ULID(self).Compare(ulid.ULID(b)) < 0
}
