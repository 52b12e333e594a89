package webcface

import (
	"errors"
	"fmt"
)

// returned when writing to a field of a member other than self
var ErrInvalidOperation = errors.New("invalid operation")

// the target of a call has no func registered under the field
type FuncNotFoundError struct {
	Member string
	Field  string
}

func (self *FuncNotFoundError) Error() string {
	return fmt.Sprintf("member(%q).func(%q) is not set", self.Member, self.Field)
}

// the func ran and failed. only the message crosses the wire.
type RemoteError struct {
	Member  string
	Field   string
	Message string
}

func (self *RemoteError) Error() string {
	return self.Message
}

func setOtherMemberError(member string, selfMemberName string) error {
	return fmt.Errorf("%w: cannot set data to member %q from %q", ErrInvalidOperation, member, selfMemberName)
}
