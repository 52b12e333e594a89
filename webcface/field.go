package webcface

import (
	"strings"
)

// a (member, field) pair bound to a client.
// handles are cheap values; the client data they point to is owned by the client.
type Field struct {
	data   *clientData
	member string
	field  string
}

func (self Field) MemberName() string {
	return self.member
}

func (self Field) FieldName() string {
	return self.field
}

func (self Field) Member() Member {
	return Member{Field{data: self.data, member: self.member}}
}

func (self Field) isSelf() bool {
	return self.data.isSelf(self.member)
}

func (self Field) setCheck() error {
	if !self.isSelf() {
		return setOtherMemberError(self.member, self.data.selfMemberName)
	}
	return nil
}

// joins a sub field name with "."
func (self Field) childName(name string) string {
	if self.field == "" {
		return name
	}
	if name == "" {
		return self.field
	}
	return self.field + "." + name
}

func (self Field) child(name string) Field {
	return Field{data: self.data, member: self.member, field: self.childName(name)}
}

func (self Field) onChange(kind eventKind, callback eventCallback) func() {
	return self.data.events.Add(eventKey{kind: kind, member: self.member, field: self.field}, callback)
}

func (self Field) fireChange(kind eventKind) {
	self.data.events.Fire(eventKey{kind: kind, member: self.member, field: self.field}, self.member, self.field)
}

func isHiddenName(field string) bool {
	return strings.HasPrefix(field, ".")
}
