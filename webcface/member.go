package webcface

import (
	"time"
)

// a handle to one member. the self member is the one this client publishes as.
type Member struct {
	Field
}

func (self Member) Name() string {
	return self.member
}

func (self Member) fieldOf(name string) Field {
	return Field{data: self.data, member: self.member, field: name}
}

func (self Member) Value(field string) Value {
	return Value{self.fieldOf(field)}
}

func (self Member) Text(field string) Text {
	return Text{self.fieldOf(field)}
}

func (self Member) View(field string) View {
	return View{self.fieldOf(field)}
}

func (self Member) Canvas2D(field string) Canvas2D {
	return Canvas2D{self.fieldOf(field)}
}

func (self Member) Canvas3D(field string) Canvas3D {
	return Canvas3D{self.fieldOf(field)}
}

func (self Member) Image(field string) Image {
	return Image{self.fieldOf(field)}
}

// an empty field name is the default log
func (self Member) Log(field string) Log {
	if field == "" {
		field = DefaultLogField
	}
	return Log{self.fieldOf(field)}
}

func (self Member) Func(field string) Func {
	return Func{self.fieldOf(field)}
}

// registers `fn` under a generated hidden name
func (self Member) AnonymousFunc(fn any, options ...FuncOption) (Func, error) {
	f := self.Func(self.data.nextAnonymousFuncName())
	if err := f.Set(fn, append(options, WithHidden())...); err != nil {
		return Func{}, err
	}
	return f, nil
}

func (self Member) Values() []Value {
	fields := self.data.valueStore.Entries(self.member)
	out := make([]Value, len(fields))
	for i, field := range fields {
		out[i] = self.Value(field)
	}
	return out
}

func (self Member) Texts() []Text {
	fields := self.data.textStore.Entries(self.member)
	out := make([]Text, len(fields))
	for i, field := range fields {
		out[i] = self.Text(field)
	}
	return out
}

func (self Member) Views() []View {
	fields := self.data.viewStore.Entries(self.member)
	out := make([]View, len(fields))
	for i, field := range fields {
		out[i] = self.View(field)
	}
	return out
}

func (self Member) Canvas2Ds() []Canvas2D {
	fields := self.data.canvas2dStore.Entries(self.member)
	out := make([]Canvas2D, len(fields))
	for i, field := range fields {
		out[i] = self.Canvas2D(field)
	}
	return out
}

func (self Member) Canvas3Ds() []Canvas3D {
	fields := self.data.canvas3dStore.Entries(self.member)
	out := make([]Canvas3D, len(fields))
	for i, field := range fields {
		out[i] = self.Canvas3D(field)
	}
	return out
}

func (self Member) Images() []Image {
	fields := self.data.imageStore.Entries(self.member)
	out := make([]Image, len(fields))
	for i, field := range fields {
		out[i] = self.Image(field)
	}
	return out
}

func (self Member) Logs() []Log {
	fields := self.data.logStore.Entries(self.member)
	out := make([]Log, len(fields))
	for i, field := range fields {
		out[i] = self.Log(field)
	}
	return out
}

func (self Member) Funcs() []Func {
	fields := self.data.funcStore.Entries(self.member)
	out := make([]Func, 0, len(fields))
	for _, field := range fields {
		if !isHiddenName(field) {
			out = append(out, self.Func(field))
		}
	}
	return out
}

func (self Member) onEntry(kind eventKind, callback eventCallback) func() {
	return self.data.events.Add(eventKey{kind: kind, member: self.member}, callback)
}

func (self Member) OnValueEntry(callback func(Value)) func() {
	return self.onEntry(eventValueEntry, func(member string, field string) {
		callback(self.Value(field))
	})
}

func (self Member) OnTextEntry(callback func(Text)) func() {
	return self.onEntry(eventTextEntry, func(member string, field string) {
		callback(self.Text(field))
	})
}

func (self Member) OnViewEntry(callback func(View)) func() {
	return self.onEntry(eventViewEntry, func(member string, field string) {
		callback(self.View(field))
	})
}

func (self Member) OnCanvas2DEntry(callback func(Canvas2D)) func() {
	return self.onEntry(eventCanvas2DEntry, func(member string, field string) {
		callback(self.Canvas2D(field))
	})
}

func (self Member) OnCanvas3DEntry(callback func(Canvas3D)) func() {
	return self.onEntry(eventCanvas3DEntry, func(member string, field string) {
		callback(self.Canvas3D(field))
	})
}

func (self Member) OnImageEntry(callback func(Image)) func() {
	return self.onEntry(eventImageEntry, func(member string, field string) {
		callback(self.Image(field))
	})
}

func (self Member) OnLogEntry(callback func(Log)) func() {
	return self.onEntry(eventLogEntry, func(member string, field string) {
		callback(self.Log(field))
	})
}

func (self Member) OnFuncEntry(callback func(Func)) func() {
	return self.onEntry(eventFuncEntry, func(member string, field string) {
		callback(self.Func(field))
	})
}

// fires after every batch that carried a sync from the member
func (self Member) OnSync(callback func(Member)) func() {
	return self.onEntry(eventSync, func(member string, field string) {
		callback(self)
	})
}

// requests the ping status from the server on the next sync
func (self Member) OnPing(callback func(Member)) func() {
	self.data.requestPingStatus()
	return self.onEntry(eventPing, func(member string, field string) {
		callback(self)
	})
}

// the time of the member's last sync. zero if none was received.
func (self Member) SyncTime() time.Time {
	syncTime, _ := self.data.syncTime(self.member)
	return syncTime
}

// the round trip between the member and the server.
// the first call requests the ping status from the server.
func (self Member) PingStatus() (time.Duration, bool) {
	self.data.requestPingStatus()
	return self.data.pingLatency(self.member)
}

func (self Member) LibName() string {
	info, _ := self.data.memberInfo(self.member)
	return info.libName
}

func (self Member) LibVersion() string {
	info, _ := self.data.memberInfo(self.member)
	return info.libVersion
}

func (self Member) RemoteAddr() string {
	info, _ := self.data.memberInfo(self.member)
	return info.addr
}
