package webcface

// a text field. the data is a scalar, usually a string.
type Text struct {
	Field
}

func (self Text) Name() string {
	return self.field
}

func (self Text) Child(name string) Text {
	return Text{self.child(name)}
}

func (self Text) Set(text string) error {
	return self.SetVal(ValOf(text))
}

func (self Text) SetVal(value Val) error {
	if err := self.setCheck(); err != nil {
		return err
	}
	self.data.textStore.SetSend(self.field, value)
	self.fireChange(eventTextChange)
	return nil
}

// subscribes on first read
func (self Text) TryGetVal() (Val, bool) {
	return self.data.textStore.GetRecv(self.member, self.field)
}

func (self Text) TryGet() (string, bool) {
	value, ok := self.TryGetVal()
	if !ok {
		return "", false
	}
	return value.String(), true
}

// "" until a value is received
func (self Text) Get() string {
	value, _ := self.TryGet()
	return value
}

func (self Text) Request() {
	self.data.textStore.AddReq(self.member, self.field)
}

// the callback subscribes to the field
func (self Text) OnChange(callback func(Text)) func() {
	self.Request()
	return self.onChange(eventTextChange, func(member string, field string) {
		callback(self)
	})
}

func (self Text) Free() bool {
	return self.data.textStore.UnsetRecv(self.member, self.field)
}
