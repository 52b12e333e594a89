package webcface

import (
	"slices"
)

// a numeric field. the data is a vector; a scalar is a vector of one.
type Value struct {
	Field
}

func (self Value) Name() string {
	return self.field
}

func (self Value) Child(name string) Value {
	return Value{self.child(name)}
}

func (self Value) Set(value float64) error {
	return self.SetVec([]float64{value})
}

func (self Value) SetVec(value []float64) error {
	if err := self.setCheck(); err != nil {
		return err
	}
	self.data.valueStore.SetSend(self.field, slices.Clone(value))
	self.fireChange(eventValueChange)
	return nil
}

// subscribes on first read
func (self Value) TryGetVec() ([]float64, bool) {
	value, ok := self.data.valueStore.GetRecv(self.member, self.field)
	if !ok {
		return nil, false
	}
	return slices.Clone(value), true
}

func (self Value) TryGet() (float64, bool) {
	value, ok := self.data.valueStore.GetRecv(self.member, self.field)
	if !ok || len(value) == 0 {
		return 0, false
	}
	return value[0], true
}

// 0 until a value is received
func (self Value) Get() float64 {
	value, _ := self.TryGet()
	return value
}

// empty until a value is received
func (self Value) GetVec() []float64 {
	value, ok := self.TryGetVec()
	if !ok {
		return []float64{}
	}
	return value
}

// subscribes without reading
func (self Value) Request() {
	self.data.valueStore.AddReq(self.member, self.field)
}

// the callback subscribes to the field
func (self Value) OnChange(callback func(Value)) func() {
	self.Request()
	return self.onChange(eventValueChange, func(member string, field string) {
		callback(self)
	})
}

// cancels the subscription and forgets the value
func (self Value) Free() bool {
	return self.data.valueStore.UnsetRecv(self.member, self.field)
}
