package webcface

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/webcface/webcface-go/protocol"
)

// the declared signature of one func argument.
// zero values mean "unspecified".
type Arg struct {
	Name string
	Type ValType
	// none when there is no initial value
	Init   Val
	Min    *float64
	Max    *float64
	Option []Val
}

// returns a copy of self where every field set in `override` replaces self's
func (self Arg) Merge(override Arg) Arg {
	out := self
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Type != ValTypeNone {
		out.Type = override.Type
	}
	if !override.Init.IsNone() {
		out.Init = override.Init
	}
	if override.Min != nil {
		out.Min = override.Min
	}
	if override.Max != nil {
		out.Max = override.Max
	}
	if 0 < len(override.Option) {
		out.Option = slices.Clone(override.Option)
	}
	return out
}

func (self Arg) toProtocol() protocol.Arg {
	var option []any
	if 0 < len(self.Option) {
		option = wireVals(self.Option)
	}
	return protocol.Arg{
		Name:   self.Name,
		Type:   int(self.Type),
		Init:   self.Init.Any(),
		Min:    self.Min,
		Max:    self.Max,
		Option: option,
	}
}

func argFromProtocol(arg protocol.Arg) Arg {
	var option []Val
	if 0 < len(arg.Option) {
		option = valsOf(arg.Option)
	}
	return Arg{
		Name:   arg.Name,
		Type:   ValType(arg.Type),
		Init:   ValOf(arg.Init),
		Min:    arg.Min,
		Max:    arg.Max,
		Option: option,
	}
}

// the signature of a func, and for a func registered by this member the
// handler that runs it. infos received from other members have no handler.
type FuncInfo struct {
	ReturnType ValType
	Args       []Arg
	// hidden funcs are callable but not announced to other members
	Hidden bool

	handler func(*CallHandle)
}

func (self *FuncInfo) Callable() bool {
	return self.handler != nil
}

func (self *FuncInfo) toProtocol(field string) *protocol.FuncInfo {
	args := make([]protocol.Arg, len(self.Args))
	for i, arg := range self.Args {
		args[i] = arg.toProtocol()
	}
	return &protocol.FuncInfo{
		Field:      field,
		ReturnType: int(self.ReturnType),
		Args:       args,
	}
}

func funcInfoFromProtocol(info *protocol.FuncInfo) *FuncInfo {
	args := make([]Arg, len(info.Args))
	for i, arg := range info.Args {
		args[i] = argFromProtocol(arg)
	}
	return &FuncInfo{
		ReturnType: ValType(info.ReturnType),
		Args:       args,
	}
}

// runs the handler with the arguments coerced to the declared types.
// the outcome is always reported through the call handle. a panic in the
// handler rejects the call with the panic message.
func (self *FuncInfo) run(call *CallHandle) {
	if self.handler == nil {
		call.Reject("func is not callable from this member")
		return
	}
	if len(call.args) != len(self.Args) {
		call.Reject(fmt.Sprintf("requires %d arguments but got %d", len(self.Args), len(call.args)))
		return
	}
	for i, arg := range self.Args {
		v, err := call.args[i].Coerce(arg.Type)
		if err != nil {
			call.Reject(err.Error())
			return
		}
		call.args[i] = v
	}
	HandleError(func() {
		self.handler(call)
	}, func(err error) {
		call.Reject(err.Error())
	})
}

type funcSettings struct {
	args          []Arg
	returnType    ValType
	hasReturnType bool
	hidden        bool
}

type FuncOption func(*funcSettings)

// declares the arguments. merged positionally with the types derived
// from the go func.
func WithArgs(args ...Arg) FuncOption {
	return func(settings *funcSettings) {
		settings.args = args
	}
}

func WithReturnType(returnType ValType) FuncOption {
	return func(settings *funcSettings) {
		settings.returnType = returnType
		settings.hasReturnType = true
	}
}

func WithHidden() FuncOption {
	return func(settings *funcSettings) {
		settings.hidden = true
	}
}

var (
	valReflectType = reflect.TypeOf(Val{})
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

// builds the info for a go func. `fn` is either a `func(*CallHandle)`, which
// responds on its own time, or a plain func of int, float, bool, string, `Val`
// or `any` parameters returning at most one such value and an optional error.
func newFuncInfo(fn any, options ...FuncOption) (*FuncInfo, error) {
	settings := &funcSettings{}
	for _, option := range options {
		option(settings)
	}

	info := &FuncInfo{
		Hidden: settings.hidden,
	}

	switch v := fn.(type) {
	case nil:
		return nil, errors.New("func is nil")
	case func(*CallHandle):
		info.handler = v
		info.Args = slices.Clone(settings.args)
		info.ReturnType = settings.returnType
		return info, nil
	}

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("%T is not a func", fn)
	}
	if fnType.IsVariadic() {
		return nil, errors.New("variadic funcs are not supported")
	}
	if fnType.NumIn() < len(settings.args) {
		return nil, fmt.Errorf("%d args declared for a func with %d parameters", len(settings.args), fnType.NumIn())
	}

	args := make([]Arg, fnType.NumIn())
	for i := range args {
		argType, ok := reflectValType(fnType.In(i))
		if !ok {
			return nil, fmt.Errorf("unsupported parameter type %s", fnType.In(i))
		}
		args[i] = Arg{Type: argType}
		if i < len(settings.args) {
			args[i] = args[i].Merge(settings.args[i])
		}
	}
	info.Args = args

	returnType, returnsError, err := reflectReturnType(fnType)
	if err != nil {
		return nil, err
	}
	if settings.hasReturnType {
		info.ReturnType = settings.returnType
	} else {
		info.ReturnType = returnType
	}

	info.handler = func(call *CallHandle) {
		in := make([]reflect.Value, fnType.NumIn())
		for i := range in {
			arg, err := reflectArg(call.args[i], fnType.In(i))
			if err != nil {
				call.Reject(err.Error())
				return
			}
			in[i] = arg
		}
		out := fnValue.Call(in)
		if returnsError {
			if errValue := out[len(out)-1]; !errValue.IsNil() {
				call.Reject(errValue.Interface().(error).Error())
				return
			}
			out = out[:len(out)-1]
		}
		var result Val
		if 0 < len(out) {
			result = ValOf(out[0].Interface())
		}
		call.Respond(result)
	}
	return info, nil
}

func reflectValType(t reflect.Type) (ValType, bool) {
	if t == valReflectType {
		return ValTypeNone, true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ValTypeInt, true
	case reflect.Float32, reflect.Float64:
		return ValTypeFloat, true
	case reflect.Bool:
		return ValTypeBool, true
	case reflect.String:
		return ValTypeString, true
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return ValTypeNone, true
		}
	}
	return ValTypeNone, false
}

func reflectReturnType(fnType reflect.Type) (returnType ValType, returnsError bool, err error) {
	numOut := fnType.NumOut()
	if 0 < numOut && fnType.Out(numOut-1) == errorType {
		returnsError = true
		numOut -= 1
	}
	switch numOut {
	case 0:
		returnType = ValTypeNone
	case 1:
		var ok bool
		returnType, ok = reflectValType(fnType.Out(0))
		if !ok {
			err = fmt.Errorf("unsupported return type %s", fnType.Out(0))
		}
	default:
		err = fmt.Errorf("at most one return value plus an error is supported, got %d", fnType.NumOut())
	}
	return
}

// the value must already be coerced to the declared type.
// ints that do not fit the parameter are rejected rather than wrapped.
func reflectArg(val Val, t reflect.Type) (reflect.Value, error) {
	if t == valReflectType {
		return reflect.ValueOf(val), nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := val.Int()
		arg := reflect.New(t).Elem()
		if arg.OverflowInt(i) {
			return reflect.Value{}, fmt.Errorf("%d does not fit in %s", i, t)
		}
		arg.SetInt(i)
		return arg, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i := val.Int()
		arg := reflect.New(t).Elem()
		if i < 0 || arg.OverflowUint(uint64(i)) {
			return reflect.Value{}, fmt.Errorf("%d does not fit in %s", i, t)
		}
		arg.SetUint(uint64(i))
		return arg, nil
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(val.Float()).Convert(t), nil
	case reflect.Bool:
		return reflect.ValueOf(val.Bool()).Convert(t), nil
	case reflect.String:
		return reflect.ValueOf(val.String()).Convert(t), nil
	default:
		if val.IsNone() {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(val.Any()), nil
	}
}

// one invocation of a func. the handler reports the outcome with `Respond`
// or `Reject`; only the first report counts.
type CallHandle struct {
	args []Val

	stateLock sync.Mutex
	responded bool
	onResult  func(isError bool, result Val)
}

func newCallHandle(args []Val, onResult func(isError bool, result Val)) *CallHandle {
	return &CallHandle{
		args:     args,
		onResult: onResult,
	}
}

func (self *CallHandle) Args() []Val {
	return slices.Clone(self.args)
}

func (self *CallHandle) Respond(value any) {
	self.finish(false, ValOf(value))
}

func (self *CallHandle) Reject(message string) {
	self.finish(true, ValOf(message))
}

func (self *CallHandle) Responded() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.responded
}

func (self *CallHandle) finish(isError bool, result Val) {
	var onResult func(bool, Val)
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		if self.responded {
			return
		}
		self.responded = true
		onResult = self.onResult
	}()
	if onResult != nil {
		onResult(isError, result)
	}
}
