package webcface

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/webcface/webcface-go/protocol"
)

// a callable field
type Func struct {
	Field
}

func (self Func) Name() string {
	return self.field
}

func (self Func) Child(name string) Func {
	return Func{self.child(name)}
}

// registers `fn` under this field of the self member.
// see `newFuncInfo` for the accepted func shapes.
func (self Func) Set(fn any, options ...FuncOption) error {
	if err := self.setCheck(); err != nil {
		return err
	}
	info, err := newFuncInfo(fn, options...)
	if err != nil {
		return err
	}
	self.data.funcStore.SetSend(self.field, info)
	return nil
}

func (self Func) SetHidden(hidden bool) error {
	if err := self.setCheck(); err != nil {
		return err
	}
	info, ok := self.data.funcStore.TryGetRecv(self.member, self.field)
	if !ok || info == nil {
		return fmt.Errorf("%w: func %q is not set", ErrInvalidOperation, self.field)
	}
	next := *info
	next.Hidden = hidden
	self.data.funcStore.SetSend(self.field, &next)
	return nil
}

func (self Func) Info() (*FuncInfo, bool) {
	info, ok := self.data.funcStore.TryGetRecv(self.member, self.field)
	if !ok || info == nil {
		return nil, false
	}
	return info, true
}

func (self Func) Exists() bool {
	_, ok := self.Info()
	return ok
}

func (self Func) Args() []Arg {
	if info, ok := self.Info(); ok {
		return info.Args
	}
	return []Arg{}
}

func (self Func) ReturnType() ValType {
	if info, ok := self.Info(); ok {
		return info.ReturnType
	}
	return ValTypeNone
}

// unregisters the func
func (self Func) Free() bool {
	return self.data.funcStore.UnsetRecv(self.member, self.field)
}

// calls the func and waits for the result.
// a self func runs on the calling goroutine.
// a remote call waits for the other member to answer, which requires the
// client to keep syncing. bound the wait with the context.
func (self Func) Run(ctx context.Context, args ...any) (Val, error) {
	if self.isSelf() {
		promise := newPromise(0, self.member, self.field)
		self.runLocal(promise, valsOf(args))
		return promise.Result(ctx)
	}
	return self.RunAsync(args...).Result(ctx)
}

// starts the call and returns immediately.
// a self func runs on a new goroutine.
// a remote call is queued for the server; while disconnected the call is
// lost and the promise stays pending.
func (self Func) RunAsync(args ...any) *Promise {
	if self.isSelf() {
		promise := newPromise(0, self.member, self.field)
		go self.runLocal(promise, valsOf(args))
		return promise
	}

	promise := self.data.promises.NewPromise(self.member, self.field)
	self.data.queue.Add(&protocol.Call{
		CallerId:       promise.CallerId(),
		CallerMemberId: self.data.memberIdFromName(self.data.selfMemberName),
		TargetMemberId: self.data.memberIdFromName(self.member),
		Field:          self.field,
		Args:           wireVals(valsOf(args)),
	})
	glog.V(LogLevelTrace).Infof("[wcli]call %d %s.%s\n", promise.CallerId(), self.member, self.field)
	return promise
}

func (self Func) runLocal(promise *Promise, args []Val) {
	info, ok := self.data.funcStore.TryGetRecv(self.member, self.field)
	if !ok || info == nil || !info.Callable() {
		promise.setReach(false)
		return
	}
	promise.setReach(true)
	info.run(newCallHandle(args, promise.setFinish))
}

// the callee side of a remote call.
// the response is queued before the handler runs, and the handler runs on
// its own goroutine so dispatch is never blocked.
func (self *clientData) onCall(call *protocol.Call) {
	info, ok := self.funcStore.TryGetRecv(self.selfMemberName, call.Field)
	if !ok || info == nil || !info.Callable() {
		self.queue.Add(&protocol.CallResponse{
			CallerId:       call.CallerId,
			CallerMemberId: call.CallerMemberId,
			Started:        false,
		})
		return
	}
	self.queue.Add(&protocol.CallResponse{
		CallerId:       call.CallerId,
		CallerMemberId: call.CallerMemberId,
		Started:        true,
	})
	callHandle := newCallHandle(valsOf(call.Args), func(isError bool, result Val) {
		self.queue.Add(&protocol.CallResult{
			CallerId:       call.CallerId,
			CallerMemberId: call.CallerMemberId,
			IsError:        isError,
			Result:         result.Any(),
		})
	})
	go info.run(callHandle)
}

func (self *clientData) onCallResponse(response *protocol.CallResponse) {
	promise, ok := self.promises.Get(response.CallerId)
	if !ok {
		glog.Infof("[wcli]call response for unknown caller id %d\n", response.CallerId)
		return
	}
	if !response.Started {
		self.promises.Remove(response.CallerId)
	}
	promise.setReach(response.Started)
}

func (self *clientData) onCallResult(result *protocol.CallResult) {
	promise, ok := self.promises.Get(result.CallerId)
	if !ok {
		glog.Infof("[wcli]call result for unknown caller id %d\n", result.CallerId)
		return
	}
	self.promises.Remove(result.CallerId)
	promise.setFinish(result.IsError, ValOf(result.Result))
}
