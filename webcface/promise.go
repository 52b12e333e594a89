package webcface

import (
	"context"
	"sync"
)

// the caller side state of one func call.
// pending -> reached (found or not) -> finished (ok or error).
// a call that is not found is finished as soon as it is reached.
type Promise struct {
	callerId uint32
	member   string
	field    string

	stateLock sync.Mutex
	reached   bool
	found     bool
	finished  bool
	isError   bool
	response  Val
	rejection string

	monitor  *Monitor
	onReach  *CallbackList[func(*Promise)]
	onFinish *CallbackList[func(*Promise)]
}

func newPromise(callerId uint32, member string, field string) *Promise {
	return &Promise{
		callerId: callerId,
		member:   member,
		field:    field,
		monitor:  NewMonitor(),
		onReach:  NewCallbackList[func(*Promise)](),
		onFinish: NewCallbackList[func(*Promise)](),
	}
}

func (self *Promise) CallerId() uint32 {
	return self.callerId
}

func (self *Promise) MemberName() string {
	return self.member
}

func (self *Promise) FieldName() string {
	return self.field
}

func (self *Promise) Reached() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.reached
}

// only meaningful once reached
func (self *Promise) Found() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.found
}

func (self *Promise) Finished() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.finished
}

func (self *Promise) IsError() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.isError
}

func (self *Promise) Response() Val {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.response
}

func (self *Promise) Rejection() string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.rejection
}

// blocks until reached or the context is done
func (self *Promise) WaitReach(ctx context.Context) error {
	return self.wait(ctx, func() bool {
		return self.reached
	})
}

// blocks until finished or the context is done.
// a call that never gets a result keeps this blocked; use a context deadline.
func (self *Promise) WaitFinish(ctx context.Context) error {
	return self.wait(ctx, func() bool {
		return self.finished
	})
}

func (self *Promise) wait(ctx context.Context, done func() bool) error {
	for {
		notify := self.monitor.NotifyChannel()
		self.stateLock.Lock()
		ok := done()
		self.stateLock.Unlock()
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-notify:
		}
	}
}

// waits for the outcome. a missing func is a `*FuncNotFoundError`,
// a failed func is a `*RemoteError`.
func (self *Promise) Result(ctx context.Context) (Val, error) {
	if err := self.WaitFinish(ctx); err != nil {
		return Val{}, err
	}
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	if !self.found {
		return Val{}, &FuncNotFoundError{
			Member: self.member,
			Field:  self.field,
		}
	}
	if self.isError {
		return Val{}, &RemoteError{
			Member:  self.member,
			Field:   self.field,
			Message: self.rejection,
		}
	}
	return self.response, nil
}

// the callback runs immediately if already reached
func (self *Promise) OnReach(callback func(*Promise)) func() {
	return self.addCallback(self.onReach, callback, func() bool {
		return self.reached
	})
}

// the callback runs immediately if already finished
func (self *Promise) OnFinish(callback func(*Promise)) func() {
	return self.addCallback(self.onFinish, callback, func() bool {
		return self.finished
	})
}

func (self *Promise) addCallback(callbacks *CallbackList[func(*Promise)], callback func(*Promise), done func() bool) func() {
	var remove func()
	ok := func() bool {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		if done() {
			return true
		}
		remove = callbacks.Add(callback)
		return false
	}()
	if ok {
		self.fire(callback)
		return func() {}
	}
	return remove
}

func (self *Promise) fire(callbacks ...func(*Promise)) {
	for _, callback := range callbacks {
		HandleError(func() {
			callback(self)
		})
	}
}

// records the call response. a call that was not found is also finished.
func (self *Promise) setReach(found bool) {
	changed := func() bool {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		if self.reached {
			return false
		}
		self.reached = true
		self.found = found
		if !found {
			self.finished = true
			self.isError = true
			self.rejection = (&FuncNotFoundError{Member: self.member, Field: self.field}).Error()
		}
		return true
	}()
	if !changed {
		return
	}
	self.monitor.NotifyAll()
	self.fire(self.onReach.Get()...)
	if !found {
		self.fire(self.onFinish.Get()...)
	}
}

func (self *Promise) setFinish(isError bool, result Val) {
	var reachedNow bool
	changed := func() bool {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		if self.finished {
			return false
		}
		if !self.reached {
			// a result implies the call was found
			self.reached = true
			self.found = true
			reachedNow = true
		}
		self.finished = true
		self.isError = isError
		if isError {
			self.rejection = result.String()
		} else {
			self.response = result
		}
		return true
	}()
	if !changed {
		return
	}
	self.monitor.NotifyAll()
	if reachedNow {
		self.fire(self.onReach.Get()...)
	}
	self.fire(self.onFinish.Get()...)
}

// the arena of in flight remote calls, keyed by caller id.
// caller ids are never reused within one client.
type PromiseStore struct {
	stateLock    sync.Mutex
	nextCallerId uint32
	promises     map[uint32]*Promise
}

func NewPromiseStore() *PromiseStore {
	return &PromiseStore{
		promises: map[uint32]*Promise{},
	}
}

func (self *PromiseStore) NewPromise(member string, field string) *Promise {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	callerId := self.nextCallerId
	self.nextCallerId += 1
	promise := newPromise(callerId, member, field)
	self.promises[callerId] = promise
	return promise
}

func (self *PromiseStore) Get(callerId uint32) (*Promise, bool) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	promise, ok := self.promises[callerId]
	return promise, ok
}

func (self *PromiseStore) Remove(callerId uint32) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	delete(self.promises, callerId)
}

func (self *PromiseStore) Len() int {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return len(self.promises)
}
