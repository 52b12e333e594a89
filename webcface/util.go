package webcface

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
)

// a monitor is a broadcast condition.
// waiters take the notify channel under their own state lock,
// release the lock, then wait on the channel.
type Monitor struct {
	mutex  sync.Mutex
	update chan struct{}
}

func NewMonitor() *Monitor {
	return &Monitor{
		update: make(chan struct{}),
	}
}

func (self *Monitor) NotifyChannel() chan struct{} {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.update
}

// close the update channel and create a new one
func (self *Monitor) NotifyAll() {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	close(self.update)
	self.update = make(chan struct{})
}

type callbackEntry[T any] struct {
	id       uint64
	callback T
}

// makes a copy of the list on update
type CallbackList[T any] struct {
	mutex     sync.Mutex
	nextId    uint64
	callbacks []callbackEntry[T]
}

func NewCallbackList[T any]() *CallbackList[T] {
	return &CallbackList[T]{
		callbacks: []callbackEntry[T]{},
	}
}

func (self *CallbackList[T]) Get() []T {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	callbacks := make([]T, len(self.callbacks))
	for i, entry := range self.callbacks {
		callbacks[i] = entry.callback
	}
	return callbacks
}

func (self *CallbackList[T]) Len() int {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return len(self.callbacks)
}

// returns a function that removes the callback
func (self *CallbackList[T]) Add(callback T) func() {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	self.nextId += 1
	id := self.nextId
	nextCallbacks := make([]callbackEntry[T], 0, len(self.callbacks)+1)
	nextCallbacks = append(nextCallbacks, self.callbacks...)
	nextCallbacks = append(nextCallbacks, callbackEntry[T]{id: id, callback: callback})
	self.callbacks = nextCallbacks

	return func() {
		self.remove(id)
	}
}

func (self *CallbackList[T]) remove(id uint64) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	nextCallbacks := make([]callbackEntry[T], 0, len(self.callbacks))
	for _, entry := range self.callbacks {
		if entry.id != id {
			nextCallbacks = append(nextCallbacks, entry)
		}
	}
	self.callbacks = nextCallbacks
}

// runs `do` and converts a panic into an error passed to the handlers.
// user code (func handlers, event callbacks) always runs inside this.
func HandleError(do func(), handlers ...any) (r any) {
	defer func() {
		if r = recover(); r != nil {
			glog.Warningf("Unexpected error: %s\n", ErrorJson(r, debug.Stack()))
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			for _, handler := range handlers {
				switch v := handler.(type) {
				case func():
					v()
				case func(error):
					v(err)
				}
			}
		}
	}()
	do()
	return
}

func ErrorJson(err any, stack []byte) string {
	stackLines := []string{}
	for _, line := range strings.Split(string(stack), "\n") {
		stackLines = append(stackLines, strings.TrimSpace(line))
	}
	errorJson, _ := json.Marshal(map[string]any{
		"error": fmt.Sprintf("%T=%v", err, err),
		"stack": stackLines,
	})
	return string(errorJson)
}

func TraceWithReturnError[R any](tag string, do func() (R, error)) (result R, returnErr error) {
	start := time.Now()
	glog.Infof("[%-8s]%s (%d)\n", "start", tag, start.UnixMilli())
	result, returnErr = do()
	end := time.Now()
	millis := float32(end.Sub(start)) / float32(time.Millisecond)
	if returnErr != nil {
		glog.Infof("[%-8s]%s (%.2fms) err = %s\n", "end", tag, millis, returnErr)
	} else {
		glog.Infof("[%-8s]%s (%.2fms)\n", "end", tag, millis)
	}
	return
}
