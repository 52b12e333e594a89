package webcface

import (
	"context"
	"sync"

	"github.com/webcface/webcface-go/protocol"
)

// the outgoing fifo of message batches for the current connection.
// nothing drains until the first sync batch of the connection is queued,
// so the server always sees the handshake first.
type messageQueue struct {
	stateLock    sync.Mutex
	batches      [][]protocol.Message
	messageCount int
	// the first sync batch of the connection has been queued
	ready bool

	monitor *Monitor
}

func newMessageQueue() *messageQueue {
	return &messageQueue{
		batches: [][]protocol.Message{},
		monitor: NewMonitor(),
	}
}

func (self *messageQueue) QueueSize() (batchCount int, messageCount int) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return len(self.batches), self.messageCount
}

func (self *messageQueue) Ready() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.ready
}

func (self *messageQueue) Add(messages ...protocol.Message) {
	if len(messages) == 0 {
		return
	}
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()

		self.batches = append(self.batches, messages)
		self.messageCount += len(messages)
	}()
	self.monitor.NotifyAll()
}

// queues the first sync batch of the connection ahead of everything else
// and opens the queue for draining
func (self *messageQueue) AddFirst(messages ...protocol.Message) {
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()

		batches := make([][]protocol.Message, 0, len(self.batches)+1)
		batches = append(batches, messages)
		batches = append(batches, self.batches...)
		self.batches = batches
		self.messageCount += len(messages)
		self.ready = true
	}()
	self.monitor.NotifyAll()
}

// drops everything queued for the previous connection
func (self *messageQueue) Reset() {
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()

		self.batches = [][]protocol.Message{}
		self.messageCount = 0
		self.ready = false
	}()
	self.monitor.NotifyAll()
}

// removes every queued message in fifo order. nil if the queue is not ready.
func (self *messageQueue) RemoveAll() []protocol.Message {
	var messages []protocol.Message
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()

		if !self.ready || len(self.batches) == 0 {
			return
		}
		messages = make([]protocol.Message, 0, self.messageCount)
		for _, batch := range self.batches {
			messages = append(messages, batch...)
		}
		self.batches = [][]protocol.Message{}
		self.messageCount = 0
	}()
	if messages != nil {
		self.monitor.NotifyAll()
	}
	return messages
}

func (self *messageQueue) NotifyChannel() chan struct{} {
	return self.monitor.NotifyChannel()
}

// blocks until nothing is left to drain or the context is done
func (self *messageQueue) WaitEmpty(ctx context.Context) error {
	for {
		notify := self.monitor.NotifyChannel()
		if batchCount, _ := self.QueueSize(); batchCount == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-notify:
		}
	}
}
