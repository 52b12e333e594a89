package webcface

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/webcface/webcface-go/protocol"
)

func TestMessageQueueFirstBatch(t *testing.T) {
	queue := newMessageQueue()

	// a call queued before the handshake is held
	queue.Add(&protocol.Call{CallerId: 1})
	assert.Equal(t, queue.Ready(), false)
	assert.Equal(t, len(queue.RemoveAll()), 0)

	queue.AddFirst(&protocol.SyncInit{MemberName: "a"}, &protocol.Sync{})
	assert.Equal(t, queue.Ready(), true)
	batchCount, messageCount := queue.QueueSize()
	assert.Equal(t, batchCount, 2)
	assert.Equal(t, messageCount, 3)

	messages := queue.RemoveAll()
	assert.Equal(t, len(messages), 3)
	assert.Equal(t, messages[0].MessageType(), protocol.MessageTypeSyncInit)
	assert.Equal(t, messages[1].MessageType(), protocol.MessageTypeSync)
	assert.Equal(t, messages[2].MessageType(), protocol.MessageTypeCall)

	queue.Add(&protocol.Ping{})
	assert.Equal(t, len(queue.RemoveAll()), 1)
	assert.Equal(t, len(queue.RemoveAll()), 0)

	queue.Add(&protocol.Ping{})
	queue.Reset()
	assert.Equal(t, queue.Ready(), false)
	batchCount, _ = queue.QueueSize()
	assert.Equal(t, batchCount, 0)
}

func TestMessageQueueWaitEmpty(t *testing.T) {
	queue := newMessageQueue()
	queue.AddFirst(&protocol.Sync{})

	go func() {
		time.Sleep(10 * time.Millisecond)
		queue.RemoveAll()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Equal(t, queue.WaitEmpty(ctx), nil)

	queue.Add(&protocol.Sync{})
	shortCtx, shortCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer shortCancel()
	assert.Equal(t, queue.WaitEmpty(shortCtx), context.DeadlineExceeded)
}
