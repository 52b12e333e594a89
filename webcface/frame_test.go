package webcface

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/webcface/webcface-go/protocol"
)

func TestFrameOrder(t *testing.T) {
	messages := []protocol.Message{
		&protocol.SyncInit{MemberName: "a", LibName: LibName, LibVersion: LibVersion},
		&protocol.ValueReq{Req: protocol.Req{Member: "b", Field: "x", ReqId: 1}},
		&protocol.Sync{Time: 1700000000000},
		&protocol.Value{Field: "x", Data: []float64{1, 2}},
		&protocol.Text{Field: "t", Data: "hello"},
		&protocol.Call{CallerId: 3, TargetMemberId: 2, Field: "f", Args: []any{"1", 2.5, true}},
	}
	frame, err := EncodeFrame(messages)
	assert.Equal(t, err, nil)

	decoded, err := DecodeFrame(frame)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(decoded), len(messages))
	for i, message := range messages {
		assert.Equal(t, decoded[i].MessageType(), message.MessageType())
	}

	valueReq := decoded[1].(*protocol.ValueReq)
	assert.Equal(t, valueReq.Member, "b")
	assert.Equal(t, valueReq.ReqId, uint32(1))

	call := decoded[5].(*protocol.Call)
	args := valsOf(call.Args)
	assert.Equal(t, args[0].String(), "1")
	assert.Equal(t, args[1].Float(), 2.5)
	assert.Equal(t, args[2].Bool(), true)
}

func TestFrameWireKeys(t *testing.T) {
	// bodies are maps with the short keys other clients use
	frame, err := EncodeFrame([]protocol.Message{
		&protocol.ValueReq{Req: protocol.Req{Member: "b", Field: "x", ReqId: 7}},
	})
	assert.Equal(t, err, nil)

	var raw []any
	err = msgpack.Unmarshal(frame, &raw)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(raw), 2)
	assert.Equal(t, ValOf(raw[0]).Int(), int64(protocol.MessageTypeValueReq))
	body := raw[1].(map[string]any)
	assert.Equal(t, body["M"], "b")
	assert.Equal(t, body["f"], "x")
	assert.Equal(t, ValOf(body["i"]).Int(), int64(7))
}

func TestFrameSkipsUnknown(t *testing.T) {
	frame, err := msgpack.Marshal([]any{
		999, map[string]any{"x": 1},
		int(protocol.MessageTypeSync), map[string]any{"m": 3, "t": 10},
		int(protocol.MessageTypeValue), "not a map",
		int(protocol.MessageTypePing), map[string]any{},
	})
	assert.Equal(t, err, nil)

	decoded, err := DecodeFrame(frame)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(decoded), 2)
	sync := decoded[0].(*protocol.Sync)
	assert.Equal(t, sync.MemberId, uint32(3))
	assert.Equal(t, sync.Time, int64(10))
	assert.Equal(t, decoded[1].MessageType(), protocol.MessageTypePing)

	odd, err := msgpack.Marshal([]any{int(protocol.MessageTypePing)})
	assert.Equal(t, err, nil)
	_, err = DecodeFrame(odd)
	assert.NotEqual(t, err, nil)
}
