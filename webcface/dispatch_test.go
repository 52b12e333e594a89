package webcface

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/webcface/webcface-go/protocol"
)

func TestDispatchMembersAndEntries(t *testing.T) {
	data := newTestClientData("a")
	client := testMember(data, "a")

	entered := []string{}
	data.memberEntryCallbacks.Add(func(member string) {
		entered = append(entered, member)
	})
	b := testMember(data, "b")
	valueEntries := []string{}
	b.OnValueEntry(func(v Value) {
		valueEntries = append(valueEntries, v.Name())
	})
	funcEntries := []string{}
	b.OnFuncEntry(func(f Func) {
		funcEntries = append(funcEntries, f.Name())
	})

	data.onRecv([]protocol.Message{
		&protocol.SvrVersion{ServerName: "webcface", ServerVersion: "2.0.0", MemberId: 1, Hostname: "host"},
		&protocol.SyncInit{MemberName: "a", MemberId: 1, LibName: LibName},
		&protocol.SyncInit{MemberName: "b", MemberId: 2, LibName: "cpp", LibVersion: "2.0.0", Addr: "10.0.0.2"},
		&protocol.ValueEntry{Entry: protocol.Entry{MemberId: 2, Field: "x"}},
		&protocol.ValueEntry{Entry: protocol.Entry{MemberId: 2, Field: "x"}},
		&protocol.ValueEntry{Entry: protocol.Entry{MemberId: 2, Field: "y"}},
		&protocol.TextEntry{Entry: protocol.Entry{MemberId: 2, Field: "t"}},
		&protocol.FuncInfo{MemberId: 2, Field: "f", ReturnType: int(ValTypeInt), Args: []protocol.Arg{{Name: "a", Type: int(ValTypeInt)}}},
		&protocol.FuncInfo{MemberId: 2, Field: ".hidden"},
		// unknown member ids are dropped
		&protocol.ValueEntry{Entry: protocol.Entry{MemberId: 9, Field: "z"}},
	})

	assert.Equal(t, entered, []string{"b"})
	assert.Equal(t, valueEntries, []string{"x", "y"})
	assert.Equal(t, funcEntries, []string{"f", ".hidden"})

	assert.Equal(t, data.memberNames(), []string{"b"})
	assert.Equal(t, b.LibName(), "cpp")
	assert.Equal(t, b.LibVersion(), "2.0.0")
	assert.Equal(t, b.RemoteAddr(), "10.0.0.2")
	assert.Equal(t, data.getServerInfo().Hostname, "host")
	assert.Equal(t, data.memberIdFromName("a"), uint32(1))

	assert.Equal(t, len(b.Values()), 2)
	assert.Equal(t, b.Texts()[0].Name(), "t")
	funcs := b.Funcs()
	assert.Equal(t, len(funcs), 1)
	assert.Equal(t, funcs[0].ReturnType(), ValTypeInt)
	assert.Equal(t, funcs[0].Args()[0].Name, "a")
	assert.Equal(t, len(client.Values()), 0)

	// a re-joined member starts over
	data.onRecv([]protocol.Message{
		&protocol.SyncInit{MemberName: "b", MemberId: 3},
	})
	assert.Equal(t, len(b.Values()), 0)
	assert.Equal(t, data.memberIdFromName("b"), uint32(3))
	assert.Equal(t, data.memberNames(), []string{"b"})
}

func TestDispatchResponses(t *testing.T) {
	data := newTestClientData("a")
	b := testMember(data, "b")

	data.onRecv([]protocol.Message{
		&protocol.SyncInit{MemberName: "b", MemberId: 2},
	})

	_, ok := b.Value("pos").TryGet()
	assert.Equal(t, ok, false)
	valueReqId := data.valueStore.ReqId("b", "pos")
	textReqId := data.textStore.AddReq("b", "t")
	logReqId := data.logStore.AddReq("b", "default")

	changes := []string{}
	b.Value("pos.x").OnChange(func(v Value) {
		changes = append(changes, v.Name())
	})
	b.Text("t").OnChange(func(v Text) {
		changes = append(changes, v.Name())
	})

	data.onRecv([]protocol.Message{
		&protocol.ValueRes{ReqId: valueReqId, Data: []float64{1, 2}},
		&protocol.ValueRes{ReqId: valueReqId, SubField: "x", Data: []float64{1}},
		&protocol.TextRes{ReqId: textReqId, Data: "hello"},
		&protocol.LogRes{ReqId: logReqId, Lines: []protocol.LogLine{
			{Level: LogLineInfo, Time: 1000, Message: "one"},
		}},
		&protocol.LogRes{ReqId: logReqId, Lines: []protocol.LogLine{
			{Level: LogLineError, Time: 2000, Message: "two"},
		}},
		// an unknown request id is dropped
		&protocol.ValueRes{ReqId: 99, Data: []float64{3}},
	})

	assert.Equal(t, b.Value("pos").GetVec(), []float64{1, 2})
	assert.Equal(t, b.Value("pos.x").Get(), 1.0)
	assert.Equal(t, b.Text("t").Get(), "hello")
	lines := b.Log("").Get()
	assert.Equal(t, len(lines), 2)
	assert.Equal(t, lines[1].Message, "two")
	assert.Equal(t, lines[1].Time, time.UnixMilli(2000))
	assert.Equal(t, changes, []string{"pos.x", "t"})
}

func TestDispatchDiff(t *testing.T) {
	data := newTestClientData("a")
	b := testMember(data, "b")
	data.onRecv([]protocol.Message{
		&protocol.SyncInit{MemberName: "b", MemberId: 2},
	})

	b.View("v").Request()
	b.Canvas2D("c").Request()
	viewReqId := data.viewStore.ReqId("b", "v")
	canvasReqId := data.canvas2dStore.ReqId("b", "c")

	data.onRecv([]protocol.Message{
		&protocol.ViewRes{
			ReqId: viewReqId,
			Data: map[string]protocol.ViewComponent{
				"..0.0": {Type: int(ViewComponentText), Text: "a"},
				"..1.0": {Type: int(ViewComponentNewLine)},
				"..0.1": {Type: int(ViewComponentText), Text: "c"},
			},
			Ids:    []string{"..0.0", "..1.0", "..0.1"},
			Length: 3,
		},
		&protocol.Canvas2DRes{
			ReqId:  canvasReqId,
			Width:  100,
			Height: 50,
			Data: map[string]protocol.Canvas2DComponent{
				"..0.0": {Type: int(Canvas2DComponentGeometry), OriginPos: []float64{1, 2}},
			},
			Ids:    []string{"..0.0"},
			Length: 1,
		},
	})

	components := b.View("v").Get()
	assert.Equal(t, len(components), 3)
	assert.Equal(t, components[2].Text, "c")

	data.onRecv([]protocol.Message{
		&protocol.ViewRes{
			ReqId: viewReqId,
			Data: map[string]protocol.ViewComponent{
				"..0.1": {Type: int(ViewComponentText), Text: "c'"},
			},
			Ids:    []string{"..0.0", "..1.0", "..0.1"},
			Length: 3,
		},
	})
	components = b.View("v").Get()
	assert.Equal(t, components[0].Text, "a")
	assert.Equal(t, components[2].Text, "c'")

	data.onRecv([]protocol.Message{
		&protocol.ViewRes{
			ReqId:  viewReqId,
			Data:   map[string]protocol.ViewComponent{},
			Ids:    []string{"..0.0"},
			Length: 1,
		},
	})
	components = b.View("v").Get()
	assert.Equal(t, len(components), 1)
	assert.Equal(t, components[0].Text, "a")

	canvas := b.Canvas2D("c").Get()
	assert.Equal(t, canvas.Width, 100.0)
	assert.Equal(t, canvas.Height, 50.0)
	assert.Equal(t, canvas.Components[0].OriginPos, [2]float64{1, 2})
}

func TestDispatchSyncAfterBatch(t *testing.T) {
	data := newTestClientData("a")
	b := testMember(data, "b")
	data.onRecv([]protocol.Message{
		&protocol.SyncInit{MemberName: "b", MemberId: 2},
	})
	valueReqId := data.valueStore.AddReq("b", "x")

	// the sync callback sees every message of the batch, even those after the sync
	seen := []float64{}
	b.OnSync(func(m Member) {
		seen = append(seen, m.Value("x").Get())
	})
	data.onRecv([]protocol.Message{
		&protocol.Sync{MemberId: 2, Time: 5000},
		&protocol.ValueRes{ReqId: valueReqId, Data: []float64{7}},
	})
	assert.Equal(t, seen, []float64{7})
	assert.Equal(t, b.SyncTime(), time.UnixMilli(5000))
}

func TestDispatchPing(t *testing.T) {
	data := newTestClientData("a")
	b := testMember(data, "b")
	data.queue.AddFirst()
	data.onRecv([]protocol.Message{
		&protocol.SyncInit{MemberName: "b", MemberId: 2},
	})

	pinged := 0
	b.OnPing(func(m Member) {
		pinged += 1
	})
	data.onRecv([]protocol.Message{
		&protocol.Ping{},
		&protocol.PingStatus{Status: map[uint32]int{2: 15}},
	})
	assert.Equal(t, pinged, 1)
	latency, ok := b.PingStatus()
	assert.Equal(t, ok, true)
	assert.Equal(t, latency, 15*time.Millisecond)

	// the server ping is echoed
	assert.Equal(t, messageTypes(data.queue.RemoveAll()), []protocol.MessageType{protocol.MessageTypePing})
}

// moves the queued messages of a member to another member like a server would
func relay(from *clientData, fromMemberId uint32, to *clientData) []protocol.Message {
	messages := from.queue.RemoveAll()
	for _, message := range messages {
		switch v := message.(type) {
		case *protocol.Call:
			v.CallerMemberId = fromMemberId
		}
	}
	to.onRecv(messages)
	return messages
}

func newTestPair() (*clientData, *clientData) {
	a := newTestClientData("a")
	b := newTestClientData("b")
	joins := []protocol.Message{
		&protocol.SyncInit{MemberName: "a", MemberId: 1},
		&protocol.SyncInit{MemberName: "b", MemberId: 2},
	}
	a.onRecv(joins)
	b.onRecv(joins)
	a.queue.AddFirst()
	b.queue.AddFirst()
	return a, b
}

// relays until the promise is finished
func relayCall(t *testing.T, a *clientData, b *clientData, promise *Promise) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	relay(a, 1, b)
	for !promise.Finished() {
		notify := b.queue.NotifyChannel()
		if 0 < len(relay(b, 2, a)) {
			continue
		}
		select {
		case <-ctx.Done():
			t.Fatal("call did not finish")
		case <-notify:
		}
	}
}

func TestDispatchCallFound(t *testing.T) {
	a, b := newTestPair()

	err := testMember(b, "b").Func("add").Set(func(x int, y float64) int {
		return x + int(y)
	})
	assert.Equal(t, err, nil)

	promise := testMember(a, "b").Func("add").RunAsync(2, 3.9)
	reached := false
	promise.OnReach(func(p *Promise) {
		reached = p.Found()
	})
	relayCall(t, a, b, promise)

	assert.Equal(t, reached, true)
	assert.Equal(t, promise.Reached(), true)
	assert.Equal(t, promise.Found(), true)
	assert.Equal(t, promise.Finished(), true)
	assert.Equal(t, promise.IsError(), false)
	assert.Equal(t, promise.Response().Int(), int64(5))
	assert.Equal(t, a.promises.Len(), 0)
}

func TestDispatchCallNotFound(t *testing.T) {
	a, b := newTestPair()

	promise := testMember(a, "b").Func("missing").RunAsync()
	relayCall(t, a, b, promise)

	assert.Equal(t, promise.Reached(), true)
	assert.Equal(t, promise.Found(), false)
	assert.Equal(t, promise.Finished(), true)
	assert.Equal(t, promise.IsError(), true)
	assert.Equal(t, promise.Rejection(), `member("b").func("missing") is not set`)
	assert.Equal(t, a.promises.Len(), 0)
}

func TestDispatchCallArity(t *testing.T) {
	a, b := newTestPair()

	err := testMember(b, "b").Func("add").Set(func(x int, y int) int {
		return x + y
	})
	assert.Equal(t, err, nil)

	promise := testMember(a, "b").Func("add").RunAsync(1, 2, 3)
	relayCall(t, a, b, promise)

	assert.Equal(t, promise.Found(), true)
	assert.Equal(t, promise.IsError(), true)
	assert.Equal(t, promise.Rejection(), "requires 2 arguments but got 3")

	_, err = promise.Result(context.Background())
	var remote *RemoteError
	assert.Equal(t, errors.As(err, &remote), true)
}

func TestDispatchCallLocal(t *testing.T) {
	data := newTestClientData("a")
	self := testMember(data, "a")

	err := self.Func("echo").Set(func(s string) string {
		return s
	})
	assert.Equal(t, err, nil)

	result, err := self.Func("echo").Run(context.Background(), 12)
	assert.Equal(t, err, nil)
	assert.Equal(t, result.Any(), "12")

	_, err = self.Func("missing").Run(context.Background())
	var notFound *FuncNotFoundError
	assert.Equal(t, errors.As(err, &notFound), true)

	promise := self.Func("echo").RunAsync("x")
	result, err = promise.Result(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, result.String(), "x")

	// local calls never go through the server
	assert.Equal(t, data.promises.Len(), 0)
	batchCount, _ := data.queue.QueueSize()
	assert.Equal(t, batchCount, 0)
}
