package webcface

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/webcface/webcface-go/protocol"
)

var errTestPipeClosed = errors.New("pipe closed")

// one end of an in memory frame connection.
// closing either end closes both.
type testPipeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   *sync.Once
}

func newTestPipe() (*testPipeConn, *testPipeConn) {
	a := make(chan []byte, 64)
	b := make(chan []byte, 64)
	closed := make(chan struct{})
	once := &sync.Once{}
	return &testPipeConn{in: a, out: b, closed: closed, once: once},
		&testPipeConn{in: b, out: a, closed: closed, once: once}
}

func (self *testPipeConn) WriteFrame(frame []byte) error {
	select {
	case <-self.closed:
		return errTestPipeClosed
	case self.out <- frame:
		return nil
	}
}

func (self *testPipeConn) ReadFrame() ([]byte, error) {
	select {
	case <-self.closed:
		return nil, errTestPipeClosed
	case frame := <-self.in:
		return frame, nil
	}
}

func (self *testPipeConn) Close() error {
	self.once.Do(func() {
		close(self.closed)
	})
	return nil
}

type testHubMember struct {
	id       uint32
	syncInit *protocol.SyncInit
	conn     *testPipeConn
	// (member, field) -> req id
	valueReqs map[[2]string]uint32
	textReqs  map[[2]string]uint32
}

// a minimal server that routes messages between the members connected to it
type testHub struct {
	stateLock    sync.Mutex
	refuse       bool
	dialCount    int
	nextMemberId uint32
	conns        map[*testHubMember]bool
	members      map[uint32]*testHubMember
	// member name -> field -> data
	values map[string]map[string][]float64
	texts  map[string]map[string]any
	funcs  map[string]map[string]*protocol.FuncInfo
}

func newTestHub() *testHub {
	return &testHub{
		conns:   map[*testHubMember]bool{},
		members: map[uint32]*testHubMember{},
		values:  map[string]map[string][]float64{},
		texts:   map[string]map[string]any{},
		funcs:   map[string]map[string]*protocol.FuncInfo{},
	}
}

func (self *testHub) Dial(ctx context.Context, url string, settings *ClientSettings) (FrameConn, error) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.dialCount += 1
	if self.refuse {
		return nil, errors.New("connection refused")
	}
	clientConn, serverConn := newTestPipe()
	m := &testHubMember{
		conn:      serverConn,
		valueReqs: map[[2]string]uint32{},
		textReqs:  map[[2]string]uint32{},
	}
	self.conns[m] = true
	go self.serve(m)
	return clientConn, nil
}

func (self *testHub) DialCount() int {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.dialCount
}

func (self *testHub) DisconnectAll() {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	for m := range self.conns {
		m.conn.Close()
	}
}

func (self *testHub) serve(m *testHubMember) {
	defer func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		delete(self.conns, m)
		if current, ok := self.members[m.id]; ok && current == m {
			delete(self.members, m.id)
		}
	}()
	defer m.conn.Close()

	for {
		frame, err := m.conn.ReadFrame()
		if err != nil {
			return
		}
		messages, err := DecodeFrame(frame)
		if err != nil {
			return
		}
		func() {
			self.stateLock.Lock()
			defer self.stateLock.Unlock()
			for _, message := range messages {
				self.handle(m, message)
			}
		}()
	}
}

func (self *testHub) send(to *testHubMember, messages ...protocol.Message) {
	frame, err := EncodeFrame(messages)
	if err != nil {
		panic(err)
	}
	to.conn.WriteFrame(frame)
}

func (self *testHub) others(m *testHubMember) []*testHubMember {
	out := []*testHubMember{}
	for _, other := range self.members {
		if other != m {
			out = append(out, other)
		}
	}
	return out
}

func (self *testHub) handle(m *testHubMember, message protocol.Message) {
	switch v := message.(type) {
	case *protocol.SyncInit:
		self.nextMemberId += 1
		m.id = self.nextMemberId
		v.MemberId = m.id
		m.syncInit = v
		// a new connection resends everything
		delete(self.values, v.MemberName)
		delete(self.texts, v.MemberName)
		delete(self.funcs, v.MemberName)

		replies := []protocol.Message{&protocol.SvrVersion{
			ServerName:    "testhub",
			ServerVersion: "1.0.0",
			MemberId:      m.id,
			Hostname:      "hub",
		}}
		for _, other := range self.others(m) {
			name := other.syncInit.MemberName
			replies = append(replies, other.syncInit)
			for field := range self.values[name] {
				replies = append(replies, &protocol.ValueEntry{Entry: protocol.Entry{MemberId: other.id, Field: field}})
			}
			for field := range self.texts[name] {
				replies = append(replies, &protocol.TextEntry{Entry: protocol.Entry{MemberId: other.id, Field: field}})
			}
			for _, info := range self.funcs[name] {
				replies = append(replies, info)
			}
		}
		self.send(m, replies...)
		for _, other := range self.others(m) {
			self.send(other, v)
		}
		self.members[m.id] = m

	case *protocol.Sync:
		v.MemberId = m.id
		for _, other := range self.others(m) {
			self.send(other, v)
		}

	case *protocol.Value:
		name := m.syncInit.MemberName
		if _, ok := self.values[name][v.Field]; !ok {
			for _, other := range self.others(m) {
				self.send(other, &protocol.ValueEntry{Entry: protocol.Entry{MemberId: m.id, Field: v.Field}})
			}
		}
		setNested(self.values, name, v.Field, v.Data)
		for _, other := range self.members {
			if reqId, ok := other.valueReqs[[2]string{name, v.Field}]; ok {
				self.send(other, &protocol.ValueRes{ReqId: reqId, Data: v.Data})
			}
		}

	case *protocol.Text:
		name := m.syncInit.MemberName
		if _, ok := self.texts[name][v.Field]; !ok {
			for _, other := range self.others(m) {
				self.send(other, &protocol.TextEntry{Entry: protocol.Entry{MemberId: m.id, Field: v.Field}})
			}
		}
		setNested(self.texts, name, v.Field, v.Data)
		for _, other := range self.members {
			if reqId, ok := other.textReqs[[2]string{name, v.Field}]; ok {
				self.send(other, &protocol.TextRes{ReqId: reqId, Data: v.Data})
			}
		}

	case *protocol.FuncInfo:
		v.MemberId = m.id
		setNested(self.funcs, m.syncInit.MemberName, v.Field, v)
		for _, other := range self.others(m) {
			self.send(other, v)
		}

	case *protocol.ValueReq:
		key := [2]string{v.Member, v.Field}
		if v.ReqId == 0 {
			delete(m.valueReqs, key)
			return
		}
		m.valueReqs[key] = v.ReqId
		if data, ok := self.values[v.Member][v.Field]; ok {
			self.send(m, &protocol.ValueRes{ReqId: v.ReqId, Data: data})
		}

	case *protocol.TextReq:
		key := [2]string{v.Member, v.Field}
		if v.ReqId == 0 {
			delete(m.textReqs, key)
			return
		}
		m.textReqs[key] = v.ReqId
		if data, ok := self.texts[v.Member][v.Field]; ok {
			self.send(m, &protocol.TextRes{ReqId: v.ReqId, Data: data})
		}

	case *protocol.Call:
		v.CallerMemberId = m.id
		target, ok := self.members[v.TargetMemberId]
		if !ok {
			self.send(m, &protocol.CallResponse{
				CallerId:       v.CallerId,
				CallerMemberId: m.id,
				Started:        false,
			})
			return
		}
		self.send(target, v)

	case *protocol.CallResponse:
		if caller, ok := self.members[v.CallerMemberId]; ok {
			self.send(caller, v)
		}

	case *protocol.CallResult:
		if caller, ok := self.members[v.CallerMemberId]; ok {
			self.send(caller, v)
		}
	}
}

func newTestClient(t *testing.T, hub *testHub, name string) *Client {
	settings := DefaultClientSettings()
	settings.ReconnectTimeout = 10 * time.Millisecond
	settings.CloseTimeout = 100 * time.Millisecond
	settings.Dial = hub.Dial
	client := NewClient(context.Background(), name, DefaultHost, DefaultPort, settings)
	t.Cleanup(client.Close)
	return client
}

// syncs the clients until the condition holds
func syncUntil(t *testing.T, condition func() bool, clients ...*Client) {
	deadline := time.Now().Add(5 * time.Second)
	for !condition() {
		if deadline.Before(time.Now()) {
			t.Fatal("timed out")
		}
		for _, client := range clients {
			client.Sync()
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClientWaitConnection(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(t, hub, "a")
	assert.Equal(t, client.State(), Disconnected)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Equal(t, client.WaitConnection(ctx), nil)
	assert.Equal(t, client.Connected(), true)
	assert.Equal(t, hub.DialCount(), 1)

	syncUntil(t, func() bool {
		return client.ServerName() == "testhub"
	}, client)
	assert.Equal(t, client.ServerVersion(), "1.0.0")
	assert.Equal(t, client.ServerHostname(), "hub")

	client.Close()
	<-client.Done()
	assert.NotEqual(t, client.WaitConnection(ctx), nil)
}

func TestClientConnectRefused(t *testing.T) {
	hub := newTestHub()
	hub.refuse = true
	client := newTestClient(t, hub, "a")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.Equal(t, client.WaitConnection(ctx), context.DeadlineExceeded)
	assert.Equal(t, client.Connected(), false)
	// retried at the reconnect interval
	assert.NotEqual(t, hub.DialCount(), 1)

	// a sync while disconnected queues nothing
	assert.Equal(t, client.Value("x").Set(1), nil)
	client.Sync()
	batchCount, _ := client.QueueSize()
	assert.Equal(t, batchCount, 0)
}

func TestClientValueRoundTrip(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(t, hub, "a")
	b := newTestClient(t, hub, "b")

	joined := make(chan string, 1)
	b.OnMemberEntry(func(m Member) {
		select {
		case joined <- m.Name():
		default:
		}
	})

	assert.Equal(t, a.Value("x").Set(5), nil)
	assert.Equal(t, a.Text("t").Set("hello"), nil)

	syncUntil(t, func() bool {
		v, ok := b.Member("a").Value("x").TryGet()
		return ok && v == 5
	}, a, b)
	assert.Equal(t, <-joined, "a")

	syncUntil(t, func() bool {
		return b.Member("a").Text("t").Get() == "hello"
	}, a, b)

	// only changes travel after the first sync
	assert.Equal(t, a.Value("x").Set(6), nil)
	syncUntil(t, func() bool {
		return b.Member("a").Value("x").Get() == 6
	}, a, b)

	members := b.Members()
	assert.Equal(t, len(members), 1)
	assert.Equal(t, members[0].Name(), "a")
	assert.Equal(t, members[0].LibName(), LibName)
	assert.Equal(t, len(members[0].Values()), 1)
}

func TestClientCall(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(t, hub, "a")
	b := newTestClient(t, hub, "b")

	assert.Equal(t, b.Func("add").Set(func(x int, y int) int {
		return x + y
	}), nil)

	syncUntil(t, func() bool {
		return a.Member("b").Func("add").Exists()
	}, a, b)
	assert.Equal(t, a.Member("b").Func("add").ReturnType(), ValTypeInt)
	assert.Equal(t, len(a.Member("b").Func("add").Args()), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := a.Member("b").Func("add").Run(ctx, 1, 2)
	assert.Equal(t, err, nil)
	assert.Equal(t, result.Int(), int64(3))

	promise := a.Member("b").Func("add").RunAsync(1, 2, 3)
	_, err = promise.Result(ctx)
	var remote *RemoteError
	assert.Equal(t, errors.As(err, &remote), true)
	assert.Equal(t, promise.Found(), true)
	assert.Equal(t, promise.Rejection(), "requires 2 arguments but got 3")

	// the member exists but the func does not
	promise = a.Member("b").Func("missing").RunAsync()
	_, err = promise.Result(ctx)
	var notFound *FuncNotFoundError
	assert.Equal(t, errors.As(err, &notFound), true)
	assert.Equal(t, promise.Rejection(), `member("b").func("missing") is not set`)

	// the member does not exist
	promise = a.Member("z").Func("f").RunAsync()
	assert.Equal(t, promise.WaitFinish(ctx), nil)
	assert.Equal(t, promise.Found(), false)
}

func TestClientReconnect(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(t, hub, "a")
	b := newTestClient(t, hub, "b")

	assert.Equal(t, a.Value("x").Set(1), nil)
	syncUntil(t, func() bool {
		return b.Member("a").Value("x").Get() == 1
	}, a, b)

	hub.DisconnectAll()
	// set while the connection is down or coming back
	assert.Equal(t, a.Value("x").Set(2), nil)

	syncUntil(t, func() bool {
		return b.Member("a").Value("x").Get() == 2
	}, a, b)
	assert.Equal(t, 4 <= hub.DialCount(), true)
	assert.Equal(t, a.Connected(), true)
}
