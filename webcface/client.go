package webcface

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

type ConnectionState int

const (
	Disconnected ConnectionState = 0
	Connecting   ConnectionState = 1
	Connected    ConnectionState = 2
)

func (self ConnectionState) String() string {
	switch self {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("unknown(%d)", int(self))
	}
}

// a member connected to a webcface server.
// the client owns the stores of every member it sees. handles returned by the
// client are valid until the client is closed.
//
// data set on the client is sent on the next `Sync`. after a reconnect the first
// `Sync` resends everything, so nothing set locally is lost across reconnects.
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc

	data     *clientData
	self     Member
	url      string
	settings *ClientSettings

	stateLock    sync.Mutex
	started      bool
	state        ConnectionState
	connectionId ConnectionId
	// the first sync of the current connection has been queued
	syncInitialized bool
	stateMonitor    *Monitor

	// serializes sync cycles so only one builds the first batch
	syncLock sync.Mutex
}

func NewClientWithDefaults(ctx context.Context, name string) *Client {
	return NewClient(ctx, name, DefaultHost, DefaultPort, DefaultClientSettings())
}

func NewClientWithConfig(ctx context.Context, config *ClientConfig) *Client {
	return NewClient(ctx, config.Name, config.Host, config.Port, config.Settings)
}

// the client does not connect until `Start`, `Sync` or `WaitConnection`.
// an empty name is an anonymous client that can read other members but
// cannot publish anything visible to them.
func NewClient(
	ctx context.Context,
	name string,
	host string,
	port int,
	settings *ClientSettings,
) *Client {
	cancelCtx, cancel := context.WithCancel(ctx)
	data := newClientData(name, settings)
	return &Client{
		ctx:          cancelCtx,
		cancel:       cancel,
		data:         data,
		self:         Member{Field{data: data, member: name}},
		url:          ServerUrl(host, port),
		settings:     settings,
		state:        Disconnected,
		stateMonitor: NewMonitor(),
	}
}

// starts the connection loop in the background. idempotent.
func (self *Client) Start() {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if self.started {
		return
	}
	select {
	case <-self.ctx.Done():
		return
	default:
	}
	self.started = true
	go self.run()
}

func (self *Client) run() {
	defer self.cancel()

	dial := self.settings.Dial
	if dial == nil {
		dial = DialWebsocket
	}

	for {
		reconnect := NewReconnect(self.settings.ReconnectTimeout)
		connectionId := NewConnectionId()
		self.setState(Connecting, connectionId)

		connect := func() (FrameConn, error) {
			dialCtx, dialCancel := context.WithTimeout(self.ctx, self.settings.HandshakeTimeout)
			defer dialCancel()
			return dial(dialCtx, self.url, self.settings)
		}

		var conn FrameConn
		var err error
		if glog.V(LogLevelTrace) {
			conn, err = TraceWithReturnError(fmt.Sprintf("[wcli]connect %s", connectionId), connect)
		} else {
			conn, err = connect()
		}
		if err != nil {
			glog.Infof("[wcli]connect error %s %s = %s\n", connectionId, self.url, err)
			self.setState(Disconnected, connectionId)
			select {
			case <-self.ctx.Done():
				return
			case <-reconnect.After():
				continue
			}
		}

		glog.V(LogLevelConnect).Infof("[wcli]connected %s %s\n", connectionId, self.url)
		reconnect = NewReconnect(self.settings.ReconnectTimeout)
		self.handle(conn, connectionId)
		glog.V(LogLevelConnect).Infof("[wcli]disconnected %s\n", connectionId)

		select {
		case <-self.ctx.Done():
			return
		case <-reconnect.After():
		}
	}
}

func (self *Client) handle(conn FrameConn, connectionId ConnectionId) {
	// whatever was queued for the previous connection is superseded by the
	// snapshot of the first sync
	self.data.queue.Reset()
	self.setState(Connected, connectionId)
	defer self.setState(Disconnected, connectionId)

	group, handleCtx := errgroup.WithContext(self.ctx)

	group.Go(func() error {
		<-handleCtx.Done()
		// unblocks the reader
		return conn.Close()
	})

	group.Go(func() error {
		for {
			notify := self.data.queue.NotifyChannel()
			if messages := self.data.queue.RemoveAll(); 0 < len(messages) {
				frame, err := EncodeFrame(messages)
				if err != nil {
					glog.Infof("[ws]%s encode error = %s\n", connectionId, err)
					continue
				}
				if err := conn.WriteFrame(frame); err != nil {
					// note that for websocket a deadline timeout cannot be recovered
					return fmt.Errorf("write: %w", err)
				}
				glog.V(LogLevelTrace).Infof("[ws]%s-> %d messages\n", connectionId, len(messages))
				continue
			}

			select {
			case <-handleCtx.Done():
				return handleCtx.Err()
			case <-notify:
			case <-time.After(self.settings.PingTimeout):
				if p, ok := conn.(pinger); ok {
					if err := p.Ping(); err != nil {
						return fmt.Errorf("ping: %w", err)
					}
				}
			}
		}
	})

	group.Go(func() error {
		for {
			frame, err := conn.ReadFrame()
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			messages, err := DecodeFrame(frame)
			if err != nil {
				glog.Infof("[wr]%s<- decode error = %s\n", connectionId, err)
				continue
			}
			glog.V(LogLevelTrace).Infof("[wr]%s<- %d messages\n", connectionId, len(messages))
			self.data.onRecv(messages)
		}
	})

	if err := group.Wait(); err != nil && self.ctx.Err() == nil {
		glog.Infof("[wcli]%s connection error = %s\n", connectionId, err)
	}
}

func (self *Client) setState(state ConnectionState, connectionId ConnectionId) {
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()

		self.state = state
		self.connectionId = connectionId
		// every transition re-arms the first sync
		self.syncInitialized = false
	}()
	self.stateMonitor.NotifyAll()
}

func (self *Client) State() ConnectionState {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.state
}

func (self *Client) Connected() bool {
	return self.State() == Connected
}

// starts the client and blocks until it is connected
func (self *Client) WaitConnection(ctx context.Context) error {
	self.Start()
	for {
		notify := self.stateMonitor.NotifyChannel()
		if self.ctx.Err() != nil {
			return fmt.Errorf("Client closed.")
		}
		if self.Connected() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-self.ctx.Done():
			return fmt.Errorf("Client closed.")
		case <-notify:
		}
	}
}

// queues everything set and requested since the last sync.
// the first sync of a connection queues the full state instead.
// this never blocks on the network. while disconnected nothing is queued and
// the changes are carried by the first sync of the next connection.
func (self *Client) Sync() {
	self.Start()

	self.syncLock.Lock()
	defer self.syncLock.Unlock()

	self.stateLock.Lock()
	connected := self.state == Connected
	isFirst := !self.syncInitialized
	connectionId := self.connectionId
	self.stateLock.Unlock()

	if !connected {
		return
	}

	messages := self.data.syncMessages(isFirst, time.Now())

	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	if self.state != Connected || self.connectionId != connectionId {
		// the connection changed while building. the next first sync resends everything.
		glog.V(LogLevelTrace).Infof("[wcli]drop sync for %s\n", connectionId)
		return
	}
	if isFirst {
		self.data.queue.AddFirst(messages...)
		self.syncInitialized = true
	} else {
		self.data.queue.Add(messages...)
	}
}

// waits up to `CloseTimeout` for queued messages to be written, then
// disconnects. a client that never connected closes immediately.
func (self *Client) Close() {
	if self.Connected() {
		waitCtx, waitCancel := context.WithTimeout(self.ctx, self.settings.CloseTimeout)
		defer waitCancel()
		if err := self.data.queue.WaitEmpty(waitCtx); err != nil {
			batchCount, messageCount := self.data.queue.QueueSize()
			glog.Infof("[wcli]close with %d batches (%d messages) unsent\n", batchCount, messageCount)
		}
	}
	self.cancel()
}

func (self *Client) Done() <-chan struct{} {
	return self.ctx.Done()
}

func (self *Client) Name() string {
	return self.data.selfMemberName
}

// the member of this client
func (self *Client) Self() Member {
	return self.self
}

func (self *Client) Member(name string) Member {
	return Member{Field{data: self.data, member: name}}
}

// the other members seen so far, in the order they joined
func (self *Client) Members() []Member {
	names := self.data.memberNames()
	members := make([]Member, len(names))
	for i, name := range names {
		members[i] = self.Member(name)
	}
	return members
}

// the callback runs for every member that connects after this is set.
// the callback runs on the receive goroutine.
func (self *Client) OnMemberEntry(callback func(Member)) func() {
	return self.data.memberEntryCallbacks.Add(func(member string) {
		callback(self.Member(member))
	})
}

func (self *Client) Value(field string) Value {
	return self.self.Value(field)
}

func (self *Client) Text(field string) Text {
	return self.self.Text(field)
}

func (self *Client) View(field string) View {
	return self.self.View(field)
}

func (self *Client) Canvas2D(field string) Canvas2D {
	return self.self.Canvas2D(field)
}

func (self *Client) Canvas3D(field string) Canvas3D {
	return self.self.Canvas3D(field)
}

func (self *Client) Image(field string) Image {
	return self.self.Image(field)
}

func (self *Client) Log(field string) Log {
	return self.self.Log(field)
}

func (self *Client) Func(field string) Func {
	return self.self.Func(field)
}

func (self *Client) AnonymousFunc(fn any, options ...FuncOption) (Func, error) {
	return self.self.AnonymousFunc(fn, options...)
}

func (self *Client) ServerName() string {
	return self.data.getServerInfo().Name
}

func (self *Client) ServerVersion() string {
	return self.data.getServerInfo().Version
}

func (self *Client) ServerHostname() string {
	return self.data.getServerInfo().Hostname
}

// queued batches and messages not yet written to the server
func (self *Client) QueueSize() (batchCount int, messageCount int) {
	return self.data.queue.QueueSize()
}
