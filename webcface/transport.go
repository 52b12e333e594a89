package webcface

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

// a duplex connection that moves whole frames
type FrameConn interface {
	WriteFrame(frame []byte) error
	// blocks until the next frame. an error ends the connection.
	ReadFrame() ([]byte, error)
	Close() error
}

// a connection that can keep itself alive when idle
type pinger interface {
	Ping() error
}

// (ctx, url, settings)
type DialFunc func(ctx context.Context, url string, settings *ClientSettings) (FrameConn, error)

func ServerUrl(host string, port int) string {
	return fmt.Sprintf("ws://%s/", net.JoinHostPort(host, strconv.Itoa(port)))
}

type wsFrameConn struct {
	ws       *websocket.Conn
	settings *ClientSettings

	// gorilla allows one concurrent writer. pings come from the send goroutine
	// but close may race with it.
	writeLock sync.Mutex
}

func DialWebsocket(ctx context.Context, url string, settings *ClientSettings) (FrameConn, error) {
	dialer := &websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: settings.HandshakeTimeout,
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	conn := &wsFrameConn{
		ws:       ws,
		settings: settings,
	}
	ws.SetPongHandler(func(string) error {
		conn.extendReadDeadline()
		return nil
	})
	return conn, nil
}

func (self *wsFrameConn) extendReadDeadline() {
	if 0 < self.settings.ReadTimeout {
		self.ws.SetReadDeadline(time.Now().Add(self.settings.ReadTimeout))
	}
}

func (self *wsFrameConn) WriteFrame(frame []byte) error {
	self.writeLock.Lock()
	defer self.writeLock.Unlock()

	self.ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
	// note that for websocket a deadline timeout cannot be recovered
	return self.ws.WriteMessage(websocket.BinaryMessage, frame)
}

func (self *wsFrameConn) Ping() error {
	self.writeLock.Lock()
	defer self.writeLock.Unlock()

	return self.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(self.settings.WriteTimeout))
}

func (self *wsFrameConn) ReadFrame() ([]byte, error) {
	for {
		self.extendReadDeadline()
		messageType, message, err := self.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		switch messageType {
		case websocket.BinaryMessage:
			return message, nil
		default:
			glog.V(LogLevelTrace).Infof("[wr]other=%d\n", messageType)
		}
	}
}

func (self *wsFrameConn) Close() error {
	return self.ws.Close()
}

// paces reconnect attempts. the timeout counts from the attempt start,
// so a long lived connection reconnects immediately.
type Reconnect struct {
	startTime time.Time
	timeout   time.Duration
}

func NewReconnect(timeout time.Duration) *Reconnect {
	return &Reconnect{
		startTime: time.Now(),
		timeout:   timeout,
	}
}

func (self *Reconnect) After() <-chan time.Time {
	timeout := self.timeout - time.Since(self.startTime)
	if timeout <= 0 {
		c := make(chan time.Time)
		close(c)
		return c
	}
	return time.After(timeout)
}
