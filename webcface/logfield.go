package webcface

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"
)

const DefaultLogField = "default"

// log line levels
const (
	LogLineDebug    = 0
	LogLineInfo     = 2
	LogLineWarning  = 3
	LogLineError    = 4
	LogLineCritical = 5
)

// an append only list of log lines
type Log struct {
	Field
}

func (self Log) Name() string {
	return self.field
}

func (self Log) Append(level int, message string) error {
	return self.AppendLines(LogLine{
		Level:   level,
		Time:    time.Now(),
		Message: message,
	})
}

func (self Log) AppendLines(lines ...LogLine) error {
	if err := self.setCheck(); err != nil {
		return err
	}
	self.data.logStore.AppendSend(self.field, lines...)
	self.fireChange(eventLogChange)
	return nil
}

// subscribes on first read
func (self Log) TryGet() ([]LogLine, bool) {
	return self.data.logStore.GetRecv(self.member, self.field)
}

func (self Log) Get() []LogLine {
	lines, ok := self.TryGet()
	if !ok {
		return []LogLine{}
	}
	return lines
}

// forgets the lines received so far. the subscription is kept.
func (self Log) Clear() {
	self.data.logStore.Clear(self.member, self.field)
}

func (self Log) Request() {
	self.data.logStore.AddReq(self.member, self.field)
}

// the callback subscribes to the field
func (self Log) OnChange(callback func(Log)) func() {
	self.Request()
	return self.onChange(eventLogChange, func(member string, field string) {
		callback(self)
	})
}

func (self Log) Free() bool {
	return self.data.logStore.UnsetRecv(self.member, self.field)
}

// a writer that appends every complete line at the level.
// a trailing partial line is held until its newline arrives.
func (self Log) Writer(level int) io.Writer {
	return &logWriter{
		log:   self,
		level: level,
	}
}

type logWriter struct {
	log   Log
	level int

	stateLock sync.Mutex
	buffer    bytes.Buffer
}

func (self *logWriter) Write(p []byte) (int, error) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.buffer.Write(p)
	now := time.Now()
	lines := []LogLine{}
	for {
		i := bytes.IndexByte(self.buffer.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(self.buffer.Next(i + 1))
		lines = append(lines, LogLine{
			Level:   self.level,
			Time:    now,
			Message: strings.TrimRight(line, "\r\n"),
		})
	}
	if 0 < len(lines) {
		if err := self.log.AppendLines(lines...); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
