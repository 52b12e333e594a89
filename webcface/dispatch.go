package webcface

import (
	"time"

	"github.com/golang/glog"

	"github.com/webcface/webcface-go/protocol"
)

type entryStore interface {
	SetEntry(member string, field string) bool
}

// applies one received batch to the stores and fires the callbacks.
// sync callbacks fire after the whole batch is applied.
func (self *clientData) onRecv(messages []protocol.Message) {
	syncMembers := []string{}

	for _, message := range messages {
		switch v := message.(type) {
		case *protocol.SvrVersion:
			self.setServerInfo(ServerInfo{
				Name:     v.ServerName,
				Version:  v.ServerVersion,
				Hostname: v.Hostname,
			}, v.MemberId)

		case *protocol.Ping:
			self.queue.Add(&protocol.Ping{})

		case *protocol.PingStatus:
			self.onPingStatus(v)

		case *protocol.Sync:
			member := self.memberNameFromId(v.MemberId)
			if member == "" {
				glog.Infof("[wcli]sync from unknown member id %d\n", v.MemberId)
				continue
			}
			self.setSyncTime(member, time.UnixMilli(v.Time))
			syncMembers = append(syncMembers, member)

		case *protocol.SyncInit:
			self.addMember(v)
			if !self.isSelf(v.MemberName) {
				for _, callback := range self.memberEntryCallbacks.Get() {
					HandleError(func() {
						callback(v.MemberName)
					})
				}
			}

		case *protocol.ValueEntry:
			self.onEntry(self.valueStore, eventValueEntry, v.Entry)
		case *protocol.TextEntry:
			self.onEntry(self.textStore, eventTextEntry, v.Entry)
		case *protocol.ViewEntry:
			self.onEntry(self.viewStore, eventViewEntry, v.Entry)
		case *protocol.Canvas2DEntry:
			self.onEntry(self.canvas2dStore, eventCanvas2DEntry, v.Entry)
		case *protocol.Canvas3DEntry:
			self.onEntry(self.canvas3dStore, eventCanvas3DEntry, v.Entry)
		case *protocol.ImageEntry:
			self.onEntry(self.imageStore, eventImageEntry, v.Entry)
		case *protocol.LogEntry:
			self.onEntry(self.logStore, eventLogEntry, v.Entry)

		case *protocol.FuncInfo:
			member := self.memberNameFromId(v.MemberId)
			if member == "" {
				glog.Infof("[wcli]func info from unknown member id %d\n", v.MemberId)
				continue
			}
			self.funcStore.SetRecv(member, v.Field, funcInfoFromProtocol(v))
			if self.funcStore.SetEntry(member, v.Field) {
				self.events.Fire(eventKey{kind: eventFuncEntry, member: member}, member, v.Field)
			}

		case *protocol.ValueRes:
			member, field := self.valueStore.GetReq(v.ReqId, v.SubField)
			if member == "" {
				self.unknownReq(v)
				continue
			}
			self.valueStore.SetRecv(member, field, v.Data)
			self.fireChange(eventValueChange, member, field)

		case *protocol.TextRes:
			member, field := self.textStore.GetReq(v.ReqId, v.SubField)
			if member == "" {
				self.unknownReq(v)
				continue
			}
			self.textStore.SetRecv(member, field, ValOf(v.Data))
			self.fireChange(eventTextChange, member, field)

		case *protocol.ViewRes:
			member, field := self.viewStore.GetReq(v.ReqId, v.SubField)
			if member == "" {
				self.unknownReq(v)
				continue
			}
			self.viewStore.ApplyDiff(member, field, viewDiffFromProtocol(v.Data, v.Ids, v.Length))
			self.fireChange(eventViewChange, member, field)

		case *protocol.Canvas2DRes:
			member, field := self.canvas2dStore.GetReq(v.ReqId, v.SubField)
			if member == "" {
				self.unknownReq(v)
				continue
			}
			self.canvas2dStore.ApplyDiff(member, field, canvas2dDiffFromProtocol(v.Data, v.Ids, v.Length, v.Width, v.Height))
			self.fireChange(eventCanvas2DChange, member, field)

		case *protocol.Canvas3DRes:
			member, field := self.canvas3dStore.GetReq(v.ReqId, v.SubField)
			if member == "" {
				self.unknownReq(v)
				continue
			}
			self.canvas3dStore.ApplyDiff(member, field, canvas3dDiffFromProtocol(v.Data, v.Ids, v.Length))
			self.fireChange(eventCanvas3DChange, member, field)

		case *protocol.ImageRes:
			member, field := self.imageStore.GetReq(v.ReqId, v.SubField)
			if member == "" {
				self.unknownReq(v)
				continue
			}
			self.imageStore.SetRecv(member, field, ImageFrame{
				Width:        v.Width,
				Height:       v.Height,
				ColorMode:    ImageColorMode(v.ColorMode),
				CompressMode: ImageCompressMode(v.CompressMode),
				Data:         v.Data,
			})
			self.fireChange(eventImageChange, member, field)

		case *protocol.LogRes:
			member, field := self.logStore.GetReq(v.ReqId, v.SubField)
			if member == "" {
				self.unknownReq(v)
				continue
			}
			lines := make([]LogLine, len(v.Lines))
			for i, line := range v.Lines {
				lines[i] = LogLine{
					Level:   line.Level,
					Time:    time.UnixMilli(line.Time),
					Message: line.Message,
				}
			}
			self.logStore.AppendRecv(member, field, lines...)
			self.fireChange(eventLogChange, member, field)

		case *protocol.Call:
			self.onCall(v)
		case *protocol.CallResponse:
			self.onCallResponse(v)
		case *protocol.CallResult:
			self.onCallResult(v)

		default:
			glog.V(LogLevelTrace).Infof("[wcli]ignore %s\n", message.MessageType())
		}
	}

	for _, member := range syncMembers {
		self.events.Fire(eventKey{kind: eventSync, member: member}, member, "")
	}
}

func (self *clientData) onEntry(store entryStore, kind eventKind, entry protocol.Entry) {
	member := self.memberNameFromId(entry.MemberId)
	if member == "" {
		glog.Infof("[wcli]entry from unknown member id %d\n", entry.MemberId)
		return
	}
	if store.SetEntry(member, entry.Field) {
		self.events.Fire(eventKey{kind: kind, member: member}, member, entry.Field)
	}
}

func (self *clientData) fireChange(kind eventKind, member string, field string) {
	self.events.Fire(eventKey{kind: kind, member: member, field: field}, member, field)
}

func (self *clientData) unknownReq(message protocol.Message) {
	glog.Infof("[wcli]%s for an unknown request id\n", message.MessageType())
}

func (self *clientData) onPingStatus(pingStatus *protocol.PingStatus) {
	members := []string{}
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()

		self.pingStatus = map[uint32]time.Duration{}
		for memberId, millis := range pingStatus.Status {
			self.pingStatus[memberId] = time.Duration(millis) * time.Millisecond
			if info, ok := self.members[memberId]; ok {
				members = append(members, info.name)
			}
		}
	}()
	for _, member := range members {
		self.events.Fire(eventKey{kind: eventPing, member: member}, member, "")
	}
}
