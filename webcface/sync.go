package webcface

import (
	"slices"
	"time"

	"golang.org/x/exp/maps"

	"github.com/webcface/webcface-go/protocol"
)

// builds the batch of one sync cycle.
// the first batch of a connection starts with the handshake and carries the
// full self state and every live request. later batches carry only what
// changed since the previous batch.
func (self *clientData) syncMessages(isFirst bool, now time.Time) []protocol.Message {
	messages := []protocol.Message{}

	sendPingStatusReq := func() bool {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		send := self.pingStatusReqSend || (isFirst && self.pingStatusReq)
		self.pingStatusReqSend = false
		return send
	}()

	if isFirst {
		messages = append(messages, &protocol.SyncInit{
			MemberName: self.selfMemberName,
			LibName:    self.settings.LibName,
			LibVersion: self.settings.LibVersion,
		})
	}
	if sendPingStatusReq {
		messages = append(messages, &protocol.PingStatusReq{})
	}

	forEachReq(self.valueStore.TransferReq(isFirst), func(member string, field string, reqId uint32) {
		messages = append(messages, &protocol.ValueReq{Req: protocol.Req{Member: member, Field: field, ReqId: reqId}})
	})
	forEachReq(self.textStore.TransferReq(isFirst), func(member string, field string, reqId uint32) {
		messages = append(messages, &protocol.TextReq{Req: protocol.Req{Member: member, Field: field, ReqId: reqId}})
	})
	forEachReq(self.viewStore.TransferReq(isFirst), func(member string, field string, reqId uint32) {
		messages = append(messages, &protocol.ViewReq{Req: protocol.Req{Member: member, Field: field, ReqId: reqId}})
	})
	forEachReq(self.canvas2dStore.TransferReq(isFirst), func(member string, field string, reqId uint32) {
		messages = append(messages, &protocol.Canvas2DReq{Req: protocol.Req{Member: member, Field: field, ReqId: reqId}})
	})
	forEachReq(self.canvas3dStore.TransferReq(isFirst), func(member string, field string, reqId uint32) {
		messages = append(messages, &protocol.Canvas3DReq{Req: protocol.Req{Member: member, Field: field, ReqId: reqId}})
	})
	forEachReq(self.imageStore.TransferReq(isFirst), func(member string, field string, reqId uint32) {
		messages = append(messages, self.imageRequest(member, field).toProtocol(member, field, reqId))
	})
	forEachReq(self.logStore.TransferReq(isFirst), func(member string, field string, reqId uint32) {
		messages = append(messages, &protocol.LogReq{Req: protocol.Req{Member: member, Field: field, ReqId: reqId}})
	})

	messages = append(messages, &protocol.Sync{Time: now.UnixMilli()})

	forEachField(self.valueStore.TransferSend(isFirst), func(field string, value []float64) {
		messages = append(messages, &protocol.Value{Field: field, Data: value})
	})
	forEachField(self.textStore.TransferSend(isFirst), func(field string, value Val) {
		messages = append(messages, &protocol.Text{Field: field, Data: value.Any()})
	})
	forEachField(self.viewStore.TransferDiff(isFirst), func(field string, diff *ComponentDiff[ViewComponent]) {
		messages = append(messages, &protocol.View{
			Field:  field,
			Data:   viewDiffToProtocol(diff),
			Ids:    diff.Ids,
			Length: diff.Length,
		})
	})
	forEachField(self.canvas2dStore.TransferDiff(isFirst), func(field string, diff *ComponentDiff[Canvas2DComponent]) {
		messages = append(messages, &protocol.Canvas2D{
			Field:  field,
			Width:  diff.Width,
			Height: diff.Height,
			Data:   canvas2dDiffToProtocol(diff),
			Ids:    diff.Ids,
			Length: diff.Length,
		})
	})
	forEachField(self.canvas3dStore.TransferDiff(isFirst), func(field string, diff *ComponentDiff[Canvas3DComponent]) {
		messages = append(messages, &protocol.Canvas3D{
			Field:  field,
			Data:   canvas3dDiffToProtocol(diff),
			Ids:    diff.Ids,
			Length: diff.Length,
		})
	})
	forEachField(self.imageStore.TransferSend(isFirst), func(field string, frame ImageFrame) {
		messages = append(messages, &protocol.Image{
			Field:        field,
			Data:         frame.Data,
			Width:        frame.Width,
			Height:       frame.Height,
			ColorMode:    int(frame.ColorMode),
			CompressMode: int(frame.CompressMode),
		})
	})
	forEachField(self.logStore.TransferLines(isFirst), func(field string, lines []LogLine) {
		protocolLines := make([]protocol.LogLine, len(lines))
		for i, line := range lines {
			protocolLines[i] = protocol.LogLine{
				Level:   line.Level,
				Time:    line.Time.UnixMilli(),
				Message: line.Message,
			}
		}
		messages = append(messages, &protocol.Log{Field: field, Lines: protocolLines})
	})
	forEachField(self.funcStore.TransferSend(isFirst), func(field string, info *FuncInfo) {
		if info == nil || info.Hidden || isHiddenName(field) {
			return
		}
		messages = append(messages, info.toProtocol(field))
	})

	return messages
}

// in field order so batches are deterministic
func forEachField[T any](values map[string]T, callback func(field string, value T)) {
	fields := maps.Keys(values)
	slices.Sort(fields)
	for _, field := range fields {
		callback(field, values[field])
	}
}

func forEachReq(reqs map[string]map[string]uint32, callback func(member string, field string, reqId uint32)) {
	members := maps.Keys(reqs)
	slices.Sort(members)
	for _, member := range members {
		forEachField(reqs[member], func(field string, reqId uint32) {
			callback(member, field, reqId)
		})
	}
}
