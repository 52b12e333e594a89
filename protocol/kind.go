// Package protocol defines the messages exchanged between a webcface member and the
// server. Every message is a numeric kind plus a string-keyed map body; each kind has
// one Go struct here whose msgpack tags are the wire keys.
package protocol

import (
	"fmt"
)

type MessageType int

// data kinds. entry, req and res kinds are derived by offset.
const (
	MessageTypeValue    MessageType = 0
	MessageTypeText     MessageType = 1
	MessageTypeView     MessageType = 3
	MessageTypeCanvas3D MessageType = 4
	MessageTypeCanvas2D MessageType = 5
	MessageTypeImage    MessageType = 6
	MessageTypeLog      MessageType = 7
)

const (
	EntryOffset MessageType = 20
	ReqOffset   MessageType = 40
	ResOffset   MessageType = 60
)

const (
	MessageTypeValueEntry    = MessageTypeValue + EntryOffset
	MessageTypeTextEntry     = MessageTypeText + EntryOffset
	MessageTypeViewEntry     = MessageTypeView + EntryOffset
	MessageTypeCanvas3DEntry = MessageTypeCanvas3D + EntryOffset
	MessageTypeCanvas2DEntry = MessageTypeCanvas2D + EntryOffset
	MessageTypeImageEntry    = MessageTypeImage + EntryOffset
	MessageTypeLogEntry      = MessageTypeLog + EntryOffset

	MessageTypeValueReq    = MessageTypeValue + ReqOffset
	MessageTypeTextReq     = MessageTypeText + ReqOffset
	MessageTypeViewReq     = MessageTypeView + ReqOffset
	MessageTypeCanvas3DReq = MessageTypeCanvas3D + ReqOffset
	MessageTypeCanvas2DReq = MessageTypeCanvas2D + ReqOffset
	MessageTypeImageReq    = MessageTypeImage + ReqOffset
	MessageTypeLogReq      = MessageTypeLog + ReqOffset

	MessageTypeValueRes    = MessageTypeValue + ResOffset
	MessageTypeTextRes     = MessageTypeText + ResOffset
	MessageTypeViewRes     = MessageTypeView + ResOffset
	MessageTypeCanvas3DRes = MessageTypeCanvas3D + ResOffset
	MessageTypeCanvas2DRes = MessageTypeCanvas2D + ResOffset
	MessageTypeImageRes    = MessageTypeImage + ResOffset
	MessageTypeLogRes      = MessageTypeLog + ResOffset
)

const (
	MessageTypeSyncInit      MessageType = 80
	MessageTypeCall          MessageType = 81
	MessageTypeCallResponse  MessageType = 82
	MessageTypeCallResult    MessageType = 83
	MessageTypeFuncInfo      MessageType = 84
	MessageTypeSync          MessageType = 87
	MessageTypeSvrVersion    MessageType = 88
	MessageTypePing          MessageType = 89
	MessageTypePingStatus    MessageType = 90
	MessageTypePingStatusReq MessageType = 91
)

var messageTypeNames = map[MessageType]string{
	MessageTypeValue:         "Value",
	MessageTypeText:          "Text",
	MessageTypeView:          "View",
	MessageTypeCanvas3D:      "Canvas3D",
	MessageTypeCanvas2D:      "Canvas2D",
	MessageTypeImage:         "Image",
	MessageTypeLog:           "Log",
	MessageTypeValueEntry:    "ValueEntry",
	MessageTypeTextEntry:     "TextEntry",
	MessageTypeViewEntry:     "ViewEntry",
	MessageTypeCanvas3DEntry: "Canvas3DEntry",
	MessageTypeCanvas2DEntry: "Canvas2DEntry",
	MessageTypeImageEntry:    "ImageEntry",
	MessageTypeLogEntry:      "LogEntry",
	MessageTypeValueReq:      "ValueReq",
	MessageTypeTextReq:       "TextReq",
	MessageTypeViewReq:       "ViewReq",
	MessageTypeCanvas3DReq:   "Canvas3DReq",
	MessageTypeCanvas2DReq:   "Canvas2DReq",
	MessageTypeImageReq:      "ImageReq",
	MessageTypeLogReq:        "LogReq",
	MessageTypeValueRes:      "ValueRes",
	MessageTypeTextRes:       "TextRes",
	MessageTypeViewRes:       "ViewRes",
	MessageTypeCanvas3DRes:   "Canvas3DRes",
	MessageTypeCanvas2DRes:   "Canvas2DRes",
	MessageTypeImageRes:      "ImageRes",
	MessageTypeLogRes:        "LogRes",
	MessageTypeSyncInit:      "SyncInit",
	MessageTypeCall:          "Call",
	MessageTypeCallResponse:  "CallResponse",
	MessageTypeCallResult:    "CallResult",
	MessageTypeFuncInfo:      "FuncInfo",
	MessageTypeSync:          "Sync",
	MessageTypeSvrVersion:    "SvrVersion",
	MessageTypePing:          "Ping",
	MessageTypePingStatus:    "PingStatus",
	MessageTypePingStatusReq: "PingStatusReq",
}

func (self MessageType) String() string {
	if name, ok := messageTypeNames[self]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", int(self))
}

func (self MessageType) Known() bool {
	_, ok := messageTypeNames[self]
	return ok
}
