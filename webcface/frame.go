package webcface

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/webcface/webcface-go/protocol"
)

// a frame is one batch of messages, encoded as the msgpack array
// [kind0, body0, kind1, body1, ...]

func NewMessage(messageType protocol.MessageType) (protocol.Message, error) {
	var message protocol.Message
	switch messageType {
	case protocol.MessageTypeSyncInit:
		message = &protocol.SyncInit{}
	case protocol.MessageTypeSvrVersion:
		message = &protocol.SvrVersion{}
	case protocol.MessageTypeSync:
		message = &protocol.Sync{}
	case protocol.MessageTypePing:
		message = &protocol.Ping{}
	case protocol.MessageTypePingStatus:
		message = &protocol.PingStatus{}
	case protocol.MessageTypePingStatusReq:
		message = &protocol.PingStatusReq{}
	case protocol.MessageTypeValue:
		message = &protocol.Value{}
	case protocol.MessageTypeText:
		message = &protocol.Text{}
	case protocol.MessageTypeView:
		message = &protocol.View{}
	case protocol.MessageTypeCanvas2D:
		message = &protocol.Canvas2D{}
	case protocol.MessageTypeCanvas3D:
		message = &protocol.Canvas3D{}
	case protocol.MessageTypeImage:
		message = &protocol.Image{}
	case protocol.MessageTypeLog:
		message = &protocol.Log{}
	case protocol.MessageTypeValueEntry:
		message = &protocol.ValueEntry{}
	case protocol.MessageTypeTextEntry:
		message = &protocol.TextEntry{}
	case protocol.MessageTypeViewEntry:
		message = &protocol.ViewEntry{}
	case protocol.MessageTypeCanvas2DEntry:
		message = &protocol.Canvas2DEntry{}
	case protocol.MessageTypeCanvas3DEntry:
		message = &protocol.Canvas3DEntry{}
	case protocol.MessageTypeImageEntry:
		message = &protocol.ImageEntry{}
	case protocol.MessageTypeLogEntry:
		message = &protocol.LogEntry{}
	case protocol.MessageTypeValueReq:
		message = &protocol.ValueReq{}
	case protocol.MessageTypeTextReq:
		message = &protocol.TextReq{}
	case protocol.MessageTypeViewReq:
		message = &protocol.ViewReq{}
	case protocol.MessageTypeCanvas2DReq:
		message = &protocol.Canvas2DReq{}
	case protocol.MessageTypeCanvas3DReq:
		message = &protocol.Canvas3DReq{}
	case protocol.MessageTypeImageReq:
		message = &protocol.ImageReq{}
	case protocol.MessageTypeLogReq:
		message = &protocol.LogReq{}
	case protocol.MessageTypeValueRes:
		message = &protocol.ValueRes{}
	case protocol.MessageTypeTextRes:
		message = &protocol.TextRes{}
	case protocol.MessageTypeViewRes:
		message = &protocol.ViewRes{}
	case protocol.MessageTypeCanvas2DRes:
		message = &protocol.Canvas2DRes{}
	case protocol.MessageTypeCanvas3DRes:
		message = &protocol.Canvas3DRes{}
	case protocol.MessageTypeImageRes:
		message = &protocol.ImageRes{}
	case protocol.MessageTypeLogRes:
		message = &protocol.LogRes{}
	case protocol.MessageTypeFuncInfo:
		message = &protocol.FuncInfo{}
	case protocol.MessageTypeCall:
		message = &protocol.Call{}
	case protocol.MessageTypeCallResponse:
		message = &protocol.CallResponse{}
	case protocol.MessageTypeCallResult:
		message = &protocol.CallResult{}
	default:
		return nil, fmt.Errorf("Unknown message type: %s", messageType)
	}
	return message, nil
}

func EncodeFrame(messages []protocol.Message) ([]byte, error) {
	pairs := make([]any, 0, 2*len(messages))
	for _, message := range messages {
		pairs = append(pairs, int(message.MessageType()), message)
	}
	return msgpack.Marshal(pairs)
}

// decodes a frame into its messages in order.
// messages of unknown kind are skipped. a malformed body drops only that message.
func DecodeFrame(b []byte) ([]protocol.Message, error) {
	var raw []msgpack.RawMessage
	if err := msgpack.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("Frame has an odd number of elements: %d", len(raw))
	}
	messages := make([]protocol.Message, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		var kind int
		if err := msgpack.Unmarshal(raw[i], &kind); err != nil {
			glog.Infof("[f]bad message kind = %s\n", err)
			continue
		}
		messageType := protocol.MessageType(kind)
		message, err := NewMessage(messageType)
		if err != nil {
			glog.V(LogLevelTrace).Infof("[f]skip %s\n", err)
			continue
		}
		if err := msgpack.Unmarshal(raw[i+1], message); err != nil {
			glog.Infof("[f]bad message body %s = %s\n", messageType, err)
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}
