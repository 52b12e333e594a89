package webcface

import (
	"slices"

	"github.com/webcface/webcface-go/protocol"
)

type ImageColorMode int

const (
	ImageColorGray ImageColorMode = 0
	ImageColorBGR  ImageColorMode = 1
	ImageColorBGRA ImageColorMode = 2
	ImageColorRGB  ImageColorMode = 3
	ImageColorRGBA ImageColorMode = 4
)

func (self ImageColorMode) Channels() int {
	switch self {
	case ImageColorGray:
		return 1
	case ImageColorBGR, ImageColorRGB:
		return 3
	default:
		return 4
	}
}

type ImageCompressMode int

const (
	ImageCompressRaw  ImageCompressMode = 0
	ImageCompressJPEG ImageCompressMode = 1
	ImageCompressWebP ImageCompressMode = 2
	ImageCompressPNG  ImageCompressMode = 3
)

// one image. the pixel data is opaque; raw frames are row major.
type ImageFrame struct {
	Width        int
	Height       int
	ColorMode    ImageColorMode
	CompressMode ImageCompressMode
	Data         []byte
}

func (self ImageFrame) Empty() bool {
	return len(self.Data) == 0
}

// the options the server applies before forwarding frames of a field.
// nil options keep the sender's choice.
type ImageRequest struct {
	Width        *int
	Height       *int
	ColorMode    *ImageColorMode
	CompressMode *ImageCompressMode
	Quality      *int
	FrameRate    *float64
}

func (self ImageRequest) toProtocol(member string, field string, reqId uint32) *protocol.ImageReq {
	req := &protocol.ImageReq{
		Req: protocol.Req{
			Member: member,
			Field:  field,
			ReqId:  reqId,
		},
		Width:     self.Width,
		Height:    self.Height,
		Quality:   self.Quality,
		FrameRate: self.FrameRate,
	}
	if self.ColorMode != nil {
		colorMode := int(*self.ColorMode)
		req.ColorMode = &colorMode
	}
	if self.CompressMode != nil {
		compressMode := int(*self.CompressMode)
		req.CompressMode = &compressMode
	}
	return req
}

type Image struct {
	Field
}

func (self Image) Name() string {
	return self.field
}

func (self Image) Child(name string) Image {
	return Image{self.child(name)}
}

func (self Image) Set(frame ImageFrame) error {
	if err := self.setCheck(); err != nil {
		return err
	}
	frame.Data = slices.Clone(frame.Data)
	self.data.imageStore.SetSend(self.field, frame)
	self.fireChange(eventImageChange)
	return nil
}

// subscribes on first read
func (self Image) TryGet() (ImageFrame, bool) {
	return self.data.imageStore.GetRecv(self.member, self.field)
}

// an empty frame until one is received
func (self Image) Get() ImageFrame {
	frame, _ := self.TryGet()
	return frame
}

func (self Image) Request() {
	self.data.imageStore.AddReq(self.member, self.field)
}

// subscribes with conversion options. changing the options of a live
// subscription re-requests the field.
func (self Image) RequestWith(request ImageRequest) {
	if self.isSelf() {
		return
	}
	self.data.setImageRequest(self.member, self.field, request)
	if self.data.imageStore.ReqId(self.member, self.field) != 0 {
		self.data.imageStore.UnsetRecv(self.member, self.field)
	}
	self.data.imageStore.AddReq(self.member, self.field)
}

// the callback subscribes to the field
func (self Image) OnChange(callback func(Image)) func() {
	self.Request()
	return self.onChange(eventImageChange, func(member string, field string) {
		callback(self)
	})
}

func (self Image) Free() bool {
	return self.data.imageStore.UnsetRecv(self.member, self.field)
}
