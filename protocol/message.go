package protocol

type Message interface {
	MessageType() MessageType
}

type SyncInit struct {
	MemberName string `msgpack:"M"`
	MemberId   uint32 `msgpack:"m"`
	LibName    string `msgpack:"l"`
	LibVersion string `msgpack:"v"`
	Addr       string `msgpack:"a"`
}

type SvrVersion struct {
	ServerName    string `msgpack:"n"`
	ServerVersion string `msgpack:"v"`
	// the member id the server assigned to the receiver. 0 for old servers.
	MemberId uint32 `msgpack:"m"`
	Hostname string `msgpack:"h"`
}

type Sync struct {
	MemberId uint32 `msgpack:"m"`
	// unix millis
	Time int64 `msgpack:"t"`
}

type Ping struct{}

type PingStatus struct {
	// member id -> round trip millis
	Status map[uint32]int `msgpack:"s"`
}

type PingStatusReq struct{}

// entries

type Entry struct {
	MemberId uint32 `msgpack:"m"`
	Field    string `msgpack:"f"`
}

type ValueEntry struct{ Entry }
type TextEntry struct{ Entry }
type ViewEntry struct{ Entry }
type Canvas2DEntry struct{ Entry }
type Canvas3DEntry struct{ Entry }
type ImageEntry struct{ Entry }
type LogEntry struct{ Entry }

// requests

type Req struct {
	Member string `msgpack:"M"`
	Field  string `msgpack:"f"`
	// 0 cancels the request
	ReqId uint32 `msgpack:"i"`
}

type ValueReq struct{ Req }
type TextReq struct{ Req }
type ViewReq struct{ Req }
type Canvas2DReq struct{ Req }
type Canvas3DReq struct{ Req }
type LogReq struct{ Req }

type ImageReq struct {
	Req
	Width        *int     `msgpack:"w"`
	Height       *int     `msgpack:"h"`
	ColorMode    *int     `msgpack:"l"`
	CompressMode *int     `msgpack:"p"`
	Quality      *int     `msgpack:"q"`
	FrameRate    *float64 `msgpack:"r"`
}

// value

type Value struct {
	Field string    `msgpack:"f"`
	Data  []float64 `msgpack:"d"`
}

type ValueRes struct {
	ReqId    uint32    `msgpack:"i"`
	SubField string    `msgpack:"f"`
	Data     []float64 `msgpack:"d"`
}

// text. data is a scalar (string, number or bool)

type Text struct {
	Field string `msgpack:"f"`
	Data  any    `msgpack:"d"`
}

type TextRes struct {
	ReqId    uint32 `msgpack:"i"`
	SubField string `msgpack:"f"`
	Data     any    `msgpack:"d"`
}

// view

type ViewComponent struct {
	Type          int      `msgpack:"t"`
	Text          string   `msgpack:"x"`
	OnClickMember *string  `msgpack:"L"`
	OnClickField  *string  `msgpack:"l"`
	TextRefMember *string  `msgpack:"R"`
	TextRefField  *string  `msgpack:"r"`
	TextColor     int      `msgpack:"c"`
	BgColor       int      `msgpack:"b"`
	Min           *float64 `msgpack:"im"`
	Max           *float64 `msgpack:"ix"`
	Step          *float64 `msgpack:"s"`
	Option        []any    `msgpack:"o"`
}

type View struct {
	Field  string                   `msgpack:"f"`
	Data   map[string]ViewComponent `msgpack:"d"`
	Ids    []string                 `msgpack:"I"`
	Length int                      `msgpack:"l"`
}

type ViewRes struct {
	ReqId    uint32                   `msgpack:"i"`
	SubField string                   `msgpack:"f"`
	Data     map[string]ViewComponent `msgpack:"d"`
	Ids      []string                 `msgpack:"I"`
	Length   int                      `msgpack:"l"`
}

// canvas2d

type Canvas2DComponent struct {
	Type               int       `msgpack:"t"`
	OriginPos          []float64 `msgpack:"op"`
	OriginRot          float64   `msgpack:"or"`
	Color              int       `msgpack:"c"`
	Fill               int       `msgpack:"f"`
	StrokeWidth        float64   `msgpack:"s"`
	GeometryType       *int      `msgpack:"gt"`
	GeometryProperties []float64 `msgpack:"gp"`
	OnClickMember      *string   `msgpack:"L"`
	OnClickField       *string   `msgpack:"l"`
	Text               string    `msgpack:"x"`
}

type Canvas2D struct {
	Field  string                       `msgpack:"f"`
	Width  float64                      `msgpack:"w"`
	Height float64                      `msgpack:"h"`
	Data   map[string]Canvas2DComponent `msgpack:"d"`
	Ids    []string                     `msgpack:"I"`
	Length int                          `msgpack:"l"`
}

type Canvas2DRes struct {
	ReqId    uint32                       `msgpack:"i"`
	SubField string                       `msgpack:"f"`
	Width    float64                      `msgpack:"w"`
	Height   float64                      `msgpack:"h"`
	Data     map[string]Canvas2DComponent `msgpack:"d"`
	Ids      []string                     `msgpack:"I"`
	Length   int                          `msgpack:"l"`
}

// canvas3d

type Canvas3DComponent struct {
	Type               int       `msgpack:"t"`
	OriginPos          []float64 `msgpack:"op"`
	OriginRot          []float64 `msgpack:"or"`
	Color              int       `msgpack:"c"`
	GeometryType       *int      `msgpack:"gt"`
	GeometryProperties []float64 `msgpack:"gp"`
	FieldMember        *string   `msgpack:"fm"`
	FieldName          *string   `msgpack:"ff"`
}

type Canvas3D struct {
	Field  string                       `msgpack:"f"`
	Data   map[string]Canvas3DComponent `msgpack:"d"`
	Ids    []string                     `msgpack:"I"`
	Length int                          `msgpack:"l"`
}

type Canvas3DRes struct {
	ReqId    uint32                       `msgpack:"i"`
	SubField string                       `msgpack:"f"`
	Data     map[string]Canvas3DComponent `msgpack:"d"`
	Ids      []string                     `msgpack:"I"`
	Length   int                          `msgpack:"l"`
}

// image. the payload is opaque to the client

type Image struct {
	Field        string `msgpack:"f"`
	Data         []byte `msgpack:"d"`
	Width        int    `msgpack:"w"`
	Height       int    `msgpack:"h"`
	ColorMode    int    `msgpack:"l"`
	CompressMode int    `msgpack:"p"`
}

type ImageRes struct {
	ReqId        uint32 `msgpack:"i"`
	SubField     string `msgpack:"f"`
	Data         []byte `msgpack:"d"`
	Width        int    `msgpack:"w"`
	Height       int    `msgpack:"h"`
	ColorMode    int    `msgpack:"l"`
	CompressMode int    `msgpack:"p"`
}

// log

type LogLine struct {
	Level int `msgpack:"v"`
	// unix millis
	Time    int64  `msgpack:"t"`
	Message string `msgpack:"m"`
}

type Log struct {
	Field string    `msgpack:"f"`
	Lines []LogLine `msgpack:"l"`
}

type LogRes struct {
	ReqId    uint32    `msgpack:"i"`
	SubField string    `msgpack:"f"`
	Lines    []LogLine `msgpack:"l"`
}

// func

type Arg struct {
	Name   string   `msgpack:"n"`
	Type   int      `msgpack:"t"`
	Init   any      `msgpack:"i"`
	Min    *float64 `msgpack:"m"`
	Max    *float64 `msgpack:"x"`
	Option []any    `msgpack:"o"`
}

type FuncInfo struct {
	MemberId   uint32 `msgpack:"m"`
	Field      string `msgpack:"f"`
	ReturnType int    `msgpack:"r"`
	Args       []Arg  `msgpack:"a"`
}

type Call struct {
	CallerId       uint32 `msgpack:"i"`
	CallerMemberId uint32 `msgpack:"c"`
	TargetMemberId uint32 `msgpack:"r"`
	Field          string `msgpack:"f"`
	Args           []any  `msgpack:"a"`
}

type CallResponse struct {
	CallerId       uint32 `msgpack:"i"`
	CallerMemberId uint32 `msgpack:"c"`
	Started        bool   `msgpack:"s"`
}

type CallResult struct {
	CallerId       uint32 `msgpack:"i"`
	CallerMemberId uint32 `msgpack:"c"`
	IsError        bool   `msgpack:"e"`
	Result         any    `msgpack:"r"`
}

func (self *SyncInit) MessageType() MessageType      { return MessageTypeSyncInit }
func (self *SvrVersion) MessageType() MessageType    { return MessageTypeSvrVersion }
func (self *Sync) MessageType() MessageType          { return MessageTypeSync }
func (self *Ping) MessageType() MessageType          { return MessageTypePing }
func (self *PingStatus) MessageType() MessageType    { return MessageTypePingStatus }
func (self *PingStatusReq) MessageType() MessageType { return MessageTypePingStatusReq }

func (self *ValueEntry) MessageType() MessageType    { return MessageTypeValueEntry }
func (self *TextEntry) MessageType() MessageType     { return MessageTypeTextEntry }
func (self *ViewEntry) MessageType() MessageType     { return MessageTypeViewEntry }
func (self *Canvas2DEntry) MessageType() MessageType { return MessageTypeCanvas2DEntry }
func (self *Canvas3DEntry) MessageType() MessageType { return MessageTypeCanvas3DEntry }
func (self *ImageEntry) MessageType() MessageType    { return MessageTypeImageEntry }
func (self *LogEntry) MessageType() MessageType      { return MessageTypeLogEntry }

func (self *ValueReq) MessageType() MessageType    { return MessageTypeValueReq }
func (self *TextReq) MessageType() MessageType     { return MessageTypeTextReq }
func (self *ViewReq) MessageType() MessageType     { return MessageTypeViewReq }
func (self *Canvas2DReq) MessageType() MessageType { return MessageTypeCanvas2DReq }
func (self *Canvas3DReq) MessageType() MessageType { return MessageTypeCanvas3DReq }
func (self *ImageReq) MessageType() MessageType    { return MessageTypeImageReq }
func (self *LogReq) MessageType() MessageType      { return MessageTypeLogReq }

func (self *Value) MessageType() MessageType       { return MessageTypeValue }
func (self *ValueRes) MessageType() MessageType    { return MessageTypeValueRes }
func (self *Text) MessageType() MessageType        { return MessageTypeText }
func (self *TextRes) MessageType() MessageType     { return MessageTypeTextRes }
func (self *View) MessageType() MessageType        { return MessageTypeView }
func (self *ViewRes) MessageType() MessageType     { return MessageTypeViewRes }
func (self *Canvas2D) MessageType() MessageType    { return MessageTypeCanvas2D }
func (self *Canvas2DRes) MessageType() MessageType { return MessageTypeCanvas2DRes }
func (self *Canvas3D) MessageType() MessageType    { return MessageTypeCanvas3D }
func (self *Canvas3DRes) MessageType() MessageType { return MessageTypeCanvas3DRes }
func (self *Image) MessageType() MessageType       { return MessageTypeImage }
func (self *ImageRes) MessageType() MessageType    { return MessageTypeImageRes }
func (self *Log) MessageType() MessageType         { return MessageTypeLog }
func (self *LogRes) MessageType() MessageType      { return MessageTypeLogRes }

func (self *FuncInfo) MessageType() MessageType     { return MessageTypeFuncInfo }
func (self *Call) MessageType() MessageType         { return MessageTypeCall }
func (self *CallResponse) MessageType() MessageType { return MessageTypeCallResponse }
func (self *CallResult) MessageType() MessageType   { return MessageTypeCallResult }
