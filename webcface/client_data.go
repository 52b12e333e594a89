package webcface

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/webcface/webcface-go/protocol"
)

type eventKind int

const (
	eventValueEntry eventKind = iota
	eventTextEntry
	eventViewEntry
	eventCanvas2DEntry
	eventCanvas3DEntry
	eventImageEntry
	eventLogEntry
	eventFuncEntry
	eventValueChange
	eventTextChange
	eventViewChange
	eventCanvas2DChange
	eventCanvas3DChange
	eventImageChange
	eventLogChange
	eventSync
	eventPing
)

// entry events are keyed by member with an empty field.
// sync and ping events are keyed by member with an empty field.
type eventKey struct {
	kind   eventKind
	member string
	field  string
}

type eventCallback = func(member string, field string)

type eventRegistry struct {
	stateLock sync.Mutex
	lists     map[eventKey]*CallbackList[eventCallback]
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{
		lists: map[eventKey]*CallbackList[eventCallback]{},
	}
}

func (self *eventRegistry) list(key eventKey) *CallbackList[eventCallback] {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	callbacks, ok := self.lists[key]
	if !ok {
		callbacks = NewCallbackList[eventCallback]()
		self.lists[key] = callbacks
	}
	return callbacks
}

func (self *eventRegistry) Add(key eventKey, callback eventCallback) func() {
	return self.list(key).Add(callback)
}

func (self *eventRegistry) Has(key eventKey) bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	callbacks, ok := self.lists[key]
	return ok && 0 < callbacks.Len()
}

// runs the callbacks of the key on the calling goroutine.
// must not be called with any store lock held.
func (self *eventRegistry) Fire(key eventKey, member string, field string) {
	self.stateLock.Lock()
	callbacks, ok := self.lists[key]
	self.stateLock.Unlock()
	if !ok {
		return
	}
	for _, callback := range callbacks.Get() {
		HandleError(func() {
			callback(member, field)
		})
	}
}

type memberInfo struct {
	name       string
	libName    string
	libVersion string
	addr       string
}

type ServerInfo struct {
	Name     string
	Version  string
	Hostname string
}

// the single owner of every store and table of one client.
// handles hold a borrowed pointer that is valid while the client lives.
type clientData struct {
	selfMemberName string
	settings       *ClientSettings

	valueStore    *KeyedStore[[]float64]
	textStore     *KeyedStore[Val]
	funcStore     *KeyedStore[*FuncInfo]
	viewStore     *DiffStore[ViewComponent]
	canvas2dStore *DiffStore[Canvas2DComponent]
	canvas3dStore *DiffStore[Canvas3DComponent]
	imageStore    *KeyedStore[ImageFrame]
	logStore      *LogStore

	promises *PromiseStore
	queue    *messageQueue
	events   *eventRegistry

	memberEntryCallbacks *CallbackList[func(member string)]

	stateLock    sync.Mutex
	selfMemberId uint32
	// member id -> info
	members   map[uint32]*memberInfo
	memberIds map[string]uint32
	syncTimes map[string]time.Time
	// member id -> round trip
	pingStatus map[uint32]time.Duration
	// ping status was requested at least once
	pingStatusReq bool
	// the ping status request is not yet transmitted on this connection
	pingStatusReqSend bool
	// member -> field -> options
	imageRequests map[string]map[string]ImageRequest
	serverInfo    ServerInfo
	anonymousId   uint64
}

func newClientData(selfMemberName string, settings *ClientSettings) *clientData {
	return &clientData{
		selfMemberName:       selfMemberName,
		settings:             settings,
		valueStore:           NewKeyedStore[[]float64](selfMemberName),
		textStore:            NewKeyedStore[Val](selfMemberName),
		funcStore:            NewKeyedStore[*FuncInfo](selfMemberName),
		viewStore:            NewDiffStore[ViewComponent](selfMemberName, viewComponentEqual),
		canvas2dStore:        NewDiffStore[Canvas2DComponent](selfMemberName, canvas2dComponentEqual),
		canvas3dStore:        NewDiffStore[Canvas3DComponent](selfMemberName, canvas3dComponentEqual),
		imageStore:           NewKeyedStore[ImageFrame](selfMemberName),
		logStore:             NewLogStore(selfMemberName, settings.KeepLogLines),
		promises:             NewPromiseStore(),
		queue:                newMessageQueue(),
		events:               newEventRegistry(),
		memberEntryCallbacks: NewCallbackList[func(string)](),
		members:              map[uint32]*memberInfo{},
		memberIds:            map[string]uint32{},
		syncTimes:            map[string]time.Time{},
		pingStatus:           map[uint32]time.Duration{},
		imageRequests:        map[string]map[string]ImageRequest{},
	}
}

func (self *clientData) isSelf(member string) bool {
	return member == self.selfMemberName
}

// 0 if the member is not known
func (self *clientData) memberIdFromName(member string) uint32 {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if self.isSelf(member) {
		return self.selfMemberId
	}
	return self.memberIds[member]
}

// "" if the member is not known
func (self *clientData) memberNameFromId(memberId uint32) string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if info, ok := self.members[memberId]; ok {
		return info.name
	}
	if memberId != 0 && memberId == self.selfMemberId {
		return self.selfMemberName
	}
	return ""
}

func (self *clientData) memberInfo(member string) (memberInfo, bool) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	memberId, ok := self.memberIds[member]
	if !ok {
		return memberInfo{}, false
	}
	info, ok := self.members[memberId]
	if !ok {
		return memberInfo{}, false
	}
	return *info, true
}

// other members in the order they joined
func (self *clientData) memberNames() []string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	memberIds := maps.Keys(self.members)
	slices.Sort(memberIds)
	names := make([]string, 0, len(memberIds))
	for _, memberId := range memberIds {
		if name := self.members[memberId].name; !self.isSelf(name) {
			names = append(names, name)
		}
	}
	return names
}

// records a joined (or re-joined) member and clears its entries
func (self *clientData) addMember(syncInit *protocol.SyncInit) {
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()

		if prevId, ok := self.memberIds[syncInit.MemberName]; ok && prevId != syncInit.MemberId {
			delete(self.members, prevId)
		}
		self.memberIds[syncInit.MemberName] = syncInit.MemberId
		self.members[syncInit.MemberId] = &memberInfo{
			name:       syncInit.MemberName,
			libName:    syncInit.LibName,
			libVersion: syncInit.LibVersion,
			addr:       syncInit.Addr,
		}
		if self.isSelf(syncInit.MemberName) {
			self.selfMemberId = syncInit.MemberId
		}
	}()

	self.valueStore.AddMember(syncInit.MemberName)
	self.textStore.AddMember(syncInit.MemberName)
	self.funcStore.AddMember(syncInit.MemberName)
	self.viewStore.AddMember(syncInit.MemberName)
	self.canvas2dStore.AddMember(syncInit.MemberName)
	self.canvas3dStore.AddMember(syncInit.MemberName)
	self.imageStore.AddMember(syncInit.MemberName)
	self.logStore.AddMember(syncInit.MemberName)
}

func (self *clientData) setSyncTime(member string, syncTime time.Time) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.syncTimes[member] = syncTime
}

func (self *clientData) syncTime(member string) (time.Time, bool) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	syncTime, ok := self.syncTimes[member]
	return syncTime, ok
}

// requests the ping status table from the server. idempotent.
func (self *clientData) requestPingStatus() {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if !self.pingStatusReq {
		self.pingStatusReq = true
		self.pingStatusReqSend = true
	}
}

func (self *clientData) pingLatency(member string) (time.Duration, bool) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	memberId, ok := self.memberIds[member]
	if !ok {
		return 0, false
	}
	latency, ok := self.pingStatus[memberId]
	return latency, ok
}

func (self *clientData) setImageRequest(member string, field string, request ImageRequest) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	setNested(self.imageRequests, member, field, request)
}

func (self *clientData) imageRequest(member string, field string) ImageRequest {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if fields, ok := self.imageRequests[member]; ok {
		return fields[field]
	}
	return ImageRequest{}
}

func (self *clientData) setServerInfo(serverInfo ServerInfo, selfMemberId uint32) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	self.serverInfo = serverInfo
	if selfMemberId != 0 {
		self.selfMemberId = selfMemberId
	}
}

func (self *clientData) getServerInfo() ServerInfo {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	return self.serverInfo
}

// a name for an anonymous func, unique within this client
func (self *clientData) nextAnonymousFuncName() string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	name := fmt.Sprintf(".tmp%d", self.anonymousId)
	self.anonymousId += 1
	return name
}
