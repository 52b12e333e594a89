package webcface

// subscription request ids for one store.
// ids are unique for the lifetime of the registry and never reused,
// so a late response for a canceled request cannot match a newer request.
// id 0 means "not requested".
//
// not locked. the owning store holds its lock around every call.
type RequestRegistry struct {
	selfMemberName string

	lastReqId uint32
	// member -> field -> req id
	req map[string]map[string]uint32
	// the part of `req` not yet transmitted
	reqSend map[string]map[string]uint32
}

func NewRequestRegistry(selfMemberName string) *RequestRegistry {
	return &RequestRegistry{
		selfMemberName: selfMemberName,
		lastReqId:      0,
		req:            map[string]map[string]uint32{},
		reqSend:        map[string]map[string]uint32{},
	}
}

func (self *RequestRegistry) isSelf(member string) bool {
	return member == self.selfMemberName
}

// returns the live request id for the field, allocating one if needed.
// self fields are never requested and return 0.
func (self *RequestRegistry) AddReq(member string, field string) uint32 {
	if self.isSelf(member) {
		return 0
	}
	if reqId := self.ReqId(member, field); reqId != 0 {
		return reqId
	}
	self.lastReqId += 1
	reqId := self.lastReqId
	setNested(self.req, member, field, reqId)
	setNested(self.reqSend, member, field, reqId)
	return reqId
}

func (self *RequestRegistry) ReqId(member string, field string) uint32 {
	if fields, ok := self.req[member]; ok {
		return fields[field]
	}
	return 0
}

// cancels a live request. the cancel is sent as request id 0.
func (self *RequestRegistry) RemoveReq(member string, field string) bool {
	if self.ReqId(member, field) == 0 {
		return false
	}
	setNested(self.req, member, field, 0)
	setNested(self.reqSend, member, field, 0)
	return true
}

// on the first transfer after a connect, returns every live request.
// otherwise returns and clears the requests changed since the last transfer.
func (self *RequestRegistry) Transfer(isFirst bool) map[string]map[string]uint32 {
	if isFirst {
		self.reqSend = map[string]map[string]uint32{}
		out := map[string]map[string]uint32{}
		for member, fields := range self.req {
			for field, reqId := range fields {
				if reqId != 0 {
					setNested(out, member, field, reqId)
				}
			}
		}
		return out
	}
	out := self.reqSend
	self.reqSend = map[string]map[string]uint32{}
	return out
}

// resolves a response addressed by request id to its field.
// a non empty sub field is appended to the field with a ".".
// unknown ids resolve to ("", "").
func (self *RequestRegistry) Resolve(reqId uint32, subField string) (member string, field string) {
	if reqId == 0 {
		return "", ""
	}
	for m, fields := range self.req {
		for f, id := range fields {
			if id == reqId {
				if subField != "" {
					return m, f + "." + subField
				}
				return m, f
			}
		}
	}
	return "", ""
}

func setNested[V any](m map[string]map[string]V, member string, field string, value V) {
	fields, ok := m[member]
	if !ok {
		fields = map[string]V{}
		m[member] = fields
	}
	fields[field] = value
}
