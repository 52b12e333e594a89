package webcface

import (
	"reflect"

	"github.com/webcface/webcface-go/protocol"
)

type Canvas3DComponentType int

const (
	Canvas3DComponentGeometry   Canvas3DComponentType = 0
	Canvas3DComponentRobotModel Canvas3DComponentType = 1
)

type Canvas3DComponent struct {
	// empty assigns an id from the type and position
	Id        string
	Type      Canvas3DComponentType
	OriginPos [3]float64
	// z, y, x euler angles
	OriginRot  [3]float64
	Color      ViewColor
	Geometry   *Geometry
	RobotModel *FieldRef
}

func Canvas3DGeometry(geometry Geometry, color ViewColor) Canvas3DComponent {
	return Canvas3DComponent{
		Type:     Canvas3DComponentGeometry,
		Color:    color,
		Geometry: &geometry,
	}
}

func (self Canvas3DComponent) WithId(id string) Canvas3DComponent {
	self.Id = id
	return self
}

func (self Canvas3DComponent) WithOrigin(pos [3]float64, rot [3]float64) Canvas3DComponent {
	self.OriginPos = pos
	self.OriginRot = rot
	return self
}

func canvas3dComponentEqual(a Canvas3DComponent, b Canvas3DComponent) bool {
	return reflect.DeepEqual(a, b)
}

func (self Canvas3DComponent) toProtocol() protocol.Canvas3DComponent {
	geometryType, geometryProperties := geometryToProtocol(self.Geometry)
	fieldMember, fieldName := self.RobotModel.wire()
	return protocol.Canvas3DComponent{
		Type:               int(self.Type),
		OriginPos:          self.OriginPos[:],
		OriginRot:          self.OriginRot[:],
		Color:              int(self.Color),
		GeometryType:       geometryType,
		GeometryProperties: geometryProperties,
		FieldMember:        fieldMember,
		FieldName:          fieldName,
	}
}

func canvas3dComponentFromProtocol(id string, c protocol.Canvas3DComponent) Canvas3DComponent {
	component := Canvas3DComponent{
		Id:         id,
		Type:       Canvas3DComponentType(c.Type),
		Color:      ViewColor(c.Color),
		Geometry:   geometryFromProtocol(c.GeometryType, c.GeometryProperties),
		RobotModel: newFieldRef(c.FieldMember, c.FieldName),
	}
	copy(component.OriginPos[:], c.OriginPos)
	copy(component.OriginRot[:], c.OriginRot)
	return component
}

// a 3d scene
type Canvas3D struct {
	Field
}

func (self Canvas3D) Name() string {
	return self.field
}

func (self Canvas3D) Child(name string) Canvas3D {
	return Canvas3D{self.child(name)}
}

func (self Canvas3D) Set(components ...Canvas3DComponent) error {
	if err := self.setCheck(); err != nil {
		return err
	}

	explicitIds := make([]string, len(components))
	types := make([]int, len(components))
	for i, c := range components {
		explicitIds[i] = c.Id
		types[i] = int(c.Type)
	}
	ids, err := componentIds(explicitIds, types)
	if err != nil {
		return err
	}

	list := NewComponentList[Canvas3DComponent]()
	for i, c := range components {
		c.Id = ids[i]
		list.Ids = append(list.Ids, c.Id)
		list.Components[c.Id] = c
	}
	self.data.canvas3dStore.SetSend(self.field, list)
	self.fireChange(eventCanvas3DChange)
	return nil
}

// subscribes on first read
func (self Canvas3D) TryGet() ([]Canvas3DComponent, bool) {
	list, ok := self.data.canvas3dStore.GetRecv(self.member, self.field)
	if !ok || list == nil {
		return nil, false
	}
	return list.Ordered(), true
}

func (self Canvas3D) Get() []Canvas3DComponent {
	components, ok := self.TryGet()
	if !ok {
		return []Canvas3DComponent{}
	}
	return components
}

func (self Canvas3D) Request() {
	self.data.canvas3dStore.AddReq(self.member, self.field)
}

// the callback subscribes to the field
func (self Canvas3D) OnChange(callback func(Canvas3D)) func() {
	self.Request()
	return self.onChange(eventCanvas3DChange, func(member string, field string) {
		callback(self)
	})
}

func (self Canvas3D) Free() bool {
	return self.data.canvas3dStore.UnsetRecv(self.member, self.field)
}

func canvas3dDiffToProtocol(diff *ComponentDiff[Canvas3DComponent]) map[string]protocol.Canvas3DComponent {
	out := make(map[string]protocol.Canvas3DComponent, len(diff.Diff))
	for id, c := range diff.Diff {
		out[id] = c.toProtocol()
	}
	return out
}

func canvas3dDiffFromProtocol(data map[string]protocol.Canvas3DComponent, ids []string, length int) *ComponentDiff[Canvas3DComponent] {
	diff := newComponentDiff[Canvas3DComponent](len(data), ids, length)
	for id, c := range data {
		diff.Diff[id] = canvas3dComponentFromProtocol(id, c)
	}
	return diff
}
