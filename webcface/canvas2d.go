package webcface

import (
	"reflect"
	"slices"

	"github.com/webcface/webcface-go/protocol"
)

type GeometryType int

const (
	GeometryNone     GeometryType = 0
	GeometryLine     GeometryType = 1
	GeometryRect     GeometryType = 2
	GeometryBox      GeometryType = 3
	GeometryCircle   GeometryType = 4
	GeometryCylinder GeometryType = 5
	GeometrySphere   GeometryType = 6
	GeometryPolygon  GeometryType = 7
)

// a shape and its parameters. the parameter layout depends on the type and
// is passed through as is.
type Geometry struct {
	Type       GeometryType
	Properties []float64
}

func geometryToProtocol(geometry *Geometry) (*int, []float64) {
	if geometry == nil {
		return nil, nil
	}
	geometryType := int(geometry.Type)
	return &geometryType, slices.Clone(geometry.Properties)
}

func geometryFromProtocol(geometryType *int, properties []float64) *Geometry {
	if geometryType == nil {
		return nil
	}
	return &Geometry{Type: GeometryType(*geometryType), Properties: properties}
}

type Canvas2DComponentType int

const (
	Canvas2DComponentGeometry Canvas2DComponentType = 0
	Canvas2DComponentImage    Canvas2DComponentType = 1
	Canvas2DComponentText     Canvas2DComponentType = 2
)

type Canvas2DComponent struct {
	// empty assigns an id from the type and position
	Id          string
	Type        Canvas2DComponentType
	OriginPos   [2]float64
	OriginRot   float64
	Color       ViewColor
	Fill        ViewColor
	StrokeWidth float64
	Geometry    *Geometry
	OnClick     *FieldRef
	Text        string

	// bound to a hidden func of the self member on set
	onClick func()
}

func Canvas2DGeometry(geometry Geometry, color ViewColor) Canvas2DComponent {
	return Canvas2DComponent{
		Type:     Canvas2DComponentGeometry,
		Color:    color,
		Geometry: &geometry,
	}
}

func Canvas2DText(x float64, y float64, text string, color ViewColor) Canvas2DComponent {
	return Canvas2DComponent{
		Type:      Canvas2DComponentText,
		OriginPos: [2]float64{x, y},
		Color:     color,
		Text:      text,
	}
}

func (self Canvas2DComponent) WithId(id string) Canvas2DComponent {
	self.Id = id
	return self
}

func (self Canvas2DComponent) WithOrigin(x float64, y float64, rot float64) Canvas2DComponent {
	self.OriginPos = [2]float64{x, y}
	self.OriginRot = rot
	return self
}

func (self Canvas2DComponent) WithFill(fill ViewColor) Canvas2DComponent {
	self.Fill = fill
	return self
}

func (self Canvas2DComponent) WithStrokeWidth(strokeWidth float64) Canvas2DComponent {
	self.StrokeWidth = strokeWidth
	return self
}

func (self Canvas2DComponent) WithOnClick(onClick Func) Canvas2DComponent {
	self.OnClick = &FieldRef{Member: onClick.member, Field: onClick.field}
	self.onClick = nil
	return self
}

// runs a go func of this process when clicked
func (self Canvas2DComponent) WithOnClickFunc(onClick func()) Canvas2DComponent {
	self.OnClick = nil
	self.onClick = onClick
	return self
}

func canvas2dComponentEqual(a Canvas2DComponent, b Canvas2DComponent) bool {
	a.onClick = nil
	b.onClick = nil
	return reflect.DeepEqual(a, b)
}

func (self Canvas2DComponent) toProtocol() protocol.Canvas2DComponent {
	onClickMember, onClickField := self.OnClick.wire()
	geometryType, geometryProperties := geometryToProtocol(self.Geometry)
	return protocol.Canvas2DComponent{
		Type:               int(self.Type),
		OriginPos:          self.OriginPos[:],
		OriginRot:          self.OriginRot,
		Color:              int(self.Color),
		Fill:               int(self.Fill),
		StrokeWidth:        self.StrokeWidth,
		GeometryType:       geometryType,
		GeometryProperties: geometryProperties,
		OnClickMember:      onClickMember,
		OnClickField:       onClickField,
		Text:               self.Text,
	}
}

func canvas2dComponentFromProtocol(id string, c protocol.Canvas2DComponent) Canvas2DComponent {
	component := Canvas2DComponent{
		Id:          id,
		Type:        Canvas2DComponentType(c.Type),
		OriginRot:   c.OriginRot,
		Color:       ViewColor(c.Color),
		Fill:        ViewColor(c.Fill),
		StrokeWidth: c.StrokeWidth,
		Geometry:    geometryFromProtocol(c.GeometryType, c.GeometryProperties),
		OnClick:     newFieldRef(c.OnClickMember, c.OnClickField),
		Text:        c.Text,
	}
	copy(component.OriginPos[:], c.OriginPos)
	return component
}

type Canvas2DData struct {
	Width      float64
	Height     float64
	Components []Canvas2DComponent
}

// a 2d drawing of fixed size
type Canvas2D struct {
	Field
}

func (self Canvas2D) Name() string {
	return self.field
}

func (self Canvas2D) Child(name string) Canvas2D {
	return Canvas2D{self.child(name)}
}

func (self Canvas2D) Set(width float64, height float64, components ...Canvas2DComponent) error {
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

	list := NewComponentList[Canvas2DComponent]()
	list.Width = width
	list.Height = height
	for i, c := range components {
		c.Id = ids[i]
		if c.onClick != nil {
			onClick := self.Member().Func(onClickFuncName("canvas2d", self.field, c.Id))
			if err := onClick.Set(c.onClick, WithHidden()); err != nil {
				return err
			}
			c = c.WithOnClick(onClick)
		}
		list.Ids = append(list.Ids, c.Id)
		list.Components[c.Id] = c
	}
	self.data.canvas2dStore.SetSend(self.field, list)
	self.fireChange(eventCanvas2DChange)
	return nil
}

// subscribes on first read
func (self Canvas2D) TryGet() (*Canvas2DData, bool) {
	list, ok := self.data.canvas2dStore.GetRecv(self.member, self.field)
	if !ok || list == nil {
		return nil, false
	}
	return &Canvas2DData{
		Width:      list.Width,
		Height:     list.Height,
		Components: list.Ordered(),
	}, true
}

func (self Canvas2D) Get() *Canvas2DData {
	data, ok := self.TryGet()
	if !ok {
		return &Canvas2DData{Components: []Canvas2DComponent{}}
	}
	return data
}

func (self Canvas2D) Request() {
	self.data.canvas2dStore.AddReq(self.member, self.field)
}

// the callback subscribes to the field
func (self Canvas2D) OnChange(callback func(Canvas2D)) func() {
	self.Request()
	return self.onChange(eventCanvas2DChange, func(member string, field string) {
		callback(self)
	})
}

func (self Canvas2D) Free() bool {
	return self.data.canvas2dStore.UnsetRecv(self.member, self.field)
}

func canvas2dDiffToProtocol(diff *ComponentDiff[Canvas2DComponent]) map[string]protocol.Canvas2DComponent {
	out := make(map[string]protocol.Canvas2DComponent, len(diff.Diff))
	for id, c := range diff.Diff {
		out[id] = c.toProtocol()
	}
	return out
}

func canvas2dDiffFromProtocol(data map[string]protocol.Canvas2DComponent, ids []string, length int, width float64, height float64) *ComponentDiff[Canvas2DComponent] {
	diff := newComponentDiff[Canvas2DComponent](len(data), ids, length)
	diff.Width = width
	diff.Height = height
	for id, c := range data {
		diff.Diff[id] = canvas2dComponentFromProtocol(id, c)
	}
	return diff
}
