package webcface

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/webcface/webcface-go/protocol"
)

type ViewComponentType int

const (
	ViewComponentText         ViewComponentType = 0
	ViewComponentNewLine      ViewComponentType = 1
	ViewComponentButton       ViewComponentType = 2
	ViewComponentTextInput    ViewComponentType = 3
	ViewComponentDecimalInput ViewComponentType = 4
	ViewComponentNumberInput  ViewComponentType = 5
	ViewComponentToggleInput  ViewComponentType = 6
	ViewComponentSelectInput  ViewComponentType = 7
	ViewComponentSliderInput  ViewComponentType = 8
	ViewComponentCheckInput   ViewComponentType = 9
)

type ViewColor int

const (
	ViewColorInherit ViewColor = 0
	ViewColorBlack   ViewColor = 1
	ViewColorWhite   ViewColor = 2
	ViewColorGray    ViewColor = 4
	ViewColorRed     ViewColor = 8
	ViewColorOrange  ViewColor = 9
	ViewColorYellow  ViewColor = 11
	ViewColorGreen   ViewColor = 13
	ViewColorTeal    ViewColor = 15
	ViewColorCyan    ViewColor = 16
	ViewColorBlue    ViewColor = 18
	ViewColorIndigo  ViewColor = 19
	ViewColorPurple  ViewColor = 21
	ViewColorPink    ViewColor = 23
)

// names a field of some member
type FieldRef struct {
	Member string
	Field  string
}

func newFieldRef(member *string, field *string) *FieldRef {
	if member == nil || field == nil {
		return nil
	}
	return &FieldRef{Member: *member, Field: *field}
}

func (self *FieldRef) wire() (*string, *string) {
	if self == nil {
		return nil, nil
	}
	member, field := self.Member, self.Field
	return &member, &field
}

type ViewComponent struct {
	// empty assigns an id from the type and position
	Id        string
	Type      ViewComponentType
	Text      string
	OnClick   *FieldRef
	TextRef   *FieldRef
	TextColor ViewColor
	BgColor   ViewColor
	Min       *float64
	Max       *float64
	Step      *float64
	Option    []Val

	// bound to a hidden func of the self member on set
	onClick func()
}

func ViewText(text string) ViewComponent {
	return ViewComponent{Type: ViewComponentText, Text: text}
}

func ViewNewLine() ViewComponent {
	return ViewComponent{Type: ViewComponentNewLine}
}

func ViewButton(text string, onClick Func) ViewComponent {
	return ViewComponent{
		Type:    ViewComponentButton,
		Text:    text,
		OnClick: &FieldRef{Member: onClick.member, Field: onClick.field},
	}
}

// a button that runs a go func of this process when clicked
func ViewButtonFunc(text string, onClick func()) ViewComponent {
	return ViewComponent{
		Type:    ViewComponentButton,
		Text:    text,
		onClick: onClick,
	}
}

func (self ViewComponent) WithId(id string) ViewComponent {
	self.Id = id
	return self
}

func (self ViewComponent) WithTextColor(color ViewColor) ViewComponent {
	self.TextColor = color
	return self
}

func (self ViewComponent) WithBgColor(color ViewColor) ViewComponent {
	self.BgColor = color
	return self
}

func viewComponentEqual(a ViewComponent, b ViewComponent) bool {
	a.onClick = nil
	b.onClick = nil
	return reflect.DeepEqual(a, b)
}

func (self ViewComponent) toProtocol() protocol.ViewComponent {
	onClickMember, onClickField := self.OnClick.wire()
	textRefMember, textRefField := self.TextRef.wire()
	var option []any
	if 0 < len(self.Option) {
		option = wireVals(self.Option)
	}
	return protocol.ViewComponent{
		Type:          int(self.Type),
		Text:          self.Text,
		OnClickMember: onClickMember,
		OnClickField:  onClickField,
		TextRefMember: textRefMember,
		TextRefField:  textRefField,
		TextColor:     int(self.TextColor),
		BgColor:       int(self.BgColor),
		Min:           self.Min,
		Max:           self.Max,
		Step:          self.Step,
		Option:        option,
	}
}

func viewComponentFromProtocol(id string, c protocol.ViewComponent) ViewComponent {
	var option []Val
	if 0 < len(c.Option) {
		option = valsOf(c.Option)
	}
	return ViewComponent{
		Id:        id,
		Type:      ViewComponentType(c.Type),
		Text:      c.Text,
		OnClick:   newFieldRef(c.OnClickMember, c.OnClickField),
		TextRef:   newFieldRef(c.TextRefMember, c.TextRefField),
		TextColor: ViewColor(c.TextColor),
		BgColor:   ViewColor(c.BgColor),
		Min:       c.Min,
		Max:       c.Max,
		Step:      c.Step,
		Option:    option,
	}
}

// assigns `..<type>.<n>` to components without an explicit id, where n counts
// the earlier components of the same type. ids must be unique.
func componentIds(explicitIds []string, types []int) ([]string, error) {
	ids := make([]string, len(explicitIds))
	seen := map[string]bool{}
	typeCounts := map[int]int{}
	for i, id := range explicitIds {
		if id == "" {
			id = fmt.Sprintf("..%d.%d", types[i], typeCounts[types[i]])
		}
		typeCounts[types[i]] += 1
		if seen[id] {
			return nil, fmt.Errorf("duplicate component id %q", id)
		}
		seen[id] = true
		ids[i] = id
	}
	return ids, nil
}

// the hidden func name that a go click handler of a component is bound to
func onClickFuncName(kind string, field string, id string) string {
	return fmt.Sprintf("..%s/%s/%s", kind, field, id)
}

// a tree of ui components
type View struct {
	Field
}

func (self View) Name() string {
	return self.field
}

func (self View) Child(name string) View {
	return View{self.child(name)}
}

// replaces the components. items are `ViewComponent`s, strings (a "\n" is a
// new line) or any other value, which is shown as text.
func (self View) Set(items ...any) error {
	if err := self.setCheck(); err != nil {
		return err
	}

	components := []ViewComponent{}
	for _, item := range items {
		switch v := item.(type) {
		case ViewComponent:
			components = append(components, v)
		case string:
			lines := strings.Split(v, "\n")
			for i, line := range lines {
				if 0 < i {
					components = append(components, ViewNewLine())
				}
				if line != "" {
					components = append(components, ViewText(line))
				}
			}
		default:
			components = append(components, ViewText(ValOf(v).String()))
		}
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

	list := NewComponentList[ViewComponent]()
	for i, c := range components {
		c.Id = ids[i]
		if c.onClick != nil {
			onClick := self.Member().Func(onClickFuncName("view", self.field, c.Id))
			if err := onClick.Set(c.onClick, WithHidden()); err != nil {
				return err
			}
			c.OnClick = &FieldRef{Member: onClick.member, Field: onClick.field}
			c.onClick = nil
		}
		list.Ids = append(list.Ids, c.Id)
		list.Components[c.Id] = c
	}
	self.data.viewStore.SetSend(self.field, list)
	self.fireChange(eventViewChange)
	return nil
}

// subscribes on first read
func (self View) TryGet() ([]ViewComponent, bool) {
	list, ok := self.data.viewStore.GetRecv(self.member, self.field)
	if !ok || list == nil {
		return nil, false
	}
	return list.Ordered(), true
}

func (self View) Get() []ViewComponent {
	components, ok := self.TryGet()
	if !ok {
		return []ViewComponent{}
	}
	return components
}

// the func a received button runs
func (self View) OnClickFunc(component ViewComponent) (Func, bool) {
	if component.OnClick == nil {
		return Func{}, false
	}
	return Func{Field{data: self.data, member: component.OnClick.Member, field: component.OnClick.Field}}, true
}

func (self View) Request() {
	self.data.viewStore.AddReq(self.member, self.field)
}

// the callback subscribes to the field
func (self View) OnChange(callback func(View)) func() {
	self.Request()
	return self.onChange(eventViewChange, func(member string, field string) {
		callback(self)
	})
}

func (self View) Free() bool {
	return self.data.viewStore.UnsetRecv(self.member, self.field)
}

func viewDiffToProtocol(diff *ComponentDiff[ViewComponent]) map[string]protocol.ViewComponent {
	out := make(map[string]protocol.ViewComponent, len(diff.Diff))
	for id, c := range diff.Diff {
		out[id] = c.toProtocol()
	}
	return out
}

func viewDiffFromProtocol(data map[string]protocol.ViewComponent, ids []string, length int) *ComponentDiff[ViewComponent] {
	diff := newComponentDiff[ViewComponent](len(data), ids, length)
	for id, c := range data {
		diff.Diff[id] = viewComponentFromProtocol(id, c)
	}
	return diff
}
