package webcface

import (
	"slices"
	"strconv"
	"strings"
)

// an ordered collection of components with stable ids.
// `Ids` is the render order.
type ComponentList[C any] struct {
	Ids        []string
	Components map[string]C
	// canvas2d only
	Width  float64
	Height float64
}

func NewComponentList[C any]() *ComponentList[C] {
	return &ComponentList[C]{
		Ids:        []string{},
		Components: map[string]C{},
	}
}

func (self *ComponentList[C]) Len() int {
	return len(self.Ids)
}

// components in render order
func (self *ComponentList[C]) Ordered() []C {
	out := make([]C, 0, len(self.Ids))
	for _, id := range self.Ids {
		if c, ok := self.Components[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (self *ComponentList[C]) clone() *ComponentList[C] {
	components := make(map[string]C, len(self.Components))
	for id, c := range self.Components {
		components[id] = c
	}
	return &ComponentList[C]{
		Ids:        slices.Clone(self.Ids),
		Components: components,
		Width:      self.Width,
		Height:     self.Height,
	}
}

// the wire form of one incremental update.
// `Diff` holds only new or changed components. `Ids` and `Length` are
// authoritative; removals are signaled only by `Length` shrinking.
type ComponentDiff[C any] struct {
	Diff   map[string]C
	Ids    []string
	Length int
	Width  float64
	Height float64
}

// a received diff. an id list without a length (old peers) implies the length.
func newComponentDiff[C any](size int, ids []string, length int) *ComponentDiff[C] {
	if length == 0 && ids != nil {
		length = len(ids)
	}
	return &ComponentDiff[C]{
		Diff:   make(map[string]C, size),
		Ids:    ids,
		Length: length,
	}
}

// a keyed store of component lists with component level diffs
type DiffStore[C any] struct {
	*KeyedStore[*ComponentList[C]]

	equal func(a C, b C) bool
	// field -> last transmitted list. the diff baseline.
	lastSent map[string]*ComponentList[C]
}

func NewDiffStore[C any](selfMemberName string, equal func(a C, b C) bool) *DiffStore[C] {
	return &DiffStore[C]{
		KeyedStore: NewKeyedStore[*ComponentList[C]](selfMemberName),
		equal:      equal,
		lastSent:   map[string]*ComponentList[C]{},
	}
}

// drains the fields set since the last transfer and diffs each against the
// last transmitted list of the same field. on the first transfer after a
// connect the baseline is empty so every component is sent.
// the baseline is read and replaced under one lock.
func (self *DiffStore[C]) TransferDiff(isFirst bool) map[string]*ComponentDiff[C] {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if isFirst {
		self.lastSent = map[string]*ComponentList[C]{}
	}
	out := map[string]*ComponentDiff[C]{}
	for field, current := range self.transferSend(isFirst) {
		if current == nil {
			continue
		}
		prev := self.lastSent[field]
		diff := &ComponentDiff[C]{
			Diff:   map[string]C{},
			Ids:    slices.Clone(current.Ids),
			Length: len(current.Ids),
			Width:  current.Width,
			Height: current.Height,
		}
		for _, id := range current.Ids {
			c, ok := current.Components[id]
			if !ok {
				continue
			}
			if prev != nil {
				if prevC, ok := prev.Components[id]; ok && self.equal(prevC, c) {
					continue
				}
			}
			diff.Diff[id] = c
		}
		self.lastSent[field] = current
		out[field] = diff
	}
	return out
}

// applies a received diff to the receive slot and returns the new list.
// only the ids in the diff are overwritten. when the authoritative length
// is shorter than the current list the trailing components are dropped.
func (self *DiffStore[C]) ApplyDiff(member string, field string, diff *ComponentDiff[C]) *ComponentList[C] {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	var next *ComponentList[C]
	if prev, ok := self.getRecv(member, field); ok && prev != nil {
		next = prev.clone()
	} else {
		next = NewComponentList[C]()
	}

	for id, c := range diff.Diff {
		next.Components[id] = c
	}
	if diff.Ids != nil {
		next.Ids = slices.Clone(diff.Ids)
	} else {
		newIds := []string{}
		for id := range diff.Diff {
			if !slices.Contains(next.Ids, id) {
				newIds = append(newIds, id)
			}
		}
		slices.SortFunc(newIds, compareComponentIds)
		next.Ids = append(next.Ids, newIds...)
	}
	if 0 <= diff.Length && diff.Length < len(next.Ids) {
		next.Ids = next.Ids[:diff.Length]
	}
	if len(next.Components) != len(next.Ids) {
		for id := range next.Components {
			if !slices.Contains(next.Ids, id) {
				delete(next.Components, id)
			}
		}
	}
	next.Width = diff.Width
	next.Height = diff.Height

	setNested(self.recv, member, field, next)
	return next
}

// index ids compare as numbers so "10" follows "9".
// anything else falls back to string order, after the indexes.
func compareComponentIds(a string, b string) int {
	i, errA := strconv.Atoi(a)
	j, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		if i < j {
			return -1
		} else if j < i {
			return 1
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
