package ecs

import "math/bits"

// MaxComponentTypes is the largest universe a Registry supports.
const MaxComponentTypes = 256

// ComponentID is the index of a component type within its Universe.
type ComponentID uint8

// Mask is a set of ComponentIDs. Each pool carries the mask of its archetype.
type Mask [MaxComponentTypes / 64]uint64

// MaskOf builds a mask from the given ids.
func MaskOf(ids ...ComponentID) Mask {
	var m Mask
	for _, id := range ids {
		m.set(id)
	}
	return m
}

func (m *Mask) set(id ComponentID) {
	m[id>>6] |= uint64(1) << (id & 63)
}

func (m *Mask) unset(id ComponentID) {
	m[id>>6] &^= uint64(1) << (id & 63)
}

// Has reports whether id is in the mask.
func (m Mask) Has(id ComponentID) bool {
	return m[id>>6]&(uint64(1)<<(id&63)) != 0
}

// Contains reports whether every id in sub is also in m.
func (m Mask) Contains(sub Mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// Count returns the number of ids in the mask.
func (m Mask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// IDs returns the ids in the mask in ascending order.
func (m Mask) IDs() []ComponentID {
	ids := make([]ComponentID, 0, m.Count())
	for word, w := range m {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			ids = append(ids, ComponentID(word*64+bit))
			w &= w - 1
		}
	}
	return ids
}
