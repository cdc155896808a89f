package ecs

import (
	"reflect"
	"slices"
	"unsafe"
)

// ArchetypeKey identifies a pool. It is derived from the set of type hashes
// of the archetype's components and does not depend on their order.
type ArchetypeKey uint64

// typeId returns the address of the runtime type descriptor. It is unique
// and stable for the life of the process.
func typeId(t reflect.Type) uint64 {
	ptr := (*iface)(unsafe.Pointer(&t)).data
	return uint64(uintptr(ptr))
}

const hashCombineSalt uint64 = 0x9e3779b97f4a7c15

// combineTypeHashes folds a set of type hashes into an archetype key. The
// input is sorted first so any permutation produces the same key.
func combineTypeHashes(hashes []uint64) ArchetypeKey {
	sorted := slices.Clone(hashes)
	slices.Sort(sorted)

	var seed uint64
	for _, h := range sorted {
		seed ^= h + hashCombineSalt + (seed << 6) + (seed >> 2)
	}
	return ArchetypeKey(seed)
}

// withHash returns a copy of hashes with h appended.
func withHash(hashes []uint64, h uint64) []uint64 {
	out := make([]uint64, 0, len(hashes)+1)
	out = append(out, hashes...)
	return append(out, h)
}

// withoutHash returns a copy of hashes with every occurrence of h removed.
func withoutHash(hashes []uint64, h uint64) []uint64 {
	out := make([]uint64, 0, len(hashes))
	for _, v := range hashes {
		if v != h {
			out = append(out, v)
		}
	}
	return out
}
