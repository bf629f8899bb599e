package app

import (
	"hash/maphash"
	"unsafe"
)

func PointerHasher[V any](_ maphash.Seed, k *V) uint64 {
	return uint64(uintptr(unsafe.Pointer(k)))
}
