package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GlobalUBO holds per-frame camera state, written once per frame into the
// active frame slot's uniform ring.
type GlobalUBO struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// InstanceUBO holds the per-draw model transform.
type InstanceUBO struct {
	Model mgl32.Mat4
}

const (
	GlobalUBOSize   = uint64(unsafe.Sizeof(GlobalUBO{}))
	InstanceUBOSize = uint64(unsafe.Sizeof(InstanceUBO{}))
)

// Bytes returns a view over the struct's memory for copying into a
// persistently mapped uniform buffer.
func (u *GlobalUBO) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), int(GlobalUBOSize))
}

func (u *InstanceUBO) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), int(InstanceUBOSize))
}
