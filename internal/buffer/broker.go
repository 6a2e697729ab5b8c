// Package buffer implements the pixel-buffer broker: two equal-size
// shared-memory arenas backing a layer or lock surface, with one exposed
// for the renderer to write and the other attached to the compositor.
package buffer

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrAttached is returned by Resize while a handle is attached to the
// compositor; the broker never reallocates an in-flight buffer.
var ErrAttached = errors.New("buffer: cannot resize while a buffer is attached")

// ErrBackpressure is returned by Publish when the previously published
// arena has not yet been released by the compositor. The caller (the
// surface adapter's frame callback) is expected to skip this frame and
// retry on the next one rather than block the cooperative loop.
var ErrBackpressure = errors.New("buffer: previous attachment not yet released")

// Handle is the opaque compositor-side buffer object returned by Publish,
// passed straight through to wl_surface.attach by the surface adapter.
type Handle interface {
	// Release destroys the compositor-side buffer object; called by the
	// broker once its arena is retired (Close/Resize), never per frame.
	Release()
}

// ReleaseNotifier is implemented by handles that can report the
// compositor's wl_buffer.release event. Publish arms it with
// MarkReleased so back-pressure clears without caller involvement.
type ReleaseNotifier interface {
	SetReleaseCallback(func())
}

type arena struct {
	file *os.File
	data []byte
	pool ShmPool
	buf  Handle
}

// ShmPool abstracts the wl_shm_pool + wl_buffer creation so Broker stays
// testable without a live Wayland connection; the real implementation
// comes from the wlclient package's PoolFactory (Bound.Pool, and the
// one BindLockSession passes to New), which the caller hands to New.
type ShmPool interface {
	CreateBuffer(offset, width, height, stride int32, format uint32) (Handle, error)
	Destroy()
}

// PoolFactory builds a ShmPool bound to an open, sized memfd.
type PoolFactory func(fd int, size int32) (ShmPool, error)

// Broker owns two equal-size pixel arenas for one surface.
type Broker struct {
	width, height int32
	stride        int32

	arenas  [2]*arena
	front   int // index currently writable
	pending int // index attached/in-flight, -1 if none

	newPool PoolFactory
}

// New allocates a broker sized width*height*4 premultiplied BGRA bytes.
// newPool is nil in tests that only exercise the swap bookkeeping.
func New(width, height int32, newPool PoolFactory) (*Broker, error) {
	b := &Broker{pending: -1, newPool: newPool}
	if err := b.alloc(width, height); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Broker) alloc(width, height int32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("buffer: invalid size %dx%d", width, height)
	}
	b.width, b.height = width, height
	b.stride = width * 4
	size := int64(b.stride) * int64(height)

	for i := range b.arenas {
		file, data, err := mmapArena(size)
		if err != nil {
			return fmt.Errorf("buffer: allocate arena %d: %w", i, err)
		}
		ar := &arena{file: file, data: data}
		if b.newPool != nil {
			pool, err := b.newPool(int(file.Fd()), int32(size))
			if err != nil {
				return fmt.Errorf("buffer: create pool for arena %d: %w", i, err)
			}
			ar.pool = pool
		}
		b.arenas[i] = ar
	}
	b.front = 0
	return nil
}

// mmapArena creates an anonymous, already-unlinked tmpfile under
// XDG_RUNTIME_DIR and maps it MAP_SHARED.
func mmapArena(size int64) (*os.File, []byte, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return nil, nil, errors.New("XDG_RUNTIME_DIR is not defined in env")
	}
	file, err := os.CreateTemp(dir, "spell-shm-*")
	if err != nil {
		return nil, nil, err
	}
	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, nil, err
	}
	if err := os.Remove(file.Name()); err != nil {
		file.Close()
		return nil, nil, err
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return file, data, nil
}

// AcquireWrite returns the arena not currently attached to the compositor.
// Row stride is Stride(); bytes are 4-byte-aligned BGRA8888.
func (b *Broker) AcquireWrite() []byte {
	return b.arenas[b.front].data
}

// Stride returns the byte stride of each row (width*4).
func (b *Broker) Stride() int32 { return b.stride }

// Width returns the broker's current pixel width.
func (b *Broker) Width() int32 { return b.width }

// Height returns the broker's current pixel height.
func (b *Broker) Height() int32 { return b.height }

// Publish swaps the writable/attached roles and binds a compositor buffer
// to the now-front arena, returning its handle for surface.Attach. If the
// previously published arena has not yet been released by the compositor
// (ErrBackpressure), the swap does not happen and the caller should skip
// this frame — the cooperative loop never blocks.
func (b *Broker) Publish() (Handle, error) {
	if b.pending >= 0 {
		return nil, ErrBackpressure
	}
	published := b.front
	ar := b.arenas[published]
	if ar.pool == nil {
		return nil, errors.New("buffer: no pool factory configured")
	}
	// One wl_buffer per arena, minted lazily and reused across frames.
	if ar.buf == nil {
		handle, err := ar.pool.CreateBuffer(0, b.width, b.height, b.stride, formatARGB8888)
		if err != nil {
			return nil, err
		}
		if n, ok := handle.(ReleaseNotifier); ok {
			n.SetReleaseCallback(b.MarkReleased)
		}
		ar.buf = handle
	}
	b.front = 1 - b.front
	b.pending = published
	return ar.buf, nil
}

// MarkReleased is invoked from the wl_buffer.release callback; it frees
// the just-published arena so a future Publish can reuse it. The handle
// itself stays cached on the arena.
func (b *Broker) MarkReleased() {
	b.pending = -1
}

// Resize discards both arenas and reallocates at the new size. Refuses
// while a handle is attached (ErrAttached).
func (b *Broker) Resize(width, height int32) error {
	if b.pending >= 0 {
		return ErrAttached
	}
	b.Close()
	return b.alloc(width, height)
}

// Close releases both arenas' memory mappings and pools.
func (b *Broker) Close() {
	for _, ar := range b.arenas {
		if ar == nil {
			continue
		}
		if ar.buf != nil {
			ar.buf.Release()
			ar.buf = nil
		}
		if ar.pool != nil {
			ar.pool.Destroy()
		}
		if ar.data != nil {
			unix.Munmap(ar.data)
		}
		if ar.file != nil {
			ar.file.Close()
		}
	}
	b.arenas = [2]*arena{}
}

const formatARGB8888 = 0 // wl_shm.format.argb8888: BGRA byte order on little-endian
