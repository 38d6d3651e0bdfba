package archive

import "sync"

// Marshaler is implemented by values that know how to lay themselves out.
// Adapters for foreign types implement it on a small wrapper instead.
type Marshaler interface {
	MarshalArchive(b *Builder) (Ref, error)
}

// maxPooledBuffer keeps one huge encode from pinning memory in the pool.
const maxPooledBuffer = 1 << 20

var builders = sync.Pool{New: func() any { return NewBuilder() }}

// Encode runs one encode call on a pooled Builder and returns the sealed,
// aligned archive.
func Encode(m Marshaler) ([]byte, error) {
	return EncodeLimit(m, 0)
}

// EncodeLimit is Encode with a cap on the archive size; maxSize <= 0 means
// the format limit.
func EncodeLimit(m Marshaler, maxSize int) ([]byte, error) {
	b := builders.Get().(*Builder)
	b.Reset()
	b.SetMaxSize(maxSize)
	defer func() {
		if cap(b.buf) <= maxPooledBuffer {
			builders.Put(b)
		}
	}()

	root, err := m.MarshalArchive(b)
	if err != nil {
		return nil, err
	}
	return b.Finish(root)
}
