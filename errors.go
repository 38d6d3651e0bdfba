package archcache

import (
	"fmt"

	"github.com/cockroachdb/errors"

	pr "github.com/unkn0wn-root/archcache/provider"
)

// ErrorKind classifies every failure the cache reports.
type ErrorKind uint8

const (
	KindPool            ErrorKind = iota + 1 // no connection could be leased
	KindStore                                // transport failure talking to the store
	KindStoreProtocol                        // the store sent a reply GET/SET never produce
	KindValidation                           // stored bytes failed structural checks
	KindSerialization                        // a value could not be encoded
	KindDeserialization                      // an archived value could not be materialized
)

var (
	ErrPool            = errors.New("archcache: pool error")
	ErrStore           = errors.New("archcache: store error")
	ErrStoreProtocol   = errors.New("archcache: store protocol error")
	ErrValidation      = errors.New("archcache: validation error")
	ErrSerialization   = errors.New("archcache: serialization error")
	ErrDeserialization = errors.New("archcache: deserialization error")
)

var kindSentinels = [...]error{
	KindPool:            ErrPool,
	KindStore:           ErrStore,
	KindStoreProtocol:   ErrStoreProtocol,
	KindValidation:      ErrValidation,
	KindSerialization:   ErrSerialization,
	KindDeserialization: ErrDeserialization,
}

func (k ErrorKind) String() string {
	switch k {
	case KindPool:
		return "pool"
	case KindStore:
		return "store"
	case KindStoreProtocol:
		return "store protocol"
	case KindValidation:
		return "validation"
	case KindSerialization:
		return "serialization"
	case KindDeserialization:
		return "deserialization"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is the single error type returned by the cache. errors.Is matches it
// against the sentinel of its kind (ErrPool, ErrValidation, ...) as well as
// anything in its cause chain.
type Error struct {
	Kind ErrorKind
	Op   string // "acquire", "fetch", "store", "deserialize", ...
	Key  string // storage key, when known
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("archcache: %s %q: %s: %v", e.Op, e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("archcache: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return int(e.Kind) < len(kindSentinels) && target != nil && target == kindSentinels[e.Kind]
}

func newError(kind ErrorKind, op, key string, err error) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Err: errors.WithStack(err)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// storeError classifies a provider failure.
func storeError(op, key string, err error) *Error {
	switch {
	case errors.Is(err, pr.ErrProtocol):
		return newError(KindStoreProtocol, op, key, err)
	case errors.Is(err, pr.ErrPoolExhausted),
		errors.Is(err, pr.ErrPoolClosed),
		errors.Is(err, pr.ErrReleased):
		return newError(KindPool, op, key, err)
	default:
		return newError(KindStore, op, key, err)
	}
}
