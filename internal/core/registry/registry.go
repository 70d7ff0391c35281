// Package registry keeps a rebuild-only snapshot of live scene members.
// There is no incremental add or remove: writers call Rebuild after every
// spawn or destroy and readers see the last complete snapshot.
package registry

import (
	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/pkg/sequence"
)

// ScanFunc lists every live member in a stable order.
type ScanFunc[T any] func() []T

// IdentifyFunc returns a stable identity used for the membership fingerprint.
type IdentifyFunc[T any] func(T) string

type Registry[T any] struct {
	scan        ScanFunc[T]
	identify    IdentifyFunc[T]
	snapshot    []T
	fingerprint uint64
	logger      log.Log
}

func New[T any](scan ScanFunc[T], identify IdentifyFunc[T], logger log.Log) *Registry[T] {
	return &Registry[T]{
		scan:        scan,
		identify:    identify,
		fingerprint: xxhash.Sum64(nil),
		logger:      logger.With(log.String("component", "registry")),
	}
}

// Rebuild replaces the snapshot with a fresh scan and reports whether the
// membership changed.
func (r *Registry[T]) Rebuild() bool {
	members := r.scan()
	snapshot := make([]T, len(members))
	copy(snapshot, members)

	digest := xxhash.New()
	for _, m := range snapshot {
		_, _ = digest.WriteString(r.identify(m))
		_, _ = digest.Write([]byte{0})
	}
	sum := digest.Sum64()

	changed := sum != r.fingerprint
	r.snapshot = snapshot
	r.fingerprint = sum

	r.logger.Debug("Registry rebuilt",
		log.Int("members", len(snapshot)),
		log.Uint64("fingerprint", sum),
		log.Bool("changed", changed))
	return changed
}

// All returns the current snapshot. Callers must not modify it.
func (r *Registry[T]) All() []T {
	return r.snapshot
}

func (r *Registry[T]) Iter() *sequence.Iterator[T] {
	return sequence.From(r.snapshot)
}

func (r *Registry[T]) Len() int {
	return len(r.snapshot)
}

func (r *Registry[T]) Fingerprint() uint64 {
	return r.fingerprint
}
