package legacy

import "context"

// SliceStream adapts an in-memory slice to the Stream contract. Used by
// tests and by fixture-driven dry runs; mirrors the forward-only,
// non-restartable semantics of the cursor-backed stream.
type SliceStream[T any] struct {
	recs  []T
	pos   int
	rec   T
	count int
}

// NewSliceStream wraps recs in a Stream.
func NewSliceStream[T any](recs []T) *SliceStream[T] {
	return &SliceStream[T]{recs: recs}
}

func (s *SliceStream[T]) Next(ctx context.Context) bool {
	if s.pos >= len(s.recs) {
		return false
	}
	s.rec = s.recs[s.pos]
	s.pos++
	s.count++
	return true
}

func (s *SliceStream[T]) Record() T                      { return s.rec }
func (s *SliceStream[T]) Err() error                     { return nil }
func (s *SliceStream[T]) Count() int                     { return s.count }
func (s *SliceStream[T]) Close(ctx context.Context) error { return nil }
