package fiber

import "github.com/AnatoleLucet/fiber/internal"

// Resource is a value that becomes available later, possibly from another
// goroutine. A component reading it before it settles suspends until then.
type Resource[T any] struct {
	res *internal.Resource
}

func NewResource[T any]() *Resource[T] {
	return &Resource[T]{res: internal.NewResource()}
}

// Fetch starts fn on its own goroutine and settles the resource with its
// result.
func Fetch[T any](fn func() (T, error)) *Resource[T] {
	r := NewResource[T]()
	go func() {
		v, err := fn()
		if err != nil {
			r.Reject(err)
			return
		}
		r.Resolve(v)
	}()
	return r
}

// Read returns the value. It suspends the calling render while the resource
// is pending and panics with the error of a rejected one, which the nearest
// ErrorBoundary catches.
func (r *Resource[T]) Read() T {
	return as[T](r.res.Read())
}

func (r *Resource[T]) Resolve(v T) bool    { return r.res.Resolve(v) }
func (r *Resource[T]) Reject(err error) bool { return r.res.Reject(err) }
func (r *Resource[T]) Settled() bool       { return r.res.Settled() }

// Then runs fn once the resource settles.
func (r *Resource[T]) Then(fn func()) { r.res.Then(fn) }
