package factory

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/arthur-debert/keyfactory/pkg/errors"
)

// Creator returns a new instance of V on every call.
type Creator[V any] func() V

var (
	// ErrDuplicateKey matches (via errors.Is) a Register call for a key
	// that already has a binding.
	ErrDuplicateKey = errors.New(errors.ErrDuplicateKey, "duplicate key")

	// ErrKeyNotFound matches (via errors.Is) a Create call for a key with
	// no binding.
	ErrKeyNotFound = errors.New(errors.ErrKeyNotFound, "key not found")
)

// Registry maps keys of type K to creation functions for values of type V.
// The zero value is not usable; construct one with New or For.
type Registry[V any, K comparable] struct {
	creators map[K]Creator[V]
}

// New creates an empty, standalone Registry.
func New[V any, K comparable]() *Registry[V, K] {
	return &Registry[V, K]{
		creators: make(map[K]Creator[V]),
	}
}

// Register binds key to fn. A key can be bound once; a second call returns
// ErrDuplicateKey and leaves the first binding in place.
func (r *Registry[V, K]) Register(key K, fn Creator[V]) error {
	if fn == nil {
		return errors.Newf(errors.ErrInvalidInput, "nil creator for key %v", key).
			WithDetail("key", key)
	}

	if _, exists := r.creators[key]; exists {
		return errors.Newf(errors.ErrDuplicateKey, "creator for %s with key %s already registered", typeName[V](), formatKey(key)).
			WithDetail("key", key).
			WithDetail("value_type", typeName[V]())
	}

	r.creators[key] = fn
	return nil
}

// Create invokes the creator bound to key and returns its result.
// It returns ErrKeyNotFound when nothing is bound.
func (r *Registry[V, K]) Create(key K) (V, error) {
	fn, ok := r.creators[key]
	if !ok {
		var zero V
		return zero, errors.Newf(errors.ErrKeyNotFound, "no creator for %s with key %s", typeName[V](), formatKey(key)).
			WithDetail("key", key).
			WithDetail("value_type", typeName[V]())
	}
	return fn(), nil
}

// TryCreate is the non-failing form of Create. When key is not bound it
// returns the zero value of V and false without calling anything.
func (r *Registry[V, K]) TryCreate(key K) (V, bool) {
	fn, ok := r.creators[key]
	if !ok {
		var zero V
		return zero, false
	}
	return fn(), true
}

// Has reports whether key is bound.
func (r *Registry[V, K]) Has(key K) bool {
	_, ok := r.creators[key]
	return ok
}

// Len returns the number of bindings.
func (r *Registry[V, K]) Len() int {
	return len(r.creators)
}

// Keys returns the bound keys in no particular order.
func (r *Registry[V, K]) Keys() []K {
	keys := make([]K, 0, len(r.creators))
	for key := range r.creators {
		keys = append(keys, key)
	}
	return keys
}

// MustRegister registers fn and panics if registration fails.
// This is useful for init() functions where registration errors are programming errors
func MustRegister[V any, K comparable](r *Registry[V, K], key K, fn Creator[V]) {
	if err := r.Register(key, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", formatKey(key), err))
	}
}

// MustCreate creates an instance and panics if key is not bound.
func MustCreate[V any, K comparable](r *Registry[V, K], key K) V {
	v, err := r.Create(key)
	if err != nil {
		panic(fmt.Sprintf("failed to create %s: %v", formatKey(key), err))
	}
	return v
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

func formatKey(key any) string {
	switch k := key.(type) {
	case nil:
		return "<nil>"
	case reflect.Type:
		return k.String()
	case fmt.Stringer:
		return k.String()
	}
	if reflect.ValueOf(key).Kind() == reflect.String {
		return strconv.Quote(reflect.ValueOf(key).String())
	}
	return fmt.Sprint(key)
}
