package factory

import (
	"reflect"
)

// TagName is the struct tag key holding a marker's key value.
const TagName = "factory"

// Registration marks the struct type that contains it as a concrete type
// to be bound into the (V, K) table. The key is the value of the field's
// `factory` tag. It occupies no space.
//
// A missing or empty tag is reported as a missing key, so the empty string
// cannot be used as a key.
//
//	type EmailNotifier struct {
//	    _ factory.Registration[Notifier, string] `factory:"email"`
//	}
type Registration[V any, K comparable] struct{}

// BaseType returns the abstract type the concrete type is registered under.
func (Registration[V, K]) BaseType() reflect.Type { return reflect.TypeFor[V]() }

// KeyType returns the type of the key.
func (Registration[V, K]) KeyType() reflect.Type { return reflect.TypeFor[K]() }

type marker interface {
	BaseType() reflect.Type
	KeyType() reflect.Type
}

var markerType = reflect.TypeFor[marker]()

// Metadata is the runtime view of one Registration field.
type Metadata struct {
	Concrete reflect.Type
	Base     reflect.Type
	KeyType  reflect.Type
	// Key is the raw tag text, before any interpretation by the generator.
	Key string
}

// MetadataOf returns the metadata of every Registration field declared
// directly on struct type t (or the struct t points to).
func MetadataOf(t reflect.Type) ([]Metadata, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}

	var found []Metadata
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.Struct || field.Type.NumField() != 0 {
			continue
		}
		if !field.Type.Implements(markerType) || field.Type.PkgPath() != markerPkgPath {
			continue
		}
		m := reflect.Zero(field.Type).Interface().(marker)
		found = append(found, Metadata{
			Concrete: t,
			Base:     m.BaseType(),
			KeyType:  m.KeyType(),
			Key:      field.Tag.Get(TagName),
		})
	}
	return found, len(found) > 0
}

var markerPkgPath = reflect.TypeFor[Registration[any, string]]().PkgPath()
