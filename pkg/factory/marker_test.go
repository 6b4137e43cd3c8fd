package factory_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/keyfactory/pkg/factory"
)

type dualShape struct {
	_ factory.Registration[shape, string]    `factory:"dual"`
	_ factory.Registration[shape, shapeKind] `factory:"kindSquare"`

	side float64
}

func (d *dualShape) Area() float64 { return d.side * d.side }

type unmarked struct {
	Name string
}

func TestRegistrationIsZeroSize(t *testing.T) {
	assert.Equal(t, uintptr(0), reflect.TypeFor[factory.Registration[shape, string]]().Size())
	assert.Equal(t, reflect.TypeFor[float64]().Size(), reflect.TypeFor[dualShape]().Size())
}

func TestRegistrationTypes(t *testing.T) {
	var m factory.Registration[shape, shapeKind]

	assert.Equal(t, reflect.TypeFor[shape](), m.BaseType())
	assert.Equal(t, reflect.TypeFor[shapeKind](), m.KeyType())
}

func TestMetadataOf(t *testing.T) {
	t.Run("every marker is reported", func(t *testing.T) {
		got, ok := factory.MetadataOf(reflect.TypeFor[*dualShape]())
		require.True(t, ok)
		require.Len(t, got, 2)

		assert.Equal(t, factory.Metadata{
			Concrete: reflect.TypeFor[dualShape](),
			Base:     reflect.TypeFor[shape](),
			KeyType:  reflect.TypeFor[string](),
			Key:      "dual",
		}, got[0])
		assert.Equal(t, reflect.TypeFor[shapeKind](), got[1].KeyType)
		assert.Equal(t, "kindSquare", got[1].Key)
	})

	t.Run("unmarked and non-struct types", func(t *testing.T) {
		_, ok := factory.MetadataOf(reflect.TypeFor[unmarked]())
		assert.False(t, ok)

		_, ok = factory.MetadataOf(reflect.TypeFor[int]())
		assert.False(t, ok)

		_, ok = factory.MetadataOf(nil)
		assert.False(t, ok)
	})

	t.Run("binding exposes its metadata", func(t *testing.T) {
		b := factory.Bind[shape, string](reflect.TypeFor[dualShape](), "dual", func() shape { return &dualShape{} })

		got, ok := b.Metadata()
		require.True(t, ok)
		assert.Equal(t, "dual", got[0].Key)
	})
}
