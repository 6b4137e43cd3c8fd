// Package shapes registers geometric shapes by name.
package shapes

import (
	"math"

	"github.com/arthur-debert/keyfactory/pkg/factory"
)

// Shape is the base type of the shapes table.
type Shape interface {
	Name() string
	Area(size float64) float64
}

// Registry returns the table every shape registers into.
func Registry() *factory.Registry[Shape, string] {
	return factory.For[Shape, string](factory.Default())
}

type Circle struct {
	_ factory.Registration[Shape, string] `factory:"circle"`
}

func (*Circle) Name() string { return "circle" }

func (*Circle) Area(radius float64) float64 { return math.Pi * radius * radius }

type Square struct {
	_ factory.Registration[Shape, string] `factory:"square"`
}

func (*Square) Name() string { return "square" }

func (*Square) Area(side float64) float64 { return side * side }
