// Package plugins adds shapes to the shapes table from outside the package
// that declares it.
package plugins

import (
	"math"

	"github.com/arthur-debert/keyfactory/internal/demo/shapes"
	"github.com/arthur-debert/keyfactory/pkg/factory"
)

type Hexagon struct {
	_ factory.Registration[shapes.Shape, string] `factory:"hexagon"`
}

func (*Hexagon) Name() string { return "hexagon" }

func (*Hexagon) Area(side float64) float64 { return 3 * math.Sqrt(3) / 2 * side * side }
