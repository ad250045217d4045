// Package fixture loads test shapes: SVG files embedded in fixtures/, any
// SVG the caller provides, and a few shapes built in code.
//
// This is not a full (or even correct) SVG parser. It reads every <polygon>
// element in the document, flips the Y axis so the shapes read the right way
// up, and winds each polygon counterclockwise, or clockwise when its class is
// "hole".
package fixture

import (
	"embed"
	"io"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/osuushi/trimesh/polygon"
)

//go:embed fixtures
var fixtures embed.FS

// Names lists the embedded fixtures, sans extension.
func Names() []string {
	entries, err := fixtures.ReadDir("fixtures")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Load parses the embedded fixture with the given name.
func Load(name string) (polygon.List, error) {
	f, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		return nil, errors.Wrapf(err, "could not load fixture %q", name)
	}
	defer f.Close()
	list, err := Parse(f)
	return list, errors.Wrapf(err, "fixture %q", name)
}

// Parse reads the polygons of an SVG document.
func Parse(r io.Reader) (polygon.List, error) {
	root, err := svgparser.Parse(r, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse svg")
	}
	elements := root.FindAll("polygon")
	if len(elements) == 0 {
		return nil, errors.New("no polygons found")
	}

	list := make(polygon.List, 0, len(elements))
	for _, el := range elements {
		poly, err := parsePoints(el.Attributes["points"])
		if err != nil {
			return nil, err
		}
		if len(poly.Points) < 3 {
			return nil, errors.Errorf("polygon %q has fewer than three points", el.Attributes["points"])
		}
		if poly.IsCW() != (el.Attributes["class"] == "hole") {
			poly = poly.Reverse()
		}
		list = append(list, poly)
	}
	return list, nil
}

func parsePoints(s string) (polygon.Polygon, error) {
	var poly polygon.Polygon
	for _, pair := range strings.Fields(s) {
		coords := strings.Split(pair, ",")
		if len(coords) != 2 {
			return poly, errors.Errorf("invalid point string %q", pair)
		}
		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			return poly, errors.Wrapf(err, "invalid x value %q", coords[0])
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			return poly, errors.Wrapf(err, "invalid y value %q", coords[1])
		}
		poly.Points = append(poly.Points, r2.Point{X: x, Y: -y})
	}
	return poly, nil
}

func star(x, y, outerRadius, innerRadius float64) polygon.Polygon {
	var points []r2.Point
	for i := 0; i < 10; i++ {
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		angle := 2 * math.Pi * float64(i) / 10
		points = append(points, r2.Point{X: x + r*math.Cos(angle), Y: y + r*math.Sin(angle)})
	}
	return polygon.Polygon{Points: points}
}

func SimpleStar() polygon.List {
	return polygon.List{star(0, 0, 5, 2)}
}

func SquareWithHole() polygon.List {
	outer := []r2.Point{{X: -5, Y: -5}, {X: 5, Y: -5}, {X: 5, Y: 5}, {X: -5, Y: 5}}
	hole := []r2.Point{{X: -2, Y: -2}, {X: -2, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: -2}}
	return polygon.List{{Points: outer}, {Points: hole}}
}

func StarOutline() polygon.List {
	return polygon.List{star(0, 0, 10, 5), star(0, 0, 8, 3).Reverse()}
}

// MultiLayeredHoles has holes with filled shapes inside them.
func MultiLayeredHoles() polygon.List {
	return polygon.List{
		star(0, 0, 10, 7),
		star(1.5, 5, 3, 2).Reverse(),
		star(1.5, 5, 2, 1),
		star(1.8, -5, 3, 2).Reverse(),
		star(1.8, -5, 2, 1),
		star(-3, 0, 4, 2).Reverse(),
		star(-3, 0, 3, 1),
	}
}

// Shapes gives the built-in shapes by name.
var Shapes = map[string]func() polygon.List{
	"simple-star":         SimpleStar,
	"square-with-hole":    SquareWithHole,
	"star-outline":        StarOutline,
	"multi-layered-holes": MultiLayeredHoles,
}
