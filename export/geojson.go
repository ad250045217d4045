package export

import (
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// GeoJSON describes the mesh as a feature collection: one polygon per
// triangle, then one line string per subsegment, then, if withVertices is
// set, one point per vertex. Mesh coordinates are written unchanged.
func GeoJSON(src Source, withVertices bool) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	coord := func(id int) []float64 {
		v := src.Vertex(id)
		return []float64{v.X, v.Y}
	}

	for _, tri := range src.Triangles() {
		ring := [][]float64{coord(tri.Vertices[0]), coord(tri.Vertices[1]), coord(tri.Vertices[2]), coord(tri.Vertices[0])}
		f := geojson.NewPolygonFeature([][][]float64{ring})
		f.ID = tri.ID
		f.SetProperty("kind", "triangle")
		f.SetProperty("vertices", tri.Vertices[:])
		f.SetProperty("neighbors", tri.Neighbors[:])
		f.SetProperty("region", tri.Region)
		if tri.AreaBound > 0 {
			f.SetProperty("areaBound", tri.AreaBound)
		}
		fc.AddFeature(f)
	}

	for _, s := range src.Segments() {
		f := geojson.NewLineStringFeature([][]float64{coord(s.Endpoints[0]), coord(s.Endpoints[1])})
		f.ID = s.ID
		f.SetProperty("kind", "segment")
		f.SetProperty("label", s.Label)
		fc.AddFeature(f)
	}

	if withVertices {
		for _, v := range src.Vertices() {
			f := geojson.NewPointFeature([]float64{v.X, v.Y})
			f.ID = v.ID
			f.SetProperty("kind", "vertex")
			f.SetProperty("label", v.Label)
			f.SetProperty("type", v.Type.String())
			if len(v.Attributes) > 0 {
				f.SetProperty("attributes", v.Attributes)
			}
			fc.AddFeature(f)
		}
	}
	return fc
}

func WriteGeoJSON(w io.Writer, src Source, withVertices bool) error {
	data, err := GeoJSON(src, withVertices).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "encoding geojson")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "writing geojson")
}
