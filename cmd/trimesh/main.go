// Command trimesh meshes a set of polygons and writes the result as SVG,
// PNG or GeoJSON.
//
// Polygons come from an SVG file, a named shape, or stdin. On stdin, each
// line holds a point "x y", and a blank line ends a polygon. Solid polygons
// wind counterclockwise and holes clockwise. None of these requirements are
// validated.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/osuushi/trimesh/export"
	"github.com/osuushi/trimesh/internal/fixture"
	"github.com/osuushi/trimesh/mesh"
	"github.com/osuushi/trimesh/polygon"
)

type config struct {
	svgIn   string
	shape   string
	algo    string
	minA    float64
	maxA    float64
	maxArea float64
	steiner int
	hull    bool
	noOff   bool
	seed    int64
	verbose bool
	noColor bool

	outSVG     string
	outPNG     string
	outGeoJSON string
	imgcat     bool
	width      int
	vertices   bool
}

func main() {
	var cfg config
	app := kingpin.New("trimesh", "Constrained Delaunay meshing with quality refinement.")
	app.Flag("svg", "Read polygons from an SVG file.").ExistingFileVar(&cfg.svgIn)
	app.Flag("shape", "Mesh a built-in shape or fixture: "+strings.Join(shapeNames(), ", ")+".").StringVar(&cfg.shape)
	app.Flag("algorithm", "Delaunay builder.").Default(mesh.DivideAndConquer.String()).
		EnumVar(&cfg.algo, mesh.DivideAndConquer.String(), mesh.Incremental.String(), mesh.SweepLine.String())
	app.Flag("min-angle", "Refine until no angle is below this many degrees.").Short('q').Float64Var(&cfg.minA)
	app.Flag("max-angle", "Refine until no angle is above this many degrees.").Float64Var(&cfg.maxA)
	app.Flag("max-area", "Refine until no triangle is larger than this.").Short('a').Float64Var(&cfg.maxArea)
	app.Flag("steiner", "Most Steiner points to add; negative for no limit.").Default("-1").IntVar(&cfg.steiner)
	app.Flag("convex-hull", "Keep the whole convex hull instead of carving concavities.").Short('c').BoolVar(&cfg.hull)
	app.Flag("no-offcenter", "Use circumcenters instead of off-centers.").BoolVar(&cfg.noOff)
	app.Flag("seed", "Random seed for point location.").Default("1").Int64Var(&cfg.seed)
	app.Flag("verbose", "Log progress to stderr.").Short('V').BoolVar(&cfg.verbose)
	app.Flag("no-color", "Plain summary output.").BoolVar(&cfg.noColor)
	app.Flag("out-svg", "Write the mesh as SVG.").StringVar(&cfg.outSVG)
	app.Flag("out-png", "Write the mesh as PNG.").StringVar(&cfg.outPNG)
	app.Flag("out-geojson", "Write the mesh as GeoJSON.").StringVar(&cfg.outGeoJSON)
	app.Flag("imgcat", "Show the mesh in the terminal (iTerm only).").BoolVar(&cfg.imgcat)
	app.Flag("width", "Image width in pixels.").Default("800").IntVar(&cfg.width)
	app.Flag("show-vertices", "Mark vertices in images.").BoolVar(&cfg.vertices)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := run(cfg, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, aurora.NewAurora(!cfg.noColor).Red("trimesh: "+err.Error()))
		os.Exit(1)
	}
}

func shapeNames() []string {
	names := fixture.Names()
	for name := range fixture.Shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadPolygons(cfg config, stdin io.Reader) (polygon.List, error) {
	switch {
	case cfg.svgIn != "":
		f, err := os.Open(cfg.svgIn)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer f.Close()
		return fixture.Parse(f)
	case cfg.shape != "":
		if shape, ok := fixture.Shapes[cfg.shape]; ok {
			return shape(), nil
		}
		return fixture.Load(cfg.shape)
	}
	return readPolygons(stdin)
}

func options(cfg config) ([]mesh.Option, error) {
	algo, err := mesh.ParseAlgorithm(cfg.algo)
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if cfg.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, errors.Wrap(err, "creating logger")
		}
	}
	opts := []mesh.Option{
		mesh.WithAlgorithm(algo),
		mesh.WithSteinerBudget(cfg.steiner),
		mesh.WithOffCenter(!cfg.noOff),
		mesh.WithSeed(cfg.seed),
		mesh.WithLogger(logger),
	}
	if cfg.minA > 0 {
		opts = append(opts, mesh.WithMinAngle(cfg.minA))
	}
	if cfg.maxA > 0 {
		opts = append(opts, mesh.WithMaxAngle(cfg.maxA))
	}
	if cfg.maxArea > 0 {
		opts = append(opts, mesh.WithMaxArea(cfg.maxArea))
	}
	if cfg.hull {
		opts = append(opts, mesh.WithConvexHull())
	}
	return opts, nil
}

func run(cfg config, stdin io.Reader, stdout io.Writer) error {
	list, err := loadPolygons(cfg, stdin)
	if err != nil {
		return err
	}
	opts, err := options(cfg)
	if err != nil {
		return err
	}
	m, err := mesh.New(list.Input(), opts...)
	if err != nil {
		return err
	}
	if err := m.Triangulate(); err != nil {
		return err
	}
	if err := printSummary(stdout, m, len(list), !cfg.noColor); err != nil {
		return err
	}

	style := export.Style{Width: cfg.width, Padding: 20, ShowVertices: cfg.vertices}
	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{cfg.outSVG, func(w io.Writer) error { return export.WriteSVG(w, m, style) }},
		{cfg.outPNG, func(w io.Writer) error { return export.WritePNG(w, m, style) }},
		{cfg.outGeoJSON, func(w io.Writer) error { return export.WriteGeoJSON(w, m, true) }},
	}
	for _, out := range writers {
		if out.path == "" {
			continue
		}
		if err := writeFile(out.path, out.write); err != nil {
			return err
		}
	}
	if cfg.imgcat {
		return export.CatPNG(stdout, m, style)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.WithStack(f.Close())
}

func printSummary(w io.Writer, m *mesh.Mesh, polygons int, color bool) error {
	au := aurora.NewAurora(color)
	stats, err := m.Statistics()
	if err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("%s %d polygons", au.Bold("read"), polygons),
		fmt.Sprintf("%s %d vertices, %d triangles, %d edges, %d segments",
			au.Bold("mesh"), m.NumberOfVertices(), m.NumberOfTriangles(), m.NumberOfEdges(), m.NumberOfSegments()),
		fmt.Sprintf("%s %d steiner points, %d relocations", au.Bold("refine"), m.Steiner(), m.Relocations()),
		fmt.Sprintf("%s %s .. %s degrees", au.Bold("angles"),
			au.Cyan(strconv.FormatFloat(stats.MinAngle, 'f', 2, 64)),
			au.Cyan(strconv.FormatFloat(stats.MaxAngle, 'f', 2, 64))),
		fmt.Sprintf("%s %g .. %g", au.Bold("areas"), stats.MinArea, stats.MaxArea),
	}
	check := au.Green("ok")
	if err := m.CheckMesh(); err != nil {
		check = au.Red(err.Error())
	} else if err := m.CheckDelaunay(); err != nil {
		check = au.Yellow(err.Error())
	}
	lines = append(lines, fmt.Sprintf("%s %s", au.Bold("check"), check))
	_, err = fmt.Fprintln(w, strings.Join(lines, "\n"))
	return errors.WithStack(err)
}

func readPolygons(in io.Reader) (polygon.List, error) {
	var list polygon.List
	scanner := bufio.NewScanner(in)
	var points []r2.Point
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())

		// An empty line ends the polygon, if we collected any points.
		if text == "" {
			if len(points) > 0 {
				list = append(list, polygon.Polygon{Points: points})
				points = nil
			}
			continue
		}

		point, err := parsePoint(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	// Handle trailing polygon if any
	if len(points) > 0 {
		list = append(list, polygon.Polygon{Points: points})
	}
	if len(list) == 0 {
		return nil, errors.New("no polygons on input")
	}
	return list, nil
}

func parsePoint(line string) (r2.Point, error) {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return r2.Point{}, errors.Errorf("want two coordinates, got %q", line)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return r2.Point{}, errors.WithStack(err)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return r2.Point{}, errors.WithStack(err)
	}
	return r2.Point{X: x, Y: y}, nil
}
