// Package rhealpix computes cell geometry for the TB16Pix grid, an rHEALPix
// grid with N_side 3, both polar squares in position 0 and central meridian
// -131.25 degrees on the WGS84 authalic sphere.
//
// Cells are addressed by a face letter (N O P Q R S) and one digit 0-8 per
// level, digits running row-major from the top-left sub-square.
package rhealpix

import (
	"errors"
	"fmt"
	"math"

	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
)

const (
	// MaxResolution is the deepest level addressable with fifteen characters.
	MaxResolution = 14

	// TB16PixLon0 is the central meridian of the TB16Pix layout, in degrees.
	TB16PixLon0 = -131.25
)

// Faces in grid order.
var Faces = [6]byte{'N', 'O', 'P', 'Q', 'R', 'S'}

var ErrBadAddress = errors.New("rhealpix: bad cell address")

const (
	quarterPi = math.Pi / 4
	halfPi    = math.Pi / 2

	// accumulated subdivision error on the polar square edges
	edgeTol = 1e-12
)

// planar upper-left corner of each face square, side halfPi.
var faceOrigin = map[byte][2]float64{
	'N': {-math.Pi, 3 * quarterPi},
	'O': {-math.Pi, quarterPi},
	'P': {-halfPi, quarterPi},
	'Q': {0, quarterPi},
	'R': {halfPi, quarterPi},
	'S': {-math.Pi, -quarterPi},
}

var (
	northCenter = [2]float64{-3 * quarterPi, halfPi}
	southCenter = [2]float64{-3 * quarterPi, -halfPi}
)

// Grid implements grid.Grid.
type Grid struct {
	lon0     float64
	authalic bool
}

type Option func(*Grid)

// WithOrigin overrides the central meridian in degrees.
func WithOrigin(lon0 float64) Option {
	return func(g *Grid) { g.lon0 = lon0 }
}

// WithSphere disables the authalic-to-geodetic latitude conversion.
func WithSphere() Option {
	return func(g *Grid) { g.authalic = false }
}

func New(opts ...Option) *Grid {
	g := &Grid{lon0: TB16PixLon0, authalic: true}
	for _, o := range opts {
		o(g)
	}
	return g
}

var _ grid.Grid = (*Grid)(nil)

type square struct {
	x0, yTop, side float64
}

func (s square) center() (float64, float64) {
	return s.x0 + s.side/2, s.yTop - s.side/2
}

func cellSquare(addr string) (square, error) {
	if len(addr) == 0 || len(addr) > MaxResolution+1 {
		return square{}, fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}
	o, ok := faceOrigin[addr[0]]
	if !ok {
		return square{}, fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}
	sq := square{x0: o[0], yTop: o[1], side: halfPi}
	for i := 1; i < len(addr); i++ {
		d := addr[i]
		if d < '0' || d > '8' {
			return square{}, fmt.Errorf("%w: %q", ErrBadAddress, addr)
		}
		n := int(d - '0')
		sub := sq.side / 3
		sq.x0 += float64(n%3) * sub
		sq.yTop -= float64(n/3) * sub
		sq.side = sub
	}
	return sq, nil
}

func (g *Grid) Vertices(addr string) ([]grid.LonLat, error) {
	sq, err := cellSquare(addr)
	if err != nil {
		return nil, err
	}
	x1, y0 := sq.x0+sq.side, sq.yTop-sq.side
	return []grid.LonLat{
		g.inverse(sq.x0, sq.yTop),
		g.inverse(x1, sq.yTop),
		g.inverse(x1, y0),
		g.inverse(sq.x0, y0),
	}, nil
}

// Centroid returns the nucleus, the image of the planar cell center.
func (g *Grid) Centroid(addr string) (grid.LonLat, error) {
	sq, err := cellSquare(addr)
	if err != nil {
		return grid.LonLat{}, err
	}
	return g.inverse(sq.center()), nil
}

var directions = [4]struct {
	name   string
	dx, dy float64
}{
	{"down", 0, -1},
	{"left", -1, 0},
	{"right", 1, 0},
	{"up", 0, 1},
}

// Neighbours returns the edge-adjacent cells keyed by planar direction.
func (g *Grid) Neighbours(addr string) (map[string]string, error) {
	sq, err := cellSquare(addr)
	if err != nil {
		return nil, err
	}
	res := len(addr) - 1
	cx, cy := sq.center()
	out := make(map[string]string, len(directions))
	for _, d := range directions {
		px, py := wrapPlanar(addr[0], cx+d.dx*sq.side, cy+d.dy*sq.side)
		id, ok := locate(px, py, res)
		if !ok {
			return nil, fmt.Errorf("rhealpix: no %s neighbour for %s", d.name, addr)
		}
		out[d.name] = id
	}
	return out, nil
}

// Envelope is a conservative lon/lat bound of the cell. Cells touching a pole
// or the antimeridian get the full longitude range.
func (g *Grid) Envelope(addr string) (grid.Envelope, error) {
	sq, err := cellSquare(addr)
	if err != nil {
		return grid.Envelope{}, err
	}
	const steps = 4
	env := grid.Envelope{MinLon: 180, MinLat: 90, MaxLon: -180, MaxLat: -90}
	add := func(p grid.LonLat) {
		env.MinLon = math.Min(env.MinLon, p.Lon)
		env.MaxLon = math.Max(env.MaxLon, p.Lon)
		env.MinLat = math.Min(env.MinLat, p.Lat)
		env.MaxLat = math.Max(env.MaxLat, p.Lat)
	}
	for i := 0; i <= steps; i++ {
		for j := 0; j <= steps; j++ {
			x := sq.x0 + sq.side*float64(i)/steps
			y := sq.yTop - sq.side*float64(j)/steps
			add(g.inverse(x, y))
		}
	}
	padLat := (env.MaxLat-env.MinLat)*0.05 + 1e-9
	padLon := (env.MaxLon-env.MinLon)*0.05 + 1e-9
	env.MinLat = math.Max(-90, env.MinLat-padLat)
	env.MaxLat = math.Min(90, env.MaxLat+padLat)
	env.MinLon = math.Max(-180, env.MinLon-padLon)
	env.MaxLon = math.Min(180, env.MaxLon+padLon)

	if sq.holds(northCenter) {
		env.MaxLat = 90
		env.MinLon, env.MaxLon = -180, 180
	}
	if sq.holds(southCenter) {
		env.MinLat = -90
		env.MinLon, env.MaxLon = -180, 180
	}
	if env.MaxLon-env.MinLon > 180 {
		env.MinLon, env.MaxLon = -180, 180
	}
	return env, nil
}

func (s square) holds(p [2]float64) bool {
	return p[0] >= s.x0 && p[0] <= s.x0+s.side && p[1] <= s.yTop && p[1] >= s.yTop-s.side
}

// Count is the number of cells at resolution res.
func Count(res int) int64 {
	return 6 * pow9(res)
}

func pow9(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 9
	}
	return p
}

// CellAt returns the i-th cell of resolution res in grid order.
func CellAt(res int, i int64) string {
	per := pow9(res)
	buf := make([]byte, res+1)
	buf[0] = Faces[i/per]
	rem := i % per
	for k := res; k >= 1; k-- {
		buf[k] = byte('0' + rem%9)
		rem /= 9
	}
	return string(buf)
}

// Index is the grid-order position of addr among cells of its resolution.
func Index(addr string) (int64, bool) {
	if len(addr) == 0 {
		return 0, false
	}
	face := -1
	for i, f := range Faces {
		if f == addr[0] {
			face = i
		}
	}
	if face < 0 {
		return 0, false
	}
	var rem int64
	for i := 1; i < len(addr); i++ {
		d := addr[i]
		if d < '0' || d > '8' {
			return 0, false
		}
		rem = rem*9 + int64(d-'0')
	}
	return int64(face)*pow9(len(addr)-1) + rem, true
}

// DescendantRange is the half-open index range, at resolution res, of the
// cells that start with addr. Addresses deeper than res yield an empty range.
func DescendantRange(addr string, res int) (lo, hi int64, ok bool) {
	depth := len(addr) - 1
	if depth > res {
		return 0, 0, false
	}
	idx, ok := Index(addr)
	if !ok {
		return 0, 0, false
	}
	span := pow9(res - depth)
	return idx * span, (idx + 1) * span, true
}

func locate(x, y float64, res int) (string, bool) {
	for _, f := range Faces {
		o := faceOrigin[f]
		if x < o[0] || x >= o[0]+halfPi || y > o[1] || y <= o[1]-halfPi {
			continue
		}
		buf := make([]byte, res+1)
		buf[0] = f
		x0, yTop, side := o[0], o[1], halfPi
		for k := 1; k <= res; k++ {
			sub := side / 3
			col := clampDigit(int(math.Floor((x - x0) / sub)))
			row := clampDigit(int(math.Floor((yTop - y) / sub)))
			buf[k] = byte('0' + row*3 + col)
			x0 += float64(col) * sub
			yTop -= float64(row) * sub
			side = sub
		}
		return string(buf), true
	}
	return "", false
}

func clampDigit(n int) int {
	if n < 0 {
		return 0
	}
	if n > 2 {
		return 2
	}
	return n
}

// wrapPlanar maps a point that stepped off face's square back into the
// layout, following the edge identifications of the polar squares.
func wrapPlanar(face byte, x, y float64) (float64, float64) {
	if _, ok := locate(x, y, 0); ok {
		return x, y
	}
	switch face {
	case 'N':
		a, b := x-northCenter[0], y-northCenter[1]
		j := northTriangle(a, b)
		for k := 0; k < j; k++ {
			a, b = b, -a
		}
		return northCenter[0] + a + float64(j)*halfPi, northCenter[1] + b
	case 'S':
		a, b := x-southCenter[0], y-southCenter[1]
		j := southTriangle(a, b)
		for k := 0; k < j; k++ {
			a, b = -b, a
		}
		return southCenter[0] + a + float64(j)*halfPi, southCenter[1] + b
	}
	switch {
	case y > quarterPi:
		j := column(x)
		a, b := x-float64(j)*halfPi-northCenter[0], y-northCenter[1]
		for k := 0; k < j; k++ {
			a, b = -b, a
		}
		return northCenter[0] + a, northCenter[1] + b
	case y < -quarterPi:
		j := column(x)
		a, b := x-float64(j)*halfPi-southCenter[0], y-southCenter[1]
		for k := 0; k < j; k++ {
			a, b = b, -a
		}
		return southCenter[0] + a, southCenter[1] + b
	}
	if x < -math.Pi {
		x += 2 * math.Pi
	} else if x >= math.Pi {
		x -= 2 * math.Pi
	}
	return x, y
}

// column is the equatorial square index 0..3 under planar x.
func column(x float64) int {
	j := int(math.Floor((x + math.Pi) / halfPi))
	if j < 0 {
		return 0
	}
	if j > 3 {
		return 3
	}
	return j
}

// northTriangle numbers the triangles of the north square: 0 bottom, 1 right, 2 top, 3 left.
func northTriangle(a, b float64) int {
	switch {
	case b <= -math.Abs(a):
		return 0
	case a >= math.Abs(b):
		return 1
	case b >= math.Abs(a):
		return 2
	default:
		return 3
	}
}

// southTriangle numbers the triangles of the south square: 0 top, 1 right, 2 bottom, 3 left.
func southTriangle(a, b float64) int {
	switch {
	case b >= math.Abs(a):
		return 0
	case a >= math.Abs(b):
		return 1
	case b <= -math.Abs(a):
		return 2
	default:
		return 3
	}
}

// inverse maps a planar rHEALPix point to geodetic lon/lat in degrees.
func (g *Grid) inverse(x, y float64) grid.LonLat {
	hx, hy := toHEALPix(x, y)
	lam, phi := healpixInverse(hx, hy)
	if g.authalic {
		phi = geodeticLatitude(phi)
	}
	lat := phi * 180 / math.Pi
	lon := wrapLon(lam*180/math.Pi + g.lon0)
	if math.Abs(lat) >= 90-1e-12 {
		lon = g.lon0
	}
	return grid.LonLat{Lon: lon, Lat: lat}
}

// toHEALPix undoes the rearrangement of the polar triangles into squares.
func toHEALPix(x, y float64) (float64, float64) {
	switch {
	case y > quarterPi && x <= -halfPi+edgeTol:
		a, b := x-northCenter[0], y-northCenter[1]
		j := northTriangle(a, b)
		for k := 0; k < j; k++ {
			a, b = b, -a
		}
		return northCenter[0] + a + float64(j)*halfPi, northCenter[1] + b
	case y < -quarterPi && x <= -halfPi+edgeTol:
		a, b := x-southCenter[0], y-southCenter[1]
		j := southTriangle(a, b)
		for k := 0; k < j; k++ {
			a, b = -b, a
		}
		return southCenter[0] + a + float64(j)*halfPi, southCenter[1] + b
	}
	return x, y
}

func healpixInverse(x, y float64) (lam, phi float64) {
	ay := math.Abs(y)
	if ay <= quarterPi {
		return x, math.Asin(8 * y / (3 * math.Pi))
	}
	if ay >= halfPi {
		return x, math.Copysign(halfPi, y)
	}
	xc := -math.Pi + (2*float64(column(x))+1)*quarterPi
	sigma := 2 - 4*ay/math.Pi
	phi = math.Copysign(math.Asin(1-sigma*sigma/3), y)
	lam = xc + (x-xc)/sigma
	return lam, phi
}

// WGS84 first eccentricity squared.
const e2 = 0.0066943799901413165

// geodeticLatitude converts an authalic latitude to geodetic latitude (radians).
func geodeticLatitude(beta float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return beta +
		(e2/3+31*e4/180+517*e6/5040)*math.Sin(2*beta) +
		(23*e4/360+251*e6/3780)*math.Sin(4*beta) +
		(761*e6/45360)*math.Sin(6*beta)
}

func wrapLon(lon float64) float64 {
	for lon < -180 {
		lon += 360
	}
	for lon >= 180 {
		lon -= 360
	}
	return lon
}
