package main

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strconv"

	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
)

type BBox struct{ MinLon, MinLat, MaxLon, MaxLat float64 }

// String returns the bbox in the query form the items endpoint accepts.
func (b BBox) String() string {
	return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

var hotCenters = [][2]float64{
	{149.1300, -35.2809}, // Canberra
	{151.2093, -33.8688}, // Sydney
	{115.8605, -31.9505}, // Perth
	{174.7633, -36.8485}, // Auckland
}

// makeBBoxes mixes small "hot" boxes around a few cities with "cold" boxes
// spread over the globe.
func makeBBoxes(count int, r *rand.Rand) []BBox {
	if count <= 0 {
		return nil
	}
	bboxes := make([]BBox, 0, count)

	hot := max(1, count/4)
	for i := 0; i < hot && len(bboxes) < count; i++ {
		c := hotCenters[i%len(hotCenters)]
		dx, dy := (r.Float64()-0.5)*0.5, (r.Float64()-0.5)*0.5
		w, h := 0.2+r.Float64()*0.3, 0.2+r.Float64()*0.3
		lon, lat := c[0]+dx, c[1]+dy
		bboxes = append(bboxes, BBox{lon - w/2, lat - h/2, lon + w/2, lat + h/2})
	}

	for len(bboxes) < count {
		lon := -175 + r.Float64()*350
		lat := -80 + r.Float64()*160
		w, h := 0.5+r.Float64()*2, 0.5+r.Float64()*2
		bboxes = append(bboxes, BBox{lon - w/2, lat - h/2, lon + w/2, lat + h/2})
	}
	return bboxes
}

// makeZones draws count distinct-ish zone addresses at res.
func makeZones(count, res int, r *rand.Rand) []string {
	if count <= 0 {
		return nil
	}
	n := rhealpix.Count(res)
	zones := make([]string, 0, count)
	for range count {
		zones = append(zones, rhealpix.CellAt(res, r.Int63n(n)))
	}
	return zones
}

type kind int

const (
	kindItems kind = iota
	kindItem
)

func (k kind) String() string {
	if k == kindItem {
		return "item"
	}
	return "items"
}

// target is one entry of the request pool.
type target struct {
	Kind  kind
	Label string
	URL   string
}

func itemsTarget(base *url.URL, collection string, b BBox, limit int) target {
	u := *base
	u.Path = base.Path + "/collections/" + url.PathEscape(collection) + "/items"
	q := url.Values{}
	q.Set("bbox", b.String())
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()
	return target{Kind: kindItems, Label: b.String(), URL: u.String()}
}

func itemTarget(base *url.URL, collection, zone string) target {
	u := *base
	u.Path = base.Path + "/collections/" + url.PathEscape(collection) + "/items/" + url.PathEscape(zone)
	u.RawQuery = ""
	return target{Kind: kindItem, Label: zone, URL: u.String()}
}

// buildPool interleaves bbox and zone targets so a Zipf draw over the pool
// hits both kinds at the head.
func buildPool(base *url.URL, collection string, bboxes []BBox, zones []string, limit int) []target {
	pool := make([]target, 0, len(bboxes)+len(zones))
	for i := 0; i < len(bboxes) || i < len(zones); i++ {
		if i < len(bboxes) {
			pool = append(pool, itemsTarget(base, collection, bboxes[i], limit))
		}
		if i < len(zones) {
			pool = append(pool, itemTarget(base, collection, zones[i]))
		}
	}
	return pool
}

func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sortedValues[0]
	}
	if p >= 100 {
		return sortedValues[len(sortedValues)-1]
	}
	k := (p / 100.0) * float64(len(sortedValues)-1)
	f := math.Floor(k)
	i := int(f)
	if i >= len(sortedValues)-1 {
		return sortedValues[len(sortedValues)-1]
	}
	d := k - f
	return sortedValues[i]*(1-d) + sortedValues[i+1]*d
}
