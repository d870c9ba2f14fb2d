package render

import (
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

type geometryJSON struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type featureProperties struct {
	Identifier  string            `json:"identifier"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	IsPartOf    string            `json:"isPartOf"`
	Parent      string            `json:"parent"`
	Children    []string          `json:"children,omitempty"`
	Neighbours  map[string]string `json:"neighbours,omitempty"`
}

type featureJSON struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   *geometryJSON     `json:"geometry"`
	Properties featureProperties `json:"properties"`
	Links      []Link            `json:"links,omitempty"`
}

type featureCollectionJSON struct {
	Type           string        `json:"type"`
	Features       []featureJSON `json:"features"`
	NumberMatched  int64         `json:"numberMatched"`
	NumberReturned int           `json:"numberReturned"`
	Links          []Link        `json:"links"`
}

func toFeatureJSON(z zone.Zone, collectionURI string) featureJSON {
	props := featureProperties{
		Identifier:  string(z.Address),
		Title:       z.Title,
		Description: z.Description,
		IsPartOf:    collectionURI,
		Parent:      string(z.Parent),
	}
	for _, c := range z.Children {
		props.Children = append(props.Children, string(c))
	}
	if len(z.Neighbours) > 0 {
		props.Neighbours = make(map[string]string, len(z.Neighbours))
		for _, n := range z.Neighbours {
			props.Neighbours[n.Direction] = string(n.Address)
		}
	}
	out := featureJSON{Type: "Feature", ID: z.URI(), Properties: props}
	if b, ok := z.Boundary(); ok {
		out.Geometry = polygonJSON(b.Points)
	}
	return out
}

// polygonJSON emits the ring counter-clockwise, as GeoJSON exteriors require.
func polygonJSON(ring []grid.LonLat) *geometryJSON {
	coords := make([][2]float64, len(ring))
	for i, p := range ring {
		coords[i] = [2]float64{p.Lon, p.Lat}
	}
	if signedArea(coords) < 0 {
		for i, j := 0, len(coords)-1; i < j; i, j = i+1, j-1 {
			coords[i], coords[j] = coords[j], coords[i]
		}
	}
	return &geometryJSON{Type: "Polygon", Coordinates: [][][2]float64{coords}}
}

func signedArea(ring [][2]float64) float64 {
	var a float64
	for i := 0; i+1 < len(ring); i++ {
		a += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return a / 2
}
