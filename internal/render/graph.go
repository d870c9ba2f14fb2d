package render

import (
	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/rdf"
	"github.com/mohammed-shakir/dggs-ldapi/internal/zone"
)

var (
	dcatDataset      = rdf.IRI(rdf.DCAT + "Dataset")
	geoFeature       = rdf.IRI(rdf.GEO + "Feature")
	geoFeatureColl   = rdf.IRI(rdf.GEO + "FeatureCollection")
	ogcapiCollection = rdf.IRI(rdf.OGCAPI + "Collection")
	ogcapiFeature    = rdf.IRI(rdf.OGCAPI + "Feature")
	hasGeometry      = rdf.IRI(rdf.GEO + "hasGeometry")
	asWKT            = rdf.IRI(rdf.GEO + "asWKT")
	sfWithin         = rdf.IRI(rdf.GEO + "sfWithin")
	sfContains       = rdf.IRI(rdf.GEO + "sfContains")
	sfTouches        = rdf.IRI(rdf.GEO + "sfTouches")
	asDGGS           = rdf.IRI(rdf.GEOX + "asDGGS")
	hasRole          = rdf.IRI(rdf.GEOX + "hasRole")
	inCRS            = rdf.IRI(rdf.GEOX + "inCRS")
	rdfsMember       = rdf.IRI(rdf.RDFS + "member")
)

func newGraph() *rdf.Graph {
	g := rdf.NewGraph()
	g.BindDefaults()
	return g
}

func datasetGraph(ds catalog.Dataset, colls []catalog.Collection) *rdf.Graph {
	g := newGraph()
	d := rdf.IRI(ds.URI)
	g.Add(d, rdf.Type, dcatDataset)
	g.Add(d, rdf.Title, rdf.LangLiteral(ds.Title, "en"))
	g.Add(d, rdf.Description, rdf.LangLiteral(ds.Description, "en"))
	for _, c := range colls {
		g.Add(d, rdf.HasPart, rdf.IRI(c.URI))
	}
	for _, c := range colls {
		addCollection(g, ds, c)
	}
	return g
}

func addCollection(g *rdf.Graph, ds catalog.Dataset, c catalog.Collection) {
	s := rdf.IRI(c.URI)
	g.Add(s, rdf.Type, ogcapiCollection)
	g.Add(s, rdf.Type, geoFeatureColl)
	g.Add(s, rdf.Identifier, rdf.Literal(c.ID))
	g.Add(s, rdf.Title, rdf.Literal(c.Title))
	g.Add(s, rdf.Description, rdf.Literal(c.Description))
	if ds.URI != "" {
		g.Add(s, rdf.IsPartOf, rdf.IRI(ds.URI))
	}
}

// addZone describes z as a GeoSPARQL feature with one blank node per geometry.
func addZone(g *rdf.Graph, z zone.Zone, c catalog.Collection) {
	f := rdf.IRI(z.URI())
	g.Add(f, rdf.Type, geoFeature)
	g.Add(f, rdf.Type, ogcapiFeature)
	g.Add(f, rdf.Identifier, rdf.Literal(string(z.Address)))
	g.Add(f, rdf.Label, rdf.Literal(z.Title))
	g.Add(f, rdf.Description, rdf.Literal(z.Description))
	if c.URI != "" {
		g.Add(f, rdf.IsPartOf, rdf.IRI(c.URI))
		g.Add(rdf.IRI(c.URI), rdfsMember, f)
	}
	g.Add(f, sfWithin, rdf.IRI(z.Parent.URI()))
	for _, ch := range z.Children {
		g.Add(f, sfContains, rdf.IRI(ch.URI()))
	}
	for _, n := range z.Neighbours {
		g.Add(f, sfTouches, rdf.IRI(n.Address.URI()))
	}
	for _, geom := range z.Geometries {
		b := g.NewBlank()
		g.Add(f, hasGeometry, b)
		g.Add(b, rdf.Label, rdf.Literal(geom.Label))
		g.Add(b, hasRole, rdf.IRI(geom.Role.URI()))
		g.Add(b, inCRS, rdf.IRI(geom.CRS.URI()))
		if geom.Kind == zone.KindCell {
			g.Add(b, asDGGS, rdf.Typed(geom.WKTLiteral(), rdf.DGGSLiteral))
			continue
		}
		g.Add(b, asWKT, rdf.Typed(geom.WKTLiteral(), rdf.WKTLiteral))
	}
}
