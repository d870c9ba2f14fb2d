package render

import (
	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"
)

type object = map[string]any

func queryParam(name, description, typ string) object {
	return object{
		"name":        name,
		"in":          "query",
		"required":    false,
		"description": description,
		"schema":      object{"type": typ},
	}
}

func pathParam(name, description string) object {
	return object{
		"name":        name,
		"in":          "path",
		"required":    true,
		"description": description,
		"schema":      object{"type": "string"},
	}
}

var paramDocs = map[string]object{
	"_profile":   queryParam("_profile", "Profile token or URI; 'alt' lists the alternates", "string"),
	"_view":      queryParam("_view", "Alias of _profile", "string"),
	"_mediatype": queryParam("_mediatype", "Media type of the response", "string"),
	"_format":    queryParam("_format", "Alias of _mediatype", "string"),
	"page":       queryParam("page", "Page number, from 1", "integer"),
	"per_page":   queryParam("per_page", "Items per page", "integer"),
	"limit":      queryParam("limit", "Return the first limit items, ignoring page and per_page", "integer"),
	"bbox":       queryParam("bbox", "minLon,minLat,maxLon,maxLat, a zone address or two zone addresses", "string"),
}

func operation(summary string, res negotiate.Resource, extra ...object) object {
	params := make([]any, 0, len(res.AllowedParams)+len(extra))
	for _, e := range extra {
		params = append(params, e)
	}
	for _, name := range res.AllowedParams {
		params = append(params, paramDocs[name])
	}
	content := object{}
	for _, p := range res.Profiles {
		for _, m := range p.MediaTypes {
			content[m.String()] = object{}
		}
	}
	return object{
		"get": object{
			"summary":    summary,
			"parameters": params,
			"responses": object{
				"200": object{"description": summary, "content": content},
				"400": object{"description": "Invalid parameter, filter or identifier"},
				"500": object{"description": "Data source unavailable"},
			},
		},
	}
}

// openAPIDocument describes the HTTP surface as OpenAPI 3.0.
func openAPIDocument(req Request, apiTitle string, ds catalog.Dataset) object {
	collectionID := pathParam("collectionId", "The ID of a Collection delivered by this API")
	itemID := pathParam("itemId", "The zone address of a Feature in the Collection")
	return object{
		"openapi": "3.0.3",
		"info": object{
			"title":       apiTitle,
			"version":     "1.0",
			"description": ds.Description,
		},
		"servers": []any{object{"url": req.Base}},
		"paths": object{
			"/":                                          operation("Landing page", LandingResource),
			"/spec":                                      operation("OpenAPI definition of this API", LandingResource),
			"/conformance":                               operation("Conformance classes", ConformanceResource),
			"/collections":                               operation("Feature collections", CollectionsResource),
			"/collections/{collectionId}":                operation("One feature collection", CollectionResource, collectionID),
			"/collections/{collectionId}/items":          operation("Features of a collection", FeaturesResource, collectionID),
			"/collections/{collectionId}/items/{itemId}": operation("One feature", FeatureResource, collectionID, itemID),
		},
	}
}
