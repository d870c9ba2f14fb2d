package render

import "github.com/mohammed-shakir/dggs-ldapi/internal/negotiate"

var (
	reprParams = []string{"_profile", "_view", "_mediatype", "_format"}
	listParams = append(append([]string{}, reprParams...), "page", "per_page", "limit")
)

// Resource declarations: profiles (default first) and accepted query parameters.
var (
	LandingResource = negotiate.Resource{
		Name:          "landing",
		Profiles:      []negotiate.Profile{negotiate.OAIServiceDesc, negotiate.DCAT},
		AllowedParams: reprParams,
	}
	ConformanceResource = negotiate.Resource{
		Name:          "conformance",
		Profiles:      []negotiate.Profile{negotiate.OAIServiceDesc},
		AllowedParams: reprParams,
	}
	CollectionsResource = negotiate.Resource{
		Name:          "collections",
		Profiles:      []negotiate.Profile{negotiate.OAI, negotiate.DCAT},
		AllowedParams: listParams,
	}
	CollectionResource = negotiate.Resource{
		Name:          "collection",
		Profiles:      []negotiate.Profile{negotiate.OAI, negotiate.GeoSPARQL},
		AllowedParams: []string{"_profile", "_mediatype"},
	}
	FeaturesResource = negotiate.Resource{
		Name:          "features",
		Profiles:      []negotiate.Profile{negotiate.OAI, negotiate.GeoSPARQL},
		AllowedParams: append(append([]string{}, listParams...), "bbox"),
	}
	FeatureResource = negotiate.Resource{
		Name:          "feature",
		Profiles:      []negotiate.Profile{negotiate.OAI, negotiate.GeoSPARQL},
		AllowedParams: []string{"_profile", "_view", "_mediatype"},
	}
)
