// Package negotiate resolves the profile and media type of a request against
// what a resource declares, after validating the query parameter names.
package negotiate

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/munnerz/goautoneg"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
)

// Resource declares a resource type's profiles (default first) and the query
// parameters it accepts.
type Resource struct {
	Name          string
	Profiles      []Profile
	AllowedParams []string
}

func (r Resource) Default() Profile { return r.Profiles[0] }

func (r Resource) lookup(v string) (Profile, bool) {
	for _, p := range r.Profiles {
		if p.Token == v || p.URI == v {
			return p, true
		}
	}
	return Profile{}, false
}

// Result is the negotiated representation of one request.
type Result struct {
	Resource  Resource
	Profile   Profile
	MediaType MediaType
	// Alternates is set when the alternates view was requested.
	Alternates bool
	Query      url.Values
}

// Negotiate validates parameters, then resolves profile and media type.
// Undeclared explicit profiles and unsupported media types fall back to defaults.
func Negotiate(r *http.Request, res Resource) (Result, error) {
	q := r.URL.Query()
	if err := ValidateParams(q, res.AllowedParams); err != nil {
		return Result{}, err
	}

	out := Result{Resource: res, Profile: res.Default(), Query: q}
	if v := first(q, "_profile", "_view"); v != "" {
		switch p, ok := res.lookup(v); {
		case ok:
			out.Profile = p
		case v == Alternates.Token || v == Alternates.URI:
			out.Profile = Alternates
			out.Alternates = true
		}
	} else if p, ok := fromAcceptProfile(r.Header.Get("Accept-Profile"), res); ok {
		out.Profile = p
	}

	out.MediaType = resolveMediaType(q, r.Header.Get("Accept"), out.Profile)
	return out, nil
}

// ValidateParams rejects the first query key, in sorted order, that is not allowed.
func ValidateParams(q url.Values, allowed []string) error {
	if len(q) == 0 {
		return nil
	}
	ok := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		ok[a] = struct{}{}
	}
	names := make([]string, 0, len(q))
	for k := range q {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if _, found := ok[k]; !found {
			return apperr.InvalidParameter(k)
		}
	}
	return nil
}

func first(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func resolveMediaType(q url.Values, accept string, p Profile) MediaType {
	if v := first(q, "_mediatype", "_format"); v != "" {
		if m, ok := ParseMediaType(v); ok && p.Supports(m) {
			return m
		}
	}
	if m, ok := fromAccept(accept, p); ok {
		return m
	}
	return p.Default
}

// fromAccept picks the first acceptable media type of p in q-value order.
// Wildcards prefer the profile default.
func fromAccept(header string, p Profile) (MediaType, bool) {
	if strings.TrimSpace(header) == "" {
		return 0, false
	}
	for _, clause := range goautoneg.ParseAccept(header) {
		if clause.Q <= 0 {
			continue
		}
		if clause.Type == "*" && clause.SubType == "*" {
			return p.Default, true
		}
		if clause.SubType == "*" {
			if strings.HasPrefix(p.Default.essence(), clause.Type+"/") {
				return p.Default, true
			}
			for _, m := range p.MediaTypes {
				if strings.HasPrefix(m.essence(), clause.Type+"/") {
					return m, true
				}
			}
			continue
		}
		want := strings.ToLower(clause.Type + "/" + clause.SubType)
		for _, m := range p.MediaTypes {
			if m.essence() == want {
				return m, true
			}
		}
	}
	return 0, false
}

// fromAcceptProfile reads an Accept-Profile header of <uri> or token entries
// with optional q-values and returns the best declared profile.
func fromAcceptProfile(header string, res Resource) (Profile, bool) {
	if strings.TrimSpace(header) == "" {
		return Profile{}, false
	}
	type cand struct {
		v string
		q float64
	}
	var cands []cand
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		v := strings.Trim(strings.TrimSpace(fields[0]), "<>")
		c := cand{v: v, q: 1}
		for _, f := range fields[1:] {
			k, val, ok := strings.Cut(strings.TrimSpace(f), "=")
			if ok && strings.TrimSpace(k) == "q" {
				if n, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
					c.q = n
				}
			}
		}
		if c.v != "" && c.q > 0 {
			cands = append(cands, c)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
	for _, c := range cands {
		if p, ok := res.lookup(c.v); ok {
			return p, true
		}
	}
	return Profile{}, false
}
