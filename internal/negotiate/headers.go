package negotiate

import (
	"net/http"
	"net/url"
	"strings"
)

// Link is one entry of an HTTP Link header.
type Link struct {
	Href    string
	Rel     string
	Type    string
	Title   string
	Profile string
}

func (l Link) String() string {
	var b strings.Builder
	b.WriteString("<" + l.Href + ">; rel=\"" + l.Rel + "\"")
	if l.Type != "" {
		b.WriteString("; type=\"" + l.Type + "\"")
	}
	if l.Title != "" {
		b.WriteString("; title=\"" + strings.ReplaceAll(l.Title, `"`, `'`) + "\"")
	}
	if l.Profile != "" {
		b.WriteString("; profile=\"" + l.Profile + "\"")
	}
	return b.String()
}

// AlternateLinks lists every other (profile, media type) pair of the resource
// as rel=alternate links relative to self.
func (r Result) AlternateLinks(self string) []Link {
	var out []Link
	for _, p := range append(append([]Profile{}, r.Resource.Profiles...), Alternates) {
		for _, m := range p.MediaTypes {
			if p.Token == r.Profile.Token && m == r.MediaType {
				continue
			}
			out = append(out, Link{
				Href:    WithRepresentation(self, p.Token, m),
				Rel:     "alternate",
				Type:    m.String(),
				Profile: p.URI,
			})
		}
	}
	return out
}

// WithRepresentation returns self with _profile and _mediatype set.
func WithRepresentation(self, profile string, m MediaType) string {
	u, err := url.Parse(self)
	if err != nil {
		return self
	}
	q := u.Query()
	q.Del("_view")
	q.Del("_format")
	q.Set("_profile", profile)
	q.Set("_mediatype", m.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// SetHeaders writes Content-Type, Content-Profile and the Link header for the
// negotiated representation. extra links are appended after the profile links.
func (r Result) SetHeaders(h http.Header, self string, alternates bool, extra ...Link) {
	h.Set("Content-Type", r.MediaType.ContentType())
	h.Set("Content-Profile", "<"+r.Profile.URI+">")
	h.Add("Vary", "Accept, Accept-Profile")

	links := []Link{{Href: r.Profile.URI, Rel: "profile"}}
	if alternates {
		links = append(links, r.AlternateLinks(self)...)
	}
	links = append(links, extra...)
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = l.String()
	}
	h.Set("Link", strings.Join(parts, ", "))
}
