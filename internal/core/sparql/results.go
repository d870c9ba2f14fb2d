package sparql

// Results is the SPARQL 1.1 JSON results document.
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]Binding `json:"bindings"`
	} `json:"results"`
}

type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Column returns the values bound to name, skipping unbound rows.
func (r Results) Column(name string) []Binding {
	out := make([]Binding, 0, len(r.Results.Bindings))
	for _, row := range r.Results.Bindings {
		if b, ok := row[name]; ok {
			out = append(out, b)
		}
	}
	return out
}
