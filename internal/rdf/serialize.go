package rdf

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	krdf "github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

// Format selects a serialization. Turtle output uses full IRIs; N3 is
// written as Turtle.
type Format int

const (
	Turtle Format = iota + 1
	NTriples
	N3
	JSONLD
	RDFXML
)

// Write serializes g in format f.
func Write(w io.Writer, g *Graph, f Format) error {
	switch f {
	case Turtle, N3:
		return writeTriples(w, g, krdf.Turtle)
	case NTriples:
		return writeTriples(w, g, krdf.NTriples)
	case JSONLD:
		return writeJSONLD(w, g)
	case RDFXML:
		return writeRDFXML(w, g)
	default:
		return fmt.Errorf("rdf: unknown format %d", f)
	}
}

// writeTriples encodes g with the knakk encoder. Control characters left raw
// by the encoder are rewritten as \uXXXX escapes.
func writeTriples(w io.Writer, g *Graph, f krdf.Format) error {
	enc := krdf.NewTripleEncoder(controlEscaper{w: w}, f)
	for _, t := range g.triples {
		kt, err := toTriple(t)
		if err != nil {
			return err
		}
		if err := enc.Encode(kt); err != nil {
			return fmt.Errorf("rdf: encode: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("rdf: encode: %w", err)
	}
	return nil
}

func toTriple(t Triple) (krdf.Triple, error) {
	s, err := toTerm(t.S)
	if err != nil {
		return krdf.Triple{}, err
	}
	p, err := toTerm(t.P)
	if err != nil {
		return krdf.Triple{}, err
	}
	o, err := toTerm(t.O)
	if err != nil {
		return krdf.Triple{}, err
	}
	subj, ok := s.(krdf.Subject)
	if !ok {
		return krdf.Triple{}, fmt.Errorf("rdf: term %q is not a valid subject", t.S.Value)
	}
	pred, ok := p.(krdf.Predicate)
	if !ok {
		return krdf.Triple{}, fmt.Errorf("rdf: term %q is not a valid predicate", t.P.Value)
	}
	obj, ok := o.(krdf.Object)
	if !ok {
		return krdf.Triple{}, fmt.Errorf("rdf: term %q is not a valid object", t.O.Value)
	}
	return krdf.Triple{Subj: subj, Pred: pred, Obj: obj}, nil
}

func toTerm(t Term) (krdf.Term, error) {
	var (
		out krdf.Term
		err error
	)
	switch {
	case t.Kind == KindIRI:
		out, err = krdf.NewIRI(t.Value)
	case t.Kind == KindBlank:
		out, err = krdf.NewBlank(t.Value)
	case t.Lang != "":
		out, err = krdf.NewLangLiteral(t.Value, t.Lang)
	case t.Datatype != "":
		var dt krdf.IRI
		dt, err = krdf.NewIRI(t.Datatype)
		out = krdf.NewTypedLiteral(t.Value, dt)
	default:
		out, err = krdf.NewLiteral(t.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("rdf: term %q: %w", t.Value, err)
	}
	return out, nil
}

// controlEscaper rewrites C0 control bytes other than tab and newline as
// UCHAR escapes. Encoder syntax only uses space, tab and newline, so every
// other control byte comes from a term; UTF-8 never uses bytes below 0x20
// inside multi-byte sequences.
type controlEscaper struct {
	w io.Writer
}

func (c controlEscaper) Write(p []byte) (int, error) {
	clean := true
	for _, b := range p {
		if b < 0x20 && b != '\n' && b != '\t' {
			clean = false
			break
		}
	}
	if clean {
		return c.w.Write(p)
	}
	out := make([]byte, 0, len(p)+16)
	for _, b := range p {
		if b < 0x20 && b != '\n' && b != '\t' {
			out = fmt.Appendf(out, `\u%04X`, b)
			continue
		}
		out = append(out, b)
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// writeJSONLD emits expanded JSON-LD through json-gold's RDF conversion.
func writeJSONLD(w io.Writer, g *Graph) error {
	ds := ld.NewRDFDataset()
	quads := make([]*ld.Quad, 0, len(g.triples))
	for _, t := range g.triples {
		quads = append(quads, ld.NewQuad(ldNode(t.S), ldNode(t.P), ldNode(t.O), "@default"))
	}
	ds.Graphs["@default"] = quads

	doc, err := ld.NewJsonLdProcessor().FromRDF(ds, ld.NewJsonLdOptions(""))
	if err != nil {
		return fmt.Errorf("rdf: json-ld from rdf: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("rdf: encode json-ld: %w", err)
	}
	return nil
}

func ldNode(t Term) ld.Node {
	switch {
	case t.Kind == KindIRI:
		return ld.NewIRI(t.Value)
	case t.Kind == KindBlank:
		return ld.NewBlankNode("_:" + t.Value)
	case t.Lang != "":
		return ld.NewLiteral(t.Value, RDF+"langString", t.Lang)
	case t.Datatype != "":
		return ld.NewLiteral(t.Value, t.Datatype, "")
	default:
		return ld.NewLiteral(t.Value, XSD+"string", "")
	}
}

func writeRDFXML(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	nsNames := make(map[string]string)
	var decls []prefix
	qname := func(iri string) (string, error) {
		i := strings.LastIndexAny(iri, "#/")
		if i < 0 || i == len(iri)-1 {
			return "", fmt.Errorf("rdf: cannot split predicate %q for rdf/xml", iri)
		}
		ns, local := iri[:i+1], iri[i+1:]
		if !validLocal(local) || (local[0] >= '0' && local[0] <= '9') {
			return "", fmt.Errorf("rdf: predicate %q has no xml local name", iri)
		}
		name, ok := nsNames[ns]
		if !ok {
			for _, p := range g.prefixes {
				if p.ns == ns {
					name = p.name
				}
			}
			if name == "" {
				name = "ns" + strconv.Itoa(len(decls)+1)
			}
			nsNames[ns] = name
			decls = append(decls, prefix{name: name, ns: ns})
		}
		return name + ":" + local, nil
	}
	if _, err := qname(RDF + "type"); err != nil {
		return err
	}

	var body strings.Builder
	for _, sg := range g.grouped() {
		if sg.subject.Kind == KindBlank {
			body.WriteString(`  <rdf:Description rdf:nodeID="` + xmlAttr(sg.subject.Value) + `">` + "\n")
		} else {
			body.WriteString(`  <rdf:Description rdf:about="` + xmlAttr(sg.subject.Value) + `">` + "\n")
		}
		for _, pg := range sg.preds {
			q, err := qname(pg.pred.Value)
			if err != nil {
				return err
			}
			for _, o := range pg.objects {
				switch o.Kind {
				case KindIRI:
					body.WriteString("    <" + q + ` rdf:resource="` + xmlAttr(o.Value) + `"/>` + "\n")
				case KindBlank:
					body.WriteString("    <" + q + ` rdf:nodeID="` + xmlAttr(o.Value) + `"/>` + "\n")
				default:
					attr := ""
					if o.Lang != "" {
						attr = ` xml:lang="` + xmlAttr(o.Lang) + `"`
					} else if o.Datatype != "" {
						attr = ` rdf:datatype="` + xmlAttr(o.Datatype) + `"`
					}
					body.WriteString("    <" + q + attr + ">" + xmlText(o.Value) + "</" + q + ">\n")
				}
			}
		}
		body.WriteString("  </rdf:Description>\n")
	}

	bw.WriteString(xml.Header)
	bw.WriteString("<rdf:RDF")
	for _, d := range decls {
		bw.WriteString("\n    xmlns:" + d.name + `="` + xmlAttr(d.ns) + `"`)
	}
	bw.WriteString(">\n")
	bw.WriteString(body.String())
	bw.WriteString("</rdf:RDF>\n")
	return bw.Flush()
}

func xmlText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func xmlAttr(s string) string {
	return xmlText(s)
}
