// Package rdf builds small in-memory graphs and serializes them as Turtle,
// N-Triples, N3, JSON-LD (expanded form) or RDF/XML.
package rdf

import "strconv"

type TermKind int

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

func Blank(id string) Term { return Term{Kind: KindBlank, Value: id} }

func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

func Typed(v, datatype string) Term { return Term{Kind: KindLiteral, Value: v, Datatype: datatype} }

func LangLiteral(v, lang string) Term { return Term{Kind: KindLiteral, Value: v, Lang: lang} }

type Triple struct {
	S, P, O Term
}

// Graph keeps triples in insertion order; serializers group them by subject
// in order of first appearance.
type Graph struct {
	triples  []Triple
	prefixes []prefix
	blanks   int
}

type prefix struct {
	name, ns string
}

func NewGraph() *Graph {
	g := &Graph{}
	g.Bind("rdf", RDF)
	g.Bind("rdfs", RDFS)
	g.Bind("xsd", XSD)
	return g
}

// Bind registers a prefix used by Turtle and RDF/XML output.
func (g *Graph) Bind(name, ns string) {
	for i, p := range g.prefixes {
		if p.name == name {
			g.prefixes[i].ns = ns
			return
		}
	}
	g.prefixes = append(g.prefixes, prefix{name: name, ns: ns})
}

// Add skips literal objects with empty values.
func (g *Graph) Add(s, p, o Term) {
	if o.Kind == KindLiteral && o.Value == "" {
		return
	}
	g.triples = append(g.triples, Triple{S: s, P: p, O: o})
}

// NewBlank allocates a fresh blank node.
func (g *Graph) NewBlank() Term {
	g.blanks++
	return Blank("b" + strconv.Itoa(g.blanks))
}

func (g *Graph) Len() int { return len(g.triples) }

func (g *Graph) Triples() []Triple { return g.triples }

// Has reports whether the exact triple is present.
func (g *Graph) Has(s, p, o Term) bool {
	for _, t := range g.triples {
		if t.S == s && t.P == p && t.O == o {
			return true
		}
	}
	return false
}

type subjectGroup struct {
	subject Term
	preds   []predicateGroup
}

type predicateGroup struct {
	pred    Term
	objects []Term
}

func (g *Graph) grouped() []subjectGroup {
	var out []subjectGroup
	idx := make(map[Term]int)
	for _, t := range g.triples {
		i, ok := idx[t.S]
		if !ok {
			i = len(out)
			idx[t.S] = i
			out = append(out, subjectGroup{subject: t.S})
		}
		sg := &out[i]
		found := false
		for j := range sg.preds {
			if sg.preds[j].pred == t.P {
				sg.preds[j].objects = append(sg.preds[j].objects, t.O)
				found = true
				break
			}
		}
		if !found {
			sg.preds = append(sg.preds, predicateGroup{pred: t.P, objects: []Term{t.O}})
		}
	}
	return out
}

func validLocal(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case r == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}
