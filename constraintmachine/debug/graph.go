// Package debug renders a constraint machine's registered transition
// tokens as a dependency graph, for diagnosing "why is there no procedure
// for this pair" questions without stepping through a debugger.
package debug

import (
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/i2/radix-engine-library/particle"
)

// TokenGraph is a directed graph from input particle class to output
// particle class, one edge per registered transition token. Multiple
// tokens between the same pair of classes (different UsedData shapes)
// collapse to a single edge; Dump lists them individually instead.
type TokenGraph struct {
	g      graph.Graph[particle.ClassTag, particle.ClassTag]
	tokens map[[2]particle.ClassTag][]string
}

// TokenLister is satisfied by anything that can enumerate its own
// registered tokens as TokenDescriptors — constraintmachine.Machine does not
// expose its procedure table directly, so callers build this from
// whatever bookkeeping they kept at registration time (e.g. atomos.Env).
type TokenLister interface {
	RegisteredTokens() []TokenDescriptor
}

// TokenDescriptor is the minimal shape debug needs from a registered
// transition token.
type TokenDescriptor struct {
	InputClass     particle.ClassTag
	InputUsedType  string
	OutputClass    particle.ClassTag
	OutputUsedType string
}

// Build constructs a TokenGraph from a list of token descriptors.
func Build(tokens []TokenDescriptor) (*TokenGraph, error) {
	g := graph.New(func(c particle.ClassTag) particle.ClassTag { return c }, graph.Directed())
	tg := &TokenGraph{g: g, tokens: make(map[[2]particle.ClassTag][]string)}

	for _, tok := range tokens {
		_ = g.AddVertex(tok.InputClass)
		_ = g.AddVertex(tok.OutputClass)
		if err := g.AddEdge(tok.InputClass, tok.OutputClass); err != nil && err != graph.ErrEdgeAlreadyExists {
			return nil, fmt.Errorf("debug: adding edge %s -> %s: %w", tok.InputClass, tok.OutputClass, err)
		}
		key := [2]particle.ClassTag{tok.InputClass, tok.OutputClass}
		tg.tokens[key] = append(tg.tokens[key], fmt.Sprintf("(%s,%s)", tok.InputUsedType, tok.OutputUsedType))
	}
	return tg, nil
}

// Dump renders the graph as a deterministic, human-readable adjacency
// listing: one line per input class, each output class annotated with the
// UsedData-shape pairs registered between them.
func (tg *TokenGraph) Dump() (string, error) {
	adjacency, err := tg.g.AdjacencyMap()
	if err != nil {
		return "", fmt.Errorf("debug: adjacency map: %w", err)
	}

	var sb strings.Builder
	classes := make([]particle.ClassTag, 0, len(adjacency))
	for c := range adjacency {
		classes = append(classes, c)
	}
	sortClassTags(classes)

	for _, from := range classes {
		edges := adjacency[from]
		if len(edges) == 0 {
			continue
		}
		tos := make([]particle.ClassTag, 0, len(edges))
		for to := range edges {
			tos = append(tos, to)
		}
		sortClassTags(tos)

		fmt.Fprintf(&sb, "%s:\n", from)
		for _, to := range tos {
			shapes := tg.tokens[[2]particle.ClassTag{from, to}]
			fmt.Fprintf(&sb, "  -> %s %v\n", to, shapes)
		}
	}
	return sb.String(), nil
}

func sortClassTags(cs []particle.ClassTag) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1] > cs[j]; j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}
