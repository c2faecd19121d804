package parser

import (
	"sort"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ktcst.parser")

type Alternative struct {
	Name              string
	DynamicPrecedence int
}

// ConflictGroup names alternatives that may compete for the same input.
// Resolution tries them by descending dynamic precedence, then in
// declaration order, and keeps the first that succeeds.
type ConflictGroup struct {
	Name         string
	Alternatives []Alternative
}

const (
	conflictGenerics       = "generics_vs_comparison"
	conflictAnnotation     = "annotation_vs_prefix_expression"
	conflictSoftKeyword    = "soft_keyword_vs_identifier"
	conflictDelegationType = "delegation_user_type"
	conflictDelegationBody = "delegation_body"
	conflictIfElse         = "if_else_chain"
)

var conflictGroups = []ConflictGroup{
	{conflictGenerics, []Alternative{{"call_with_type_arguments", 0}, {"comparison", 0}}},
	{conflictAnnotation, []Alternative{{"annotation", 0}, {"prefix_expression", 0}}},
	{conflictSoftKeyword, []Alternative{{"modifier_or_accessor", 0}, {"simple_identifier", 0}}},
	{conflictDelegationType, []Alternative{{"greedy_user_type", 0}, {"separate_items", 0}}},
	{conflictDelegationBody, []Alternative{{"anonymous_function", 0}, {"class_body", 0}}},
	{conflictIfElse, []Alternative{{"else_attached", 1}, {"if_alone", 0}}},
}

func ConflictGroups() []ConflictGroup {
	groups := make([]ConflictGroup, len(conflictGroups))
	copy(groups, conflictGroups)
	return groups
}

func lookupConflictGroup(name string) ConflictGroup {
	for _, g := range conflictGroups {
		if g.Name == name {
			return g
		}
	}
	panic("unknown conflict group " + name)
}

// Ordered returns the alternatives in the order they are tried.
func (g ConflictGroup) Ordered() []Alternative {
	alts := make([]Alternative, len(g.Alternatives))
	copy(alts, g.Alternatives)
	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].DynamicPrecedence > alts[j].DynamicPrecedence
	})
	return alts
}

// attempt parses one alternative. It reports false when the alternative
// does not apply; the parser state is then rolled back.
type attempt func() (*Node, bool)

// resolve runs the alternatives of a conflict group and returns the result
// of the first that applies, along with its name. A nil node with a
// non-empty name means the winning alternative chose to build nothing.
func (p *Parser) resolve(group string, attempts map[string]attempt) (*Node, string) {
	g := lookupConflictGroup(group)
	at := p.peek().Span.Start
	for _, alt := range g.Ordered() {
		try, ok := attempts[alt.Name]
		if !ok {
			continue
		}
		m := p.mark()
		n, ok := try()
		if ok {
			if log.AllowLevel(commonlog.Debug) {
				log.Debugf("%s: %s at %s", g.Name, alt.Name, at)
			}
			return n, alt.Name
		}
		p.reset(m)
	}
	return nil, ""
}
