package parser

import "sort"

// Field names.
const (
	FieldIdentifier    = "identifier"
	FieldTypeOptional  = "type_optional"
	FieldCondition     = "condition"
	FieldConsequence   = "consequence"
	FieldAlternative   = "alternative"
	FieldBlockIterator = "block_iterator"
	FieldIterable      = "iterable"
	FieldBody          = "body"
	FieldLeft          = "left"
	FieldRight         = "right"
	FieldOperator      = "operator"
	FieldParameters    = "parameters"
	FieldReturnType    = "return_type"
	FieldType          = "type"
	FieldValue         = "value"

	FieldImports    = "imports"
	FieldStatements = "statements"
	FieldMember     = "member"
	FieldEntry      = "entry"
	FieldParameter  = "parameter"
	FieldArgument   = "argument"
	FieldCatch      = "catch"
)

// rule is the shape metadata of one node kind.
type rule struct {
	// placeholders are fields that are always present, bound to a blank
	// node when the list they stand for is empty.
	placeholders []string

	// aliases rename children attached directly under this kind.
	aliases map[NodeKind]NodeKind
}

var rules = map[NodeKind]rule{
	KindSourceFile:              {placeholders: []string{FieldImports, FieldStatements}},
	KindBlock:                   {placeholders: []string{FieldStatements}},
	KindLambdaLiteral:           {placeholders: []string{FieldStatements}},
	KindClassBody:               {placeholders: []string{FieldMember}},
	KindEnumClassBody:           {placeholders: []string{FieldEntry, FieldMember}},
	KindFunctionValueParameters: {placeholders: []string{FieldParameter}},
	KindValueArguments:          {placeholders: []string{FieldArgument}},
	KindTryExpression:           {placeholders: []string{FieldCatch}},
	KindWhenExpression:          {placeholders: []string{FieldEntry}},
	KindVariableDeclaration:     {placeholders: []string{FieldTypeOptional}},

	KindSimpleUserType: {aliases: map[NodeKind]NodeKind{KindSimpleIdentifier: KindTypeIdentifier}},
	KindInterpolation:  {aliases: map[NodeKind]NodeKind{KindSimpleIdentifier: KindInterpolatedIdentifier}},
}

// Placeholders returns the always-present fields of kind.
func Placeholders(kind NodeKind) []string {
	return rules[kind].placeholders
}

func aliasFor(context, kind NodeKind) (NodeKind, bool) {
	alias, ok := rules[context].aliases[kind]
	return alias, ok
}

// Aliases lists the alias table as context, internal and public kinds.
func Aliases() [][3]NodeKind {
	var result [][3]NodeKind
	for context, r := range rules {
		for from, to := range r.aliases {
			result = append(result, [3]NodeKind{context, from, to})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i][0] != result[j][0] {
			return result[i][0] < result[j][0]
		}
		return result[i][1] < result[j][1]
	})
	return result
}

// Kinds returns every node kind in declaration order.
func Kinds() []NodeKind {
	kinds := make([]NodeKind, 0, len(nodeKindNames))
	for k := range nodeKindNames {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Fields returns the field names the parser attaches.
func Fields() []string {
	return []string{
		FieldIdentifier, FieldTypeOptional, FieldCondition, FieldConsequence,
		FieldAlternative, FieldBlockIterator, FieldIterable, FieldBody,
		FieldLeft, FieldRight, FieldOperator, FieldParameters,
		FieldReturnType, FieldType, FieldValue,
		FieldImports, FieldStatements, FieldMember, FieldEntry,
		FieldParameter, FieldArgument, FieldCatch,
	}
}

// MissingPlaceholders walks the tree and reports nodes lacking one of
// their always-present fields.
func MissingPlaceholders(root *Node) []string {
	var missing []string
	root.Walk(func(n *Node) bool {
		for _, field := range Placeholders(n.Kind) {
			if n.ChildByField(field) == nil {
				missing = append(missing, n.Kind.String()+"."+field+" at "+n.Span.Start.String())
			}
		}
		return true
	})
	return missing
}
