package parser

import (
	"strings"
)

type NodeKind int

const (
	KindError NodeKind = iota
	KindToken
	KindBlank
	KindUnterminated

	// File structure
	KindSourceFile
	KindShebangLine
	KindFileAnnotation
	KindPackageHeader
	KindImportList
	KindImportHeader
	KindImportAlias
	KindWildcardImport

	// Declarations
	KindClassDeclaration
	KindObjectDeclaration
	KindCompanionObject
	KindFunctionDeclaration
	KindPropertyDeclaration
	KindTypeAlias
	KindAnonymousInitializer
	KindSecondaryConstructor
	KindConstructorDelegationCall
	KindGetter
	KindSetter
	KindPrimaryConstructor
	KindClassParameter
	KindClassBody
	KindEnumClassBody
	KindEnumEntry
	KindDelegationSpecifier
	KindConstructorInvocation
	KindExplicitDelegation
	KindPropertyDelegate
	KindTypeParameters
	KindTypeParameter
	KindTypeConstraints
	KindTypeConstraint
	KindFunctionValueParameters
	KindParameter
	KindFunctionBody
	KindVariableDeclaration
	KindMultiVariableDeclaration

	// Modifiers
	KindModifiers
	KindAnnotation
	KindUseSiteTarget
	KindClassModifier
	KindMemberModifier
	KindVisibilityModifier
	KindFunctionModifier
	KindPropertyModifier
	KindInheritanceModifier
	KindParameterModifier
	KindPlatformModifier
	KindVarianceModifier
	KindReificationModifier
	KindTypeModifiers

	// Types
	KindUserType
	KindNullableType
	KindFunctionType
	KindFunctionTypeParameters
	KindParenthesizedType
	KindTypeArguments
	KindTypeProjection

	// Statements
	KindBlock
	KindControlStructureBody
	KindAssignment
	KindForStatement
	KindWhileStatement
	KindDoWhileStatement
	KindLabel

	// Expressions
	KindPostfixExpression
	KindCallExpression
	KindIndexingExpression
	KindNavigationExpression
	KindCallSuffix
	KindValueArguments
	KindValueArgument
	KindAnnotatedLambda
	KindNavigationSuffix
	KindIndexingSuffix
	KindPrefixExpression
	KindAsExpression
	KindSpreadExpression
	KindMultiplicativeExpression
	KindAdditiveExpression
	KindRangeExpression
	KindInfixExpression
	KindElvisExpression
	KindCheckExpression
	KindComparisonExpression
	KindEqualityExpression
	KindConjunctionExpression
	KindDisjunctionExpression
	KindParenthesizedExpression
	KindCollectionLiteral
	KindThisExpression
	KindSuperExpression
	KindIfExpression
	KindWhenExpression
	KindWhenSubject
	KindWhenEntry
	KindWhenCondition
	KindRangeTest
	KindTypeTest
	KindTryExpression
	KindCatchBlock
	KindFinallyBlock
	KindJumpExpression
	KindCallableReference
	KindLambdaLiteral
	KindLambdaParameters
	KindAnonymousFunction
	KindObjectLiteral

	// Literals
	KindIntegerLiteral
	KindHexLiteral
	KindBinLiteral
	KindRealLiteral
	KindUnsignedLiteral
	KindLongLiteral
	KindBooleanLiteral
	KindCharacterLiteral
	KindNullLiteral
	KindLineStringLiteral
	KindMultiLineStringLiteral
	KindCharacterEscapeSeq
	KindInterpolatedIdentifier
	KindInterpolatedExpression

	// Identifiers and trivia
	KindIdentifier
	KindSimpleIdentifier
	KindTypeIdentifier
	KindLineComment
	KindMultilineComment

	// Hidden helpers, spliced into their parent
	KindStatement
	KindInterpolation
	KindSimpleUserType
	KindSemis
	KindClassMember
)

var nodeKindNames = map[NodeKind]string{
	KindError:                     "ERROR",
	KindToken:                     "token",
	KindBlank:                     "blank",
	KindUnterminated:              "unterminated",
	KindSourceFile:                "source_file",
	KindShebangLine:               "shebang_line",
	KindFileAnnotation:            "file_annotation",
	KindPackageHeader:             "package_header",
	KindImportList:                "import_list",
	KindImportHeader:              "import_header",
	KindImportAlias:               "import_alias",
	KindWildcardImport:            "wildcard_import",
	KindClassDeclaration:          "class_declaration",
	KindObjectDeclaration:         "object_declaration",
	KindCompanionObject:           "companion_object",
	KindFunctionDeclaration:       "function_declaration",
	KindPropertyDeclaration:       "property_declaration",
	KindTypeAlias:                 "type_alias",
	KindAnonymousInitializer:      "anonymous_initializer",
	KindSecondaryConstructor:      "secondary_constructor",
	KindConstructorDelegationCall: "constructor_delegation_call",
	KindGetter:                    "getter",
	KindSetter:                    "setter",
	KindPrimaryConstructor:        "primary_constructor",
	KindClassParameter:            "class_parameter",
	KindClassBody:                 "class_body",
	KindEnumClassBody:             "enum_class_body",
	KindEnumEntry:                 "enum_entry",
	KindDelegationSpecifier:       "delegation_specifier",
	KindConstructorInvocation:     "constructor_invocation",
	KindExplicitDelegation:        "explicit_delegation",
	KindPropertyDelegate:          "property_delegate",
	KindTypeParameters:            "type_parameters",
	KindTypeParameter:             "type_parameter",
	KindTypeConstraints:           "type_constraints",
	KindTypeConstraint:            "type_constraint",
	KindFunctionValueParameters:   "function_value_parameters",
	KindParameter:                 "parameter",
	KindFunctionBody:              "function_body",
	KindVariableDeclaration:       "variable_declaration",
	KindMultiVariableDeclaration:  "multi_variable_declaration",
	KindModifiers:                 "modifiers",
	KindAnnotation:                "annotation",
	KindUseSiteTarget:             "use_site_target",
	KindClassModifier:             "class_modifier",
	KindMemberModifier:            "member_modifier",
	KindVisibilityModifier:        "visibility_modifier",
	KindFunctionModifier:          "function_modifier",
	KindPropertyModifier:          "property_modifier",
	KindInheritanceModifier:       "inheritance_modifier",
	KindParameterModifier:         "parameter_modifier",
	KindPlatformModifier:          "platform_modifier",
	KindVarianceModifier:          "variance_modifier",
	KindReificationModifier:       "reification_modifier",
	KindTypeModifiers:             "type_modifiers",
	KindUserType:                  "user_type",
	KindNullableType:              "nullable_type",
	KindFunctionType:              "function_type",
	KindFunctionTypeParameters:    "function_type_parameters",
	KindParenthesizedType:         "parenthesized_type",
	KindTypeArguments:             "type_arguments",
	KindTypeProjection:            "type_projection",
	KindBlock:                     "block",
	KindControlStructureBody:      "control_structure_body",
	KindAssignment:                "assignment",
	KindForStatement:              "for_statement",
	KindWhileStatement:            "while_statement",
	KindDoWhileStatement:          "do_while_statement",
	KindLabel:                     "label",
	KindPostfixExpression:         "postfix_expression",
	KindCallExpression:            "call_expression",
	KindIndexingExpression:        "indexing_expression",
	KindNavigationExpression:      "navigation_expression",
	KindCallSuffix:                "call_suffix",
	KindValueArguments:            "value_arguments",
	KindValueArgument:             "value_argument",
	KindAnnotatedLambda:           "annotated_lambda",
	KindNavigationSuffix:          "navigation_suffix",
	KindIndexingSuffix:            "indexing_suffix",
	KindPrefixExpression:          "prefix_expression",
	KindAsExpression:              "as_expression",
	KindSpreadExpression:          "spread_expression",
	KindMultiplicativeExpression:  "multiplicative_expression",
	KindAdditiveExpression:        "additive_expression",
	KindRangeExpression:           "range_expression",
	KindInfixExpression:           "infix_expression",
	KindElvisExpression:           "elvis_expression",
	KindCheckExpression:           "check_expression",
	KindComparisonExpression:      "comparison_expression",
	KindEqualityExpression:        "equality_expression",
	KindConjunctionExpression:     "conjunction_expression",
	KindDisjunctionExpression:     "disjunction_expression",
	KindParenthesizedExpression:   "parenthesized_expression",
	KindCollectionLiteral:         "collection_literal",
	KindThisExpression:            "this_expression",
	KindSuperExpression:           "super_expression",
	KindIfExpression:              "if_expression",
	KindWhenExpression:            "when_expression",
	KindWhenSubject:               "when_subject",
	KindWhenEntry:                 "when_entry",
	KindWhenCondition:             "when_condition",
	KindRangeTest:                 "range_test",
	KindTypeTest:                  "type_test",
	KindTryExpression:             "try_expression",
	KindCatchBlock:                "catch_block",
	KindFinallyBlock:              "finally_block",
	KindJumpExpression:            "jump_expression",
	KindCallableReference:         "callable_reference",
	KindLambdaLiteral:             "lambda_literal",
	KindLambdaParameters:          "lambda_parameters",
	KindAnonymousFunction:         "anonymous_function",
	KindObjectLiteral:             "object_literal",
	KindIntegerLiteral:            "integer_literal",
	KindHexLiteral:                "hex_literal",
	KindBinLiteral:                "bin_literal",
	KindRealLiteral:               "real_literal",
	KindUnsignedLiteral:           "unsigned_literal",
	KindLongLiteral:               "long_literal",
	KindBooleanLiteral:            "boolean_literal",
	KindCharacterLiteral:          "character_literal",
	KindNullLiteral:               "null_literal",
	KindLineStringLiteral:         "line_string_literal",
	KindMultiLineStringLiteral:    "multi_line_string_literal",
	KindCharacterEscapeSeq:        "character_escape_seq",
	KindInterpolatedIdentifier:    "interpolated_identifier",
	KindInterpolatedExpression:    "interpolated_expression",
	KindIdentifier:                "identifier",
	KindSimpleIdentifier:          "simple_identifier",
	KindTypeIdentifier:            "type_identifier",
	KindLineComment:               "line_comment",
	KindMultilineComment:          "multiline_comment",
	KindStatement:                 "_statement",
	KindInterpolation:             "_interpolation",
	KindSimpleUserType:            "_simple_user_type",
	KindSemis:                     "_semi",
	KindClassMember:               "_class_member",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsHidden reports whether nodes of this kind are spliced into their
// parent instead of appearing in the tree.
func (k NodeKind) IsHidden() bool {
	return strings.HasPrefix(k.String(), "_")
}

// IsNamed reports whether nodes of this kind show up in s-expressions.
// Punctuation, keywords and terminators are anonymous.
func (k NodeKind) IsNamed() bool {
	return k != KindToken && !k.IsHidden()
}

// LookupNodeKind returns the kind with the given public name.
func LookupNodeKind(name string) (NodeKind, bool) {
	for k, n := range nodeKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

type Node struct {
	Kind     NodeKind
	Field    string
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error

	// comments precede this leaf in the source and are placed before it
	// when it is attached to a parent.
	comments []*Node
}

func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	if len(child.comments) > 0 {
		comments := child.comments
		child.comments = nil
		for _, c := range comments {
			n.AddChild(c)
		}
	}
	if alias, ok := aliasFor(n.Kind, child.Kind); ok {
		child.Kind = alias
	}
	if child.Kind.IsHidden() {
		for _, c := range child.Children {
			if c.Field == "" {
				c.Field = child.Field
			}
			n.AddChild(c)
		}
		return
	}
	if len(n.Children) == 0 && n.Token == nil {
		n.Span.Start = child.Span.Start
	}
	n.Span.End = child.Span.End
	n.Children = append(n.Children, child)
}

// AddField attaches child under the given field name.
func (n *Node) AddField(field string, child *Node) {
	if child == nil {
		return
	}
	child.Field = field
	n.AddChild(child)
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) IsNamed() bool {
	return n.Kind.IsNamed()
}

// IsLeaf reports whether the node stands for exactly one token.
func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// HasErrors reports whether the subtree contains an error or an
// unterminated literal.
func (n *Node) HasErrors() bool {
	found := false
	n.Walk(func(c *Node) bool {
		if c.Kind == KindError || c.Kind == KindUnterminated {
			found = true
		}
		return !found
	})
	return found
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// ChildByField returns the first child attached under field.
func (n *Node) ChildByField(field string) *Node {
	for _, child := range n.Children {
		if child.Field == field {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenByField(field string) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Field == field {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) NamedChildren() []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.IsNamed() {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Walk visits the subtree in source order. Returning false from fn skips
// the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Leaves returns the token-bearing nodes in source order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			leaves = append(leaves, c)
		}
		return true
	})
	return leaves
}

// Text reassembles the source covered by the subtree, leading whitespace
// included. For a source_file it reproduces the parsed input exactly.
func (n *Node) Text() string {
	var sb strings.Builder
	for _, leaf := range n.Leaves() {
		sb.WriteString(leaf.Token.Leading)
		sb.WriteString(leaf.Token.Literal)
	}
	return sb.String()
}

func (n *Node) String() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, false)
	return sb.String()
}

func (n *Node) StringWithPositions() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, true)
	return sb.String()
}

func (n *Node) writeIndent(sb *strings.Builder, indent int, showPositions bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	if n.Field != "" {
		sb.WriteString(n.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(n.Kind.String())
	if showPositions {
		sb.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		sb.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		sb.WriteString(" ERROR: " + n.Error.Message)
	}
	sb.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(sb, indent+1, showPositions)
	}
}
