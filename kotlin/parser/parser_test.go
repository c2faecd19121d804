package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTree(t *testing.T, src string, opts ...Option) (*Node, []*Error) {
	t.Helper()
	p := ParseSourceFile(strings.NewReader(src), opts...)
	tree := p.Finish()
	require.NotNil(t, tree)
	return tree, p.Errors()
}

func assertTree(t *testing.T, src, want string) {
	t.Helper()
	tree, errs := parseTree(t, src)
	for _, e := range errs {
		t.Errorf("unexpected error: %v", e)
	}
	diffs, err := DiffTree(want, tree)
	require.NoError(t, err)
	for _, d := range diffs {
		t.Error(d)
	}
	if t.Failed() {
		t.Logf("tree: %s", tree.SExpr())
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"integers on separate lines",
			"0\n8\n23\n9847",
			`(source_file
				statements: (integer_literal)
				statements: (integer_literal)
				statements: (integer_literal)
				statements: (integer_literal))`,
		},
		{"real with suffix", "4.3f", `(source_file statements: (real_literal))`},
		{
			"signed real",
			"+53.9e-3F",
			`(source_file statements: (prefix_expression (real_literal)))`,
		},
		{
			"negative real",
			"-23.434",
			`(source_file statements: (prefix_expression (real_literal)))`,
		},
		{"hex", "0xFF", `(source_file statements: (hex_literal))`},
		{"binary", "0b1010", `(source_file statements: (bin_literal))`},
		{"unsigned", "1u", `(source_file statements: (unsigned_literal (integer_literal)))`},
		{"long", "3L", `(source_file statements: (long_literal (integer_literal)))`},
		{"unsigned hex", "0xFFuL", `(source_file statements: (unsigned_literal (hex_literal)))`},
		{"character", `'a'`, `(source_file statements: (character_literal))`},
		{"null", "null", `(source_file statements: (null_literal))`},
		{
			"booleans",
			"true\nfalse",
			`(source_file statements: (boolean_literal) statements: (boolean_literal))`,
		},
		{
			"identifier interpolation",
			`"Sample $string.interpolation literal"`,
			`(source_file statements: (line_string_literal (interpolated_identifier)))`,
		},
		{
			"expression interpolation",
			`"x${a + 1}y"`,
			`(source_file
				statements: (line_string_literal
					(interpolated_expression
						(additive_expression left: (simple_identifier) right: (integer_literal)))))`,
		},
		{
			"escapes",
			`"\t\u0041"`,
			`(source_file statements: (line_string_literal (character_escape_seq) (character_escape_seq)))`,
		},
		{
			"multi-line string",
			"\"\"\"\n  $name \\n\n\"\"\"",
			`(source_file statements: (multi_line_string_literal (interpolated_identifier)))`,
		},
		{
			"nested string",
			`"${f("in")}"`,
			`(source_file
				statements: (line_string_literal
					(interpolated_expression
						(call_expression (simple_identifier) (call_suffix (value_arguments
							argument: (value_argument (line_string_literal))))))))`,
		},
		{
			"collection literal",
			"[1, 2]",
			`(source_file statements: (collection_literal (integer_literal) (integer_literal)))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTree(t, tt.input, tt.want)
		})
	}
}

func TestInterpolationHasOneNamedChild(t *testing.T) {
	tree, errs := parseTree(t, `"Sample $string.interpolation literal"`)
	require.Empty(t, errs)
	str := tree.FirstChildOfKind(KindLineStringLiteral)
	require.NotNil(t, str)

	named := str.NamedChildren()
	require.Len(t, named, 1)
	assert.Equal(t, KindInterpolatedIdentifier, named[0].Kind)
	assert.Equal(t, "string", named[0].TokenLiteral())
}

func TestInferredTerminators(t *testing.T) {
	tree, errs := parseTree(t, "true\nfalse")
	require.Empty(t, errs)

	var kinds []string
	for _, c := range tree.Children {
		switch {
		case c.Kind == KindBooleanLiteral:
			kinds = append(kinds, c.TokenLiteral())
		case c.Token != nil && c.Token.Kind == TokenTerminator:
			kinds = append(kinds, "terminator")
		}
	}
	assert.Equal(t, []string{"true", "terminator", "false", "terminator"}, kinds)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"comparison chain",
			"foo < b > c",
			`(source_file statements: (comparison_expression
				left: (comparison_expression left: (simple_identifier) right: (simple_identifier))
				right: (simple_identifier)))`,
		},
		{
			"call with type arguments",
			"foo<Int>(1)",
			`(source_file statements: (call_expression
				(simple_identifier)
				(call_suffix
					(type_arguments (type_projection (user_type (type_identifier))))
					(value_arguments argument: (value_argument (integer_literal))))))`,
		},
		{
			"precedence",
			"a + b * c",
			`(source_file statements: (additive_expression
				left: (simple_identifier)
				right: (multiplicative_expression left: (simple_identifier) right: (simple_identifier))))`,
		},
		{
			"additive is left associative",
			"a - b - c",
			`(source_file statements: (additive_expression
				left: (additive_expression left: (simple_identifier) right: (simple_identifier))
				right: (simple_identifier)))`,
		},
		{
			"elvis below range",
			"a ?: b..c",
			`(source_file statements: (elvis_expression
				left: (simple_identifier)
				right: (range_expression left: (simple_identifier) right: (simple_identifier))))`,
		},
		{
			"conjunction below equality",
			"a == b && c",
			`(source_file statements: (conjunction_expression
				left: (equality_expression left: (simple_identifier) right: (simple_identifier))
				right: (simple_identifier)))`,
		},
		{
			"type check",
			"x !is String",
			`(source_file statements: (check_expression
				left: (simple_identifier) right: (user_type (type_identifier))))`,
		},
		{
			"cast",
			"x as? List<Int>",
			`(source_file statements: (as_expression
				left: (simple_identifier)
				right: (user_type (type_identifier) (type_arguments (type_projection (user_type (type_identifier)))))))`,
		},
		{
			"infix function",
			"1 shl 2",
			`(source_file statements: (infix_expression
				left: (integer_literal) right: (integer_literal)))`,
		},
		{
			"safe navigation",
			"a?.b",
			`(source_file statements: (navigation_expression (simple_identifier) (navigation_suffix (simple_identifier))))`,
		},
		{
			"navigation continues on next line",
			"a\n  .b",
			`(source_file statements: (navigation_expression (simple_identifier) (navigation_suffix (simple_identifier))))`,
		},
		{
			"indexing",
			"list[0]",
			`(source_file statements: (indexing_expression (simple_identifier) (indexing_suffix (integer_literal))))`,
		},
		{
			"not-null assertion",
			"x!!",
			`(source_file statements: (postfix_expression (simple_identifier)))`,
		},
		{
			"callable reference",
			"String::length",
			`(source_file statements: (callable_reference (simple_identifier) (simple_identifier)))`,
		},
		{
			"trailing lambda",
			"list.map { it * 2 }",
			`(source_file statements: (call_expression
				(navigation_expression (simple_identifier) (navigation_suffix (simple_identifier)))
				(call_suffix (annotated_lambda (lambda_literal
					statements: (multiplicative_expression left: (simple_identifier) right: (integer_literal)))))))`,
		},
		{
			"lambda parameters",
			"{ a, b -> a }",
			`(source_file statements: (lambda_literal
				(lambda_parameters
					(variable_declaration identifier: (simple_identifier))
					(variable_declaration identifier: (simple_identifier)))
				statements: (simple_identifier)))`,
		},
		{
			"named and spread arguments",
			"f(x = 1, *rest)",
			`(source_file statements: (call_expression
				(simple_identifier)
				(call_suffix (value_arguments
					argument: (value_argument (simple_identifier) (integer_literal))
					argument: (value_argument (spread_expression (simple_identifier)))))))`,
		},
		{
			"annotated expression",
			"@Ann x",
			`(source_file statements: (prefix_expression
				(annotation (user_type (type_identifier)))
				(simple_identifier)))`,
		},
		{
			"soft keyword as a name",
			"data.size",
			`(source_file statements: (navigation_expression (simple_identifier) (navigation_suffix (simple_identifier))))`,
		},
		{
			"assignment",
			"x += 1",
			`(source_file statements: (assignment left: (simple_identifier) right: (integer_literal)))`,
		},
		{
			"this with label",
			"this@Outer",
			`(source_file statements: (this_expression (type_identifier)))`,
		},
		{
			"object literal",
			"object : Runnable { }",
			`(source_file statements: (object_literal
				(delegation_specifier (user_type (type_identifier)))
				body: (class_body)))`,
		},
		{
			"anonymous function",
			"fun(x: Int) = x",
			`(source_file statements: (anonymous_function
				parameters: (function_value_parameters
					parameter: (parameter identifier: (simple_identifier) type: (user_type (type_identifier))))
				body: (function_body (simple_identifier))))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTree(t, tt.input, tt.want)
		})
	}
}

func TestParseControlFlow(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"if else across lines",
			"if (a) b\nelse c",
			`(source_file statements: (if_expression
				condition: (simple_identifier)
				consequence: (control_structure_body (simple_identifier))
				alternative: (control_structure_body (simple_identifier))))`,
		},
		{
			"else if chain",
			"if (a) 1 else if (b) 2 else 3",
			`(source_file statements: (if_expression
				condition: (simple_identifier)
				consequence: (control_structure_body (integer_literal))
				alternative: (control_structure_body (if_expression
					condition: (simple_identifier)
					consequence: (control_structure_body (integer_literal))
					alternative: (control_structure_body (integer_literal))))))`,
		},
		{
			"if without else",
			"if (a) b\nc",
			`(source_file
				statements: (if_expression condition: (simple_identifier) consequence: (control_structure_body (simple_identifier)))
				statements: (simple_identifier))`,
		},
		{
			"when",
			"when (x) {\n  1, 2 -> a\n  in 3..4 -> b\n  is String -> c\n  else -> d\n}",
			`(source_file statements: (when_expression
				(when_subject (simple_identifier))
				entry: (when_entry
					(when_condition (integer_literal))
					(when_condition (integer_literal))
					body: (control_structure_body (simple_identifier)))
				entry: (when_entry
					(when_condition (range_test (range_expression left: (integer_literal) right: (integer_literal))))
					body: (control_structure_body (simple_identifier)))
				entry: (when_entry
					(when_condition (type_test (user_type (type_identifier))))
					body: (control_structure_body (simple_identifier)))
				entry: (when_entry body: (control_structure_body (simple_identifier)))))`,
		},
		{
			"try catch finally",
			"try { a() } catch (e: Exception) { } finally { }",
			`(source_file statements: (try_expression
				body: (block statements: (call_expression (simple_identifier) (call_suffix (value_arguments))))
				catch: (catch_block
					identifier: (simple_identifier)
					type: (user_type (type_identifier))
					body: (block))
				(finally_block (block))))`,
		},
		{
			"for loop",
			"for (i in 0..10) println(i)",
			`(source_file statements: (for_statement
				block_iterator: (variable_declaration identifier: (simple_identifier))
				iterable: (range_expression left: (integer_literal) right: (integer_literal))
				body: (control_structure_body (call_expression (simple_identifier) (call_suffix _)))))`,
		},
		{
			"destructuring for loop",
			"for ((k, v) in m) {}",
			`(source_file statements: (for_statement
				block_iterator: (multi_variable_declaration
					(variable_declaration identifier: (simple_identifier))
					(variable_declaration identifier: (simple_identifier)))
				iterable: (simple_identifier)
				body: (control_structure_body (block))))`,
		},
		{
			"while with empty body",
			"while (x);",
			`(source_file statements: (while_statement condition: (simple_identifier)))`,
		},
		{
			"do while",
			"do { x-- } while (x > 0)",
			`(source_file statements: (do_while_statement
				body: (control_structure_body (block statements: (postfix_expression (simple_identifier))))
				condition: (comparison_expression left: (simple_identifier) right: (integer_literal))))`,
		},
		{
			"labeled loop with break",
			"loop@ for (i in x) break@loop",
			`(source_file
				(label)
				statements: (for_statement
					block_iterator: _
					iterable: (simple_identifier)
					body: (control_structure_body (jump_expression (type_identifier)))))`,
		},
		{
			"return without value before newline",
			"fun f() {\n  return\n  g()\n}",
			`(source_file statements: (function_declaration
				identifier: (simple_identifier)
				parameters: (function_value_parameters)
				body: (function_body (block
					statements: (jump_expression)
					statements: (call_expression (simple_identifier) (call_suffix _))))))`,
		},
		{
			"throw",
			"throw IllegalStateException()",
			`(source_file statements: (jump_expression (call_expression (simple_identifier) (call_suffix _))))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTree(t, tt.input, tt.want)
		})
	}
}

func TestParseDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"soft keyword as property name",
			"val data = 5",
			`(source_file statements: (property_declaration
				(variable_declaration identifier: (simple_identifier))
				value: (integer_literal)))`,
		},
		{
			"soft keyword as modifier",
			"data class Foo",
			`(source_file statements: (class_declaration
				(modifiers (class_modifier))
				identifier: (type_identifier)))`,
		},
		{
			"package and imports",
			"package com.example\n\nimport kotlin.math.*\nimport foo.Bar as Baz\n",
			`(source_file
				(package_header (identifier (simple_identifier) (simple_identifier)))
				imports: (import_list
					(import_header (identifier (simple_identifier) (simple_identifier)) (wildcard_import))
					(import_header (identifier (simple_identifier) (simple_identifier)) (import_alias (type_identifier)))))`,
		},
		{
			"shebang",
			"#!/usr/bin/env kotlin\nprintln()",
			`(source_file (shebang_line) statements: (call_expression (simple_identifier) (call_suffix _)))`,
		},
		{
			"class with constructor and supertype",
			"class Point(val x: Int, val y: Int) : Base() {\n  fun len() = 0\n}",
			`(source_file statements: (class_declaration
				identifier: (type_identifier)
				(primary_constructor
					(class_parameter identifier: (simple_identifier) type: (user_type (type_identifier)))
					(class_parameter identifier: (simple_identifier) type: (user_type (type_identifier))))
				(delegation_specifier (constructor_invocation (user_type (type_identifier)) (value_arguments)))
				body: (class_body
					member: (function_declaration
						identifier: (simple_identifier)
						parameters: (function_value_parameters)
						body: (function_body (integer_literal))))))`,
		},
		{
			"enum class",
			"enum class Color { RED, GREEN; fun x() = 1 }",
			`(source_file statements: (class_declaration
				(modifiers (class_modifier))
				identifier: (type_identifier)
				body: (enum_class_body
					entry: (enum_entry identifier: (simple_identifier))
					entry: (enum_entry identifier: (simple_identifier))
					member: (function_declaration _ _ _))))`,
		},
		{
			"extension function",
			"fun <T> List<T>.second(): T = this[1]",
			`(source_file statements: (function_declaration
				(type_parameters _)
				(user_type (type_identifier) (type_arguments (type_projection (user_type (type_identifier)))))
				identifier: (simple_identifier)
				parameters: (function_value_parameters)
				return_type: (user_type (type_identifier))
				body: (function_body (indexing_expression (this_expression) (indexing_suffix (integer_literal))))))`,
		},
		{
			"annotated function",
			`@Suppress("x") fun f() {}`,
			`(source_file statements: (function_declaration
				(modifiers (annotation (constructor_invocation
					(user_type (type_identifier))
					(value_arguments argument: (value_argument (line_string_literal))))))
				identifier: (simple_identifier)
				parameters: (function_value_parameters)
				body: (function_body (block))))`,
		},
		{
			"property with getter",
			"val x: Int\n  get() = 1",
			`(source_file statements: (property_declaration
				(variable_declaration identifier: (simple_identifier) type_optional: (user_type (type_identifier)))
				(getter body: (function_body (integer_literal)))))`,
		},
		{
			"delegated property",
			"val lazyValue by lazy { 1 }",
			`(source_file statements: (property_declaration
				(variable_declaration identifier: (simple_identifier))
				(property_delegate (call_expression (simple_identifier) (call_suffix _)))))`,
		},
		{
			"nullable and function types",
			"val f: ((Int) -> String)? = null",
			`(source_file statements: (property_declaration
				(variable_declaration
					identifier: (simple_identifier)
					type_optional: (nullable_type (parenthesized_type (function_type
						(function_type_parameters (user_type (type_identifier)))
						return_type: (user_type (type_identifier))))))
				value: (null_literal)))`,
		},
		{
			"type alias",
			"typealias Names = List<String>",
			`(source_file statements: (type_alias
				identifier: (type_identifier)
				type: (user_type (type_identifier) (type_arguments _))))`,
		},
		{
			"object with companion",
			"class A {\n  companion object {\n    const val K = 1\n  }\n}",
			`(source_file statements: (class_declaration
				identifier: (type_identifier)
				body: (class_body member: (companion_object
					body: (class_body member: (property_declaration
						(modifiers (property_modifier))
						(variable_declaration identifier: (simple_identifier))
						value: (integer_literal)))))))`,
		},
		{
			"class delegation",
			"class A : B by c {\n}",
			`(source_file statements: (class_declaration
				identifier: (type_identifier)
				(delegation_specifier (explicit_delegation (user_type (type_identifier)) (simple_identifier)))
				body: (class_body)))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTree(t, tt.input, tt.want)
		})
	}
}

func TestSExpr(t *testing.T) {
	tree, errs := parseTree(t, "val x = 1\n")
	require.Empty(t, errs)
	want := "(source_file statements: (property_declaration (variable_declaration identifier: (simple_identifier)) value: (integer_literal)))"
	assert.Equal(t, want, tree.SExpr())
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"\n\n",
		"// header\npackage a.b\n\n/* doc */\nfun f() {} // trailing\n",
		"fun main() {\n\tprintln(\"Hello, ${name.uppercase()}!\")\n}\n",
		"class A<T : Any>(private val t: T) where T : Comparable<T> {\n  init { check(t != null) }\n}\n",
		"val s = \"\"\"\n  |multi $line\n  |${1 + 2}\n\"\"\".trimMargin()\r\n",
		"when {\n  x > 0 -> \"pos\"\n  else -> {\n  }\n}\n",
		"a\n  ?.b\n  ?: c\n",
		// Malformed input round-trips as well.
		"fun f( {",
		"val x = \nval y = )",
		"class { ] }",
		"\"unterminated\nval y = 'a",
		"val x = §§ + 1",
		"f(1, , 2)",
		"\"${\"",
	}
	for _, input := range inputs {
		tree, _ := parseTree(t, input)
		if got := tree.Text(); got != input {
			t.Errorf("Text() = %q, want %q", got, input)
		}
	}
}

func TestPlaceholdersAlwaysPresent(t *testing.T) {
	inputs := []string{
		"",
		"fun f() {}",
		"class A {}",
		"enum class E {}",
		"val l = {}",
		"f()",
		"try {} finally {}",
		"when {}",
		"fun f( {",
		"class A : B( {",
	}
	for _, input := range inputs {
		tree, _ := parseTree(t, input)
		assert.Empty(t, MissingPlaceholders(tree), "input %q", input)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    ErrorKind
		message string
		pos     string
	}{
		{"missing expression", "val x = ", SyntaxError, "expected expression", "1:8"},
		{"unexpected character", "val x = §", LexError, "unexpected character", "1:9"},
		{"unterminated string", "val s = \"abc", UnterminatedLiteral, "unterminated string literal", "1:9"},
		{"unterminated character", "val c = 'a", LexError, "unterminated character literal", "1:9"},
		{"overlong character", "val c = 'ab'", LexError, "unterminated character literal", "1:9"},
		{"bad escape", `val s = "\q"`, LexError, "", ""},
		{"annotated delegation", "class A : @Ann B", SyntaxError, "annotated delegation specifiers are not supported", ""},
		{
			"getter and setter",
			"var x: Int\n  get() = 1\n  set(v) {}",
			SyntaxError,
			"combined getter and setter declarations are not supported",
			"",
		},
		{"qualified super with label", "fun f() = super<Base>@A.foo()", SyntaxError, "qualified super with label is not supported", ""},
		{"missing statement separator", "val x = 1 val y = 2", SyntaxError, "expected ';' or newline", "1:11"},
		{"missing comma", "fun f(a: Int b: Int) {}", SyntaxError, "expected ',' or ')'", "1:14"},
		{"missing parameter name", "fun f(: Int) {}", SyntaxError, "expected identifier", "1:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, errs := parseTree(t, tt.input)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.kind, errs[0].Kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, errs[0].Message)
			}
			if tt.pos != "" {
				assert.Equal(t, tt.pos, errs[0].Span.Start.String())
			}
			assert.True(t, tree.HasErrors())
			assert.Equal(t, tt.input, tree.Text())
		})
	}
}

func TestUnterminatedLiteralShape(t *testing.T) {
	tree, errs := parseTree(t, "val s = \"abc")
	require.Len(t, errs, 1)

	diffs, err := DiffTree(`(source_file statements: (property_declaration
		(variable_declaration identifier: (simple_identifier))
		value: (line_string_literal (unterminated))))`, tree)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	str := tree.ChildByField(FieldStatements).ChildByField(FieldValue)
	require.NotNil(t, str)
	assert.Equal(t, ` "abc`, str.Text())
}

func TestErrorRecovery(t *testing.T) {
	tree, errs := parseTree(t, "val x = §\nval y = 1\n")
	require.Len(t, errs, 1)

	decls := tree.ChildrenOfKind(KindPropertyDeclaration)
	require.Len(t, decls, 2, "parsing resumes after the error")
	assert.Equal(t, KindError, decls[0].ChildByField(FieldValue).Kind)
	assert.Equal(t, KindIntegerLiteral, decls[1].ChildByField(FieldValue).Kind)
}

func TestErrorsInSourceOrder(t *testing.T) {
	_, errs := parseTree(t, "f(1, , 2)\nval = 3\nclass {")
	require.GreaterOrEqual(t, len(errs), 3)
	for i := 1; i < len(errs); i++ {
		assert.LessOrEqual(t, errs[i-1].Span.Start.Offset, errs[i].Span.Start.Offset)
	}
	assert.Error(t, ErrorList(errs).Err())
	assert.NoError(t, ErrorList(nil).Err())
}

func TestParse(t *testing.T) {
	tree, err := Parse([]byte("val x = 1"), WithFile("Main.kt"))
	require.NoError(t, err)
	assert.Equal(t, "Main.kt", tree.Span.Start.File)

	tree, err = Parse([]byte("val x ="), WithFile("Main.kt"))
	require.Error(t, err)
	require.NotNil(t, tree)
	var list ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list, 1)
	assert.True(t, strings.HasPrefix(err.Error(), "Main.kt:1:"))
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"  \n", false},
		{"val x = 1", true},
		{"1 +", false},
		{"fun f() {", false},
		{"f(1,", false},
		{`"abc`, false},
		{"\"\"\"abc\n", false},
		{"if (a) b", true},
		{"val = 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := ParseSourceFile(strings.NewReader(tt.input))
			if got := p.IsComplete(); got != tt.want {
				t.Errorf("IsComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFinishContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := ParseSourceFile(strings.NewReader("val x = 1"))
	tree, err := p.FinishContext(ctx)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReset(t *testing.T) {
	p := ParseSourceFile(strings.NewReader("val x = 1"))
	first := p.Finish()
	require.NotNil(t, first)

	p.Reset(strings.NewReader("fun f() {}"))
	second := p.Finish()
	require.NotNil(t, second)
	assert.NotNil(t, second.FirstChildOfKind(KindFunctionDeclaration))
	assert.Nil(t, second.FirstChildOfKind(KindPropertyDeclaration))
}

func TestWithStartLine(t *testing.T) {
	tree, errs := parseTree(t, "val x = 1", WithStartLine(10))
	require.Empty(t, errs)
	assert.Equal(t, 10, tree.FirstChildOfKind(KindPropertyDeclaration).Span.Start.Line)
}

func TestWithTerminator(t *testing.T) {
	never := WithTerminator(TerminatorFunc(func([]byte, int, Token) (Token, bool) {
		return Token{}, false
	}))

	_, errs := parseTree(t, "val x = 1; val y = 2", never)
	assert.Empty(t, errs, "explicit semicolons need no recognizer")

	_, errs = parseTree(t, "a\nb", never)
	assert.NotEmpty(t, errs, "line breaks are not separators without a recognizer")

	_, errs = parseTree(t, "a\nb")
	assert.Empty(t, errs)
}

func TestTerminatorSeesBracketDepth(t *testing.T) {
	depths := map[int]bool{}
	recorder := WithTerminator(TerminatorFunc(func(rest []byte, depth int, last Token) (Token, bool) {
		depths[depth] = true
		return NewlineTerminator{}.RecognizeTerminator(rest, depth, last)
	}))

	_, errs := parseTree(t, "f(a\n)\ng { b\n c }", recorder)
	require.Empty(t, errs)
	assert.True(t, depths[0])
	assert.True(t, depths[1])
}

func TestParseExpressionUnit(t *testing.T) {
	p := ParseExpression(strings.NewReader("a + b"))
	tree := p.Finish()
	require.NotNil(t, tree)
	assert.Equal(t, KindAdditiveExpression, tree.Kind)
	assert.Empty(t, p.Errors())

	p = ParseExpression(strings.NewReader("a + b )"))
	tree = p.Finish()
	require.Len(t, p.Errors(), 1)
	assert.Equal(t, "unexpected input after expression", p.Errors()[0].Message)
	assert.Equal(t, "a + b )", tree.Text())
}

func TestComments(t *testing.T) {
	src := "// one\nval x = 1 /* two */\n"
	p := ParseSourceFile(strings.NewReader(src), WithComments())
	tree := p.Finish()
	require.Len(t, p.Comments(), 2)
	assert.Equal(t, src, tree.Text())

	var kinds []NodeKind
	tree.Walk(func(n *Node) bool {
		if n.Kind == KindLineComment || n.Kind == KindMultilineComment {
			kinds = append(kinds, n.Kind)
		}
		return true
	})
	assert.Equal(t, []NodeKind{KindLineComment, KindMultilineComment}, kinds)
}

func TestConflictGroups(t *testing.T) {
	for _, g := range ConflictGroups() {
		assert.NotEmpty(t, g.Alternatives, g.Name)
	}

	ordered := lookupConflictGroup(conflictIfElse).Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "else_attached", ordered[0].Name)

	ordered = lookupConflictGroup(conflictGenerics).Ordered()
	assert.Equal(t, "call_with_type_arguments", ordered[0].Name, "declaration order breaks ties")
}

func TestUnterminatedLineStringTakesRestOfInput(t *testing.T) {
	src := "val s = \"abc\nval x = 1\n"
	tree, errs := parseTree(t, src)
	require.Len(t, errs, 1)
	assert.Equal(t, UnterminatedLiteral, errs[0].Kind)

	diffs, err := DiffTree(`(source_file statements: (property_declaration
		(variable_declaration identifier: (simple_identifier))
		value: (line_string_literal (unterminated))))`, tree)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	str := tree.ChildByField(FieldStatements).ChildByField(FieldValue)
	require.NotNil(t, str)
	assert.Equal(t, " \"abc\nval x = 1\n", str.Text())
	assert.Equal(t, src, tree.Text())
}

func TestRecoveryInUnclosedList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []NodeKind
	}{
		{
			"parameters",
			"fun f(x: Int\nfun g() {}\nclass C {}",
			[]NodeKind{KindFunctionDeclaration, KindFunctionDeclaration, KindClassDeclaration},
		},
		{
			"junk before the next declaration",
			"fun f(x: Int y\nval z = 1",
			[]NodeKind{KindFunctionDeclaration, KindPropertyDeclaration},
		},
		{
			"arguments",
			"val a = f(1\nval b = 2",
			[]NodeKind{KindPropertyDeclaration, KindPropertyDeclaration},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, errs := parseTree(t, tt.input)
			require.NotEmpty(t, errs)
			var kinds []NodeKind
			for _, stmt := range tree.ChildrenByField(FieldStatements) {
				kinds = append(kinds, stmt.Kind)
			}
			assert.Equal(t, tt.want, kinds)
			assert.Equal(t, tt.input, tree.Text())
		})
	}
}

func TestUnclosedInterpolation(t *testing.T) {
	_, errs := parseTree(t, "val s = \"${a 1\n")
	var braces, unterminated int
	for _, e := range errs {
		switch {
		case e.Message == "expected '}'":
			braces++
		case e.Kind == UnterminatedLiteral:
			unterminated++
		}
	}
	assert.Equal(t, 1, braces, "errors: %v", errs)
	assert.Equal(t, 1, unterminated)
}

func TestByteOrderMark(t *testing.T) {
	src := "\ufeffval x = 1\n"
	tree, errs := parseTree(t, src)
	assert.Empty(t, errs)
	assert.Equal(t, src, tree.Text())

	decl := tree.ChildByField(FieldStatements)
	require.NotNil(t, decl)
	assert.Equal(t, KindPropertyDeclaration, decl.Kind)
	assert.Equal(t, 1, decl.Span.Start.Column)
	assert.Equal(t, 3, decl.Span.Start.Offset)
}
