// Package parser provides an error-tolerant parser for Kotlin source code
// that produces a concrete syntax tree (CST).
//
// # Overview
//
// Every byte of the input ends up in the tree: whitespace is carried as the
// Leading text of the following token, comments are attached as leaves in
// front of the token they precede, and trailing trivia hangs off the final
// EOF leaf. Text on the root reproduces the input exactly, also for
// malformed input.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (CST)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │                   │
//	                           ▼                   ▼
//	                    ┌─────────────┐     ┌─────────────┐
//	                    │ Mode stack  │     │ Terminator  │
//	                    │ (strings)   │     │ Recognizer  │
//	                    └─────────────┘     └─────────────┘
//
// # Statement Terminators
//
// Kotlin ends statements at line breaks. The parser does not decide this
// itself; it asks a TerminatorRecognizer whenever the grammar would accept
// ";" in place of a line break. NewlineTerminator is the default and can
// be replaced with WithTerminator. Accepted terminators become zero-width
// leaves in the tree.
//
// # Tree Shape
//
// Node kinds follow the usual Kotlin grammar names (source_file,
// class_declaration, call_expression, ...). Anonymous tokens use the kind
// "token". Some nodes carry a field name naming their role in the parent:
//
//	(source_file
//	  statements: (property_declaration
//	    (variable_declaration identifier: (simple_identifier))
//	    value: (integer_literal)))
//
// Fields that may be empty, such as block.statements, are always present;
// when there is nothing to bind they hold a zero-width "blank" node.
//
// # Ambiguities
//
// Constructs that the grammar cannot tell apart with one token of
// lookahead ("foo < b > c" versus "foo<B>(c)", "data" as a modifier versus
// a name) are resolved by conflict groups: alternatives are tried in a
// fixed order and the first that parses wins. ConflictGroups lists them.
//
// # Errors
//
// The parser never panics on malformed input. Unparsable tokens are kept
// under ERROR nodes, missing tokens become zero-width ERROR nodes, and
// literals that run into the end of a line or of the input are closed with
// an "unterminated" marker. Errors lists all of them in source order.
//
// # Example Usage
//
//	p := parser.ParseSourceFile(strings.NewReader(src), parser.WithFile("Main.kt"))
//	tree := p.Finish()
//	for _, err := range p.Errors() {
//	    fmt.Println(err)
//	}
//	fmt.Println(tree.SExpr())
//
// A Parser is not safe for concurrent use. ParseFiles parses many files in
// parallel, one Parser each.
package parser
