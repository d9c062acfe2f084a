// Package sexp implements a text notation for syntax trees, used to write
// trees by hand in tests and to print stored trees.
//
// Every node is written between parentheses: its kind, an optional
// double-quoted label using Go escaping rules, then its children. For
// example:
//
//	(block (stmt "x = 1") (stmt "y = 2") (call (ident "f")))
//
// Kinds are any run of characters other than whitespace, parentheses and
// double quotes. Other kinds, such as the punctuation tokens of most
// grammars, are written as a quoted string:
//
//	(call (identifier "f") (argument_list ("(") (")")))
package sexp
