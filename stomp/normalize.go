package stomp

import (
	"strings"
)

// SymbolKey case-folds an identifier. VBA identifiers are case-insensitive,
// so `Foo` and `foo` must collide; the observed casing is kept on the
// Symbol itself for reporting.
func SymbolKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// StringKey normalizes only the line-ending representation of a string
// literal. Content and case are preserved exactly: a stomped `"Hello"`
// versus `"hello"` is a genuine discrepancy.
func StringKey(raw string) string {
	return NormalizeLineEndings(raw)
}

// CommentKey strips surrounding whitespace and collapses internal
// whitespace runs. Comments continued across physical lines reassemble
// with different spacing in the disassembly and in the recovered source,
// so exact whitespace cannot be part of the key.
func CommentKey(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeLineEndings rewrites CRLF and bare CR to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
