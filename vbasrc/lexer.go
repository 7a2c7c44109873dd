package vbasrc

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// vbaLexer tokenizes recovered VBA source. It only needs to be precise
// about the things the comparison cares about: string literals (doubled
// quotes escape), comments (apostrophe or REM) and identifiers. A trailing
// catch-all rule keeps arbitrary bytes from ever failing the lexer; empty
// input is the only extraction failure.
var vbaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:""|[^"\r\n])*"`},
	{Name: "Comment", Pattern: `'[^\n]*`},
	{Name: "RemComment", Pattern: `(?i)\bRem\b[^\n]*`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `&[HhOo][0-9A-Fa-f]+|\d+(?:\.\d+)?(?:[Ee][+-]?\d+)?`},
	{Name: "Newline", Pattern: `\n+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Other", Pattern: `[^\sA-Za-z0-9_]`},
})

var symbols = vbaLexer.Symbols()

var (
	tokString  = symbols["String"]
	tokComment = symbols["Comment"]
	tokRem     = symbols["RemComment"]
	tokIdent   = symbols["Ident"]
	tokNewline = symbols["Newline"]
	tokSpace   = symbols["Whitespace"]
)
