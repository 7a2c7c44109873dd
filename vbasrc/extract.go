// Package vbasrc tokenizes decompressed VBA source text into the same
// symbolic representation the p-code extractor produces, so the two sides
// can be compared.
package vbasrc

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/macrolabs/stompcheck/stomp"
)

// reserved holds VBA keywords that can never be user symbols.
var reserved = map[string]bool{
	"addressof": true, "alias": true, "and": true, "as": true,
	"attribute": true, "base": true, "binary": true, "boolean": true,
	"byref": true, "byte": true, "byval": true, "call": true, "case": true,
	"compare": true, "const": true, "currency": true, "date": true,
	"decimal": true, "declare": true, "dim": true, "do": true,
	"double": true, "each": true, "else": true, "elseif": true,
	"empty": true, "end": true, "enum": true, "eqv": true, "erase": true,
	"error": true, "event": true, "exit": true, "explicit": true,
	"false": true, "for": true, "friend": true, "function": true,
	"get": true, "global": true, "gosub": true, "goto": true, "if": true,
	"imp": true, "implements": true, "in": true, "integer": true,
	"is": true, "let": true, "lib": true, "like": true, "long": true,
	"loop": true, "me": true, "mod": true, "new": true, "next": true,
	"not": true, "nothing": true, "null": true, "object": true, "on": true,
	"option": true, "optional": true, "or": true, "paramarray": true,
	"preserve": true, "private": true, "property": true, "ptrsafe": true,
	"public": true, "raiseevent": true, "redim": true, "resume": true,
	"return": true, "select": true, "set": true, "single": true,
	"static": true, "step": true, "stop": true, "string": true, "sub": true,
	"then": true, "to": true, "true": true, "type": true, "typeof": true,
	"until": true, "variant": true, "wend": true, "while": true,
	"with": true, "withevents": true, "xor": true,
}

// Extract tokenizes decompressed VBA source into a representation tagged
// with OriginSource. Empty or token-free input is an extraction failure,
// never "this module legitimately has zero symbols": the decompressor
// produced nothing usable and a comparison against it would list every
// p-code symbol as a false discrepancy.
func Extract(text string) (*stomp.ModuleRepresentation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &stomp.ParseError{Origin: stomp.OriginSource, Msg: "source text is empty"}
	}

	// Continuations must be resolved on physical lines before tokenizing,
	// otherwise a continued statement lexes as two statements.
	prepared := resolveContinuations(stomp.NormalizeLineEndings(text))

	lex, err := vbaLexer.LexString("source", prepared)
	if err != nil {
		return nil, &stomp.ParseError{Origin: stomp.OriginSource, Msg: err.Error()}
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, &stomp.ParseError{Origin: stomp.OriginSource, Msg: err.Error()}
	}

	rep := stomp.NewModuleRepresentation(stomp.OriginSource)
	walk(tokens, rep)

	if len(rep.Symbols) == 0 && len(rep.Strings) == 0 && len(rep.Comments) == 0 {
		return nil, &stomp.ParseError{Origin: stomp.OriginSource, Msg: "source contains no symbols, strings or comments"}
	}
	return rep, nil
}

// resolveContinuations joins physical lines ended by VBA's
// line-continuation marker (whitespace, underscore, end of line) into one
// logical line. A marker at the end of a comment is comment text, not a
// continuation: comments always run to the physical end of line, so the
// following line stays code.
func resolveContinuations(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	logical := ""
	pending := false
	for _, line := range lines {
		if pending {
			logical += " " + strings.TrimLeft(line, " \t")
		} else {
			logical = line
		}
		if hasContinuationMarker(logical) && !endsInComment(logical) {
			trimmed := strings.TrimRight(logical, " \t")
			logical = strings.TrimRight(strings.TrimSuffix(trimmed, "_"), " \t")
			pending = true
			continue
		}
		out = append(out, logical)
		pending = false
	}
	if pending {
		out = append(out, logical)
	}
	return strings.Join(out, "\n")
}

// hasContinuationMarker reports whether a line ends with the continuation
// sequence: whitespace, then a lone underscore. A trailing underscore glued
// to an identifier is not a marker.
func hasContinuationMarker(line string) bool {
	t := strings.TrimRight(line, " \t")
	if len(t) < 2 || t[len(t)-1] != '_' {
		return false
	}
	c := t[len(t)-2]
	return c == ' ' || c == '\t'
}

// endsInComment reports whether the end of a logical line falls inside a
// ' or REM comment, scanning with string-literal awareness.
func endsInComment(line string) bool {
	inString := false
	stmtStart := true
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			if c == '"' {
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			stmtStart = false
		case c == '\'':
			return true
		case c == ':':
			stmtStart = true
		case c == ' ' || c == '\t':
			// whitespace keeps the statement-start position open
		default:
			if stmtStart && isRemKeywordAt(line, i) {
				return true
			}
			stmtStart = false
		}
	}
	return false
}

// isRemKeywordAt reports whether a REM comment keyword starts at offset i.
func isRemKeywordAt(line string, i int) bool {
	if i+3 > len(line) || !strings.EqualFold(line[i:i+3], "rem") {
		return false
	}
	if i+3 == len(line) {
		return true
	}
	c := line[i+3]
	return c == ' ' || c == '\t'
}

// walk classifies the token stream. Sub/Function/Property declarations
// name functions; every other non-keyword identifier is treated as a
// variable reference. Attribute lines are VBA metadata, not code, and are
// skipped entirely.
func walk(tokens []lexer.Token, rep *stomp.ModuleRepresentation) {
	meaningful := make([]lexer.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == tokSpace || tok.Type == lexer.EOF {
			continue
		}
		meaningful = append(meaningful, tok)
	}

	atAttribute := false
	prevIdent := ""
	for i := 0; i < len(meaningful); i++ {
		tok := meaningful[i]

		if tok.Type == tokNewline {
			atAttribute = false
			prevIdent = ""
			continue
		}
		if atAttribute {
			continue
		}

		switch tok.Type {
		case tokString:
			rep.AddString(unquote(tok.Value))
		case tokComment:
			rep.AddComment(trimCommentText(tok.Value[1:]))
		case tokRem:
			rep.AddComment(trimCommentText(trimRemMarker(tok.Value)))
		case tokIdent:
			low := strings.ToLower(tok.Value)
			if low == "attribute" && prevIdent == "" {
				atAttribute = true
				continue
			}
			if low == "sub" || low == "function" {
				// `End Sub` / `Exit Function` do not declare anything.
				if prevIdent != "end" && prevIdent != "exit" {
					if name, ok := nextIdent(meaningful, i+1); ok {
						rep.AddSymbol(name, stomp.KindFunction)
					}
				}
			} else if low == "property" && prevIdent != "end" && prevIdent != "exit" {
				// Property Get|Let|Set Name
				if _, ok := nextIdent(meaningful, i+1); ok {
					if name, ok := nextIdent(meaningful, i+2); ok {
						rep.AddSymbol(name, stomp.KindFunction)
					}
				}
			} else if !reserved[low] {
				rep.AddSymbol(tok.Value, stomp.KindVariable)
			}
			prevIdent = low
		}
	}
}

// nextIdent returns the identifier at position i if there is one.
func nextIdent(tokens []lexer.Token, i int) (string, bool) {
	if i >= len(tokens) || tokens[i].Type != tokIdent {
		return "", false
	}
	return tokens[i].Value, true
}

// unquote strips the outer quotes of a string token and collapses the
// doubled-quote escape.
func unquote(tok string) string {
	inner := tok
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	return strings.ReplaceAll(inner, `""`, `"`)
}

// trimCommentText normalizes comment text exactly the way the p-code
// extractor treats QuoteRem payloads: surrounding whitespace and a trailing
// continuation underscore are dropped, so the same comment keys identically
// on both origins.
func trimCommentText(s string) string {
	s = strings.TrimRight(s, " \t")
	s = strings.TrimSuffix(s, "_")
	return strings.TrimSpace(s)
}

// trimRemMarker drops the leading REM keyword of a Rem comment token.
func trimRemMarker(tok string) string {
	if len(tok) >= 3 {
		return tok[3:]
	}
	return ""
}
