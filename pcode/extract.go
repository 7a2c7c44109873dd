// Package pcode parses the textual output of the pcodedmp disassembler
// into a symbolic module representation.
//
// The relevant parts of the disassembler's output are:
//
//	Module streams:
//	VBA/ThisDocument - 1949 bytes
//	...
//	Identifiers:
//
//	  0: Foo
//	  1: counter
//	...
//	Line #0:
//	        FuncDefn (Private Sub Document_Open())
//	        LitStr 0x001B "http://example.com/payload"
//	        QuoteRem 0x0008 0x0016 "totally harmless"
//
// Identifiers come from the project's identifier table and include names
// that never occur in any instruction, so they are filtered against the
// instruction stream before being reported.
package pcode

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/macrolabs/stompcheck/stomp"
)

// ambientIDs are identifiers the VBA runtime injects into every project's
// identifier table. They show up in the p-code without ever appearing in
// the typed source, so counting them would flag every document ever made.
var ambientIDs = map[string]bool{
	"word":         true,
	"vba":          true,
	"win16":        true,
	"win32":        true,
	"win64":        true,
	"mac":          true,
	"vba6":         true,
	"vba7":         true,
	"project1":     true,
	"vbaproject":   true,
	"excel":        true,
	"stdole":       true,
	"project":      true,
	"thisdocument": true,
	"_evaluate":    true,
	"normal":       true,
	"office":       true,
	"add":          true,
	"msforms":      true,
	"userform":     true,
	"document":     true,
}

// compilerTempPrefix marks compiler-generated temporaries in the
// identifier table.
const compilerTempPrefix = "_B_var_"

var funcDefnRe = regexp.MustCompile(
	`FuncDefn\s*\(\s*(?:(?:Public|Private|Friend|Static)\s+)*(?:Sub|Function|Property\s+(?:Get|Let|Set))\s+([A-Za-z_][A-Za-z0-9_]*)`)

var streamRe = regexp.MustCompile(`^(.+) - \d+ bytes$`)

// Extract parses a full pcodedmp disassembly into a representation tagged
// with OriginPcode. It returns a ParseError when the text lacks the
// identifier table or the instruction stream, which happens with
// truncated or version-mismatched disassembler output.
func Extract(text string) (*stomp.ModuleRepresentation, error) {
	rep := stomp.NewModuleRepresentation(stomp.OriginPcode)

	var (
		rawIDs       []string
		instructions strings.Builder
		inIDs        bool
		sawIDs       bool
		inStreams    bool
		inInstrs     bool
		skipNext     bool
		funcNames    = map[string]bool{}
	)

	for _, line := range strings.Split(stomp.NormalizeLineEndings(text), "\n") {
		if skipNext {
			skipNext = false
			continue
		}

		if line == "Identifiers:" {
			inIDs = true
			sawIDs = true
			inStreams = false
			skipNext = true // the table is preceded by one blank line
			continue
		}

		if line == "Module streams:" {
			inStreams = true
			continue
		}

		// Everything after the first line marker belongs to the
		// instruction stream.
		if strings.HasPrefix(line, "Line #") && !inInstrs {
			inInstrs = true
			inIDs = false
			inStreams = false
			continue
		}
		if inInstrs {
			instructions.WriteString(line)
			instructions.WriteByte('\n')
			scanInstruction(line, rep, funcNames)
			continue
		}

		if inIDs {
			if idx := strings.Index(line, ":"); idx >= 0 {
				rawIDs = append(rawIDs, strings.TrimSpace(line[idx+1:]))
				continue
			}
			inIDs = false
		}

		if inStreams {
			if m := streamRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				rep.Streams = append(rep.Streams, m[1])
				continue
			}
			if strings.TrimSpace(line) != "" {
				inStreams = false
			}
		}
	}

	if !sawIDs {
		return nil, &stomp.ParseError{Origin: stomp.OriginPcode, Msg: "no identifier table in disassembly"}
	}
	if !inInstrs {
		return nil, &stomp.ParseError{Origin: stomp.OriginPcode, Msg: "no instruction stream in disassembly"}
	}

	addIdentifiers(rep, rawIDs, instructions.String(), funcNames)
	return rep, nil
}

// scanInstruction pulls string literals, comments and function
// declarations out of one instruction line.
func scanInstruction(line string, rep *stomp.ModuleRepresentation, funcNames map[string]bool) {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, "LitStr "):
		if s, ok := quotedPayload(trimmed); ok {
			rep.AddString(s)
		}
	case strings.HasPrefix(trimmed, "QuoteRem "):
		if s, ok := quotedPayload(trimmed); ok {
			// A trailing underscore is the continuation marker of a
			// comment split across physical lines.
			s = strings.TrimSuffix(strings.TrimRight(s, " \t"), "_")
			rep.AddComment(strings.TrimSpace(s))
		}
	case strings.HasPrefix(trimmed, "FuncDefn"):
		if m := funcDefnRe.FindStringSubmatch(trimmed); m != nil {
			funcNames[stomp.SymbolKey(m[1])] = true
		}
	}
}

// quotedPayload returns the text between the first and the last double
// quote on an instruction line.
func quotedPayload(line string) (string, bool) {
	first := strings.Index(line, `"`)
	last := strings.LastIndex(line, `"`)
	if first < 0 || last <= first {
		return "", false
	}
	return line[first+1 : last], true
}

// addIdentifiers filters the raw identifier table against the instruction
// stream and records the survivors as symbols.
func addIdentifiers(rep *stomp.ModuleRepresentation, rawIDs []string, instructions string, funcNames map[string]bool) {
	for _, id := range rawIDs {
		if id == "" || strings.HasPrefix(id, compilerTempPrefix) {
			continue
		}
		if ambientIDs[stomp.SymbolKey(id)] {
			continue
		}
		if !usedInInstructions(id, instructions) {
			continue
		}

		// The identifier table sometimes decorates names with extra
		// underscores that the VBA source never shows.
		name := strings.Trim(id, "_")
		if name == "" {
			continue
		}

		kind := stomp.KindVariable
		if funcNames[stomp.SymbolKey(id)] || funcNames[stomp.SymbolKey(name)] {
			kind = stomp.KindFunction
		}
		rep.AddSymbol(name, kind)
	}
}

// usedInInstructions reports whether id occurs in the instruction stream
// as a standalone word, not as a substring of a longer name.
func usedInInstructions(id, instructions string) bool {
	for start := 0; ; {
		idx := strings.Index(instructions[start:], id)
		if idx < 0 {
			return false
		}
		idx += start
		if !alnumAt(instructions, idx-1) && !alnumAt(instructions, idx+len(id)) {
			return true
		}
		start = idx + 1
	}
}

// alnumAt reports whether the byte at position i is alphanumeric.
// Out-of-range positions count as non-alphanumeric, so matches at the
// edges of the stream pass the boundary check.
func alnumAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	r := rune(s[i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
