// Package stomp defines the symbolic representation of a VBA module that
// the p-code and source extractors both produce, along with the
// normalization rules that make the two sides comparable.
package stomp

// Origin identifies which artifact a representation was extracted from.
type Origin string

const (
	// OriginPcode marks a representation recovered from the compiled
	// p-code disassembly.
	OriginPcode Origin = "p-code"
	// OriginSource marks a representation recovered from the decompressed
	// VBA source text.
	OriginSource Origin = "source"
)

// SymbolKind classifies a declared name.
type SymbolKind string

const (
	KindFunction SymbolKind = "Function"
	KindVariable SymbolKind = "Variable"
)

// Symbol is a function, sub, property or variable name. Name keeps the
// casing as it was observed; comparison always goes through SymbolKey.
type Symbol struct {
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind"`
}

// StringLiteral is a string constant. Content is compared byte-exact
// (case included); only line endings are normalized.
type StringLiteral struct {
	Raw string `json:"raw"`
}

// CommentEntry is a comment with its marker already stripped.
type CommentEntry struct {
	Text string `json:"text"`
}

// ModuleRepresentation is the symbolic view of one VBA module (or, for the
// p-code side, of all module streams in a project, since the disassembler
// emits a single identifier table). It is built by exactly one extraction
// call and never mutated once the extractor returns it.
type ModuleRepresentation struct {
	Origin Origin

	// Streams lists the module stream names the disassembler reported.
	// Empty for source-derived representations.
	Streams []string

	// Symbols, Strings and Comments are keyed by their normalized form
	// (see normalize.go) and keep the first observed raw value so reports
	// can show what was actually seen.
	Symbols  map[string]Symbol
	Strings  map[string]StringLiteral
	Comments map[string]CommentEntry
}

// NewModuleRepresentation returns an empty representation for the given
// origin. Extractors populate it and must return an error instead of an
// empty representation when their input is unusable.
func NewModuleRepresentation(origin Origin) *ModuleRepresentation {
	return &ModuleRepresentation{
		Origin:   origin,
		Symbols:  make(map[string]Symbol),
		Strings:  make(map[string]StringLiteral),
		Comments: make(map[string]CommentEntry),
	}
}

// AddSymbol records a symbol under its case-folded key. The first observed
// casing wins for reporting. A later Function sighting upgrades an earlier
// Variable classification, never the other way around: declarations are
// authoritative, plain references are not.
func (m *ModuleRepresentation) AddSymbol(name string, kind SymbolKind) {
	key := SymbolKey(name)
	if key == "" {
		return
	}
	if existing, ok := m.Symbols[key]; ok {
		if existing.Kind == KindVariable && kind == KindFunction {
			m.Symbols[key] = Symbol{Name: existing.Name, Kind: KindFunction}
		}
		return
	}
	m.Symbols[key] = Symbol{Name: name, Kind: kind}
}

// AddString records a string literal under its line-ending-normalized key.
func (m *ModuleRepresentation) AddString(raw string) {
	key := StringKey(raw)
	if _, ok := m.Strings[key]; !ok {
		m.Strings[key] = StringLiteral{Raw: raw}
	}
}

// AddComment records a comment (marker already stripped) under its
// whitespace-collapsed key. Blank comments carry no signal and are dropped.
func (m *ModuleRepresentation) AddComment(text string) {
	key := CommentKey(text)
	if key == "" {
		return
	}
	if _, ok := m.Comments[key]; !ok {
		m.Comments[key] = CommentEntry{Text: text}
	}
}
