package bytecode

// Location names a single source position a byte-offset range maps to.
type Location struct {
	File   string
	Line   int
	Column int
	Symbol string
}

// sourceMapEntry associates a half-open byte range [Start, End) of a
// BytecodeDef with a Location.
type sourceMapEntry struct {
	Start, End int
	Loc        Location
}

// SourceMap is the optional parallel structure mapping ranges of byte
// offsets to (file, line, column, symbol). It is only consulted by the
// disassembler and debugger; it never changes execution semantics.
type SourceMap struct {
	entries []sourceMapEntry
}

// NewSourceMap builds an empty source map.
func NewSourceMap() *SourceMap {
	return &SourceMap{}
}

// Add records that [start, end) maps to loc. Entries should be added in
// non-decreasing Start order for Lookup's linear scan to short-circuit,
// but it is correct regardless of order.
func (s *SourceMap) Add(start, end int, loc Location) {
	s.entries = append(s.entries, sourceMapEntry{Start: start, End: end, Loc: loc})
}

// Lookup returns the Location covering byte offset, if any.
func (s *SourceMap) Lookup(offset int) (Location, bool) {
	for _, e := range s.entries {
		if offset >= e.Start && offset < e.End {
			return e.Loc, true
		}
	}
	return Location{}, false
}
