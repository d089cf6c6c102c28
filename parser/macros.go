package parser

import "word15asm/internal/textbuf"

// Macro is a zero-parameter, verbatim-body macro definition: the text
// between the header's end-of-line and the end-of-line preceding endmacr.
type Macro struct {
	Name    string
	Content string
	Pos     Position
}

// MacroTable holds the macro definitions found by Expand, keyed by name.
type MacroTable struct {
	macros map[string]*Macro
}

// NewMacroTable returns an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

// Lookup returns the macro named name, if any.
func (mt *MacroTable) Lookup(name string) (*Macro, bool) {
	m, ok := mt.macros[name]
	return m, ok
}

// Len reports the number of distinct macros defined.
func (mt *MacroTable) Len() int {
	return len(mt.macros)
}

type skipRange struct{ start, end int }

func coveringRange(ranges []skipRange, offset int) (skipRange, bool) {
	for _, r := range ranges {
		if offset >= r.start && offset < r.end {
			return r, true
		}
	}
	return skipRange{}, false
}

// skipToEOL advances past tokens (starting at from) until the first
// end-of-line or end-of-file, returning the index just after an end-of-line
// (or at the terminator itself if it is end-of-file). Used to recover after
// a malformed macro header.
func skipToEOL(tokens []Token, from int) int {
	for from < len(tokens) && tokens[from].Kind != KindEOL && tokens[from].Kind != KindEOF {
		from++
	}
	if from < len(tokens) && tokens[from].Kind == KindEOL {
		return from + 1
	}
	return from
}

// Expand implements the two-stage macro preprocessor: it first scans the
// first-pass token stream for macr/endmacr definitions, then rewrites the
// original source by splicing macro content in for each invocation,
// producing the buffer the second lexer pass will consume.
func Expand(tokens []Token, buf *textbuf.Buffer, errs *Collector) (*textbuf.Buffer, *MacroTable) {
	table := NewMacroTable()
	var ranges []skipRange

	i := 0
	for i < len(tokens) && tokens[i].Kind != KindEOF {
		headerTok := tokens[i]
		if headerTok.Kind != KindMacroStart {
			i++
			continue
		}

		nameIdx := i + 1
		if nameIdx >= len(tokens) || tokens[nameIdx].Kind != KindIdentifier {
			errs.Add(NewTokenError(StagePreprocessor, headerTok, "missing identifier after macr"))
			i = skipToEOL(tokens, i+1)
			continue
		}
		nameTok := tokens[nameIdx]

		eolIdx := nameIdx + 1
		if eolIdx >= len(tokens) || tokens[eolIdx].Kind != KindEOL {
			errs.Add(NewTokenError(StagePreprocessor, nameTok, "missing newline after macro header"))
			i = skipToEOL(tokens, eolIdx)
			continue
		}
		headerEOL := tokens[eolIdx]
		contentStart := headerEOL.Pos.Offset + len(headerEOL.Text)

		end := -1
		for k := eolIdx + 1; k < len(tokens); k++ {
			if tokens[k].Kind == KindMacroEnd && tokens[k-1].Kind == KindEOL {
				end = k
				break
			}
		}
		if end == -1 {
			errs.Add(NewTokenError(StagePreprocessor, headerTok, "missing or misplaced endmacr"))
			i = len(tokens)
			continue
		}
		contentEnd := tokens[end-1].Pos.Offset
		endmacrTok := tokens[end]

		defEnd := endmacrTok.Pos.Offset + len(endmacrTok.Text)
		after := end + 1
		switch {
		case after < len(tokens) && tokens[after].Kind == KindEOL:
			defEnd = tokens[after].Pos.Offset + len(tokens[after].Text)
			after++
		case after < len(tokens) && tokens[after].Kind != KindEOF:
			errs.Add(NewTokenError(StagePreprocessor, endmacrTok, "endmacr must be followed by end of line"))
		}

		content := buf.Substring(contentStart, contentEnd)
		if _, dup := table.macros[nameTok.Text]; dup {
			errs.Add(NewTokenError(StagePreprocessor, nameTok, "duplicate macro identifier: "+nameTok.Text))
		} else {
			table.macros[nameTok.Text] = &Macro{Name: nameTok.Text, Content: content, Pos: headerTok.Pos}
		}
		ranges = append(ranges, skipRange{headerTok.Pos.Offset, defEnd})

		i = after
	}

	return splice(tokens, buf, table, ranges), table
}

// splice rewrites buf, stripping macro-definition ranges and replacing
// invocation identifiers with their macro content.
func splice(tokens []Token, buf *textbuf.Buffer, table *MacroTable, ranges []skipRange) *textbuf.Buffer {
	out := textbuf.New("")
	cursor := 0

	i := 0
	for i < len(tokens) && tokens[i].Kind != KindEOF {
		t := tokens[i]

		if r, ok := coveringRange(ranges, t.Pos.Offset); ok {
			out.AppendString(buf.Substring(cursor, r.start))
			cursor = r.end
			for i < len(tokens) && tokens[i].Pos.Offset < r.end {
				i++
			}
			continue
		}

		if t.Kind == KindIdentifier {
			if m, ok := table.macros[t.Text]; ok {
				tokEnd := t.Pos.Offset + len(t.Text)
				out.AppendString(buf.Substring(cursor, t.Pos.Offset))
				out.AppendString(m.Content)
				cursor = tokEnd
				i++
				// The invocation's own trailing EOL is left in place (copied
				// verbatim on the next iteration or the final flush) since
				// Content already excludes the macro body's own trailing
				// newline — skipping both would fuse this line into the next.
				continue
			}
		}

		i++
	}

	out.AppendString(buf.Substring(cursor, buf.Len()))
	return out
}
