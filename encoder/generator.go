package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"word15asm/parser"
	"word15asm/semantic"
)

const (
	startingPosition = 100
	maxPosition      = 9999
)

// Output is the three textual artifacts the code generator produces.
type Output struct {
	Object    string
	Entries   string
	Externals string
}

// Generator runs the two-pass code generator over an already-validated
// translation unit: address assignment, then encoding and output
// formatting. It must not be run while unit.Errors already holds errors.
type Generator struct {
	unit  *parser.TranslationUnit
	table *semantic.Table
	errs  *parser.Collector
	file  string

	instructionWords int
	guidanceWords    int
	overflowed       bool
}

// New builds a Generator for unit, resolved against table.
func New(unit *parser.TranslationUnit, table *semantic.Table, errs *parser.Collector, file string) *Generator {
	return &Generator{unit: unit, table: table, errs: errs, file: file}
}

// twosComplement encodes v (in [-16384, 16383]) as an unsigned 15-bit
// two's-complement pattern.
func twosComplement(v int) int {
	if v >= 0 {
		return v & wordMask
	}
	return (((^(-v)) & wordMask) + 1) & wordMask
}

func isRegisterMode(m parser.AddressingMode) bool {
	return m == parser.AMDirectRegister || m == parser.AMIndirectRegister
}

// instructionSize computes the word count of one instruction: the opcode
// word plus operand words, merging a register/register pair into one word.
// This is the same classifier-driven rule the encoder applies, per the
// design notes' shared-sizing requirement.
func instructionSize(inst *parser.InstructionNode) int {
	size := 1
	has1 := inst.Operand1 != nil
	has2 := inst.Operand2 != nil

	switch {
	case has1 && has2:
		mode1, ok1 := parser.ClassifyOperand(*inst.Operand1, inst.Deref1)
		mode2, ok2 := parser.ClassifyOperand(*inst.Operand2, inst.Deref2)
		if ok1 && ok2 && isRegisterMode(mode1) && isRegisterMode(mode2) {
			return size + 1
		}
		return size + 2
	case has1:
		return size + 1
	default:
		return size
	}
}

func guidanceSize(item *parser.GuidanceItem) int {
	if item.IsString {
		return len(item.Str.Str.Text) - 2 + 1 // exclude the two quote bytes, add the null terminator
	}
	return len(item.Data.Numbers)
}

func anchorToken(label *parser.LabelNode) parser.Token {
	if label.HasLabel {
		return label.LabelTok
	}
	if len(label.Instructions) > 0 {
		return label.Instructions[0].Op
	}
	if len(label.Guidance) > 0 {
		g := label.Guidance[0]
		if g.IsString {
			return g.Str.Str
		}
		if len(g.Data.Numbers) > 0 {
			return g.Data.Numbers[0]
		}
	}
	return parser.Token{}
}

// assignAddresses is Pass A: instruction labels first, in declaration
// order, then guidance labels, continuing the same running position.
func (g *Generator) assignAddresses() {
	pos := startingPosition

	for _, label := range g.unit.InstructionLabels {
		label.Position = pos
		size := 0
		for i := range label.Instructions {
			size += instructionSize(&label.Instructions[i])
		}
		label.Size = size
		g.checkOverflow(pos, size, label)
		pos += size
	}
	g.instructionWords = pos - startingPosition

	for _, label := range g.unit.GuidanceLabels {
		label.Position = pos
		size := 0
		for i := range label.Guidance {
			size += guidanceSize(&label.Guidance[i])
		}
		label.Size = size
		g.checkOverflow(pos, size, label)
		pos += size
	}
	g.guidanceWords = pos - startingPosition - g.instructionWords
}

func (g *Generator) checkOverflow(pos, size int, label *parser.LabelNode) {
	if g.overflowed || size == 0 {
		return
	}
	if pos+size-1 > maxPosition {
		tok := anchorToken(label)
		ee := NewEncodingError(tok.Pos, "memory overflow")
		g.errs.Add(parser.NewTokenError(parser.StageCodeGen, tok, ee.Message))
		g.overflowed = true
	}
}

type word struct {
	addr  int
	value int
}

// encode is Pass B: walks every instruction in declaration order, emitting
// the opcode word and its operand word(s), and collects external-reference
// lines as they're produced.
func (g *Generator) encode() ([]word, []string) {
	var words []word
	var externals []string

	for _, label := range g.unit.InstructionLabels {
		pos := label.Position
		for i := range label.Instructions {
			inst := &label.Instructions[i]
			pos, externals = g.encodeInstruction(inst, pos, &words, externals)
		}
	}
	return words, externals
}

func (g *Generator) encodeInstruction(inst *parser.InstructionNode, pos int, words *[]word, externals []string) (int, []string) {
	code := opcodes[inst.Op.Kind]
	has1 := inst.Operand1 != nil
	has2 := inst.Operand2 != nil

	var srcMode, dstMode parser.AddressingMode
	if has1 && has2 {
		srcMode, _ = parser.ClassifyOperand(*inst.Operand1, inst.Deref1)
		dstMode, _ = parser.ClassifyOperand(*inst.Operand2, inst.Deref2)
	} else if has1 {
		dstMode, _ = parser.ClassifyOperand(*inst.Operand1, inst.Deref1)
	}

	*words = append(*words, word{pos, packOpcodeWord(code, int(srcMode), int(dstMode))})
	pos++

	switch {
	case has1 && has2 && isRegisterMode(srcMode) && isRegisterMode(dstMode):
		rsrc := parser.RegisterNumber(inst.Operand1.Text)
		rdst := parser.RegisterNumber(inst.Operand2.Text)
		*words = append(*words, word{pos, packRegisterPairWord(rsrc, rdst)})
		pos++

	case has1 && has2:
		var ext string
		pos, ext = g.encodeOperand(*inst.Operand1, srcMode, true, pos, words)
		if ext != "" {
			externals = append(externals, ext)
		}
		pos, ext = g.encodeOperand(*inst.Operand2, dstMode, false, pos, words)
		if ext != "" {
			externals = append(externals, ext)
		}

	case has1:
		var ext string
		pos, ext = g.encodeOperand(*inst.Operand1, dstMode, false, pos, words)
		if ext != "" {
			externals = append(externals, ext)
		}
	}

	return pos, externals
}

// encodeOperand encodes one operand word at wordAddr and advances past it,
// reporting an external-file line when the operand resolves externally.
func (g *Generator) encodeOperand(tok parser.Token, mode parser.AddressingMode, isSrcRole bool, wordAddr int, words *[]word) (int, string) {
	switch mode {
	case parser.AMImmediate:
		v, _ := strconv.Atoi(tok.Text)
		*words = append(*words, word{wordAddr, packValueWord(twosComplement(v), AREAbsolute)})
		return wordAddr + 1, ""

	case parser.AMDirect:
		cell, ok := g.table.Lookup(tok.Text)
		if !ok {
			*words = append(*words, word{wordAddr, packValueWord(0, AREAbsolute)})
			return wordAddr + 1, ""
		}
		if cell.Kind == semantic.CellExternal {
			*words = append(*words, word{wordAddr, packValueWord(0, AREExternal)})
			return wordAddr + 1, fmt.Sprintf("%s %04d\n", tok.Text, wordAddr)
		}
		*words = append(*words, word{wordAddr, packValueWord(cell.Label.Position, ARERelocative)})
		return wordAddr + 1, ""

	case parser.AMDirectRegister, parser.AMIndirectRegister:
		reg := parser.RegisterNumber(tok.Text)
		if isSrcRole {
			*words = append(*words, word{wordAddr, packRegisterPairWord(reg, 0)})
		} else {
			*words = append(*words, word{wordAddr, packRegisterPairWord(0, reg)})
		}
		return wordAddr + 1, ""

	default:
		return wordAddr + 1, ""
	}
}

// encodeGuidance writes the data/string words for the guidance labels,
// returning the combined word list in source order.
func (g *Generator) encodeGuidance() []word {
	var words []word
	for _, label := range g.unit.GuidanceLabels {
		pos := label.Position
		for _, item := range label.Guidance {
			if item.IsString {
				text := item.Str.Str.Text
				inner := text[1 : len(text)-1]
				for i := 0; i < len(inner); i++ {
					words = append(words, word{pos, int(inner[i])})
					pos++
				}
				words = append(words, word{pos, 0})
				pos++
				continue
			}
			for _, numTok := range item.Data.Numbers {
				v, _ := strconv.Atoi(numTok.Text)
				words = append(words, word{pos, twosComplement(v)})
				pos++
			}
		}
	}
	return words
}

// buildEntryFile resolves every .entry declaration to its label's assigned
// address, reporting "unresolved entry" for anything that slipped past
// semantic validation.
func (g *Generator) buildEntryFile() string {
	var sb strings.Builder
	for i := range g.unit.Entries {
		ident := &g.unit.Entries[i]
		if ident.Error {
			continue
		}
		cell, ok := g.table.Lookup(ident.Ident.Text)
		if !ok || cell.Kind != semantic.CellLabel {
			ee := NewEncodingError(ident.Ident.Pos, "unresolved entry")
			g.errs.Add(parser.NewTokenError(parser.StageCodeGen, ident.Ident, ee.Message))
			continue
		}
		cell.Emitted = true
		fmt.Fprintf(&sb, "%s %04d\n", ident.Ident.Text, cell.Label.Position)
	}
	return sb.String()
}

func (g *Generator) formatObject(instrWords, guideWords []word) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, " %d %d\n", g.instructionWords, g.guidanceWords)
	for _, w := range instrWords {
		fmt.Fprintf(&sb, "%04d %05o\n", w.addr, w.value)
	}
	for _, w := range guideWords {
		fmt.Fprintf(&sb, "%04d %05o\n", w.addr, w.value)
	}
	return sb.String()
}

// Generate runs both passes and formats the three output artifacts. ok is
// false if new errors (memory overflow, unresolved entry) were raised
// during generation, in which case no artifact should be written.
func (g *Generator) Generate() (out Output, ok bool) {
	g.assignAddresses()
	if g.errs.HasErrors() {
		return Output{}, false
	}

	instrWords, externals := g.encode()
	guideWords := g.encodeGuidance()
	entries := g.buildEntryFile()

	if g.errs.HasErrors() {
		return Output{}, false
	}

	out.Object = g.formatObject(instrWords, guideWords)
	out.Entries = entries
	out.Externals = strings.Join(externals, "")
	return out, true
}
