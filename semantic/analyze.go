package semantic

import (
	"strconv"

	"word15asm/parser"
)

const (
	minData, maxData           = -16384, 16383
	minImmediate, maxImmediate = -2048, 2047
)

type opRule struct {
	operandCount int
	srcModes     parser.AddressingMode // 0 when the operation takes no source operand
	dstModes     parser.AddressingMode
	rejectBothImmediate bool
}

var allModes = parser.AMImmediate | parser.AMDirect | parser.AMIndirectRegister | parser.AMDirectRegister
var notImmediate = parser.AMDirect | parser.AMIndirectRegister | parser.AMDirectRegister
var jumpModes = parser.AMDirect | parser.AMIndirectRegister
var registerModes = parser.AMDirectRegister | parser.AMIndirectRegister

var rules = map[parser.Kind]opRule{
	parser.KindMov: {2, allModes, notImmediate, false},
	parser.KindAdd: {2, allModes, notImmediate, false},
	parser.KindSub: {2, allModes, notImmediate, false},
	parser.KindCmp: {2, allModes, allModes, true},
	parser.KindLea: {2, parser.AMDirect, registerModes, false},
	parser.KindNot: {1, 0, notImmediate, false},
	parser.KindClr: {1, 0, notImmediate, false},
	parser.KindInc: {1, 0, notImmediate, false},
	parser.KindDec: {1, 0, notImmediate, false},
	parser.KindJmp: {1, 0, jumpModes, false},
	parser.KindBne: {1, 0, jumpModes, false},
	parser.KindJsr: {1, 0, jumpModes, false},
	parser.KindRed: {1, 0, notImmediate, false},
	parser.KindPrn: {1, 0, allModes, false},
	parser.KindRts:  {0, 0, 0, false},
	parser.KindStop: {0, 0, 0, false},
}

// Analyze builds the symbol table for unit and validates every instruction
// and guidance node, appending errors to unit.Errors. It returns the table
// regardless of whether validation errors occurred, so callers can still
// inspect what was built.
func Analyze(unit *parser.TranslationUnit) *Table {
	upperBound := len(unit.InstructionLabels) + len(unit.GuidanceLabels) + len(unit.Externals)
	table := NewTable(upperBound)

	for _, label := range unit.InstructionLabels {
		insertLabel(table, label, unit.Errors)
	}
	for _, label := range unit.GuidanceLabels {
		if label.HasLabel {
			insertLabel(table, label, unit.Errors)
		}
	}
	for i := range unit.Externals {
		insertExternal(table, &unit.Externals[i], unit.Errors)
	}
	for i := range unit.Entries {
		validateEntry(table, &unit.Entries[i], unit.Errors)
	}

	for _, label := range unit.InstructionLabels {
		for i := range label.Instructions {
			validateInstruction(&label.Instructions[i], table, unit.Errors)
		}
	}
	for _, label := range unit.GuidanceLabels {
		for i := range label.Guidance {
			validateGuidance(&label.Guidance[i], unit.Errors)
		}
	}

	return table
}

func insertLabel(table *Table, label *parser.LabelNode, errs *parser.Collector) {
	if !label.HasLabel {
		return
	}
	cell := &Cell{Key: label.Name(), Kind: CellLabel, Label: label}
	if !table.Insert(cell) {
		errs.Add(parser.NewTokenError(parser.StageSemantic, label.LabelTok, "duplicate label declaration"))
	}
}

func insertExternal(table *Table, ident *parser.IdentNode, errs *parser.Collector) {
	name := ident.Ident.Text
	if existing, ok := table.Lookup(name); ok {
		if existing.Kind == CellLabel {
			errs.Add(parser.NewTokenError(parser.StageSemantic, ident.Ident, "external/label conflict"))
		} else {
			errs.Add(parser.NewTokenError(parser.StageSemantic, ident.Ident, "duplicate external declaration"))
		}
		return
	}
	table.Insert(&Cell{Key: name, Kind: CellExternal, External: ident})
}

func validateEntry(table *Table, ident *parser.IdentNode, errs *parser.Collector) {
	cell, ok := table.Lookup(ident.Ident.Text)
	if !ok {
		errs.Add(parser.NewTokenError(parser.StageSemantic, ident.Ident, "entry without definition"))
		ident.Error = true
		return
	}
	if cell.Kind == CellExternal {
		errs.Add(parser.NewTokenError(parser.StageSemantic, ident.Ident, "entry of an external"))
		ident.Error = true
	}
}

func validateInstruction(inst *parser.InstructionNode, table *Table, errs *parser.Collector) {
	if inst.Error {
		return
	}
	rule, ok := rules[inst.Op.Kind]
	if !ok {
		return
	}

	count := 0
	if inst.Operand1 != nil {
		count++
	}
	if inst.Operand2 != nil {
		count++
	}
	if count != rule.operandCount {
		errs.Add(parser.NewTokenError(parser.StageSemantic, inst.Op, "invalid operand count"))
		return
	}

	switch rule.operandCount {
	case 0:
		return
	case 1:
		validateOperand(inst.Operand1, inst.Deref1, rule.dstModes, table, errs)
	case 2:
		srcMode, srcOK := validateOperand(inst.Operand1, inst.Deref1, rule.srcModes, table, errs)
		dstMode, dstOK := validateOperand(inst.Operand2, inst.Deref2, rule.dstModes, table, errs)
		if rule.rejectBothImmediate && srcOK && dstOK && srcMode == parser.AMImmediate && dstMode == parser.AMImmediate {
			errs.Add(parser.NewTokenError(parser.StageSemantic, inst.Op, "both operands cannot be immediate"))
		}
	}
}

// validateOperand classifies and range/identifier-checks one operand,
// returning its addressing mode and whether it was valid throughout.
func validateOperand(tok *Token, deref bool, allowed parser.AddressingMode, table *Table, errs *parser.Collector) (parser.AddressingMode, bool) {
	mode, ok := parser.ClassifyOperand(*tok, deref)
	if !ok {
		errs.Add(parser.NewTokenError(parser.StageSemantic, *tok, "invalid addressing mode for operation"))
		return 0, false
	}
	if mode&allowed == 0 {
		errs.Add(parser.NewTokenError(parser.StageSemantic, *tok, "invalid addressing mode for operation"))
		return mode, false
	}

	switch mode {
	case parser.AMImmediate:
		v, err := strconv.Atoi(tok.Text)
		if err != nil || v < minImmediate || v > maxImmediate {
			errs.Add(parser.NewTokenError(parser.StageSemantic, *tok, "integer out of range"))
			return mode, false
		}
	case parser.AMDirect:
		if _, found := table.Lookup(tok.Text); !found {
			errs.Add(parser.NewTokenError(parser.StageSemantic, *tok, "unknown identifier"))
			return mode, false
		}
	}
	return mode, true
}

func validateGuidance(item *parser.GuidanceItem, errs *parser.Collector) {
	if item.IsString {
		return
	}
	if item.Data.Error {
		return
	}
	for _, tok := range item.Data.Numbers {
		v, err := strconv.Atoi(tok.Text)
		if err != nil || v < minData || v > maxData {
			errs.Add(parser.NewTokenError(parser.StageSemantic, tok, "integer out of range"))
		}
	}
}

// Token is a local alias kept for readability in signatures above.
type Token = parser.Token
