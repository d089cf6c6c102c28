package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"word15asm/internal/textbuf"
	"word15asm/parser"
)

func parseSource(t *testing.T, src string) (*parser.TranslationUnit, *parser.Collector) {
	t.Helper()
	errs := &parser.Collector{}
	buf := textbuf.New(src)
	tokens := parser.NewLexer(buf, "t.as", errs).TokenizeAll()
	unit := parser.NewParser(tokens, errs).Parse()
	return unit, errs
}

func TestParserInstructionWithLabel(t *testing.T) {
	unit, errs := parseSource(t, "MAIN: mov #3, r1\nstop\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if len(unit.InstructionLabels) != 1 {
		t.Fatalf("expected one instruction label, got %d", len(unit.InstructionLabels))
	}
	label := unit.InstructionLabels[0]
	if label.Name() != "MAIN" {
		t.Fatalf("expected label MAIN, got %q", label.Name())
	}
	if len(label.Instructions) != 2 {
		t.Fatalf("expected two instructions, got %d", len(label.Instructions))
	}
	mov := label.Instructions[0]
	if mov.Op.Kind != parser.KindMov || mov.Operand1 == nil || mov.Operand2 == nil {
		t.Fatalf("unexpected mov instruction: %+v", mov)
	}
}

func TestParserInstructionWithoutLabelIsError(t *testing.T) {
	_, errs := parseSource(t, "mov #3, r1\n")
	if !errs.HasErrors() {
		t.Fatalf("expected an error for instruction without a preceding label")
	}
}

func TestParserExternAndEntry(t *testing.T) {
	unit, errs := parseSource(t, ".extern X\n.entry A\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if len(unit.Externals) != 1 || unit.Externals[0].Ident.Text != "X" {
		t.Fatalf("unexpected externals: %+v", unit.Externals)
	}
	if len(unit.Entries) != 1 || unit.Entries[0].Ident.Text != "A" {
		t.Fatalf("unexpected entries: %+v", unit.Entries)
	}
}

func TestParserGuidanceSequence(t *testing.T) {
	unit, errs := parseSource(t, "A: .data 5, -1\nB: .string \"hi\"\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if len(unit.GuidanceLabels) != 2 {
		t.Fatalf("expected two guidance labels, got %d", len(unit.GuidanceLabels))
	}
	data := unit.GuidanceLabels[0]
	if data.Name() != "A" || len(data.Guidance) != 1 || len(data.Guidance[0].Data.Numbers) != 2 {
		t.Fatalf("unexpected data label: %+v", data)
	}
	str := unit.GuidanceLabels[1]
	if str.Name() != "B" || !str.Guidance[0].IsString || str.Guidance[0].Str.Str.Text != `"hi"` {
		t.Fatalf("unexpected string label: %+v", str)
	}
}

func TestParserUnlabeledGuidanceAllowed(t *testing.T) {
	unit, errs := parseSource(t, ".data 1, 2, 3\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if len(unit.GuidanceLabels) != 1 || unit.GuidanceLabels[0].HasLabel {
		t.Fatalf("expected one unlabeled guidance label, got %+v", unit.GuidanceLabels)
	}
}

func TestParserColonNotAdjacentIsError(t *testing.T) {
	_, errs := parseSource(t, "MAIN : stop\n")
	if !errs.HasErrors() {
		t.Fatalf("expected a colon-adjacency error")
	}
}

func TestParserMissingCommaBetweenOperands(t *testing.T) {
	_, errs := parseSource(t, "A: mov r1 r2\n")
	if !errs.HasErrors() {
		t.Fatalf("expected a missing-comma error")
	}
}

func TestParserDereferencedOperand(t *testing.T) {
	unit, errs := parseSource(t, "A: mov *r1, r2\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	inst := unit.InstructionLabels[0].Instructions[0]
	if !inst.Deref1 || inst.Deref2 {
		t.Fatalf("unexpected deref flags: %+v", inst)
	}
}

func TestParserStrayMacroTokenIsError(t *testing.T) {
	_, errs := parseSource(t, "endmacr\n")
	if !errs.HasErrors() {
		t.Fatalf("expected a stray endmacr error")
	}
}

func TestParserLabelOrderMatchesDeclaration(t *testing.T) {
	unit, errs := parseSource(t, "A: inc r1\nB: dec r2\nC: stop\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	var names []string
	for _, label := range unit.InstructionLabels {
		names = append(names, label.Name())
	}
	want := []string{"A", "B", "C"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("label order mismatch (-want +got):\n%s", diff)
	}
}

func TestParserBlankLineWithinInstructionSequence(t *testing.T) {
	unit, errs := parseSource(t, "A: inc r1\n\ndec r2\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if len(unit.InstructionLabels) != 1 {
		t.Fatalf("expected the blank line to stay inside one label's sequence, got %d labels", len(unit.InstructionLabels))
	}
	if got := len(unit.InstructionLabels[0].Instructions); got != 2 {
		t.Fatalf("expected two instructions, got %d", got)
	}
}

func TestParserBlankLineWithinGuidanceSequence(t *testing.T) {
	unit, errs := parseSource(t, "A: .data 1\n\n.data 2\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if len(unit.GuidanceLabels) != 1 {
		t.Fatalf("expected the blank line to stay inside one label's sequence, got %d labels", len(unit.GuidanceLabels))
	}
	if got := len(unit.GuidanceLabels[0].Guidance); got != 2 {
		t.Fatalf("expected two guidance items, got %d", got)
	}
}

func TestParserRecoversAfterLineError(t *testing.T) {
	unit, errs := parseSource(t, "A: mov r1 r2\nB: stop\n")
	if !errs.HasErrors() {
		t.Fatalf("expected the first line to error")
	}
	if len(unit.InstructionLabels) != 2 || unit.InstructionLabels[1].Name() != "B" {
		t.Fatalf("expected recovery to still parse the second label, got %+v", unit.InstructionLabels)
	}
}
