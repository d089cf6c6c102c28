package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"word15asm/internal/textbuf"
	"word15asm/parser"
	"word15asm/semantic"
)

func analyzeSource(t *testing.T, src string) (*parser.TranslationUnit, *semantic.Table, *parser.Collector) {
	t.Helper()
	errs := &parser.Collector{}
	buf := textbuf.New(src)
	tokens := parser.NewLexer(buf, "t.as", errs).TokenizeAll()
	unit := parser.NewParser(tokens, errs).Parse()
	table := semantic.Analyze(unit)
	return unit, table, errs
}

func TestAnalyzeValidProgram(t *testing.T) {
	_, table, errs := analyzeSource(t, "MAIN: mov #3, r1\nstop\n")
	require.False(t, errs.HasErrors(), "unexpected errors: %v", errs.Errors())
	_, ok := table.Lookup("MAIN")
	require.True(t, ok, "expected MAIN to be in the symbol table")
}

func TestAnalyzeImmediateDestinationRejected(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: mov r1, #2\n")
	require.True(t, errs.HasErrors(), "expected an addressing-mode error for immediate destination")
}

func TestAnalyzeCmpBothImmediateRejected(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: cmp #1, #2\nstop\n")
	require.True(t, errs.HasErrors(), "expected both-immediate rejection for cmp")
}

func TestAnalyzeDuplicateLabel(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: inc r1\nA: dec r2\n")
	require.True(t, errs.HasErrors(), "expected a duplicate label error")
}

func TestAnalyzeUnknownIdentifier(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: jmp MISSING\n")
	require.True(t, errs.HasErrors(), "expected an unknown-identifier error")
}

func TestAnalyzeExternLabelConflict(t *testing.T) {
	_, _, errs := analyzeSource(t, ".extern A\nA: stop\n")
	require.True(t, errs.HasErrors(), "expected an external/label conflict")
}

func TestAnalyzeEntryWithoutDefinition(t *testing.T) {
	_, _, errs := analyzeSource(t, ".entry MISSING\n")
	require.True(t, errs.HasErrors(), "expected an entry-without-definition error")
}

func TestAnalyzeEntryOfExternal(t *testing.T) {
	_, _, errs := analyzeSource(t, ".extern X\n.entry X\n")
	require.True(t, errs.HasErrors(), "expected an entry-of-external conflict")
}

func TestAnalyzeImmediateRangeBoundary(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: prn #2047\n")
	require.False(t, errs.HasErrors(), "expected 2047 to be accepted, got %v", errs.Errors())

	_, _, errs2 := analyzeSource(t, "A: prn #2048\n")
	require.True(t, errs2.HasErrors(), "expected 2048 to be rejected")
}

func TestAnalyzeDataRangeBoundary(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: .data 16383\n")
	require.False(t, errs.HasErrors(), "expected 16383 to be accepted, got %v", errs.Errors())

	_, _, errs2 := analyzeSource(t, "A: .data 16384\n")
	require.True(t, errs2.HasErrors(), "expected 16384 to be rejected")
}

func TestAnalyzeLeaRequiresDirectSource(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: lea r1, r2\nstop\n")
	require.True(t, errs.HasErrors(), "expected lea with register source to be rejected")
}

func TestAnalyzeLeaValid(t *testing.T) {
	_, _, errs := analyzeSource(t, "A: lea A, r2\nstop\n")
	require.False(t, errs.HasErrors(), "unexpected errors: %v", errs.Errors())
}

func TestAnalyzeRuleTableCoversEveryOperation(t *testing.T) {
	// Every operation must validate without panicking even when given a
	// minimal, addressing-mode-valid operand set.
	cases := map[string]string{
		"mov":  "A: mov r1, r2\nstop\n",
		"add":  "A: add r1, r2\nstop\n",
		"sub":  "A: sub r1, r2\nstop\n",
		"cmp":  "A: cmp r1, r2\nstop\n",
		"lea":  "A: lea A, r2\nstop\n",
		"not":  "A: not r1\nstop\n",
		"clr":  "A: clr r1\nstop\n",
		"inc":  "A: inc r1\nstop\n",
		"dec":  "A: dec r1\nstop\n",
		"jmp":  "A: jmp A\nstop\n",
		"bne":  "A: bne A\nstop\n",
		"red":  "A: red r1\nstop\n",
		"prn":  "A: prn r1\nstop\n",
		"jsr":  "A: jsr A\nstop\n",
		"rts":  "A: rts\nstop\n",
		"stop": "A: stop\n",
	}
	for name, src := range cases {
		_, _, errs := analyzeSource(t, src)
		require.Falsef(t, errs.HasErrors(), "%s: unexpected errors: %v", name, errs.Errors())
	}
}
