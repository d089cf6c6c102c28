// Package assemble sequences the pipeline stages for one source file:
// preprocessor, lexer, parser, semantic analyzer, code generator. It halts
// before the next stage once the shared error collector is non-empty.
package assemble

import (
	"word15asm/encoder"
	"word15asm/internal/textbuf"
	"word15asm/parser"
	"word15asm/semantic"
)

// Result is what one file's pipeline run produced: the rendered diagnostics
// (if any) and, only when assembly succeeded, the three output artifacts.
type Result struct {
	Diagnostics string
	Output      encoder.Output
	Succeeded   bool
}

// Run executes the full pipeline over src, sourced from the logical path
// file (used only for diagnostic messages).
func Run(src, file string) Result {
	errs := &parser.Collector{}

	buf := textbuf.New(src)
	firstPass := parser.NewLexer(buf, file, errs).TokenizeAll()
	if errs.HasErrors() {
		return fail(errs, src)
	}

	expanded, _ := parser.Expand(firstPass, buf, errs)
	if errs.HasErrors() {
		return fail(errs, src)
	}

	secondPass := parser.NewLexer(expanded, file, errs).TokenizeAll()
	if errs.HasErrors() {
		return fail(errs, src)
	}

	unit := parser.NewParser(secondPass, errs).Parse()
	if errs.HasErrors() {
		return fail(errs, src)
	}

	table := semantic.Analyze(unit)
	if errs.HasErrors() {
		return fail(errs, src)
	}

	out, ok := encoder.New(unit, table, errs, file).Generate()
	if !ok {
		return fail(errs, src)
	}

	return Result{Output: out, Succeeded: true}
}

func fail(errs *parser.Collector, src string) Result {
	lines := splitLines(src)
	return Result{Diagnostics: errs.RenderAll(lines), Succeeded: false}
}

func splitLines(src string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, src[start:i])
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, src[start:])
	}
	return lines
}
