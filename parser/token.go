package parser

import "fmt"

// Kind enumerates the lexical categories recognized by the lexer.
type Kind int

const (
	KindEOF Kind = iota
	KindEOL
	KindComment

	KindComma
	KindColon
	KindHash
	KindStar

	KindNumber
	KindString
	KindIdentifier
	KindRegister

	KindMacroStart // "macr"
	KindMacroEnd   // "endmacr"

	// Operation mnemonics, one Kind per operation in the instruction set.
	KindMov
	KindCmp
	KindAdd
	KindSub
	KindLea
	KindClr
	KindNot
	KindInc
	KindDec
	KindJmp
	KindBne
	KindRed
	KindPrn
	KindJsr
	KindRts
	KindStop

	// Directive mnemonics.
	KindDirData
	KindDirString
	KindDirEntry
	KindDirExtern

	KindError
)

var kindNames = map[Kind]string{
	KindEOF:        "EOF",
	KindEOL:        "EOL",
	KindComment:    "COMMENT",
	KindComma:      ",",
	KindColon:      ":",
	KindHash:       "#",
	KindStar:       "*",
	KindNumber:     "NUMBER",
	KindString:     "STRING",
	KindIdentifier: "IDENTIFIER",
	KindRegister:   "REGISTER",
	KindMacroStart: "macr",
	KindMacroEnd:   "endmacr",
	KindMov:        "mov",
	KindCmp:        "cmp",
	KindAdd:        "add",
	KindSub:        "sub",
	KindLea:        "lea",
	KindClr:        "clr",
	KindNot:        "not",
	KindInc:        "inc",
	KindDec:        "dec",
	KindJmp:        "jmp",
	KindBne:        "bne",
	KindRed:        "red",
	KindPrn:        "prn",
	KindJsr:        "jsr",
	KindRts:        "rts",
	KindStop:       "stop",
	KindDirData:    ".data",
	KindDirString:  ".string",
	KindDirEntry:   ".entry",
	KindDirExtern:  ".extern",
	KindError:      "ERROR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// operationKinds maps each of the sixteen reserved operation words to its
// token kind; used by the lexer to classify an identifier post-hoc.
var operationKinds = map[string]Kind{
	"mov": KindMov, "cmp": KindCmp, "add": KindAdd, "sub": KindSub,
	"lea": KindLea, "clr": KindClr, "not": KindNot, "inc": KindInc,
	"dec": KindDec, "jmp": KindJmp, "bne": KindBne, "red": KindRed,
	"prn": KindPrn, "jsr": KindJsr, "rts": KindRts, "stop": KindStop,
}

var directiveKinds = map[string]Kind{
	".data": KindDirData, ".string": KindDirString,
	".entry": KindDirEntry, ".extern": KindDirExtern,
}

// OperandCount returns how many operands the operation named by k takes, or
// -1 if k is not an operation.
func (k Kind) OperandCount() int {
	switch k {
	case KindMov, KindCmp, KindAdd, KindSub, KindLea:
		return 2
	case KindNot, KindClr, KindInc, KindDec, KindJmp, KindBne, KindRed, KindPrn, KindJsr:
		return 1
	case KindRts, KindStop:
		return 0
	default:
		return -1
	}
}

// IsOperation reports whether k is one of the sixteen operation mnemonics.
func (k Kind) IsOperation() bool {
	return k >= KindMov && k <= KindStop
}

// IsDirective reports whether k is one of the four directive mnemonics.
func (k Kind) IsDirective() bool {
	return k >= KindDirData && k <= KindDirExtern
}

// Position locates a token in the source: byte offset, 1-based line, and
// 0-based column.
type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Token is a classified lexeme with its source span.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s", t.Kind, t.Text, t.Pos)
}

// registerNumber returns the register index for a literal like "r3", or -1
// if s does not name a register.
func registerNumber(s string) int {
	if len(s) != 2 || s[0] != 'r' {
		return -1
	}
	if s[1] < '0' || s[1] > '7' {
		return -1
	}
	return int(s[1] - '0')
}

// RegisterNumber exposes registerNumber to other packages (the encoder
// needs it to pack register operands).
func RegisterNumber(s string) int {
	return registerNumber(s)
}
