package encoder

import "word15asm/parser"

// ARE is the 3-bit field distinguishing Absolute, Relocatable, and External
// operand semantics; it occupies the low 3 bits of every machine word.
type ARE int

const (
	AREAbsolute   ARE = 4
	ARERelocative ARE = 2
	AREExternal   ARE = 1
)

const (
	areBits = 3
	dstBits = 4
	srcBits = 4

	dstShift  = areBits
	srcShift  = areBits + dstBits
	codeShift = areBits + dstBits + srcBits

	valueShift = areBits
	valueMask  = 0xFFF // 12 bits

	rdstShift = areBits + 6
	rsrcShift = areBits + 6 + 3
	regMask   = 0x7 // 3 bits
)

// wordMask keeps every packed word within the machine's 15 bits.
const wordMask = 0x7FFF

// opcodes maps each operation to its 4-bit instruction code, in the order
// the reference implementation's InstructionCode enum defines them.
var opcodes = map[parser.Kind]int{
	parser.KindMov:  0,
	parser.KindCmp:  1,
	parser.KindAdd:  2,
	parser.KindSub:  3,
	parser.KindLea:  4,
	parser.KindClr:  5,
	parser.KindNot:  6,
	parser.KindInc:  7,
	parser.KindDec:  8,
	parser.KindJmp:  9,
	parser.KindBne:  10,
	parser.KindRed:  11,
	parser.KindPrn:  12,
	parser.KindJsr:  13,
	parser.KindRts:  14,
	parser.KindStop: 15,
}

// packOpcodeWord builds the opcode word: code in the top 4 bits, src/dst
// addressing-mode bitmasks in the middle, ARE always Absolute for opcode
// words.
func packOpcodeWord(code, srcMode, dstMode int) int {
	word := code << codeShift
	word |= srcMode << srcShift
	word |= dstMode << dstShift
	word |= int(AREAbsolute)
	return word & wordMask
}

// packValueWord builds an operand word carrying a 12-bit value (an
// immediate or a resolved label/external address).
func packValueWord(value int, are ARE) int {
	word := (value & valueMask) << valueShift
	word |= int(are)
	return word & wordMask
}

// packRegisterPairWord builds the combined two-register operand word: the
// source register's number in bits 12-14, the destination's in bits 9-11,
// with bits 3-8 unused.
func packRegisterPairWord(rsrc, rdst int) int {
	word := (rsrc & regMask) << rsrcShift
	word |= (rdst & regMask) << rdstShift
	word |= int(AREAbsolute)
	return word & wordMask
}
