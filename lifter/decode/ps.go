package decode

import (
	"github.com/slowlang/ppclift/lifter/ppc"
)

type psForm uint8

const (
	psDAB psForm = iota
	psDAC
	psDACB
	psDB
	psCmp
	psAB
	psIdx
	psMem
)

type psOp struct {
	id   ID
	form psForm
}

var (
	psA = map[uint32]psOp{
		10: {PS_SUM0, psDACB},
		11: {PS_SUM1, psDACB},
		12: {PS_MULS0, psDAC},
		13: {PS_MULS1, psDAC},
		14: {PS_MADDS0, psDACB},
		15: {PS_MADDS1, psDACB},
		18: {PS_DIV, psDAB},
		20: {PS_SUB, psDAB},
		21: {PS_ADD, psDAB},
		23: {PS_SEL, psDACB},
		24: {PS_RES, psDB},
		25: {PS_MUL, psDAC},
		26: {PS_RSQRTE, psDB},
		28: {PS_MSUB, psDACB},
		29: {PS_MADD, psDACB},
		30: {PS_NMSUB, psDACB},
		31: {PS_NMADD, psDACB},
	}

	psX6 = map[uint32]psOp{
		6:  {PSQ_LX, psIdx},
		7:  {PSQ_STX, psIdx},
		38: {PSQ_LUX, psIdx},
		39: {PSQ_STUX, psIdx},
	}

	psX10 = map[uint32]psOp{
		0:    {PS_CMPU0, psCmp},
		32:   {PS_CMPO0, psCmp},
		40:   {PS_NEG, psDB},
		64:   {PS_CMPU1, psCmp},
		72:   {PS_MR, psDB},
		96:   {PS_CMPO1, psCmp},
		136:  {PS_NABS, psDB},
		264:  {PS_ABS, psDB},
		528:  {PS_MERGE00, psDAB},
		560:  {PS_MERGE01, psDAB},
		592:  {PS_MERGE10, psDAB},
		624:  {PS_MERGE11, psDAB},
		1014: {DCBZ_L, psAB},
	}

	psPrimary = map[uint32]ID{
		56: PSQ_L,
		57: PSQ_LU,
		60: PSQ_ST,
		61: PSQ_STU,
	}
)

// decodePS decodes Gekko/Broadway paired-single words.
// It reports false for words outside the extension.
func decodePS(in *Inst) bool {
	w := in.Word

	field := func(sh uint) uint32 { return w >> sh & 0x1f }
	fpr := func(sh uint) Operand { return RegOp(ppc.F0 + ppc.Reg(field(sh))) }
	gpr := func(sh uint) Operand { return RegOp(ppc.R0 + ppc.Reg(field(sh))) }

	var (
		op psOp
		ok bool
	)

	switch w >> 26 {
	case 4:
		op, ok = psA[w>>1&0x1f]
		if !ok {
			op, ok = psX6[w>>1&0x3f]
		}
		if !ok {
			op, ok = psX10[w>>1&0x3ff]
		}
	default:
		op.id, ok = psPrimary[w>>26]
		op.form = psMem
	}

	if !ok {
		return false
	}

	in.ID = op.id
	in.Mnemonic = op.id.String()

	switch op.form {
	case psDAB:
		in.Ops = []Operand{fpr(21), fpr(16), fpr(11)}
	case psDAC:
		in.Ops = []Operand{fpr(21), fpr(16), fpr(6)}
	case psDACB:
		in.Ops = []Operand{fpr(21), fpr(16), fpr(6), fpr(11)}
	case psDB:
		in.Ops = []Operand{fpr(21), fpr(11)}
	case psCmp:
		in.Ops = []Operand{RegOp(ppc.CRField(int(w >> 23 & 7))), fpr(16), fpr(11)}
	case psAB:
		in.Ops = []Operand{gpr(16), gpr(11)}
	case psIdx:
		in.Ops = []Operand{fpr(21), gpr(16), gpr(11), ImmOp(int64(w >> 10 & 1)), ImmOp(int64(w >> 7 & 7))}
	case psMem:
		base := ppc.NoReg
		if ra := field(16); ra != 0 {
			base = ppc.R0 + ppc.Reg(ra)
		}

		disp := int32(w&0xfff) << 20 >> 20

		in.Ops = []Operand{fpr(21), MemOp(base, disp), ImmOp(int64(w >> 15 & 1)), ImmOp(int64(w >> 12 & 7))}
	}

	// record forms write cr1 like other floating point operations
	if w>>26 == 4 && op.form != psCmp && op.form != psIdx && op.id != DCBZ_L && w&1 != 0 {
		in.Mnemonic += "."
	}

	return true
}
