package decode

import (
	"strconv"
	"strings"

	"golang.org/x/arch/ppc64/ppc64asm"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/ppclift/lifter/ppc"
)

type (
	// Inst is the decomposition of one instruction word.
	Inst struct {
		ID       ID
		Mnemonic string
		OpStr    string

		Cond Cond
		Hint Hint
		CTR  CTRTest

		UpdateCR0 bool // dotted form, writes cr0
		Overflow  bool // OE form, writes xer ov and so

		Ops []Operand

		RegsRead  []ppc.Reg
		RegsWrite []ppc.Reg
		Groups    Group

		Addr uint64
		Word uint32
		Raw  [4]byte

		Ctx *Context
	}

	OpKind uint8

	Operand struct {
		Kind OpKind
		Reg  ppc.Reg
		Imm  int64
		Mem  Mem
		CRX  CRX
	}

	// Mem is base register plus displacement.
	// Base is ppc.NoReg when the encoded base is r0, which reads as zero.
	Mem struct {
		Base ppc.Reg
		Disp int32
	}

	// CRX names a condition register bit as Scale*Reg+Cond.
	CRX struct {
		Scale uint8
		Reg   ppc.Reg
		Cond  Cond
	}

	// Cond is a branch code.
	Cond uint8

	Hint uint8

	// CTRTest is the counter test of decrement-and-branch forms.
	CTRTest uint8

	Group uint16
)

const (
	OpInvalid OpKind = iota
	OpReg
	OpImm
	OpMem
	OpCRX
)

const (
	CondAlways Cond = iota
	CondLT
	CondLE
	CondEQ
	CondGE
	CondGT
	CondNE
	CondUN
	CondNU
	CondSO
	CondNS
)

const (
	HintNone Hint = iota
	HintMinus
	HintPlus
)

const (
	CTRNone CTRTest = iota
	CTRNonZero
	CTRZero
)

const (
	GroupJump Group = 1 << iota
	GroupCall
	GroupRet
	GroupRel
	GroupInt
	GroupFloat
	GroupVector
	GroupPairedSingle
	GroupPrivileged
)

// MaxOps is the longest operand list a decomposition carries.
const MaxOps = 8

var condNames = [...]string{
	CondAlways: "",
	CondLT:     "lt",
	CondLE:     "le",
	CondEQ:     "eq",
	CondGE:     "ge",
	CondGT:     "gt",
	CondNE:     "ne",
	CondUN:     "un",
	CondNU:     "nu",
	CondSO:     "so",
	CondNS:     "ns",
}

func RegOp(r ppc.Reg) Operand { return Operand{Kind: OpReg, Reg: r} }
func ImmOp(v int64) Operand   { return Operand{Kind: OpImm, Imm: v} }
func MemOp(base ppc.Reg, disp int32) Operand {
	return Operand{Kind: OpMem, Mem: Mem{Base: base, Disp: disp}}
}

func CRXOp(field int, c Cond) Operand {
	return Operand{Kind: OpCRX, CRX: CRX{Scale: 4, Reg: ppc.CRField(field), Cond: c}}
}

func (c Cond) String() string {
	if int(c) >= len(condNames) {
		return "cond(" + strconv.Itoa(int(c)) + ")"
	}

	return condNames[c]
}

// Invert returns the opposite branch code.
func (c Cond) Invert() Cond {
	switch c {
	case CondLT:
		return CondGE
	case CondGE:
		return CondLT
	case CondLE:
		return CondGT
	case CondGT:
		return CondLE
	case CondEQ:
		return CondNE
	case CondNE:
		return CondEQ
	case CondUN:
		return CondNU
	case CondNU:
		return CondUN
	case CondSO:
		return CondNS
	case CondNS:
		return CondSO
	}

	return c
}

func (h Hint) String() string {
	switch h {
	case HintMinus:
		return "-"
	case HintPlus:
		return "+"
	}

	return ""
}

// Target returns the first immediate operand, the resolved branch target for branches.
func (in *Inst) Target() (uint64, bool) {
	for _, op := range in.Ops {
		if op.Kind == OpImm {
			return uint64(op.Imm), true
		}
	}

	return 0, false
}

// CRField returns the condition register field named by the leading operand, 0 if implicit.
func (in *Inst) CRField() int {
	if len(in.Ops) == 0 {
		return 0
	}

	switch op := in.Ops[0]; {
	case op.Kind == OpReg && op.Reg.IsCR():
		return op.Reg.Num()
	case op.Kind == OpCRX:
		return op.CRX.Reg.Num()
	}

	return 0
}

func (in *Inst) String() string {
	if in.OpStr == "" {
		return in.Mnemonic
	}

	return in.Mnemonic + " " + in.OpStr
}

func (op Operand) String() string {
	switch op.Kind {
	case OpReg:
		return op.Reg.String()
	case OpImm:
		if op.Imm < 0 {
			return strconv.FormatInt(op.Imm, 10)
		}

		if op.Imm >= 0x100 {
			return "0x" + strconv.FormatUint(uint64(op.Imm), 16)
		}

		return strconv.FormatInt(op.Imm, 10)
	case OpMem:
		base := "0"
		if op.Mem.Base != ppc.NoReg {
			base = op.Mem.Base.String()
		}

		return strconv.Itoa(int(op.Mem.Disp)) + "(" + base + ")"
	case OpCRX:
		return strconv.Itoa(int(op.CRX.Scale)) + "*" + op.CRX.Reg.String() + "+" + crBitName(op.CRX.Cond)
	}

	return "?"
}

func (op Operand) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	switch op.Kind {
	case OpReg:
		return e.AppendString(b, op.Reg.String())
	case OpImm:
		return e.AppendInt64(b, op.Imm)
	case OpMem:
		b = e.AppendMap(b, 2)
		b = e.AppendKeyString(b, "base", op.Mem.Base.String())
		b = e.AppendKeyInt64(b, "disp", int64(op.Mem.Disp))

		return b
	case OpCRX:
		return e.AppendString(b, op.String())
	}

	return e.AppendNil(b)
}

func (g Group) String() string {
	var s []string

	for i, n := range []string{"jump", "call", "ret", "rel", "int", "float", "vector", "paired_single", "privileged"} {
		if g&(1<<i) != 0 {
			s = append(s, n)
		}
	}

	return strings.Join(s, ",")
}

func opString(ops []Operand) string {
	var b strings.Builder

	for i, op := range ops {
		if i != 0 {
			b.WriteString(",")
		}

		b.WriteString(op.String())
	}

	return b.String()
}

// crBitName names the bit a CR test reads, ignoring its polarity.
func crBitName(c Cond) string {
	switch c {
	case CondLT, CondGE:
		return "lt"
	case CondGT, CondLE:
		return "gt"
	case CondEQ, CondNE:
		return "eq"
	}

	return "so"
}

func convReg(r ppc64asm.Reg) (ppc.Reg, bool) {
	switch {
	case r >= ppc64asm.R0 && r <= ppc64asm.R31:
		return ppc.R0 + ppc.Reg(r-ppc64asm.R0), true
	case r >= ppc64asm.F0 && r <= ppc64asm.F31:
		return ppc.F0 + ppc.Reg(r-ppc64asm.F0), true
	case r >= ppc64asm.V0 && r <= ppc64asm.V31:
		return ppc.V0 + ppc.Reg(r-ppc64asm.V0), true
	case r >= ppc64asm.VS0 && r <= ppc64asm.VS63:
		return ppc.VS0 + ppc.Reg(r-ppc64asm.VS0), true
	}

	return ppc.NoReg, false
}
