package decode

import (
	"golang.org/x/arch/ppc64/ppc64asm"

	"github.com/slowlang/ppclift/lifter/ppc"
)

// BO field bits, counted from the least significant.
const (
	boHintT    = 0x01
	boCTRZero  = 0x02
	boNoCTR    = 0x04
	boTrue     = 0x08
	boNoCR     = 0x10
	boHintMask = 0x03
)

type branchTarget int

const (
	toAddr branchTarget = iota
	toLR
	toCTR
)

// crTests maps a condition register bit and the expected value to a branch code.
var crTests = [4][2]Cond{
	{CondGE, CondLT},
	{CondLE, CondGT},
	{CondNE, CondEQ},
	{CondNS, CondSO},
}

func branch(in *Inst, op ppc64asm.Op, args []ppc64asm.Arg) error {
	var (
		bo, bi int
		to     = toAddr
		link   bool
		abs    bool
		target int64
	)

	switch op {
	case ppc64asm.B, ppc64asm.BL:
		bo = boNoCR | boNoCTR
		target = int64(uint32(int64(in.Addr) + int64(args[0].(ppc64asm.PCRel))))
	case ppc64asm.BA, ppc64asm.BLA:
		bo = boNoCR | boNoCTR
		target = int64(uint32(args[0].(ppc64asm.Label)))
		abs = true
	case ppc64asm.BC, ppc64asm.BCL:
		bo, bi = boBI(args)
		target = int64(uint32(int64(in.Addr) + int64(args[2].(ppc64asm.PCRel))))
	case ppc64asm.BCA, ppc64asm.BCLA:
		bo, bi = boBI(args)
		target = int64(uint32(args[2].(ppc64asm.Label)))
		abs = true
	case ppc64asm.BCLR, ppc64asm.BCLRL:
		bo, bi = boBI(args)
		to = toLR
	case ppc64asm.BCCTR, ppc64asm.BCCTRL:
		bo, bi = boBI(args)
		to = toCTR
	}

	switch op {
	case ppc64asm.BL, ppc64asm.BLA, ppc64asm.BCL, ppc64asm.BCLA, ppc64asm.BCLRL, ppc64asm.BCCTRL:
		link = true
	}

	crTest := bo&boNoCR == 0
	ctr := bo&boNoCTR == 0

	if ctr && to == toCTR {
		// decrementing ctr while branching to it is an invalid form
		return ErrUnknown
	}

	field := bi / 4

	if crTest {
		t := 0
		if bo&boTrue != 0 {
			t = 1
		}

		in.Cond = crTests[bi%4][t]
	}

	if ctr {
		in.CTR = CTRNonZero
		if bo&boCTRZero != 0 {
			in.CTR = CTRZero
		}
	}

	switch {
	case crTest && !ctr:
		in.Hint = hint(bo & boHintMask)
	case ctr && !crTest:
		in.Hint = hint(bo>>2&0x2 | bo&boHintT)
	}

	switch {
	case crTest && ctr:
		in.Ops = append(in.Ops, CRXOp(field, in.Cond))
	case crTest && field != 0:
		in.Ops = append(in.Ops, RegOp(ppc.CRField(field)))
	}

	if to == toAddr {
		in.Ops = append(in.Ops, ImmOp(target))
	}

	in.ID = branchID(to, link, abs, in.CTR)
	in.Mnemonic = branchMnemonic(in, to, link, abs, crTest)

	return nil
}

func boBI(args []ppc64asm.Arg) (bo, bi int) {
	bo = int(args[0].(ppc64asm.Imm))

	if c, ok := args[1].(ppc64asm.CondReg); ok {
		bi = int(c - ppc64asm.Cond0LT)
	}

	return bo, bi
}

func hint(at int) Hint {
	switch at {
	case 2:
		return HintMinus
	case 3:
		return HintPlus
	}

	return HintNone
}

func branchID(to branchTarget, link, abs bool, ctr CTRTest) ID {
	if ctr != CTRNone {
		ids := [...][2][2]ID{
			toAddr: {{BDNZ, BDNZL}, {BDZ, BDZL}},
			toLR:   {{BDNZLR, BDNZLRL}, {BDZLR, BDZLRL}},
		}[to]

		return ids[b2i(ctr == CTRZero)][b2i(link)]
	}

	switch to {
	case toLR:
		return [2]ID{BLR, BLRL}[b2i(link)]
	case toCTR:
		return [2]ID{BCTR, BCTRL}[b2i(link)]
	}

	return [2][2]ID{{B, BL}, {BA, BLA}}[b2i(abs)][b2i(link)]
}

func branchMnemonic(in *Inst, to branchTarget, link, abs, crTest bool) string {
	m := "b"

	switch in.CTR {
	case CTRNonZero:
		m = "bdnz"
	case CTRZero:
		m = "bdz"
	}

	switch {
	case crTest && in.CTR != CTRNone:
		if in.Cond == CondLT || in.Cond == CondGT || in.Cond == CondEQ || in.Cond == CondSO {
			m += "t"
		} else {
			m += "f"
		}
	case crTest:
		m += in.Cond.String()
	}

	switch to {
	case toLR:
		m += "lr"
	case toCTR:
		m += "ctr"
	}

	if link {
		m += "l"
	}

	if abs {
		m += "a"
	}

	return m + in.Hint.String()
}

func b2i(x bool) int {
	if x {
		return 1
	}

	return 0
}
