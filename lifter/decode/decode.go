package decode

import (
	"strings"

	"golang.org/x/arch/ppc64/ppc64asm"
	"tlog.app/go/tlog"

	"github.com/slowlang/ppclift/lifter/ppc"
)

const prefixOpcode = 1

// Decode decodes the word at the start of b located at addr.
// Only the first 4 bytes are read.
func (c *Context) Decode(b []byte, addr uint64) (*Inst, error) {
	if c == nil || c.closed {
		return nil, &Error{Addr: addr, Err: ErrClosed}
	}

	if len(b) < 4 {
		return nil, &Error{Addr: addr, Err: ErrShort}
	}

	in := &Inst{
		Addr: addr,
		Word: c.ord.Uint32(b),
		Ctx:  c,
	}

	copy(in.Raw[:], b[:4])

	err := c.decode(in)
	if err != nil {
		if tlog.If("decode") {
			tlog.Printw("undecodable", "addr", tlog.FormatNext("%#x"), addr, "word", tlog.FormatNext("%08x"), in.Word, "err", err)
		}

		return nil, &Error{Addr: addr, Word: in.Word, Err: err}
	}

	in.OpStr = opString(in.Ops)
	in.RegsRead, in.RegsWrite = implicitRegs(in)
	in.Groups = groups(in)

	if tlog.If("decode") {
		tlog.Printw("decoded", "addr", tlog.FormatNext("%#x"), addr, "word", tlog.FormatNext("%08x"), in.Word, "inst", in.String(), "id", in.ID)
	}

	return in, nil
}

func (c *Context) decode(in *Inst) error {
	if c.mode == PairedSingles && decodePS(in) {
		return nil
	}

	if in.Word>>26 == prefixOpcode {
		return ErrUnsupported
	}

	raw, err := ppc64asm.Decode(in.Raw[:], c.ord)
	if err != nil || raw.Op == 0 {
		return ErrUnknown
	}

	return normalize(in, raw)
}

func normalize(in *Inst, raw ppc64asm.Inst) error {
	op := raw.Op
	name := op.String()

	if base, ok := strings.CutSuffix(name, "."); ok {
		in.UpdateCR0 = true

		if b, ok := tables.byName[base]; ok {
			op, name = b, base
		}
	}

	if base, ok := tables.overflow[op]; ok {
		in.Overflow = true
		op, name = base, base.String()
	}

	in.ID = ID(op)
	in.Mnemonic = name

	args := raw.Args[:]
	for len(args) != 0 && args[len(args)-1] == nil {
		args = args[:len(args)-1]
	}

	switch op {
	case ppc64asm.B, ppc64asm.BA, ppc64asm.BL, ppc64asm.BLA,
		ppc64asm.BC, ppc64asm.BCA, ppc64asm.BCL, ppc64asm.BCLA,
		ppc64asm.BCLR, ppc64asm.BCLRL, ppc64asm.BCCTR, ppc64asm.BCCTRL:
		return branch(in, op, args)
	case ppc64asm.CMP, ppc64asm.CMPL, ppc64asm.CMPI, ppc64asm.CMPLI:
		return compareL(in, op, args)
	case ppc64asm.CMPW, ppc64asm.CMPLW, ppc64asm.CMPWI, ppc64asm.CMPLWI,
		ppc64asm.CMPD, ppc64asm.CMPLD, ppc64asm.CMPDI, ppc64asm.CMPLDI:
		if f, ok := args[0].(ppc64asm.CondReg); ok && f == ppc64asm.CR0 {
			args = args[1:]
		}
	case ppc64asm.TW, ppc64asm.TWI:
		if to, ok := args[0].(ppc64asm.Imm); ok && to == 31 {
			in.ID, in.Mnemonic = TRAP, TRAP.String()
			return nil
		}
	}

	ops, err := operands(args, in.Addr)
	if err != nil {
		return err
	}

	in.Ops = ops

	simplify(in)

	return nil
}

// compareL rewrites compares with an explicit L operand into word or doubleword forms.
func compareL(in *Inst, op ppc64asm.Op, args []ppc64asm.Arg) error {
	l, _ := args[1].(ppc64asm.Imm)

	ids := map[ppc64asm.Op][2]ID{
		ppc64asm.CMP:   {CMPW, CMPD},
		ppc64asm.CMPL:  {CMPLW, CMPLD},
		ppc64asm.CMPI:  {CMPWI, CMPDI},
		ppc64asm.CMPLI: {CMPLWI, CMPLDI},
	}[op]

	in.ID = ids[l&1]
	in.Mnemonic = in.ID.String()

	rest := append([]ppc64asm.Arg{}, args[2:]...)
	if f, ok := args[0].(ppc64asm.CondReg); !ok || f != ppc64asm.CR0 {
		rest = append([]ppc64asm.Arg{args[0]}, rest...)
	}

	ops, err := operands(rest, in.Addr)
	if err != nil {
		return err
	}

	in.Ops = ops

	return nil
}

func operands(args []ppc64asm.Arg, addr uint64) ([]Operand, error) {
	ops := make([]Operand, 0, len(args))

	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case ppc64asm.Reg:
			r, ok := convReg(a)
			if !ok {
				return nil, ErrUnsupported
			}

			ops = append(ops, RegOp(r))
		case ppc64asm.CondReg:
			switch {
			case a >= ppc64asm.CR0 && a <= ppc64asm.CR7:
				ops = append(ops, RegOp(ppc.CRField(int(a-ppc64asm.CR0))))
			case a >= ppc64asm.Cond0LT && a <= ppc64asm.Cond7SO:
				bit := int(a - ppc64asm.Cond0LT)
				ops = append(ops, CRXOp(bit/4, [4]Cond{CondLT, CondGT, CondEQ, CondSO}[bit%4]))
			default:
				return nil, ErrUnsupported
			}
		case ppc64asm.SpReg:
			ops = append(ops, ImmOp(int64(a)))
		case ppc64asm.Imm:
			ops = append(ops, ImmOp(int64(a)))
		case ppc64asm.PCRel:
			ops = append(ops, ImmOp(int64(uint32(int64(addr)+int64(a)))))
		case ppc64asm.Label:
			ops = append(ops, ImmOp(int64(uint32(a))))
		case ppc64asm.Offset:
			base := ppc.NoReg

			if i+1 < len(args) {
				if r, ok := args[i+1].(ppc64asm.Reg); ok {
					if r != ppc64asm.R0 {
						base, _ = convReg(r)
					}

					i++
				}
			}

			ops = append(ops, MemOp(base, int32(a)))
		default:
			return nil, ErrUnsupported
		}
	}

	if len(ops) > MaxOps {
		return nil, ErrUnsupported
	}

	return ops, nil
}

// simplify rewrites generic encodings into their simplified mnemonics.
func simplify(in *Inst) {
	set := func(id ID, ops ...Operand) {
		in.ID = id
		in.Mnemonic = id.String()

		if ops != nil {
			in.Ops = ops
		}
	}

	ops := in.Ops

	switch in.ID {
	case OR:
		if ops[1].Reg == ops[2].Reg {
			set(MR, ops[0], ops[1])
		}
	case ID(ppc64asm.MFSPR):
		switch ops[1].Imm {
		case 8:
			set(MFLR, ops[0])
		case 9:
			set(MFCTR, ops[0])
		}
	case ID(ppc64asm.MTSPR):
		switch ops[0].Imm {
		case 8:
			set(MTLR, ops[1])
		case 9:
			set(MTCTR, ops[1])
		}
	case RLWINM:
		sh, mb, me := ops[2].Imm, ops[3].Imm, ops[4].Imm

		switch {
		case mb == 0 && me == 31:
			set(ROTLWI, ops[0], ops[1], ImmOp(sh))
		case mb == 0 && sh != 0 && me == 31-sh:
			set(SLWI, ops[0], ops[1], ImmOp(sh))
		case me == 31 && mb != 0 && sh == 32-mb:
			set(SRWI, ops[0], ops[1], ImmOp(mb))
		}
	}

	if in.UpdateCR0 && !strings.HasSuffix(in.Mnemonic, ".") {
		in.Mnemonic += "."
	}

	if in.Overflow {
		in.Mnemonic = strings.Replace(in.Mnemonic, ".", "", 1) + "o"

		if in.UpdateCR0 {
			in.Mnemonic += "."
		}
	}
}
