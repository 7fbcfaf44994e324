package lift

import (
	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

type operOpt uint8

const (
	sext32 operOpt = 1 << iota
	sext64
	zext32
	zext64
	constPtr
)

// oper converts operand i to an expression.
// Memory operands become their effective address with bias added to the displacement.
func (s *state) oper(i int, opts operOpt, bias int64) il.Expr {
	f := s.f
	op := s.ops[i]

	var x il.Expr

	switch op.Kind {
	case decode.OpReg:
		x = s.reg(i)
	case decode.OpImm:
		if opts&constPtr != 0 {
			return f.ConstPtr(word, op.Imm)
		}

		x = f.Const(word, op.Imm)
	case decode.OpMem:
		disp := f.Const(word, int64(op.Mem.Disp)+bias)

		if op.Mem.Base == ppc.NoReg {
			return disp
		}

		return f.Add(word, f.Reg(word, op.Mem.Base), disp, ppc.WriteNone)
	default:
		return f.Undefined()
	}

	switch {
	case opts&sext32 != 0:
		x = f.SignExtend(4, x)
	case opts&zext32 != 0:
		x = f.ZeroExtend(4, x)
	case opts&sext64 != 0:
		x = f.SignExtend(8, x)
	case opts&zext64 != 0:
		x = f.ZeroExtend(8, x)
	}

	return x
}

// ea is the effective address of a D-form memory operand or an indexed (ra|0)+rb pair at i.
func (s *state) ea(i int, indexed bool) il.Expr {
	if !indexed {
		return s.oper(i, 0, 0)
	}

	return s.f.Add(word, s.regOrZero(i), s.reg(i+1), ppc.WriteNone)
}
