package lift

import (
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

// binop is rd = ra op rb for XO and X form operations.
func binop(op il.Op, carry bool) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Arith(op, word, s.reg(1), s.reg(2), s.arithFlags(carry)))
		return true
	}
}

// binopImm is rd = ra op imm<<shift.
func binopImm(op il.Op, shift uint, carry bool) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Arith(op, word, s.reg(1), s.f.Const(word, s.imm(2)<<shift), s.arithFlags(carry)))
		return true
	}
}

// binopNot is rd = ra op ^rb.
func binopNot(op il.Op) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Arith(op, word, s.reg(1), s.f.Not(word, s.reg(2)), ppc.WriteNone))
		return true
	}
}

// notBinop is rd = ^(ra op rb).
func notBinop(op il.Op) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Not(word, s.f.Arith(op, word, s.reg(1), s.reg(2), ppc.WriteNone)))
		return true
	}
}

// subf is rd = rb - ra.
func subf(carry bool) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Sub(word, s.reg(2), s.reg(1), s.arithFlags(carry)))
		return true
	}
}

func subfic(s *state) bool {
	s.setRD(0, s.f.Sub(word, s.f.Const(word, s.imm(2)), s.reg(1), ppc.WriteXERCA))
	return true
}

// addExt is rd = ra + rb + ca where rb is a register or a constant.
func addExt(rb func(s *state) il.Expr) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.AddCarry(word, s.reg(1), rb(s), s.f.Flag(ppc.XerCA), s.arithFlags(true)))
		return true
	}
}

func subfe(s *state) bool {
	s.setRD(0, s.f.AddCarry(word, s.f.Not(word, s.reg(1)), s.reg(2), s.f.Flag(ppc.XerCA), s.arithFlags(true)))
	return true
}

func neg(s *state) bool {
	s.setRD(0, s.f.Unary(il.Neg, word, s.reg(1), s.arithFlags(false)))
	return true
}

// addi is rd = (ra|0) + imm<<shift.
func addi(shift uint) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Add(word, s.regOrZero(1), s.f.Const(word, s.imm(2)<<shift), ppc.WriteNone))
		return true
	}
}

func li(shift uint) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Const(word, s.imm(1)<<shift))
		return true
	}
}

func mr(s *state) bool {
	s.setRD(0, s.reg(1))
	return true
}

func extend(size il.Size) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.SignExtend(word, s.f.LowPart(size, s.reg(1))))
		return true
	}
}

// shiftImm is rd = rs op sh for the simplified rotate forms.
func shiftImm(op il.Op, carry bool) handler {
	return func(s *state) bool {
		fw := ppc.WriteNone
		if carry {
			fw = ppc.WriteXERCA
		}

		s.setRD(0, s.f.Arith(op, word, s.reg(1), s.f.Const(word, s.imm(2)), fw))
		return true
	}
}

func rlwinm(s *state) bool {
	sh, mb, me := s.imm(2), s.imm(3), s.imm(4)

	x := s.reg(1)

	if sh != 0 {
		x = s.f.Arith(il.Rol, word, x, s.f.Const(word, sh), ppc.WriteNone)
	}

	s.setRD(0, s.f.And(word, x, s.f.Const(word, rotMask(mb, me)), ppc.WriteNone))

	return true
}

// rotMask returns the 32-bit mask with big-endian bits mb through me set, wrapping if mb > me.
func rotMask(mb, me int64) int64 {
	hi := uint32(0xffffffff) >> uint(mb&31)
	lo := uint32(0xffffffff) << uint(31-me&31)

	if mb <= me {
		return int64(hi & lo)
	}

	return int64(hi | lo)
}

// compare sets condition register field crf from ra compared to rb or an immediate.
func compare(signed bool, size il.Size) handler {
	var opt operOpt

	switch {
	case size == 4 && signed:
		opt = sext32
	case size == 4:
		opt = zext32
	case signed:
		opt = sext64
	default:
		opt = zext64
	}

	return func(s *state) bool {
		l := s.oper(0, opt, 0)
		r := s.oper(1, opt, 0)

		s.emit(s.f.Sub(size, l, r, ppc.CRWrite(s.crf, signed)))

		return true
	}
}

func moveFrom(r ppc.Reg) handler {
	return func(s *state) bool {
		s.setRD(0, s.f.Reg(il.Size(r.Size()), r))
		return true
	}
}

func moveTo(r ppc.Reg) handler {
	return func(s *state) bool {
		s.setReg(r, s.reg(0))
		return true
	}
}

func nop(s *state) bool {
	s.emit(s.f.Nop())
	return true
}
