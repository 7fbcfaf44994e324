package lift

import (
	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

// branchConds maps relational branch codes to flag conditions.
// SO and unordered codes read the flag directly.
var branchConds = [...]ppc.Cond{
	decode.CondLT: ppc.CondSLT,
	decode.CondLE: ppc.CondSLE,
	decode.CondEQ: ppc.CondE,
	decode.CondGE: ppc.CondSGE,
	decode.CondGT: ppc.CondSGT,
	decode.CondNE: ppc.CondNE,
}

// conditional reports whether the instruction tests anything before branching.
func (s *state) conditional() bool {
	return s.in.Cond != decode.CondAlways || s.in.CTR != decode.CTRNone
}

// crCond is the condition register test of the branch code.
func (s *state) crCond() il.Expr {
	f := s.f

	switch s.in.Cond {
	case decode.CondSO, decode.CondUN:
		return f.Flag(ppc.CRFlag(s.crf, ppc.SO))
	case decode.CondNS, decode.CondNU:
		return f.Not(0, f.Flag(ppc.CRFlag(s.crf, ppc.SO)))
	}

	return f.FlagCond(branchConds[s.in.Cond], ppc.CRClass(s.crf, true))
}

// cond emits the counter decrement if any and returns the branch condition.
// It returns il.Nil for unconditional branches.
func (s *state) cond() il.Expr {
	f := s.f
	c := il.Nil

	if s.in.CTR != decode.CTRNone {
		s.setReg(ppc.CTR, f.Sub(word, f.Reg(word, ppc.CTR), f.Const(word, 1), ppc.WriteNone))

		test := ppc.CondNE
		if s.in.CTR == decode.CTRZero {
			test = ppc.CondE
		}

		c = f.Cmp(test, word, f.Reg(word, ppc.CTR), f.Const(word, 0))
	}

	if s.in.Cond != decode.CondAlways {
		cr := s.crCond()

		if c == il.Nil {
			c = cr
		} else {
			c = f.And(0, c, cr, ppc.WriteNone)
		}
	}

	return c
}

// condExec runs taken under c and notTaken otherwise, then joins.
func (s *state) condExec(c il.Expr, taken, notTaken func()) {
	f := s.f

	t, fl := f.NewLabel(), f.NewLabel()

	f.Emit(f.If(c, t, fl))
	f.Mark(t)
	taken()

	if notTaken == nil {
		f.Mark(fl)
		return
	}

	end := f.NewLabel()

	f.Emit(f.Goto(end))
	f.Mark(fl)
	notTaken()
	f.Mark(end)
}

// condJump splits control flow to target and the next instruction.
// Labels the function already has for these addresses are reused.
func (s *state) condJump(c il.Expr, target uint64) {
	f := s.f
	next := s.in.Addr + 4

	t, tok := f.LabelForAddress(target)
	if !tok {
		t = f.NewLabel()
	}

	fl, fok := f.LabelForAddress(next)
	if !fok {
		fl = f.NewLabel()
	}

	f.Emit(f.If(c, t, fl))

	if !tok {
		f.Mark(t)
		f.Emit(f.Jump(f.ConstPtr(word, int64(target))))
	}

	if !fok {
		f.Mark(fl)
		f.Emit(f.Jump(f.ConstPtr(word, int64(next))))
	}
}

func (s *state) target() uint64 {
	t, _ := s.in.Target()

	return t
}

// jumpTo handles direct branches without link.
func jumpTo(s *state) bool {
	f := s.f
	target := s.target()

	c := s.cond()
	if c != il.Nil {
		s.condJump(c, target)
		return false
	}

	if l, ok := f.LabelForAddress(target); ok {
		s.emit(f.Goto(l))
	} else {
		s.emit(f.Jump(f.ConstPtr(word, int64(target))))
	}

	return false
}

// call emits dest as a call, conditionally if the instruction tests anything.
// Not taken conditional calls still link.
func (s *state) call(dest func() il.Expr) bool {
	f := s.f

	if !s.conditional() {
		s.emit(f.Call(dest()))
		return true
	}

	c := s.cond()

	s.condExec(c, func() {
		s.emit(f.Call(dest()))
	}, func() {
		s.setReg(ppc.LR, f.ConstPtr(word, int64(s.in.Addr+4)))
	})

	return true
}

func callTo(s *state) bool {
	return s.call(func() il.Expr { return s.f.ConstPtr(word, int64(s.target())) })
}

func callReg(r ppc.Reg) handler {
	return func(s *state) bool {
		return s.call(func() il.Expr { return s.f.Reg(word, r) })
	}
}

func retLR(s *state) bool {
	f := s.f

	if !s.conditional() {
		s.emit(f.Ret(f.Reg(word, ppc.LR)))
		return false
	}

	s.condExec(s.cond(), func() {
		s.emit(f.Ret(f.Reg(word, ppc.LR)))
	}, nil)

	return true
}

func jumpCTR(s *state) bool {
	f := s.f

	if !s.conditional() {
		s.emit(f.Jump(f.Reg(word, ppc.CTR)))
		return false
	}

	s.condExec(s.cond(), func() {
		s.emit(f.Jump(f.Reg(word, ppc.CTR)))
	}, nil)

	return true
}

func trap(s *state) bool {
	s.emit(s.f.Trap())
	return false
}

func syscall(s *state) bool {
	s.emit(s.f.Syscall())
	return true
}
