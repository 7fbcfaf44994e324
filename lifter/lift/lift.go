package lift

import (
	"tlog.app/go/tlog"

	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

type (
	state struct {
		f  *il.Func
		in *decode.Inst

		ops []decode.Operand
		crf int // condition register field consumed from the operand list
	}

	// handler emits IR for one instruction and reports whether execution falls through.
	handler func(s *state) bool
)

const word il.Size = ppc.AddrSize

// Lift appends IR of in to f.
// It never fails: unmodeled instructions become a single Unimplemented statement.
func Lift(in *decode.Inst, f *il.Func) bool {
	f.SetAddr(in.Addr)

	s := &state{
		f:   f,
		in:  in,
		ops: in.Ops,
	}

	if in.Cond != decode.CondAlways || compares[in.ID] {
		s.crPrefix()
	}

	h, ok := handlers[in.ID]
	if !ok {
		h = unimplemented
	}

	start := len(f.Code)

	falls := h(s)

	if tlog.If("lift") {
		tlog.Printw("lifted", "addr", tlog.FormatNext("%#x"), in.Addr, "inst", in.String(), "stmts", len(f.Code)-start, "falls", falls)
	}

	return falls
}

func unimplemented(s *state) bool {
	if tlog.If("unimplemented") {
		tlog.Printw("unimplemented", "addr", tlog.FormatNext("%#x"), s.in.Addr, "inst", s.in.String(), "id", s.in.ID)
	}

	s.emit(s.f.Unimplemented())

	return true
}

// crPrefix consumes a leading condition register field operand.
func (s *state) crPrefix() {
	if len(s.ops) == 0 {
		return
	}

	switch op := s.ops[0]; {
	case op.Kind == decode.OpReg && op.Reg.IsCR():
		s.crf = op.Reg.Num()
	case op.Kind == decode.OpCRX:
		s.crf = op.CRX.Reg.Num()
	default:
		return
	}

	s.ops = s.ops[1:]
}

func (s *state) emit(x il.Expr) { s.f.Emit(x) }

func (s *state) reg(i int) il.Expr {
	r := s.ops[i].Reg

	return s.f.Reg(il.Size(r.Size()), r)
}

// regOrZero reads register operand i where r0 means literal zero.
func (s *state) regOrZero(i int) il.Expr {
	r := s.ops[i].Reg
	if r == ppc.R0 || r == ppc.NoReg {
		return s.f.Const(word, 0)
	}

	return s.reg(i)
}

func (s *state) imm(i int) int64 { return s.ops[i].Imm }

func (s *state) setReg(r ppc.Reg, v il.Expr) {
	s.emit(s.f.SetReg(il.Size(r.Size()), r, v))
}

// setRD writes v to register operand i and records the result in cr0 for dotted forms.
func (s *state) setRD(i int, v il.Expr) {
	r := s.ops[i].Reg

	s.setReg(r, v)

	if s.in.UpdateCR0 {
		s.emit(s.f.Sub(word, s.f.Reg(word, r), s.f.Const(word, 0), ppc.WriteCR0S))
	}
}

// arithFlags returns the xer write of the current instruction.
func (s *state) arithFlags(carry bool) ppc.FlagWrite {
	switch {
	case s.in.Overflow && carry:
		return ppc.WriteXER
	case s.in.Overflow:
		return ppc.WriteXEROVSO
	case carry:
		return ppc.WriteXERCA
	}

	return ppc.WriteNone
}
