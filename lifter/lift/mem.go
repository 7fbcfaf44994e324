package lift

import (
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

type memForm uint8

const (
	memUpdate memForm = 1 << iota
	memIndexed
	memSigned
)

// load is rd = mem[ea] extended to the register width.
func load(size il.Size, form memForm) handler {
	return func(s *state) bool {
		indexed := form&memIndexed != 0

		rd := s.ops[0].Reg
		v := s.f.Load(size, s.ea(1, indexed))

		if rs := il.Size(rd.Size()); size < rs {
			if form&memSigned != 0 {
				v = s.f.SignExtend(rs, v)
			} else {
				v = s.f.ZeroExtend(rs, v)
			}
		}

		s.setReg(rd, v)

		if form&memUpdate != 0 {
			s.updateBase(indexed)
		}

		return true
	}
}

// store is mem[ea] = low bytes of rs.
func store(size il.Size, form memForm) handler {
	return func(s *state) bool {
		indexed := form&memIndexed != 0

		src := s.reg(0)
		if size < il.Size(s.ops[0].Reg.Size()) {
			src = s.f.LowPart(size, src)
		}

		s.emit(s.f.Store(size, s.ea(1, indexed), src))

		if form&memUpdate != 0 {
			s.updateBase(indexed)
		}

		return true
	}
}

// updateBase writes the effective address back to the base register of update forms.
func (s *state) updateBase(indexed bool) {
	base := s.ops[1].Reg
	if !indexed {
		base = s.ops[1].Mem.Base
	}

	if base == ppc.NoReg {
		return
	}

	s.setReg(base, s.ea(1, indexed))
}

func lmw(s *state) bool {
	first := s.ops[0].Reg.Num()

	for n := first; n < 32; n++ {
		s.setReg(ppc.GPR(n), s.f.Load(word, s.oper(1, 0, int64(n-first)*4)))
	}

	return true
}

func stmw(s *state) bool {
	first := s.ops[0].Reg.Num()

	for n := first; n < 32; n++ {
		r := ppc.GPR(n)

		s.emit(s.f.Store(word, s.oper(1, 0, int64(n-first)*4), s.f.Reg(word, r)))
	}

	return true
}
