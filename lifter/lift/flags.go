package lift

import (
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

type (
	// FlagValue is the value a flag gets from a flag writing expression.
	FlagValue struct {
		Op    il.Expr
		Write ppc.FlagWrite
		Flag  ppc.Flag
		Value il.Expr
	}
)

// ResolveFlagWrite builds the expression flag gets after op wrote flags of type fw.
// Condition register relations compare the operands of a subtraction,
// or the result of any other operation against zero.
func ResolveFlagWrite(f *il.Func, op il.Expr, size il.Size, fw ppc.FlagWrite, flag ppc.Flag) il.Expr {
	class := fw.Class()

	if flag.IsCR() && flag.Field() == class.Field() {
		l, r := relationArgs(f, op, size)
		signed := class.Signed()

		switch flag.Bit() {
		case ppc.LT:
			return f.Cmp(pick(signed, ppc.CondSLT, ppc.CondULT), size, l, r)
		case ppc.GT:
			return f.Cmp(pick(signed, ppc.CondSGT, ppc.CondUGT), size, l, r)
		case ppc.EQ:
			return f.Cmp(ppc.CondE, size, l, r)
		case ppc.SO:
			return f.Flag(ppc.XerSO)
		}
	}

	if flag == ppc.XerSO && (fw == ppc.WriteXER || fw == ppc.WriteXEROVSO) {
		ov := DefaultFlagWrite(f, op, size, ppc.XerOV, ppc.RoleOverflow)

		return f.Or(0, f.Flag(ppc.XerSO), ov, ppc.WriteNone)
	}

	return DefaultFlagWrite(f, op, size, flag, ppc.FlagRole(flag, class))
}

// DefaultFlagWrite builds a flag value from its role alone.
func DefaultFlagWrite(f *il.Func, op il.Expr, size il.Size, flag ppc.Flag, role ppc.Role) il.Expr {
	switch role {
	case ppc.RoleZero:
		return f.Cmp(ppc.CondE, size, op, f.Const(size, 0))
	case ppc.RoleNegativeSign:
		return f.Cmp(ppc.CondSLT, size, op, f.Const(size, 0))
	case ppc.RolePositiveSign:
		return f.Cmp(ppc.CondSGE, size, op, f.Const(size, 0))
	case ppc.RoleCarry:
		return carry(f, op, size)
	case ppc.RoleOverflow:
		return overflow(f, op, size)
	}

	return f.Undefined()
}

// FlagWrites resolves every flag written by stmt and its sub-expressions.
func FlagWrites(f *il.Func, stmt il.Expr) (r []FlagValue) {
	var walk func(id il.Expr)

	walk = func(id il.Expr) {
		x := f.At(id)

		for _, a := range il.Args(x) {
			walk(a)
		}

		fw := il.Flags(x)
		if fw == ppc.WriteNone {
			return
		}

		size := il.SizeOf(x)

		for _, fl := range ppc.FlagsWritten(fw) {
			r = append(r, FlagValue{
				Op:    id,
				Write: fw,
				Flag:  fl,
				Value: ResolveFlagWrite(f, id, size, fw, fl),
			})
		}
	}

	walk(stmt)

	return r
}

func relationArgs(f *il.Func, op il.Expr, size il.Size) (l, r il.Expr) {
	if x, ok := f.At(op).(il.Arith); ok && x.Op == il.Sub {
		return x.L, x.R
	}

	return op, f.Const(size, 0)
}

func carry(f *il.Func, op il.Expr, size il.Size) il.Expr {
	switch x := f.At(op).(type) {
	case il.Arith:
		switch x.Op {
		case il.Add:
			return f.Cmp(ppc.CondULT, size, op, x.L)
		case il.Sub:
			return f.Cmp(ppc.CondUGE, size, x.L, x.R)
		case il.Asr:
			// set when a negative value loses one bits
			mask := f.Sub(size, f.Arith(il.Lsl, size, f.Const(size, 1), x.R, ppc.WriteNone), f.Const(size, 1), ppc.WriteNone)
			lost := f.Cmp(ppc.CondNE, size, f.And(size, x.L, mask, ppc.WriteNone), f.Const(size, 0))

			return f.And(0, f.Cmp(ppc.CondSLT, size, x.L, f.Const(size, 0)), lost, ppc.WriteNone)
		}
	case il.AddCarry:
		wrapped := f.Cmp(ppc.CondULT, size, op, x.L)
		equal := f.And(0, f.Cmp(ppc.CondE, size, op, x.L), x.Carry, ppc.WriteNone)

		return f.Or(0, wrapped, equal, ppc.WriteNone)
	}

	return f.Undefined()
}

func overflow(f *il.Func, op il.Expr, size il.Size) il.Expr {
	zero := func() il.Expr { return f.Const(size, 0) }

	switch x := f.At(op).(type) {
	case il.Arith:
		switch x.Op {
		case il.Add:
			return f.Cmp(ppc.CondSLT, size, f.And(size, f.Xor(size, x.L, op, 0), f.Xor(size, x.R, op, 0), 0), zero())
		case il.Sub:
			return f.Cmp(ppc.CondSLT, size, f.And(size, f.Xor(size, x.L, x.R, 0), f.Xor(size, x.L, op, 0), 0), zero())
		}
	case il.AddCarry:
		return f.Cmp(ppc.CondSLT, size, f.And(size, f.Xor(size, x.L, op, 0), f.Xor(size, x.R, op, 0), 0), zero())
	case il.Unary:
		if x.Op == il.Neg {
			return f.Cmp(ppc.CondE, size, x.X, f.Const(size, minInt(size)))
		}
	}

	return f.Undefined()
}

func minInt(size il.Size) int64 {
	if size <= 0 || size >= 8 {
		return -1 << 63
	}

	return -1 << (8*size - 1)
}

func pick(signed bool, s, u ppc.Cond) ppc.Cond {
	if signed {
		return s
	}

	return u
}
