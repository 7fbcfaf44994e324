package format

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

// Func appends one statement per line prefixed with its instruction address.
func Func(b []byte, f *il.Func) []byte {
	b = hfmt.Appendf(b, "func %s 0x%x\n", f.Name, f.Addr)

	for i, id := range f.Code {
		if l, ok := f.At(id).(il.Label); ok {
			b = hfmt.Appendf(b, "L%d:\n", int(l))
			continue
		}

		b = hfmt.Appendf(b, "\t0x%08x  ", f.Addrs[i])
		b = Expr(b, f, id)
		b = append(b, '\n')
	}

	return b
}

// Stmts renders statements joined by "; ".
func Stmts(f *il.Func, ids []il.Expr) string {
	var b []byte

	for i, id := range ids {
		if i != 0 {
			b = append(b, "; "...)
		}

		b = Expr(b, f, id)
	}

	return string(b)
}

func String(f *il.Func, id il.Expr) string {
	return string(Expr(nil, f, id))
}

func Expr(b []byte, f *il.Func, id il.Expr) []byte {
	switch x := f.At(id).(type) {
	case il.Const:
		return hfmt.Appendf(b, "const%s(%s)", size(x.Size), hex(x.Val))
	case il.ConstPtr:
		return hfmt.Appendf(b, "constptr%s(%s)", size(x.Size), hex(x.Val))
	case il.Reg:
		return hfmt.Appendf(b, "reg%s(%v)", size(x.Size), x.Reg)
	case il.SetReg:
		b = hfmt.Appendf(b, "set_reg%s(%v,", size(x.Size), x.Reg)
		b = Expr(b, f, x.Src)
		return append(b, ')')
	case il.Flag:
		return hfmt.Appendf(b, "flag(%v)", x.Flag)
	case il.SetFlag:
		b = hfmt.Appendf(b, "set_flag(%v,", x.Flag)
		b = Expr(b, f, x.Src)
		return append(b, ')')
	case il.FlagCond:
		return hfmt.Appendf(b, "flag_cond(%v,%v)", x.Cond, x.Class)
	case il.Arith:
		b = hfmt.Appendf(b, "%v%s%s(", x.Op, size(x.Size), flags(x.Flags))
		return args(b, f, x.L, x.R)
	case il.AddCarry:
		b = hfmt.Appendf(b, "adc%s%s(", size(x.Size), flags(x.Flags))
		return args(b, f, x.L, x.R, x.Carry)
	case il.Unary:
		b = hfmt.Appendf(b, "%v%s%s(", x.Op, size(x.Size), flags(x.Flags))
		return args(b, f, x.X)
	case il.Cmp:
		b = hfmt.Appendf(b, "cmp_%v%s(", x.Cond, size(x.Size))
		return args(b, f, x.L, x.R)
	case il.Load:
		b = hfmt.Appendf(b, "load%s(", size(x.Size))
		return args(b, f, x.Addr)
	case il.Store:
		b = hfmt.Appendf(b, "store%s(", size(x.Size))
		return args(b, f, x.Addr, x.Src)
	case il.Jump:
		b = append(b, "jump("...)
		return args(b, f, x.Dest)
	case il.Call:
		b = append(b, "call("...)
		return args(b, f, x.Dest)
	case il.Ret:
		b = append(b, "ret("...)
		return args(b, f, x.Dest)
	case il.If:
		b = append(b, "if("...)
		b = Expr(b, f, x.Cond)
		return hfmt.Appendf(b, ",L%d,L%d)", int(x.True), int(x.False))
	case il.Goto:
		return hfmt.Appendf(b, "goto(L%d)", int(x.Label))
	case il.Label:
		return hfmt.Appendf(b, "L%d:", int(x))
	case il.Nop:
		return append(b, "nop"...)
	case il.Trap:
		return append(b, "trap"...)
	case il.Syscall:
		return append(b, "syscall"...)
	case il.Undefined:
		return append(b, "undefined"...)
	case il.Unimplemented:
		return append(b, "unimplemented"...)
	case nil:
		return hfmt.Appendf(b, "<bad expr %d>", int(id))
	default:
		return hfmt.Appendf(b, "<%T>", x)
	}
}

func args(b []byte, f *il.Func, ids ...il.Expr) []byte {
	for i, id := range ids {
		if i != 0 {
			b = append(b, ',')
		}

		b = Expr(b, f, id)
	}

	return append(b, ')')
}

func size(s il.Size) string {
	switch s {
	case 0:
		return ""
	case 1:
		return ".b"
	case 2:
		return ".w"
	case 4:
		return ".d"
	case 8:
		return ".q"
	case 16:
		return ".o"
	}

	return sprintf(".%d", int(s))
}

func flags(w ppc.FlagWrite) string {
	if w == ppc.WriteNone {
		return ""
	}

	return "{" + w.String() + "}"
}

func hex(v int64) string {
	if v < 0 {
		return sprintf("-0x%x", uint64(-v))
	}

	return sprintf("0x%x", uint64(v))
}

func sprintf(f string, args ...any) string {
	return string(hfmt.Appendf(nil, f, args...))
}
