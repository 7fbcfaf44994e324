package il

import (
	"github.com/slowlang/ppclift/lifter/ppc"
)

type (
	Expr  int
	Label int
	Size  int

	Op int

	Const struct {
		Size Size
		Val  int64
	}

	ConstPtr struct {
		Size Size
		Val  int64
	}

	Reg struct {
		Size Size
		Reg  ppc.Reg
	}

	SetReg struct {
		Size Size
		Reg  ppc.Reg
		Src  Expr
	}

	Flag struct {
		Flag ppc.Flag
	}

	SetFlag struct {
		Flag ppc.Flag
		Src  Expr
	}

	// FlagCond is a condition over flags written with the given class.
	FlagCond struct {
		Cond  ppc.Cond
		Class ppc.FlagClass
	}

	Arith struct {
		Op    Op
		Size  Size
		L, R  Expr
		Flags ppc.FlagWrite
	}

	AddCarry struct {
		Size  Size
		L, R  Expr
		Carry Expr
		Flags ppc.FlagWrite
	}

	Unary struct {
		Op    Op
		Size  Size
		X     Expr
		Flags ppc.FlagWrite
	}

	Cmp struct {
		Cond ppc.Cond
		Size Size
		L, R Expr
	}

	Load struct {
		Size Size
		Addr Expr
	}

	Store struct {
		Size Size
		Addr Expr
		Src  Expr
	}

	Jump struct {
		Dest Expr
	}

	Call struct {
		Dest Expr
	}

	Ret struct {
		Dest Expr
	}

	If struct {
		Cond  Expr
		True  Label
		False Label
	}

	Goto struct {
		Label Label
	}

	Nop           struct{}
	Trap          struct{}
	Syscall       struct{}
	Undefined     struct{}
	Unimplemented struct{}
)

const (
	Add Op = iota
	Sub
	And
	Or
	Xor
	Lsl
	Lsr
	Asr
	Rol
	Mul
	MulHiS
	MulHiU
	DivS
	DivU

	Neg
	Not
	SignExtend
	ZeroExtend
	LowPart

	numOps
)

const (
	Nil Expr = -1

	NoLabel Label = -1
)

var opNames = [...]string{
	Add:        "add",
	Sub:        "sub",
	And:        "and",
	Or:         "or",
	Xor:        "xor",
	Lsl:        "lsl",
	Lsr:        "lsr",
	Asr:        "asr",
	Rol:        "rol",
	Mul:        "mul",
	MulHiS:     "mulhs",
	MulHiU:     "mulhu",
	DivS:       "divs",
	DivU:       "divu",
	Neg:        "neg",
	Not:        "not",
	SignExtend: "sx",
	ZeroExtend: "zx",
	LowPart:    "low",
}

func (o Op) String() string {
	if o < 0 || o >= numOps {
		return "op?"
	}

	return opNames[o]
}

// Unary reports whether o takes one operand.
func (o Op) Unary() bool { return o >= Neg && o < numOps }

// Flags returns flag write type of a flag writing node.
func Flags(x any) ppc.FlagWrite {
	switch x := x.(type) {
	case Arith:
		return x.Flags
	case AddCarry:
		return x.Flags
	case Unary:
		return x.Flags
	}

	return ppc.WriteNone
}

// Args returns sub-expressions of x in operand order.
func Args(x any) []Expr {
	switch x := x.(type) {
	case SetReg:
		return []Expr{x.Src}
	case SetFlag:
		return []Expr{x.Src}
	case Arith:
		return []Expr{x.L, x.R}
	case AddCarry:
		return []Expr{x.L, x.R, x.Carry}
	case Unary:
		return []Expr{x.X}
	case Cmp:
		return []Expr{x.L, x.R}
	case Load:
		return []Expr{x.Addr}
	case Store:
		return []Expr{x.Addr, x.Src}
	case Jump:
		return []Expr{x.Dest}
	case Call:
		return []Expr{x.Dest}
	case Ret:
		return []Expr{x.Dest}
	case If:
		return []Expr{x.Cond}
	}

	return nil
}

// SizeOf returns operation width of x, 0 if it has none.
func SizeOf(x any) Size {
	switch x := x.(type) {
	case Const:
		return x.Size
	case ConstPtr:
		return x.Size
	case Reg:
		return x.Size
	case SetReg:
		return x.Size
	case Arith:
		return x.Size
	case AddCarry:
		return x.Size
	case Unary:
		return x.Size
	case Cmp:
		return x.Size
	case Load:
		return x.Size
	case Store:
		return x.Size
	}

	return 0
}
