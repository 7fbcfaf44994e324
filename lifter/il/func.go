package il

import (
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/ppclift/lifter/ppc"
)

type (
	// Func is an append-only IR of one function.
	// Expressions live in Exprs and are referenced by id,
	// Code is the statement sequence.
	Func struct {
		Name string
		Addr uint64

		Exprs []any
		Code  []Expr
		Addrs []uint64 // instruction address of each Code entry

		cur uint64

		labels []int // label -> Code index of its mark, -1 if not placed
		byAddr map[uint64]Label
	}
)

func New(name string, addr uint64) *Func {
	return &Func{
		Name: name,
		Addr: addr,
		cur:  addr,
	}
}

// Expr appends x to the expression table.
func (f *Func) Expr(x any) Expr {
	id := Expr(len(f.Exprs))
	f.Exprs = append(f.Exprs, x)

	return id
}

func (f *Func) At(id Expr) any {
	if id < 0 || int(id) >= len(f.Exprs) {
		return nil
	}

	return f.Exprs[id]
}

// Emit appends a statement.
func (f *Func) Emit(id Expr) Expr {
	f.Code = append(f.Code, id)
	f.Addrs = append(f.Addrs, f.cur)

	return id
}

// SetAddr sets address of the instruction being lifted.
func (f *Func) SetAddr(addr uint64) { f.cur = addr }

func (f *Func) CurAddr() uint64 { return f.cur }

// Stmts returns statements emitted for instruction at addr.
func (f *Func) Stmts(addr uint64) []Expr {
	var r []Expr

	for i, a := range f.Addrs {
		if a == addr {
			r = append(r, f.Code[i])
		}
	}

	return r
}

func (f *Func) Const(size Size, v int64) Expr    { return f.Expr(Const{Size: size, Val: v}) }
func (f *Func) ConstPtr(size Size, v int64) Expr { return f.Expr(ConstPtr{Size: size, Val: v}) }

func (f *Func) Reg(size Size, r ppc.Reg) Expr { return f.Expr(Reg{Size: size, Reg: r}) }

func (f *Func) SetReg(size Size, r ppc.Reg, src Expr) Expr {
	return f.Expr(SetReg{Size: size, Reg: r, Src: src})
}

func (f *Func) Flag(fl ppc.Flag) Expr { return f.Expr(Flag{Flag: fl}) }

func (f *Func) SetFlag(fl ppc.Flag, src Expr) Expr {
	return f.Expr(SetFlag{Flag: fl, Src: src})
}

func (f *Func) FlagCond(c ppc.Cond, class ppc.FlagClass) Expr {
	return f.Expr(FlagCond{Cond: c, Class: class})
}

func (f *Func) Arith(op Op, size Size, l, r Expr, fw ppc.FlagWrite) Expr {
	return f.Expr(Arith{Op: op, Size: size, L: l, R: r, Flags: fw})
}

func (f *Func) Add(size Size, l, r Expr, fw ppc.FlagWrite) Expr { return f.Arith(Add, size, l, r, fw) }
func (f *Func) Sub(size Size, l, r Expr, fw ppc.FlagWrite) Expr { return f.Arith(Sub, size, l, r, fw) }
func (f *Func) And(size Size, l, r Expr, fw ppc.FlagWrite) Expr { return f.Arith(And, size, l, r, fw) }
func (f *Func) Or(size Size, l, r Expr, fw ppc.FlagWrite) Expr  { return f.Arith(Or, size, l, r, fw) }
func (f *Func) Xor(size Size, l, r Expr, fw ppc.FlagWrite) Expr { return f.Arith(Xor, size, l, r, fw) }

func (f *Func) AddCarry(size Size, l, r, carry Expr, fw ppc.FlagWrite) Expr {
	return f.Expr(AddCarry{Size: size, L: l, R: r, Carry: carry, Flags: fw})
}

func (f *Func) Unary(op Op, size Size, x Expr, fw ppc.FlagWrite) Expr {
	return f.Expr(Unary{Op: op, Size: size, X: x, Flags: fw})
}

func (f *Func) Not(size Size, x Expr) Expr { return f.Unary(Not, size, x, ppc.WriteNone) }

func (f *Func) SignExtend(size Size, x Expr) Expr { return f.Unary(SignExtend, size, x, ppc.WriteNone) }
func (f *Func) ZeroExtend(size Size, x Expr) Expr { return f.Unary(ZeroExtend, size, x, ppc.WriteNone) }
func (f *Func) LowPart(size Size, x Expr) Expr    { return f.Unary(LowPart, size, x, ppc.WriteNone) }

func (f *Func) Cmp(c ppc.Cond, size Size, l, r Expr) Expr {
	return f.Expr(Cmp{Cond: c, Size: size, L: l, R: r})
}

func (f *Func) Load(size Size, addr Expr) Expr { return f.Expr(Load{Size: size, Addr: addr}) }

func (f *Func) Store(size Size, addr, src Expr) Expr {
	return f.Expr(Store{Size: size, Addr: addr, Src: src})
}

func (f *Func) Jump(dest Expr) Expr { return f.Expr(Jump{Dest: dest}) }
func (f *Func) Call(dest Expr) Expr { return f.Expr(Call{Dest: dest}) }
func (f *Func) Ret(dest Expr) Expr  { return f.Expr(Ret{Dest: dest}) }

func (f *Func) If(cond Expr, t, fl Label) Expr {
	return f.Expr(If{Cond: cond, True: t, False: fl})
}

func (f *Func) Goto(l Label) Expr { return f.Expr(Goto{Label: l}) }

func (f *Func) Nop() Expr           { return f.Expr(Nop{}) }
func (f *Func) Trap() Expr          { return f.Expr(Trap{}) }
func (f *Func) Syscall() Expr       { return f.Expr(Syscall{}) }
func (f *Func) Undefined() Expr     { return f.Expr(Undefined{}) }
func (f *Func) Unimplemented() Expr { return f.Expr(Unimplemented{}) }

// NewLabel allocates a label not yet placed in Code.
func (f *Func) NewLabel() Label {
	l := Label(len(f.labels))
	f.labels = append(f.labels, -1)

	return l
}

// Mark places l at the current end of Code.
func (f *Func) Mark(l Label) {
	f.labels[l] = len(f.Code)
	f.Emit(f.Expr(l))
}

// Marked reports whether l is placed.
func (f *Func) Marked(l Label) bool {
	return l >= 0 && int(l) < len(f.labels) && f.labels[l] >= 0
}

// LabelPos returns Code index of l or -1.
func (f *Func) LabelPos(l Label) int {
	if l < 0 || int(l) >= len(f.labels) {
		return -1
	}

	return f.labels[l]
}

func (f *Func) Labels() int { return len(f.labels) }

// LabelForAddress returns the label of an instruction address if one was added.
func (f *Func) LabelForAddress(addr uint64) (Label, bool) {
	l, ok := f.byAddr[addr]
	return l, ok
}

// AddLabelForAddress creates the label for addr or returns existing one.
func (f *Func) AddLabelForAddress(addr uint64) Label {
	if l, ok := f.byAddr[addr]; ok {
		return l
	}

	if f.byAddr == nil {
		f.byAddr = make(map[uint64]Label)
	}

	l := f.NewLabel()
	f.byAddr[addr] = l

	return l
}

// MarkAddress places label of addr if it exists and is not placed yet.
func (f *Func) MarkAddress(addr uint64) bool {
	l, ok := f.byAddr[addr]
	if !ok || f.Marked(l) {
		return false
	}

	f.SetAddr(addr)
	f.Mark(l)

	return true
}

func (f *Func) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 5)
	b = e.AppendKeyString(b, "name", f.Name)
	b = e.AppendKeyInt64(b, "addr", int64(f.Addr))
	b = e.AppendKeyInt(b, "exprs", len(f.Exprs))
	b = e.AppendKeyInt(b, "code", len(f.Code))
	b = e.AppendKeyInt(b, "labels", len(f.labels))

	return b
}
