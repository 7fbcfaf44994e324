package il

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slowlang/ppclift/lifter/ppc"
)

func TestFuncExprs(t *testing.T) {
	f := New("f", 0x100)

	c := f.Const(4, 5)
	r := f.Reg(4, ppc.R4)
	a := f.Add(4, r, c, ppc.WriteCR0S)
	s := f.Emit(f.SetReg(4, ppc.R3, a))

	assert.Equal(t, Const{Size: 4, Val: 5}, f.At(c))
	assert.Equal(t, Arith{Op: Add, Size: 4, L: r, R: c, Flags: ppc.WriteCR0S}, f.At(a))
	assert.Equal(t, ppc.WriteCR0S, Flags(f.At(a)))
	assert.Equal(t, ppc.WriteNone, Flags(f.At(c)))

	assert.Nil(t, f.At(Nil))
	assert.Nil(t, f.At(Expr(len(f.Exprs))))

	assert.Equal(t, []Expr{s}, f.Code)
	assert.Equal(t, []uint64{0x100}, f.Addrs)
	assert.Equal(t, []Expr{s}, f.Stmts(0x100))
	assert.Empty(t, f.Stmts(0x104))
}

func TestFuncLabels(t *testing.T) {
	f := New("f", 0)

	l := f.AddLabelForAddress(0x10)
	assert.Equal(t, l, f.AddLabelForAddress(0x10))

	_, ok := f.LabelForAddress(0x20)
	assert.False(t, ok)

	assert.False(t, f.Marked(l))
	assert.Equal(t, -1, f.LabelPos(l))

	f.Emit(f.Nop())

	assert.True(t, f.MarkAddress(0x10))
	assert.False(t, f.MarkAddress(0x10))
	assert.False(t, f.MarkAddress(0x20))

	assert.True(t, f.Marked(l))
	assert.Equal(t, 1, f.LabelPos(l))
	assert.Equal(t, l, f.At(f.Code[1]))
	assert.Equal(t, uint64(0x10), f.CurAddr())

	l2 := f.NewLabel()
	assert.Equal(t, 2, f.Labels())
	assert.False(t, f.Marked(l2))
	assert.False(t, f.Marked(NoLabel))
}

func TestOps(t *testing.T) {
	assert.Equal(t, "add", Add.String())
	assert.Equal(t, "sx", SignExtend.String())
	assert.True(t, Not.Unary())
	assert.False(t, Sub.Unary())
	assert.Equal(t, "op?", Op(-1).String())
}
