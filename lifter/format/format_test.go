package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

func TestExpr(t *testing.T) {
	f := il.New("f", 0)

	x := f.SetReg(4, ppc.R3, f.Const(4, 100))
	assert.Equal(t, "set_reg.d(r3,const.d(0x64))", String(f, x))

	x = f.Sub(4, f.ZeroExtend(4, f.Reg(4, ppc.R9)), f.ZeroExtend(4, f.Const(4, 0x3c)), ppc.WriteCR0U)
	assert.Equal(t, "sub.d{cr0_unsigned}(zx.d(reg.d(r9)),zx.d(const.d(0x3c)))", String(f, x))

	x = f.Store(1, f.Add(4, f.Reg(4, ppc.R1), f.Const(4, -8), ppc.WriteNone), f.LowPart(1, f.Reg(4, ppc.R0)))
	assert.Equal(t, "store.b(add.d(reg.d(r1),const.d(-0x8)),low.b(reg.d(r0)))", String(f, x))

	x = f.If(f.FlagCond(ppc.CondE, ppc.ClassCR7S), 1, 2)
	assert.Equal(t, "if(flag_cond(e,cr7_signed),L1,L2)", String(f, x))

	x = f.AddCarry(4, f.Reg(4, ppc.R3), f.Const(4, 0), f.Flag(ppc.XerCA), ppc.WriteXERCA)
	assert.Equal(t, "adc.d{xer_ca}(reg.d(r3),const.d(0x0),flag(xer_ca))", String(f, x))

	x = f.Ret(f.Reg(4, ppc.LR))
	assert.Equal(t, "ret(reg.d(lr))", String(f, x))

	assert.Equal(t, "<bad expr 1000>", String(f, 1000))
}

func TestFunc(t *testing.T) {
	f := il.New("loop", 0x100)

	l := f.AddLabelForAddress(0x100)

	f.MarkAddress(0x100)
	f.Emit(f.SetReg(4, ppc.R3, f.Const(4, 1)))
	f.SetAddr(0x104)
	f.Emit(f.Goto(l))

	assert.Equal(t, "func loop 0x100\nL0:\n\t0x00000100  set_reg.d(r3,const.d(0x1))\n\t0x00000104  goto(L0)\n", string(Func(nil, f)))
	assert.Equal(t, "set_reg.d(r3,const.d(0x1)); goto(L0)", Stmts(f, f.Code[1:]))
}
