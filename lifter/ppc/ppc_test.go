package ppc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsWritten(t *testing.T) {
	assert.Equal(t, []Flag{LT, GT, EQ, SO}, FlagsWritten(WriteCR0S))
	assert.Equal(t, []Flag{CR7LT, CR7GT, CR7EQ, CR7SO}, FlagsWritten(WriteCR7U))
	assert.Equal(t, []Flag{XerSO, XerOV, XerCA}, FlagsWritten(WriteXER))
	assert.Equal(t, []Flag{XerCA}, FlagsWritten(WriteXERCA))
	assert.Equal(t, []Flag{XerSO, XerOV}, FlagsWritten(WriteXEROVSO))

	assert.Empty(t, FlagsWritten(WriteNone))
	assert.Empty(t, FlagsWritten(FlagWrite(100)))

	// result is a copy
	f := FlagsWritten(WriteCR0S)
	f[0] = XerCA

	assert.Equal(t, LT, FlagsWritten(WriteCR0S)[0])

	for _, w := range AllFlagWrites() {
		assert.Equal(t, FlagsWritten(w), FlagsWritten(w), "%v", w)
		assert.NotEmpty(t, FlagsWritten(w), "%v", w)
	}
}

func TestFlagsRequired(t *testing.T) {
	assert.Equal(t, []Flag{EQ}, FlagsRequired(CondE, ClassNone))
	assert.Equal(t, []Flag{EQ}, FlagsRequired(CondNE, ClassCR0S))
	assert.Equal(t, []Flag{LT}, FlagsRequired(CondSLT, ClassCR0S))
	assert.Equal(t, []Flag{LT}, FlagsRequired(CondUGE, ClassCR0U))
	assert.Equal(t, []Flag{GT}, FlagsRequired(CondSGT, ClassNone))
	assert.Equal(t, []Flag{GT}, FlagsRequired(CondULE, ClassCR0U))
	assert.Equal(t, []Flag{XerOV}, FlagsRequired(CondO, ClassNone))
	assert.Equal(t, []Flag{XerOV}, FlagsRequired(CondNO, ClassCR3S))

	assert.Equal(t, []Flag{CR7EQ}, FlagsRequired(CondE, ClassCR7S))
	assert.Equal(t, []Flag{CR2GT}, FlagsRequired(CondSLE, ClassCR2S))

	assert.Empty(t, FlagsRequired(CondNEG, ClassCR0S))
	assert.Empty(t, FlagsRequired(CondPOS, ClassCR0S))
	assert.Empty(t, FlagsRequired(Cond(-1), ClassCR0S))
}

func TestFlagRole(t *testing.T) {
	assert.Equal(t, RoleNegativeSign, FlagRole(LT, ClassCR0S))
	assert.Equal(t, RoleSpecial, FlagRole(LT, ClassCR0U))
	assert.Equal(t, RoleSpecial, FlagRole(LT, ClassNone))
	assert.Equal(t, RoleNegativeSign, FlagRole(CR5LT, ClassCR5S))
	assert.Equal(t, RoleZero, FlagRole(EQ, ClassCR0U))
	assert.Equal(t, RoleZero, FlagRole(CR6EQ, ClassNone))
	assert.Equal(t, RoleSpecial, FlagRole(GT, ClassCR0S))
	assert.Equal(t, RoleSpecial, FlagRole(SO, ClassCR0S))
	assert.Equal(t, RoleOverflow, FlagRole(XerOV, ClassNone))
	assert.Equal(t, RoleCarry, FlagRole(XerCA, ClassNone))
	assert.Equal(t, RoleSpecial, FlagRole(XerSO, ClassNone))
}

func TestFlagIDs(t *testing.T) {
	assert.Equal(t, 35, NumFlags)
	assert.Equal(t, Flag(32), XerSO)
	assert.Equal(t, Flag(33), XerOV)
	assert.Equal(t, Flag(34), XerCA)

	assert.Equal(t, FlagWrite(17), WriteXER)
	assert.Equal(t, FlagWrite(19), WriteXEROVSO)

	assert.Equal(t, CR3EQ, CRFlag(3, EQ))
	assert.Equal(t, 3, CR3EQ.Field())
	assert.Equal(t, EQ, CR3EQ.Bit())
	assert.Equal(t, -1, XerCA.Field())

	assert.Equal(t, WriteCR2U, CRWrite(2, false))
	assert.Equal(t, ClassCR2S, CRClass(2, true))
	assert.Equal(t, 2, ClassCR2U.Field())
	assert.False(t, ClassCR2U.Signed())
	assert.True(t, ClassCR2S.Signed())

	assert.Equal(t, "cr0_signed", WriteCR0S.String())
	assert.Equal(t, "cr1_eq", CR1EQ.String())
	assert.Equal(t, "xer_ov_so", WriteXEROVSO.String())

	assert.Len(t, AllFlags(), NumFlags)
	assert.Len(t, AllFlagClasses(), 16)
}

func TestCondInvert(t *testing.T) {
	for c := Cond(0); int(c) < numConds; c++ {
		assert.Equal(t, c, c.Invert().Invert(), "%v", c)
		assert.NotEqual(t, c, c.Invert(), "%v", c)
	}
}

func TestRegisters(t *testing.T) {
	for _, r := range AllRegisters() {
		info := r.Info()

		assert.NotZero(t, info.Size, "%v", r)
		assert.Equal(t, r, info.Full, "%v", r)
		assert.NotEmpty(t, r.String(), "%d", int(r))
	}

	assert.Equal(t, RegInfo{}, NoReg.Info())
	assert.Equal(t, RegInfo{}, Reg(NumRegs).Info())

	assert.Equal(t, "r3", R3.String())
	assert.Equal(t, "f13", F13.String())
	assert.Equal(t, "cr7", CR7.String())
	assert.Equal(t, "vs63", VS63.String())
	assert.Equal(t, "vrsave", VRSAVE.String())
	assert.Equal(t, 16, V31.Size())

	assert.Equal(t, R1, StackPointer)
	assert.Equal(t, LR, LinkRegister)
	assert.Equal(t, R5, GPR(5))
	assert.Equal(t, CR2, CRField(2))
}

func TestCallingConventions(t *testing.T) {
	assert.Equal(t, []Reg{R3, R4, R5, R6, R7, R8, R9, R10}, SVR4.IntArgs)
	assert.Len(t, SVR4.FloatArgs, 13)
	assert.Len(t, SVR4.CalleeSaved, 19)
	assert.Equal(t, R13, SVR4.CalleeSaved[0])
	assert.Equal(t, R3, SVR4.IntReturn)
	assert.Equal(t, F1, SVR4.FloatReturn)

	assert.Equal(t, R0, LinuxSyscall.IntArgs[0])
	assert.Equal(t, []Reg{R3}, LinuxSyscall.CalleeSaved)

	assert.Equal(t, "R_PPC_JMP_SLOT", RelocJumpSlot.String())
	assert.Equal(t, Reloc(19), RelocCopy)
}
