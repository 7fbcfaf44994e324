package decode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/ppclift/lifter/ppc"
)

func word(w uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, w)
}

func decodeBE(t *testing.T, w uint32, addr uint64) *Inst {
	t.Helper()

	c, err := NewContext(BigEndian)
	require.NoError(t, err)

	in, err := c.Decode(word(w), addr)
	require.NoError(t, err, "word %08x", w)

	return in
}

func TestDecodeSimple(t *testing.T) {
	for _, tc := range []struct {
		word uint32
		id   ID
		str  string
		ops  []Operand
	}{
		{0x38600064, LI, "li r3,100", []Operand{RegOp(ppc.R3), ImmOp(100)}},
		{0x38640005, ADDI, "addi r3,r4,5", []Operand{RegOp(ppc.R3), RegOp(ppc.R4), ImmOp(5)}},
		{0x2809003c, CMPLWI, "cmplwi r9,60", []Operand{RegOp(ppc.R9), ImmOp(60)}},
		{0x2f830000, CMPWI, "cmpwi cr7,r3,0", []Operand{RegOp(ppc.CR7), RegOp(ppc.R3), ImmOp(0)}},
		{0x7c3f0b78, MR, "mr r31,r1", []Operand{RegOp(ppc.R31), RegOp(ppc.R1)}},
		{0x7c0802a6, MFLR, "mflr r0", []Operand{RegOp(ppc.R0)}},
		{0x7c0803a6, MTLR, "mtlr r0", []Operand{RegOp(ppc.R0)}},
		{0x5483103a, SLWI, "slwi r3,r4,2", []Operand{RegOp(ppc.R3), RegOp(ppc.R4), ImmOp(2)}},
		{0x80610008, LWZ, "lwz r3,8(r1)", []Operand{RegOp(ppc.R3), MemOp(ppc.R1, 8)}},
		{0x80600008, LWZ, "lwz r3,8(0)", []Operand{RegOp(ppc.R3), MemOp(ppc.NoReg, 8)}},
		{0x9421fff0, STWU, "stwu r1,-16(r1)", []Operand{RegOp(ppc.R1), MemOp(ppc.R1, -16)}},
		{0x7fe00008, TRAP, "trap", nil},
	} {
		in := decodeBE(t, tc.word, 0x1000)

		assert.Equal(t, tc.id, in.ID, "%08x", tc.word)
		assert.Equal(t, tc.str, in.String(), "%08x", tc.word)
		assert.Equal(t, tc.ops, in.Ops, "%08x", tc.word)
	}
}

func TestDecodeRecordForms(t *testing.T) {
	in := decodeBE(t, 0x7c642a15, 0)

	assert.Equal(t, ADD, in.ID)
	assert.Equal(t, "add.", in.Mnemonic)
	assert.True(t, in.UpdateCR0)
	assert.False(t, in.Overflow)
	assert.Contains(t, in.RegsWrite, ppc.CR0)

	in = decodeBE(t, 0x7c642e14, 0)

	assert.Equal(t, ADD, in.ID)
	assert.Equal(t, "addo", in.Mnemonic)
	assert.True(t, in.Overflow)
	assert.False(t, in.UpdateCR0)

	in = decodeBE(t, 0x7c642e15, 0)

	assert.Equal(t, ADD, in.ID)
	assert.Equal(t, "addo.", in.Mnemonic)
	assert.True(t, in.Overflow)
	assert.True(t, in.UpdateCR0)
}

func TestDecodeBranches(t *testing.T) {
	in := decodeBE(t, 0x4bfff000, 0x2000)

	assert.Equal(t, B, in.ID)
	assert.Equal(t, CondAlways, in.Cond)
	assert.Equal(t, "b 0x1000", in.String())
	assert.Equal(t, GroupJump|GroupRel, in.Groups&(GroupJump|GroupRel))

	tgt, ok := in.Target()
	assert.True(t, ok)
	assert.Equal(t, uint64(0x1000), tgt)

	in = decodeBE(t, 0x4bfffffc, 0) // b -4

	tgt, _ = in.Target()
	assert.Equal(t, uint64(0xfffffffc), tgt)

	in = decodeBE(t, 0x41820020, 0xfffffff0) // beq wraps

	tgt, _ = in.Target()
	assert.Equal(t, uint64(0x10), tgt)

	in = decodeBE(t, 0x41820020, 0x100)

	assert.Equal(t, B, in.ID)
	assert.Equal(t, CondEQ, in.Cond)
	assert.Equal(t, "beq 0x120", in.String())
	assert.Equal(t, 0, in.CRField())
	assert.Contains(t, in.RegsRead, ppc.CR0)

	in = decodeBE(t, 0x409e0008, 0x100)

	assert.Equal(t, CondNE, in.Cond)
	assert.Equal(t, 7, in.CRField())
	assert.Equal(t, "bne cr7,0x108", in.String())

	in = decodeBE(t, 0x4200fff8, 0x1000)

	assert.Equal(t, BDNZ, in.ID)
	assert.Equal(t, CTRNonZero, in.CTR)
	assert.Equal(t, CondAlways, in.Cond)
	assert.Equal(t, "bdnz 0xff8", in.String())
	assert.Contains(t, in.RegsRead, ppc.CTR)
	assert.Contains(t, in.RegsWrite, ppc.CTR)

	in = decodeBE(t, 0x4e800020, 0x100)

	assert.Equal(t, BLR, in.ID)
	assert.Equal(t, "blr", in.String())
	assert.Equal(t, GroupRet, in.Groups&GroupRet)
	assert.Contains(t, in.RegsRead, ppc.LR)

	in = decodeBE(t, 0x48000101, 0x100)

	assert.Equal(t, BL, in.ID)
	assert.Equal(t, "bl 0x200", in.String())
	assert.Equal(t, GroupCall, in.Groups&GroupCall)
	assert.Contains(t, in.RegsWrite, ppc.LR)

	in = decodeBE(t, 0x4e800420, 0x100)

	assert.Equal(t, BCTR, in.ID)
	assert.Contains(t, in.RegsRead, ppc.CTR)
}

func TestDecodeErrors(t *testing.T) {
	c, err := NewContext(BigEndian)
	require.NoError(t, err)

	_, err = c.Decode([]byte{0x38, 0x60}, 0x10)
	assert.ErrorIs(t, err, ErrShort)

	var derr *Error
	if assert.ErrorAs(t, err, &derr) {
		assert.Equal(t, uint64(0x10), derr.Addr)
	}

	_, err = c.Decode(word(0), 0x10)
	assert.ErrorIs(t, err, ErrUnknown)

	err = c.Close()
	assert.NoError(t, err)

	_, err = c.Decode(word(0x38600064), 0)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = NewContext(numModes)
	assert.ErrorIs(t, err, ErrMode)
}

func TestDecodeLittleEndian(t *testing.T) {
	c, err := NewContext(LittleEndian)
	require.NoError(t, err)

	in, err := c.Decode([]byte{0x64, 0x00, 0x60, 0x38}, 0)
	require.NoError(t, err)

	assert.Equal(t, LI, in.ID)
	assert.Equal(t, uint32(0x38600064), in.Word)
	assert.Equal(t, "li r3,100", in.String())
}

func TestDecodePairedSingles(t *testing.T) {
	cs, err := Open()
	require.NoError(t, err)

	defer cs.Close()

	ps, err := cs.Get(PairedSingles)
	require.NoError(t, err)

	in, err := ps.Decode(word(0x1022182a), 0)
	require.NoError(t, err)

	assert.Equal(t, PS_ADD, in.ID)
	assert.Equal(t, "ps_add f1,f2,f3", in.String())
	assert.Equal(t, GroupPairedSingle|GroupFloat, in.Groups)

	in, err = ps.Decode(word(0xe0230008), 0)
	require.NoError(t, err)

	assert.Equal(t, PSQ_L, in.ID)
	assert.Equal(t, []Operand{RegOp(ppc.F1), MemOp(ppc.R3, 8), ImmOp(0), ImmOp(0)}, in.Ops)

	in, err = ps.Decode(word(0x38600064), 0)
	require.NoError(t, err)
	assert.Equal(t, LI, in.ID)

	be, err := cs.Get(BigEndian)
	require.NoError(t, err)

	in, err = be.Decode(word(0xe0230008), 0)
	if err == nil {
		assert.NotEqual(t, PSQ_L, in.ID)
	}
}

func TestModeNames(t *testing.T) {
	for m := Mode(0); m < numModes; m++ {
		p, err := ParseMode(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, p)
	}

	_, err := ParseMode("mips")
	assert.Error(t, err)
}

func TestIDByName(t *testing.T) {
	id, ok := IDByName("bdnz")
	assert.True(t, ok)
	assert.Equal(t, BDNZ, id)

	id, ok = IDByName("addi")
	assert.True(t, ok)
	assert.Equal(t, ADDI, id)

	_, ok = IDByName("nosuchop")
	assert.False(t, ok)
}
