package lift

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/format"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

func decodeWord(t *testing.T, w uint32, addr uint64) *decode.Inst {
	t.Helper()

	c, err := decode.NewContext(decode.BigEndian)
	require.NoError(t, err)

	in, err := c.Decode(binary.BigEndian.AppendUint32(nil, w), addr)
	require.NoError(t, err, "word %08x", w)

	return in
}

func liftWord(t *testing.T, f *il.Func, w uint32, addr uint64) (string, bool) {
	t.Helper()

	in := decodeWord(t, w, addr)

	start := len(f.Code)
	falls := Lift(in, f)

	return format.Stmts(f, f.Code[start:]), falls
}

func TestLiftStraight(t *testing.T) {
	for _, tc := range []struct {
		word uint32
		ir   string
	}{
		{0x38600064, "set_reg.d(r3,const.d(0x64))"},                                       // li r3,100
		{0x38640005, "set_reg.d(r3,add.d(reg.d(r4),const.d(0x5)))"},                      // addi r3,r4,5
		{0x3c60ffff, "set_reg.d(r3,const.d(-0x10000))"},                                  // lis r3,-1
		{0x7c642a14, "set_reg.d(r3,add.d(reg.d(r4),reg.d(r5)))"},                         // add r3,r4,r5
		{0x7c642e14, "set_reg.d(r3,add.d{xer_ov_so}(reg.d(r4),reg.d(r5)))"},              // addo r3,r4,r5
		{0x7c642814, "set_reg.d(r3,add.d{xer_ca}(reg.d(r4),reg.d(r5)))"},                 // addc r3,r4,r5
		{0x7c642850, "set_reg.d(r3,sub.d(reg.d(r5),reg.d(r4)))"},                         // subf r3,r4,r5
		{0x7c3f0b78, "set_reg.d(r31,reg.d(r1))"},                                         // mr r31,r1
		{0x5483103a, "set_reg.d(r3,lsl.d(reg.d(r4),const.d(0x2)))"},                      // slwi r3,r4,2
		{0x5483063e, "set_reg.d(r3,and.d(reg.d(r4),const.d(0xff)))"},                     // rlwinm r3,r4,0,24,31
		{0x7c0802a6, "set_reg.d(r0,reg.d(lr))"},                                          // mflr r0
		{0x7c0803a6, "set_reg.d(lr,reg.d(r0))"},                                          // mtlr r0
		{0x80610008, "set_reg.d(r3,load.d(add.d(reg.d(r1),const.d(0x8))))"},              // lwz r3,8(r1)
		{0x88640000, "set_reg.d(r3,zx.d(load.b(add.d(reg.d(r4),const.d(0x0)))))"},        // lbz r3,0(r4)
		{0x90610008, "store.d(add.d(reg.d(r1),const.d(0x8)),reg.d(r3))"},                 // stw r3,8(r1)
		{0x98640001, "store.b(add.d(reg.d(r4),const.d(0x1)),low.b(reg.d(r3)))"},          // stb r3,1(r4)
		{0x7c64282e, "set_reg.d(r3,load.d(add.d(reg.d(r4),reg.d(r5))))"},                 // lwzx r3,r4,r5
		{0x7c60282e, "set_reg.d(r3,load.d(add.d(const.d(0x0),reg.d(r5))))"},              // lwzx r3,0,r5
		{0x60000000, "nop"},                                                              // nop
		{0x44000002, "syscall"},                                                          // sc
		{0x7c600026, "unimplemented"},                                                    // mfcr r3
		{0x7c832038, "set_reg.d(r3,and.d(reg.d(r4),reg.d(r4)))"},                         // and r3,r4,r4
		{0x7c8318f8, "set_reg.d(r3,not.d(or.d(reg.d(r4),reg.d(r3))))"},                   // nor r3,r4,r3
		{0x7c830774, "set_reg.d(r3,sx.d(low.b(reg.d(r4))))"},                             // extsb r3,r4
		{0x7c641e70, "set_reg.d(r4,asr.d{xer_ca}(reg.d(r3),const.d(0x3)))"},              // srawi r4,r3,3
		{0x9421fff0, "store.d(add.d(reg.d(r1),const.d(-0x10)),reg.d(r1)); set_reg.d(r1,add.d(reg.d(r1),const.d(-0x10)))"}, // stwu r1,-16(r1)
	} {
		f := il.New("f", 0x1000)

		ir, falls := liftWord(t, f, tc.word, 0x1000)

		assert.Equal(t, tc.ir, ir, "%08x", tc.word)
		assert.True(t, falls, "%08x", tc.word)
	}
}

func TestLiftRecordForm(t *testing.T) {
	f := il.New("f", 0)

	ir, falls := liftWord(t, f, 0x7c642a15, 0) // add. r3,r4,r5

	assert.True(t, falls)
	assert.Equal(t, "set_reg.d(r3,add.d(reg.d(r4),reg.d(r5))); sub.d{cr0_signed}(reg.d(r3),const.d(0x0))", ir)
}

func TestLiftCompare(t *testing.T) {
	f := il.New("f", 0)

	ir, falls := liftWord(t, f, 0x2809003c, 0) // cmplwi r9,60

	assert.True(t, falls)
	assert.Equal(t, "sub.d{cr0_unsigned}(zx.d(reg.d(r9)),zx.d(const.d(0x3c)))", ir)

	ir, _ = liftWord(t, f, 0x2f830000, 4) // cmpwi cr7,r3,0

	assert.Equal(t, "sub.d{cr7_signed}(sx.d(reg.d(r3)),sx.d(const.d(0x0)))", ir)

	ir, _ = liftWord(t, f, 0x7c232000, 8) // cmpd r3,r4

	assert.Equal(t, "sub.q{cr0_signed}(sx.q(reg.d(r3)),sx.q(reg.d(r4)))", ir)
}

func TestLiftLoadMultiple(t *testing.T) {
	f := il.New("f", 0)

	ir, falls := liftWord(t, f, 0xba810008, 0) // lmw r20,8(r1)

	assert.True(t, falls)

	stmts := strings.Split(ir, "; ")
	require.Len(t, stmts, 12)

	assert.Equal(t, "set_reg.d(r20,load.d(add.d(reg.d(r1),const.d(0x8))))", stmts[0])
	assert.Equal(t, "set_reg.d(r31,load.d(add.d(reg.d(r1),const.d(0x34))))", stmts[11])

	ir, _ = liftWord(t, f, 0xbfc1fff8, 4) // stmw r30,-8(r1)

	assert.Equal(t, "store.d(add.d(reg.d(r1),const.d(-0x8)),reg.d(r30)); store.d(add.d(reg.d(r1),const.d(-0x4)),reg.d(r31))", ir)
}

func TestLiftUnconditionalBranch(t *testing.T) {
	f := il.New("f", 0x2000)

	ir, falls := liftWord(t, f, 0x4bfff000, 0x2000) // b 0x1000

	assert.False(t, falls)
	assert.Equal(t, "jump(constptr.d(0x1000))", ir)

	f = il.New("f", 0x1000)
	f.AddLabelForAddress(0x1000)

	ir, falls = liftWord(t, f, 0x4bfff000, 0x2000)

	assert.False(t, falls)
	assert.Equal(t, "goto(L0)", ir)

	f = il.New("f", 0)

	ir, _ = liftWord(t, f, 0x4bfffffc, 0) // b -4

	assert.Equal(t, "jump(constptr.d(0xfffffffc))", ir)
}

func TestLiftConditionalBranch(t *testing.T) {
	f := il.New("f", 0x100)

	ir, falls := liftWord(t, f, 0x41820020, 0x100) // beq 0x120

	assert.False(t, falls)
	assert.Equal(t, "if(flag_cond(e,cr0_signed),L0,L1); L0:; jump(constptr.d(0x120)); L1:; jump(constptr.d(0x104))", ir)

	f = il.New("f", 0x100)
	tl := f.AddLabelForAddress(0x108)
	fl := f.AddLabelForAddress(0x104)

	ir, falls = liftWord(t, f, 0x409e0008, 0x100) // bne cr7,0x108

	assert.False(t, falls)
	assert.Equal(t, "if(flag_cond(ne,cr7_signed),L0,L1)", ir)
	assert.Equal(t, il.Label(0), tl)
	assert.Equal(t, il.Label(1), fl)
	assert.Equal(t, 2, f.Labels())

	f = il.New("f", 0x100)

	ir, _ = liftWord(t, f, 0x41830010, 0x100) // bso 0x110

	assert.True(t, strings.HasPrefix(ir, "if(flag(so),"), ir)
}

func TestLiftCounterBranch(t *testing.T) {
	f := il.New("f", 0x1000)

	ir, falls := liftWord(t, f, 0x4200fff8, 0x1000) // bdnz 0xff8

	assert.False(t, falls)
	assert.Equal(t, "set_reg.d(ctr,sub.d(reg.d(ctr),const.d(0x1))); "+
		"if(cmp_ne.d(reg.d(ctr),const.d(0x0)),L0,L1); L0:; jump(constptr.d(0xff8)); L1:; jump(constptr.d(0x1004))", ir)

	f = il.New("f", 0x1000)

	ir, _ = liftWord(t, f, 0x4102fff8, 0x1000) // bdnzt eq,0xff8

	assert.Contains(t, ir, "if(and(cmp_ne.d(reg.d(ctr),const.d(0x0)),flag_cond(e,cr0_signed)),L0,L1)")
}

func TestLiftReturnAndCall(t *testing.T) {
	f := il.New("f", 0x100)

	ir, falls := liftWord(t, f, 0x4e800020, 0x100) // blr

	assert.False(t, falls)
	assert.Equal(t, "ret(reg.d(lr))", ir)

	ir, falls = liftWord(t, f, 0x4d820020, 0x104) // beqlr

	assert.True(t, falls)
	assert.Equal(t, "if(flag_cond(e,cr0_signed),L0,L1); L0:; ret(reg.d(lr)); L1:", ir)

	ir, falls = liftWord(t, f, 0x48000101, 0x100) // bl 0x200

	assert.True(t, falls)
	assert.Equal(t, "call(constptr.d(0x200))", ir)

	ir, falls = liftWord(t, f, 0x4e800421, 0x108) // bctrl

	assert.True(t, falls)
	assert.Equal(t, "call(reg.d(ctr))", ir)

	ir, falls = liftWord(t, f, 0x4e800420, 0x10c) // bctr

	assert.False(t, falls)
	assert.Equal(t, "jump(reg.d(ctr))", ir)

	ir, falls = liftWord(t, f, 0x7fe00008, 0x110) // trap

	assert.False(t, falls)
	assert.Equal(t, "trap", ir)
}

func TestLiftConditionalIndirect(t *testing.T) {
	f := il.New("f", 0x100)

	ir, falls := liftWord(t, f, 0x4c800420, 0x100) // bgectr

	assert.True(t, falls)
	assert.Equal(t, "if(flag_cond(sge,cr0_signed),L0,L1); L0:; jump(reg.d(ctr)); L1:", ir)

	f = il.New("f", 0x100)

	ir, falls = liftWord(t, f, 0x4e000020, 0x100) // bdnzlr

	assert.True(t, falls)
	assert.Equal(t, "set_reg.d(ctr,sub.d(reg.d(ctr),const.d(0x1))); "+
		"if(cmp_ne.d(reg.d(ctr),const.d(0x0)),L0,L1); L0:; ret(reg.d(lr)); L1:", ir)
}

func TestLiftConditionalCall(t *testing.T) {
	f := il.New("f", 0x100)

	ir, falls := liftWord(t, f, 0x41820101, 0x100) // beql 0x200

	assert.True(t, falls)
	assert.Equal(t, "if(flag_cond(e,cr0_signed),L0,L1); L0:; call(constptr.d(0x200)); goto(L2); L1:; set_reg.d(lr,constptr.d(0x104)); L2:", ir)
}

// Conditional direct branches are excluded: they jump to the next address explicitly.
func TestLiftFallsThroughMatchesInfo(t *testing.T) {
	for _, w := range []uint32{
		0x38600064, 0x4bfff000, 0x4e800020, 0x4d820020,
		0x48000101, 0x4e800420, 0x4e800421, 0x7fe00008, 0x44000002,
		0x4e800021, 0x4d820021, 0x4c800420, 0x4e000020,
	} {
		f := il.New("f", 0x2000)
		in := decodeWord(t, w, 0x2000)

		assert.Equal(t, GetInfo(in).FallsThrough(), Lift(in, f), "%08x %v", w, in)
	}
}

func TestGetInfo(t *testing.T) {
	i := GetInfo(decodeWord(t, 0x4bfff000, 0x2000))
	assert.Equal(t, Info{Length: 4, Edges: []Edge{{Kind: UnconditionalBranch, Target: 0x1000}}}, i)

	i = GetInfo(decodeWord(t, 0x41820020, 0x100))
	assert.Equal(t, []Edge{{Kind: FalseBranch, Target: 0x104}, {Kind: TrueBranch, Target: 0x120}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x48000101, 0x100))
	assert.Equal(t, []Edge{{Kind: CallDestination, Target: 0x200}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x4e800020, 0x100))
	assert.Equal(t, []Edge{{Kind: FunctionReturn}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x4d820020, 0x100))
	assert.Equal(t, []Edge{{Kind: FalseBranch, Target: 0x104}, {Kind: FunctionReturn}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x4e800420, 0x100))
	assert.Equal(t, []Edge{{Kind: UnresolvedBranch}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x44000002, 0x100))
	assert.Equal(t, []Edge{{Kind: SystemCall}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x4e800421, 0x100)) // bctrl
	assert.Equal(t, []Edge{{Kind: IndirectCall}}, i.Edges)
	assert.True(t, i.FallsThrough())

	i = GetInfo(decodeWord(t, 0x4e800021, 0x100)) // blrl
	assert.Equal(t, []Edge{{Kind: IndirectCall}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x4d820021, 0x100)) // beqlrl
	assert.Equal(t, []Edge{{Kind: FalseBranch, Target: 0x104}, {Kind: IndirectCall}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x4c800420, 0x100)) // bgectr
	assert.Equal(t, []Edge{{Kind: FalseBranch, Target: 0x104}, {Kind: UnresolvedBranch}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x4bfffffc, 0)) // b -4
	assert.Equal(t, []Edge{{Kind: UnconditionalBranch, Target: 0xfffffffc}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x41820020, 0xfffffff0)) // beq wraps to 0x10
	assert.Equal(t, []Edge{{Kind: FalseBranch, Target: 0xfffffff4}, {Kind: TrueBranch, Target: 0x10}}, i.Edges)

	i = GetInfo(decodeWord(t, 0x38600064, 0x100))
	assert.Equal(t, 4, i.Length)
	assert.Empty(t, i.Edges)
}

func TestResolveFlagWrite(t *testing.T) {
	f := il.New("f", 0)

	liftWord(t, f, 0x2809003c, 0) // cmplwi r9,60

	op := f.Code[0]

	assert.Equal(t, "cmp_ult.d(zx.d(reg.d(r9)),zx.d(const.d(0x3c)))", format.String(f, ResolveFlagWrite(f, op, 4, ppc.WriteCR0U, ppc.LT)))
	assert.Equal(t, "cmp_ugt.d(zx.d(reg.d(r9)),zx.d(const.d(0x3c)))", format.String(f, ResolveFlagWrite(f, op, 4, ppc.WriteCR0U, ppc.GT)))
	assert.Equal(t, "cmp_e.d(zx.d(reg.d(r9)),zx.d(const.d(0x3c)))", format.String(f, ResolveFlagWrite(f, op, 4, ppc.WriteCR0U, ppc.EQ)))
	assert.Equal(t, "flag(xer_so)", format.String(f, ResolveFlagWrite(f, op, 4, ppc.WriteCR0U, ppc.SO)))

	assert.Equal(t, "cmp_slt.d(zx.d(reg.d(r9)),zx.d(const.d(0x3c)))", format.String(f, ResolveFlagWrite(f, op, 4, ppc.WriteCR0S, ppc.LT)))

	x := f.Add(4, f.Reg(4, ppc.R3), f.Reg(4, ppc.R4), ppc.WriteXERCA)

	assert.Equal(t, "cmp_ult.d(add.d{xer_ca}(reg.d(r3),reg.d(r4)),reg.d(r3))", format.String(f, ResolveFlagWrite(f, x, 4, ppc.WriteXERCA, ppc.XerCA)))
	assert.Equal(t, "cmp_e.d(add.d{xer_ca}(reg.d(r3),reg.d(r4)),const.d(0x0))", format.String(f, DefaultFlagWrite(f, x, 4, ppc.EQ, ppc.RoleZero)))
	assert.Equal(t, "undefined", format.String(f, DefaultFlagWrite(f, x, 4, ppc.GT, ppc.RoleSpecial)))
}

func TestFlagWrites(t *testing.T) {
	f := il.New("f", 0)

	liftWord(t, f, 0x7c642e14, 0) // addo r3,r4,r5

	fv := FlagWrites(f, f.Code[0])
	require.Len(t, fv, 2)

	assert.Equal(t, ppc.XerSO, fv[0].Flag)
	assert.Equal(t, ppc.XerOV, fv[1].Flag)
	assert.Equal(t, ppc.WriteXEROVSO, fv[0].Write)

	assert.True(t, strings.HasPrefix(format.String(f, fv[0].Value), "or(flag(xer_so),cmp_slt.d("), format.String(f, fv[0].Value))

	fv = FlagWrites(f, f.Code[0])
	assert.Len(t, fv, 2)

	liftWord(t, f, 0x38600064, 4) // li r3,100

	assert.Empty(t, FlagWrites(f, f.Code[len(f.Code)-1]))
}

func TestRotMask(t *testing.T) {
	assert.Equal(t, int64(0xff), rotMask(24, 31))
	assert.Equal(t, int64(0xffffffff), rotMask(0, 31))
	assert.Equal(t, int64(0xff0000ff), rotMask(24, 7))
	assert.Equal(t, int64(0x80000000), rotMask(0, 0))
}
