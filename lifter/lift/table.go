package lift

import (
	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/ppc"
)

// compares take an optional leading condition register field.
var compares = map[decode.ID]bool{
	decode.CMPW: true, decode.CMPLW: true, decode.CMPWI: true, decode.CMPLWI: true,
	decode.CMPD: true, decode.CMPLD: true, decode.CMPDI: true, decode.CMPLDI: true,
}

var handlers = map[decode.ID]handler{
	decode.ADD:    binop(il.Add, false),
	decode.ADDC:   binop(il.Add, true),
	decode.ADDE:   addExt(func(s *state) il.Expr { return s.reg(2) }),
	decode.ADDZE:  addExt(func(s *state) il.Expr { return s.f.Const(word, 0) }),
	decode.ADDME:  addExt(func(s *state) il.Expr { return s.f.Const(word, -1) }),
	decode.ADDI:   addi(0),
	decode.ADDIS:  addi(16),
	decode.ADDIC:  binopImm(il.Add, 0, true),
	decode.LI:     li(0),
	decode.LIS:    li(16),
	decode.SUBF:   subf(false),
	decode.SUBFC:  subf(true),
	decode.SUBFE:  subfe,
	decode.SUBFIC: subfic,
	decode.NEG:    neg,
	decode.MULLW:  binop(il.Mul, false),
	decode.MULLI:  binopImm(il.Mul, 0, false),
	decode.MULHW:  binop(il.MulHiS, false),
	decode.MULHWU: binop(il.MulHiU, false),
	decode.DIVW:   binop(il.DivS, false),
	decode.DIVWU:  binop(il.DivU, false),

	decode.AND:     binop(il.And, false),
	decode.ANDC:    binopNot(il.And),
	decode.ANDICC:  binopImm(il.And, 0, false),
	decode.ANDISCC: binopImm(il.And, 16, false),
	decode.OR:      binop(il.Or, false),
	decode.ORC:     binopNot(il.Or),
	decode.ORI:     binopImm(il.Or, 0, false),
	decode.ORIS:    binopImm(il.Or, 16, false),
	decode.XOR:     binop(il.Xor, false),
	decode.XORI:    binopImm(il.Xor, 0, false),
	decode.XORIS:   binopImm(il.Xor, 16, false),
	decode.NAND:    notBinop(il.And),
	decode.NOR:     notBinop(il.Or),
	decode.EQV:     notBinop(il.Xor),
	decode.EXTSB:   extend(1),
	decode.EXTSH:   extend(2),
	decode.MR:      mr,
	decode.NOP:     nop,

	decode.SLW:    binop(il.Lsl, false),
	decode.SRW:    binop(il.Lsr, false),
	decode.SRAW:   binop(il.Asr, true),
	decode.SRAWI:  shiftImm(il.Asr, true),
	decode.SLWI:   shiftImm(il.Lsl, false),
	decode.SRWI:   shiftImm(il.Lsr, false),
	decode.ROTLWI: shiftImm(il.Rol, false),
	decode.RLWINM: rlwinm,

	decode.CMPW:   compare(true, 4),
	decode.CMPWI:  compare(true, 4),
	decode.CMPLW:  compare(false, 4),
	decode.CMPLWI: compare(false, 4),
	decode.CMPD:   compare(true, 8),
	decode.CMPDI:  compare(true, 8),
	decode.CMPLD:  compare(false, 8),
	decode.CMPLDI: compare(false, 8),

	decode.LBZ:   load(1, 0),
	decode.LBZU:  load(1, memUpdate),
	decode.LHZ:   load(2, 0),
	decode.LHZU:  load(2, memUpdate),
	decode.LHA:   load(2, memSigned),
	decode.LHAU:  load(2, memSigned|memUpdate),
	decode.LWZ:   load(4, 0),
	decode.LWZU:  load(4, memUpdate),
	decode.LBZX:  load(1, memIndexed),
	decode.LHZX:  load(2, memIndexed),
	decode.LHAX:  load(2, memSigned|memIndexed),
	decode.LWZX:  load(4, memIndexed),
	decode.LWZUX: load(4, memIndexed|memUpdate),
	decode.LFD:   load(8, 0),
	decode.LFDU:  load(8, memUpdate),

	decode.STB:   store(1, 0),
	decode.STBU:  store(1, memUpdate),
	decode.STH:   store(2, 0),
	decode.STHU:  store(2, memUpdate),
	decode.STW:   store(4, 0),
	decode.STWU:  store(4, memUpdate),
	decode.STBX:  store(1, memIndexed),
	decode.STHX:  store(2, memIndexed),
	decode.STWX:  store(4, memIndexed),
	decode.STWUX: store(4, memIndexed|memUpdate),
	decode.STFD:  store(8, 0),
	decode.STFDU: store(8, memUpdate),

	decode.LMW:  lmw,
	decode.STMW: stmw,

	decode.MFLR:  moveFrom(ppc.LR),
	decode.MTLR:  moveTo(ppc.LR),
	decode.MFCTR: moveFrom(ppc.CTR),
	decode.MTCTR: moveTo(ppc.CTR),

	decode.B:       jumpTo,
	decode.BA:      jumpTo,
	decode.BDNZ:    jumpTo,
	decode.BDZ:     jumpTo,
	decode.BL:      callTo,
	decode.BLA:     callTo,
	decode.BDNZL:   callTo,
	decode.BDZL:    callTo,
	decode.BLR:     retLR,
	decode.BDNZLR:  retLR,
	decode.BDZLR:   retLR,
	decode.BLRL:    callReg(ppc.LR),
	decode.BDNZLRL: callReg(ppc.LR),
	decode.BDZLRL:  callReg(ppc.LR),
	decode.BCTR:    jumpCTR,
	decode.BCTRL:   callReg(ppc.CTR),

	decode.TRAP:  trap,
	decode.SC:    syscall,
	decode.ISYNC: nop,
	decode.SYNC:  nop,
	decode.EIEIO: nop,
}
