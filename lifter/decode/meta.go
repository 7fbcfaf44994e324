package decode

import (
	"strings"

	"github.com/slowlang/ppclift/lifter/ppc"
)

var privileged = map[ID]bool{}

var carryReaders = map[ID]bool{
	ADDE:  true,
	ADDZE: true,
	ADDME: true,
	SUBFE: true,
}

var carryWriters = map[ID]bool{
	ADDC:   true,
	ADDE:   true,
	ADDIC:  true,
	ADDZE:  true,
	ADDME:  true,
	SUBFC:  true,
	SUBFE:  true,
	SUBFIC: true,
	SRAW:   true,
	SRAWI:  true,
}

func init() {
	for _, n := range []string{"mtmsr", "mtmsrd", "mfmsr", "rfid", "hrfid", "tlbie", "tlbsync", "slbie", "mtsrin", "mfsrin"} {
		if id, ok := IDByName(n); ok {
			privileged[id] = true
		}
	}
}

// implicitRegs lists registers an instruction uses without naming them.
func implicitRegs(in *Inst) (read, write []ppc.Reg) {
	crf := ppc.CRField(in.CRField())

	if in.Cond != CondAlways {
		read = append(read, crf)
	}

	if in.CTR != CTRNone {
		read = append(read, ppc.CTR)
		write = append(write, ppc.CTR)
	}

	switch in.ID {
	case BL, BLA, BDNZL, BDZL:
		write = append(write, ppc.LR)
	case BLR, BDNZLR, BDZLR:
		read = append(read, ppc.LR)
	case BLRL, BDNZLRL, BDZLRL:
		read = append(read, ppc.LR)
		write = append(write, ppc.LR)
	case BCTR:
		read = append(read, ppc.CTR)
	case BCTRL:
		read = append(read, ppc.CTR)
		write = append(write, ppc.LR)
	case MFLR:
		read = append(read, ppc.LR)
	case MTLR:
		write = append(write, ppc.LR)
	case MFCTR:
		read = append(read, ppc.CTR)
	case MTCTR:
		write = append(write, ppc.CTR)
	case CMPW, CMPLW, CMPWI, CMPLWI, CMPD, CMPLD, CMPDI, CMPLDI:
		write = append(write, crf)
	}

	if carryReaders[in.ID] {
		read = append(read, ppc.Carry)
	}

	if carryWriters[in.ID] {
		write = append(write, ppc.Carry)
	}

	if in.UpdateCR0 {
		write = append(write, ppc.CR0)
	}

	if in.ID.PairedSingle() && strings.HasSuffix(in.Mnemonic, ".") {
		write = append(write, ppc.CR1)
	}

	switch in.ID {
	case PS_CMPU0, PS_CMPO0, PS_CMPU1, PS_CMPO1:
		write = append(write, in.Ops[0].Reg)
	}

	return read, write
}

func groups(in *Inst) (g Group) {
	switch in.ID {
	case B, BA:
		g |= GroupJump
	case BL, BLA, BLRL, BCTRL, BDNZL, BDZL, BDNZLRL, BDZLRL:
		g |= GroupCall
	case BLR, BDNZLR, BDZLR:
		g |= GroupRet
	case BCTR, BDNZ, BDZ:
		g |= GroupJump
	}

	if in.ID == B || in.ID == BL || in.ID == BDNZ || in.ID == BDZ || in.ID == BDNZL || in.ID == BDZL {
		if in.Word&0x2 == 0 {
			g |= GroupRel
		}
	}

	if in.ID.PairedSingle() {
		g |= GroupPairedSingle | GroupFloat
	}

	if privileged[in.ID] {
		g |= GroupPrivileged
	}

	for _, op := range in.Ops {
		if op.Kind != OpReg {
			continue
		}

		switch {
		case op.Reg.IsGPR():
			g |= GroupInt
		case op.Reg.IsFPR():
			g |= GroupFloat
		case op.Reg.IsVR(), op.Reg.IsVSR():
			g |= GroupVector
		}
	}

	return g
}
