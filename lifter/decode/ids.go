package decode

import (
	"encoding/binary"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/arch/ppc64/ppc64asm"
)

// ID is instruction identity.
// Values below idSynthetic are ppc64asm operations,
// the rest are simplified forms and paired-single operations.
type ID uint16

const (
	Invalid ID = 0

	ADD     = ID(ppc64asm.ADD)
	ADDI    = ID(ppc64asm.ADDI)
	ADDIS   = ID(ppc64asm.ADDIS)
	LI      = ID(ppc64asm.LI)
	LIS     = ID(ppc64asm.LIS)
	ADDC    = ID(ppc64asm.ADDC)
	ADDE    = ID(ppc64asm.ADDE)
	ADDIC   = ID(ppc64asm.ADDIC)
	ADDZE   = ID(ppc64asm.ADDZE)
	ADDME   = ID(ppc64asm.ADDME)
	SUBF    = ID(ppc64asm.SUBF)
	SUBFC   = ID(ppc64asm.SUBFC)
	SUBFE   = ID(ppc64asm.SUBFE)
	SUBFIC  = ID(ppc64asm.SUBFIC)
	NEG     = ID(ppc64asm.NEG)
	MULLW   = ID(ppc64asm.MULLW)
	MULLI   = ID(ppc64asm.MULLI)
	MULHW   = ID(ppc64asm.MULHW)
	MULHWU  = ID(ppc64asm.MULHWU)
	DIVW    = ID(ppc64asm.DIVW)
	DIVWU   = ID(ppc64asm.DIVWU)
	AND     = ID(ppc64asm.AND)
	ANDC    = ID(ppc64asm.ANDC)
	ANDICC  = ID(ppc64asm.ANDICC)
	ANDISCC = ID(ppc64asm.ANDISCC)
	OR      = ID(ppc64asm.OR)
	ORC     = ID(ppc64asm.ORC)
	ORI     = ID(ppc64asm.ORI)
	ORIS    = ID(ppc64asm.ORIS)
	XOR     = ID(ppc64asm.XOR)
	XORI    = ID(ppc64asm.XORI)
	XORIS   = ID(ppc64asm.XORIS)
	NAND    = ID(ppc64asm.NAND)
	NOR     = ID(ppc64asm.NOR)
	EQV     = ID(ppc64asm.EQV)
	EXTSB   = ID(ppc64asm.EXTSB)
	EXTSH   = ID(ppc64asm.EXTSH)
	SLW     = ID(ppc64asm.SLW)
	SRW     = ID(ppc64asm.SRW)
	SRAW    = ID(ppc64asm.SRAW)
	SRAWI   = ID(ppc64asm.SRAWI)
	RLWINM  = ID(ppc64asm.RLWINM)
	NOP     = ID(ppc64asm.NOP)
	CMPW    = ID(ppc64asm.CMPW)
	CMPLW   = ID(ppc64asm.CMPLW)
	CMPWI   = ID(ppc64asm.CMPWI)
	CMPLWI  = ID(ppc64asm.CMPLWI)
	CMPD    = ID(ppc64asm.CMPD)
	CMPLD   = ID(ppc64asm.CMPLD)
	CMPDI   = ID(ppc64asm.CMPDI)
	CMPLDI  = ID(ppc64asm.CMPLDI)
	LBZ     = ID(ppc64asm.LBZ)
	LBZU    = ID(ppc64asm.LBZU)
	LHZ     = ID(ppc64asm.LHZ)
	LHZU    = ID(ppc64asm.LHZU)
	LHA     = ID(ppc64asm.LHA)
	LHAU    = ID(ppc64asm.LHAU)
	LWZ     = ID(ppc64asm.LWZ)
	LWZU    = ID(ppc64asm.LWZU)
	LBZX    = ID(ppc64asm.LBZX)
	LHZX    = ID(ppc64asm.LHZX)
	LHAX    = ID(ppc64asm.LHAX)
	LWZX    = ID(ppc64asm.LWZX)
	LWZUX   = ID(ppc64asm.LWZUX)
	STB     = ID(ppc64asm.STB)
	STBU    = ID(ppc64asm.STBU)
	STH     = ID(ppc64asm.STH)
	STHU    = ID(ppc64asm.STHU)
	STW     = ID(ppc64asm.STW)
	STWU    = ID(ppc64asm.STWU)
	STBX    = ID(ppc64asm.STBX)
	STHX    = ID(ppc64asm.STHX)
	STWX    = ID(ppc64asm.STWX)
	STWUX   = ID(ppc64asm.STWUX)
	LMW     = ID(ppc64asm.LMW)
	STMW    = ID(ppc64asm.STMW)
	LFD     = ID(ppc64asm.LFD)
	LFDU    = ID(ppc64asm.LFDU)
	STFD    = ID(ppc64asm.STFD)
	STFDU   = ID(ppc64asm.STFDU)
	B       = ID(ppc64asm.B)
	BA      = ID(ppc64asm.BA)
	BL      = ID(ppc64asm.BL)
	BLA     = ID(ppc64asm.BLA)
	BCCTR   = ID(ppc64asm.BCCTR)
	BCCTRL  = ID(ppc64asm.BCCTRL)
	SC      = ID(ppc64asm.SC)
	ISYNC   = ID(ppc64asm.ISYNC)
	SYNC    = ID(ppc64asm.SYNC)
	EIEIO   = ID(ppc64asm.EIEIO)
	MFCR    = ID(ppc64asm.MFCR)
	MTCRF   = ID(ppc64asm.MTCRF)
	TW      = ID(ppc64asm.TW)
	TWI     = ID(ppc64asm.TWI)
)

const idSynthetic ID = 1 << 12

const (
	MR ID = idSynthetic + iota
	MFLR
	MTLR
	MFCTR
	MTCTR
	SLWI
	SRWI
	ROTLWI
	TRAP
	BLR
	BLRL
	BCTR
	BCTRL
	BDNZ
	BDZ
	BDNZL
	BDZL
	BDNZLR
	BDZLR
	BDNZLRL
	BDZLRL

	PS_ADD
	PS_SUB
	PS_MUL
	PS_DIV
	PS_SEL
	PS_RES
	PS_RSQRTE
	PS_MADD
	PS_MSUB
	PS_NMADD
	PS_NMSUB
	PS_SUM0
	PS_SUM1
	PS_MULS0
	PS_MULS1
	PS_MADDS0
	PS_MADDS1
	PS_CMPU0
	PS_CMPO0
	PS_CMPU1
	PS_CMPO1
	PS_NEG
	PS_MR
	PS_NABS
	PS_ABS
	PS_MERGE00
	PS_MERGE01
	PS_MERGE10
	PS_MERGE11
	PSQ_LX
	PSQ_STX
	PSQ_LUX
	PSQ_STUX
	PSQ_L
	PSQ_LU
	PSQ_ST
	PSQ_STU
	DCBZ_L

	idEnd
)

var syntheticNames = [...]string{
	MR - idSynthetic:      "mr",
	MFLR - idSynthetic:    "mflr",
	MTLR - idSynthetic:    "mtlr",
	MFCTR - idSynthetic:   "mfctr",
	MTCTR - idSynthetic:   "mtctr",
	SLWI - idSynthetic:    "slwi",
	SRWI - idSynthetic:    "srwi",
	ROTLWI - idSynthetic:  "rotlwi",
	TRAP - idSynthetic:    "trap",
	BLR - idSynthetic:     "blr",
	BLRL - idSynthetic:    "blrl",
	BCTR - idSynthetic:    "bctr",
	BCTRL - idSynthetic:   "bctrl",
	BDNZ - idSynthetic:    "bdnz",
	BDZ - idSynthetic:     "bdz",
	BDNZL - idSynthetic:   "bdnzl",
	BDZL - idSynthetic:    "bdzl",
	BDNZLR - idSynthetic:  "bdnzlr",
	BDZLR - idSynthetic:   "bdzlr",
	BDNZLRL - idSynthetic: "bdnzlrl",
	BDZLRL - idSynthetic:  "bdzlrl",

	PS_ADD - idSynthetic:     "ps_add",
	PS_SUB - idSynthetic:     "ps_sub",
	PS_MUL - idSynthetic:     "ps_mul",
	PS_DIV - idSynthetic:     "ps_div",
	PS_SEL - idSynthetic:     "ps_sel",
	PS_RES - idSynthetic:     "ps_res",
	PS_RSQRTE - idSynthetic:  "ps_rsqrte",
	PS_MADD - idSynthetic:    "ps_madd",
	PS_MSUB - idSynthetic:    "ps_msub",
	PS_NMADD - idSynthetic:   "ps_nmadd",
	PS_NMSUB - idSynthetic:   "ps_nmsub",
	PS_SUM0 - idSynthetic:    "ps_sum0",
	PS_SUM1 - idSynthetic:    "ps_sum1",
	PS_MULS0 - idSynthetic:   "ps_muls0",
	PS_MULS1 - idSynthetic:   "ps_muls1",
	PS_MADDS0 - idSynthetic:  "ps_madds0",
	PS_MADDS1 - idSynthetic:  "ps_madds1",
	PS_CMPU0 - idSynthetic:   "ps_cmpu0",
	PS_CMPO0 - idSynthetic:   "ps_cmpo0",
	PS_CMPU1 - idSynthetic:   "ps_cmpu1",
	PS_CMPO1 - idSynthetic:   "ps_cmpo1",
	PS_NEG - idSynthetic:     "ps_neg",
	PS_MR - idSynthetic:      "ps_mr",
	PS_NABS - idSynthetic:    "ps_nabs",
	PS_ABS - idSynthetic:     "ps_abs",
	PS_MERGE00 - idSynthetic: "ps_merge00",
	PS_MERGE01 - idSynthetic: "ps_merge01",
	PS_MERGE10 - idSynthetic: "ps_merge10",
	PS_MERGE11 - idSynthetic: "ps_merge11",
	PSQ_LX - idSynthetic:     "psq_lx",
	PSQ_STX - idSynthetic:    "psq_stx",
	PSQ_LUX - idSynthetic:    "psq_lux",
	PSQ_STUX - idSynthetic:   "psq_stux",
	PSQ_L - idSynthetic:      "psq_l",
	PSQ_LU - idSynthetic:     "psq_lu",
	PSQ_ST - idSynthetic:     "psq_st",
	PSQ_STU - idSynthetic:    "psq_stu",
	DCBZ_L - idSynthetic:     "dcbz_l",
}

// overflowBases are operations with an OE form spelled base+"o".
var overflowBases = []string{
	"add", "addc", "adde", "addme", "addze",
	"subf", "subfc", "subfe", "subfme", "subfze",
	"neg", "mullw", "divw", "divwu",
	"mulld", "divd", "divdu",
}

var tables struct {
	once sync.Once

	byName   map[string]ppc64asm.Op
	overflow map[ppc64asm.Op]ppc64asm.Op // OE form -> base

	err error
}

func (id ID) String() string {
	switch {
	case id == Invalid:
		return "invalid"
	case id >= idSynthetic && id < idEnd:
		return syntheticNames[id-idSynthetic]
	case id < idSynthetic:
		return ppc64asm.Op(id).String()
	}

	return "id(" + strconv.Itoa(int(id)) + ")"
}

// Synthetic reports whether id is not a ppc64asm operation.
func (id ID) Synthetic() bool { return id >= idSynthetic }

func (id ID) PairedSingle() bool { return id >= PS_ADD && id < idEnd }

// IDByName finds an instruction id by mnemonic.
func IDByName(name string) (ID, bool) {
	initTables()

	for i, n := range syntheticNames {
		if n == name {
			return idSynthetic + ID(i), true
		}
	}

	op, ok := tables.byName[name]

	return ID(op), ok
}

func initTables() error {
	tables.once.Do(func() {
		tables.byName = make(map[string]ppc64asm.Op)

		for op := ppc64asm.Op(1); op < ppc64asm.Op(idSynthetic); op++ {
			n := op.String()
			if strings.HasPrefix(n, "Op(") {
				continue
			}

			tables.byName[n] = op
		}

		tables.overflow = make(map[ppc64asm.Op]ppc64asm.Op)

		for _, n := range overflowBases {
			base, ok1 := tables.byName[n]
			oe, ok2 := tables.byName[n+"o"]
			if !ok1 || !ok2 {
				continue
			}

			tables.overflow[oe] = base
		}

		// ppc64asm sets up its own lookup state on first use.
		_, err := ppc64asm.Decode([]byte{0x60, 0, 0, 0}, binary.BigEndian)
		if err != nil {
			tables.err = err
		}
	})

	return tables.err
}
