package ppc

import (
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	// Flag is one of the condition register bits or one of XER SO, OV, CA.
	Flag int

	// FlagWrite tells which flags an instruction updates and how.
	FlagWrite int

	// FlagClass tells how a flag read is interpreted: signed or unsigned, and for which field.
	FlagClass int

	Role int

	// Cond is a flag condition used by branches and comparisons.
	Cond int
)

const (
	LT Flag = iota
	GT
	EQ
	SO
	CR1LT
	CR1GT
	CR1EQ
	CR1SO
	CR2LT
	CR2GT
	CR2EQ
	CR2SO
	CR3LT
	CR3GT
	CR3EQ
	CR3SO
	CR4LT
	CR4GT
	CR4EQ
	CR4SO
	CR5LT
	CR5GT
	CR5EQ
	CR5SO
	CR6LT
	CR6GT
	CR6EQ
	CR6SO
	CR7LT
	CR7GT
	CR7EQ
	CR7SO
	XerSO
	XerOV
	XerCA

	NumFlags int = iota
)

const (
	WriteNone FlagWrite = iota
	WriteCR0S
	WriteCR0U
	WriteCR1S
	WriteCR1U
	WriteCR2S
	WriteCR2U
	WriteCR3S
	WriteCR3U
	WriteCR4S
	WriteCR4U
	WriteCR5S
	WriteCR5U
	WriteCR6S
	WriteCR6U
	WriteCR7S
	WriteCR7U
	WriteXER
	WriteXERCA
	WriteXEROVSO

	numFlagWrites int = iota
)

const (
	ClassNone FlagClass = iota
	ClassCR0S
	ClassCR0U
	ClassCR1S
	ClassCR1U
	ClassCR2S
	ClassCR2U
	ClassCR3S
	ClassCR3U
	ClassCR4S
	ClassCR4U
	ClassCR5S
	ClassCR5U
	ClassCR6S
	ClassCR6U
	ClassCR7S
	ClassCR7U

	numFlagClasses int = iota
)

const (
	RoleSpecial Role = iota
	RoleZero
	RolePositiveSign
	RoleNegativeSign
	RoleCarry
	RoleOverflow
)

const (
	CondE Cond = iota
	CondNE
	CondSLT
	CondULT
	CondSLE
	CondULE
	CondSGE
	CondUGE
	CondSGT
	CondUGT
	CondNEG
	CondPOS
	CondO
	CondNO

	numConds int = iota
)

var flagNames = [...]string{
	LT: "lt", GT: "gt", EQ: "eq", SO: "so",
	CR1LT: "cr1_lt", CR1GT: "cr1_gt", CR1EQ: "cr1_eq", CR1SO: "cr1_so",
	CR2LT: "cr2_lt", CR2GT: "cr2_gt", CR2EQ: "cr2_eq", CR2SO: "cr2_so",
	CR3LT: "cr3_lt", CR3GT: "cr3_gt", CR3EQ: "cr3_eq", CR3SO: "cr3_so",
	CR4LT: "cr4_lt", CR4GT: "cr4_gt", CR4EQ: "cr4_eq", CR4SO: "cr4_so",
	CR5LT: "cr5_lt", CR5GT: "cr5_gt", CR5EQ: "cr5_eq", CR5SO: "cr5_so",
	CR6LT: "cr6_lt", CR6GT: "cr6_gt", CR6EQ: "cr6_eq", CR6SO: "cr6_so",
	CR7LT: "cr7_lt", CR7GT: "cr7_gt", CR7EQ: "cr7_eq", CR7SO: "cr7_so",
	XerSO: "xer_so", XerOV: "xer_ov", XerCA: "xer_ca",
}

var flagWriteNames = [...]string{
	WriteNone: "none",
	WriteCR0S: "cr0_signed", WriteCR0U: "cr0_unsigned",
	WriteCR1S: "cr1_signed", WriteCR1U: "cr1_unsigned",
	WriteCR2S: "cr2_signed", WriteCR2U: "cr2_unsigned",
	WriteCR3S: "cr3_signed", WriteCR3U: "cr3_unsigned",
	WriteCR4S: "cr4_signed", WriteCR4U: "cr4_unsigned",
	WriteCR5S: "cr5_signed", WriteCR5U: "cr5_unsigned",
	WriteCR6S: "cr6_signed", WriteCR6U: "cr6_unsigned",
	WriteCR7S: "cr7_signed", WriteCR7U: "cr7_unsigned",
	WriteXER:     "xer",
	WriteXERCA:   "xer_ca",
	WriteXEROVSO: "xer_ov_so",
}

var flagsWritten = [...][]Flag{
	WriteNone: nil,
	WriteCR0S: {LT, GT, EQ, SO},
	WriteCR0U: {LT, GT, EQ, SO},
	WriteCR1S: {CR1LT, CR1GT, CR1EQ, CR1SO},
	WriteCR1U: {CR1LT, CR1GT, CR1EQ, CR1SO},
	WriteCR2S: {CR2LT, CR2GT, CR2EQ, CR2SO},
	WriteCR2U: {CR2LT, CR2GT, CR2EQ, CR2SO},
	WriteCR3S: {CR3LT, CR3GT, CR3EQ, CR3SO},
	WriteCR3U: {CR3LT, CR3GT, CR3EQ, CR3SO},
	WriteCR4S: {CR4LT, CR4GT, CR4EQ, CR4SO},
	WriteCR4U: {CR4LT, CR4GT, CR4EQ, CR4SO},
	WriteCR5S: {CR5LT, CR5GT, CR5EQ, CR5SO},
	WriteCR5U: {CR5LT, CR5GT, CR5EQ, CR5SO},
	WriteCR6S: {CR6LT, CR6GT, CR6EQ, CR6SO},
	WriteCR6U: {CR6LT, CR6GT, CR6EQ, CR6SO},
	WriteCR7S: {CR7LT, CR7GT, CR7EQ, CR7SO},
	WriteCR7U: {CR7LT, CR7GT, CR7EQ, CR7SO},
	WriteXER:     {XerSO, XerOV, XerCA},
	WriteXERCA:   {XerCA},
	WriteXEROVSO: {XerSO, XerOV},
}

var flagWriteClass = [...]FlagClass{
	WriteNone: ClassNone,
	WriteCR0S: ClassCR0S, WriteCR0U: ClassCR0U,
	WriteCR1S: ClassCR1S, WriteCR1U: ClassCR1U,
	WriteCR2S: ClassCR2S, WriteCR2U: ClassCR2U,
	WriteCR3S: ClassCR3S, WriteCR3U: ClassCR3U,
	WriteCR4S: ClassCR4S, WriteCR4U: ClassCR4U,
	WriteCR5S: ClassCR5S, WriteCR5U: ClassCR5U,
	WriteCR6S: ClassCR6S, WriteCR6U: ClassCR6U,
	WriteCR7S: ClassCR7S, WriteCR7U: ClassCR7U,
	WriteXER:     ClassNone,
	WriteXERCA:   ClassNone,
	WriteXEROVSO: ClassNone,
}

var condNames = [...]string{
	CondE:   "e",
	CondNE:  "ne",
	CondSLT: "slt",
	CondULT: "ult",
	CondSLE: "sle",
	CondULE: "ule",
	CondSGE: "sge",
	CondUGE: "uge",
	CondSGT: "sgt",
	CondUGT: "ugt",
	CondNEG: "neg",
	CondPOS: "pos",
	CondO:   "o",
	CondNO:  "no",
}

// Flags a condition reads, given for field 0.
// NEG and POS have no flag support in this model.
var condFlags = [...][]Flag{
	CondE:   {EQ},
	CondNE:  {EQ},
	CondSLT: {LT},
	CondULT: {LT},
	CondSGE: {LT},
	CondUGE: {LT},
	CondSGT: {GT},
	CondUGT: {GT},
	CondSLE: {GT},
	CondULE: {GT},
	CondNEG: {},
	CondPOS: {},
	CondO:   {XerOV},
	CondNO:  {XerOV},
}

var condInverse = [...]Cond{
	CondE:   CondNE,
	CondNE:  CondE,
	CondSLT: CondSGE,
	CondULT: CondUGE,
	CondSLE: CondSGT,
	CondULE: CondUGT,
	CondSGE: CondSLT,
	CondUGE: CondULT,
	CondSGT: CondSLE,
	CondUGT: CondULE,
	CondNEG: CondPOS,
	CondPOS: CondNEG,
	CondO:   CondNO,
	CondNO:  CondO,
}

var roleNames = [...]string{
	RoleSpecial:      "special",
	RoleZero:         "zero",
	RolePositiveSign: "positive_sign",
	RoleNegativeSign: "negative_sign",
	RoleCarry:        "carry",
	RoleOverflow:     "overflow",
}

// CRFlag returns bit of condition register field n.
func CRFlag(n int, bit Flag) Flag {
	return Flag(4*n) + bit&3
}

// CRWrite returns the write type of a compare into field n.
func CRWrite(n int, signed bool) FlagWrite {
	w := WriteCR0S + FlagWrite(2*n)
	if !signed {
		w++
	}

	return w
}

// CRClass returns the semantic class of field n.
func CRClass(n int, signed bool) FlagClass {
	return FlagClass(CRWrite(n, signed))
}

func (f Flag) Valid() bool { return f >= 0 && int(f) < NumFlags }

// IsCR reports whether f is a condition register bit.
func (f Flag) IsCR() bool { return f >= LT && f <= CR7SO }

// Field returns the condition register field of f or -1.
func (f Flag) Field() int {
	if !f.IsCR() {
		return -1
	}

	return int(f) / 4
}

// Bit returns f moved to field 0.
func (f Flag) Bit() Flag {
	if !f.IsCR() {
		return f
	}

	return f & 3
}

func (f Flag) String() string {
	if !f.Valid() {
		return fmt.Sprintf("flag(%d)", int(f))
	}

	return flagNames[f]
}

func (w FlagWrite) Valid() bool { return w >= 0 && int(w) < numFlagWrites }

func (w FlagWrite) String() string {
	if !w.Valid() {
		return "none"
	}

	return flagWriteNames[w]
}

// Class returns the semantic class of flags written by w.
func (w FlagWrite) Class() FlagClass {
	if !w.Valid() {
		return ClassNone
	}

	return flagWriteClass[w]
}

// FlagsWritten returns flags written by w in ascending order.
// Unknown types write nothing.
func FlagsWritten(w FlagWrite) []Flag {
	if !w.Valid() {
		return nil
	}

	return append([]Flag(nil), flagsWritten[w]...)
}

func (c FlagClass) Valid() bool { return c >= 0 && int(c) < numFlagClasses }

// Field returns the condition register field c refers to or -1.
func (c FlagClass) Field() int {
	if c <= ClassNone || !c.Valid() {
		return -1
	}

	return int(c-ClassCR0S) / 2
}

// Signed reports whether flag reads of class c are signed relations.
func (c FlagClass) Signed() bool {
	if c <= ClassNone || !c.Valid() {
		return true
	}

	return (c-ClassCR0S)%2 == 0
}

func (c FlagClass) String() string {
	if c <= ClassNone || !c.Valid() {
		return "none"
	}

	return flagWriteNames[FlagWrite(c)]
}

// FlagRole returns the role of f when read with class c.
func FlagRole(f Flag, c FlagClass) Role {
	switch {
	case f == XerOV:
		return RoleOverflow
	case f == XerCA:
		return RoleCarry
	case !f.IsCR():
		return RoleSpecial
	}

	switch f.Bit() {
	case LT:
		if c > ClassNone && c.Signed() {
			return RoleNegativeSign
		}

		return RoleSpecial
	case EQ:
		return RoleZero
	default:
		return RoleSpecial
	}
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}

	return roleNames[r]
}

func (c Cond) Valid() bool { return c >= 0 && int(c) < numConds }

func (c Cond) String() string {
	if !c.Valid() {
		return fmt.Sprintf("cond(%d)", int(c))
	}

	return condNames[c]
}

// Invert returns the condition that holds exactly when c does not.
func (c Cond) Invert() Cond {
	if !c.Valid() {
		return c
	}

	return condInverse[c]
}

// Signed reports whether c is a signed relation.
func (c Cond) Signed() bool {
	switch c {
	case CondULT, CondULE, CondUGE, CondUGT:
		return false
	}

	return true
}

// FlagsRequired returns flags that must be known to evaluate c.
// Class selects the condition register field, no class means field 0.
func FlagsRequired(c Cond, class FlagClass) []Flag {
	if !c.Valid() {
		tlog.Printw("unknown flag condition", "cond", int(c), "from", loc.Caller(1))
		return nil
	}

	n := class.Field()
	if n < 0 {
		n = 0
	}

	r := make([]Flag, 0, len(condFlags[c]))

	for _, f := range condFlags[c] {
		if f.IsCR() {
			f = CRFlag(n, f)
		}

		r = append(r, f)
	}

	return r
}

// AllFlags returns every flag in id order.
func AllFlags() []Flag {
	r := make([]Flag, NumFlags)

	for i := range r {
		r[i] = Flag(i)
	}

	return r
}

// AllFlagWrites returns every flag write type except WriteNone.
func AllFlagWrites() []FlagWrite {
	r := make([]FlagWrite, 0, numFlagWrites-1)

	for w := WriteCR0S; int(w) < numFlagWrites; w++ {
		r = append(r, w)
	}

	return r
}

// AllFlagClasses returns every semantic class except ClassNone.
func AllFlagClasses() []FlagClass {
	r := make([]FlagClass, 0, numFlagClasses-1)

	for c := ClassCR0S; int(c) < numFlagClasses; c++ {
		r = append(r, c)
	}

	return r
}
