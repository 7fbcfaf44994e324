package ppc

import (
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	Reg int

	Extend int

	// RegInfo describes where a register lives inside its full-width container.
	RegInfo struct {
		Full   Reg
		Offset int
		Size   int
		Extend Extend
	}

	CallingConvention struct {
		Name string

		IntArgs     []Reg
		FloatArgs   []Reg
		CalleeSaved []Reg

		IntReturn   Reg
		FloatReturn Reg
	}

	Reloc int
)

const (
	NoExtend Extend = iota
	ZeroExtendToFull
	SignExtendToFull
)

const (
	NoReg Reg = iota
	Carry
	CC
	CR0
	CR1
	CR2
	CR3
	CR4
	CR5
	CR6
	CR7
	CTR
	F0
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24
	F25
	F26
	F27
	F28
	F29
	F30
	F31
	LR
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	R16
	R17
	R18
	R19
	R20
	R21
	R22
	R23
	R24
	R25
	R26
	R27
	R28
	R29
	R30
	R31
	V0
)

const (
	V31 Reg = V0 + iota + 31
	VRSAVE
	VS0
)

const (
	VS63 Reg = VS0 + 63

	NumRegs = int(VS63) + 1
)

const (
	StackPointer = R1
	LinkRegister = LR

	AddrSize = 4
)

const (
	RelocCopy       Reloc = 19
	RelocGlobalData Reloc = 20
	RelocJumpSlot   Reloc = 21
)

var SVR4 = &CallingConvention{
	Name: "svr4",

	IntArgs:     []Reg{R3, R4, R5, R6, R7, R8, R9, R10},
	FloatArgs:   []Reg{F1, F2, F3, F4, F5, F6, F7, F8, F9, F10, F11, F12, F13},
	CalleeSaved: regRange(R13, R31),

	IntReturn:   R3,
	FloatReturn: F1,
}

var LinuxSyscall = &CallingConvention{
	Name: "linux-syscall",

	IntArgs:     []Reg{R0, R3, R4, R5, R6, R7, R8, R9, R10},
	CalleeSaved: []Reg{R3},

	IntReturn:   R3,
	FloatReturn: NoReg,
}

var CallingConventions = []*CallingConvention{SVR4, LinuxSyscall}

func (r Reg) Valid() bool { return r > NoReg && int(r) < NumRegs }

func (r Reg) IsGPR() bool { return r >= R0 && r <= R31 }
func (r Reg) IsFPR() bool { return r >= F0 && r <= F31 }
func (r Reg) IsVR() bool  { return r >= V0 && r <= V31 }
func (r Reg) IsVSR() bool { return r >= VS0 && r <= VS63 }
func (r Reg) IsCR() bool  { return r >= CR0 && r <= CR7 }

// Num returns index of r within its register file.
func (r Reg) Num() int {
	switch {
	case r.IsGPR():
		return int(r - R0)
	case r.IsFPR():
		return int(r - F0)
	case r.IsVR():
		return int(r - V0)
	case r.IsVSR():
		return int(r - VS0)
	case r.IsCR():
		return int(r - CR0)
	}

	return 0
}

func (r Reg) String() string {
	switch {
	case r.IsGPR():
		return fmt.Sprintf("r%d", r.Num())
	case r.IsFPR():
		return fmt.Sprintf("f%d", r.Num())
	case r.IsVR():
		return fmt.Sprintf("v%d", r.Num())
	case r.IsVSR():
		return fmt.Sprintf("vs%d", r.Num())
	case r.IsCR():
		return fmt.Sprintf("cr%d", r.Num())
	}

	switch r {
	case Carry:
		return "carry"
	case CC:
		return "cc"
	case CTR:
		return "ctr"
	case LR:
		return "lr"
	case VRSAVE:
		return "vrsave"
	}

	return ""
}

// Size returns register width in bytes, 0 for unknown registers.
func (r Reg) Size() int {
	switch {
	case !r.Valid():
		return 0
	case r.IsFPR():
		return 8
	case r.IsVR(), r.IsVSR():
		return 16
	}

	return AddrSize
}

// Info returns container and placement of r.
// Unknown registers are a decoder and table mismatch: logged, zero result.
func (r Reg) Info() RegInfo {
	if !r.Valid() {
		tlog.Printw("unknown register", "reg", int(r), "from", loc.Caller(1))
		return RegInfo{}
	}

	return RegInfo{
		Full:   r,
		Size:   r.Size(),
		Extend: NoExtend,
	}
}

// AllRegisters returns every register in id order.
func AllRegisters() []Reg {
	return regRange(NoReg+1, Reg(NumRegs-1))
}

// GPR returns general purpose register n.
func GPR(n int) Reg { return R0 + Reg(n&31) }

// CRField returns condition register field n.
func CRField(n int) Reg { return CR0 + Reg(n&7) }

func (c Extend) String() string {
	switch c {
	case ZeroExtendToFull:
		return "zero_extend"
	case SignExtendToFull:
		return "sign_extend"
	}

	return "none"
}

func (r Reloc) String() string {
	switch r {
	case RelocCopy:
		return "R_PPC_COPY"
	case RelocGlobalData:
		return "R_PPC_GLOB_DAT"
	case RelocJumpSlot:
		return "R_PPC_JMP_SLOT"
	}

	return fmt.Sprintf("reloc(%d)", int(r))
}

func regRange(first, last Reg) []Reg {
	r := make([]Reg, 0, last-first+1)

	for x := first; x <= last; x++ {
		r = append(r, x)
	}

	return r
}
