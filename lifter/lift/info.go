package lift

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/ppclift/lifter/decode"
)

type (
	EdgeKind uint8

	Edge struct {
		Kind   EdgeKind
		Target uint64
	}

	// Info is the control flow summary of one instruction.
	Info struct {
		Length int
		Edges  []Edge
	}
)

const (
	UnconditionalBranch EdgeKind = iota
	TrueBranch
	FalseBranch
	CallDestination
	FunctionReturn
	SystemCall
	UnresolvedBranch
	IndirectCall
)

var edgeNames = [...]string{
	UnconditionalBranch: "unconditional",
	TrueBranch:          "true",
	FalseBranch:         "false",
	CallDestination:     "call",
	FunctionReturn:      "return",
	SystemCall:          "syscall",
	UnresolvedBranch:    "unresolved",
	IndirectCall:        "indirect_call",
}

// GetInfo returns instruction length and branch edges of in without lifting it.
func GetInfo(in *decode.Inst) Info {
	i := Info{Length: 4}

	next := in.Addr + 4
	target, _ := in.Target()
	conditional := in.Cond != decode.CondAlways || in.CTR != decode.CTRNone

	switch in.ID {
	case decode.B, decode.BA, decode.BDNZ, decode.BDZ:
		if !conditional {
			i.add(UnconditionalBranch, target)
			break
		}

		i.add(FalseBranch, next)
		i.add(TrueBranch, target)
	case decode.BL, decode.BLA, decode.BDNZL, decode.BDZL:
		i.add(CallDestination, target)
	case decode.BLR, decode.BDNZLR, decode.BDZLR:
		if conditional {
			i.add(FalseBranch, next)
		}

		i.add(FunctionReturn, 0)
	case decode.BLRL, decode.BCTRL, decode.BDNZLRL, decode.BDZLRL:
		if conditional {
			i.add(FalseBranch, next)
		}

		i.add(IndirectCall, 0)
	case decode.BCTR:
		if conditional {
			i.add(FalseBranch, next)
		}

		i.add(UnresolvedBranch, 0)
	case decode.TRAP:
		i.add(UnresolvedBranch, 0)
	case decode.SC:
		i.add(SystemCall, 0)
	}

	return i
}

// FallsThrough reports whether execution may continue at the next instruction.
func (i Info) FallsThrough() bool {
	for _, e := range i.Edges {
		switch e.Kind {
		case FalseBranch, CallDestination, IndirectCall, SystemCall:
			return true
		}
	}

	return len(i.Edges) == 0
}

func (i *Info) add(k EdgeKind, target uint64) {
	i.Edges = append(i.Edges, Edge{Kind: k, Target: target})
}

func (k EdgeKind) String() string {
	if int(k) >= len(edgeNames) {
		return "edge(" + strconv.Itoa(int(k)) + ")"
	}

	return edgeNames[k]
}

// HasTarget reports whether the edge kind carries an address.
func (k EdgeKind) HasTarget() bool {
	switch k {
	case UnconditionalBranch, TrueBranch, FalseBranch, CallDestination:
		return true
	}

	return false
}

func (e Edge) TlogAppend(b []byte) []byte {
	var enc tlwire.Encoder

	if !e.Kind.HasTarget() {
		return enc.AppendString(b, e.Kind.String())
	}

	b = enc.AppendMap(b, 2)
	b = enc.AppendKeyString(b, "kind", e.Kind.String())
	b = enc.AppendKeyInt64(b, "target", int64(e.Target))

	return b
}
