package lifter

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/lift"
	"github.com/slowlang/ppclift/lifter/ppc"
	"github.com/slowlang/ppclift/lifter/scan"
)

type (
	// Arch is the entry point for a host analysis.
	// It owns a decode context per mode and is not safe for concurrent use.
	Arch struct {
		ctxs *decode.Contexts
	}
)

func New(ctx context.Context) (a *Arch, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "lifter: new arch")
	defer tr.Finish("err", &err)

	cs, err := decode.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open decoder")
	}

	return &Arch{ctxs: cs}, nil
}

func (a *Arch) Close() error {
	return a.ctxs.Close()
}

func (a *Arch) Decode(b []byte, addr uint64, mode decode.Mode) (*decode.Inst, error) {
	c, err := a.ctxs.Get(mode)
	if err != nil {
		return nil, err
	}

	return c.Decode(b, addr)
}

// InstructionInfo returns length and branch edges of the instruction at addr.
// Undecodable words report length 4 and no edges along with the error,
// so the caller may continue past them. Short input reports zero Info.
func (a *Arch) InstructionInfo(b []byte, addr uint64, mode decode.Mode) (lift.Info, error) {
	in, err := a.Decode(b, addr, mode)
	if errors.Is(err, decode.ErrShort) {
		return lift.Info{}, err
	}

	if err != nil {
		return lift.Info{Length: 4}, err
	}

	return lift.GetInfo(in), nil
}

// LiftInstruction appends IR of the instruction at addr to f.
// Nothing is emitted for undecodable words.
func (a *Arch) LiftInstruction(b []byte, addr uint64, mode decode.Mode, f *il.Func) (falls bool, err error) {
	in, err := a.Decode(b, addr, mode)
	if err != nil {
		return false, err
	}

	return lift.Lift(in, f), nil
}

// LiftFunction scans code loaded at base as a function starting at entry.
// The decoder for opts.Mode owned by a is used.
func (a *Arch) LiftFunction(ctx context.Context, code []byte, base, entry uint64, opts scan.Options) (*scan.Function, error) {
	c, err := a.ctxs.Get(opts.Mode)
	if err != nil {
		return nil, err
	}

	opts.Decoder = c

	return scan.Scan(ctx, code, base, entry, opts)
}

// LiftFile reads raw code loaded at base and lifts the function at entry.
func (a *Arch) LiftFile(ctx context.Context, name string, base, entry uint64, opts scan.Options) (*scan.Function, error) {
	code, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(code), "name", name)

	fn, err := a.LiftFunction(ctx, code, base, entry, opts)
	if err != nil {
		return nil, errors.Wrap(err, "lift function")
	}

	return fn, nil
}

func RegisterName(r ppc.Reg) string { return r.String() }

func FlagName(f ppc.Flag) string { return f.String() }

func FlagWriteName(w ppc.FlagWrite) string { return w.String() }

func FlagClassName(c ppc.FlagClass) string { return c.String() }

func Registers() []ppc.Reg { return ppc.AllRegisters() }

func RegisterInfo(r ppc.Reg) ppc.RegInfo { return r.Info() }

func StackPointer() ppc.Reg { return ppc.StackPointer }

func LinkRegister() ppc.Reg { return ppc.LinkRegister }

func Flags() []ppc.Flag { return ppc.AllFlags() }

func FlagWrites() []ppc.FlagWrite { return ppc.AllFlagWrites() }

func FlagClasses() []ppc.FlagClass { return ppc.AllFlagClasses() }

func FlagsWritten(w ppc.FlagWrite) []ppc.Flag { return ppc.FlagsWritten(w) }

func FlagsRequired(c ppc.Cond, class ppc.FlagClass) []ppc.Flag { return ppc.FlagsRequired(c, class) }

func FlagRole(f ppc.Flag, class ppc.FlagClass) ppc.Role { return ppc.FlagRole(f, class) }

func CallingConventions() []*ppc.CallingConvention { return ppc.CallingConventions }
