package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/xlab/treeprint"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/ppclift/lifter"
	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/format"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/lift"
	"github.com/slowlang/ppclift/lifter/ppc"
	"github.com/slowlang/ppclift/lifter/scan"
)

func main() {
	modeFlag := func() *cli.Flag { return cli.NewFlag("mode", "big", "decode mode: big, little, ps") }
	addrFlag := func() *cli.Flag { return cli.NewFlag("addr", "0", "address of the first word") }

	decodeCmd := &cli.Command{
		Name:        "decode",
		Description: "print decoded instruction words",
		Action:      decodeAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			modeFlag(),
			addrFlag(),
			cli.NewFlag("spew", false, "dump decoded records in full"),
			cli.NewFlag("verbose", false, "print implicit registers and groups"),
		},
	}

	infoCmd := &cli.Command{
		Name:        "info",
		Description: "print instruction length and branch edges",
		Action:      infoAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			modeFlag(),
			addrFlag(),
		},
	}

	liftCmd := &cli.Command{
		Name:        "lift",
		Description: "lift instruction words at consecutive addresses",
		Action:      liftAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			modeFlag(),
			addrFlag(),
			cli.NewFlag("flags", false, "print resolved flag writes"),
		},
	}

	funcCmd := &cli.Command{
		Name:        "func",
		Description: "scan raw code file as a function and lift it",
		Action:      funcAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			modeFlag(),
			addrFlag(),
			cli.NewFlag("entry", "", "function entry, defaults to addr"),
			cli.NewFlag("max", 0, "max instructions to decode, 0 is unlimited"),
			cli.NewFlag("flags", false, "resolve flag writes"),
			cli.NewFlag("tree", false, "print blocks and branch edges as a tree"),
		},
	}

	regsCmd := &cli.Command{
		Name:        "regs",
		Description: "print register table and calling conventions",
		Action:      regsAct,
	}

	flagsCmd := &cli.Command{
		Name:        "flags",
		Description: "print flag tables",
		Action:      flagsAct,
	}

	app := &cli.Command{
		Name:        "ppclift",
		Description: "ppclift decodes and lifts PowerPC machine code",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			decodeCmd,
			infoCmd,
			liftCmd,
			funcCmd,
			regsCmd,
			flagsCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func decodeAct(c *cli.Command) (err error) {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	return eachWord(ctx, c, func(a *lifter.Arch, b []byte, addr uint64, mode decode.Mode) error {
		in, err := a.Decode(b, addr, mode)
		if err != nil {
			fmt.Printf("%#010x  %x  %v\n", addr, b, err)
			return nil
		}

		fmt.Printf("%#010x  %08x  %-32s id=%v\n", addr, in.Word, in, in.ID)

		if c.Bool("verbose") {
			fmt.Printf("\tread %v  write %v  groups %v  cond %v  ctr %v\n", in.RegsRead, in.RegsWrite, in.Groups, in.Cond, in.CTR)
		}

		if c.Bool("spew") {
			cfg := spew.ConfigState{Indent: "\t", DisablePointerAddresses: true, DisableCapacities: true}
			cfg.Dump(in)
		}

		return nil
	})
}

func infoAct(c *cli.Command) (err error) {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	return eachWord(ctx, c, func(a *lifter.Arch, b []byte, addr uint64, mode decode.Mode) error {
		i, err := a.InstructionInfo(b, addr, mode)

		fmt.Printf("%#010x  len %d", addr, i.Length)

		for _, e := range i.Edges {
			if e.Kind.HasTarget() {
				fmt.Printf("  %v:%#x", e.Kind, e.Target)
			} else {
				fmt.Printf("  %v", e.Kind)
			}
		}

		if err != nil {
			fmt.Printf("  err: %v", err)
		}

		fmt.Printf("\n")

		return nil
	})
}

func liftAct(c *cli.Command) (err error) {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	start, err := parseAddr(c.String("addr"))
	if err != nil {
		return err
	}

	f := il.New("lift", start)

	err = eachWord(ctx, c, func(a *lifter.Arch, b []byte, addr uint64, mode decode.Mode) error {
		_, err := a.LiftInstruction(b, addr, mode, f)
		if err != nil {
			f.SetAddr(addr)
			f.Emit(f.Undefined())
		}

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s", format.Func(nil, f))

	if c.Bool("flags") {
		printFlags(f, f.Code)
	}

	return nil
}

func funcAct(c *cli.Command) (err error) {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	if len(c.Args) != 1 {
		return errors.New("expected one file argument")
	}

	mode, err := decode.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	base, err := parseAddr(c.String("addr"))
	if err != nil {
		return err
	}

	entry := base

	if s := c.String("entry"); s != "" {
		entry, err = parseAddr(s)
		if err != nil {
			return err
		}
	}

	a, err := lifter.New(ctx)
	if err != nil {
		return errors.Wrap(err, "new arch")
	}

	defer func() {
		e := a.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close arch")
		}
	}()

	fn, err := a.LiftFile(ctx, c.Args[0], base, entry, scan.Options{
		Mode:         mode,
		MaxInsns:     c.Int("max"),
		ResolveFlags: c.Bool("flags"),
	})
	if err != nil {
		return errors.Wrap(err, "lift %v", c.Args[0])
	}

	if c.Bool("tree") {
		fmt.Printf("%s", blockTree(fn))
	} else {
		fmt.Printf("%s", format.Func(nil, fn.Func))
	}

	for _, addr := range fn.Failed {
		fmt.Printf("failed %#x\n", addr)
	}

	for _, addr := range fn.Calls {
		fmt.Printf("calls %#x\n", addr)
	}

	if fn.Truncated {
		fmt.Printf("truncated after %d instructions\n", len(fn.Insns))
	}

	if c.Bool("flags") {
		for _, fv := range fn.Flags {
			fmt.Printf("%-8v = %s\n", fv.Flag, format.String(fn.Func, fv.Value))
		}

		fmt.Printf("written %v\n", fn.Written.Keys())
	}

	return nil
}

func regsAct(c *cli.Command) (err error) {
	for _, r := range lifter.Registers() {
		i := lifter.RegisterInfo(r)

		fmt.Printf("%-8s  size %2d  full %-8v  offset %d  %v\n", lifter.RegisterName(r), i.Size, i.Full, i.Offset, i.Extend)
	}

	fmt.Printf("stack pointer %v  link register %v\n", lifter.StackPointer(), lifter.LinkRegister())

	for _, cc := range lifter.CallingConventions() {
		fmt.Printf("%s: args %v  float args %v  callee saved %v  return %v %v\n", cc.Name, cc.IntArgs, cc.FloatArgs, cc.CalleeSaved, cc.IntReturn, cc.FloatReturn)
	}

	for _, r := range []ppc.Reloc{ppc.RelocCopy, ppc.RelocGlobalData, ppc.RelocJumpSlot} {
		fmt.Printf("reloc %2d %v\n", int(r), r)
	}

	return nil
}

func flagsAct(c *cli.Command) (err error) {
	for _, f := range lifter.Flags() {
		fmt.Printf("flag %2d %v\n", int(f), lifter.FlagName(f))
	}

	for _, w := range lifter.FlagWrites() {
		fmt.Printf("write %-14v %v\n", lifter.FlagWriteName(w), lifter.FlagsWritten(w))
	}

	for _, class := range []ppc.FlagClass{ppc.ClassCR0S, ppc.ClassCR0U} {
		for cond := ppc.CondE; cond.Valid(); cond++ {
			fmt.Printf("cond %-4v %-14v %v\n", cond, lifter.FlagClassName(class), lifter.FlagsRequired(cond, class))
		}
	}

	return nil
}

// eachWord decodes command arguments as hex instruction words at consecutive addresses.
func eachWord(ctx context.Context, c *cli.Command, f func(a *lifter.Arch, b []byte, addr uint64, mode decode.Mode) error) (err error) {
	mode, err := decode.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	addr, err := parseAddr(c.String("addr"))
	if err != nil {
		return err
	}

	a, err := lifter.New(ctx)
	if err != nil {
		return errors.Wrap(err, "new arch")
	}

	defer func() {
		e := a.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close arch")
		}
	}()

	for _, arg := range c.Args {
		w, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 32)
		if err != nil {
			return errors.Wrap(err, "parse word %v", arg)
		}

		var b []byte

		if mode == decode.LittleEndian {
			b = binary.LittleEndian.AppendUint32(b, uint32(w))
		} else {
			b = binary.BigEndian.AppendUint32(b, uint32(w))
		}

		err = f(a, b, addr, mode)
		if err != nil {
			return errors.Wrap(err, "%v", arg)
		}

		addr += 4
	}

	return nil
}

// blockTree renders decoded instructions grouped by block with their branch edges.
func blockTree(fn *scan.Function) string {
	t := treeprint.NewWithRoot(fmt.Sprintf("%s %#x", fn.Name, fn.Addr))

	starts := map[uint64]bool{}
	for _, addr := range fn.Blocks {
		starts[addr] = true
	}

	var br treeprint.Tree

	for _, in := range fn.Insns {
		if br == nil || starts[in.Addr] {
			br = t.AddBranch(fmt.Sprintf("block %#x", in.Addr))
		}

		node := fmt.Sprintf("%#010x  %v", in.Addr, in)

		i := lift.GetInfo(in)
		if len(i.Edges) == 0 {
			br.AddNode(node)
			continue
		}

		n := br.AddBranch(node)

		for _, e := range i.Edges {
			if e.Kind.HasTarget() {
				n.AddNode(fmt.Sprintf("%v %#x", e.Kind, e.Target))
			} else {
				n.AddNode(e.Kind.String())
			}
		}
	}

	return t.String()
}

func printFlags(f *il.Func, code []il.Expr) {
	for i, id := range code {
		for _, fv := range lift.FlagWrites(f, id) {
			fmt.Printf("%#010x  %-8v = %s\n", f.Addrs[i], fv.Flag, format.String(f, fv.Value))
		}
	}
}

func parseAddr(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse address %q", s)
	}

	return v, nil
}
