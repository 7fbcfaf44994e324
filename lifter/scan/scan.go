package scan

import (
	"context"
	"sort"

	"github.com/nikandfor/hacked/hfmt"
	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/ppclift/lifter/decode"
	"github.com/slowlang/ppclift/lifter/il"
	"github.com/slowlang/ppclift/lifter/lift"
	"github.com/slowlang/ppclift/lifter/ppc"
	"github.com/slowlang/ppclift/lifter/set"
)

type (
	Options struct {
		Name string
		Mode decode.Mode

		// Decoder is used instead of a private one for Mode if set.
		// It is not closed by Scan.
		Decoder *decode.Context

		MaxInsns     int // 0 is unlimited
		ResolveFlags bool
	}

	// Function is a function discovered from its entry and lifted into one il.Func.
	Function struct {
		*il.Func

		Insns  []*decode.Inst // address order
		Blocks []uint64
		Calls  []uint64
		Failed []uint64

		Truncated bool

		Flags   []lift.FlagValue
		Written set.Bits[ppc.Flag]
	}

	scanner struct {
		code []byte
		base uint64
		dec  *decode.Context

		insns   []*decode.Inst // by slot
		failed  set.Bits[int]
		visited set.Bits[int]
		blocks  set.Bits[int]

		calls []uint64
		count int
		max   int

		truncated bool

		jobs jobs
	}

	jobs struct {
		heap.Heap[job]
	}

	job struct {
		addr uint64
		from uint64
	}
)

var ErrEntry = errors.New("entry is outside of code")

// Scan decodes the function at entry following branch edges, calls are not followed,
// and lifts every reached instruction in address order.
func Scan(ctx context.Context, code []byte, base, entry uint64, opts Options) (fn *Function, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "scan: function", "entry", tlog.FormatNext("%#x"), entry, "base", tlog.FormatNext("%#x"), base, "size", len(code))
	defer tr.Finish("err", &err)

	dec := opts.Decoder

	if dec == nil {
		dec, err = decode.NewContext(opts.Mode)
		if err != nil {
			return nil, errors.Wrap(err, "decoder")
		}

		defer func() {
			e := dec.Close()
			if err == nil && e != nil {
				err = errors.Wrap(e, "close decoder")
			}
		}()
	}

	s := &scanner{
		code: code,
		base: base,
		dec:  dec,

		insns:   make([]*decode.Inst, len(code)/4),
		failed:  set.MakeBits(0),
		visited: set.MakeBits(0),
		blocks:  set.MakeBits(0),

		max: opts.MaxInsns,

		jobs: jobs{Heap: heap.Heap[job]{Less: jobsLess}},
	}

	slot, ok := s.slot(entry)
	if !ok {
		return nil, errors.Wrap(ErrEntry, "entry %#x", entry)
	}

	s.blocks.Set(slot)
	s.jobs.Push(job{addr: entry, from: entry})

	for s.jobs.Len() != 0 {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		j := s.jobs.Pop()

		tr.V("scan_job").Printw("job", "job", j, "more", s.jobs.Len())

		s.walk(j.addr)
	}

	name := opts.Name
	if name == "" {
		name = string(hfmt.Appendf(nil, "sub_%x", entry))
	}

	fn = &Function{
		Func:      il.New(name, entry),
		Calls:     s.calls,
		Truncated: s.truncated,
		Written:   set.MakeBits[ppc.Flag](0),
	}

	s.lift(fn)

	if opts.ResolveFlags {
		resolveFlags(fn)
	}

	tr.Printw("function scanned", "name", name, "insns", len(fn.Insns), "blocks", len(fn.Blocks), "failed", len(fn.Failed), "stmts", len(fn.Code), "truncated", fn.Truncated)

	return fn, nil
}

// walk decodes a straight line of instructions from addr until it ends or reaches visited code.
func (s *scanner) walk(addr uint64) {
	for {
		slot, ok := s.slot(addr)
		if !ok {
			tlog.V("scan_out").Printw("path leaves code", "addr", tlog.FormatNext("%#x"), addr)
			return
		}

		if s.visited.TestAndSet(slot) {
			return
		}

		if s.max != 0 && s.count >= s.max {
			s.truncated = true
			return
		}

		s.count++

		in, err := s.dec.Decode(s.code[slot*4:], addr)
		if err != nil {
			tlog.V("scan_failed").Printw("undecodable", "addr", tlog.FormatNext("%#x"), addr, "err", err)

			s.failed.Set(slot)
			s.blocks.Set(slot)

			return
		}

		s.insns[slot] = in

		info := lift.GetInfo(in)
		stop := !info.FallsThrough()

		for _, e := range info.Edges {
			switch e.Kind {
			case lift.UnconditionalBranch, lift.TrueBranch, lift.FalseBranch:
				if t, ok := s.slot(e.Target); ok {
					s.blocks.Set(t)
				}

				s.jobs.Push(job{addr: e.Target, from: addr})

				stop = true
			case lift.CallDestination:
				s.calls = append(s.calls, e.Target)
			}
		}

		if stop {
			return
		}

		addr += 4
	}
}

// lift emits instructions in address order.
// Instructions falling through to an address not lifted next get an explicit jump.
func (s *scanner) lift(fn *Function) {
	f := fn.Func

	s.blocks.Range(func(slot int) bool {
		if s.insns[slot] != nil || s.failed.IsSet(slot) {
			addr := s.addr(slot)

			f.AddLabelForAddress(addr)
			fn.Blocks = append(fn.Blocks, addr)
		}

		return true
	})

	pending := false
	var next uint64

	for slot := range s.insns {
		in := s.insns[slot]
		failed := s.failed.IsSet(slot)

		if in == nil && !failed {
			continue
		}

		addr := s.addr(slot)

		if pending && next != addr {
			fallTo(f, next)
		}

		f.MarkAddress(addr)

		if failed {
			f.SetAddr(addr)
			f.Emit(f.Undefined())

			fn.Failed = append(fn.Failed, addr)
			pending = false

			continue
		}

		fn.Insns = append(fn.Insns, in)

		pending = lift.Lift(in, f)
		next = addr + 4
	}

	if pending {
		fallTo(f, next)
	}

	sort.Slice(fn.Calls, func(i, j int) bool { return fn.Calls[i] < fn.Calls[j] })
}

func fallTo(f *il.Func, addr uint64) {
	if l, ok := f.LabelForAddress(addr); ok {
		f.Emit(f.Goto(l))
		return
	}

	f.Emit(f.Jump(f.ConstPtr(ppc.AddrSize, int64(addr))))
}

func resolveFlags(fn *Function) {
	code := fn.Code

	for _, id := range code {
		for _, fv := range lift.FlagWrites(fn.Func, id) {
			fn.Flags = append(fn.Flags, fv)
			fn.Written.Set(fv.Flag)
		}
	}
}

func (s *scanner) slot(addr uint64) (int, bool) {
	if addr < s.base || (addr-s.base)%4 != 0 {
		return 0, false
	}

	slot := (addr - s.base) / 4
	if slot >= uint64(len(s.insns)) {
		return 0, false
	}

	return int(slot), true
}

func (s *scanner) addr(slot int) uint64 { return s.base + uint64(slot)*4 }

func jobsLess(d []job, i, j int) bool {
	return d[i].addr < d[j].addr
}

func (js *jobs) Push(j job) {
	tlog.V("jobs_push").Printw("job pushed", "job", j, "from", loc.Caller(1))

	for _, j0 := range js.Data {
		if j0.addr == j.addr {
			return
		}
	}

	js.Heap.Push(j)
}

func (j job) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)

	b = e.AppendKey(b, "addr")
	b = e.AppendSemantic(b, tlwire.Hex)
	b = e.AppendUint64(b, j.addr)

	b = e.AppendKey(b, "from")
	b = e.AppendSemantic(b, tlwire.Hex)
	b = e.AppendUint64(b, j.from)

	return b
}
