package decode

import (
	"encoding/binary"
	"fmt"

	"tlog.app/go/errors"

	"github.com/slowlang/ppclift/lifter/ppc"
)

type (
	Mode int

	// Context decodes words of one byte order and instruction subset.
	// A Context is not safe for concurrent use, create one per goroutine.
	Context struct {
		mode Mode
		ord  binary.ByteOrder

		closed bool
	}

	// Contexts holds one Context per Mode.
	Contexts struct {
		ctx [numModes]*Context
	}

	// Error reports an undecodable word.
	Error struct {
		Addr uint64
		Word uint32
		Err  error
	}
)

const (
	BigEndian Mode = iota
	LittleEndian
	PairedSingles

	numModes
)

var (
	ErrShort       = errors.New("need 4 bytes")
	ErrUnknown     = errors.New("unknown instruction")
	ErrUnsupported = errors.New("unsupported instruction")
	ErrClosed      = errors.New("context closed")
	ErrMode        = errors.New("unknown mode")
	ErrInit        = errors.New("decoder init failed")
)

func NewContext(m Mode) (*Context, error) {
	c := &Context{mode: m}

	switch m {
	case BigEndian, PairedSingles:
		c.ord = binary.BigEndian
	case LittleEndian:
		c.ord = binary.LittleEndian
	default:
		return nil, errors.Wrap(ErrMode, "mode %d", int(m))
	}

	if err := initTables(); err != nil {
		return nil, errors.Wrap(ErrInit, "%v", err)
	}

	return c, nil
}

// Open creates contexts for all modes.
// Failure of any of them fails all.
func Open() (*Contexts, error) {
	cs := &Contexts{}

	for m := Mode(0); m < numModes; m++ {
		c, err := NewContext(m)
		if err != nil {
			return nil, errors.Wrap(err, "%v", m)
		}

		cs.ctx[m] = c
	}

	return cs, nil
}

func (cs *Contexts) Get(m Mode) (*Context, error) {
	if m < 0 || m >= numModes {
		return nil, errors.Wrap(ErrMode, "mode %d", int(m))
	}

	c := cs.ctx[m]
	if c == nil || c.closed {
		return nil, ErrClosed
	}

	return c, nil
}

func (cs *Contexts) Close() error {
	for _, c := range cs.ctx {
		if c != nil {
			_ = c.Close()
		}
	}

	return nil
}

func (c *Context) Mode() Mode { return c.mode }

func (c *Context) Close() error {
	c.closed = true

	return nil
}

// RegName returns register name as this context prints it, empty if unknown.
func (c *Context) RegName(r ppc.Reg) string {
	if c == nil || !r.Valid() {
		return ""
	}

	return r.String()
}

func (m Mode) String() string {
	switch m {
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	case PairedSingles:
		return "ps"
	}

	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses a Mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	for m := Mode(0); m < numModes; m++ {
		if m.String() == s {
			return m, nil
		}
	}

	return 0, errors.Wrap(ErrMode, "%q", s)
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode %#x: %v (word %#08x)", e.Addr, e.Err, e.Word)
}

func (e *Error) Unwrap() error { return e.Err }
