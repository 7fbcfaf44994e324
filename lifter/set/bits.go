package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	Key interface {
		~int | ~int64
	}

	// Bits is a growable bit set of keys counted from base.
	Bits[K Key] struct {
		base K
		b    []uint64
		b0   [1]uint64
	}
)

func MakeBits[K Key](base K) Bits[K] {
	s := Bits[K]{base: base}
	s.b = s.b0[:]

	return s
}

func Of[K Key](base K, keys ...K) Bits[K] {
	s := MakeBits(base)
	s.SetAll(keys...)

	return s
}

func (s *Bits[K]) Set(k K) {
	i, j := s.ij(k)
	if i < 0 {
		panic(k)
	}

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s *Bits[K]) SetAll(ks ...K) {
	for _, k := range ks {
		s.Set(k)
	}
}

// TestAndSet sets k and reports whether it was set before.
func (s *Bits[K]) TestAndSet(k K) bool {
	if s.IsSet(k) {
		return true
	}

	s.Set(k)

	return false
}

func (s *Bits[K]) Clear(k K) {
	i, j := s.ij(k)
	if i < 0 || i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

func (s Bits[K]) IsSet(k K) bool {
	i, j := s.ij(k)
	if i < 0 || i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *Bits[K]) Merge(x Bits[K]) {
	if s.base != x.base {
		panic(s)
	}

	s.grow(len(x.b) - 1)

	for i, w := range x.b {
		s.b[i] |= w
	}
}

func (s Bits[K]) Size() (r int) {
	for _, w := range s.b {
		r += bits.OnesCount64(w)
	}

	return r
}

func (s Bits[K]) Range(f func(k K) bool) {
	for i, w := range s.b {
		for w != 0 {
			j := bits.TrailingZeros64(w)
			w &^= 1 << j

			if !f(s.base + K(i*64+j)) {
				return
			}
		}
	}
}

// Keys returns set keys in ascending order.
func (s Bits[K]) Keys() []K {
	r := make([]K, 0, s.Size())

	s.Range(func(k K) bool {
		r = append(r, k)
		return true
	})

	return r
}

func (s *Bits[K]) Reset() {
	for i := range s.b {
		s.b[i] = 0
	}
}

func (s Bits[K]) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(k K) bool {
		b = e.AppendInt(b, int(k))
		return true
	})

	return e.AppendBreak(b)
}

func (s *Bits[K]) ij(k K) (i, j int) {
	p := int(k - s.base)
	if p < 0 {
		return -1, 0
	}

	return p / 64, p % 64
}

func (s *Bits[K]) grow(i int) {
	if s.b == nil {
		s.b = s.b0[:]
	}

	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}
