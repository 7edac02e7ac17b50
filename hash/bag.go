package hash

import "github.com/jbarham/primegen"

// Bag appends to dst the bucket of every nonzero code. Code 0 is padding and is skipped.
func Bag(dst []uint32, codes []uint32, salt, buckets uint32) []uint32 {
	for _, c := range codes {
		if c == 0 {
			continue
		}
		dst = append(dst, Hash(c, salt, buckets))
	}
	return dst
}

// Buckets returns the smallest prime not below n, the bucket count used for
// hashing n requested buckets. Primes spread the multiply shift reduction
// more evenly over codes that share low bits.
func Buckets(n uint32) uint32 {
	if n < 2 {
		return 2
	}
	p := primegen.New()
	p.SkipTo(uint64(n))
	return uint32(p.Next())
}
