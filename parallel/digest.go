package parallel

import "crypto/sha256"
import "encoding/binary"
import "hash"
import "sync"

// Digest hashes n uint32 values written concurrently in any order. The sum
// equals the sha256 of the values in index order, so results computed with
// ForEach can be compared between runs regardless of scheduling.
type Digest struct {
	mut     sync.Mutex
	sha     hash.Hash
	ate     int
	values  []uint32
	written []bool
}

func NewDigest(n int) *Digest {
	return &Digest{
		sha:     sha256.New(),
		values:  make([]uint32, n),
		written: make([]bool, n),
	}
}

// MustPut stores value at position n. Writing the same position twice panics.
func (d *Digest) MustPut(n int, value uint32) {
	d.mut.Lock()
	defer d.mut.Unlock()
	if n < d.ate {
		panic("already consumed value")
	}
	if d.written[n] {
		panic("duplicate write")
	}
	d.values[n] = value
	d.written[n] = true

	// feed the contiguous written prefix so memory is released early
	var buf [4]byte
	for d.ate < len(d.values) && d.written[d.ate] {
		binary.LittleEndian.PutUint32(buf[:], d.values[d.ate])
		d.sha.Write(buf[:])
		d.ate++
	}
}

// Sum returns the digest. Positions never written hash as zero.
func (d *Digest) Sum() (ret [32]byte) {
	d.mut.Lock()
	defer d.mut.Unlock()
	var buf [4]byte
	for d.ate < len(d.values) {
		binary.LittleEndian.PutUint32(buf[:], d.values[d.ate])
		d.sha.Write(buf[:])
		d.ate++
	}
	copy(ret[:], d.sha.Sum(nil))
	return
}
