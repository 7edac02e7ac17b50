package parallel

import "crypto/sha256"
import "encoding/binary"
import "sync/atomic"
import "testing"

// digest order independence test
func TestDigest(t *testing.T) {
	const n = 100
	var want = sha256.New()
	var buf [4]byte
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[:], uint32(i*i))
		want.Write(buf[:])
	}
	d := NewDigest(n)
	ForEach(n, 8, func(i int) {
		i = n - 1 - i
		d.MustPut(i, uint32(i*i))
	})
	got := d.Sum()
	if string(got[:]) != string(want.Sum(nil)) {
		t.Errorf("digest bad hash: %x", got)
	}
}

func TestDigestDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("duplicate write did not panic")
		}
	}()
	d := NewDigest(3)
	d.MustPut(2, 1)
	d.MustPut(2, 1)
}

func TestForEach(t *testing.T) {
	var sum atomic.Int64
	ForEach(1000, 0, func(i int) {
		sum.Add(int64(i))
	})
	if sum.Load() != 999*1000/2 {
		t.Errorf("ForEach sum %d", sum.Load())
	}
	ForEach(0, 4, func(i int) {
		t.Errorf("body called for empty loop")
	})
	if Threads() < 1 {
		t.Errorf("Threads() = %d", Threads())
	}
}
