package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moqsien/sxnet/iface"
)

type fakeLoop struct {
	idx   int
	conns int32
}

func (that *fakeLoop) AddConnCount(i int32) int32 { that.conns += i; return that.conns }
func (that *fakeLoop) GetConnCount() int32        { return that.conns }
func (that *fakeLoop) RemoveConn(fd int)          {}
func (that *fakeLoop) GetIndex() int              { return that.idx }

func register(b iface.IBalancer, n int) []*fakeLoop {
	loops := make([]*fakeLoop, n)
	for i := range loops {
		loops[i] = &fakeLoop{idx: i}
		b.Register(loops[i])
	}
	return loops
}

func TestRoundRobinCycles(t *testing.T) {
	b := New(iface.RoundRobinLB)
	register(b, 3)
	require.Equal(t, 3, b.Len())

	var got []int
	for i := 0; i < 7; i++ {
		got = append(got, b.Next().GetIndex())
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)
}

func TestLeastConnPicksIdle(t *testing.T) {
	b := New(iface.LeastConnLB)
	loops := register(b, 3)
	loops[0].conns, loops[1].conns, loops[2].conns = 4, 1, 2
	assert.Equal(t, 1, b.Next().GetIndex())

	loops[1].conns = 9
	assert.Equal(t, 2, b.Next().GetIndex())
}

func TestEmptyBalancer(t *testing.T) {
	assert.Nil(t, New(iface.RoundRobinLB).Next())
	assert.Nil(t, New(iface.LeastConnLB).Next())
}

func TestIteratorStops(t *testing.T) {
	b := New(iface.RoundRobinLB)
	register(b, 4)
	var seen []int
	b.Iterator(func(key int, val iface.IELoop) bool {
		seen = append(seen, key)
		return key < 1
	})
	assert.Equal(t, []int{0, 1}, seen)
}
