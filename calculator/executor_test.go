package calculator

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchCoversEveryIndexOnce(t *testing.T) {
	e := newExecutor(3)
	defer e.close()

	for _, total := range []int{1, 2, 5, 6, 7, 40, 101} {
		hits := make([]int32, total)
		_, err := e.dispatch(total, func(start, end int) error {
			for k := start; k < end; k++ {
				atomic.AddInt32(&hits[k], 1)
			}
			return nil
		})
		require.NoError(t, err)
		for k, h := range hits {
			assert.Equal(t, int32(1), h, "total %d index %d", total, k)
		}
	}
}

func TestDispatchReturnsTaskError(t *testing.T) {
	e := newExecutor(4)
	defer e.close()

	boom := errors.New("boom")
	_, err := e.dispatch(20, func(start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)

	// 出错之后池仍然可用
	_, err = e.dispatch(20, func(int, int) error { return nil })
	assert.NoError(t, err)
}
