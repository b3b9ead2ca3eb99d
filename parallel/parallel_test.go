package parallel_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/parallel"
	"github.com/exascience/parmap/sequential"
)

type mapFunc func(context.Context, []int, parmap.Func[int, int], int, parmap.ErrorPolicy) ([]int, error)

var schedules = map[string]mapFunc{
	"static":  parallel.Map[int, int],
	"dynamic": parallel.MapDynamic[int, int],
}

func square(x int) (int, error) {
	return x * x, nil
}

func ExampleMap() {
	squares, err := parallel.Map(context.Background(), []int{1, 2, 3, 4, 5}, square, 2, parmap.FailFast)
	fmt.Println(squares, err)

	// Output:
	// [1 4 9 16 25] <nil>
}

func ExampleRange() {
	numDivisors := func(n int) int {
		var count atomic.Int64
		_ = parallel.Range(1, n+1, 4, func(low, high int) error {
			var sum int64
			for i := low; i < high; i++ {
				if (n % i) == 0 {
					sum++
				}
			}
			count.Add(sum)
			return nil
		})
		return int(count.Load())
	}

	fmt.Println(numDivisors(12))

	// Output:
	// 6
}

func TestRange(t *testing.T) {
	for _, n := range []int{0, 1, 3, 8, 100} {
		covered := make([]int32, 97)
		err := parallel.Range(0, len(covered), n, func(low, high int) error {
			for i := low; i < high; i++ {
				atomic.AddInt32(&covered[i], 1)
			}
			return nil
		})
		require.NoError(t, err)
		for i, c := range covered {
			assert.Equal(t, int32(1), c, "n=%d index %d", n, i)
		}
	}
}

func TestRangeLeftMostError(t *testing.T) {
	err := parallel.Range(0, 8, 8, func(low, _ int) error {
		if low >= 2 {
			return errors.New(strconv.Itoa(low))
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, "2", err.Error())
}

func TestRangePanics(t *testing.T) {
	assert.Panics(t, func() {
		_ = parallel.Range(0, 8, 4, func(low, _ int) error {
			if low == 6 {
				panic("boom")
			}
			return nil
		})
	})
	assert.Panics(t, func() { _ = parallel.Range(4, 2, 1, func(int, int) error { return nil }) })
}

func TestMapMatchesSequential(t *testing.T) {
	for name, m := range schedules {
		m := m
		t.Run(name, func(t *testing.T) {
			for size := 0; size <= 64; size++ {
				inputs := make([]int, size)
				for i := range inputs {
					inputs[i] = i - 7
				}
				want, err := sequential.Map(context.Background(), inputs, square, parmap.FailFast)
				require.NoError(t, err)
				for _, workers := range []int{1, 3, 16, 100} {
					got, err := m(context.Background(), inputs, square, workers, parmap.FailFast)
					require.NoError(t, err)
					assert.Equal(t, want, got, "size %d workers %d", size, workers)
				}
			}
		})
	}
}

func TestMapPreservesOrder(t *testing.T) {
	delayed := func(x int) (int, error) {
		time.Sleep(time.Duration(3-x) * 10 * time.Millisecond)
		return x * 10, nil
	}
	for name, m := range schedules {
		m := m
		t.Run(name, func(t *testing.T) {
			got, err := m(context.Background(), []int{0, 1, 2}, delayed, 3, parmap.FailFast)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 10, 20}, got)
		})
	}
}

func TestMapInvalidWorkers(t *testing.T) {
	for name, m := range schedules {
		m := m
		t.Run(name, func(t *testing.T) {
			for _, workers := range []int{0, -1} {
				_, err := m(context.Background(), []int{1}, square, workers, parmap.FailFast)
				assert.ErrorIs(t, err, parmap.ErrConfiguration)
			}
		})
	}
}

func TestMapFailFast(t *testing.T) {
	failAt := func(x int) (int, error) {
		if x == 5 {
			return 0, errors.New("five")
		}
		return x, nil
	}
	inputs := make([]int, 40)
	for i := range inputs {
		inputs[i] = i
	}
	for name, m := range schedules {
		m := m
		t.Run(name, func(t *testing.T) {
			got, err := m(context.Background(), inputs, failAt, 4, parmap.FailFast)
			assert.Nil(t, got)
			var te *parmap.TransformError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, 5, te.Index)
			assert.EqualError(t, te.Err, "five")
		})
	}
}

func TestMapCollect(t *testing.T) {
	odd := func(x int) (int, error) {
		if x%2 == 1 {
			return 0, fmt.Errorf("odd %d", x)
		}
		return x, nil
	}
	for name, m := range schedules {
		m := m
		t.Run(name, func(t *testing.T) {
			got, err := m(context.Background(), []int{0, 1, 2, 3, 4}, odd, 2, parmap.CollectErrors)
			var pe *parmap.PartialError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, []int{1, 3}, pe.Indices())
			assert.Equal(t, []int{0, 0, 2, 0, 4}, got)
		})
	}
}

func TestMapPanicBecomesTransformError(t *testing.T) {
	divide := func(x int) (int, error) { return 10 / x, nil }
	for name, m := range schedules {
		m := m
		t.Run(name, func(t *testing.T) {
			_, err := m(context.Background(), []int{1, 2, 0, 5}, divide, 2, parmap.FailFast)
			var te *parmap.TransformError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, 2, te.Index)
		})
	}
}

func TestMapCancelled(t *testing.T) {
	for name, m := range schedules {
		m := m
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			var started atomic.Int32
			slow := func(x int) (int, error) {
				if started.Add(1) == 2 {
					cancel()
				}
				time.Sleep(time.Millisecond)
				return x, nil
			}
			inputs := make([]int, 200)
			got, err := m(ctx, inputs, slow, 2, parmap.FailFast)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Nil(t, got)
			assert.Less(t, int(started.Load()), len(inputs))
		})
	}
}
