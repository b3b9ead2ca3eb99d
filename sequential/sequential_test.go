package sequential_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/sequential"
)

func ExampleMap() {
	squares, err := sequential.Map(context.Background(), []int{1, 2, 3, 4},
		func(x int) (int, error) { return x * x, nil },
		parmap.FailFast,
	)
	fmt.Println(squares, err)

	// Output:
	// [1 4 9 16] <nil>
}

func TestMapEmpty(t *testing.T) {
	results, err := sequential.Map(context.Background(), nil, strconv.Atoi, parmap.FailFast)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestMapFailFastStopsAtFirstFailure(t *testing.T) {
	var calls []int
	f := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		calls = append(calls, n)
		return n, err
	}
	results, err := sequential.Map(context.Background(), []string{"1", "2", "bad", "4"}, f, parmap.FailFast)
	assert.Nil(t, results)
	var te *parmap.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 2, te.Index)
	assert.Len(t, calls, 3)
}

func TestMapCollect(t *testing.T) {
	results, err := sequential.Map(context.Background(), []string{"1", "x", "3", "y"}, strconv.Atoi, parmap.CollectErrors)
	var pe *parmap.PartialError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []int{1, 3}, pe.Indices())
	assert.Equal(t, []int{1, 0, 3, 0}, results)
}

func TestMapPanic(t *testing.T) {
	_, err := sequential.Map(context.Background(), []int{0, 1}, func(x int) (int, error) {
		return 1 / x, nil
	}, parmap.FailFast)
	var te *parmap.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, te.Index)
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	results, err := sequential.Map(ctx, []int{1, 2, 3}, func(x int) (int, error) {
		if x == 2 {
			cancel()
		}
		return x, nil
	}, parmap.CollectErrors)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, results)
}
