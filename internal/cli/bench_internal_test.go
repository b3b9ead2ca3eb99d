package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/kernels"
	"github.com/exascience/parmap/stopwatch"
)

func TestBenchCasesSkipsUnavailableStrategies(t *testing.T) {
	st := &state{logger: zerolog.Nop()}
	inputs := []int{1, 2, 3, 4, 5}
	baseline := []bool{false, true, true, false, true}
	elemOnly := batch.Func[int, bool](kernels.IsPrime)
	cases := []benchCase{
		{"vectorized", []batch.Option{batch.WithStrategy(parmap.Vectorized)}},
		{"multiprocess", []batch.Option{batch.WithStrategy(parmap.Process)}},
		{"multithread", []batch.Option{batch.WithStrategy(parmap.Thread), batch.WithWorkers(2)}},
	}

	run := stopwatch.NewRun()
	err := st.benchCases(context.Background(), run, inputs, elemOnly, baseline, nil, cases, 1)
	require.NoError(t, err)
	summaries := run.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "multithread", summaries[0].Label)
}

func TestBenchCasesReportsFailures(t *testing.T) {
	st := &state{logger: zerolog.Nop()}
	cause := errors.New("worker crashed")
	failing := batch.Func[int, bool](func(n int) (bool, error) {
		if n == 3 {
			return false, cause
		}
		return kernels.IsPrime(n)
	})
	cases := []benchCase{
		{"vectorized", []batch.Option{batch.WithStrategy(parmap.Vectorized)}},
		{"multithread", []batch.Option{batch.WithStrategy(parmap.Thread), batch.WithWorkers(2)}},
	}

	run := stopwatch.NewRun()
	err := st.benchCases(context.Background(), run, []int{1, 2, 3}, failing, []bool{false, true, true}, nil, cases, 1)
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "multithread")
	assert.Empty(t, run.Summaries())
}
