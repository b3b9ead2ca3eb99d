package process

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	Register[int, int]("wire.double", func(x int) (int, error) {
		if x < 0 {
			return 0, errors.New("negative")
		}
		return 2 * x, nil
	})
}

func TestServe(t *testing.T) {
	in := strings.Join([]string{
		`{"seq":0,"fn":"wire.double","in":21}`,
		`{"seq":1,"fn":"wire.double","in":-1}`,
		`{"seq":2,"fn":"wire.triple","in":1}`,
		`{"seq":3,"fn":"wire.double","in":"x"}`,
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, Serve(strings.NewReader(in), &out))

	dec := json.NewDecoder(&out)
	var responses []response
	for dec.More() {
		var resp response
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, 4)
	assert.Equal(t, 0, responses[0].Seq)
	assert.JSONEq(t, `42`, string(responses[0].Out))
	assert.Empty(t, responses[0].Err)
	assert.Equal(t, "negative", responses[1].Err)
	assert.Contains(t, responses[2].Err, `unknown transform "wire.triple"`)
	assert.Contains(t, responses[3].Err, "decode input")
}

func TestServeRejectsGarbage(t *testing.T) {
	var out bytes.Buffer
	err := Serve(strings.NewReader("not json\n"), &out)
	assert.Error(t, err)
}
