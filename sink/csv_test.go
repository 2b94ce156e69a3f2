package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_Format(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCSVWriter(&buf)

	require.NoError(t, cw.PushRow([]float64{0, 1.5, -2.25}))
	require.NoError(t, cw.PushRow([]float64{3}))

	assert.Equal(t, "0,1.5,-2.25\n3\n", buf.String())
}

func TestCSVWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")

	cw, err := NewCSVFile(path)
	require.NoError(t, err)

	require.NoError(t, cw.PushRow([]float64{1, 2}))
	require.NoError(t, cw.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,2\n", string(data))
}

func TestCSVWriter_CloseIdempotentFlush(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCSVWriter(&buf)

	require.NoError(t, cw.PushRow([]float64{7}))
	require.NoError(t, cw.Close())
	assert.Equal(t, "7\n", buf.String())
}
