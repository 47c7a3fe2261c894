package csvimport

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []Row {
	t.Helper()
	var rows []Row
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestNewReader(t *testing.T) {
	t.Run("normalises the header", func(t *testing.T) {
		r, err := NewReader(strings.NewReader(" Code ,NAME,Gross_Weight\nRNG-1,Band,4.2\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"code", "name", "gross_weight"}, r.Header())
		assert.Empty(t, r.Missing("code", "name"))
		assert.Equal(t, []string{"metal"}, r.Missing("code", "metal"))
	})

	t.Run("strips a UTF-8 byte order mark", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("\xEF\xBB\xBFcode,name\nA,B\n"))
		require.NoError(t, err)
		assert.Equal(t, "code", r.Header()[0])
	})

	t.Run("decodes UTF-16 with a byte order mark", func(t *testing.T) {
		// "code\nA\n" in UTF-16LE
		data := []byte{0xFF, 0xFE, 'c', 0, 'o', 0, 'd', 0, 'e', 0, '\n', 0, 'A', 0, '\n', 0}
		r, err := NewReader(strings.NewReader(string(data)))
		require.NoError(t, err)
		rows := readAll(t, r)
		require.Len(t, rows, 1)
		assert.Equal(t, "A", rows[0].Get("code"))
	})

	t.Run("semicolon delimiter", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("code;name\nA;Ring\n"), WithDelimiter(';'))
		require.NoError(t, err)
		rows := readAll(t, r)
		assert.Equal(t, "Ring", rows[0].Get("name"))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := NewReader(strings.NewReader("  \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)

		_, err = NewReader(strings.NewReader("code,name\nA,\xc3\x28\n"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)

		_, err = NewReader(strings.NewReader(",,\n"))
		assert.ErrorIs(t, err, ErrMissingHeader)
	})
}

func TestReader_Next(t *testing.T) {
	r, err := NewReader(strings.NewReader("code,name,tags\nA, Ring ,x\n,,\nB,Bangle\n"))
	require.NoError(t, err)

	rows := readAll(t, r)
	require.Len(t, rows, 2, "blank lines are skipped")
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Ring", rows[0].Get("name"))
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "", rows[1].Get("tags"), "short rows read as blank")
	assert.Equal(t, "", rows[1].Get("unknown"))
}
