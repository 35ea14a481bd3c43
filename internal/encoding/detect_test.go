package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/tripline/internal/encoding"
)

func decode(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "trip;origin;destination\nT1;Cox’s Bazar;Chattogram\n"
	assert.Equal(t, input, decode(t, []byte(input)))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Café;Zürich\n" in Windows-1252.
	input := []byte{'C', 'a', 'f', 0xE9, ';', 'Z', 0xFC, 'r', 'i', 'c', 'h', '\n'}
	assert.Equal(t, "Café;Zürich\n", decode(t, input))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, "trip;date\n"...)
	assert.Equal(t, "trip;date\n", decode(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()

	input, err := enc.Bytes([]byte("trip,date\nT1,2025-06-13\n"))
	require.NoError(t, err)

	assert.Equal(t, "trip,date\nT1,2025-06-13\n", decode(t, input))
}

func TestDetect_RuneCutAtSniffWindow(t *testing.T) {
	// 4095 ASCII bytes followed by the first byte of "é".
	buf := append([]byte(strings.Repeat("a", 4095)), 0xC3)

	assert.Equal(t, encoding.UTF8, encoding.Detect(buf))
}
