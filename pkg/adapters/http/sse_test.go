package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUnits(t *testing.T) {
	input := "data: one\r\n\r\n" +
		": comment\n\n" +
		"event: error\ndata: a\ndata: b\n\n" +
		"\n\n" +
		"data: tail-without-blank-line"

	var units []Unit
	require.NoError(t, ReadUnits(strings.NewReader(input), func(u Unit) bool {
		units = append(units, u)
		return true
	}))

	assert.Equal(t, []Unit{
		{Data: "one"},
		{Event: "error", Data: "a\nb"},
	}, units)
}

func TestReadUnits_Stop(t *testing.T) {
	count := 0
	require.NoError(t, ReadUnits(strings.NewReader("data: 1\n\ndata: 2\n\n"), func(Unit) bool {
		count++
		return false
	}))
	assert.Equal(t, 1, count)
}
