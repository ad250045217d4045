package dbg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	var p *int
	assert.Equal(t, "Ø", Name(nil))
	assert.Equal(t, "Ø", Name(p))

	x, y := new(int), new(int)
	assert.Equal(t, Name(x), Name(x))
	assert.NotEqual(t, Name(x), Name(y))
	assert.NotPanics(t, func() { Name(42) })
}

func TestHandle(t *testing.T) {
	assert.Equal(t, "Ø", Handle('t', 0))
	assert.Equal(t, Handle('t', 7), Handle('t', 7))
	assert.NotEqual(t, Handle('t', 7), Handle('s', 7))
}
