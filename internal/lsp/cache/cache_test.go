package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("test")
	assert.Equal(t, "test", s.ID())

	s.Open("file:///b.parm", 1, "B, 1\n")
	s.Open("file:///a.parm", 1, "A, 1\r\nA, 2\n")
	assert.Equal(t, []string{"file:///a.parm", "file:///b.parm"}, s.URIs())

	d, ok := s.Document("file:///a.parm")
	require.True(t, ok)
	assert.Equal(t, "A, 2", d.Line(1))
	assert.Equal(t, "A, 1", d.Line(0))
	assert.Equal(t, "", d.Line(5))

	s.Close("file:///b.parm")
	_, ok = s.Document("file:///b.parm")
	assert.False(t, ok)
}

func TestSessionIgnoresStaleUpdates(t *testing.T) {
	s := NewSession("test")
	s.Open("file:///a.parm", 3, "A, 3\n")

	d := s.Update("file:///a.parm", 2, "A, 2\n")
	assert.Equal(t, "A, 3\n", d.Text)

	d = s.Update("file:///a.parm", 4, "A, 4\n")
	assert.Equal(t, "A, 4\n", d.Text)
	assert.Equal(t, 4, d.Version)
}
