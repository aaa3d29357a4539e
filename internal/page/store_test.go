package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendDrainOnce(t *testing.T) {
	s := NewStore()
	a, b := &ParsedPage{Name: "a"}, &ParsedPage{Name: "b"}
	require.NoError(t, s.Append(a))
	require.NoError(t, s.Append(b))
	assert.Equal(t, 2, s.Len())

	pages, err := s.Drain()
	require.NoError(t, err)
	assert.Equal(t, []*ParsedPage{a, b}, pages)

	_, err = s.Drain()
	assert.ErrorIs(t, err, ErrStoreDrained)
	assert.ErrorIs(t, s.Append(a), ErrStoreDrained)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Append(&ParsedPage{Name: "a"}))
	_, err := s.Drain()
	require.NoError(t, err)

	s.Reset()
	require.NoError(t, s.Append(&ParsedPage{Name: "b"}))
	pages, err := s.Drain()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "b", pages[0].Name)
}

func TestStore_EmptyDrain(t *testing.T) {
	pages, err := NewStore().Drain()
	require.NoError(t, err)
	assert.Empty(t, pages)
}
