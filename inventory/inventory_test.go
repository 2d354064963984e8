package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_AddStartsEmpty(t *testing.T) {
	s := NewStore()

	first := s.Add()
	second := s.Add()

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Ammo(second).IsZero())
}

func TestStore_Give(t *testing.T) {
	s := NewStore()
	a, b := s.Add(), s.Add()

	s.Give(a, Ammo{Bullets: 100, Rockets: 2})
	s.Give(a, Ammo{Bullets: 50, EnergyCells: 1})

	assert.Equal(t, 150, s.Bullets(a))
	assert.Equal(t, 2, s.Rockets(a))
	assert.Equal(t, 1, s.EnergyCells(a))
	assert.True(t, s.Ammo(b).IsZero(), "other inventories are untouched")
}

func TestStore_OutOfRangePanics(t *testing.T) {
	s := NewStore()

	assert.Panics(t, func() { s.Give(0, Ammo{Bullets: 1}) })
}
