// Package inventory stores ammunition counts, one slot per owner.
package inventory

// Ammo is an amount of every ammunition kind
type Ammo struct {
	Bullets     int `yaml:"bullets"`
	Rockets     int `yaml:"rockets"`
	EnergyCells int `yaml:"energy_cells"`
}

func (a Ammo) IsZero() bool {
	return a == Ammo{}
}

type Store struct {
	bullets     []int
	rockets     []int
	energyCells []int
}

func NewStore() *Store {
	return &Store{}
}

// Add creates an empty inventory and returns its index
func (s *Store) Add() int {
	s.bullets = append(s.bullets, 0)
	s.rockets = append(s.rockets, 0)
	s.energyCells = append(s.energyCells, 0)

	return len(s.bullets) - 1
}

func (s *Store) Len() int {
	return len(s.bullets)
}

func (s *Store) Bullets(index int) int {
	return s.bullets[index]
}

func (s *Store) Rockets(index int) int {
	return s.rockets[index]
}

func (s *Store) EnergyCells(index int) int {
	return s.energyCells[index]
}

// Ammo returns every count of an inventory at once
func (s *Store) Ammo(index int) Ammo {
	return Ammo{
		Bullets:     s.bullets[index],
		Rockets:     s.rockets[index],
		EnergyCells: s.energyCells[index],
	}
}

// Give adds ammo to an inventory
func (s *Store) Give(index int, ammo Ammo) {
	s.bullets[index] += ammo.Bullets
	s.rockets[index] += ammo.Rockets
	s.energyCells[index] += ammo.EnergyCells
}
