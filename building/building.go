// Package building holds static structures. A factory with a supply range
// periodically hands ammunition to every recipient close enough.
package building

import (
	"errors"
	"fmt"
	"time"

	"github.com/akmonengine/dogfight/inventory"
	"github.com/akmonengine/dogfight/transform"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidSupply = errors.New("invalid supply settings")

type Kind uint8

const (
	KindFactory Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindFactory:
		return "factory"
	}
	return "unknown"
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "factory":
		return KindFactory, nil
	}
	return 0, fmt.Errorf("unknown building kind %q", s)
}

// Spec describes a building to place.
// A nil SupplyRange disables supplying.
type Spec struct {
	Kind         Kind
	SupplyRange  *float32
	SupplyPeriod time.Duration
	Supply       inventory.Ammo
	Position     mgl32.Vec3
	Rotation     mgl32.Quat
}

// Recipient is anything that can be supplied: a position and an inventory
type Recipient struct {
	Transform int
	Inventory int
}

// PositionReader gives the world position of a transform slot
type PositionReader interface {
	Position(index int) mgl32.Vec3
}

type Store struct {
	kind         []Kind
	supplyRange  []*float32
	supplyPeriod []time.Duration
	supply       []inventory.Ammo
	timer        []time.Duration

	transform []int
	inventory []int
}

func NewStore() *Store {
	return &Store{}
}

// Add places a building with its own transform and inventory slots
func (s *Store) Add(spec Spec, transforms *transform.Store, inventories *inventory.Store) (int, error) {
	if spec.SupplyRange != nil {
		if *spec.SupplyRange < 0 {
			return 0, fmt.Errorf("%w: negative range %v", ErrInvalidSupply, *spec.SupplyRange)
		}
		if spec.SupplyPeriod <= 0 {
			return 0, fmt.Errorf("%w: period must be > 0, got %s", ErrInvalidSupply, spec.SupplyPeriod)
		}
	}

	s.kind = append(s.kind, spec.Kind)
	s.supplyRange = append(s.supplyRange, spec.SupplyRange)
	s.supplyPeriod = append(s.supplyPeriod, spec.SupplyPeriod)
	s.supply = append(s.supply, spec.Supply)
	s.timer = append(s.timer, 0)
	s.transform = append(s.transform, transforms.Add(spec.Position, spec.Rotation))
	s.inventory = append(s.inventory, inventories.Add())

	return len(s.kind) - 1, nil
}

func (s *Store) Len() int {
	return len(s.kind)
}

func (s *Store) Kind(index int) Kind {
	return s.kind[index]
}

func (s *Store) TransformIndex(index int) int {
	return s.transform[index]
}

func (s *Store) InventoryIndex(index int) int {
	return s.inventory[index]
}

// Update advances the supply timers by dt. Each building whose period elapsed
// gives its supply to every recipient within range, at most once per call.
// It returns the number of deliveries.
func (s *Store) Update(dt time.Duration, transforms PositionReader, inventories *inventory.Store, recipients []Recipient) int {
	deliveries := 0

	for i := range s.kind {
		if s.supplyRange[i] == nil {
			continue
		}

		s.timer[i] += dt
		if s.timer[i] < s.supplyPeriod[i] {
			continue
		}
		s.timer[i] -= s.supplyPeriod[i]

		center := transforms.Position(s.transform[i])
		reach := *s.supplyRange[i]
		for _, r := range recipients {
			if transforms.Position(r.Transform).Sub(center).LenSqr() > reach*reach {
				continue
			}
			inventories.Give(r.Inventory, s.supply[i])
			deliveries++
		}
	}

	return deliveries
}
