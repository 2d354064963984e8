// Package scene describes the entities of a session in YAML and spawns them into a world.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/akmonengine/dogfight"
	"github.com/akmonengine/dogfight/building"
	"github.com/akmonengine/dogfight/collision"
	"github.com/akmonengine/dogfight/flight"
	"github.com/akmonengine/dogfight/inventory"
	"github.com/akmonengine/dogfight/model"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrInvalidModel = errors.New("invalid model")
	ErrInvalidScene = errors.New("invalid scene")
)

type Description struct {
	Models    []ModelSpec    `yaml:"models"`
	Terrain   *TerrainSpec   `yaml:"terrain"`
	Aircraft  []AircraftSpec `yaml:"aircraft"`
	Squadrons []SquadronSpec `yaml:"squadrons"`
	Buildings []BuildingSpec `yaml:"buildings"`
}

// ModelSpec defines a mesh from exactly one of its sources
type ModelSpec struct {
	Name     string       `yaml:"name"`
	Box      *BoxSpec     `yaml:"box"`
	Grid     *GridSpec    `yaml:"grid"`
	Vertices []mgl32.Vec3 `yaml:"vertices"`
}

type BoxSpec struct {
	Min mgl32.Vec3 `yaml:"min"`
	Max mgl32.Vec3 `yaml:"max"`
}

// GridSpec is a flat square grid of Cells x Cells cells centered on the origin, at height Y
type GridSpec struct {
	Size  float32 `yaml:"size"`
	Cells int     `yaml:"cells"`
	Y     float32 `yaml:"y"`
}

// Rotation is an axis-angle orientation, the identity when Axis is zero
type Rotation struct {
	Axis    mgl32.Vec3 `yaml:"axis"`
	Degrees float32    `yaml:"degrees"`
}

func (r Rotation) Quat() mgl32.Quat {
	if r.Axis.LenSqr() == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(mgl32.DegToRad(r.Degrees), r.Axis.Normalize()).Normalize()
}

type TerrainSpec struct {
	Model     string     `yaml:"model"`
	Position  mgl32.Vec3 `yaml:"position"`
	Rotation  Rotation   `yaml:"rotation"`
	Precision string     `yaml:"precision"`
}

type AircraftSpec struct {
	Pilot    string          `yaml:"pilot"`
	Model    string          `yaml:"model"`
	Envelope flight.Envelope `yaml:"envelope"`
	Position mgl32.Vec3      `yaml:"position"`
	Rotation Rotation        `yaml:"rotation"`
}

// SquadronSpec spawns Count AI aircraft at random positions inside Area
type SquadronSpec struct {
	Count    int             `yaml:"count"`
	Model    string          `yaml:"model"`
	Envelope flight.Envelope `yaml:"envelope"`
	Area     BoxSpec         `yaml:"area"`
}

type BuildingSpec struct {
	Kind         string         `yaml:"kind"`
	Position     mgl32.Vec3     `yaml:"position"`
	Rotation     Rotation       `yaml:"rotation"`
	SupplyRange  *float32       `yaml:"supply_range"`
	SupplyPeriod time.Duration  `yaml:"supply_period"`
	Supply       inventory.Ammo `yaml:"supply"`
}

var (
	playerEnvelope = flight.Envelope{
		MaxSpeed: 6, MinSpeed: 0, Acceleration: 5,
		YawMaxSpeed: 2, YawAcceleration: 5,
		PitchMaxSpeed: 3, PitchAcceleration: 6,
	}
	enemyEnvelope = flight.Envelope{
		MaxSpeed: 20, MinSpeed: 1, Acceleration: 5,
		YawMaxSpeed: 5, YawAcceleration: 10,
		PitchMaxSpeed: 3, PitchAcceleration: 6,
	}
)

// Default is the built-in skirmish: a player, a nearby enemy, a squadron of ten
// scattered enemies, the terrain and a supplying factory.
func Default() Description {
	factoryRange := float32(10)

	return Description{
		Models: []ModelSpec{
			{Name: "aircraft", Box: &BoxSpec{Min: mgl32.Vec3{-1, -0.25, -1}, Max: mgl32.Vec3{1, 0.25, 1}}},
			{Name: "terrain", Grid: &GridSpec{Size: 1000, Cells: 20}},
		},
		Terrain: &TerrainSpec{
			Model:     "terrain",
			Precision: collision.PrecisionVertex.String(),
		},
		Aircraft: []AircraftSpec{
			{Pilot: flight.PilotPlayer.String(), Model: "aircraft", Envelope: playerEnvelope, Position: mgl32.Vec3{0, 6, 10}},
			{Pilot: flight.PilotAI.String(), Model: "aircraft", Envelope: enemyEnvelope, Position: mgl32.Vec3{30, 6, 30}},
		},
		Squadrons: []SquadronSpec{
			{
				Count:    10,
				Model:    "aircraft",
				Envelope: enemyEnvelope,
				Area:     BoxSpec{Min: mgl32.Vec3{-500, 10, -500}, Max: mgl32.Vec3{500, 100, 500}},
			},
		},
		Buildings: []BuildingSpec{
			{
				Kind:         building.KindFactory.String(),
				Position:     mgl32.Vec3{0, 1, 0},
				SupplyRange:  &factoryRange,
				SupplyPeriod: time.Second,
				Supply:       inventory.Ammo{Bullets: 100, Rockets: 2, EnergyCells: 1},
			},
		},
	}
}

// Load decodes a scene. Unknown keys are rejected.
func Load(r io.Reader) (Description, error) {
	var d Description

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&d); err != nil {
		return Description{}, fmt.Errorf("decode scene: %w", err)
	}
	return d, nil
}

func LoadFile(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return Description{}, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Build spawns the description into w. Random placements draw from w.Rand().
// Entities spawned before an error are kept.
func Build(w *dogfight.World, d Description) error {
	models := make(map[string]int, len(d.Models))
	for _, spec := range d.Models {
		index, err := w.Models.GetOrAdd(spec.Name, spec.build)
		if err != nil {
			return err
		}
		models[spec.Name] = index
	}
	lookup := func(name string) (int, error) {
		index, ok := models[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownModel, name)
		}
		return index, nil
	}

	if t := d.Terrain; t != nil {
		index, err := lookup(t.Model)
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		precision, err := parsePrecision(t.Precision)
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		if _, err := w.AddObstacle(index, t.Position, t.Rotation.Quat(), precision); err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
	}

	for i, a := range d.Aircraft {
		if err := addAircraft(w, lookup, a); err != nil {
			return fmt.Errorf("aircraft %d: %w", i, err)
		}
	}

	rng := w.Rand()
	for i, squadron := range d.Squadrons {
		if squadron.Count < 0 || !validBox(squadron.Area) {
			return fmt.Errorf("squadron %d: %w: negative count or inverted area", i, ErrInvalidScene)
		}
		for range squadron.Count {
			area := squadron.Area
			position := mgl32.Vec3{
				area.Min.X() + rng.Float32()*(area.Max.X()-area.Min.X()),
				area.Min.Y() + rng.Float32()*(area.Max.Y()-area.Min.Y()),
				area.Min.Z() + rng.Float32()*(area.Max.Z()-area.Min.Z()),
			}
			spec := AircraftSpec{
				Pilot:    flight.PilotAI.String(),
				Model:    squadron.Model,
				Envelope: squadron.Envelope,
				Position: position,
			}
			if err := addAircraft(w, lookup, spec); err != nil {
				return fmt.Errorf("squadron %d: %w", i, err)
			}
		}
	}

	for i, b := range d.Buildings {
		kind, err := building.ParseKind(b.Kind)
		if err != nil {
			return fmt.Errorf("building %d: %w: %w", i, ErrInvalidScene, err)
		}
		_, err = w.AddBuilding(building.Spec{
			Kind:         kind,
			SupplyRange:  b.SupplyRange,
			SupplyPeriod: b.SupplyPeriod,
			Supply:       b.Supply,
			Position:     b.Position,
			Rotation:     b.Rotation.Quat(),
		})
		if err != nil {
			return fmt.Errorf("building %d: %w", i, err)
		}
	}

	w.Logger().Info("scene built",
		zap.Int("models", w.Models.Len()),
		zap.Int("aircraft", w.Aircraft.Len()),
		zap.Int("colliders", w.Colliders.Len()),
		zap.Int("buildings", w.Buildings.Len()),
	)
	return nil
}

func addAircraft(w *dogfight.World, lookup func(string) (int, error), a AircraftSpec) error {
	index, err := lookup(a.Model)
	if err != nil {
		return err
	}
	pilot, err := parsePilot(a.Pilot)
	if err != nil {
		return err
	}

	_, err = w.AddAircraft(flight.Spec{
		Pilot:         pilot,
		Envelope:      a.Envelope,
		StartPosition: a.Position,
		StartRotation: a.Rotation.Quat(),
	}, index)
	return err
}

func (m ModelSpec) build() (*model.Model, error) {
	switch {
	case m.Box != nil:
		if !validBox(*m.Box) {
			return nil, fmt.Errorf("%w: box min above max", ErrInvalidModel)
		}
		return model.NewBox(m.Name, m.Box.Min, m.Box.Max)
	case m.Grid != nil:
		return grid(m.Name, *m.Grid)
	}
	return model.New(m.Name, m.Vertices)
}

func grid(name string, g GridSpec) (*model.Model, error) {
	if g.Cells < 1 || g.Size <= 0 {
		return nil, fmt.Errorf("%w: grid needs cells >= 1 and size > 0", ErrInvalidModel)
	}

	step := g.Size / float32(g.Cells)
	half := g.Size / 2
	vertices := make([]mgl32.Vec3, 0, (g.Cells+1)*(g.Cells+1))
	for i := range g.Cells + 1 {
		for j := range g.Cells + 1 {
			vertices = append(vertices, mgl32.Vec3{float32(i)*step - half, g.Y, float32(j)*step - half})
		}
	}
	return model.New(name, vertices)
}

func validBox(b BoxSpec) bool {
	return collision.AABB{Min: b.Min, Max: b.Max}.Valid()
}

func parsePilot(s string) (flight.Pilot, error) {
	switch s {
	case flight.PilotPlayer.String():
		return flight.PilotPlayer, nil
	case flight.PilotAI.String():
		return flight.PilotAI, nil
	}
	return 0, fmt.Errorf("%w: unknown pilot %q", ErrInvalidScene, s)
}

func parsePrecision(s string) (collision.Precision, error) {
	switch s {
	case "", collision.PrecisionBox.String():
		return collision.PrecisionBox, nil
	case collision.PrecisionVertex.String():
		return collision.PrecisionVertex, nil
	}
	return 0, fmt.Errorf("%w: unknown precision %q", ErrInvalidScene, s)
}
