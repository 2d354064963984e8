// Package dogfight runs the simulation core of an arcade dogfight.
//
// A World owns every store. Each Step advances all of them with the same dt,
// in a fixed order: control inputs, flight, collision, buildings, then events.
package dogfight

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/akmonengine/dogfight/building"
	"github.com/akmonengine/dogfight/collision"
	"github.com/akmonengine/dogfight/config"
	"github.com/akmonengine/dogfight/control"
	"github.com/akmonengine/dogfight/diagnostics"
	"github.com/akmonengine/dogfight/flight"
	"github.com/akmonengine/dogfight/input"
	"github.com/akmonengine/dogfight/inventory"
	"github.com/akmonengine/dogfight/log"
	"github.com/akmonengine/dogfight/model"
	"github.com/akmonengine/dogfight/transform"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type World struct {
	Transforms  *transform.Store
	Aircraft    *flight.Store
	Inputs      *control.Store
	Colliders   *collision.Store
	Models      *model.Registry
	Inventories *inventory.Store
	Buildings   *building.Store
	Diagnostics *diagnostics.Sampler

	Events Events

	Workers int
	AIMode  flight.AIMode

	rand       *rand.Rand
	recipients []building.Recipient
	logger     *zap.Logger
	ticks      uint64
}

// New creates an empty world. cfg must have been validated.
func New(cfg config.Config, logger *zap.Logger) *World {
	logger = log.OrNop(logger)
	seed := cfg.Simulation.Seed

	w := &World{
		Transforms:  transform.NewStore(0),
		Aircraft:    flight.NewStore(cfg.Flight.Params()),
		Inputs:      control.NewStore(),
		Colliders:   collision.NewStore(),
		Models:      model.NewRegistry(),
		Inventories: inventory.NewStore(),
		Buildings:   building.NewStore(),
		Diagnostics: diagnostics.NewSampler(cfg.Simulation.DiagnosticsPeriod),
		Events:      NewEvents(),
		Workers:     max(1, cfg.Simulation.Workers),
		AIMode:      cfg.Simulation.Mode(),
		rand:        rand.New(rand.NewPCG(seed, seed)),
		logger:      logger,
	}

	w.Events.Subscribe(COLLISION_ENTER, func(event Event) {
		e := event.(CollisionEnterEvent)
		logger.Debug("collision enter", zap.Int("source", e.Source), zap.Int("partner", e.Partner))
	})
	w.Events.Subscribe(COLLISION_EXIT, func(event Event) {
		e := event.(CollisionExitEvent)
		logger.Debug("collision exit", zap.Int("source", e.Source), zap.Int("partner", e.Partner))
	})

	logger.Info("world created",
		zap.Int("workers", w.Workers),
		zap.Stringer("ai_mode", w.AIMode),
		zap.Uint64("seed", seed),
	)

	return w
}

// Rand is the seeded generator used for every random choice of the session
func (w *World) Rand() *rand.Rand {
	return w.rand
}

func (w *World) Logger() *zap.Logger {
	return w.logger
}

// Ticks returns the amount of steps run so far
func (w *World) Ticks() uint64 {
	return w.ticks
}

var aircraftCollider = collision.Options{
	Source:    true,
	Target:    true,
	Precision: collision.PrecisionBox,
}

// AddAircraft spawns an aircraft with a box collider built from a registered model,
// and an inventory that buildings can supply.
// Nothing is added when an error is returned. An unknown model index panics
// before any slot is created.
func (w *World) AddAircraft(spec flight.Spec, modelIndex int) (int, error) {
	mesh := w.Models.Get(modelIndex)
	if err := collision.CheckModel(mesh, aircraftCollider); err != nil {
		return 0, fmt.Errorf("add aircraft collider: %w", err)
	}

	index, err := w.Aircraft.Add(spec, w.Transforms, w.Inputs, w.rand)
	if err != nil {
		return 0, fmt.Errorf("add %s aircraft: %w", spec.Pilot, err)
	}
	refs := w.Aircraft.Refs(index)

	collider, err := w.Colliders.AddFromModel(mesh, refs.Transform, aircraftCollider)
	if err != nil {
		return 0, fmt.Errorf("add aircraft collider: %w", err)
	}
	w.Aircraft.SetCollider(index, collider)
	w.Aircraft.SetRenderable(index, modelIndex)

	inv := w.Inventories.Add()
	w.Aircraft.SetInventory(index, inv)
	w.recipients = append(w.recipients, building.Recipient{Transform: refs.Transform, Inventory: inv})

	w.logger.Info("aircraft spawned",
		zap.Int("index", index),
		zap.Stringer("pilot", spec.Pilot),
		zap.Float32s("position", spec.StartPosition[:]),
	)

	return index, nil
}

// AddObstacle places a static, target-only collider, such as terrain.
// Nothing is added when an error is returned.
func (w *World) AddObstacle(modelIndex int, position mgl32.Vec3, rotation mgl32.Quat, precision collision.Precision) (int, error) {
	mesh := w.Models.Get(modelIndex)
	opts := collision.Options{Target: true, Precision: precision}
	if err := collision.CheckModel(mesh, opts); err != nil {
		return 0, fmt.Errorf("add obstacle collider: %w", err)
	}

	t := w.Transforms.Add(position, rotation)
	collider, err := w.Colliders.AddFromModel(mesh, t, opts)
	if err != nil {
		return 0, fmt.Errorf("add obstacle collider: %w", err)
	}

	w.logger.Info("obstacle placed",
		zap.String("model", mesh.Name),
		zap.Stringer("precision", precision),
	)
	return collider, nil
}

func (w *World) AddBuilding(spec building.Spec) (int, error) {
	index, err := w.Buildings.Add(spec, w.Transforms, w.Inventories)
	if err != nil {
		return 0, fmt.Errorf("add %s: %w", spec.Kind, err)
	}

	w.logger.Info("building placed", zap.Int("index", index), zap.Stringer("kind", spec.Kind))
	return index, nil
}

// PlayerPose returns a copy of the player transform.
// It panics when no aircraft was added.
func (w *World) PlayerPose() transform.Pose {
	return w.Transforms.Snapshot(w.Aircraft.Refs(flight.PlayerIndex).Transform)
}

// Step advances the world by dt. keys may be nil, or a nil *input.Keyboard,
// when no keyboard is attached.
func (w *World) Step(dt time.Duration, keys control.KeyState) {
	if k, ok := keys.(*input.Keyboard); ok && k == nil {
		keys = nil
	}
	seconds := float32(dt.Seconds())

	if w.Aircraft.Len() > 0 {
		w.updateInputs(keys)
		w.Aircraft.Step(seconds, w.AIMode, w.Transforms, w.Inputs, w.Workers)
	}

	w.Colliders.Update(w.Transforms, w.Workers)
	w.Events.recordCollisions(w.Colliders)

	if deliveries := w.Buildings.Update(dt, w.Transforms, w.Inventories, w.recipients); deliveries > 0 {
		w.Events.emitSupply(deliveries)
	}

	w.Diagnostics.Update(dt)
	w.ticks++

	w.Events.flush()
}

// updateInputs fills the control slots. In pursuit mode the AI slots are
// left untouched: UpdateAI does not read them.
func (w *World) updateInputs(keys control.KeyState) {
	if w.AIMode == flight.AIModeHeuristic {
		pose := func(input int) transform.Pose {
			return w.Transforms.Snapshot(w.Aircraft.Refs(w.Inputs.Aircraft(input)).Transform)
		}
		w.Inputs.Update(keys, pose, w.PlayerPose())
		return
	}

	if keys != nil {
		w.Inputs.ApplyKeyboard(w.Aircraft.Refs(flight.PlayerIndex).Input, keys)
	}
}
