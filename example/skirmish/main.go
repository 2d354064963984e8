// Command skirmish flies the dogfight simulation in a terminal, drawn as a top-down radar.
//
// Arrows pitch and yaw, a and z change throttle, r resets the aircraft, q or Esc quits.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/akmonengine/dogfight"
	"github.com/akmonengine/dogfight/audio"
	"github.com/akmonengine/dogfight/config"
	"github.com/akmonengine/dogfight/flight"
	"github.com/akmonengine/dogfight/input"
	"github.com/akmonengine/dogfight/log"
	"github.com/akmonengine/dogfight/scene"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// Terminals only report key presses and repeats. A key is released once no
// repeat arrived for holdTimeout, which outlasts the usual initial repeat delay.
const holdTimeout = 500 * time.Millisecond

// metres per radar cell
const radarScale = 4

var keyMap = map[tcell.Key]input.Key{
	tcell.KeyUp:    input.KeyUp,
	tcell.KeyDown:  input.KeyDown,
	tcell.KeyLeft:  input.KeyLeft,
	tcell.KeyRight: input.KeyRight,
}

var runeMap = map[rune]input.Key{
	'a': input.KeyA,
	'z': input.KeyZ,
	'r': input.KeyR,
}

type game struct {
	screen   tcell.Screen
	world    *dogfight.World
	keyboard *input.Keyboard
	lastSeen [input.KeyCount]time.Time
	logger   *zap.Logger
	audio    bool
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	scenePath := flag.String("scene", "", "YAML scene file, the built-in skirmish when empty")
	logPath := flag.String("log", "skirmish.log", "log output path")
	flag.Parse()

	if err := run(*configPath, *scenePath, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "skirmish: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, scenePath, logPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return err
		}
	}
	// the terminal belongs to the radar
	cfg.Log.OutputPaths = []string{logPath}

	logger, err := log.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if scenePath == "" {
		scenePath = cfg.Scene
	}
	description := scene.Default()
	if scenePath != "" {
		if description, err = scene.LoadFile(scenePath); err != nil {
			return err
		}
	}

	world := dogfight.New(cfg, logger)
	if err := scene.Build(world, description); err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	g := &game{
		screen:   screen,
		world:    world,
		keyboard: input.NewKeyboard(),
		logger:   logger,
	}
	g.initAudio()
	if g.audio {
		defer speaker.Close()
	}

	g.loop(cfg.Simulation.TickDuration())
	logger.Info("session ended", zap.Uint64("ticks", world.Ticks()))
	return nil
}

func (g *game) initAudio() {
	if err := speaker.Init(audio.SampleRate, audio.SampleRate.N(time.Second/10)); err != nil {
		g.logger.Warn("audio disabled", zap.Error(err))
		return
	}

	mixer := audio.NewMixer()
	audio.Attach(&g.world.Events, mixer)
	speaker.Play(mixer)
	g.audio = true
}

func (g *game) loop(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !g.handle(ev) {
				return
			}

		case now := <-ticker.C:
			g.releaseStale(now)
			g.world.Step(now.Sub(last), g.keyboard)
			g.keyboard.EndFrame()
			last = now
			g.draw()
		}
	}
}

func (g *game) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}

		key, ok := keyMap[ev.Key()]
		if ev.Key() == tcell.KeyRune {
			if ev.Rune() == 'q' {
				return false
			}
			key, ok = runeMap[ev.Rune()]
		}
		if ok {
			g.keyboard.Press(key)
			g.lastSeen[key] = ev.When()
		}

	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *game) releaseStale(now time.Time) {
	for key := range input.KeyCount {
		if g.keyboard.Pressed(key) && now.Sub(g.lastSeen[key]) > holdTimeout {
			g.keyboard.Release(key)
		}
	}
}

func (g *game) draw() {
	g.screen.Clear()
	width, height := g.screen.Size()
	w := g.world

	player := w.PlayerPose()
	cx, cy := width/2, height/2
	project := func(x, z float32) (int, int, bool) {
		col := cx + int(math.Round(float64(x-player.Position.X())/radarScale))
		row := cy + int(math.Round(float64(z-player.Position.Z())/radarScale))
		return col, row, col >= 0 && col < width && row >= 1 && row < height
	}

	buildingStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for i := range w.Buildings.Len() {
		p := w.Transforms.Position(w.Buildings.TransformIndex(i))
		if col, row, ok := project(p.X(), p.Z()); ok {
			g.screen.SetContent(col, row, 'F', nil, buildingStyle)
		}
	}

	for i := 1; i < w.Aircraft.Len(); i++ {
		refs := w.Aircraft.Refs(i)
		p := w.Transforms.Position(refs.Transform)
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		if w.Colliders.Colliding(refs.Collider).Len() > 0 {
			style = style.Reverse(true)
		}
		if col, row, ok := project(p.X(), p.Z()); ok {
			g.screen.SetContent(col, row, heading(w.Transforms.Forward(refs.Transform).X(), w.Transforms.Forward(refs.Transform).Z()), nil, style)
		}
	}

	forward := player.Forward()
	g.screen.SetContent(cx, cy, heading(forward.X(), forward.Z()), nil, tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true))

	g.drawHUD(width)
	g.screen.Show()
}

func (g *game) drawHUD(width int) {
	w := g.world
	player := w.PlayerPose()
	refs := w.Aircraft.Refs(flight.PlayerIndex)
	ammo := w.Inventories.Ammo(refs.Inventory)
	stats := w.Diagnostics.Stats()

	hud := fmt.Sprintf("alt %5.1f  thr %4.1f  hits %d  ammo %d/%d/%d  %5.1f fps",
		player.Position.Y(),
		w.Aircraft.Throttle(flight.PlayerIndex),
		w.Colliders.Colliding(refs.Collider).Len(),
		ammo.Bullets, ammo.Rockets, ammo.EnergyCells,
		stats.FPS,
	)
	for i, r := range []rune(hud) {
		if i >= width {
			break
		}
		g.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Reverse(true))
	}
}

// heading picks an arrow glyph for a horizontal direction, +z pointing down the screen
func heading(x, z float32) rune {
	arrows := [...]rune{'↓', '↘', '→', '↗', '↑', '↖', '←', '↙'}
	angle := math.Atan2(float64(x), float64(z))
	sector := int(math.Round(angle/(math.Pi/4))) & 7
	return arrows[sector]
}
