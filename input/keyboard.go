// Package input tracks boolean keyboard state between frames.
package input

// Key identifies a key the simulation reacts to
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyA
	KeyZ
	KeyR

	KeyCount
)

var keyNames = [KeyCount]string{"up", "down", "left", "right", "a", "z", "r"}

func (k Key) String() string {
	if k >= KeyCount {
		return "unknown"
	}
	return keyNames[k]
}

// Keyboard keeps, per key, whether it is held and whether it changed this frame.
// The window layer calls Press and Release, the simulation reads the state,
// and EndFrame clears the edges once the tick is done.
type Keyboard struct {
	pressed [KeyCount]bool
	down    [KeyCount]bool
	up      [KeyCount]bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Press marks the key as held, it is Down only on the frame it goes from released to held
func (k *Keyboard) Press(key Key) {
	k.set(key, true)
}

// Release marks the key as released, it is Up only on the frame it goes from held to released
func (k *Keyboard) Release(key Key) {
	k.set(key, false)
}

func (k *Keyboard) set(key Key, pressed bool) {
	wasPressed := k.pressed[key]

	if !wasPressed && pressed {
		k.down[key] = true
	} else if wasPressed && !pressed {
		k.up[key] = true
	}

	k.pressed[key] = pressed
}

// Pressed reports whether the key is held
func (k *Keyboard) Pressed(key Key) bool {
	return k.pressed[key]
}

// Down reports whether the key was pressed during this frame
func (k *Keyboard) Down(key Key) bool {
	return k.down[key]
}

// Up reports whether the key was released during this frame
func (k *Keyboard) Up(key Key) bool {
	return k.up[key]
}

// EndFrame clears the per-frame edges
func (k *Keyboard) EndFrame() {
	clear(k.down[:])
	clear(k.up[:])
}
