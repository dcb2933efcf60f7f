package screen

// Nav is a reserved navigation action.
type Nav uint8

const (
	NavNone Nav = iota
	NavUp
	NavDown
	NavLeft
	NavRight
)

func (n Nav) String() string {
	switch n {
	case NavUp:
		return "up"
	case NavDown:
		return "down"
	case NavLeft:
		return "left"
	case NavRight:
		return "right"
	default:
		return "none"
	}
}

// Keymap holds the input codes reserved by the scene. Codes are compared
// against whole input chunks.
type Keymap struct {
	Up      string `yaml:"up" json:"up"`
	Down    string `yaml:"down" json:"down"`
	Left    string `yaml:"left" json:"left"`
	Right   string `yaml:"right" json:"right"`
	Confirm string `yaml:"confirm" json:"confirm"`
}

// DefaultKeymap uses ANSI arrow-key sequences and carriage return.
func DefaultKeymap() Keymap {
	return Keymap{
		Up:      "\x1b[A",
		Down:    "\x1b[B",
		Right:   "\x1b[C",
		Left:    "\x1b[D",
		Confirm: "\r",
	}
}

// Nav returns the navigation action bound to key, if any.
func (k Keymap) Nav(key string) Nav {
	if key == "" {
		return NavNone
	}
	switch key {
	case k.Up:
		return NavUp
	case k.Down:
		return NavDown
	case k.Left:
		return NavLeft
	case k.Right:
		return NavRight
	}
	return NavNone
}
