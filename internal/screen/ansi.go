package screen

// SGR sequences shared by converters and widgets.
const (
	Reset         = "\x1b[0m"
	Bold          = "\x1b[1m"
	Italic        = "\x1b[3m"
	Strikethrough = "\x1b[9m"
	ClearScreen   = "\x1b[2J\x1b[H"
)
