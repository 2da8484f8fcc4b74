package screens

const (
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"

	ResetColor = "\033[0m"
)

var roleColours = map[string]string{
	"user":    Green,
	"manager": Cyan,
	"admin":   Yellow,
}

// Colour controls whether rendered output carries ANSI colour codes.
var Colour = true

func paint(colour, s string) string {
	if !Colour || colour == "" {
		return s
	}
	return colour + s + ResetColor
}

func roleBadge(role string) string {
	return paint(roleColours[role], role)
}
