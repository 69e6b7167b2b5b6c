package command

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
)

// Parser reads command lines. DefaultSize is used when new omits the size.
type Parser struct {
	DefaultSize int
}

// Parse reads text with the package DefaultSize.
func Parse(text string) (Command, error) {
	return Parser{DefaultSize: DefaultSize}.Parse(text)
}

// Parse reads a single command line. Verbs are case-insensitive and may carry a
// leading slash and a trailing @botname, as chat clients send them.
func (that Parser) Parse(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty message", apperror.ErrMalformedCommand)
	}

	verb := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if at := strings.IndexByte(verb, '@'); at > 0 {
		verb = verb[:at]
	}
	args := fields[1:]

	switch verb {
	case "new", "newgame":
		return parseNewMatch(args, that.DefaultSize)
	case "move", "play":
		return parseMove(args)
	case "end", "endgame":
		if len(args) != 0 {
			return nil, malformed(verb, "takes no arguments")
		}
		return EndMatch{}, nil
	case "state", "board":
		if len(args) != 0 {
			return nil, malformed(verb, "takes no arguments")
		}
		return State{}, nil
	case "help", "start":
		return Help{}, nil
	default:
		return nil, malformed(verb, "unknown command")
	}
}

func parseNewMatch(args []string, defaultSize int) (Command, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, malformed("new", "expects an opponent and an optional size")
	}

	opponent := strings.TrimPrefix(args[0], "@")
	if !isHandle(opponent) {
		return nil, malformed("new", "invalid opponent handle "+strconv.Quote(args[0]))
	}

	size := defaultSize
	if len(args) == 2 {
		var err error
		if size, err = strconv.Atoi(args[1]); err != nil {
			return nil, malformed("new", "size must be a number")
		}
	}

	return NewMatch{Opponent: opponent, Size: size}, nil
}

func parseMove(args []string) (Command, error) {
	if len(args) != 2 {
		return nil, malformed("move", "expects a row and a column")
	}

	row, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, malformed("move", "row must be a number")
	}

	col, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, malformed("move", "column must be a number")
	}

	return Move{Row: row, Col: col}, nil
}

func isHandle(handle string) bool {
	if handle == "" {
		return false
	}

	for _, r := range handle {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '-' {
			return false
		}
	}

	return true
}

func malformed(verb, reason string) error {
	return fmt.Errorf("%w: %s: %s", apperror.ErrMalformedCommand, verb, reason)
}
