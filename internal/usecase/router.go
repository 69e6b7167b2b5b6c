package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/command"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

const (
	msgMatchEnded    = "Game has been ended!"
	msgSomethingWent = "Something went wrong, please try again."
	msgHelp          = `Tic-tac-toe commands:
new <opponent> [size] - start a match, you move first (size 3 by default)
move <row> <col> - place your marker, rows and columns start at 1
state - show your current board
end - end your current match`
)

type matchRegistry interface {
	Create(userA, userB string, size int) (*entity.Match, error)
	Find(user string) (*entity.Match, error)
	Remove(match *entity.Match)
	Len() int
}

// Request is one inbound chat message together with who sent it and where it came from.
type Request struct {
	UpdateID int64
	Sender   string
	Chat     string
	Text     string
}

// Reply goes back to Chat. ReplyTo is set when the reply quotes a rejected message.
type Reply struct {
	Chat    string
	Text    string
	ReplyTo int64
}

// Settings are the game options shared by every transport.
type Settings struct {
	Glyphs      Glyphs
	DefaultSize int
	MaxSize     int
}

var DefaultSettings = Settings{
	Glyphs:      DefaultGlyphs,
	DefaultSize: command.DefaultSize,
	MaxSize:     9,
}

type CommandRouter struct {
	logger   *slog.Logger
	registry matchRegistry
	parser   command.Parser
	glyphs   Glyphs
	maxSize  int
}

func NewCommandRouter(logger *slog.Logger, registry matchRegistry, settings Settings) *CommandRouter {
	return &CommandRouter{
		logger:   logger.With("component", "router"),
		registry: registry,
		parser:   command.Parser{DefaultSize: settings.DefaultSize},
		glyphs:   settings.Glyphs,
		maxSize:  settings.MaxSize,
	}
}

// DefaultSize is the board size used when a new match names none.
func (that *CommandRouter) DefaultSize() int {
	return that.parser.DefaultSize
}

// Handle parses the request text, runs the command and renders the answer.
func (that *CommandRouter) Handle(ctx context.Context, req Request) Reply {
	log := that.logger.With("method", "Handle", "sender", req.Sender, "chat", req.Chat)

	cmd, err := that.parser.Parse(req.Text)
	if err != nil {
		log.Debug("failed to parse command", "error", err)
		return Reply{Chat: req.Chat, Text: that.errorText(log, err), ReplyTo: req.UpdateID}
	}

	text, err := that.Dispatch(ctx, req.Sender, cmd)
	if err != nil {
		log.Info("command rejected", "command", cmd.Name(), "error", err)
		return Reply{Chat: req.Chat, Text: that.errorText(log, err), ReplyTo: req.UpdateID}
	}

	return Reply{Chat: req.Chat, Text: text}
}

// Dispatch runs an already parsed command on behalf of sender.
func (that *CommandRouter) Dispatch(ctx context.Context, sender string, cmd command.Command) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if sender == "" {
		return "", fmt.Errorf("%w: missing sender", apperror.ErrMalformedCommand)
	}

	switch c := cmd.(type) {
	case command.NewMatch:
		return that.newMatch(sender, c)
	case command.Move:
		return that.move(sender, c)
	case command.EndMatch:
		return that.endMatch(sender)
	case command.State:
		return that.state(sender)
	case command.Help:
		return msgHelp, nil
	default:
		return "", fmt.Errorf("%w: unsupported command %T", apperror.ErrMalformedCommand, cmd)
	}
}

func (that *CommandRouter) newMatch(sender string, cmd command.NewMatch) (string, error) {
	if cmd.Opponent == "" {
		return "", fmt.Errorf("%w: missing opponent", apperror.ErrMalformedCommand)
	}

	if cmd.Size > that.maxSize {
		return "", fmt.Errorf("%w: %d exceeds %d", apperror.ErrInvalidSize, cmd.Size, that.maxSize)
	}

	match, err := that.registry.Create(sender, cmd.Opponent, cmd.Size)
	if err != nil {
		return "", fmt.Errorf("failed to create match: %w", err)
	}

	that.logger.Info("match created", "matchID", match.ID, "userA", match.UserA, "userB", match.UserB,
		"size", cmd.Size, "activeMatches", that.registry.Len())

	return renderMatch(that.glyphs, match.View()), nil
}

func (that *CommandRouter) move(sender string, cmd command.Move) (string, error) {
	match, err := that.registry.Find(sender)
	if err != nil {
		return "", err
	}

	outcome, err := match.ApplyMove(sender, cmd.Row-1, cmd.Col-1)
	if errors.Is(err, apperror.ErrNoActiveMatch) {
		that.registry.Remove(match)
	}
	if err != nil {
		return "", fmt.Errorf("failed to apply move: %w", err)
	}

	view := match.View()

	if outcome.IsTerminal() {
		that.registry.Remove(match)
		player, _ := match.PlayerOf(sender)
		that.logger.Info("match concluded", "matchID", match.ID, "result", outcome.Result,
			"lastPlayer", player.String(), "moves", view.Moves, "activeMatches", that.registry.Len())
	}

	return renderMatch(that.glyphs, view), nil
}

func (that *CommandRouter) endMatch(sender string) (string, error) {
	match, err := that.registry.Find(sender)
	if err != nil {
		return "", err
	}

	that.registry.Remove(match)
	that.logger.Info("match ended", "matchID", match.ID, "by", sender)

	return msgMatchEnded, nil
}

func (that *CommandRouter) state(sender string) (string, error) {
	match, err := that.registry.Find(sender)
	if err != nil {
		return "", err
	}

	return renderMatch(that.glyphs, match.View()), nil
}

func (that *CommandRouter) errorText(log *slog.Logger, err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidSize):
		return fmt.Sprintf("Board size must be between 1 and %d!", that.maxSize)
	case errors.Is(err, apperror.ErrOutOfBounds):
		return "This position is outside the board!"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "This position is already in use!"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "It's not your turn!"
	case errors.Is(err, apperror.ErrAlreadyInMatch):
		return "You or your opponent is already playing a game!"
	case errors.Is(err, apperror.ErrSelfPlay):
		return "You can't play against yourself!"
	case errors.Is(err, apperror.ErrNoActiveMatch):
		return "You're not in a game!"
	case errors.Is(err, apperror.ErrMalformedCommand):
		return "I don't understand that command. Send help for usage."
	default:
		log.Error("unexpected error", "error", err)
		return msgSomethingWent
	}
}

// ErrorText renders err the way Handle would.
func (that *CommandRouter) ErrorText(err error) string {
	return that.errorText(that.logger, err)
}
