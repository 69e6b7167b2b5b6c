package usecase

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

type Glyphs struct {
	Empty string
	A     string
	B     string
}

var DefaultGlyphs = Glyphs{
	Empty: "⚪️",
	A:     "🔴",
	B:     "🔵",
}

func (that Glyphs) cell(state entity.CellState) string {
	switch state {
	case entity.CellA:
		return that.A
	case entity.CellB:
		return that.B
	default:
		return that.Empty
	}
}

func (that Glyphs) player(player entity.Player) string {
	return that.cell(player.Cell())
}

// renderMatch draws the participants header, the grid and a status line:
// whose turn it is, or the final outcome.
func renderMatch(glyphs Glyphs, view entity.MatchView) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s = %s\n", glyphs.A, view.UserA)
	fmt.Fprintf(&sb, "%s = %s\n", glyphs.B, view.UserB)

	for _, row := range view.Cells {
		sb.WriteByte('\n')
		for _, cell := range row {
			sb.WriteString(glyphs.cell(cell))
		}
	}

	sb.WriteString("\n\n")

	switch view.Outcome.Result {
	case entity.ResultWin:
		winner := view.UserA
		if view.Outcome.Winner == entity.PlayerB {
			winner = view.UserB
		}
		fmt.Fprintf(&sb, "%s %s wins!", glyphs.player(view.Outcome.Winner), winner)
	case entity.ResultDraw:
		sb.WriteString("It's a draw!")
	default:
		fmt.Fprintf(&sb, "Turn: %s %s", glyphs.player(view.Turn), view.TurnUser)
	}

	return sb.String()
}
