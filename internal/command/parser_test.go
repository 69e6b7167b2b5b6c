package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
)

func TestParse(t *testing.T) {
	valid := []struct {
		text     string
		expected Command
	}{
		{"new bob", NewMatch{Opponent: "bob", Size: DefaultSize}},
		{"NEW @Bob 5", NewMatch{Opponent: "Bob", Size: 5}},
		{"  /newgame   @bob_99  ", NewMatch{Opponent: "bob_99", Size: DefaultSize}},
		{"/newgame@TicTacToeBot @bob", NewMatch{Opponent: "bob", Size: DefaultSize}},
		{"new bob 0", NewMatch{Opponent: "bob", Size: 0}},
		{"move 2 3", Move{Row: 2, Col: 3}},
		{"/play 1 1", Move{Row: 1, Col: 1}},
		{"Move\t0  9", Move{Row: 0, Col: 9}},
		{"end", EndMatch{}},
		{"/ENDGAME", EndMatch{}},
		{"state", State{}},
		{"board", State{}},
		{"/start", Help{}},
		{"help me", Help{}},
	}

	for _, tc := range valid {
		t.Run(tc.text, func(t *testing.T) {
			// When: the text is parsed
			cmd, err := Parse(tc.text)

			// Then: the expected command is produced
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cmd)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	malformedTexts := []string{
		"",
		"   ",
		"hello",
		"new",
		"new @",
		"new bob three",
		"new bob 3 4",
		"new b!ob",
		"move",
		"move 1",
		"move a b",
		"move 1 2 3",
		"end now",
		"state please",
	}

	for _, text := range malformedTexts {
		t.Run(text, func(t *testing.T) {
			// When: a malformed text is parsed
			cmd, err := Parse(text)

			// Then: ErrMalformedCommand is returned
			require.ErrorIs(t, err, apperror.ErrMalformedCommand)
			assert.Nil(t, cmd)
		})
	}
}

func TestParser_DefaultSize(t *testing.T) {
	parser := Parser{DefaultSize: 5}

	cmd, err := parser.Parse("new bob")
	require.NoError(t, err)
	assert.Equal(t, NewMatch{Opponent: "bob", Size: 5}, cmd)

	cmd, err = parser.Parse("new bob 4")
	require.NoError(t, err)
	assert.Equal(t, NewMatch{Opponent: "bob", Size: 4}, cmd)
}

func TestCommand_Name(t *testing.T) {
	assert.Equal(t, "new", NewMatch{}.Name())
	assert.Equal(t, "move", Move{}.Name())
	assert.Equal(t, "end", EndMatch{}.Name())
	assert.Equal(t, "state", State{}.Name())
	assert.Equal(t, "help", Help{}.Name())
}
