package entity

// Player is a turn marker, not a user identity.
type Player uint8

const (
	PlayerA Player = iota
	PlayerB
)

func (that Player) Other() Player {
	if that == PlayerA {
		return PlayerB
	}
	return PlayerA
}

// Cell returns the board marker placed by the player.
func (that Player) Cell() CellState {
	if that == PlayerA {
		return CellA
	}
	return CellB
}

func (that Player) String() string {
	if that == PlayerA {
		return "A"
	}
	return "B"
}
