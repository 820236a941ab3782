package entity

// RoomPatch carries the fields a single commit changes. Nil fields are left as stored.
type RoomPatch struct {
	Status     *string
	Players    []*Player
	MaxPlayers *int
	TurnIndex  *int
	WinnerID   *string
	Logs       []LogEntry
}

// PatchFunc decides a commit against the room as currently stored. An error aborts
// the commit and nothing is written.
type PatchFunc func(current *Room) (RoomPatch, error)

// RoundPatch copies every field a turn or a round start can change out of next.
func RoundPatch(next *Room) RoomPatch {
	return RoomPatch{
		Status:    &next.Status,
		Players:   next.Players,
		TurnIndex: &next.TurnIndex,
		WinnerID:  &next.WinnerID,
		Logs:      next.Logs,
	}
}

// Apply merges the patch into room in place.
func (that RoomPatch) Apply(room *Room) {
	if that.Status != nil {
		room.Status = *that.Status
	}
	if that.Players != nil {
		room.Players = that.Players
	}
	if that.MaxPlayers != nil {
		room.MaxPlayers = *that.MaxPlayers
	}
	if that.TurnIndex != nil {
		room.TurnIndex = *that.TurnIndex
	}
	if that.WinnerID != nil {
		room.WinnerID = *that.WinnerID
	}
	if that.Logs != nil {
		room.Logs = that.Logs
	}
}
