package reset

import (
	"fmt"
	"time"
)

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func formatID(id uint64) string {
	return fmt.Sprintf("%d", id)
}

// ArchivedRoundTag is the label archived rows carry after a phase
// transition: the rows stay active but no longer match the new round.
func ArchivedRoundTag(oldRound string) string {
	return "archived:" + oldRound
}
