package archive

import (
	"fmt"

	"github.com/google/uuid"
)

// UpdatePrefix scopes every payload archived while handling one update.
func UpdatePrefix(updateID int64) string {
	return fmt.Sprintf("audit/upd%d_%s", updateID, uuid.NewString())
}

func UpdateKey(prefix string) string {
	return prefix + ".update.json"
}

func TransmissionKey(prefix, transmissionID string) string {
	return fmt.Sprintf("%s.transmission.%s.json", prefix, transmissionID)
}
