package models

import "time"

// UserRecord is a user together with every record it owns. It is the unit
// the archiver copies into the deleted_* tables and reads back from them.
type UserRecord struct {
	User       User         `json:"user"`
	Address    *Address     `json:"address,omitempty"`
	Profile    *UserProfile `json:"profile,omitempty"`
	Details    Details      `json:"details"`
	ArchivedAt time.Time    `json:"archived_at,omitzero"`
}
