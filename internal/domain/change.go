package domain

import "time"

type ChangeAction string

const (
	ChangeInsert ChangeAction = "insert"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// ChangeEvent is emitted whenever a row in a content collection changes.
type ChangeEvent struct {
	Action     ChangeAction `json:"action"`
	Collection Collection   `json:"collection"`
	SiteSlug   string       `json:"site_slug"`
	ItemID     string       `json:"item_id,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}
