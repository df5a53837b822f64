package models

import "time"

// SortMode selects the order of aggregated rollups.
type SortMode string

const (
	SortAlphabetical SortMode = "alphabetical"
	SortRecency      SortMode = "recency"
)

// FilterCriteria is the value object driving visit aggregation.
// Nil dates and an empty UserID mean "no constraint".
type FilterCriteria struct {
	SearchText string     `validate:"max=200"`
	UserID     string     `validate:"max=64"`
	DateFrom   *time.Time
	DateTo     *time.Time
	OnlyMine   bool
	SortMode   SortMode `validate:"omitempty,oneof=alphabetical recency"`
	// Locale is a BCP 47 tag used for collation; empty means root order.
	Locale string `validate:"omitempty,bcp47_language_tag"`
}

// ClientRollup pairs a client with its filtered visits. It is built fresh
// on every aggregation and never cached.
type ClientRollup struct {
	Client      *Client
	Visits      []Visit
	LatestVisit Visit
}

// BucketEntry is a visit shown in a time bucket. Client is a back-reference
// to the parent, used for "show all visits for this client".
type BucketEntry struct {
	Visit  Visit
	Client *Client
}
