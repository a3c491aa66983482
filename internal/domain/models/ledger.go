package models

import "time"

type LedgerSnapshot struct {
	TotalUpdates  int64            `json:"total_updates"`
	TotalMessages int64            `json:"total_messages"`
	DistinctUsers int              `json:"distinct_users"`
	Active24h     int              `json:"active_24h"`
	Active7d      int              `json:"active_7d"`
	Commands      map[string]int64 `json:"commands"`
	TakenAt       time.Time        `json:"taken_at"`
}
