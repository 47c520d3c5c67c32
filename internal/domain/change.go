package domain

import "encoding/json"

// Change 一个已提交的 changelist
type Change struct {
	ID          json.Number `json:"change"`
	User        string      `json:"user"`
	Client      string      `json:"client"`
	Time        string      `json:"time"`
	Status      string      `json:"status"`
	Description string      `json:"desc"`
}
