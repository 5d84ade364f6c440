package inventory

import "time"

type Item struct {
	ID             string    `json:"itemId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Stock          int       `json:"stock"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
