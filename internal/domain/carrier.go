package domain

import "time"

// Carrier is a shipping carrier and its expected delivery delay.
type Carrier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DelayDays int       `json:"delay_days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
