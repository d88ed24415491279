package visits

import (
	"context"
	"time"
)

// Visit is one recorded redirect event. Rows are append-only; they are only
// removed when the parent short URL is deleted.
type Visit struct {
	ID        int64
	URLID     int64
	Timestamp time.Time
	IP        string
	Country   string
	Region    string
	City      string
}

// DayCount is a daily visit bucket for the traffic endpoint.
type DayCount struct {
	Date  string `json:"date" doc:"Day in YYYY-MM-DD form"`
	Count int64  `json:"count"`
}

// GeoCount is a visit bucket grouped by location for the geo endpoint.
type GeoCount struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Count   int64  `json:"count"`
}

// Store defines the storage operations for visit events.
type Store interface {
	Insert(ctx context.Context, v *Visit) error

	// TrafficDaily returns day-bucketed visit counts ordered ascending by date.
	TrafficDaily(ctx context.Context, urlID int64) ([]DayCount, error)

	// GeoBreakdown returns visit counts grouped by (country, region, city).
	GeoBreakdown(ctx context.Context, urlID int64) ([]GeoCount, error)
}
