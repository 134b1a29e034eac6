package model

import (
	"time"

	"github.com/google/uuid"
)

// DispenseJob is a single pour order handed to the turret controller. Jobs
// are consumed exactly once and never persisted.
type DispenseJob struct {
	ID     string    `json:"id"`
	Slot   int       `json:"slot"`
	Ounces float64   `json:"ounces"`
	Issued time.Time `json:"issued"`
}

// NewDispenseJob creates a job for the given slot and volume.
func NewDispenseJob(slot int, ounces float64) DispenseJob {
	return DispenseJob{
		ID:     uuid.NewString(),
		Slot:   slot,
		Ounces: ounces,
		Issued: time.Now(),
	}
}
