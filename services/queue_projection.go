// services/queue_projection.go
package services

import (
	"sort"

	"queuebarber-backend/models"
)

// QueueClient is a queue entry enriched with its derived position and
// personal estimated wait. Neither field is ever persisted.
type QueueClient struct {
	models.Client
	Position          int `json:"position"`
	EstimatedWaitTime int `json:"estimatedWaitTime"` // in minutes
}

// QueueStats is the queue-level summary shown to new joiners.
// EstimatedWaitTime here is the time until the whole queue clears.
type QueueStats struct {
	TotalWaiting      int  `json:"totalWaiting"`
	EstimatedWaitTime int  `json:"estimatedWaitTime"` // in minutes
	IsOpen            bool `json:"isOpen"`
}

// ProjectQueue derives positions, wait times and stats from a snapshot of a
// salon's queue. Pure function: recomputed in full on every observed change.
//
// Position is a dense 1..N rank over ALL entries, done ones included, ordered
// by arrival. A client's estimated wait is the summed duration of the waiting
// entries ahead of it, so the first waiting client always sees 0.
func ProjectQueue(clients []models.Client) ([]QueueClient, QueueStats) {
	ordered := make([]models.Client, len(clients))
	copy(ordered, clients)

	// Arrival order: server timestamp, commit-order tiebreak.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	projected := make([]QueueClient, 0, len(ordered))
	stats := QueueStats{}

	ahead := 0
	for i, client := range ordered {
		entry := QueueClient{
			Client:   client,
			Position: i + 1,
		}
		if client.Status == models.StatusWaiting {
			entry.EstimatedWaitTime = ahead
			ahead += client.ServiceDuration
			stats.TotalWaiting++
		}
		projected = append(projected, entry)
	}
	stats.EstimatedWaitTime = ahead

	return projected, stats
}
