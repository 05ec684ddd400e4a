package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"queuebarber-backend/models"
)

func entry(name string, duration int, status string, seq uint64, at time.Time) models.Client {
	return models.Client{
		ID:              uuid.New(),
		SalonID:         uuid.Nil,
		Name:            name,
		Service:         "Haircut",
		ServiceDuration: duration,
		Status:          status,
		Seq:             seq,
		CreatedAt:       at,
	}
}

func TestProjectQueueEmpty(t *testing.T) {
	projected, stats := ProjectQueue(nil)

	assert.Empty(t, projected)
	assert.Equal(t, 0, stats.TotalWaiting)
	assert.Equal(t, 0, stats.EstimatedWaitTime)
}

func TestProjectQueueWaitTimes(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// A(20), B(15), C(10) join in that order
	clients := []models.Client{
		entry("A", 20, models.StatusWaiting, 1, base),
		entry("B", 15, models.StatusWaiting, 2, base.Add(1*time.Minute)),
		entry("C", 10, models.StatusWaiting, 3, base.Add(2*time.Minute)),
	}

	projected, stats := ProjectQueue(clients)

	assert.Len(t, projected, 3)
	assert.Equal(t, 1, projected[0].Position)
	assert.Equal(t, 2, projected[1].Position)
	assert.Equal(t, 3, projected[2].Position)

	assert.Equal(t, 0, projected[0].EstimatedWaitTime)
	assert.Equal(t, 20, projected[1].EstimatedWaitTime)
	assert.Equal(t, 35, projected[2].EstimatedWaitTime)

	assert.Equal(t, 3, stats.TotalWaiting)
	assert.Equal(t, 45, stats.EstimatedWaitTime)
}

func TestProjectQueueDoneKeepsPositions(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// A was served but not yet cleared: positions stay ranked over the full
	// list, while wait times are computed over the waiting sub-sequence only
	clients := []models.Client{
		entry("A", 20, models.StatusDone, 1, base),
		entry("B", 15, models.StatusWaiting, 2, base.Add(1*time.Minute)),
		entry("C", 10, models.StatusWaiting, 3, base.Add(2*time.Minute)),
	}

	projected, stats := ProjectQueue(clients)

	assert.Equal(t, 1, projected[0].Position)
	assert.Equal(t, 2, projected[1].Position)
	assert.Equal(t, 3, projected[2].Position)

	assert.Equal(t, "A", projected[0].Name)
	assert.Equal(t, 0, projected[0].EstimatedWaitTime)
	assert.Equal(t, 0, projected[1].EstimatedWaitTime)
	assert.Equal(t, 15, projected[2].EstimatedWaitTime)

	assert.Equal(t, 2, stats.TotalWaiting)
	assert.Equal(t, 25, stats.EstimatedWaitTime)
}

func TestProjectQueuePositionsAreDense(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	var clients []models.Client
	statuses := []string{
		models.StatusWaiting, models.StatusDone, models.StatusWaiting,
		models.StatusDone, models.StatusWaiting, models.StatusWaiting,
	}
	for i, status := range statuses {
		clients = append(clients, entry("c", 10+i, status, uint64(i+1), base.Add(time.Duration(i)*time.Minute)))
	}

	projected, _ := ProjectQueue(clients)

	seen := make(map[int]bool)
	for _, p := range projected {
		assert.False(t, seen[p.Position], "duplicate position %d", p.Position)
		seen[p.Position] = true
	}
	for want := 1; want <= len(clients); want++ {
		assert.True(t, seen[want], "missing position %d", want)
	}
}

func TestProjectQueueSortsByArrival(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// Input deliberately shuffled; projection must re-sort by createdAt
	clients := []models.Client{
		entry("third", 10, models.StatusWaiting, 3, base.Add(2*time.Minute)),
		entry("first", 20, models.StatusWaiting, 1, base),
		entry("second", 15, models.StatusWaiting, 2, base.Add(1*time.Minute)),
	}

	projected, _ := ProjectQueue(clients)

	assert.Equal(t, "first", projected[0].Name)
	assert.Equal(t, "second", projected[1].Name)
	assert.Equal(t, "third", projected[2].Name)
}

func TestProjectQueueTimestampTiesBreakBySeq(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// Same timestamp: commit order (seq) decides
	clients := []models.Client{
		entry("later", 15, models.StatusWaiting, 8, at),
		entry("earlier", 20, models.StatusWaiting, 7, at),
	}

	projected, _ := ProjectQueue(clients)

	assert.Equal(t, "earlier", projected[0].Name)
	assert.Equal(t, 0, projected[0].EstimatedWaitTime)
	assert.Equal(t, "later", projected[1].Name)
	assert.Equal(t, 20, projected[1].EstimatedWaitTime)
}

func TestProjectQueueWaitIsPrefixSum(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	durations := []int{5, 40, 15, 25, 10}
	var clients []models.Client
	for i, d := range durations {
		clients = append(clients, entry("c", d, models.StatusWaiting, uint64(i+1), base.Add(time.Duration(i)*time.Minute)))
	}

	projected, stats := ProjectQueue(clients)

	sum := 0
	for i, p := range projected {
		assert.Equal(t, sum, p.EstimatedWaitTime, "entry %d", i)
		sum += durations[i]
	}
	assert.Equal(t, sum, stats.EstimatedWaitTime)
}
