package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

// Store is the full collaborator surface every backend and decorator provides.
type Store interface {
	domain.MetricRepository
	domain.ReadinessHistory
	domain.IngestRepository
	domain.PlanRepository
}

var workoutNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("kanso-readiness-engine/workout"))

// workoutID hashes the row content and its occurrence, so re-ingesting an export does not
// duplicate rows while identical sets logged the same day are kept apart.
func workoutID(day time.Time, w *domain.RawWorkout) string {
	key := fmt.Sprintf("%s|%s|%d", domain.FormatDay(day), w.ContentKey(), w.Occurrence)
	return uuid.NewSHA1(workoutNamespace, []byte(key)).String()
}
