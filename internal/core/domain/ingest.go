package domain

type IngestBatch struct {
	Metrics  []DailyMetricSample `json:"metrics"`
	Sleep    []SleepSample       `json:"sleep"`
	Workouts []RawWorkout        `json:"workouts"`
}

func (b *IngestBatch) IsEmpty() bool {
	return len(b.Metrics) == 0 && len(b.Sleep) == 0 && len(b.Workouts) == 0
}

type IngestResult struct {
	Metrics         int `json:"metrics"`
	Sleep           int `json:"sleep"`
	Workouts        int `json:"workouts"`
	SkippedWorkouts int `json:"skipped_workouts"`

	// DuplicateWorkouts counts rows an earlier export already stored.
	DuplicateWorkouts int      `json:"duplicate_workouts"`
	ScheduledDates    []string `json:"scheduled_dates"`
}
