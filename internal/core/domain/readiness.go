package domain

const (
	ReadinessTypeDaily = "daily"
	NeutralScore       = 50
)

// ReadinessRecord is the full, inspectable output of one readiness computation.
type ReadinessRecord struct {
	ID     string `json:"id" db:"id"`
	Date   string `json:"date" db:"day"`
	Type   string `json:"type" db:"type"`
	Source string `json:"source" db:"source"`

	HRV            float64 `json:"hrv" db:"hrv"`
	HRVMean        float64 `json:"hrv_mean" db:"hrv_mean"`
	HRVSD          float64 `json:"hrv_sd" db:"hrv_sd"`
	HRVZ           float64 `json:"hrv_z" db:"hrv_z"`
	HRVSampleCount int     `json:"hrv_sample_count" db:"hrv_sample_count"`
	HRVScore       int     `json:"hrv_score" db:"hrv_score"`

	SleepHours         float64 `json:"sleep_hours" db:"sleep_hours"`
	InBedHours         float64 `json:"in_bed_hours" db:"in_bed_hours"`
	AwakeMinutes       int     `json:"awake_minutes" db:"awake_minutes"`
	WakeCount          int     `json:"wake_count" db:"wake_count"`
	SleepMean          float64 `json:"sleep_mean" db:"sleep_mean"`
	SleepSD            float64 `json:"sleep_sd" db:"sleep_sd"`
	BedtimeSampleCount int     `json:"bedtime_sample_count" db:"bedtime_sample_count"`

	QuantityScore     float64 `json:"quantity_score" db:"quantity_score"`
	QualityScore      float64 `json:"quality_score" db:"quality_score"`
	ArchitectureScore float64 `json:"architecture_score" db:"architecture_score"`
	PhysiologyScore   float64 `json:"physiology_score" db:"physiology_score"`
	RegularityScore   float64 `json:"regularity_score" db:"regularity_score"`
	SubjectiveScore   float64 `json:"subjective_score" db:"subjective_score"`
	SleepScore        int     `json:"sleep_score" db:"sleep_score"`

	TrainingLoadMinutes    float64 `json:"training_load_minutes" db:"training_load_minutes"`
	TrainingLoadWindowDays int     `json:"training_load_window_days" db:"training_load_window_days"`
	TrainingLoadScore      int     `json:"training_load_score" db:"training_load_score"`
	SkippedWorkoutRows     int     `json:"skipped_workout_rows" db:"skipped_workout_rows"`

	CompositeScore int `json:"composite_score" db:"composite_score"`
}
