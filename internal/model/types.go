package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunSummary is the persisted record of one training run. Trained weights are
// deliberately not part of it.
type RunSummary struct {
	VersionedRecord
	ID              string  `json:"id"`
	Env             string  `json:"env"`
	Estimator       string  `json:"estimator"`
	EnsembleSize    int     `json:"ensemble_size"`
	PriorScale      float64 `json:"prior_scale"`
	Seed            int64   `json:"seed"`
	Rounds          int     `json:"rounds"`
	FinalMeanReturn float64 `json:"final_mean_return"`
	CreatedUnix     int64   `json:"created_unix"`
}

// RoundDiagnostics is one training round's aggregate telemetry.
type RoundDiagnostics struct {
	Round        int     `json:"round"`
	Start        int     `json:"start"`
	End          int     `json:"end"`
	Episodes     int     `json:"episodes"`
	MeanReturn   float64 `json:"mean_return"`
	MeanTDError  float64 `json:"mean_td_error"`
	MeanVariance float64 `json:"mean_variance"`
}
