package domain

import (
	"context"
	"time"
)

type CategoryStat struct {
	Category string  `json:"category"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
}

type DurationStat struct {
	Duration DurationBucket `json:"duration"`
	Mean     float64        `json:"mean"`
	Count    int            `json:"count"`
}

type FileStat struct {
	DisplayName string  `json:"display_name"`
	Mean        float64 `json:"mean"`
	Count       int     `json:"count"`
}

type ScoreBucket struct {
	Score   int     `json:"score"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type DailyStat struct {
	Date  string  `json:"date"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Summary holds every reported statistic over the evaluation collection.
// All fields degrade to zero values on an empty collection.
type Summary struct {
	Total           int                `json:"total"`
	MeanScore       float64            `json:"mean_score"`
	StdDevScore     float64            `json:"std_dev_score"`
	ModeScore       int                `json:"mode_score"`
	UniqueSessions  int                `json:"unique_sessions"`
	MeanPerSession  float64            `json:"mean_per_session"`
	ByCategory      []CategoryStat     `json:"by_category"`
	ByDuration      []DurationStat     `json:"by_duration"`
	Histogram       []ScoreBucket      `json:"histogram"`
	ByFile          []FileStat         `json:"by_file"`
	Daily           []DailyStat        `json:"daily"`
	TopRated        []EvaluationRecord `json:"top_rated"`
	FirstEvaluation time.Time          `json:"first_evaluation,omitempty"`
	LastEvaluation  time.Time          `json:"last_evaluation,omitempty"`
}

// AnalyticsUsecase reads the persisted evaluations, decoupled from the live
// session flow, and reports aggregate statistics and exports.
type AnalyticsUsecase interface {
	Summarize(ctx context.Context) (*Summary, error)

	// ExportCSV dumps all records, all fields, header row first.
	ExportCSV(ctx context.Context) ([]byte, error)

	// ExportReport renders the summary as stable-ordered "key: value" lines.
	ExportReport(ctx context.Context) ([]byte, error)

	// Refresh clears the evaluation read cache.
	Refresh()
}
