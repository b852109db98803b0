package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mamaepingo/voice-eval/domain"
)

const (
	evaluationsCacheKey = "evaluations"
	topRatedLimit       = 10
)

type analyticsUsecase struct {
	repo          domain.EvaluationRepository
	cache         *gocache.Cache
	timeout       time.Duration
	displayPrefix string
}

func NewAnalyticsUsecase(
	repo domain.EvaluationRepository,
	readWindow, timeout time.Duration,
	displayPrefix string,
) domain.AnalyticsUsecase {
	return &analyticsUsecase{
		repo:          repo,
		cache:         gocache.New(readWindow, 2*readWindow),
		timeout:       timeout,
		displayPrefix: displayPrefix,
	}
}

func (uc *analyticsUsecase) load(ctx context.Context) ([]domain.EvaluationRecord, error) {
	if cached, ok := uc.cache.Get(evaluationsCacheKey); ok {
		return cached.([]domain.EvaluationRecord), nil
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	records, err := uc.repo.FetchAll(ctx)
	if err != nil {
		return nil, &domain.TransientError{Op: "load evaluations", Err: err}
	}
	uc.cache.Set(evaluationsCacheKey, records, gocache.DefaultExpiration)
	return records, nil
}

func (uc *analyticsUsecase) Summarize(ctx context.Context) (*domain.Summary, error) {
	records, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		Total:      len(records),
		ByCategory: []domain.CategoryStat{},
		ByDuration: []domain.DurationStat{},
		ByFile:     []domain.FileStat{},
		Daily:      []domain.DailyStat{},
		TopRated:   []domain.EvaluationRecord{},
		Histogram:  emptyHistogram(),
	}
	if len(records) == 0 {
		return summary, nil
	}

	scores := make([]float64, len(records))
	for i, rec := range records {
		scores[i] = float64(rec.Score)
	}
	summary.MeanScore, _ = stats.Mean(scores)
	summary.StdDevScore, _ = stats.StandardDeviationSample(scores)

	sessions := make(map[string]struct{})
	for _, rec := range records {
		sessions[rec.SessionID] = struct{}{}
	}
	summary.UniqueSessions = len(sessions)
	if summary.UniqueSessions > 0 {
		summary.MeanPerSession = float64(summary.Total) / float64(summary.UniqueSessions)
	}

	summary.Histogram = buildHistogram(records)
	summary.ModeScore = modeScore(summary.Histogram)
	summary.ByCategory = categoryStats(records)
	summary.ByDuration = durationStats(records)
	summary.ByFile = uc.fileStats(records)
	summary.Daily = dailyStats(records)
	summary.TopRated = topRated(records, topRatedLimit)

	first, last := records[0].Timestamp, records[0].Timestamp
	for _, rec := range records[1:] {
		if rec.Timestamp.Before(first) {
			first = rec.Timestamp
		}
		if rec.Timestamp.After(last) {
			last = rec.Timestamp
		}
	}
	summary.FirstEvaluation, summary.LastEvaluation = first, last

	return summary, nil
}

func emptyHistogram() []domain.ScoreBucket {
	buckets := make([]domain.ScoreBucket, 5)
	for i := range buckets {
		buckets[i].Score = i + 1
	}
	return buckets
}

func buildHistogram(records []domain.EvaluationRecord) []domain.ScoreBucket {
	buckets := emptyHistogram()
	for _, rec := range records {
		if rec.Score >= 1 && rec.Score <= 5 {
			buckets[rec.Score-1].Count++
		}
	}
	for i := range buckets {
		buckets[i].Percent = float64(buckets[i].Count) / float64(len(records)) * 100
	}
	return buckets
}

func modeScore(histogram []domain.ScoreBucket) int {
	best := 0
	mode := 0
	for _, bucket := range histogram {
		if bucket.Count > best {
			best = bucket.Count
			mode = bucket.Score
		}
	}
	return mode
}

type meanAcc struct {
	sum   float64
	count int
}

func (a meanAcc) mean() float64 { return a.sum / float64(a.count) }

func categoryStats(records []domain.EvaluationRecord) []domain.CategoryStat {
	acc := make(map[string]meanAcc)
	for _, rec := range records {
		a := acc[rec.Category]
		a.sum += float64(rec.Score)
		a.count++
		acc[rec.Category] = a
	}

	result := make([]domain.CategoryStat, 0, len(acc))
	for category, a := range acc {
		result = append(result, domain.CategoryStat{Category: category, Mean: a.mean(), Count: a.count})
	}
	// best first, name as tiebreak so the order is reproducible
	sort.Slice(result, func(i, j int) bool {
		if result[i].Mean != result[j].Mean {
			return result[i].Mean > result[j].Mean
		}
		return result[i].Category < result[j].Category
	})
	return result
}

func durationStats(records []domain.EvaluationRecord) []domain.DurationStat {
	acc := make(map[domain.DurationBucket]meanAcc)
	for _, rec := range records {
		a := acc[rec.Duration]
		a.sum += float64(rec.Score)
		a.count++
		acc[rec.Duration] = a
	}

	result := make([]domain.DurationStat, 0, len(acc))
	for duration, a := range acc {
		result = append(result, domain.DurationStat{Duration: duration, Mean: a.mean(), Count: a.count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Duration < result[j].Duration })
	return result
}

func (uc *analyticsUsecase) fileStats(records []domain.EvaluationRecord) []domain.FileStat {
	acc := make(map[string]meanAcc)
	for _, rec := range records {
		a := acc[rec.OriginalFilename]
		a.sum += float64(rec.Score)
		a.count++
		acc[rec.OriginalFilename] = a
	}

	result := make([]domain.FileStat, 0, len(acc))
	for filename, a := range acc {
		result = append(result, domain.FileStat{
			DisplayName: strings.TrimPrefix(filename, uc.displayPrefix),
			Mean:        a.mean(),
			Count:       a.count,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DisplayName < result[j].DisplayName })
	return result
}

func dailyStats(records []domain.EvaluationRecord) []domain.DailyStat {
	acc := make(map[string]meanAcc)
	for _, rec := range records {
		day := rec.Timestamp.UTC().Format("2006-01-02")
		a := acc[day]
		a.sum += float64(rec.Score)
		a.count++
		acc[day] = a
	}

	result := make([]domain.DailyStat, 0, len(acc))
	for day, a := range acc {
		result = append(result, domain.DailyStat{Date: day, Mean: a.mean(), Count: a.count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

func topRated(records []domain.EvaluationRecord, limit int) []domain.EvaluationRecord {
	sorted := make([]domain.EvaluationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

var csvHeader = []string{
	"anonymous_id", "original_filename", "score", "category",
	"duration", "session_id", "timestamp", "user_agent",
}

func (uc *analyticsUsecase) ExportCSV(ctx context.Context) ([]byte, error) {
	records, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{
			rec.AnonymousID,
			rec.OriginalFilename,
			strconv.Itoa(rec.Score),
			rec.Category,
			string(rec.Duration),
			rec.SessionID,
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.UserAgent,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (uc *analyticsUsecase) ExportReport(ctx context.Context) ([]byte, error) {
	summary, err := uc.Summarize(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	line := func(key string, value interface{}) {
		fmt.Fprintf(&b, "%s: %v\n", key, value)
	}

	line("total_evaluations", summary.Total)
	line("mean_score", fmt.Sprintf("%.2f", summary.MeanScore))
	line("std_dev_score", fmt.Sprintf("%.2f", summary.StdDevScore))
	line("mode_score", summary.ModeScore)
	line("unique_sessions", summary.UniqueSessions)
	line("evaluations_per_session", fmt.Sprintf("%.1f", summary.MeanPerSession))
	if summary.Total > 0 {
		line("period", fmt.Sprintf("%s to %s",
			summary.FirstEvaluation.UTC().Format("2006-01-02"),
			summary.LastEvaluation.UTC().Format("2006-01-02")))
	}
	for _, bucket := range summary.Histogram {
		line(fmt.Sprintf("score_%d", bucket.Score),
			fmt.Sprintf("%d (%.1f%%)", bucket.Count, bucket.Percent))
	}
	for _, cat := range summary.ByCategory {
		line("category_"+cat.Category, fmt.Sprintf("%.2f (%d)", cat.Mean, cat.Count))
	}
	for _, dur := range summary.ByDuration {
		line("duration_"+string(dur.Duration), fmt.Sprintf("%.2f (%d)", dur.Mean, dur.Count))
	}
	return []byte(b.String()), nil
}

func (uc *analyticsUsecase) Refresh() {
	uc.cache.Flush()
}
