package audit

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// Summary aggregates a set of audit records.
type Summary struct {
	Total          int                     `json:"total"`
	Valid          int                     `json:"valid"`
	Invalid        int                     `json:"invalid"`
	FailureRate    float64                 `json:"failure_rate"`
	MeanDuration   time.Duration           `json:"mean_duration_ns"`
	MedianDuration time.Duration           `json:"median_duration_ns"`
	P95Duration    time.Duration           `json:"p95_duration_ns"`
	MaxDuration    time.Duration           `json:"max_duration_ns"`
	ByKind         map[string]int          `json:"by_kind"`
	ByForm         map[string]*FormSummary `json:"by_form"`
	TopFields      []FieldCount            `json:"top_fields"`
}

// FormSummary counts outcomes of one form.
type FormSummary struct {
	Total       int     `json:"total"`
	Invalid     int     `json:"invalid"`
	FailureRate float64 `json:"failure_rate"`
}

// FieldCount is how often a field was implicated in a failure.
type FieldCount struct {
	Form  string `json:"form"`
	Field string `json:"field"`
	Count int    `json:"count"`
}

// maxTopFields bounds Summary.TopFields.
const maxTopFields = 10

// Summarize computes outcome counts, failure rates and validation latency
// statistics over records.
func Summarize(records []*Record) (*Summary, error) {
	summary := &Summary{
		ByKind: make(map[string]int),
		ByForm: make(map[string]*FormSummary),
	}
	if len(records) == 0 {
		return summary, nil
	}

	durations := make([]float64, 0, len(records))
	fieldCounts := make(map[FieldCount]int)

	for _, rec := range records {
		summary.Total++
		durations = append(durations, float64(rec.Duration))

		form, ok := summary.ByForm[rec.Form]
		if !ok {
			form = &FormSummary{}
			summary.ByForm[rec.Form] = form
		}
		form.Total++

		if rec.Valid {
			summary.Valid++
			continue
		}
		summary.Invalid++
		form.Invalid++
		if rec.ErrorKind != "" {
			summary.ByKind[rec.ErrorKind]++
		}
		for field := range rec.Errors {
			fieldCounts[FieldCount{Form: rec.Form, Field: field}]++
		}
	}

	summary.FailureRate = float64(summary.Invalid) / float64(summary.Total)
	for _, form := range summary.ByForm {
		form.FailureRate = float64(form.Invalid) / float64(form.Total)
	}

	mean, err := stats.Mean(durations)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(durations)
	if err != nil {
		return nil, err
	}
	p95, err := stats.Percentile(durations, 95)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(durations)
	if err != nil {
		return nil, err
	}

	summary.MeanDuration = time.Duration(mean)
	summary.MedianDuration = time.Duration(median)
	summary.P95Duration = time.Duration(p95)
	summary.MaxDuration = time.Duration(max)
	summary.TopFields = topFields(fieldCounts)

	return summary, nil
}

func topFields(counts map[FieldCount]int) []FieldCount {
	out := make([]FieldCount, 0, len(counts))
	for key, n := range counts {
		key.Count = n
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Form != out[j].Form {
			return out[i].Form < out[j].Form
		}
		return out[i].Field < out[j].Field
	})
	if len(out) > maxTopFields {
		out = out[:maxTopFields]
	}
	return out
}
