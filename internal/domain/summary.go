package domain

import (
	"cmp"
	"slices"
	"strings"
)

const topEmotions = 3

// EmotionCount is an emotion label and how many dreams listed it.
type EmotionCount struct {
	Emotion string
	Count   int
}

// CityMonthSummary aggregates one city's dreams for one month of the target year.
type CityMonthSummary struct {
	City        string
	Month       int
	TotalDreams int
	// MeanRad averages the non-null mean_rad values; nil when there are none.
	MeanRad  *float64
	Emotions []EmotionCount
}

type summaryKey struct {
	city  string
	month int
}

type summaryAcc struct {
	total   int
	radSum  float64
	radN    int
	counts  map[string]int
	ordered []string
}

// Summarize groups rows of the given year by city and month, averaging
// mean_rad and counting the top three emotions. Rows without a city are
// ignored. Output is ordered by city, then month.
func Summarize(rows []Dream, year int) []CityMonthSummary {
	accs := make(map[summaryKey]*summaryAcc)
	for _, r := range rows {
		if r.City == "" || r.Year != year {
			continue
		}
		k := summaryKey{city: r.City, month: r.Month}
		acc, ok := accs[k]
		if !ok {
			acc = &summaryAcc{counts: make(map[string]int)}
			accs[k] = acc
		}
		acc.total++
		if r.MeanRad != nil {
			acc.radSum += *r.MeanRad
			acc.radN++
		}
		for _, label := range emotionLabels(r.EmotionsTop3) {
			if _, seen := acc.counts[label]; !seen {
				acc.ordered = append(acc.ordered, label)
			}
			acc.counts[label]++
		}
	}

	out := make([]CityMonthSummary, 0, len(accs))
	for k, acc := range accs {
		s := CityMonthSummary{City: k.city, Month: k.month, TotalDreams: acc.total}
		if acc.radN > 0 {
			s.MeanRad = Float(acc.radSum / float64(acc.radN))
		}
		s.Emotions = acc.top(topEmotions)
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b CityMonthSummary) int {
		return cmp.Or(cmp.Compare(a.City, b.City), cmp.Compare(a.Month, b.Month))
	})
	return out
}

// top returns the n most frequent labels; ties keep first-seen order.
func (acc *summaryAcc) top(n int) []EmotionCount {
	counts := make([]EmotionCount, len(acc.ordered))
	for i, label := range acc.ordered {
		counts[i] = EmotionCount{Emotion: label, Count: acc.counts[label]}
	}
	slices.SortStableFunc(counts, func(a, b EmotionCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return counts[:min(n, len(counts))]
}

// emotionLabels extracts lower-cased labels from a serialized emotions_top3 cell.
func emotionLabels(cell string) []string {
	if cell == "" {
		return nil
	}
	var labels []string
	for _, entry := range strings.Split(cell, ",") {
		label, _, _ := strings.Cut(entry, ":")
		labels = append(labels, strings.ToLower(strings.TrimSpace(label)))
	}
	return labels
}
