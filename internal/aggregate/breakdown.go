// Package aggregate computes per-resource summary metrics from normalized
// records. Every function here is pure: the same records always produce the
// same summary, and inputs are never modified.
package aggregate

import (
	"sort"
	"strings"

	"github.com/Veraticus/billwell/internal/model"
)

// Default bucket labels for records missing their grouping field.
const (
	Uncategorized = "Uncategorized"
	Unknown       = "Unknown"
	Pending       = "pending"
)

// Bucket is one group of a breakdown.
type Bucket struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Breakdown groups records by key, summing their amounts. Buckets appear in
// the order their key was first seen. Blank keys fall into fallback.
func Breakdown(records []model.Record, key func(model.Record) string, fallback string) []Bucket {
	buckets := []Bucket{}
	index := make(map[string]int)
	for _, r := range records {
		k := strings.TrimSpace(key(r))
		if k == "" {
			k = fallback
		}
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket{Key: k})
		}
		buckets[i].Count++
		buckets[i].Total += r.Amount
	}
	return buckets
}

// TopN returns at most n buckets sorted by total, highest first. Ties keep
// their breakdown order.
func TopN(buckets []Bucket, n int) []Bucket {
	sorted := make([]Bucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Max returns the bucket with the strictly greatest total. The first bucket
// wins a tie. ok is false when no bucket has a positive total.
func Max(buckets []Bucket) (Bucket, bool) {
	best := Bucket{}
	found := false
	for _, b := range buckets {
		if b.Total > best.Total {
			best = b
			found = true
		}
	}
	return best, found
}

// Sum totals the amounts of records.
func Sum(records []model.Record) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}

func byCategory(r model.Record) string { return r.Category }
func byStatus(r model.Record) string   { return r.Status }
func byParty(r model.Record) string    { return r.Party }
