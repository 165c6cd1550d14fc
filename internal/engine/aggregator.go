package engine

import (
	"sort"

	"povdash/internal/table"
)

// Agg selects how Aggregate combines the values of a group.
type Agg int

const (
	Sum Agg = iota
	Mean
	Count
)

// Group is one aggregated bucket.
type Group struct {
	Key   string
	Value float64
	Count int   // rows with a value
	Rows  []int // row numbers of the group within the aggregated view
}

// Aggregate groups rows by groupCol and combines valueCol per group. Groups
// come out in first-seen order; null values are skipped but their rows still
// belong to the group.
func Aggregate(t *table.Table, groupCol, valueCol string, agg Agg) []Group {
	index := make(map[string]int)
	var groups []Group

	for i := 0; i < t.Len(); i++ {
		key := t.String(i, groupCol)
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, Group{Key: key})
		}
		g := &groups[gi]
		g.Rows = append(g.Rows, i)
		if v, ok := t.Float(i, valueCol); ok {
			g.Value += v
			g.Count++
		}
	}

	for i := range groups {
		switch agg {
		case Mean:
			if groups[i].Count > 0 {
				groups[i].Value /= float64(groups[i].Count)
			}
		case Count:
			groups[i].Value = float64(groups[i].Count)
		}
	}
	return groups
}

// SumByKey is Aggregate with Sum, returned as a map.
func SumByKey(t *table.Table, groupCol, valueCol string) map[string]float64 {
	out := make(map[string]float64)
	for _, g := range Aggregate(t, groupCol, valueCol, Sum) {
		out[g.Key] = g.Value
	}
	return out
}

// Distinct returns the non-empty values of col in first-seen order.
func Distinct(t *table.Table, col string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < t.Len(); i++ {
		v := t.String(i, col)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Years returns the distinct integer years of col in ascending order,
// counting only rows where every column in withValues is non-null.
func Years(t *table.Table, col string, withValues ...string) []int {
	seen := make(map[int64]bool)
	var out []int
	for i := 0; i < t.Len(); i++ {
		if hasNull(t, i, withValues) {
			continue
		}
		y, ok := t.Int(i, col)
		if !ok || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, int(y))
	}
	sort.Ints(out)
	return out
}
