package models

// CategoryStat is the per-category slice of AggregateStatistics.
type CategoryStat struct {
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"`
}

// AggregateStatistics is derived from the full feedback log; never stored independently.
type AggregateStatistics struct {
	TotalJokes    int                     `json:"total_jokes"`
	AverageRating float64                 `json:"average_rating"`
	CategoryStats map[string]CategoryStat `json:"category_stats"`
}

func EmptyStatistics() AggregateStatistics {
	return AggregateStatistics{CategoryStats: map[string]CategoryStat{}}
}

// ModelSummary describes one model a backend can serve.
type ModelSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}
