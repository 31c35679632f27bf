package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangang/jokecli/internal/models"
)

const noFeedbackReport = "📊 Feedback Statistics\n\nNo feedback data available yet. Generate some jokes and rate them!"

type categoryRow struct {
	name string
	stat models.CategoryStat
}

// FormatStatistics lays out totals, a 5..1 rating histogram and the
// per-category breakdown.
func FormatStatistics(st models.AggregateStatistics, dist map[int]int) string {
	if st.TotalJokes == 0 {
		return noFeedbackReport
	}

	lines := []string{
		"📊 Feedback Statistics",
		strings.Repeat("=", 40),
		fmt.Sprintf("📈 Total jokes rated: %d", st.TotalJokes),
		fmt.Sprintf("⭐ Average rating: %.1f/5.0", st.AverageRating),
		"",
	}

	if len(dist) > 0 {
		lines = append(lines, "📊 Rating Distribution:", strings.Repeat("-", 25))
		for rating := models.MaxRating; rating >= models.MinRating; rating-- {
			count := dist[rating]
			pct := percent(count, st.TotalJokes)
			lines = append(lines, fmt.Sprintf("%s (%d): %2d jokes %s %4.1f%%",
				strings.Repeat("⭐", rating), rating, count, strings.Repeat("█", int(pct/5)), pct))
		}
		lines = append(lines, "")
	}

	rows := sortedCategories(st.CategoryStats)
	if len(rows) == 0 {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "📂 By Category:", strings.Repeat("-", 20))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  %s: %d jokes (%.1f%%), %.1f/5.0 avg",
			titleCase(r.name), r.stat.Count, percent(r.stat.Count, st.TotalJokes), r.stat.AvgRating))
	}

	if len(rows) > 1 {
		most, least := rows[0], rows[len(rows)-1]
		lines = append(lines, "",
			fmt.Sprintf("🏆 Most popular: %s (%d jokes)", titleCase(most.name), most.stat.Count),
			fmt.Sprintf("📉 Least popular: %s (%d jokes)", titleCase(least.name), least.stat.Count),
		)

		best, worst := rows[0], rows[0]
		for _, r := range rows[1:] {
			if r.stat.AvgRating > best.stat.AvgRating {
				best = r
			}
			if r.stat.AvgRating < worst.stat.AvgRating {
				worst = r
			}
		}
		if best.name != worst.name {
			lines = append(lines,
				fmt.Sprintf("🌟 Highest rated: %s (%.1f/5.0)", titleCase(best.name), best.stat.AvgRating),
				fmt.Sprintf("💭 Lowest rated: %s (%.1f/5.0)", titleCase(worst.name), worst.stat.AvgRating),
			)
		}
	}

	return strings.Join(lines, "\n")
}

// sortedCategories orders by count descending, then by name.
func sortedCategories(stats map[string]models.CategoryStat) []categoryRow {
	rows := make([]categoryRow, 0, len(stats))
	for name, stat := range stats {
		rows = append(rows, categoryRow{name: name, stat: stat})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].stat.Count != rows[j].stat.Count {
			return rows[i].stat.Count > rows[j].stat.Count
		}
		return rows[i].name < rows[j].name
	})
	return rows
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
