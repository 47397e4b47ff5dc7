package summary

import (
	"sort"

	"github.com/pbaille/journal/internal/domain"
)

// DayPoint is the mean sentiment of one calendar day (UTC)
type DayPoint struct {
	Date      string  `json:"date"`
	MeanScore float64 `json:"mean_score"`
}

// ThemeCount is how often one theme occurred across a window
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// Trends rolls a window of entries (ordered oldest first) into a daily mean
// sentiment series and theme frequency counts. Days come back ascending by
// date; themes descending by count, ties by first appearance.
func Trends(entries []domain.JournalEntry) ([]DayPoint, []ThemeCount) {
	var dayOrder []string
	daySums := make(map[string]float64)
	dayCounts := make(map[string]int)

	var themeOrder []string
	themeCounts := make(map[string]int)

	for _, e := range entries {
		day := e.CreatedAt.UTC().Format("2006-01-02")
		if _, seen := daySums[day]; !seen {
			dayOrder = append(dayOrder, day)
		}
		daySums[day] += e.SentimentScore
		dayCounts[day]++

		for _, theme := range e.Themes {
			if _, seen := themeCounts[theme]; !seen {
				themeOrder = append(themeOrder, theme)
			}
			themeCounts[theme]++
		}
	}

	// Entries arrive oldest first, but sort anyway so callers holding
	// unordered slices still get an ascending series.
	sort.Strings(dayOrder)

	days := make([]DayPoint, 0, len(dayOrder))
	for _, day := range dayOrder {
		days = append(days, DayPoint{
			Date:      day,
			MeanScore: daySums[day] / float64(dayCounts[day]),
		})
	}

	sort.SliceStable(themeOrder, func(i, j int) bool {
		return themeCounts[themeOrder[i]] > themeCounts[themeOrder[j]]
	})

	counts := make([]ThemeCount, 0, len(themeOrder))
	for _, theme := range themeOrder {
		counts = append(counts, ThemeCount{Theme: theme, Count: themeCounts[theme]})
	}

	return days, counts
}
