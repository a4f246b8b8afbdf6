package core

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"tieintrack/pkg/domain"
)

// trendWeeks is the number of weekly points in the synthetic series.
const trendWeeks = 8

const trendDateLayout = "Jan 2"

// TrendPoint is one weekly completion sample.
type TrendPoint struct {
	Date       string  `json:"date"`
	Completion float64 `json:"completion"`
}

// Trend is a simulated completion history. It is not derived from stored
// history; Synthetic is always true.
type Trend struct {
	Synthetic bool         `json:"synthetic"`
	Points    []TrendPoint `json:"points"`
}

// TimelinePoint is one weekly status snapshot. It encodes flat, as
// {"date": ..., "<status>": n, ...} in canonical status order.
type TimelinePoint struct {
	Date   string
	Counts map[domain.Status]int
}

// MarshalJSON flattens the counts next to the date.
func (p TimelinePoint) MarshalJSON() ([]byte, error) {
	m := orderedmap.New[string, any]()
	m.Set("date", p.Date)
	for _, s := range domain.Statuses() {
		m.Set(string(s), p.Counts[s])
	}
	return json.Marshal(m)
}

// Timeline is a simulated status history. Synthetic is always true.
type Timeline struct {
	Synthetic bool            `json:"synthetic"`
	Points    []TimelinePoint `json:"points"`
}

// SyntheticTrend simulates eight weeks of completion leading up to now.
func SyntheticTrend(p domain.Project) Trend {
	return SyntheticTrendWith(p, time.Now(), nil)
}

// SyntheticTrendWith is SyntheticTrend with an explicit clock and random source.
// A nil rng uses the package-level source.
func SyntheticTrendWith(p domain.Project, now time.Time, rng *rand.Rand) Trend {
	current := CompletionRatio(p)
	points := make([]TrendPoint, trendWeeks)
	for i := 0; i < trendWeeks; i++ {
		completion := math.Max(0, current-(float64(i)*10+uniform(rng)*5))
		points[trendWeeks-1-i] = TrendPoint{
			Date:       weekLabel(now, i),
			Completion: math.Round(completion*10) / 10,
		}
	}
	return Trend{Synthetic: true, Points: points}
}

// SyntheticStatusTimeline simulates eight weekly status distributions: Complete
// shrinks going back in time, the two pending stages grow, and the rest jitter
// around their current value.
func SyntheticStatusTimeline(p domain.Project) Timeline {
	return SyntheticStatusTimelineWith(p, time.Now(), nil)
}

// SyntheticStatusTimelineWith is SyntheticStatusTimeline with an explicit clock
// and random source.
func SyntheticStatusTimelineWith(p domain.Project, now time.Time, rng *rand.Rand) Timeline {
	current := make(map[domain.Status]int)
	for _, slice := range StatusDistribution(p) {
		current[slice.Name] = slice.Value
	}
	points := make([]TimelinePoint, trendWeeks)
	for i := 0; i < trendWeeks; i++ {
		week := float64(i)
		counts := make(map[domain.Status]int, len(current))
		for _, s := range domain.Statuses() {
			base := float64(current[s])
			var v float64
			switch s {
			case domain.StatusComplete:
				v = base - (week*2 + uniform(rng)*2)
			case domain.StatusPendingVerification, domain.StatusPendingLocates:
				v = base + (week*1.5 + uniform(rng)*2)
			default:
				v = base + (uniform(rng)*4 - 2)
			}
			counts[s] = int(math.Round(math.Max(0, v)))
		}
		points[trendWeeks-1-i] = TimelinePoint{Date: weekLabel(now, i), Counts: counts}
	}
	return Timeline{Synthetic: true, Points: points}
}

func weekLabel(now time.Time, weeksBack int) string {
	return now.AddDate(0, 0, -7*weeksBack).Format(trendDateLayout)
}

func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
