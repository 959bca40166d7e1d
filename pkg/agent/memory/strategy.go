package memory

import "time"

// Clock supplies the current time. ConversationMemory threads one through
// rather than calling time.Now() directly so strategy behavior (which is
// keyed on message age) is deterministic under test.
type Clock func() time.Time

// RetentionStrategy tie-breaks within the Medium importance tier and scores
// removal candidates for the optimizer's priority sort. Strategies may
// never keep something the optimizer has already excluded from
// never_remove, nor may they protect something outside it — they only
// narrow which Low/Medium/Temp candidates survive under pressure.
type RetentionStrategy interface {
	Name() string
	ShouldKeep(meta *MessageMetadata, pressure float64, now time.Time) bool
	PriorityScore(meta *MessageMetadata, now time.Time) float64
}

func age(meta *MessageMetadata, now time.Time) time.Duration {
	return now.Sub(meta.CreatedAt)
}

// ConservativeStrategy keeps more, summarizes less: a 5-minute recency
// grace period and a 0.8 pressure ceiling before High is sacrificed.
type ConservativeStrategy struct{}

func (ConservativeStrategy) Name() string { return "conservative" }

func (ConservativeStrategy) ShouldKeep(meta *MessageMetadata, pressure float64, now time.Time) bool {
	switch meta.Importance {
	case Critical:
		return true
	case High:
		return pressure < 0.8
	}
	if age(meta, now) < 5*time.Minute {
		return true
	}
	if meta.Importance == Temp {
		return false
	}
	if meta.IsError && meta.ErrorResolved {
		return false
	}
	return pressure < 0.6
}

func (ConservativeStrategy) PriorityScore(meta *MessageMetadata, now time.Time) float64 {
	base := map[Importance]float64{Critical: 1000, High: 100, Medium: 50, Low: 10, Temp: 1}[meta.Importance]
	ageFactor := maxFloat(0.1, 1.0-age(meta, now).Seconds()/3600)
	errorPenalty := 1.0
	if meta.IsError {
		errorPenalty = 0.5
	}
	return base * ageFactor * errorPenalty
}

// BalancedStrategy is the default: moderate recency windows and a 0.7
// pressure ceiling for High.
type BalancedStrategy struct{}

func (BalancedStrategy) Name() string { return "balanced" }

func (BalancedStrategy) ShouldKeep(meta *MessageMetadata, pressure float64, now time.Time) bool {
	switch meta.Importance {
	case Critical:
		return true
	case High:
		return pressure < 0.7
	case Medium:
		return age(meta, now) < 450*time.Second // 7.5 minutes
	}
	if meta.IsError && meta.ErrorResolved {
		return false
	}
	if meta.Importance == Temp {
		return age(meta, now) < 60*time.Second
	}
	return pressure < 0.4
}

func (BalancedStrategy) PriorityScore(meta *MessageMetadata, now time.Time) float64 {
	base := map[Importance]float64{Critical: 1000, High: 90, Medium: 40, Low: 8, Temp: 2}[meta.Importance]
	ageFactor := maxFloat(0.1, 1.0-age(meta, now).Seconds()/2400)
	errorPenalty := 1.0
	if meta.IsError {
		errorPenalty = 0.3
	}
	return base * ageFactor * errorPenalty
}

// AggressiveStrategy removes the most: a 0.5 pressure-and-10-minute-age
// ceiling for High, only very recent Medium survives.
type AggressiveStrategy struct{}

func (AggressiveStrategy) Name() string { return "aggressive" }

func (AggressiveStrategy) ShouldKeep(meta *MessageMetadata, pressure float64, now time.Time) bool {
	switch meta.Importance {
	case Critical:
		return true
	case High:
		return pressure < 0.5 && age(meta, now) < 10*time.Minute
	case Medium:
		return age(meta, now) < 3*time.Minute
	}
	return false
}

func (AggressiveStrategy) PriorityScore(meta *MessageMetadata, now time.Time) float64 {
	base := map[Importance]float64{Critical: 1000, High: 80, Medium: 30, Low: 5, Temp: 1}[meta.Importance]
	ageFactor := maxFloat(0.05, 1.0-age(meta, now).Seconds()/1800)
	errorPenalty := 1.0
	if meta.IsError {
		errorPenalty = 0.2
	}
	return base * ageFactor * errorPenalty
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
