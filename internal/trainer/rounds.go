package trainer

// Round is a half-open [Start, End) slice of the global step budget.
type Round struct {
	Start int
	End   int
}

// Rounds splits steps into steps/interval consecutive rounds:
// [(0, interval), (interval, 2*interval), ...]. A trailing remainder smaller
// than interval is dropped, matching integer division.
func Rounds(steps, interval int) []Round {
	if steps <= 0 || interval <= 0 {
		return nil
	}
	n := steps / interval
	rounds := make([]Round, 0, n)
	for i := 0; i < n; i++ {
		rounds = append(rounds, Round{Start: i * interval, End: i*interval + interval})
	}
	return rounds
}
