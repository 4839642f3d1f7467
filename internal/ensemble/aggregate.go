package ensemble

import (
	"errors"
	"fmt"
)

// Aggregation names how Predict combines member outputs.
type Aggregation string

const (
	// AggregationMean averages the members element-wise. The default.
	AggregationMean Aggregation = "mean"
	// AggregationVote tallies each member's preferred option of a two-way
	// output and reports the agreeing members' value spread.
	AggregationVote Aggregation = "vote"
)

var (
	ErrUnknownAggregation = errors.New("unknown aggregation")
	ErrVoteOutputs        = errors.New("vote aggregation requires two-way outputs")
)

func normalizeAggregation(agg Aggregation) (Aggregation, error) {
	switch agg {
	case "", AggregationMean:
		return AggregationMean, nil
	case AggregationVote:
		return AggregationVote, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAggregation, agg)
	}
}

// meanAcross averages B member outputs element-wise. outs is indexed
// [member][row][output].
func meanAcross(outs [][][]float64) [][]float64 {
	b := float64(len(outs))
	rows := len(outs[0])
	mean := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		cols := len(outs[0][r])
		row := make([]float64, cols)
		for _, y := range outs {
			for c := 0; c < cols; c++ {
				row[c] += y[r][c]
			}
		}
		for c := 0; c < cols; c++ {
			row[c] /= b
		}
		mean[r] = row
	}
	return mean
}

// varAcross computes the element-wise sample variance across B member
// outputs. A single-member ensemble has no spread.
func varAcross(outs [][][]float64) [][]float64 {
	b := len(outs)
	mean := meanAcross(outs)
	vs := make([][]float64, len(mean))
	for r := range mean {
		row := make([]float64, len(mean[r]))
		if b > 1 {
			for _, y := range outs {
				for c := range row {
					d := y[r][c] - mean[r][c]
					row[c] += d * d
				}
			}
			for c := range row {
				row[c] /= float64(b - 1)
			}
		}
		vs[r] = row
	}
	return vs
}

// voteAcross implements majority voting over two-way outputs. Per batch row,
// each member votes for its higher-valued option; option 1 wins only with a
// strict majority (> B/2), so ties resolve to option 0. The winning slot gets
// the mean of the agreeing members' max values, the losing slot the mean of
// their min values.
func voteAcross(outs [][][]float64) ([][]float64, error) {
	b := len(outs)
	rows := len(outs[0])
	result := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		if len(outs[0][r]) != 2 {
			return nil, fmt.Errorf("%w: got %d outputs", ErrVoteOutputs, len(outs[0][r]))
		}
		votes := 0
		for _, y := range outs {
			if y[r][1] > y[r][0] {
				votes++
			}
		}
		winner := 0
		if 2*votes > b {
			winner = 1
		}

		var maxSum, minSum float64
		agreeing := 0
		for _, y := range outs {
			vote := 0
			if y[r][1] > y[r][0] {
				vote = 1
			}
			if vote != winner {
				continue
			}
			hi, lo := y[r][0], y[r][1]
			if lo > hi {
				hi, lo = lo, hi
			}
			maxSum += hi
			minSum += lo
			agreeing++
		}

		row := make([]float64, 2)
		row[winner] = maxSum / float64(agreeing)
		row[1-winner] = minSum / float64(agreeing)
		result[r] = row
	}
	return result, nil
}
