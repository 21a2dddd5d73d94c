package jury

import "fmt"

const (
	// ScoreMin and ScoreMax bound every sub-score.
	ScoreMin = 0
	ScoreMax = 10

	// CriterionCount is the fixed number of sub-scores per evaluation.
	CriterionCount = 5
)

// CriterionNames label the five sub-scores, in storage order.
var CriterionNames = [CriterionCount]string{
	"technique",
	"interpretation",
	"difficulty",
	"presentation",
	"overall",
}

// ScoreSet holds the five bounded sub-scores of one evaluation.
type ScoreSet [CriterionCount]int

// Validate checks every sub-score against [ScoreMin, ScoreMax].
func (s ScoreSet) Validate() error {
	for i, score := range s {
		if score < ScoreMin || score > ScoreMax {
			return fmt.Errorf("%w: %s = %d", ErrInvalidScore, CriterionNames[i], score)
		}
	}
	return nil
}

// Total is the derived total score. It is never stored independently of
// the sub-scores; persisted totals must always equal this sum.
func (s ScoreSet) Total() int {
	total := 0
	for _, score := range s {
		total += score
	}
	return total
}
