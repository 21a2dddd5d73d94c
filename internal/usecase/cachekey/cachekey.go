// Package cachekey defines the key scheme for cached aggregate counts,
// shared by the usecases that fill the cache and the reset engine that
// invalidates it.
package cachekey

import "fmt"

const ActiveTotal = "active_total"

func CandidateCount(candidateID uint64) string {
	return fmt.Sprintf("candidate_active_count:%d", candidateID)
}

func ReviewerCount(reviewerID uint64) string {
	return fmt.Sprintf("reviewer_active_count:%d", reviewerID)
}

func RoundCount(round string) string {
	return "round_active_count:" + round
}
