package cmd

import (
	"testing"

	"juryboard/internal/domain/jury"
)

func TestParseScoreList(t *testing.T) {
	scores, err := parseScoreList("8,7,9,6,5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if scores != (jury.ScoreSet{8, 7, 9, 6, 5}) {
		t.Fatalf("unexpected scores: %v", scores)
	}

	if _, err := parseScoreList(" 8 , 7 ,9,6,5 "); err != nil {
		t.Fatalf("parse with spaces: %v", err)
	}

	if _, err := parseScoreList("8,7,9"); err == nil {
		t.Fatalf("expected error for short list")
	}
	if _, err := parseScoreList("8,7,9,6,x"); err == nil {
		t.Fatalf("expected error for non-numeric score")
	}
}
