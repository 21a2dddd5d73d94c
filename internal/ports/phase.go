package ports

import "context"

// PhaseGate exposes the single global round pointer and its lock state.
// AdvanceRound participates in the caller's transaction when one is present
// in the context.
type PhaseGate interface {
	CurrentRound(ctx context.Context) (string, error)
	IsLocked(ctx context.Context) (bool, error)
	AdvanceRound(ctx context.Context, newRound string, updatedAt string) error
	SetLocked(ctx context.Context, locked bool, updatedAt string) error
}
