package ports

import "context"

// NotificationKind selects the message template for a post-reset notification.
type NotificationKind string

const (
	NotifyIndividualReset NotificationKind = "individual"
	NotifyCandidateReset  NotificationKind = "by_candidate"
	NotifyReviewerReset   NotificationKind = "by_reviewer"
	NotifyPhaseAdvanced   NotificationKind = "phase_transition"
	NotifyFullSystemReset NotificationKind = "full_system"
)

// ResetEvent is the extensibility event published after a committed reset.
type ResetEvent struct {
	Scope        string
	ActorID      uint64
	RowsAffected int64
	SnapshotUID  string
	Reason       string
	OccurredAt   string
}

// Notifier is the messaging collaborator. Both methods are fire-and-forget
// from the caller's perspective: they run after commit and their errors are
// logged, never surfaced as operation failure.
type Notifier interface {
	Notify(ctx context.Context, kind NotificationKind, recipients []uint64, templateContext map[string]string) error
	PublishResetEvent(ctx context.Context, event ResetEvent) error
}
