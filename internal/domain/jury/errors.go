package jury

import "errors"

var (
	ErrUnauthorized    = errors.New("actor is not authorized for this reset scope")
	ErrVotingLocked    = errors.New("voting is locked for the current round")
	ErrInvalidScope    = errors.New("invalid reset scope")
	ErrMissingReason   = errors.New("reset reason is required")
	ErrConfirmRequired = errors.New("full system reset requires explicit confirmation")

	ErrBackupFailed     = errors.New("backup snapshot could not be persisted")
	ErrNothingToReset   = errors.New("no active rows matched the reset filter")
	ErrAuditWriteFailed = errors.New("audit log append failed")

	ErrSnapshotNotFound = errors.New("backup snapshot not found")
	ErrRestoreConflict  = errors.New("an active row already exists for a triple in the snapshot")

	ErrInvalidScore      = errors.New("sub-score out of range")
	ErrReviewerRequired  = errors.New("reviewer id is required")
	ErrCandidateRequired = errors.New("candidate id is required")
)
