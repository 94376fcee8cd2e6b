package model

import "errors"

// Sentinel errors shared across engines, matching spec.md §7's taxonomy.
var (
	// ErrPermissionDenied means tap creation failed because accessibility
	// trust has not been granted. Callers report to the UI and do not
	// retry automatically.
	ErrPermissionDenied = errors.New("accessibility permission not granted")

	// ErrTapUnavailable means the HID tap failed to create; continuous
	// gestures may misbehave during window-server capture but this is not
	// fatal to the rest of the pipeline.
	ErrTapUnavailable = errors.New("event tap unavailable")

	// ErrSettingsUnavailable means no settings snapshot has been published
	// yet. Callers treat this as all-features-disabled pass-through.
	ErrSettingsUnavailable = errors.New("settings snapshot not yet available")

	// ErrEventConstructionFailed means the platform refused to construct a
	// synthetic event for this frame. Callers drop the frame's emission
	// and do not retry.
	ErrEventConstructionFailed = errors.New("event construction failed")
)
