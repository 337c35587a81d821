package audience

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to audience errors so transports can branch without string matching.
const (
	TextCodeTabLocked            = "TAB_LOCKED"
	TextCodeUnknownTab           = "UNKNOWN_TAB"
	TextCodeGenerationInProgress = "GENERATION_IN_PROGRESS"
	TextCodeGenerationFailed     = "GENERATION_FAILED"
	TextCodeApplyUnavailable     = "APPLY_UNAVAILABLE"
	TextCodeSessionClosed        = "SESSION_CLOSED"
	TextCodeSessionNotFound      = "SESSION_NOT_FOUND"
	TextCodeInvalidInput         = "INVALID_TARGETING_INPUT"
)

func tabLockedError(tab Tab) error {
	return goerrors.New(fmt.Sprintf("audience: tab %q is locked", tab), goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeTabLocked).
		WithMetadata(map[string]any{"tab": string(tab)})
}

func unknownTabError(tab Tab) error {
	return goerrors.New(fmt.Sprintf("audience: unknown tab %q", tab), goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeUnknownTab)
}

func generationInProgressError() error {
	return goerrors.New("audience: generation already in progress", goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeGenerationInProgress)
}

func applyUnavailableError(tab Tab) error {
	return goerrors.New(fmt.Sprintf("audience: audiences can only be applied from the insights tab (active: %s)", tab), goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeApplyUnavailable)
}

func sessionClosedError(id string) error {
	return goerrors.New(fmt.Sprintf("audience: session %s is closed", id), goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeSessionClosed)
}

// SessionNotFoundError reports a missing session id.
func SessionNotFoundError(id string) error {
	return goerrors.New(fmt.Sprintf("audience: session %s not found", id), goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeSessionNotFound)
}

// GenerationFailedError wraps a generator failure. It is terminal for the request.
func GenerationFailedError(cause error) error {
	if cause == nil {
		return nil
	}
	return goerrors.Wrap(cause, goerrors.CategoryExternal, "audience: generation failed").
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeGenerationFailed)
}

// HasTextCode reports whether err (or anything it wraps) carries the given text code.
func HasTextCode(err error, code string) bool {
	var e *goerrors.Error
	for err != nil {
		if goerrors.As(err, &e) {
			if e.TextCode == code {
				return true
			}
			err = e.Source
			continue
		}
		return false
	}
	return false
}

// IsTabLocked reports a rejected tab selection.
func IsTabLocked(err error) bool { return HasTextCode(err, TextCodeTabLocked) }

// IsGenerationInProgress reports a submission rejected while loading.
func IsGenerationInProgress(err error) bool { return HasTextCode(err, TextCodeGenerationInProgress) }

// IsGenerationFailed reports a failed generation job.
func IsGenerationFailed(err error) bool { return HasTextCode(err, TextCodeGenerationFailed) }

// IsSessionClosed reports a transition attempted after teardown.
func IsSessionClosed(err error) bool { return HasTextCode(err, TextCodeSessionClosed) }

// IsSessionNotFound reports an unknown session id.
func IsSessionNotFound(err error) bool { return HasTextCode(err, TextCodeSessionNotFound) }
