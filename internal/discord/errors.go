package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/pkg/retrylimit"
)

// restStatus exposes the HTTP status of a discordgo REST error to retrylimit.
type restStatus struct {
	err *discordgo.RESTError
}

func (r restStatus) Error() string { return r.err.Error() }
func (r restStatus) Unwrap() error { return r.err }

func (r restStatus) StatusCode() int {
	if r.err.Response == nil {
		return 0
	}
	return r.err.Response.StatusCode
}

// classifyREST maps a discordgo error to the lock sentinels. Errors that
// cannot succeed on retry are marked fatal; 429 and 5xx stay retryable.
func classifyREST(err error) error {
	if err == nil {
		return nil
	}

	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	code := 0
	if rest.Message != nil {
		code = rest.Message.Code
	}
	status := restStatus{rest}.StatusCode()

	switch {
	case code == discordgo.ErrCodeUnknownMember:
		return retrylimit.Fatal(fmt.Errorf("%w: %v", lock.ErrParticipantNotFound, err))
	case code == discordgo.ErrCodeMissingPermissions || status == http.StatusForbidden:
		return retrylimit.Fatal(fmt.Errorf("%w: %v", lock.ErrPermissionDenied, err))
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return restStatus{rest}
	case status >= http.StatusBadRequest:
		return retrylimit.Fatal(err)
	}
	return err
}

func restRetryConfig() retrylimit.RetryConfig {
	cfg := retrylimit.DefaultRetryConfig()
	cfg.MaxAttempts = 4
	return cfg
}
