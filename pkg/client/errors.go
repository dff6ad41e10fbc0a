package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failed call.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindServer     Kind = "server"
	KindNetwork    Kind = "network"
	KindUnknown    Kind = "unknown"
)

const (
	// StatusNetwork is reported when no response was received.
	StatusNetwork = 0
	// StatusUnknown is reported for failures that are not HTTP failures.
	StatusUnknown = -1
)

// Error is returned by every Client method that fails after building a
// request. Message is suitable for showing to a user.
type Error struct {
	Kind             Kind
	Status           int
	Message          string
	ValidationErrors map[string]string
	Timestamp        time.Time
	Err              error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}

type errorBody struct {
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validation_errors"`
	Timestamp        time.Time         `json:"timestamp"`
}

func statusKind(status int) Kind {
	switch status {
	case fiber.StatusBadRequest:
		return KindValidation
	case fiber.StatusNotFound:
		return KindNotFound
	case fiber.StatusInternalServerError:
		return KindServer
	}
	return KindUnknown
}

func responseError(status int, body []byte) *Error {
	e := &Error{
		Kind:      statusKind(status),
		Status:    status,
		Timestamp: time.Now().UTC(),
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.ValidationErrors = eb.ValidationErrors
		switch {
		case eb.Message != "":
			e.Message = eb.Message
		case eb.Error != "":
			e.Message = eb.Error
		}
		if !eb.Timestamp.IsZero() {
			e.Timestamp = eb.Timestamp
		}
	}
	if e.Message == "" {
		e.Message = "Server error"
	}
	return e
}

func networkError(err error) *Error {
	return &Error{
		Kind:      KindNetwork,
		Status:    StatusNetwork,
		Message:   "Connection error, check that the API is running",
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

func unknownError(err error) *Error {
	return &Error{
		Kind:      KindUnknown,
		Status:    StatusUnknown,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}
