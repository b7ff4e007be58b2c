package plutto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// APIError is a non-2xx answer from the Plutto API.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plutto: api returned status %d", e.Status)
}

// Detail extracts the human-readable error text from the provider body.
func (e *APIError) Detail() string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		} `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &parsed); err == nil {
		for _, candidate := range []string{parsed.Error.Detail, parsed.Error.Message, parsed.Detail, parsed.Message} {
			if strings.TrimSpace(candidate) != "" {
				return strings.TrimSpace(candidate)
			}
		}
	}
	return strings.TrimSpace(string(e.Body))
}

// AsAPIError unwraps err into an *APIError when it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError reports whether the provider gave no response at all, as
// opposed to a local failure building or encoding the request.
func IsNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// DuplicateTINMessage is surfaced verbatim when the provider rejects a tax
// id that is already registered.
const DuplicateTINMessage = "TIN already in use"

// UserMessage maps a CreateEntityValidation error to the HTTP status and
// message shown to the submitter.
func UserMessage(err error) (int, string) {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return http.StatusInternalServerError, "Unexpected network error. Please try again or contact support."
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		return apiErr.Status, "Invalid or missing fields. Check your TIN format."
	case http.StatusUnauthorized:
		return apiErr.Status, "Invalid or missing API key. Check your Plutto credentials."
	case http.StatusNotFound:
		return apiErr.Status, "Resource/TIN not found. Verify your TIN."
	case http.StatusUnprocessableEntity:
		if isDuplicateTIN(apiErr.Detail()) {
			return apiErr.Status, DuplicateTINMessage
		}
		return apiErr.Status, "Plutto could not process this TIN. Please verify your info."
	case http.StatusInternalServerError:
		return apiErr.Status, "Server error at Plutto. Please try again later."
	case http.StatusServiceUnavailable:
		return apiErr.Status, "Plutto is temporarily unavailable. Please try again later."
	default:
		return apiErr.Status, fmt.Sprintf("An error occurred (%d). Please try again.", apiErr.Status)
	}
}

// Best-effort match on provider wording; cosmetic only.
func isDuplicateTIN(detail string) bool {
	detail = strings.ToLower(detail)
	for _, marker := range []string{"already been taken", "already registered", "already in use"} {
		if strings.Contains(detail, marker) {
			return true
		}
	}
	return false
}
