package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUsernameTaken is returned when registering an already used display name.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned for an unknown name or a wrong password.
	// Both cases share one error so the response cannot leak which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid, expired or revoked.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUserNotFound is returned when a referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrItemNotFound is returned when a referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")
	// ErrNotOwner is returned when the caller is not the item's seller.
	// Absence and ownership mismatch are deliberately indistinguishable.
	ErrNotOwner = errors.New("not authorized to modify this item")
	// ErrSelfPurchase is returned when a seller tries to buy their own item.
	ErrSelfPurchase = errors.New("you cannot buy your own item")
	// ErrItemUnavailable is returned when an item is already purchased or inactive.
	ErrItemUnavailable = errors.New("item is not available for purchase")
	// ErrEmptyUpload is returned when an image upload carries no bytes.
	ErrEmptyUpload = errors.New("image file is empty")
	// ErrUploadFailed is returned when the object store rejects an upload.
	ErrUploadFailed = errors.New("image upload failed")
)

// ErrorResponse is the envelope returned for every failed request.
// Status is "fail" for 4xx responses and "error" for 5xx responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to the response envelope.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	status := "fail"
	if e.StatusCode >= http.StatusInternalServerError {
		status = "error"
	}
	return ErrorResponse{
		Status:  status,
		Message: e.Message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognized
// collapses into a generic 500 so internal detail never reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrItemNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		return NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrSelfPurchase):
		return NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrItemUnavailable):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrEmptyUpload):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUploadFailed):
		return NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
}
