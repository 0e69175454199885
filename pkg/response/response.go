package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
	BAD_REQUEST    ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	FORBIDDEN      ErrCode = "FORBIDDEN"
	LOCKED         ErrCode = "LOCKED"
	CONFLICT       ErrCode = "SCHEDULING_CONFLICT"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("forbidden")
	ErrLocked     = errors.New("resource is locked")
	ErrConflict   = errors.New("scheduling conflict")
)

// ConflictError names the violated scheduling rule. The reason is surfaced
// verbatim to the API caller so "pick another time" failures stay
// distinguishable from infrastructure errors.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// BadRequestError carries the field-level validation message so handlers can
// surface it instead of a generic rejection.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

func (e *BadRequestError) Unwrap() error {
	return ErrBadRequest
}

func BadRequest(reason string) error {
	return &BadRequestError{Reason: reason}
}

func BadRequestReason(err error) string {
	var be *BadRequestError
	if errors.As(err, &be) {
		return be.Reason
	}
	return ErrBadRequest.Error()
}

// ConflictReason extracts the violated-rule message from an error chain,
// falling back to the generic conflict text.
func ConflictReason(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ErrConflict.Error()
}

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
