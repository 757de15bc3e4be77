package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"scholarnet/internal/util"

	"github.com/go-playground/validator/v10"
)

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "SN-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status == http.StatusServiceUnavailable:
		return apiError{
			Code:    "SN-API-5030",
			Message: "This feature needs the database and workflow services. Check configuration and retry.",
		}
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "SN-DB-5001",
				Message: "Database schema is not initialized. Restart the service and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "SN-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "SN-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "SN-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "SN-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "SN-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusConflict:
		code = "SN-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusRequestEntityTooLarge:
		code = "SN-API-4013"
		msg = "Request is too large."
	}

	if status >= 400 && status < 500 && err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			msg = validationMessage(verrs)
		case errors.Is(err, util.ErrTooManyDocuments):
			msg = "Too many documents in one request. Split the batch and retry."
		case errors.Is(err, util.ErrRunNotFound):
			msg = "Analysis run was not found."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "invalid limit"):
			msg = "limit must be a non-negative integer."
		}
	}

	return apiError{Code: code, Message: msg}
}

func validationMessage(verrs validator.ValidationErrors) string {
	fe := verrs[0]
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if fe.Tag() == "required" || fe.Tag() == "notblank" {
		return fmt.Sprintf("%s is required.", ns)
	}
	return fmt.Sprintf("%s is invalid.", ns)
}
