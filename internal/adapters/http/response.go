package http

import (
	"encoding/json"
	"net/http"

	"github.com/bookloop/order-escrow-service/internal/contracts"
	"github.com/bookloop/order-escrow-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, contracts.SuccessResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, code, message, requestID string) {
	writeJSON(w, status, contracts.ErrorResponse{
		Status: "error",
		Error: contracts.ErrorPayload{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}

func mapDomainError(err error) (status int, code string) {
	switch err {
	case nil:
		return http.StatusOK, ""
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case domain.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case domain.ErrInvalidInput:
		return http.StatusBadRequest, "invalid_input"
	case domain.ErrIdempotencyRequired:
		return http.StatusBadRequest, "idempotency_key_required"
	case domain.ErrIdempotencyConflict, domain.ErrConflict:
		return http.StatusConflict, "conflict"
	case domain.ErrInvalidState:
		return http.StatusConflict, "invalid_state"
	case domain.ErrPolicyViolation:
		return http.StatusUnprocessableEntity, "policy_violation"
	case domain.ErrInsufficientBalance:
		return http.StatusUnprocessableEntity, "insufficient_balance"
	case domain.ErrInsufficientAllowance:
		return http.StatusUnprocessableEntity, "insufficient_allowance"
	case domain.ErrFeeRecipientNotSet:
		return http.StatusUnprocessableEntity, "fee_recipient_not_set"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
