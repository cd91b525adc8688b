package http

import (
	"errors"
	"net/http"

	"notary-backend/internal/app"
	"notary-backend/internal/ledger"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// mapError translates an application error into its machine-checkable code
// and HTTP status
func mapError(err error) (code string, status int) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return "invalid_input", http.StatusBadRequest
	case errors.Is(err, app.ErrInvalidCredentials):
		return "invalid_credentials", http.StatusUnauthorized
	case errors.Is(err, app.ErrTwoFactorRequired):
		return "two_factor_required", http.StatusUnauthorized
	case errors.Is(err, app.ErrInvalidOTP):
		return "invalid_otp", http.StatusUnauthorized
	case errors.Is(err, app.ErrAddressNotRegistered):
		return "address_not_registered", http.StatusNotFound
	case errors.Is(err, app.ErrNonceNotFound):
		return "nonce_not_found", http.StatusUnauthorized
	case errors.Is(err, app.ErrSignatureInvalid):
		return "signature_invalid", http.StatusUnauthorized
	case errors.Is(err, app.ErrAddressMismatch):
		return "address_mismatch", http.StatusUnauthorized
	case errors.Is(err, app.ErrForbidden):
		return "forbidden", http.StatusForbidden
	case errors.Is(err, app.ErrDocumentChanged):
		return "document_changed", http.StatusBadRequest
	case errors.Is(err, app.ErrAlreadyNotarized):
		return "already_notarized", http.StatusBadRequest
	case errors.Is(err, app.ErrNoPendingUpload):
		return "no_pending_upload", http.StatusNotFound
	case errors.Is(err, app.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, app.ErrContractAlreadySet):
		return "contract_already_set", http.StatusConflict
	case errors.Is(err, app.ErrNoContract), errors.Is(err, app.ErrNoChainAddress), errors.Is(err, app.ErrNoWalletAddress):
		return "invalid_input", http.StatusBadRequest
	case errors.Is(err, ledger.ErrTimeout):
		return "ledger_timeout", http.StatusGatewayTimeout
	case errors.Is(err, app.ErrLedger):
		return "ledger_error", http.StatusBadGateway
	default:
		return "internal_error", http.StatusInternalServerError
	}
}

func (ser *server) respondError(w http.ResponseWriter, err error) {
	code, status := mapError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		// don't leak internals to the client
		message = "internal server error"
		ser.logger.Error(err.Error())
	} else {
		ser.logger.Warn(err.Error())
	}

	ser.respondJSON(w, status, errorResponse{Code: code, Error: message})
}

// badRequest reports a handler-level validation failure with its own message
func (ser *server) badRequest(w http.ResponseWriter, message string) {
	ser.logger.Warn(message)
	ser.respondJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_input", Error: message})
}
