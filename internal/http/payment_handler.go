package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiankay999/Kay-Birks-website/internal/checkout"
)

type PaymentHandler struct {
	service checkout.CheckoutService
	timeout time.Duration
}

func NewPaymentHandler(service checkout.CheckoutService, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		timeout: timeout,
	}
}

func (h *PaymentHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var req checkout.InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.service.Initialize(ctx, &req)
	if err != nil {
		var validationErr *checkout.ValidationError
		switch {
		case errors.As(err, &validationErr):
			respondError(w, http.StatusBadRequest, "validation_failed", validationErr.Error())
		case errors.Is(err, checkout.ErrGateway):
			log.Printf("payment initialization error [%s]: %v", getRequestID(r.Context()), err)
			respondError(w, http.StatusBadGateway, "gateway_error", "Failed to initialize payment, please try again")
		default:
			log.Printf("payment initialization error [%s]: %v", getRequestID(r.Context()), err)
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	reference := chi.URLParam(r, "reference")
	if reference == "" {
		respondError(w, http.StatusBadRequest, "invalid_reference", "reference is required")
		return
	}

	resp, err := h.service.Verify(ctx, reference)
	if err != nil {
		log.Printf("payment verification error [%s]: %v", getRequestID(r.Context()), err)
		if errors.Is(err, checkout.ErrGateway) {
			respondError(w, http.StatusBadGateway, "gateway_error", "Payment verification failed, please try again")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	// The raw provider payload goes back to the caller; only a status of
	// exactly "success" may be treated as a successful payment.
	respondJSON(w, http.StatusOK, resp)
}
