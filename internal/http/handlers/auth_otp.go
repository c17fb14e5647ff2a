package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clipperdesk/clipperdesk/internal/messaging"
	"github.com/clipperdesk/clipperdesk/internal/staff"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// otpIssuer issues and verifies one-time login codes.
type otpIssuer interface {
	Issue(ctx context.Context, phone string) (string, error)
	Verify(ctx context.Context, phone, code string) error
}

// barberLookup resolves a phone number to an active barber.
type barberLookup interface {
	GetByPhone(ctx context.Context, phone string) (*staff.Barber, error)
}

// AuthOTPHandler logs barbers in by texting them a one-time code.
type AuthOTPHandler struct {
	otp         otpIssuer
	barbers     barberLookup
	sms         messaging.SMSSender
	staffSecret string
	tokenTTL    time.Duration
	shopName    string
	logger      *logging.Logger
}

// NewAuthOTPHandler creates the OTP login handler.
func NewAuthOTPHandler(otp otpIssuer, barbers barberLookup, sms messaging.SMSSender, staffSecret, shopName string, logger *logging.Logger) *AuthOTPHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthOTPHandler{
		otp:         otp,
		barbers:     barbers,
		sms:         sms,
		staffSecret: staffSecret,
		tokenTTL:    12 * time.Hour,
		shopName:    shopName,
		logger:      logger,
	}
}

type otpRequestBody struct {
	Phone string `json:"phone"`
}

type otpVerifyBody struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// RequestCode handles POST /auth/otp/request.
// A code is only texted to phones on the active roster, but the response is
// identical either way so the endpoint can't be used to probe numbers.
func (h *AuthOTPHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var body otpRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	phone := messaging.NormalizeE164(body.Phone)
	if phone == "" {
		http.Error(w, "phone is required", http.StatusBadRequest)
		return
	}

	barber, err := h.barbers.GetByPhone(r.Context(), phone)
	if err != nil {
		if !errors.Is(err, staff.ErrBarberNotFound) {
			h.logger.Error("otp roster lookup failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	if barber != nil && barber.Active {
		code, err := h.otp.Issue(r.Context(), phone)
		if err != nil {
			h.logger.Error("otp issue failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if err := h.sms.Send(r.Context(), messaging.OutboundSMS{
			To:      phone,
			Body:    h.shopName + " login code: " + code,
			Purpose: "otp",
		}); err != nil {
			h.logger.Error("otp sms failed", "error", err, "to", phone)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	} else {
		h.logger.Warn("otp requested for unknown or inactive phone", "phone", phone)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
}

// VerifyCode handles POST /auth/otp/verify and returns a staff JWT.
func (h *AuthOTPHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var body otpVerifyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	phone := messaging.NormalizeE164(body.Phone)
	if phone == "" || body.Code == "" {
		http.Error(w, "phone and code are required", http.StatusBadRequest)
		return
	}

	if err := h.otp.Verify(r.Context(), phone, body.Code); err != nil {
		switch {
		case errors.Is(err, messaging.ErrOTPNotFound),
			errors.Is(err, messaging.ErrOTPMismatch),
			errors.Is(err, messaging.ErrOTPTooManyAttempts):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		default:
			h.logger.Error("otp verify failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	barber, err := h.barbers.GetByPhone(r.Context(), phone)
	if err != nil {
		if errors.Is(err, staff.ErrBarberNotFound) {
			http.Error(w, "not on the roster", http.StatusUnauthorized)
			return
		}
		h.logger.Error("otp roster lookup failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !barber.Active {
		http.Error(w, "not on the roster", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := h.issueStaffToken(barber.ID)
	if err != nil {
		h.logger.Error("failed to sign staff token", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("staff login", "barber_id", barber.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
		"barber_id":  barber.ID,
		"name":       barber.DisplayName,
	})
}

func (h *AuthOTPHandler) issueStaffToken(barberID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(h.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   barberID,
		Issuer:    "clipperdesk",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.staffSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
