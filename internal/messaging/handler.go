package messaging

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

var twilioTracer = otel.Tracer("clipperdesk.internal.messaging.twilio")

// Handler handles inbound SMS webhook requests from Twilio.
type Handler struct {
	webhookSecret string
	optOuts       *OptOutStore
	shopName      string
	logger        *logging.Logger
}

// NewHandler creates a new messaging webhook handler.
func NewHandler(webhookSecret string, optOuts *OptOutStore, shopName string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if optOuts == nil {
		panic("messaging: opt-out store cannot be nil")
	}
	return &Handler{
		webhookSecret: webhookSecret,
		optOuts:       optOuts,
		shopName:      shopName,
		logger:        logger,
	}
}

// TwilioWebhook handles POST /messaging/twilio/webhook requests.
func (h *Handler) TwilioWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := twilioTracer.Start(r.Context(), "messaging.twilio.webhook")
	defer span.End()

	webhookURL := buildAbsoluteURL(r)
	if h.webhookSecret != "" {
		if !ValidateTwilioSignature(r, h.webhookSecret, webhookURL) {
			h.logger.Warn("invalid twilio signature")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			span.RecordError(errors.New("invalid twilio signature"))
			return
		}
	}

	inbound, err := ParseTwilioWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse twilio webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}
	from := NormalizeE164(inbound.From)
	span.SetAttributes(
		attribute.String("clipperdesk.twilio.message_sid", inbound.MessageSid),
		attribute.String("clipperdesk.twilio.from", from),
	)

	if inbound.MessageSid == "" || from == "" {
		err := errors.New("missing required twilio fields")
		h.logger.Error("invalid twilio payload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	var reply string
	switch strings.ToUpper(strings.TrimSpace(inbound.Body)) {
	case "STOP", "STOPALL", "UNSUBSCRIBE", "QUIT":
		if err := h.optOuts.OptOut(ctx, from); err != nil {
			h.logger.Error("failed to record opt-out", "error", err, "from", from)
			http.Error(w, "Server Error", http.StatusInternalServerError)
			span.RecordError(err)
			return
		}
		h.logger.Info("sms opt-out recorded", "from", from)
		reply = "You will no longer receive texts from " + h.shopName + ". Reply START to resubscribe."
	case "START", "UNSTOP":
		if err := h.optOuts.OptIn(ctx, from); err != nil {
			h.logger.Error("failed to clear opt-out", "error", err, "from", from)
			http.Error(w, "Server Error", http.StatusInternalServerError)
			span.RecordError(err)
			return
		}
		reply = "You are resubscribed to texts from " + h.shopName + "."
	case "HELP", "INFO":
		reply = h.shopName + ": reply STOP to unsubscribe. Manage your appointment online or call the shop."
	default:
		h.logger.Info("inbound sms received", "from", from, "message_sid", inbound.MessageSid)
		reply = "Thanks for your message. " + h.shopName + " will get back to you shortly."
	}

	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Response><Message>%s</Message></Response>`, reply)
}

func buildAbsoluteURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.Scheme != "" {
		return r.URL.String()
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if r.TLS == nil {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, r.URL.RequestURI())
}
