package handler

import (
	"log/slog"
	"net/http"

	"github.com/cliff-dev/PayFLow/internal/ussd"
)

// The gateway always expects a well-formed termination, even when the
// request blows up internally.
const unexpectedErrorReply = ussd.EndPrefix + "An unexpected error occurred. Please try again later."

type USSDHandler struct {
	machine *ussd.Machine
	logger  *slog.Logger
}

func NewUSSDHandler(machine *ussd.Machine, logger *slog.Logger) *USSDHandler {
	return &USSDHandler{
		machine: machine,
		logger:  logger,
	}
}

// Handle processes one keystroke cycle: decode the form fields, run the
// machine, write the two-prefix plain-text reply.
func (h *USSDHandler) Handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("Panic while handling session request", "panic", p)
			w.Write([]byte(unexpectedErrorReply))
		}
	}()

	if err := r.ParseForm(); err != nil {
		h.logger.Error("Failed to parse session request", "error", err)
		w.Write([]byte(unexpectedErrorReply))
		return
	}

	req := ussd.Request{
		SessionID:   r.FormValue("sessionId"),
		ServiceCode: r.FormValue("serviceCode"),
		PhoneNumber: r.FormValue("phoneNumber"),
		Text:        r.FormValue("text"),
	}

	h.logger.Info("Session request received",
		"session_id", req.SessionID,
		"service_code", req.ServiceCode,
		"phone", req.PhoneNumber,
		"text", req.Text)

	reply := h.machine.Handle(r.Context(), req)
	w.Write([]byte(ussd.Render(reply)))
}
