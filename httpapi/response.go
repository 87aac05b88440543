package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/phoneverify"
)

const msgSuccess = "success"

type successBody struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type deliveryData struct {
	Phone    string                       `json:"phone"`
	OTP      string                       `json:"otp"`
	Delivery *phoneverify.DeliveryReceipt `json:"resp_twilio"`
}

type confirmData struct {
	Phone  string `json:"phone"`
	OTP    string `json:"otp"`
	Ticket string `json:"ticket,omitempty"`
}

type passwordData struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successBody{Message: msgSuccess, Data: data})
}

func writeFieldErrors(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// writeError renders any engine failure as 400 {"message": ..., echo...}.
func writeError(w http.ResponseWriter, err error) {
	body := map[string]any{"message": err.Error()}

	var diag *phoneverify.DiagnosticError
	if errors.As(err, &diag) {
		for k, v := range diag.Echo {
			if k == "message" {
				continue
			}
			body[k] = v
		}
	}
	writeJSON(w, http.StatusBadRequest, body)
}
