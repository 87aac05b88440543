package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/phoneverify"
	"github.com/MrEthical07/phoneverify/middleware"
)

const (
	banner       = "API-Verification OTP"
	maxBodyBytes = 1 << 20
)

// Engine is the subset of *phoneverify.Engine the handlers call.
type Engine interface {
	Register(ctx context.Context, phone string) (*phoneverify.RegisterResult, error)
	ConfirmOTP(ctx context.Context, req phoneverify.ConfirmRequest) (*phoneverify.ConfirmResult, error)
	SetPassword(ctx context.Context, req phoneverify.SetPasswordRequest) (*phoneverify.SetPasswordResult, error)
	Ping(ctx context.Context) error
}

type Options struct {
	Logger *slog.Logger
	// Metrics is mounted at GET /metrics when non-nil.
	Metrics http.Handler
	// TrustProxy takes the client IP from X-Forwarded-For.
	TrustProxy bool
}

type handler struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler returns the routed, middleware-wrapped API.
func NewHandler(engine Engine, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{engine: engine, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /otp", h.otp)
	mux.Handle("POST /set-password", middleware.Ticket(http.HandlerFunc(h.setPassword)))
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return middleware.RequestContext(opts.TrustProxy)(middleware.AccessLog(logger)(mux))
}

func (h *handler) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, banner)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Phone looseString `json:"phone"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if !h.decode(w, r, &body) {
		return
	}
	phone := string(body.Phone)

	if errs := checkPhone(phone, "body"); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	res, err := h.engine.Register(r.Context(), phone)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}
	writeSuccess(w, deliveryData{Phone: res.Phone, OTP: res.OTP, Delivery: res.Delivery})
}

type otpRequest struct {
	OTP looseString `json:"otp"`
}

func (h *handler) otp(w http.ResponseWriter, r *http.Request) {
	var body otpRequest
	if !h.decode(w, r, &body) {
		return
	}
	query := r.URL.Query()
	phone := query.Get("phone")
	resend := resendRequested(query.Get("resend"))
	code := string(body.OTP)

	errs := checkPhone(phone, "query")
	if !resend {
		errs = append(errs, checkOTP(code)...)
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	res, err := h.engine.ConfirmOTP(r.Context(), phoneverify.ConfirmRequest{
		Phone:  phone,
		OTP:    code,
		Resend: resend,
	})
	if err != nil {
		op := "confirm_otp"
		if resend {
			op = "resend_otp"
		}
		h.fail(w, r, op, err)
		return
	}

	if res.Resent {
		writeSuccess(w, deliveryData{Phone: res.Phone, OTP: res.OTP, Delivery: res.Delivery})
		return
	}
	writeSuccess(w, confirmData{Phone: res.Phone, OTP: res.OTP, Ticket: res.Ticket})
}

type setPasswordRequest struct {
	Password   string `json:"password"`
	RePassword string `json:"rePassword"`
	Ticket     string `json:"ticket"`
}

func (h *handler) setPassword(w http.ResponseWriter, r *http.Request) {
	var body setPasswordRequest
	if !h.decode(w, r, &body) {
		return
	}
	phone := r.URL.Query().Get("phone")

	if errs := checkPhone(phone, "query"); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	ticket := body.Ticket
	if t, ok := middleware.TicketFromContext(r.Context()); ok {
		ticket = t
	}

	res, err := h.engine.SetPassword(r.Context(), phoneverify.SetPasswordRequest{
		Phone:      phone,
		Password:   body.Password,
		RePassword: body.RePassword,
		Ticket:     ticket,
	})
	if err != nil {
		h.fail(w, r, "set_password", err)
		return
	}
	writeSuccess(w, passwordData{Phone: res.Phone, Password: res.PasswordHash})
}

// decode reads an optional JSON body. An empty body decodes to the zero value.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
	return false
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	level := slog.LevelInfo
	if errors.Is(err, phoneverify.ErrStoreUnavailable) ||
		errors.Is(err, phoneverify.ErrDeliveryFailed) ||
		errors.Is(err, phoneverify.ErrEngineNotReady) {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("op", op),
		slog.String("request_id", phoneverify.RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	writeError(w, err)
}
