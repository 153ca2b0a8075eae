package coach

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/salescoach-api/internal/session"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

// maxBodyBytes bounds request bodies; chat and roleplay turns are short.
const maxBodyBytes = 1 << 20

// SessionHeader carries the caller's session ID in both directions.
const SessionHeader = "X-Session-ID"

// Handler exposes Service over HTTP.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) ChatSend(w http.ResponseWriter, r *http.Request) {
	var req ChatSendRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.ChatSend(r.Context(), sessionID(r), req)
	h.respond(w, r, resp, resp.SessionID, err)
}

func (h *Handler) ChatMessages(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.ChatMessages(r.Context(), sessionID(r))
	h.respond(w, r, resp, resp.SessionID, nil)
}

func (h *Handler) ChatClear(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.ChatClear(r.Context(), sessionID(r))
	h.respond(w, r, resp, resp.SessionID, nil)
}

func (h *Handler) ChatSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ChatSummary(r.Context(), sessionID(r))
	h.respond(w, r, resp, resp.SessionID, err)
}

func (h *Handler) RoleplayStart(w http.ResponseWriter, r *http.Request) {
	var req RoleplayStartRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.RoleplayStart(r.Context(), sessionID(r), req)
	h.respond(w, r, resp, resp.SessionID, err)
}

func (h *Handler) RoleplayRespond(w http.ResponseWriter, r *http.Request) {
	var req RoleplayRespondRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.RoleplayRespond(r.Context(), sessionID(r), req)
	h.respond(w, r, resp, resp.SessionID, err)
}

func (h *Handler) RoleplayEQ(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.RoleplayEQ(r.Context(), sessionID(r))
	h.respond(w, r, resp, resp.SessionID, err)
}

func (h *Handler) RoleplayEnd(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.RoleplayEnd(r.Context(), sessionID(r))
	h.respond(w, r, resp, resp.SessionID, err)
}

func (h *Handler) RoleplaySession(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.RoleplaySession(r.Context(), sessionID(r))
	h.respond(w, r, resp, resp.SessionID, nil)
}

func (h *Handler) SQLTranslate(w http.ResponseWriter, r *http.Request) {
	var req SQLTranslateRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.SQLTranslate(r.Context(), sessionID(r), req)
	h.respond(w, r, resp, resp.SessionID, err)
}

func (h *Handler) SQLHistory(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.SQLHistory(r.Context(), sessionID(r))
	h.respond(w, r, resp, resp.SessionID, nil)
}

func (h *Handler) KnowledgeAsk(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeAskRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.KnowledgeAsk(r.Context(), req)
	h.respond(w, r, resp, "", err)
}

func (h *Handler) FrameworksAdvice(w http.ResponseWriter, r *http.Request) {
	var req FrameworkAdviceRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.FrameworksAdvice(r.Context(), req)
	h.respond(w, r, resp, "", err)
}

func (h *Handler) HeuristicsCustomize(w http.ResponseWriter, r *http.Request) {
	var req HeuristicRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.HeuristicsCustomize(r.Context(), req)
	h.respond(w, r, resp, "", err)
}

func (h *Handler) ModulesExercise(w http.ResponseWriter, r *http.Request) {
	var req ExerciseRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.ModulesExercise(r.Context(), req)
	h.respond(w, r, resp, "", err)
}

// CoachPrompts serves both GET and POST; GET has no context.
func (h *Handler) CoachPrompts(w http.ResponseWriter, r *http.Request) {
	var req CoachPromptsRequest
	if r.Method == http.MethodPost && !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.svc.CoachPrompts(r.Context(), req), "", nil)
}

func (h *Handler) DashboardInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.DashboardInsights())
}

func (h *Handler) DailyFocus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.svc.DailyFocus(queryParam(q.Has("role"), q.Get("role")), queryParam(q.Has("specialty"), q.Get("specialty"))))
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "Not found")
}

// decode reads an optional JSON body. An empty body leaves dst zeroed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, r, http.StatusBadRequest, "invalid JSON body")
	return false
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, payload any, sid string, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if sid != "" {
		w.Header().Set(SessionHeader, sid)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, verr.Reason)
	case errors.Is(err, ErrNoActiveRoleplay):
		writeError(w, r, http.StatusConflict, ErrNoActiveRoleplay.Error())
	case errors.Is(err, ErrProviderUnavailable):
		writeError(w, r, http.StatusBadGateway, ErrProviderUnavailable.Error())
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func sessionID(r *http.Request) string {
	if id := session.IDFromContext(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return session.NewID(time.Now())
}

func queryParam(present bool, value string) *string {
	if !present {
		return nil
	}
	return &value
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error":  msg,
		"path":   r.URL.Path,
		"method": r.Method,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
