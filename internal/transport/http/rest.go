package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
	"quiz-room-service/internal/app"
	"quiz-room-service/internal/auth"
	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/metrics"
)

// RouterConfig carries the HTTP surface settings.
type RouterConfig struct {
	AllowedOrigins []string
	RateLimit      int // requests per minute per IP, 0 disables
}

// RESTHandler mirrors the socket join/name/create operations for pre-connection validation.
type RESTHandler struct {
	rooms *app.RoomManager
	auth  *auth.Manager
}

func NewRESTHandler(rooms *app.RoomManager, authMgr *auth.Manager) *RESTHandler {
	return &RESTHandler{rooms: rooms, auth: authMgr}
}

// NewRouter wires REST routes, the websocket endpoint, health and metrics.
func NewRouter(cfg RouterConfig, rest *RESTHandler, ws *WSHandler, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/ws", ws.ServeWS)

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.Limit(cfg.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
		}
		r.Post("/auth/login", rest.login)
		r.Post("/rooms/new", rest.createRoom)
		r.Post("/rooms/{roomID}/join", rest.joinRoom)
		r.Post("/rooms/{roomID}/name", rest.validateName)
		r.Get("/history", rest.listHistory)
		r.With(rest.requireAdmin).Delete("/history", rest.clearHistory)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("ip", r.RemoteAddr).
			Msg("http request")
	})
}

type createRoomRequest struct {
	QuizID   string `json:"quizId"`
	SocketID string `json:"socketId"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type nameResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *RESTHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" || req.SocketID == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "quizId and socketId are required"})
		return
	}
	room, err := h.rooms.CreateRoom(r.Context(), req.QuizID, req.SocketID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomCreatedPayload{RoomID: room.ID()})
}

func (h *RESTHandler) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if !app.ValidRoomID(roomID) {
		writeError(w, domain.ErrInvalidRoomID)
		return
	}
	writeJSON(w, http.StatusOK, h.rooms.ProcessJoinRoom(roomID))
}

func (h *RESTHandler) validateName(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	room, err := h.rooms.FindRoom(roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid body"})
		return
	}
	if !h.rooms.ProcessUsername(req.Name, room) {
		writeJSON(w, http.StatusOK, nameResponse{Valid: false, Message: "name is empty, reserved, taken or banned"})
		return
	}
	writeJSON(w, http.StatusOK, nameResponse{Valid: true})
}

func (h *RESTHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid body"})
		return
	}
	token, err := h.auth.Login(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *RESTHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.rooms.History().List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *RESTHandler) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.History().Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || h.auth.Verify(token) != nil {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "admin token required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrQuizNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRoomID), errors.Is(err, domain.ErrInvalidPoints):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPassword):
		status = http.StatusUnauthorized
	default:
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, messageResponse{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
