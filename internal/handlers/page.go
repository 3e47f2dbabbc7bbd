package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"betsafe-ai/internal/middleware"
	"betsafe-ai/internal/models"
	"betsafe-ai/internal/render"
	"betsafe-ai/internal/services"
	"betsafe-ai/internal/session"
)

const (
	msgEmptyQuery      = "Por favor, descreva os jogos ou a rodada que deseja analisar."
	msgInvalidFocus    = "Escolha um dos modos de análise: Bilhete Seguro ou Zebra de Valor."
	msgInFlight        = "Uma análise já está em andamento nesta sessão. Aguarde o resultado."
	msgRateLimited     = "Muitas solicitações. Aguarde um minuto e tente novamente."
	msgRemoteErrFormat = "Erro na conexão com a API: "
	msgUnexpected      = "Ocorreu um erro inesperado. Tente novamente."
)

// PageData feeds web/templates/index.html.
type PageData struct {
	HasCredential bool
	Query         string
	Response      template.HTML
	Warning       string
	Error         string
}

// PageHandler serves the server-rendered form.
type PageHandler struct {
	sessions   sessionStore
	dispatcher dispatcher
	limiter    limiter
	tmpl       *template.Template
}

func NewPageHandler(sessions sessionStore, d dispatcher, l limiter, tmpl *template.Template) *PageHandler {
	return &PageHandler{
		sessions:   sessions,
		dispatcher: d,
		limiter:    l,
		tmpl:       tmpl,
	}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, PageData{HasCredential: h.hasCredential(r)})
}

func (h *PageHandler) SaveCredential(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	key := strings.TrimSpace(r.PostFormValue("api_key"))
	if key != "" {
		if err := h.sessions.SetCredential(middleware.GetSessionID(r.Context()), key); err != nil {
			log.Printf("failed to store credential: %v", err)
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) ClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearCredential(middleware.GetSessionID(r.Context())); err != nil {
		log.Printf("failed to clear credential: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) Query(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if !h.hasCredential(r) {
		h.render(w, r, http.StatusOK, PageData{})
		return
	}

	query := r.PostFormValue("query")
	focus := r.PostFormValue("focus")
	data := PageData{HasCredential: true, Query: query}

	// Only submissions that pass local checks count against the limit.
	if err := validateSubmission(focus, query); err == nil && h.limiter != nil {
		ip := middleware.ClientIP(r)
		ok, err := h.limiter.Allow(r.Context(), ip)
		if err != nil {
			log.Printf("rate limiter error for %s: %v", ip, err)
		} else if !ok {
			data.Warning = msgRateLimited
			h.render(w, r, http.StatusTooManyRequests, data)
			return
		}
	}

	_, text, err := runQuery(r.Context(), h.sessions, h.dispatcher, middleware.GetSessionID(r.Context()), focus, query)
	if err == nil {
		data.Response = render.Markdown(text)
		h.render(w, r, http.StatusOK, data)
		return
	}

	var ve *services.ValidationError
	var re *services.RemoteError
	status := http.StatusOK

	switch {
	case errors.Is(err, services.ErrMissingCredential):
		data = PageData{}
	case errors.Is(err, services.ErrEmptyQuery):
		status = http.StatusBadRequest
		data.Warning = msgEmptyQuery
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		data.Warning = msgInvalidFocus
	case errors.Is(err, session.ErrDispatchInFlight):
		status = http.StatusConflict
		data.Warning = msgInFlight
	case errors.As(err, &re):
		status = http.StatusBadGateway
		data.Error = msgRemoteErrFormat + re.Message
	default:
		log.Printf("unexpected query error: %v", err)
		status = http.StatusInternalServerError
		data.Error = msgUnexpected
	}

	h.render(w, r, status, data)
}

func (h *PageHandler) hasCredential(r *http.Request) bool {
	state, err := h.sessions.State(middleware.GetSessionID(r.Context()))
	return err == nil && state != models.StateAwaitingCredential
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		log.Printf("failed to render page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
