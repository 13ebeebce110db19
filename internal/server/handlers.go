package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/dsl"
	apperr "github.com/matzehuels/erdsync/pkg/errors"
	"github.com/matzehuels/erdsync/pkg/pipeline"
	"github.com/matzehuels/erdsync/pkg/render"
	"github.com/matzehuels/erdsync/pkg/session"
)

// maxBodyBytes leaves room for JSON escaping around a maximal document.
const maxBodyBytes = 2*apperr.MaxDocumentLength + 4096

// =============================================================================
// Requests and responses
// =============================================================================

// ParseRequest is the body of POST /api/parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// MoveRequest is the body of POST /api/move.
type MoveRequest struct {
	Text string   `json:"text"`
	Node string   `json:"node" validate:"required,max=256"`
	X    *float64 `json:"x" validate:"required"`
	Y    *float64 `json:"y" validate:"required"`
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Text     string `json:"text"`
	Format   string `json:"format" validate:"omitempty,oneof=json dot svg png pdf"`
	Detailed bool   `json:"detailed"`
}

// SessionRequest is the body of POST and PUT /api/sessions.
type SessionRequest struct {
	Name string  `json:"name" validate:"max=200"`
	Text *string `json:"text"`
}

// PositionRequest is the body of POST .../nodes/{nodeID}/move.
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// ModelResponse describes a parsed document.
type ModelResponse struct {
	Nodes   []diagram.Node    `json:"nodes"`
	Links   []diagram.Link    `json:"links"`
	Ignored []dsl.IgnoredLine `json:"ignored"`
	Stats   StatsResponse     `json:"stats"`
}

// StatsResponse is diagram.Stats with JSON names.
type StatsResponse struct {
	Nodes    int `json:"nodes"`
	Links    int `json:"links"`
	Dangling int `json:"dangling"`
	Placed   int `json:"placed"`
}

// TextResponse carries an updated document.
type TextResponse struct {
	Text string `json:"text"`
}

// SessionResponse is a session plus, where useful, its model.
type SessionResponse struct {
	*session.Session
	Model *ModelResponse `json:"model,omitempty"`
}

func newModelResponse(res *dsl.Result) *ModelResponse {
	st := res.Model.Stats()
	ignored := res.Ignored
	if ignored == nil {
		ignored = []dsl.IgnoredLine{}
	}
	return &ModelResponse{
		Nodes:   res.Model.Nodes,
		Links:   res.Model.Links,
		Ignored: ignored,
		Stats:   StatsResponse{st.Nodes, st.Links, st.Dangling, st.Placed},
	}
}

// =============================================================================
// Stateless endpoints
// =============================================================================

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := apperr.ValidateDocument(req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Parse(r.Context(), req.Text, pipeline.Options{Layout: s.parse.Layout})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newModelResponse(res))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := apperr.ValidateDocument(req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := pipeline.Move(r.Context(), req.Text, req.Node, *req.X, *req.Y, s.parse)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := apperr.ValidateDocument(req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := pipeline.DefaultFormat
	if req.Format != "" {
		f, err := render.ParseFormat(req.Format)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		format = f
	}
	res, err := s.runner.Execute(r.Context(), req.Text, pipeline.Options{
		Formats:  []render.Format{format},
		Layout:   s.parse.Layout,
		Detailed: req.Detailed,
		Logger:   s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Erdsync-Cache", cacheStatus(res.CacheInfo))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

func cacheStatus(c pipeline.CacheInfo) string {
	if c.AllHit() {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*session.Session{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	text := ""
	if req.Text != nil {
		text = *req.Text
	}
	if err := apperr.ValidateDocument(text); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := session.New(req.Name, text)
	if err := s.store.Put(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID, "name", sess.Name)
	writeJSON(w, http.StatusCreated, s.withModel(sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Session: sess})
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text != nil {
		if err := apperr.ValidateDocument(*req.Text); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name != "" {
		sess.Name = req.Name
	}
	if req.Text != nil {
		sess.SetText(*req.Text)
	}
	if err := s.store.Put(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.withModel(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		s.writeError(w, r, session.ErrNotFound)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionModel(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Parse(r.Context(), sess.Text, pipeline.Options{Layout: s.parse.Layout})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newModelResponse(res))
}

func (s *Server) moveSessionNode(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !s.decode(w, r, &req) {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")

	s.editMu.Lock()
	defer s.editMu.Unlock()

	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := pipeline.Move(r.Context(), sess.Text, nodeID, *req.X, *req.Y, s.parse)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.SetText(text)
	if err := s.store.Put(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("node moved", "session", sess.ID, "node", nodeID, "x", *req.X, "y", *req.Y)
	writeJSON(w, http.StatusOK, s.withModel(sess))
}

func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		return nil, session.ErrNotFound
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) withModel(sess *session.Session) SessionResponse {
	return SessionResponse{
		Session: sess,
		Model:   newModelResponse(dsl.ParseString(sess.Text, s.parse)),
	}
}

// =============================================================================
// Encoding
// =============================================================================

// decode reads a JSON body into req and validates it. On failure it writes
// the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	if err := validateRequest(req); err != nil {
		s.writeError(w, r, err)
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	msg := apperr.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		if code == apperr.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
