package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/httputil"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/rates"
	"github.com/matzehuels/prodgraph/pkg/session"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

type sessionResponse struct {
	ID        string                            `json:"id"`
	Language  string                            `json:"language"`
	Miners    map[string]settings.MinerSettings `json:"miners"`
	CreatedAt time.Time                         `json:"createdAt"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	snap := s.Settings.Snapshot()
	miners := snap.Miners
	if miners == nil {
		miners = map[string]settings.MinerSettings{}
	}
	return sessionResponse{ID: s.ID, Language: snap.Language, Miners: miners, CreatedAt: s.CreatedAt}
}

type createSessionRequest struct {
	Language string `json:"language,omitempty"`
}

type languageRequest struct {
	Language string `json:"language" validate:"required"`
}

type minerRequest struct {
	Tier   rates.MinerTier `json:"tier,omitempty" validate:"required_without=Purity"`
	Purity rates.Purity    `json:"purity,omitempty"`
}

// session looks up id, mapping a miss to SESSION_NOT_FOUND.
func (s *Server) session(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.opts.Sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, perrors.Wrap(perrors.ErrCodeSessionNotFound, err, "session not found: %s", id)
	}
	return sess, err
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	lang := s.opts.Language
	if req.Language != "" {
		var err error
		if lang, err = i18n.Normalize(req.Language); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	sess, err := s.opts.Sessions.Create(r.Context(), lang)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	loggerFrom(r.Context(), s.opts.Logger).Debug("session created", "session", sess.ID, "language", lang)
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	httputil.WriteJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req languageRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := sess.Settings.SetLanguage(req.Language); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

// handleSetMiner updates tier and/or purity for the extractor key in the
// wildcard part of the path. Keys are usually chain keys; an item id applies
// to every extractor of that item.
func (s *Server) handleSetMiner(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	key := chi.URLParam(r, "*")
	if key == "" {
		httputil.WriteError(w, perrors.New(perrors.ErrCodeInvalidInput, "missing miner key"))
		return
	}
	var req minerRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Validate both halves before touching the store. SetTier and SetPurity
	// each update one field under the store lock, so concurrent tier and
	// purity updates to the same key both land.
	if req.Tier != "" && !rates.ValidTier(req.Tier) {
		httputil.WriteError(w, perrors.New(perrors.ErrCodeInvalidTier, "unknown miner tier %q (want one of %v)", req.Tier, rates.MinerTiers))
		return
	}
	if req.Purity != "" && !rates.ValidPurity(req.Purity) {
		httputil.WriteError(w, perrors.New(perrors.ErrCodeInvalidPurity, "unknown purity %q (want one of %v)", req.Purity, rates.Purities))
		return
	}
	if req.Tier != "" {
		if err := sess.Settings.SetTier(key, req.Tier); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if req.Purity != "" {
		if err := sess.Settings.SetPurity(key, req.Purity); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}
