package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/layerscape/pkg/arch"
	"github.com/matzehuels/layerscape/pkg/buildinfo"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/pipeline"
	"github.com/matzehuels/layerscape/pkg/scene"
	"github.com/matzehuels/layerscape/pkg/session"
	"github.com/matzehuels/layerscape/pkg/source"
	"github.com/matzehuels/layerscape/pkg/viewer"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"build":    buildinfo.Get(),
		"sessions": s.sessions.Len(),
	})
}

// =============================================================================
// Scenes
// =============================================================================

// createSceneRequest names exactly one architecture source. Local files
// are deliberately not reachable over HTTP.
type createSceneRequest struct {
	Model        string          `json:"model,omitempty"`
	URL          string          `json:"url,omitempty"`
	Architecture json.RawMessage `json:"architecture,omitempty"`
	Refresh      bool            `json:"refresh,omitempty"`
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var req createSceneRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	a, err := s.loadArchitecture(r, req)
	if err != nil {
		writeError(w, err)
		return
	}

	panel := &interact.Panel{}
	ctrl := interact.NewController(s.cfg.Styles(), panel, s.logger)
	v := viewer.New(ctrl, s.logger, s.cfg.LayoutOptions()...)
	v.LoadArchitecture(a)
	sess := s.sessions.Create(v, panel)

	s.logger.Info("scene created", "id", sess.ID, "name", a.Name, "layers", a.Len())
	writeJSON(w, http.StatusCreated, newSceneResponse(sess))
}

func (s *Server) loadArchitecture(r *http.Request, req createSceneRequest) (*arch.Architecture, error) {
	set := 0
	for _, ok := range []bool{req.Model != "", req.URL != "", len(req.Architecture) > 0} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "exactly one of model, url or architecture is required")
	}

	switch {
	case req.Model != "":
		endpoint, err := source.ResolveModel(s.cfg.Models, req.Model)
		if err != nil {
			return nil, err
		}
		a, err := s.runner.Load(r.Context(), pipeline.Options{Ref: endpoint, Refresh: req.Refresh})
		if err == nil && a.Name == "" {
			a.Name = req.Model
		}
		return a, err
	case req.URL != "":
		if err := errs.ValidateEndpoint(req.URL); err != nil {
			return nil, err
		}
		return s.runner.Load(r.Context(), pipeline.Options{Ref: req.URL, Refresh: req.Refresh})
	default:
		return arch.Decode(req.Architecture, arch.FormatJSON)
	}
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (string, error) {
		return "", nil
	}, http.StatusOK)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (string, error) {
		sess.Viewer.Reset()
		return "", nil
	}, http.StatusOK)
}

// =============================================================================
// Interaction
// =============================================================================

func (s *Server) handleHoverEnter(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, viewer.EventHoverEnter)
}

func (s *Server) handleHoverExit(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, viewer.EventHoverExit)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, viewer.EventActivate)
}

func (s *Server) handleInspectorClose(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (string, error) {
		return "", sess.Viewer.Dispatch(viewer.Event{Type: viewer.EventClose})
	}, http.StatusOK)
}

func (s *Server) handleInspectorReopen(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (string, error) {
		return "", sess.Viewer.Dispatch(viewer.Event{Type: viewer.EventReopen})
	}, http.StatusOK)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, typ viewer.EventType) {
	idx, err := layerIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.withSession(w, r, func(sess *session.Session) (string, error) {
		err := sess.Viewer.Dispatch(viewer.Event{Type: typ, Index: idx})
		if errs.Is(err, errs.ErrCodeStyleMismatch) {
			return errs.UserMessage(err), nil
		}
		return "", err
	}, http.StatusOK)
}

// withSession runs fn under the session lock and answers with the
// resulting state. fn may return a warning for a non-fatal problem.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (string, error), status int) {
	var resp sceneResponse
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		warning, err := fn(sess)
		if err != nil {
			return err
		}
		resp = newSceneResponse(sess)
		resp.Warning = warning
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// Saved scenes
// =============================================================================

type saveRequest struct {
	SceneID string `json:"scene_id"`
}

type saveResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SceneID == "" {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "scene_id is required"))
		return
	}

	var doc scene.Document
	err := s.sessions.With(req.SceneID, func(sess *session.Session) error {
		doc = scene.Export(sess.Viewer.Scene())
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := s.store.Save(r.Context(), doc)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("scene saved", "id", id, "scene", req.SceneID)
	writeJSON(w, http.StatusCreated, saveResponse{ID: id})
}

func (s *Server) handleGetSaved(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
