package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/scene"
	"github.com/matzehuels/layerscape/pkg/session"
)

// sceneResponse is what every scene route answers with.
type sceneResponse struct {
	ID        string         `json:"id"`
	ExpiresAt time.Time      `json:"expires_at"`
	Scene     scene.Document `json:"scene"`
	Inspector inspectorState `json:"inspector"`
	Warning   string         `json:"warning,omitempty"`
}

type inspectorState struct {
	Visible bool              `json:"visible"`
	Payload *interact.Payload `json:"payload,omitempty"`
	Lines   []string          `json:"lines,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newSceneResponse(sess *session.Session) sceneResponse {
	resp := sceneResponse{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Scene:     scene.Export(sess.Viewer.Scene()),
	}
	if p := sess.Panel; p != nil {
		resp.Inspector.Visible = p.Visible
		if p.Current != nil {
			payload := *p.Current
			resp.Inspector.Payload = &payload
			resp.Inspector.Lines = p.Current.Lines()
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, errs.HTTPStatus(err), errorResponse{Error: errs.UserMessage(err), Code: string(code)})
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) > maxBodyBytes {
		return errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", maxBodyBytes)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func layerIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "layer index %q is not an integer", raw)
	}
	return idx, nil
}
