package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/covercluster/pkg/buildinfo"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/pipeline"
	"github.com/matzehuels/covercluster/pkg/render"
	"github.com/matzehuels/covercluster/pkg/store"
)

// CreateRequest is the body of POST /v1/clusters. Exactly one of Index and
// Albums must be set.
type CreateRequest struct {
	Index   string           `json:"index,omitempty"`
	Albums  []index.Entry    `json:"albums,omitempty"`
	Options pipeline.Options `json:"options"`
}

// BuildResponse describes a stored build.
type BuildResponse struct {
	*store.Build
	ImageURL string `json:"image_url"`
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error    ErrorBody            `json:"error"`
	Excluded []pipeline.Exclusion `json:"excluded,omitempty"`
}

// ErrorBody carries the error code and message.
type ErrorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request"), nil)
		return
	}

	idx, err := req.index()
	if err != nil {
		writeError(w, err, nil)
		return
	}

	opts := req.Options
	opts.Index = &idx
	opts.CoversDir = s.coversDir
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))

	ctx, cancel := context.WithTimeout(r.Context(), s.buildTimeout)
	defer cancel()

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		var excluded []pipeline.Exclusion
		if res != nil {
			excluded = res.Excluded
		}
		writeError(w, err, excluded)
		return
	}

	b := store.NewBuild(res)
	if err := s.store.Save(r.Context(), b); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "save build"), nil)
		return
	}
	s.logger.Info("stored build", "id", b.ID, "albums", b.Albums, "width", b.Width, "height", b.Height)

	w.Header().Set("Location", "/v1/clusters/"+b.ID)
	writeJSON(w, http.StatusCreated, newBuildResponse(b))
}

// index returns the request's index, preferring the text form.
func (req *CreateRequest) index() (index.Index, error) {
	switch {
	case req.Index != "" && len(req.Albums) > 0:
		return index.Index{}, errs.New(errs.ErrCodeInvalidInput, "set either index or albums, not both")
	case req.Index != "":
		return index.Parse(req.Index), nil
	case len(req.Albums) > 0:
		for _, e := range req.Albums {
			if err := errs.ValidateName(e.Name); err != nil {
				return index.Index{}, err
			}
		}
		return index.Index{Albums: req.Albums}, nil
	}
	return index.Index{}, errs.New(errs.ErrCodeInvalidInput, "index or albums is required")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid limit %q", v), nil)
			return
		}
		limit = n
	}

	builds, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	out := make([]BuildResponse, len(builds))
	for i := range builds {
		out[i] = newBuildResponse(&builds[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"builds": out})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newBuildResponse(b))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(render.Format(b.Format)))
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Artifact)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Artifact)
}

func newBuildResponse(b *store.Build) BuildResponse {
	return BuildResponse{Build: b, ImageURL: "/v1/clusters/" + b.ID + "/image"}
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeBuildNotFound:
		return http.StatusNotFound
	case errs.ErrCodeNoImages:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error, excluded []pipeline.Exclusion) {
	if errs.GetCode(err) == "" && errors.Is(err, context.DeadlineExceeded) {
		err = errs.Wrap(errs.ErrCodeTimeout, err, "build did not finish in time")
	}
	status := statusFor(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{
		Error:    ErrorBody{Code: code, Message: msg},
		Excluded: excluded,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
