package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/scalelist/pkg/buildinfo"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DescribeSchema(node.DefaultSchema()))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	detailed, _ := strconv.ParseBool(q.Get("detailed"))

	artifacts, _, err := s.runner.RenderGraph(r.Context(), pipeline.GraphOptions{
		Formats:  []string{format},
		Detailed: detailed,
		Logger:   s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(artifacts[format])
}

// readInputs decodes a JSON node file body.
func readInputs(w http.ResponseWriter, r *http.Request) (node.Inputs, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	in, err := nodeio.ReadNode(body, nodeio.FormatJSON)
	if err != nil && errs.GetCode(err) == "" {
		return in, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	return in, err
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, in node.Inputs) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	res, err := s.runner.Execute(r.Context(), pipeline.Options{Inputs: in, Refresh: refresh, Logger: s.logger})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Outputs:    res.Outputs,
		InputHash:  res.InputHash,
		CacheHit:   res.CacheHit,
		Items:      res.Stats.Items,
		DurationMS: float64(res.Stats.Duration.Microseconds()) / 1000,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	in, err := readInputs(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.evaluate(w, r, in)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	attr := chi.URLParam(r, "attribute")
	in, err := readInputs(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	n := node.NewFromInputs(in)
	if err := n.Compute(attr); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, _ := n.Schema().Attribute(attr)
	resp := ComputeResponse{Attribute: a.Name, Outputs: n.Outputs()}
	if v, err := resp.Outputs.Value(attr); err == nil {
		resp.Value = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]NodeSummary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, Summarize(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func nodeName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidName, err, "node name is not a valid path segment")
	}
	if err := errs.ValidateNodeName(name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	name, err := nodeName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	name, err := nodeName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := readInputs(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.store.Put(r.Context(), name, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("stored node", "name", name, "items", len(in.List))
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	name, err := nodeName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvaluateNode(w http.ResponseWriter, r *http.Request) {
	name, err := nodeName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.evaluate(w, r, snap.Inputs)
}
