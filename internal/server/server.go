// Package server is the REST wrapper around the serialx codec. Handlers
// parse request envelopes, forward the payload to the codec or the document
// store, and map codec errors onto HTTP status codes. No serialization
// logic lives here.
package server

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/hengadev/serialx"
	"github.com/hengadev/serialx/internal/health"
	"github.com/hengadev/serialx/internal/json"
	"github.com/hengadev/serialx/internal/jsontext"
	"github.com/hengadev/serialx/internal/pagination"
	"github.com/hengadev/serialx/internal/store"
)

const maxBodyBytes = 10 << 20

var errBadRequest = errors.New("bad request")

// Server wires the codec, the document store and the health checker into an
// HTTP handler tree.
type Server struct {
	codec     *serialx.Codec
	docs      store.DocumentStore
	checker   *health.Checker
	logger    *zap.Logger
	paginator pagination.Paginator
	sortKeys  bool
}

// New builds a Server with a codec configured from cfg.
func New(cfg Config, docs store.DocumentStore, checker *health.Checker, logger *zap.Logger) (*Server, error) {
	opts := []serialx.Option{serialx.WithMaxDepth(cfg.MaxDepth)}
	if cfg.Indent >= 0 {
		opts = append(opts, serialx.WithIndent(cfg.Indent))
	}
	if cfg.SortKeys {
		opts = append(opts, serialx.WithSortedKeys())
	}
	codec, err := serialx.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("build codec: %w", err)
	}
	return &Server{
		codec:     codec,
		docs:      docs,
		checker:   checker,
		logger:    logger,
		paginator: pagination.NewPageNumberPaginator(),
		sortKeys:  cfg.SortKeys,
	}, nil
}

// Routes returns the full handler tree with request logging applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/json/serialize", s.handleSerialize)
	mux.HandleFunc("POST /api/json/deserialize", s.handleDeserialize)
	mux.HandleFunc("POST /api/json/validate", s.handleValidate)
	mux.HandleFunc("GET /api/json/list", s.handleListDocuments)
	mux.HandleFunc("POST /api/json/list", s.handleListItems)
	mux.HandleFunc("POST /api/dict/to_dict", s.handleToDict)
	mux.HandleFunc("POST /api/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.Handle("GET /health", s.checker.Handler())
	return withRequestLogging(s.logger, mux)
}

func (s *Server) handleSerialize(w http.ResponseWriter, r *http.Request) {
	env, err := readEnvelope(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	data, ok := env.Get("data")
	if !ok {
		s.respondError(w, fmt.Errorf("%w: missing field 'data'", errBadRequest))
		return
	}
	text, err := s.serialize(env, data)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"serialized": text})
}

// serialize honors an optional per-request "indent" field; without it the
// codec's configured layout applies.
func (s *Server) serialize(env *orderedmap.OrderedMap[string, any], data any) (string, error) {
	raw, ok := env.Get("indent")
	if !ok || raw == nil {
		return s.codec.Serialize(data)
	}
	num, ok := raw.(stdjson.Number)
	if !ok {
		return "", fmt.Errorf("%w: field 'indent' must be an integer", errBadRequest)
	}
	indent, err := num.Int64()
	if err != nil || indent < 0 {
		return "", fmt.Errorf("%w: field 'indent' must be a non-negative integer", errBadRequest)
	}
	tree, err := s.codec.ToDict(data)
	if err != nil {
		return "", err
	}
	text, err := jsontext.Encode(tree, jsontext.Options{Indent: int(indent), SortKeys: s.sortKeys})
	if err != nil {
		// Same classification Serialize applies: the tree came from ToDict,
		// so an encode failure is a defect, not an input problem.
		return "", fmt.Errorf("%w: %v", serialx.ErrEncoding, err)
	}
	return text, nil
}

func (s *Server) handleDeserialize(w http.ResponseWriter, r *http.Request) {
	text, err := stringField(r, "json_string")
	if err != nil {
		s.respondError(w, err)
		return
	}
	value, err := s.codec.Deserialize(text)
	if err != nil {
		s.respondError(w, err)
		return
	}
	// Reconstructed values (timestamps, decimals, sets) are not JSON
	// encodable as-is; convert back to the tree form for the response.
	tree, err := s.codec.ToDict(value)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"deserialized": tree})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	text, err := stringField(r, "json_string")
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"is_valid": serialx.IsValidJSON(text)})
}

func (s *Server) handleToDict(w http.ResponseWriter, r *http.Request) {
	env, err := readEnvelope(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	data, ok := env.Get("data")
	if !ok {
		s.respondError(w, fmt.Errorf("%w: missing field 'data'", errBadRequest))
		return
	}
	tree, err := s.codec.ToDict(data)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"result": tree})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	env, err := readEnvelope(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	raw, ok := env.Get("items")
	if !ok {
		s.respondError(w, fmt.Errorf("%w: missing field 'items'", errBadRequest))
		return
	}
	items, ok := raw.([]any)
	if !ok {
		s.respondError(w, fmt.Errorf("%w: field 'items' must be a sequence", errBadRequest))
		return
	}
	s.respond(w, http.StatusOK, s.paginator.Paginate(items, r))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context(), 0, 0)
	if err != nil {
		s.respondError(w, err)
		return
	}
	items := make([]any, len(docs))
	for i, doc := range docs {
		items[i] = map[string]any{
			"id":         doc.ID,
			"body":       doc.Body,
			"created_at": doc.CreatedAt.Format(time.RFC3339Nano),
		}
	}
	s.respond(w, http.StatusOK, s.paginator.Paginate(items, r))
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	env, err := readEnvelope(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	data, ok := env.Get("data")
	if !ok {
		s.respondError(w, fmt.Errorf("%w: missing field 'data'", errBadRequest))
		return
	}
	text, err := s.codec.Serialize(data)
	if err != nil {
		s.respondError(w, err)
		return
	}
	doc := store.Document{
		ID:        uuid.NewString(),
		Body:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.docs.Put(r.Context(), doc); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]any{"id": doc.ID, "serialized": text})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, doc)
}

// readEnvelope decodes the request body with the codec's own text layer so
// mapping key order inside the payload survives into serialization.
func readEnvelope(r *http.Request) (*orderedmap.OrderedMap[string, any], error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	tree, err := jsontext.Decode(string(body), serialx.DefaultMaxDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: body is not valid JSON: %v", errBadRequest, err)
	}
	env, ok := tree.(*orderedmap.OrderedMap[string, any])
	if !ok {
		return nil, fmt.Errorf("%w: body must be a JSON object", errBadRequest)
	}
	return env, nil
}

func stringField(r *http.Request, name string) (string, error) {
	env, err := readEnvelope(r)
	if err != nil {
		return "", err
	}
	raw, ok := env.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", errBadRequest, name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", errBadRequest, name)
	}
	return s, nil
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// respondError maps error classes to status codes: caller mistakes to 400,
// missing documents to 404, everything else to 500.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest) || serialx.IsInputError(err):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.respond(w, status, map[string]any{"error": err.Error()})
}
