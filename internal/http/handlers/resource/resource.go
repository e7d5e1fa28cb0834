// Package resource contains the HTTP operations shared by every resource
// (turmas, niveis, pessoas).
//
// One generic Controller is instantiated per resource type:
//
//	niveis := resource.New[types.Nivel, types.NivelPatch]("niveis", gateway)
//	mux.Handle("GET /niveis/{id}", response.Handle(niveis.GetOne))
//
// Each operation makes exactly one gateway call sequence and returns
// (result, error). response.Handle turns that into the HTTP response, so
// no operation here writes status codes itself.
//
// ID HANDLING
// ───────────
// The {id} path segment is converted to an integer before it becomes a
// filter, with the same leniency as JavaScript's Number() ("1.0", "1e0"
// and "0x1" are all 1). A segment that is not a whole number cannot
// match any row, so it is treated as not found: no gateway call is made,
// GetOne and Update answer null, and Delete still answers with its
// confirmation message.
package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Patch is a partial update body. Columns returns only the columns the
// client sent, keyed by column name.
type Patch interface {
	Columns() map[string]any
}

// Controller serves one resource whose records are of type T and whose
// PUT bodies decode into P.
type Controller[T any, P Patch] struct {
	name     string
	gateway  storage.Gateway[T]
	validate *validator.Validate
}

// Option configures a Controller.
type Option func(*settings)

type settings struct {
	validate *validator.Validate
}

// WithValidation runs v over POST bodies (as T) and PUT bodies (as P)
// before they reach the gateway. Failures answer 400.
func WithValidation(v *validator.Validate) Option {
	return func(s *settings) { s.validate = v }
}

// New returns the controller for the resource called name, backed by
// gateway. Without options, bodies are passed to the gateway unchecked.
func New[T any, P Patch](name string, gateway storage.Gateway[T], opts ...Option) *Controller[T, P] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return &Controller[T, P]{name: name, gateway: gateway, validate: s.validate}
}

// Name is the plural resource name, also used as the route prefix.
func (c *Controller[T, P]) Name() string { return c.name }

// ListAll handles GET /{resource}. Answers [] for an empty table.
func (c *Controller[T, P]) ListAll(r *http.Request) (any, error) {
	slog.Info("listing records", slog.String("resource", c.name))

	records, err := c.gateway.FindAll(r.Context())
	if err != nil {
		return nil, c.failure("list", "", err)
	}
	return records, nil
}

// GetOne handles GET /{resource}/{id}. Answers null when nothing matches.
func (c *Controller[T, P]) GetOne(r *http.Request) (any, error) {
	raw := r.PathValue("id")
	slog.Info("getting a record", slog.String("resource", c.name), slog.String("id", raw))

	id, ok := parseID(raw)
	if !ok {
		return nil, nil
	}

	record, err := c.gateway.FindOne(r.Context(), storage.ByID(id))
	if err != nil {
		return nil, c.failure("get", raw, err)
	}
	return record, nil
}

// Create handles POST /{resource}. The body is the new record as sent;
// the stored record, with its assigned id, is echoed back with 200.
func (c *Controller[T, P]) Create(r *http.Request) (any, error) {
	slog.Info("creating a record", slog.String("resource", c.name))

	var record T
	if err := decode(r, &record); err != nil {
		return nil, err
	}
	if err := c.check(record); err != nil {
		return nil, err
	}

	if err := c.gateway.Create(r.Context(), &record); err != nil {
		return nil, c.failure("create", "", err)
	}
	return &record, nil
}

// Update handles PUT /{resource}/{id}. Sent fields are merged into the
// stored record, which is then read back. If no row matched, the read
// finds nothing and the answer is null, still with 200.
func (c *Controller[T, P]) Update(r *http.Request) (any, error) {
	raw := r.PathValue("id")
	slog.Info("updating a record", slog.String("resource", c.name), slog.String("id", raw))

	var patch P
	if err := decode(r, &patch); err != nil {
		return nil, err
	}
	if err := c.check(patch); err != nil {
		return nil, err
	}

	id, ok := parseID(raw)
	if !ok {
		return nil, nil
	}

	rows, err := c.gateway.Update(r.Context(), patch.Columns(), storage.ByID(id))
	if err != nil {
		return nil, c.failure("update", raw, err)
	}
	slog.Debug("record updated", slog.String("resource", c.name), slog.String("id", raw), slog.Int64("rows", rows))

	record, err := c.gateway.FindOne(r.Context(), storage.ByID(id))
	if err != nil {
		return nil, c.failure("update", raw, err)
	}
	return record, nil
}

// Delete handles DELETE /{resource}/{id}. The confirmation is sent
// whether or not a row existed.
func (c *Controller[T, P]) Delete(r *http.Request) (any, error) {
	raw := r.PathValue("id")
	slog.Info("deleting a record", slog.String("resource", c.name), slog.String("id", raw))

	if id, ok := parseID(raw); ok {
		rows, err := c.gateway.Destroy(r.Context(), storage.ByID(id))
		if err != nil {
			return nil, c.failure("delete", raw, err)
		}
		slog.Debug("record deleted", slog.String("resource", c.name), slog.String("id", raw), slog.Int64("rows", rows))
	}

	return response.Message{Message: fmt.Sprintf("id %s was deleted", raw)}, nil
}

func (c *Controller[T, P]) failure(op, id string, err error) error {
	slog.Error("storage operation failed",
		slog.String("resource", c.name),
		slog.String("op", op),
		slog.String("id", id),
		slog.String("error", err.Error()))
	return err
}

// check validates v when the controller was built WithValidation.
func (c *Controller[T, P]) check(v any) error {
	if c.validate == nil {
		return nil
	}
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return response.ValidationError(verrs)
	}
	return response.BadRequest(err)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched,
// the same as sending {}. The body must hold exactly one JSON value.
//
// A field of the wrong JSON type (e.g. {"nivel":5}) is rejected with 400
// like any other body the record type cannot hold.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return response.BadRequest(err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return response.BadRequest(errors.New("invalid JSON: unexpected data after top-level value"))
	}
	return nil
}

// parseID converts a path segment to a row id using JavaScript Number()
// rules, so "1", "1.0", "1e0", "+1" and "0x1" all select row 1. Blank
// text is 0. Anything else, including fractions and values outside the
// int64 range, cannot match a row and reports false.
func parseID(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	if strings.Contains(s, "_") {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if digits[0] == '+' || digits[0] == '-' {
				return 0, false
			}
			id, err := strconv.ParseInt(digits, base, 64)
			if err != nil {
				return 0, false
			}
			return id, true
		}
	}

	// Hex floats ("0x1p0") are Go syntax, not JavaScript.
	if strings.ContainsAny(s, "pPxX") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
