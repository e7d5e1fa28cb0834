// Package router builds the application's route table.
//
// Route table (R is one of turmas, niveis, pessoas):
//
//	GET    /          → welcome message
//	GET    /R         → list all records
//	GET    /R/{id}    → get one record (null if absent)
//	POST   /R         → create a record
//	PUT    /R/{id}    → merge fields into a record
//	DELETE /R/{id}    → delete a record
//	GET    /metrics   → Prometheus metrics
//
// Every route is wrapped with request-id, access-log and metrics
// middleware.
package router

import (
	"net/http"

	"github.com/aanand-mishra/school-api/internal/http/handlers/resource"
	"github.com/aanand-mishra/school-api/internal/http/middleware"
	"github.com/aanand-mishra/school-api/internal/metrics"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
	"github.com/aanand-mishra/school-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Deps are the collaborators the routes are built from. They are
// constructed once in main and shared by every request.
type Deps struct {
	Turmas  storage.Gateway[types.Turma]
	Niveis  storage.Gateway[types.Nivel]
	Pessoas storage.Gateway[types.Pessoa]

	// Metrics may be nil, in which case routes are not instrumented and
	// /metrics is not served.
	Metrics *metrics.Metrics

	// Welcome is the message served on GET /.
	Welcome string

	// Validate, when set, checks POST and PUT bodies before they reach
	// the store.
	Validate *validator.Validate
}

// New returns the fully wired HTTP handler.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	handle := func(method, path string, h http.Handler) {
		if d.Metrics != nil {
			h = middleware.Metrics(d.Metrics, path, h)
		}
		mux.Handle(method+" "+path, h)
	}

	// "/{$}" matches only the root, not every unmatched path.
	handle(http.MethodGet, "/{$}", response.Handle(func(*http.Request) (any, error) {
		return response.Message{Message: d.Welcome}, nil
	}))

	var opts []resource.Option
	if d.Validate != nil {
		opts = append(opts, resource.WithValidation(d.Validate))
	}

	mount(handle, resource.New[types.Pessoa, types.PessoaPatch]("pessoas", d.Pessoas, opts...))
	mount(handle, resource.New[types.Nivel, types.NivelPatch]("niveis", d.Niveis, opts...))
	mount(handle, resource.New[types.Turma, types.TurmaPatch]("turmas", d.Turmas, opts...))

	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return middleware.Chain(mux, middleware.RequestID, middleware.Logger)
}

func mount[T any, P resource.Patch](handle func(method, path string, h http.Handler), c *resource.Controller[T, P]) {
	collection := "/" + c.Name()
	single := collection + "/{id}"

	handle(http.MethodGet, collection, response.Handle(c.ListAll))
	handle(http.MethodGet, single, response.Handle(c.GetOne))
	handle(http.MethodPost, collection, response.Handle(c.Create))
	handle(http.MethodPut, single, response.Handle(c.Update))
	handle(http.MethodDelete, single, response.Handle(c.Delete))
}
