package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
)

// TabService is the server-side tab logic.
type TabService interface {
	Create(ctx context.Context, family partition.Family, ownerID, name string) (*partition.Partition, error)
	List(ctx context.Context, family partition.Family, ownerID, role string) ([]partition.Partition, error)
	Rename(ctx context.Context, family partition.Family, ownerID, id, name string) (*partition.Partition, error)
	Delete(ctx context.Context, family partition.Family, ownerID, id string, policy partition.DeletePolicy) error
	CountOrphans(ctx context.Context, family partition.Family, ownerID string) (int, error)
	Adopt(ctx context.Context, family partition.Family, ownerID, id string) (int, error)
}

// RecordService is the server-side record logic.
type RecordService interface {
	Create(ctx context.Context, req record.CreateRequest) (*record.Record, error)
	Get(ctx context.Context, family partition.Family, ownerID, id string) (*record.Record, error)
	Update(ctx context.Context, req record.UpdateRequest) (*record.Record, error)
	Delete(ctx context.Context, family partition.Family, ownerID, id string) error
	List(ctx context.Context, opts record.ListRecordsOptions) ([]record.Record, error)
	Summary(ctx context.Context, opts record.ListRecordsOptions) (*record.Summary, error)
	Stats(ctx context.Context, opts record.ListRecordsOptions) (*record.Stats, error)
	Names(ctx context.Context, opts record.NamesOptions) (*record.NameIndex, error)
}

// Services groups the handlers' dependencies.
type Services struct {
	Tabs    TabService
	Records RecordService
}

// Server wires HTTP handlers.
type Server struct {
	tabs    TabService
	records RecordService
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware. Every family gets
// its own tab and record routes.
func NewServer(services Services, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	srv := &Server{tabs: services.Tabs, records: services.Records, logger: logger}

	r.Get("/health", srv.handleHealth)

	for _, family := range partition.Families {
		tabs := "/" + string(family) + "-tabs"
		r.Route(tabs, func(r chi.Router) {
			r.Get("/", srv.listTabs(family))
			r.Post("/", srv.createTab(family))
			r.Get("/orphaned", srv.countOrphans(family))
			r.Put("/{id}", srv.renameTab(family))
			r.Delete("/{id}", srv.deleteTab(family))
			r.Post("/{id}/adopt", srv.adoptOrphans(family))
		})

		records := "/" + string(family) + "s"
		r.Route(records, func(r chi.Router) {
			r.Get("/", srv.listRecords(family))
			r.Post("/", srv.createRecord(family))
			r.Get("/summary", srv.summary(family))
			r.Get("/stats", srv.stats(family))
			r.Get("/names", srv.names(family))
			r.Get("/{id}", srv.getRecord(family))
			r.Put("/{id}", srv.updateRecord(family))
			r.Delete("/{id}", srv.deleteRecord(family))
		})
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// owner picks the acting username: the authenticated owner when auth is on,
// otherwise the username the client sent.
func owner(r *http.Request, username string) (string, error) {
	if username == "" {
		username = r.URL.Query().Get("username")
	}
	if authed, ok := OwnerFromContext(r.Context()); ok {
		if username != "" && username != authed {
			return "", errForbidden
		}
		return authed, nil
	}
	if username == "" {
		return "", errNoOwner
	}
	return username, nil
}
