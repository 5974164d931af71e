package server

import (
	"net/http"

	"github.com/mediverifyng/mediverify/internal/utils"
	"github.com/mediverifyng/mediverify/pkg/catalog"
	"github.com/mediverifyng/mediverify/pkg/reports"
)

type Server struct {
	Catalog  *catalog.Catalog
	DB       *reports.DB
	Username string
	Password string

	// Suggestion tuning, defaulted by New.
	SuggestLimit     int
	SuggestThreshold int
}

func New(cat *catalog.Catalog, db *reports.DB, user, pass string) *Server {
	return &Server{
		Catalog:          cat,
		DB:               db,
		Username:         user,
		Password:         pass,
		SuggestLimit:     5,
		SuggestThreshold: 80,
	}
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler builds the route table. Split from Start so tests can drive the
// mux without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/verify", s.basicAuth(s.handleVerify))
	mux.HandleFunc("GET /api/suggest", s.basicAuth(s.handleSuggest))
	mux.HandleFunc("POST /api/reports", s.basicAuth(s.handleSubmitReport))
	mux.HandleFunc("GET /api/reports", s.basicAuth(s.handleListReports))
	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))

	return mux
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
