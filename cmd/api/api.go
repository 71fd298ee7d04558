package api

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/paisatrack/paisa-server/cmd/models"
	"github.com/paisatrack/paisa-server/service/auth"
	"github.com/paisatrack/paisa-server/service/category"
	"github.com/paisatrack/paisa-server/service/dashboard"
	"github.com/paisatrack/paisa-server/service/transaction"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

// Router builds the full route table under the /api prefix.
func (s *APIServer) Router() *mux.Router {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api").Subrouter()

	authHandler := auth.NewHandler(s.db)
	authHandler.RegisterRoutes(subrouter)

	categoryHandler := category.NewHandler(s.db)
	categoryHandler.RegisterRoutes(subrouter)

	incomeHandler := transaction.NewHandler(s.db, models.TransactionTypeIncome)
	incomeHandler.RegisterRoutes(subrouter)

	expenseHandler := transaction.NewHandler(s.db, models.TransactionTypeExpense)
	expenseHandler.RegisterRoutes(subrouter)

	dashboardHandler := dashboard.NewHandler(s.db)
	dashboardHandler.RegisterRoutes(subrouter)

	return router
}

func (s *APIServer) Run() error {
	var handler http.Handler = s.Router()

	// CORS is only enabled when origins are configured
	if allowOrigins := os.Getenv("CORS_ALLOW_ORIGINS"); allowOrigins != "" {
		handler = handlers.CORS(
			handlers.AllowedOrigins(strings.Fields(allowOrigins)),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		)(handler)
	}

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, handler)
}
