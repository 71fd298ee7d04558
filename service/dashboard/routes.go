package dashboard

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/paisatrack/paisa-server/cmd/models"
	"github.com/paisatrack/paisa-server/cmd/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type Stats struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
	Categories   int64           `json:"categories"`
}

// RegisterRoutes sets up the dashboard routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	dashboardRouter := router.PathPrefix("/dashboard").Subrouter()
	dashboardRouter.HandleFunc("/stats/", utils.RequireAuth(h.db, h.GetStats)).Methods("GET")
}

// GetStats sums the caller's transactions per kind. The ownership filter
// is the same one the list endpoints use.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var transactions []models.Transaction
	if err := h.db.Where("updated_by = ?", user.Username).Find(&transactions).Error; err != nil {
		http.Error(w, "Error fetching transactions", http.StatusInternalServerError)
		return
	}

	stats := Stats{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, t := range transactions {
		switch t.TransactionType {
		case models.TransactionTypeIncome:
			stats.TotalIncome = stats.TotalIncome.Add(t.Amount)
		case models.TransactionTypeExpense:
			stats.TotalExpense = stats.TotalExpense.Add(t.Amount)
		}
	}
	stats.Balance = stats.TotalIncome.Sub(stats.TotalExpense)

	if err := h.db.Model(&models.Category{}).Where("user_id = ?", user.ID).
		Count(&stats.Categories).Error; err != nil {
		http.Error(w, "Error counting categories", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"payload": stats,
	})
}
