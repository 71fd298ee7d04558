package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/paisatrack/paisa-server/cmd/models"
	"github.com/paisatrack/paisa-server/cmd/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler serves one transaction family. The kind is fixed when the
// handler is registered; income and expense endpoints run the same code
// with a different kind and URL prefix.
type Handler struct {
	db     *gorm.DB
	kind   string
	label  string
	prefix string
}

func NewHandler(db *gorm.DB, kind string) *Handler {
	h := &Handler{db: db, kind: kind}
	switch kind {
	case models.TransactionTypeIncome:
		h.label = "Income"
		h.prefix = "/income"
	case models.TransactionTypeExpense:
		h.label = "Expense"
		h.prefix = "/expenses"
	default:
		panic("unknown transaction kind: " + kind)
	}
	return h
}

// RegisterRoutes sets up the routes for this transaction family
func (h *Handler) RegisterRoutes(router *mux.Router) {
	r := router.PathPrefix(h.prefix).Subrouter()
	r.HandleFunc("/", utils.RequireAuth(h.db, h.List)).Methods("GET")
	r.HandleFunc("/create/", utils.RequireAuth(h.db, h.Create)).Methods("POST")
	r.HandleFunc("/update/{id:[0-9]+}/", utils.RequireAuth(h.db, h.Update)).Methods("PUT")
	r.HandleFunc("/delete/{id:[0-9]+}/", utils.RequireAuth(h.db, h.Delete)).Methods("DELETE")
}

type CreateTransactionRequest struct {
	Name       string           `json:"name"`
	Amount     *decimal.Decimal `json:"amount"`
	CategoryID uint             `json:"category_id"`
}

// Validate checks each field and returns one error entry per violation.
// The transaction type is not part of the request; the handler forces it.
func (req CreateTransactionRequest) Validate() []utils.FieldError {
	var errs []utils.FieldError
	if req.Name == "" {
		errs = append(errs, utils.FieldError{Field: "name", Message: "This field is required."})
	} else if utf8.RuneCountInString(req.Name) > 30 {
		errs = append(errs, utils.FieldError{Field: "name", Message: "Ensure this field has no more than 30 characters."})
	}
	if req.Amount == nil {
		errs = append(errs, utils.FieldError{Field: "amount", Message: "This field is required."})
	} else if e := validateAmount(*req.Amount); e != nil {
		errs = append(errs, *e)
	}
	if req.CategoryID == 0 {
		errs = append(errs, utils.FieldError{Field: "category_id", Message: "This field is required."})
	}
	return errs
}

type UpdateTransactionRequest struct {
	Name       *string          `json:"name"`
	Amount     *decimal.Decimal `json:"amount"`
	CategoryID *uint            `json:"category_id"`
}

// Validate checks only the fields that were supplied.
func (req UpdateTransactionRequest) Validate() []utils.FieldError {
	var errs []utils.FieldError
	if req.Name != nil {
		if *req.Name == "" {
			errs = append(errs, utils.FieldError{Field: "name", Message: "This field may not be blank."})
		} else if utf8.RuneCountInString(*req.Name) > 30 {
			errs = append(errs, utils.FieldError{Field: "name", Message: "Ensure this field has no more than 30 characters."})
		}
	}
	if req.Amount != nil {
		if e := validateAmount(*req.Amount); e != nil {
			errs = append(errs, *e)
		}
	}
	if req.CategoryID != nil && *req.CategoryID == 0 {
		errs = append(errs, utils.FieldError{Field: "category_id", Message: "This field may not be null."})
	}
	return errs
}

// validateAmount enforces the DECIMAL(10,2) column shape: at most two
// fractional digits and at most ten digits in total.
func validateAmount(amount decimal.Decimal) *utils.FieldError {
	if amount.Exponent() < -2 {
		return &utils.FieldError{Field: "amount", Message: "Ensure that there are no more than 2 decimal places."}
	}
	integerDigits := len(amount.Abs().Truncate(0).String())
	if integerDigits > 8 {
		return &utils.FieldError{Field: "amount", Message: "Ensure that there are no more than 10 digits in total."}
	}
	return nil
}

// categoryExists mirrors the foreign key check: the referenced category
// must exist, but it does not have to belong to the caller.
func (h *Handler) categoryExists(id uint) (bool, error) {
	var count int64
	err := h.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	transactions := []models.Transaction{}
	if err := h.db.Where("updated_by = ? AND transaction_type = ?", user.Username, h.kind).
		Find(&transactions).Error; err != nil {
		http.Error(w, "Error fetching transactions", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"payload": transactions,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	errs := req.Validate()
	if len(errs) == 0 {
		exists, err := h.categoryExists(req.CategoryID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if !exists {
			errs = append(errs, utils.FieldError{Field: "category_id", Message: "Category does not exist."})
		}
	}
	if len(errs) > 0 {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	transaction := models.Transaction{
		BaseModel: models.BaseModel{
			CreatedBy: user.Username,
			UpdatedBy: user.Username,
		},
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Amount:          *req.Amount,
		TransactionType: h.kind,
	}
	if err := h.db.Create(&transaction).Error; err != nil {
		http.Error(w, "Error creating transaction", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  http.StatusCreated,
		"message": h.label + " created successfully",
	})
}

// find looks a transaction up by id constrained to the caller's records
// of this handler's kind, so foreign or wrong-kind records read as absent.
func (h *Handler) find(id uint, username string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := h.db.Where("id = ? AND updated_by = ? AND transaction_type = ?", id, username, h.kind).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	id := pathID(r)
	transaction, err := h.find(id, user.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": h.label + " not found",
			})
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	errs := req.Validate()
	if len(errs) == 0 && req.CategoryID != nil {
		exists, err := h.categoryExists(*req.CategoryID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if !exists {
			errs = append(errs, utils.FieldError{Field: "category_id", Message: "Category does not exist."})
		}
	}
	if len(errs) > 0 {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	if req.Name != nil {
		transaction.Name = *req.Name
	}
	if req.Amount != nil {
		transaction.Amount = *req.Amount
	}
	if req.CategoryID != nil {
		transaction.CategoryID = *req.CategoryID
	}
	transaction.UpdatedBy = user.Username

	if err := h.db.Save(transaction).Error; err != nil {
		http.Error(w, "Error updating transaction", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": h.label + " updated successfully",
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	id := pathID(r)
	transaction, err := h.find(id, user.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": h.label + " not found",
			})
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if err := h.db.Delete(transaction).Error; err != nil {
		http.Error(w, "Error deleting transaction", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": h.label + " deleted successfully",
	})
}

func pathID(r *http.Request) uint {
	// The route pattern guarantees a numeric id
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return uint(id)
}
