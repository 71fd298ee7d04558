package category

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/paisatrack/paisa-server/cmd/models"
	"github.com/paisatrack/paisa-server/cmd/utils"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes sets up the category routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	categoryRouter := router.PathPrefix("/category").Subrouter()
	categoryRouter.HandleFunc("/", utils.RequireAuth(h.db, h.GetCategories)).Methods("GET")
	categoryRouter.HandleFunc("/create/", utils.RequireAuth(h.db, h.CreateCategory)).Methods("POST")
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// Validate checks each field and returns one error entry per violation.
func (req CreateCategoryRequest) Validate() []utils.FieldError {
	var errs []utils.FieldError
	if req.Name == "" {
		errs = append(errs, utils.FieldError{Field: "name", Message: "This field is required."})
	} else if utf8.RuneCountInString(req.Name) > 40 {
		errs = append(errs, utils.FieldError{Field: "name", Message: "Ensure this field has no more than 40 characters."})
	}
	return errs
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	categories := []models.Category{}
	if err := h.db.Where("user_id = ?", user.ID).Find(&categories).Error; err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"payload": categories,
	})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	// Known oddity kept from the original API: validation failures here
	// answer HTTP 200 with an embedded 403 status, so clients must check
	// the body rather than the transport status.
	if errs := req.Validate(); len(errs) > 0 {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  http.StatusForbidden,
			"payload": req,
			"message": utils.ErrorSummary(errs),
			"errors":  errs,
		})
		return
	}

	category := models.Category{
		BaseModel: models.BaseModel{
			CreatedBy: user.Username,
			UpdatedBy: user.Username,
		},
		UserID: user.ID,
		Name:   req.Name,
	}
	if err := h.db.Create(&category).Error; err != nil {
		http.Error(w, "Error creating category", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Successfully created the category.",
	})
}
