package dashboard_test

import (
	"net/http"
	"testing"

	"github.com/paisatrack/paisa-server/cmd/api"
	"github.com/paisatrack/paisa-server/cmd/models"
	"github.com/paisatrack/paisa-server/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, http.Handler) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := testutil.NewTestDB(t)
	return db, api.NewApiServer("", db).Router()
}

func seedTransaction(t *testing.T, db *gorm.DB, username string, categoryID uint, kind, amount string) {
	t.Helper()
	transaction := models.Transaction{
		BaseModel:       models.BaseModel{CreatedBy: username, UpdatedBy: username},
		CategoryID:      categoryID,
		Name:            "seed",
		Amount:          decimal.RequireFromString(amount),
		TransactionType: kind,
	}
	require.NoError(t, db.Create(&transaction).Error)
}

func TestGetStats(t *testing.T) {
	db, router := setup(t)
	alice := testutil.CreateUser(t, db, "alice", "secret")
	bob := testutil.CreateUser(t, db, "bob", "hunter2")

	aliceCategory := models.Category{
		BaseModel: models.BaseModel{CreatedBy: "alice", UpdatedBy: "alice"},
		UserID:    alice.ID,
		Name:      "General",
	}
	require.NoError(t, db.Create(&aliceCategory).Error)

	bobCategory := models.Category{
		BaseModel: models.BaseModel{CreatedBy: "bob", UpdatedBy: "bob"},
		UserID:    bob.ID,
		Name:      "General",
	}
	require.NoError(t, db.Create(&bobCategory).Error)

	seedTransaction(t, db, "alice", aliceCategory.ID, models.TransactionTypeIncome, "100.00")
	seedTransaction(t, db, "alice", aliceCategory.ID, models.TransactionTypeIncome, "50.50")
	seedTransaction(t, db, "alice", aliceCategory.ID, models.TransactionTypeExpense, "30.25")
	// Bob's records must not leak into Alice's stats
	seedTransaction(t, db, "bob", bobCategory.ID, models.TransactionTypeIncome, "999.99")

	token := testutil.Login(t, router, "alice", "secret")
	rec := testutil.Request(t, router, http.MethodGet, "/api/dashboard/stats/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := testutil.DecodeBody(t, rec)
	assert.EqualValues(t, http.StatusOK, body["status"])
	payload := body["payload"].(map[string]interface{})

	totalIncome := decimal.RequireFromString(payload["total_income"].(string))
	totalExpense := decimal.RequireFromString(payload["total_expense"].(string))
	balance := decimal.RequireFromString(payload["balance"].(string))

	assert.True(t, totalIncome.Equal(decimal.RequireFromString("150.50")))
	assert.True(t, totalExpense.Equal(decimal.RequireFromString("30.25")))
	assert.True(t, balance.Equal(decimal.RequireFromString("120.25")))
	assert.EqualValues(t, 1, payload["categories"])
}

func TestGetStatsRequiresAuth(t *testing.T) {
	_, router := setup(t)

	rec := testutil.Request(t, router, http.MethodGet, "/api/dashboard/stats/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetStatsEmptyAccount(t *testing.T) {
	db, router := setup(t)
	testutil.CreateUser(t, db, "alice", "secret")
	token := testutil.Login(t, router, "alice", "secret")

	rec := testutil.Request(t, router, http.MethodGet, "/api/dashboard/stats/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := testutil.DecodeBody(t, rec)["payload"].(map[string]interface{})
	assert.True(t, decimal.RequireFromString(payload["balance"].(string)).IsZero())
	assert.EqualValues(t, 0, payload["categories"])
}
