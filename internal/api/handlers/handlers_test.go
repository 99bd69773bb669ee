package handlers

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"livestock-farm-api-server/internal/models"
)

func TestNewRecordID(t *testing.T) {
	date := time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)
	id := newRecordID(date)

	assert.Regexp(t, regexp.MustCompile(`^FR-20260314-073000-[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, newRecordID(date))
}

func TestStatusAfter(t *testing.T) {
	assert.Equal(t, models.AnimalStatusSold, statusAfter(models.TransactionSale))
	assert.Equal(t, models.AnimalStatusSlaughtered, statusAfter(models.TransactionSlaughter))
	assert.Empty(t, statusAfter(models.TransactionPurchase))
}

func TestValidateRules(t *testing.T) {
	valid := []models.CalculationRule{
		{Method: models.FeedMethodFixedAmount, Parameters: models.RuleParameters{Amount: 2}},
		{Method: models.FeedMethodFormula, Parameters: models.RuleParameters{Expression: "weight * 0.03"}},
	}
	assert.Empty(t, validateRules(valid))

	assert.Contains(t, validateRules([]models.CalculationRule{{Method: "guesswork"}}), "unknown calculation method")
	assert.Contains(t,
		validateRules([]models.CalculationRule{
			{Method: models.FeedMethodFormula, Parameters: models.RuleParameters{Expression: "weight + dose"}},
		}),
		"rule 0")
}

func TestApplyRestockFields(t *testing.T) {
	expiry := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	set := bson.M{"unitPrice": 4.5}
	applyRestockFields(set, &CreateInventoryTxRequest{
		Type:       models.InventoryTxAdd,
		ExpiryDate: &expiry,
		Supplier:   "AgriSupply",
	})
	assert.Equal(t, &expiry, set["expiryDate"])
	assert.Equal(t, "AgriSupply", set["supplier"])

	// Omitted fields stay untouched.
	set = bson.M{}
	applyRestockFields(set, &CreateInventoryTxRequest{Type: models.InventoryTxAdd})
	assert.Empty(t, set)

	// Use transactions never carry restock metadata.
	set = bson.M{}
	applyRestockFields(set, &CreateInventoryTxRequest{
		Type:       models.InventoryTxUse,
		ExpiryDate: &expiry,
		Supplier:   "AgriSupply",
	})
	assert.Empty(t, set)
}

func TestCreateUsageRejectsNegativeConsumedQuantity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", primitive.NewObjectID().Hex())

	body := `{"itemId":"` + primitive.NewObjectID().Hex() + `","consumedQuantity":-2}`
	c.Request = httptest.NewRequest(http.MethodPost, "/equipment-usages", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h := &EquipmentHandler{}
	h.CreateUsage(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviveValueRemapsIDs(t *testing.T) {
	oldID := primitive.NewObjectID()
	newID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	idMap := map[string]primitive.ObjectID{oldID.Hex(): newID}

	doc := map[string]interface{}{
		"_id":      oldID.Hex(),
		"motherId": otherID.Hex(),
		"name":     "Bella",
		"count":    float64(3),
		"tags":     []interface{}{oldID.Hex(), "plain"},
		"nested":   map[string]interface{}{"ref": oldID.Hex()},
	}

	out, ok := reviveValue(doc, idMap).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, newID, out["_id"])
	assert.Equal(t, otherID, out["motherId"])
	assert.Equal(t, "Bella", out["name"])
	assert.Equal(t, float64(3), out["count"])

	tags, ok := out["tags"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, newID, tags[0])
	assert.Equal(t, "plain", tags[1])

	nested, ok := out["nested"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, newID, nested["ref"])
}

func TestReviveValueParsesDates(t *testing.T) {
	stamp := "2026-01-02T15:04:05Z"
	out := reviveValue(stamp, nil)

	parsed, ok := out.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2026, parsed.Year())
}
