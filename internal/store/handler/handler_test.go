package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poetrydeveloper/app-store-v2/internal/config"
	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/service"
	"github.com/poetrydeveloper/app-store-v2/internal/store/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStoreTest(t *testing.T) (*gin.Engine, *testutil.TestEnv) {
	t.Helper()
	env := testutil.SetupEnv(t)
	cfg := &config.Config{
		Catalog: config.CatalogConfig{SearchLimit: 10, CacheTTL: time.Minute},
		Units:   config.UnitsConfig{SerialPrefix: "RF", MaxAttempts: 5},
	}
	svc, err := service.NewServices(env.DB, env.Repos, nil, cfg, nil)
	require.NoError(t, err)

	router := testutil.SetupRouter()
	NewHandlers(svc).Register(router.Group("/api/v1"))
	return router, env
}

func dataOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "expected object data, got %v", resp["data"])
	return data
}

func createDelivery(t *testing.T, router *gin.Engine, itemID string, qty int) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/deliveries", map[string]interface{}{
		"request_item_id": itemID,
		"delivery_date":   "2025-01-05",
		"quantity":        qty,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf(t, testutil.ParseResponse(w))
}

func TestDeliveryLifecycle(t *testing.T) {
	router, env := setupStoreTest(t)
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 10)

	d := createDelivery(t, router, item.ID, 4)
	assert.Equal(t, "partial", d["status"])
	id := d["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/api/v1/deliveries/"+id, map[string]interface{}{
		"request_item_id": item.ID,
		"delivery_date":   "2025-01-05",
		"quantity":        10,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "full", dataOf(t, testutil.ParseResponse(w))["status"])

	w = testutil.DoRequest(router, "GET", "/api/v1/deliveries/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, testutil.ParseResponse(w))
	requestItem := data["request_item"].(map[string]interface{})
	assert.EqualValues(t, 10, requestItem["delivered_quantity"])
	assert.Equal(t, true, requestItem["is_completed"])

	w = testutil.DoRequest(router, "GET", "/api/v1/deliveries?status=full", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataOf(t, testutil.ParseResponse(w))
	assert.Len(t, list["items"], 1)
	assert.EqualValues(t, 1, list["pagination"].(map[string]interface{})["total"])

	w = testutil.DoRequest(router, "DELETE", "/api/v1/deliveries/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, testutil.ReloadItem(t, env.DB, item.ID).DeliveredQuantity)

	w = testutil.DoRequest(router, "GET", "/api/v1/deliveries/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 40400, testutil.ParseResponse(w)["code"])
}

func TestDeliveryValidationErrors(t *testing.T) {
	router, env := setupStoreTest(t)
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 3)

	w := testutil.DoRequest(router, "POST", "/api/v1/deliveries", map[string]interface{}{
		"request_item_id": item.ID,
		"delivery_date":   "2025-01-05",
		"quantity":        5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := testutil.ParseResponse(w)
	assert.EqualValues(t, 40000, resp["code"])
	assert.Contains(t, resp["message"], "at most 3")

	w = testutil.DoRequest(router, "POST", "/api/v1/deliveries", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(router, "POST", "/api/v1/deliveries", map[string]interface{}{
		"request_item_id": "missing",
		"delivery_date":   "2025-01-05",
		"quantity":        1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateUnitsEndpoints(t *testing.T) {
	router, env := setupStoreTest(t)
	a := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 2)
	b := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 3)
	da := createDelivery(t, router, a.ID, 2)["id"].(string)
	db := createDelivery(t, router, b.ID, 3)["id"].(string)

	w := testutil.DoRequest(router, "POST", "/api/v1/deliveries/"+da+"/units", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, dataOf(t, testutil.ParseResponse(w))["created"])

	w = testutil.DoRequest(router, "POST", "/api/v1/deliveries/generate-units", map[string]interface{}{
		"ids": []string{da, db, "missing"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := dataOf(t, testutil.ParseResponse(w))
	assert.EqualValues(t, 3, res["created"])
	assert.EqualValues(t, 1, res["skipped"])
	assert.Len(t, res["errors"], 1)

	w = testutil.DoRequest(router, "GET", "/api/v1/units?delivery_id="+db, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := dataOf(t, testutil.ParseResponse(w))["items"].([]interface{})
	require.Len(t, items, 3)
	serial := items[0].(map[string]interface{})["serial_number"].(string)

	w = testutil.DoRequest(router, "GET", "/api/v1/units/"+serial, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, db, dataOf(t, testutil.ParseResponse(w))["delivery_id"])

	w = testutil.DoRequest(router, "GET", "/api/v1/units/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "units_")
	assert.NotZero(t, w.Body.Len())
}

func TestRequestEndpoints(t *testing.T) {
	router, env := setupStoreTest(t)
	p := testutil.SeedProduct(t, env.DB, "HAM-01", "Hammer")

	w := testutil.DoRequest(router, "POST", "/api/v1/requests", map[string]interface{}{
		"status": "in_request",
		"items": []map[string]interface{}{
			{"product_id": p.ID, "quantity": 2, "price_per_unit": "5.5"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := dataOf(t, testutil.ParseResponse(w))
	reqID := req["id"].(string)
	items := req["items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	itemID := first["id"].(string)
	assert.Equal(t, "11", first["total_cost"])
	assert.Equal(t, "0/2", first["progress"])

	w = testutil.DoRequest(router, "PUT", "/api/v1/requests/"+reqID+"/status", map[string]interface{}{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(router, "PUT", "/api/v1/request-items/"+itemID+"/completion", map[string]interface{}{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, dataOf(t, testutil.ParseResponse(w))["is_completed"])

	w = testutil.DoRequest(router, "GET", "/api/v1/request-items/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataOf(t, testutil.ParseResponse(w))["items"])

	w = testutil.DoRequest(router, "POST", "/api/v1/request-items/change-status", map[string]interface{}{
		"ids": []string{itemID}, "status": "extra",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.DoRequest(router, "GET", "/api/v1/request-items?status=extra", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, testutil.ParseResponse(w))["items"], 1)

	w = testutil.DoRequest(router, "GET", "/api/v1/requests/"+reqID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := dataOf(t, testutil.ParseResponse(w))
	assert.Equal(t, "extra", detail["status"])
	assert.Equal(t, true, detail["completed"])
}

func TestCatalogEndpoints(t *testing.T) {
	router, _ := setupStoreTest(t)

	for i := 0; i < 12; i++ {
		w := testutil.DoRequest(router, "POST", "/api/v1/catalog/products", map[string]interface{}{
			"code": fmt.Sprintf("DR-%02d", i), "name": fmt.Sprintf("Drill %02d", i), "price": "10",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := testutil.DoRequest(router, "GET", "/api/v1/catalog/search?q=DRILL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hits := testutil.ParseResponse(w)["data"].([]interface{})
	assert.Len(t, hits, 10)
	assert.Len(t, hits[0].(map[string]interface{}), 2)

	w = testutil.DoRequest(router, "GET", "/api/v1/catalog/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, testutil.ParseResponse(w)["data"])

	w = testutil.DoRequest(router, "POST", "/api/v1/catalog/products", map[string]interface{}{"code": "DR-00", "name": "dup"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesEndpoints(t *testing.T) {
	router, env := setupStoreTest(t)
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusInRequest, 1)
	d := createDelivery(t, router, item.ID, 1)["id"].(string)
	w := testutil.DoRequest(router, "POST", "/api/v1/deliveries/"+d+"/units", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var unit entity.ProductUnit
	require.NoError(t, env.DB.Where("delivery_id = ?", d).First(&unit).Error)

	sale := map[string]interface{}{"date": "2025-02-01", "product_unit_id": unit.ID, "price": "19.99"}
	w = testutil.DoRequest(router, "POST", "/api/v1/sales", sale)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.DoRequest(router, "POST", "/api/v1/sales", sale)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(router, "DELETE", "/api/v1/deliveries/"+d, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(router, "POST", "/api/v1/trading-days/2025-02-01/events", map[string]interface{}{"type": "other"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.DoRequest(router, "GET", "/api/v1/trading-days/2025-02-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, testutil.ParseResponse(w))["events"], 2)

	w = testutil.DoRequest(router, "GET", "/api/v1/reports/daily-sales?from=2025-02-01&to=2025-02-28", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rows := dataOf(t, testutil.ParseResponse(w))["items"].([]interface{})
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0].(map[string]interface{})["sale_count"])
}
