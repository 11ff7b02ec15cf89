package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB    *gorm.DB
	Repos *repository.Repositories
	T     *testing.T
}

// SetupTestDB opens an isolated SQLite database file for the test and migrates all store tables.
// A single connection is used, so everything inside a transaction must go through the tx handle.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "store.db") + "?_busy_timeout=5000&_foreign_keys=off"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(entity.All()...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupEnv opens a test database and builds the repositories on top of it
func SetupEnv(t *testing.T) *TestEnv {
	t.Helper()
	db := SetupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	return &TestEnv{
		DB:    db,
		Repos: repository.NewRepositories(db, sqlx.NewDb(sqlDB, "sqlite3")),
		T:     t,
	}
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SeedProduct creates a product in the database
func SeedProduct(t *testing.T, db *gorm.DB, code, name string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:    entity.NewID(),
		Code:  code,
		Name:  name,
		Price: decimal.NewFromInt(100),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return p
}

// SeedRequest creates a request with the given status and creation time
func SeedRequest(t *testing.T, db *gorm.DB, status string, createdAt time.Time) *entity.Request {
	t.Helper()
	r := &entity.Request{
		ID:        entity.NewID(),
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("Failed to seed request: %v", err)
	}
	return r
}

// SeedItem creates a request item with the given quantity and unit price
func SeedItem(t *testing.T, db *gorm.DB, req *entity.Request, product *entity.Product, quantity int, price string) *entity.RequestItem {
	t.Helper()
	item := &entity.RequestItem{
		ID:           entity.NewID(),
		RequestID:    req.ID,
		ProductID:    product.ID,
		Quantity:     quantity,
		PricePerUnit: decimal.RequireFromString(price),
		Supplier:     "ACME",
		Customer:     entity.DefaultCustomer,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed request item: %v", err)
	}
	return item
}

// SeedLine creates a product, a request and one item in a single call
func SeedLine(t *testing.T, db *gorm.DB, status string, quantity int) *entity.RequestItem {
	t.Helper()
	p := SeedProduct(t, db, "P-"+entity.NewID()[:8], "Test product")
	r := SeedRequest(t, db, status, Date(2025, time.January, 1))
	return SeedItem(t, db, r, p, quantity, "10.00")
}

// ReloadItem reads the request item back from the database
func ReloadItem(t *testing.T, db *gorm.DB, id string) *entity.RequestItem {
	t.Helper()
	var item entity.RequestItem
	if err := db.Where("id = ?", id).First(&item).Error; err != nil {
		t.Fatalf("Failed to reload request item: %v", err)
	}
	return &item
}
