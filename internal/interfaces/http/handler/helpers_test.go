package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	importapp "github.com/orderops/backend/internal/application/import"
	orderapp "github.com/orderops/backend/internal/application/order"
	shipmentapp "github.com/orderops/backend/internal/application/shipment"
	"github.com/orderops/backend/internal/infrastructure/persistence"
	"github.com/orderops/backend/internal/interfaces/http/dto"
	"github.com/orderops/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

// newTestServer wires every handler over a migrated in-memory sqlite database
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(persistence.SQLiteDSN(":memory:")), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	scope := persistence.NewGormTransactionScope(db)
	orders := persistence.NewGormOrderRepository(db)
	listings := persistence.NewGormListingRepository(db)
	lookup := orderapp.NewListingProductLookup(listings)
	analyzer := orderapp.NewRiskAnalyzer(lookup, decimal.Zero)

	orderH := NewOrderHandler(
		orderapp.NewIngestService(scope, orderapp.NewNormalizer(lookup, nil), nil),
		orderapp.NewOrderQueryService(orders, analyzer),
	)
	shipmentH := NewShipmentHandler(
		shipmentapp.NewBatchManager(scope, decimal.Zero, nil),
		shipmentapp.NewShipmentQueryService(persistence.NewGormShipmentRepository(db)),
	)
	catalogH := NewCatalogHandler(
		importapp.NewPriceListImportService(scope, nil),
		importapp.NewInventoryImportService(scope, nil),
		shipmentapp.NewLocationResolver(persistence.NewGormInventoryRepository(db)),
		decimal.Zero,
	)
	systemH := NewSystemHandler("test", sqlDB)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/health", systemH.Health)
	v1 := r.Group("/api/v1")
	v1.POST("/orders/ingest", orderH.Ingest)
	v1.GET("/orders/unshipped", orderH.ListUnshipped)
	v1.GET("/orders/summary", orderH.Summary)
	v1.GET("/orders/pending", orderH.Pending)
	v1.GET("/orders/remainders", orderH.Remainders)
	v1.PUT("/orders/:id/location", shipmentH.UpdateLocation)
	v1.GET("/shipments", shipmentH.List)
	v1.POST("/shipments", shipmentH.Create)
	v1.POST("/shipments/review", shipmentH.Review)
	v1.POST("/shipments/split", shipmentH.Split)
	v1.POST("/shipments/merge", shipmentH.Merge)
	v1.POST("/shipments/merge/cancel", shipmentH.CancelMerge)
	v1.POST("/shipments/complete", shipmentH.Complete)
	v1.GET("/inventory/:code/stock", catalogH.Stock)
	v1.POST("/catalog/prices/upload", catalogH.UploadPrices)
	v1.POST("/catalog/inventory/upload", catalogH.UploadInventory)

	return &testServer{router: r, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.serve(t, req)
}

type upload struct {
	name    string
	content []byte
}

func (s *testServer) upload(t *testing.T, path, fileField string, fields map[string]string, files ...upload) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(fileField, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var resp dto.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// decodeData re-decodes the envelope data into out
func decodeData(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

var amazonHeader = "order-id\torder-item-id\tsku\tproduct-name\tquantity-purchased\titem-price\t" +
	"buyer-name\tbuyer-phone-number\trecipient-name\tship-postal-code\t" +
	"ship-state\tship-city\tship-address-1\tship-address-2\tship-address-3"

// amazonExport builds a tab separated Amazon export, one row per reference
func amazonExport(rows ...[3]string) upload {
	lines := []string{amazonHeader}
	for _, r := range rows {
		ref, qty, recipient := r[0], r[1], r[2]
		lines = append(lines, strings.Join([]string{
			ref, "item-" + ref, "SKU-" + ref, "Product " + ref, qty, "1000",
			"Buyer", "090-0000-0000", recipient, "100-0001",
			"Tokyo", "Chiyoda", "1-1", "", "",
		}, "\t"))
	}
	return upload{name: "amazon-orders.txt", content: []byte(strings.Join(lines, "\n") + "\n")}
}
