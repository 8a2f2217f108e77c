package handler

import (
	"net/http"
	"testing"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingestAmazon(t *testing.T, s *testServer, rows ...[3]string) orderapp.IngestResult {
	t.Helper()
	rec, resp := s.upload(t, "/api/v1/orders/ingest", FormFiles,
		map[string]string{FormMarketplace: "amazon"}, amazonExport(rows...))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result orderapp.IngestResult
	decodeData(t, resp, &result)
	return result
}

func unshipped(t *testing.T, s *testServer) []orderapp.AnnotatedOrder {
	t.Helper()
	rec, resp := s.do(t, http.MethodGet, "/api/v1/orders/unshipped?page_size=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out orderapp.UnshippedOrders
	decodeData(t, resp, &out)
	return out.Page.Items
}

func TestOrderHandler_Ingest(t *testing.T) {
	s := newTestServer(t)

	first := ingestAmazon(t, s, [3]string{"A1", "1", "Taro"}, [3]string{"A2", "2", "Hanako"})
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, 2, first.Success)
	assert.Zero(t, first.Error)

	second := ingestAmazon(t, s, [3]string{"A1", "1", "Taro"}, [3]string{"A3", "1", "Jiro"})
	assert.Equal(t, 1, second.Success)
	assert.Equal(t, 1, second.Error)
	require.Len(t, second.Duplicates, 1)
	assert.Equal(t, "A1", second.Duplicates[0].ReferenceNo)

	assert.Len(t, unshipped(t, s), 3)
}

func TestOrderHandler_Ingest_Errors(t *testing.T) {
	s := newTestServer(t)

	t.Run("unknown marketplace", func(t *testing.T) {
		rec, resp := s.upload(t, "/api/v1/orders/ingest", FormFiles,
			map[string]string{FormMarketplace: "rakuten"}, amazonExport([3]string{"A1", "1", "Taro"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("no files", func(t *testing.T) {
		rec, resp := s.upload(t, "/api/v1/orders/ingest", FormFiles,
			map[string]string{FormMarketplace: "amazon"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec, resp := s.do(t, http.MethodPost, "/api/v1/orders/ingest", map[string]string{"marketplace": "amazon"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("empty file", func(t *testing.T) {
		rec, resp := s.upload(t, "/api/v1/orders/ingest", FormFiles,
			map[string]string{FormMarketplace: "amazon"}, upload{name: "amazon.txt", content: []byte{}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})
}

func TestOrderHandler_ListUnshipped(t *testing.T) {
	s := newTestServer(t)
	ingestAmazon(t, s,
		[3]string{"A1", "1", "Taro Yamada"},
		[3]string{"A2", "1", "Taro Yamada"},
		[3]string{"A3", "1", "Hanako Sato"},
	)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/orders/unshipped?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 3, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	var out orderapp.UnshippedOrders
	decodeData(t, resp, &out)
	assert.Len(t, out.Page.Items, 2)
	require.Len(t, out.Risk.DuplicateConsignees, 1)
	assert.Equal(t, 2, out.Risk.DuplicateConsignees[0].Count)

	rec, resp = s.do(t, http.MethodGet, "/api/v1/orders/unshipped?page_size=9999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func TestOrderHandler_Reports(t *testing.T) {
	s := newTestServer(t)
	ingestAmazon(t, s, [3]string{"A1", "3", "Taro"})

	rec, resp := s.do(t, http.MethodGet, "/api/v1/orders/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary orderapp.Summary
	decodeData(t, resp, &summary)
	require.NotNil(t, summary.Counts)

	rec, resp = s.do(t, http.MethodGet, "/api/v1/orders/pending?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var counts []order.DailyCount
	decodeData(t, resp, &counts)
	assert.NotEmpty(t, counts)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/orders/pending?days=0", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "zero falls back to the default window")

	rec, _ = s.do(t, http.MethodGet, "/api/v1/orders/pending?days=400", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/api/v1/orders/remainders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var remainders []order.Order
	decodeData(t, resp, &remainders)
	assert.Empty(t, remainders)
}
