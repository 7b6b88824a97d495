package partsws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-sync-service/internal/clients"
	"github.com/stretchr/testify/assert"
)

func TestFetchMatchPage_ParsesMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches/ean", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"page": map[string]int{"current_page": 2, "available_pages": 5},
			"match": []map[string]interface{}{
				{"products_id": 100, "values": []string{"4006381333931"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 100)
	result, err := client.FetchMatchPage(context.Background(), clients.MatchEAN, 2)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Page.CurrentPage)
	assert.Equal(t, 5, result.Page.AvailablePages)
	assert.Len(t, result.Matches, 1)
	assert.Equal(t, int64(100), result.Matches[0].ExternalID)
}

func TestFetchMatchPage_MissingAvailablePagesIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// well-formed response, but the pagination block is absent
		json.NewEncoder(w).Encode(map[string]interface{}{
			"match": []map[string]interface{}{},
			"error": "index temporarily unavailable",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 100)
	_, err := client.FetchMatchPage(context.Background(), clients.MatchOEM, 1)

	var missing *clients.MissingPageCountError
	assert.ErrorAs(t, err, &missing)
	assert.Contains(t, err.Error(), "index temporarily unavailable")
}

func TestFetchMatchPage_MissingPageCountOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// page block present but available_pages missing
		json.NewEncoder(w).Encode(map[string]interface{}{
			"page":  map[string]int{"current_page": 1},
			"match": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 100)
	_, err := client.FetchMatchPage(context.Background(), clients.MatchEAN, 1)

	var missing *clients.MissingPageCountError
	assert.ErrorAs(t, err, &missing)
}

func TestFetchProductList_PostsIDsAndFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products", r.URL.Path)

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application_in", req["filter"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"page": map[string]int{"current_page": 1, "available_pages": 1},
			"products": []map[string]interface{}{
				{"products_id": 42, "product_application_in": []int64{7, 8}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 100)
	result, err := client.FetchProductList(context.Background(), []int64{42}, clients.FilterApplicationIn)

	assert.NoError(t, err)
	assert.Len(t, result.Products, 1)
	assert.Equal(t, int64(42), result.Products[0].ExternalID)
	assert.Equal(t, []int64{7, 8}, result.Products[0].ApplicationIn)
}

func TestDoRequest_RetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"page":  map[string]int{"current_page": 1, "available_pages": 1},
			"match": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 100)
	// shrink backoff so the retry is immediate
	client.retrier = clients.NewRetrier(&clients.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: 1,
		MaxBackoff:     1,
		BackoffFactor:  1,
		RetryableCodes: []int{503},
	})

	result, err := client.FetchMatchPage(context.Background(), clients.MatchEAN, 1)

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, result.Page.AvailablePages)
}

func TestDoRequest_NoRetryOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 100)
	_, err := client.FetchMatchPage(context.Background(), clients.MatchEAN, 1)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
