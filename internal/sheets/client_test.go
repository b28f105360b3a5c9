package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{ token string }

func (s staticTokens) Token(context.Context) (string, error) { return s.token, nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("sheet-123", staticTokens{"tok"}, WithBaseURL(server.URL))
	return client, server
}

func TestGet(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v4/spreadsheets/sheet-123/values/history!A:I", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"range":  "history!A1:I2",
			"values": [][]string{{"id", "stars_count"}, {"abc12345", "3"}},
		})
	})

	values, err := client.Get(context.Background(), "history!A:I")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, []string{"abc12345", "3"}, values[1])
}

func TestGetEmptySheet(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"range": "history!A1:I1"})
	})

	values, err := client.Get(context.Background(), "history!A:I")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestAppend(t *testing.T) {
	var body valueRange
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":append")
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	})

	err := client.Append(context.Background(), "history!A:I", [][]string{{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, body.Values)
}

func TestUpdate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		w.Write([]byte("{}"))
	})

	err := client.Update(context.Background(), "history!B3", [][]string{{"4"}})
	require.NoError(t, err)
}

func TestDeleteRows(t *testing.T) {
	var batch map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"sheets": []map[string]interface{}{
					{"properties": map[string]interface{}{"sheetId": 77, "title": "Sheet1"}},
				},
			})
		default:
			assert.Contains(t, r.URL.Path, ":batchUpdate")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
			w.Write([]byte("{}"))
		}
	})

	err := client.DeleteRows(context.Background(), "Sheet1", 2, 3)
	require.NoError(t, err)

	requests := batch["requests"].([]interface{})
	rng := requests[0].(map[string]interface{})["deleteDimension"].(map[string]interface{})["range"].(map[string]interface{})
	assert.Equal(t, float64(77), rng["sheetId"])
	assert.Equal(t, float64(2), rng["startIndex"])
	assert.Equal(t, float64(3), rng["endIndex"])
}

func TestDeleteRowsUnknownSheet(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"sheets": []interface{}{}})
	})

	err := client.DeleteRows(context.Background(), "nope", 0, 1)
	assert.ErrorContains(t, err, "not found")
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"values": [][]string{{"x"}}})
	})

	values, err := client.Get(context.Background(), "Sheet1!A:C")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "x", values[0][0])
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	})

	_, err := client.Get(context.Background(), "Sheet1!A:C")
	assert.ErrorContains(t, err, "403")
	assert.Equal(t, 1, calls)
}
