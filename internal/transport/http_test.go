package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
)

func TestHTTPSubmitter_CreatePreparationTask(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PreparationTaskPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "task_id": 42}`))
	}))
	defer srv.Close()

	data := models.NewOrderData(3)
	data.Name = "Order 00012-003-0004"
	data.OrderLines = []models.OrderLine{{ProductID: 7, ProductName: "Burger", Quantity: decimal.NewFromInt(2)}}

	s := NewHTTPSubmitter(srv.URL, time.Second, logger.Discard())
	res, err := s.CreatePreparationTask(context.Background(), data)
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.NotNil(t, res.TaskID)
	assert.Equal(t, int64(42), *res.TaskID)

	var sent models.OrderData
	require.NoError(t, json.Unmarshal(got["order_data"], &sent))
	assert.Equal(t, int64(3), sent.ProjectID)
	assert.Equal(t, "Order 00012-003-0004", sent.Name)
	require.Len(t, sent.OrderLines, 1)
	assert.True(t, sent.OrderLines[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestHTTPSubmitter_BusinessFailureIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "message": "quota exceeded"}`))
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second, logger.Discard())
	res, err := s.CreateTask(context.Background(), models.TaskRequest{OrderID: 4, ProjectID: 3})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, "quota exceeded", res.Message)
}

func TestHTTPSubmitter_TransportErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second, logger.Discard())
	_, err := s.CreateTask(context.Background(), models.TaskRequest{OrderID: 4})

	var terr *models.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "create_task", terr.Op)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, 1, calls, "submissions must not be retried")

	srv.Close()
	_, err = s.CreateTask(context.Background(), models.TaskRequest{OrderID: 4})
	require.True(t, errors.As(err, &terr))
}
