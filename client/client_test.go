package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Daskott/swiftly/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(server.URL + "/")
}

func writeJSON(rw http.ResponseWriter, status int, payload interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(payload)
}

func TestSendAlert(t *testing.T) {
	var received shared.AlertRequest

	client := newTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sos", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		writeJSON(rw, http.StatusOK, shared.AlertResponse{
			Message: "SOS sent successfully",
			Results: []shared.DispatchResult{{Number: "+27111", Sid: "SM1", Status: shared.SENT_STATUS}},
		})
	})

	req := shared.AlertRequest{
		Name: "Ann", Surname: "Lee", Coordinates: "1.0,2.0",
		CallMeAt: "+27000", EmergencyType: "Send an ambulance", Contacts: []string{"+27111"},
	}

	resp, err := client.SendAlert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req, received)
	assert.Equal(t, "SOS sent successfully", resp.Message)
	assert.Equal(t, "SM1", resp.Results[0].Sid)
}

func TestSendAlertBadRequest(t *testing.T) {
	client := newTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusBadRequest, shared.ErrorResponse{Error: "Contacts array is required"})
	})

	_, err := client.SendAlert(context.Background(), shared.AlertRequest{})

	var requestErr *RequestError
	require.True(t, errors.As(err, &requestErr))
	assert.Equal(t, http.StatusBadRequest, requestErr.StatusCode)
	assert.Equal(t, "Contacts array is required", requestErr.Message)
	assert.Contains(t, requestErr.Error(), "400")
}

func TestHealth(t *testing.T) {
	healthy := newTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte("✅ SOS API is running. Use POST /sos to send alerts."))
	})
	assert.NoError(t, healthy.Health(context.Background()))

	unhealthy := newTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, unhealthy.Health(context.Background()))
}

func TestLogs(t *testing.T) {
	client := newTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logs", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		writeJSON(rw, http.StatusOK, shared.LogsResponse{
			Data:   []shared.LogEntry{{Name: "Ann"}},
			Paging: &shared.Paging{Total: 21, Page: 2, Pages: 2},
		})
	})

	logs, err := client.Logs(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Ann", logs.Data[0].Name)
	assert.Equal(t, int64(2), logs.Paging.Pages)
}
