package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Daskott/swiftly/server/auditlog"
	"github.com/Daskott/swiftly/server/dispatch"
	"github.com/Daskott/swiftly/server/logger"
	"github.com/Daskott/swiftly/server/twilio"
	"github.com/Daskott/swiftly/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annLeeAlert = `{"name":"Ann","surname":"Lee","contacts":["+27111"],` +
	`"coordinates":"1.0,2.0","callMeAt":"+27000","emergencyType":"Send an ambulance"}`

type fakeGateway struct {
	err error
}

func (g *fakeGateway) SendMessage(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.err != nil {
		return "", g.err
	}
	return "SM" + strings.TrimPrefix(to, "+"), nil
}

func newTestRouter(t *testing.T, gateway dispatch.Gateway) (http.Handler, *auditlog.Writer) {
	writer := auditlog.NewWriter(
		auditlog.NewFileStore(filepath.Join(t.TempDir(), auditlog.DEFAULT_FILE_NAME)),
		logger.NewNopLogger())
	writer.Start()
	t.Cleanup(writer.Stop)

	service := dispatch.NewService(gateway, writer, dispatch.WithLogger(logger.NewNopLogger()))
	return newRouter(&handler{service: service, logs: writer}), writer
}

func doRequest(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSubmitAlert(t *testing.T) {
	cases := []struct {
		description    string
		body           string
		gatewayErr     error
		expectedStatus int
		expectedError  string
		expectedResult string
	}{
		{
			description:    "Should send alert to every contact",
			body:           annLeeAlert,
			expectedStatus: http.StatusOK,
			expectedResult: shared.SENT_STATUS,
		},
		{
			description:    "Should report failed deliveries with a 200",
			body:           annLeeAlert,
			gatewayErr:     errors.New("unreachable number"),
			expectedStatus: http.StatusOK,
			expectedResult: shared.FAILED_STATUS,
		},
		{
			description: "Should reject an empty contact list",
			body: `{"name":"Ann","surname":"Lee","contacts":[],` +
				`"coordinates":"1.0,2.0","callMeAt":"+27000","emergencyType":"Send an ambulance"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Contacts array is required",
		},
		{
			description:    "Should reject a field of the wrong type",
			body:           `{"name":123,"surname":"Lee"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Name and surname are required",
		},
		{
			description:    "Should treat an empty body as an empty alert",
			body:           "",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Name and surname are required",
		},
		{
			description:    "Should reject malformed JSON",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid JSON payload",
		},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			router, writer := newTestRouter(t, &fakeGateway{err: tcase.gatewayErr})

			rr := doRequest(router, http.MethodPost, "/sos", tcase.body)
			assert.Equal(t, tcase.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			entries, err := writer.Entries()
			require.NoError(t, err)

			if tcase.expectedError != "" {
				errResp := shared.ErrorResponse{}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
				assert.Equal(t, tcase.expectedError, errResp.Error)
				assert.Empty(t, entries, "Rejected alerts should not be logged")
				return
			}

			resp := shared.AlertResponse{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, dispatch.SUCCESS_MESSAGE, resp.Message)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, "+27111", resp.Results[0].Number)
			assert.Equal(t, tcase.expectedResult, resp.Results[0].Status)

			if tcase.expectedResult == shared.SENT_STATUS {
				assert.NotEmpty(t, resp.Results[0].Sid)
			} else {
				assert.NotEmpty(t, resp.Results[0].Error)
			}

			require.Len(t, entries, 1)
			assert.Equal(t, resp.Results, entries[0].Results)
		})
	}
}

func TestSubmitAlertOutlivesRequest(t *testing.T) {
	gateways := map[string]dispatch.Gateway{
		"fake":         &fakeGateway{},
		"twilio (dev)": twilio.NewClient(shared.TwilioConfig{AccountSid: "AC1", AuthToken: "token", From: "+14155238886"}, true),
	}

	body := `{"name":"Ann","surname":"Lee","contacts":["+27111","+27222"],` +
		`"coordinates":"1.0,2.0","callMeAt":"+27000","emergencyType":"Send an ambulance"}`

	for description, gateway := range gateways {
		t.Run(description, func(t *testing.T) {
			router, writer := newTestRouter(t, gateway)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			req := httptest.NewRequest(http.MethodPost, "/sos", strings.NewReader(body)).WithContext(ctx)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, http.StatusOK, rr.Code)

			resp := shared.AlertResponse{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.Len(t, resp.Results, 2)
			for _, result := range resp.Results {
				assert.Equal(t, shared.SENT_STATUS, result.Status, "%v should still be notified", result.Number)
				assert.NotEmpty(t, result.Sid)
			}

			entries, err := writer.Entries()
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &fakeGateway{})

	rr := doRequest(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, HEALTH_MESSAGE, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
}

func TestListLogs(t *testing.T) {
	router, writer := newTestRouter(t, &fakeGateway{})

	for _, name := range []string{"Ann", "Ben", "Cal"} {
		require.NoError(t, writer.Append(shared.LogEntry{Timestamp: time.Unix(0, 0).UTC(), Name: name}))
	}

	rr := doRequest(router, http.MethodGet, "/logs", "")
	require.Equal(t, http.StatusOK, rr.Code)

	logs := shared.LogsResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &logs))
	require.Len(t, logs.Data, 3)
	assert.Equal(t, "Cal", logs.Data[0].Name, "Newest entry should come first")
	assert.Equal(t, "Ann", logs.Data[2].Name)
	assert.Equal(t, &shared.Paging{Total: 3, Page: 1, Pages: 1}, logs.Paging)

	for _, page := range []string{"0", "-1", "abc"} {
		rr = doRequest(router, http.MethodGet, "/logs?page="+page, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, "page=%v", page)
	}
}

func TestPageOfLogs(t *testing.T) {
	entries := []shared.LogEntry{}
	for i := 0; i < 45; i++ {
		entries = append(entries, shared.LogEntry{Name: fmt.Sprint(i)})
	}

	cases := []struct {
		description   string
		page          int64
		expectedLen   int
		expectedFirst string
	}{
		{description: "Should return newest entries on the first page", page: 1, expectedLen: 20, expectedFirst: "44"},
		{description: "Should return a partial last page", page: 3, expectedLen: 5, expectedFirst: "4"},
		{description: "Should return no entries past the last page", page: 4, expectedLen: 0},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			logs := pageOfLogs(entries, tcase.page, LOGS_PAGE_SIZE)

			require.Len(t, logs.Data, tcase.expectedLen)
			assert.Equal(t, int64(3), logs.Paging.Pages)
			assert.Equal(t, int64(45), logs.Paging.Total)
			if tcase.expectedLen > 0 {
				assert.Equal(t, tcase.expectedFirst, logs.Data[0].Name)
			}
		})
	}

	assert.Equal(t, &shared.Paging{Total: 0, Page: 1, Pages: 1}, pageOfLogs(nil, 1, LOGS_PAGE_SIZE).Paging)
}

func TestRequestID(t *testing.T) {
	router, _ := newTestRouter(t, &fakeGateway{})

	rr := doRequest(router, http.MethodGet, "/", "")
	assert.NotEmpty(t, rr.Header().Get(REQUEST_ID_HEADER))

	requestID := "0b8a4b7e-3c1d-4a57-9f3e-2f0a8a6c5d11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(REQUEST_ID_HEADER, requestID)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, requestID, rr.Header().Get(REQUEST_ID_HEADER))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(REQUEST_ID_HEADER, "not-a-uuid")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get(REQUEST_ID_HEADER))
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, &fakeGateway{})

	req := httptest.NewRequest(http.MethodOptions, "/sos", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownMethod(t *testing.T) {
	router, _ := newTestRouter(t, &fakeGateway{})

	rr := doRequest(router, http.MethodGet, "/sos", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
