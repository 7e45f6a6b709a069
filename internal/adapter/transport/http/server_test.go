package http_server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := service.NewStore(zap.NewNop(), 8, nil)
	srv := NewServer(zap.NewNop(), ":0", st, 1<<20, Mounts{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return res, decodeBody(t, res)
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	return res, decodeBody(t, res)
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return out
}

func readingsBody(id string, readings ...string) string {
	return fmt.Sprintf(`{"id":%q,"readings":[%s]}`, id, strings.Join(readings, ","))
}

func reading(ts string, count int) string {
	return fmt.Sprintf(`{"timestamp":%q,"count":%d}`, ts, count)
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	res, body := get(t, ts, "/ping")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Header.Get("Content-Type"), "application/json")
	require.Equal(t, "Hello world!", body["message"])
	require.Equal(t, "ok", body["status"])
}

func TestUnknownRoute_ReturnsJSON404(t *testing.T) {
	ts := newTestServer(t)
	res, body := get(t, ts, "/this/route/does/not/exist")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Contains(t, res.Header.Get("Content-Type"), "application/json")
	require.Equal(t, "Not Found", body["error"])
}

func TestPostReadings_CreatesDeviceAndReadings(t *testing.T) {
	ts := newTestServer(t)
	res, body := postJSON(t, ts, "/readings", readingsBody("36d5658a-6908-479e-887e-a949ec199272",
		reading("2021-09-29T16:08:15+01:00", 2),
		reading("2021-09-29T16:09:15+01:00", 15),
	))
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, body["success"])

	res, body = get(t, ts, "/devices/36d5658a-6908-479e-887e-a949ec199272/total_count")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.EqualValues(t, 17, body["total_count"])
}

func TestLatestTimestamp_ReturnsMostRecent(t *testing.T) {
	ts := newTestServer(t)
	postJSON(t, ts, "/readings", readingsBody("device-latest-test",
		reading("2021-09-29T16:08:15+01:00", 2),
		reading("2021-09-29T18:08:15+01:00", 5),
		reading("2021-09-29T17:08:15+01:00", 3),
	))

	res, body := get(t, ts, "/devices/device-latest-test/latest_timestamp")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "2021-09-29T17:08:15Z", body["latest_timestamp"])
}

func TestLatestTimestamp_NullWithoutReadings(t *testing.T) {
	ts := newTestServer(t)
	res, _ := postJSON(t, ts, "/readings", readingsBody("device-empty"))
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body := get(t, ts, "/devices/device-empty/latest_timestamp")
	require.Equal(t, http.StatusOK, res.StatusCode)
	v, present := body["latest_timestamp"]
	require.True(t, present)
	require.Nil(t, v)

	res, body = get(t, ts, "/devices/device-empty/total_count")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.EqualValues(t, 0, body["total_count"])
}

func TestUnknownDevice_Returns404(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{
		"/devices/unknown-device/latest_timestamp",
		"/devices/unknown-device/total_count",
	} {
		res, body := get(t, ts, path)
		require.Equal(t, http.StatusNotFound, res.StatusCode, path)
		require.Equal(t, "Device not found", body["error"], path)
	}
}

func TestDuplicateReadings_AreIgnored(t *testing.T) {
	ts := newTestServer(t)
	postJSON(t, ts, "/readings", readingsBody("device-duplicate-test", reading("2021-09-29T16:08:15+01:00", 10)))
	res, _ := postJSON(t, ts, "/readings", readingsBody("device-duplicate-test", reading("2021-09-29T16:08:15+01:00", 999)))
	require.Equal(t, http.StatusOK, res.StatusCode)

	_, body := get(t, ts, "/devices/device-duplicate-test/total_count")
	require.EqualValues(t, 10, body["total_count"])
}

func TestEquivalentTimestamps_AreDuplicates(t *testing.T) {
	ts := newTestServer(t)
	postJSON(t, ts, "/readings", readingsBody("device-timezone-test", reading("2021-09-29T16:08:15+01:00", 10)))
	postJSON(t, ts, "/readings", readingsBody("device-timezone-test", reading("2021-09-29T15:08:15Z", 999)))

	_, body := get(t, ts, "/devices/device-timezone-test/total_count")
	require.EqualValues(t, 10, body["total_count"])
}

func TestPostReadings_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing id", `{"readings":[{"timestamp":"2021-09-29T16:08:15+01:00","count":2}]}`, "id is required"},
		{"missing readings", `{"id":"36d5658a"}`, "readings array is required"},
		{"invalid timestamp", readingsBody("d", `{"timestamp":"not-a-valid-timestamp","count":10}`), "invalid timestamp: not-a-valid-timestamp"},
		{"missing timestamp", readingsBody("d", `{"count":10}`), "timestamp is required for each reading"},
		{"empty timestamp", readingsBody("d", `{"timestamp":"","count":10}`), "timestamp is required for each reading"},
		{"string count", readingsBody("d", `{"timestamp":"2021-09-29T16:08:15+01:00","count":"not-a-number"}`), "invalid count: not-a-number (must be an integer)"},
		{"float count", readingsBody("d", `{"timestamp":"2021-09-29T16:08:15+01:00","count":10.5}`), "invalid count: 10.5 (must be an integer)"},
		{"missing count", readingsBody("d", `{"timestamp":"2021-09-29T16:08:15+01:00"}`), "count is required for each reading"},
		{"malformed json", `{"id": "test", "readings": [invalid json}`, "Malformed JSON payload"},
		{"empty body", ``, "Malformed JSON payload"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			res, body := postJSON(t, ts, "/readings", tc.body)
			require.Equal(t, http.StatusBadRequest, res.StatusCode)
			require.Equal(t, tc.want, body["error"])
		})
	}
}

func TestPostReadings_InvalidBatchIsNotIngested(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDeviceStore(ctrl)
	// no Ingest expectation: a failing batch must never reach the store
	srv := NewServer(zap.NewNop(), ":0", store, 1<<20, Mounts{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/readings", strings.NewReader(readingsBody("d1",
		reading("2021-09-29T16:08:15+01:00", 1),
		`{"timestamp":"2021-09-29T16:09:15+01:00","count":-1}`,
	)))
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "must be non-negative")
}

func TestPostReadings_BodyTooLarge(t *testing.T) {
	st := service.NewStore(zap.NewNop(), 1, nil)
	srv := NewServer(zap.NewNop(), ":0", st, 64, Mounts{})

	rec := httptest.NewRecorder()
	big := readingsBody("d1", strings.Repeat(reading("2021-09-29T16:08:15+01:00", 1)+",", 10)+reading("2021-09-29T16:08:16+01:00", 1))
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/readings", strings.NewReader(big)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDeviceUID_IsPathDecoded(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDeviceStore(ctrl)
	store.EXPECT().TotalCount("dev/with slash").Return(int64(3), nil)
	srv := NewServer(zap.NewNop(), ":0", store, 0, Mounts{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/dev%2Fwith%20slash/total_count", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"total_count":3}`, rec.Body.String())
}

func TestConcurrentPosts_NoLostUpdates(t *testing.T) {
	ts := newTestServer(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := readingsBody("shared", reading(fmt.Sprintf("2021-09-29T16:%02d:00Z", i), i+1))
			res, err := http.Post(ts.URL+"/readings", "application/json", strings.NewReader(body))
			if err == nil {
				res.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	_, body := get(t, ts, "/devices/shared/total_count")
	require.EqualValues(t, 210, body["total_count"])
}
