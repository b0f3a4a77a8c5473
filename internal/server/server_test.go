package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tripletuploader/internal/uploader"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, downstreamStatus int) (*Server, *httptest.Server) {
	t.Helper()
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(downstreamStatus)
	}))
	t.Cleanup(downstream.Close)

	client := uploader.NewClient(downstream.URL, 5*time.Second, false)
	return New(zap.NewNop(), uploader.NewSubmitter(client)), downstream
}

func uploadCSV(t *testing.T, srv *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/dataset", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

const testCSV = "Triplet Id,Asset Id,Asset Type\n1,101,SYSTEM\n2,102,BOGUS_TYPE\n"

func TestUploadDataset(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)

	w := uploadCSV(t, srv, "assets.csv", testCSV)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp datasetResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, []string{"Triplet Id", "Asset Id", "Asset Type"}, resp.Headers)
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, "Not Started", resp.Rows[0].Status)
}

func TestUploadDatasetRejectsNonCSVFilename(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)

	w := uploadCSV(t, srv, "assets.xlsx", testCSV)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "please input a csv file")
}

func TestUploadDatasetMissingHeadersClearsDataset(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)

	// First a good upload, then a bad one: the bad import clears the state.
	assert.Equal(t, http.StatusCreated, uploadCSV(t, srv, "good.csv", testCSV).Code)

	w := uploadCSV(t, srv, "bad.csv", "Foo,Bar\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing required headers")

	req := httptest.NewRequest(http.MethodGet, "/dataset", nil)
	w2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNotFound, w2.Code)
}

func TestUploadDatasetEmptyFile(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)

	w := uploadCSV(t, srv, "empty.csv", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "empty file")
}

func TestEditCell(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	uploadCSV(t, srv, "assets.csv", testCSV)

	body := `{"column":"Asset Id","value":"999"}`
	req := httptest.NewRequest(http.MethodPut, "/dataset/rows/0", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/dataset", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp datasetResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "999", resp.Rows[0].Fields["Asset Id"])
	assert.Equal(t, "102", resp.Rows[1].Fields["Asset Id"])
}

func TestEditCellErrors(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	uploadCSV(t, srv, "assets.csv", testCSV)

	t.Run("unknown column", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/dataset/rows/0", strings.NewReader(`{"column":"Nope","value":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("row out of range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/dataset/rows/99", strings.NewReader(`{"column":"Asset Id","value":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("stale dataset id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/dataset/rows/0", strings.NewReader(`{"dataset_id":"stale","column":"Asset Id","value":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSubmitDatasetEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	uploadCSV(t, srv, "assets.csv", testCSV)

	req := httptest.NewRequest(http.MethodPost, "/dataset/submit", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp submitResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalRows)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.DataIncorrect)
	assert.Equal(t, "Success", resp.Rows[0].Status)
	assert.Equal(t, "Data Incorrect", resp.Rows[1].Status)
}

func TestEditDuringSubmitIsSerialized(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(downstream.Close)

	client := uploader.NewClient(downstream.URL, 5*time.Second, false)
	srv := New(zap.NewNop(), uploader.NewSubmitter(client))

	uploadCSV(t, srv, "assets.csv", "Triplet Id,Asset Id,Asset Type\n1,101,SYSTEM\n2,102,SYSTEM\n3,103,SYSTEM\n")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/dataset/submit", nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}()

	// Edits fired while rows are in flight must queue behind the
	// submission instead of touching the records it is mutating.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPut, "/dataset/rows/0", strings.NewReader(`{"column":"Asset Id","value":"999"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	wg.Wait()

	req := httptest.NewRequest(http.MethodGet, "/dataset", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp datasetResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "999", resp.Rows[0].Fields["Asset Id"])
	assert.Equal(t, "Success", resp.Rows[0].Status)
}

func TestSubmitDatasetDownstreamFailure(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError)
	uploadCSV(t, srv, "assets.csv", "Triplet Id,Asset Id,Asset Type\n1,101,SYSTEM\n")

	req := httptest.NewRequest(http.MethodPost, "/dataset/submit", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp submitResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "Failed", resp.Rows[0].Status)
}

func TestExportDataset(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	uploadCSV(t, srv, "assets.csv", testCSV)

	req := httptest.NewRequest(http.MethodGet, "/dataset/export", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "result.csv")
	assert.Contains(t, w.Body.String(), "Triplet Id,Asset Id,Asset Type,Status")
	assert.Contains(t, w.Body.String(), "Not Started")
}

func TestExportWithoutDataset(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/dataset/export", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
