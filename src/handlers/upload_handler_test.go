package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aliranalvi/bond-wise-insight/src/config"
	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/parsers"
	"github.com/aliranalvi/bond-wise-insight/src/processors"
	"github.com/aliranalvi/bond-wise-insight/src/services"
)

func TestMain(m *testing.M) {
	config.LoadConfig()
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc := services.NewUploadService(
		parsers.NewXLSXReader(),
		processors.NewPivotProcessor(),
		processors.NewReconciliationProcessor(),
		processors.NewInterestProcessor(),
		cache.New(cache.NoExpiration, 0),
		cache.New(cache.NoExpiration, 0),
	)
	uploadHandler := NewUploadHandler(svc)
	portfolioHandler := NewPortfolioHandler(svc)
	bondHandler := NewBondHandler(svc)
	recordsHandler := NewRecordsHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", uploadHandler.HandleUpload)
	mux.HandleFunc("GET /api/portfolio/pivot", portfolioHandler.HandleGetPivot)
	mux.HandleFunc("GET /api/bonds", bondHandler.HandleGetBonds)
	mux.HandleFunc("GET /api/records", recordsHandler.HandleGetRecords)
	mux.HandleFunc("DELETE /api/session", recordsHandler.HandleClearSession)
	return mux
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Investment Summary"))
	rows := [][]interface{}{
		{"Bond Name", "ISIN", "Invested Amount", "Date of Investment", "Maturity Date", "XIRR"},
		{"Handler Bond-1", "INE000A01001", 100000.0, "15/01/2024", "15/01/2090", 11.5},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Investment Summary", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadRequest(t *testing.T, body []byte, contentType string) *http.Request {
	t.Helper()
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="portfolio.xlsx"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadThenPivotFlow(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, workbookBytes(t), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result services.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.SessionID)
	require.Equal(t, 1, result.InvestmentCount)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/pivot?durationView=months", nil)
	req.Header.Set(SessionHeader, result.SessionID)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	// Conditional re-fetch with the ETag short-circuits.
	req = httptest.NewRequest(http.MethodGet, "/api/portfolio/pivot?durationView=months", nil)
	req.Header.Set(SessionHeader, result.SessionID)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

func TestUploadRejectsNonSpreadsheet(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, []byte("plain text, not a workbook"), "application/vnd.ms-excel"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsBadContentType(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, workbookBytes(t), "text/html"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPivotRejectsUnknownViewParam(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/pivot?durationView=weeks", nil)
	req.Header.Set(SessionHeader, "some-session")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPivotUnknownSession(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/pivot", nil)
	req.Header.Set(SessionHeader, "never-uploaded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearSessionFlow(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, workbookBytes(t), "application/octet-stream"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result services.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	req := httptest.NewRequest(http.MethodDelete, "/api/session", nil)
	req.Header.Set(SessionHeader, result.SessionID)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/records", nil)
	req.Header.Set(SessionHeader, result.SessionID)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
