package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cleanviz/internal/analysis"
	"cleanviz/internal/charts"
	"cleanviz/internal/dataset"
	apierrors "cleanviz/internal/errors"
	cvmiddleware "cleanviz/internal/middleware"
	"cleanviz/internal/services"
	"cleanviz/internal/session"
	"cleanviz/pkg/contracts/domain"
)

const testSessionID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

// MockWorkspaceService is a mock implementation of WorkspaceServiceInterface
type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) Upload(ctx context.Context, fileName string, content []byte, hint dataset.Delimiter) (*domain.View, error) {
	args := m.Called(fileName, content, hint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.View), args.Error(1)
}

func (m *MockWorkspaceService) View(ctx context.Context, id string, opts services.ViewOptions) (*domain.View, error) {
	args := m.Called(id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.View), args.Error(1)
}

func (m *MockWorkspaceService) Clean(ctx context.Context, id string, opts dataset.CleanOptions) (*domain.View, error) {
	args := m.Called(id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.View), args.Error(1)
}

func (m *MockWorkspaceService) Summary(ctx context.Context, id string) ([]domain.ColumnStats, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ColumnStats), args.Error(1)
}

func (m *MockWorkspaceService) RenderPlot(ctx context.Context, id string, req services.PlotRequest) (*services.Chart, error) {
	args := m.Called(id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Chart), args.Error(1)
}

func (m *MockWorkspaceService) PlotBundle(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockWorkspaceService) Report(ctx context.Context, id string) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspaceService) ExportCSV(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockWorkspaceService) ExportXLSX(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockWorkspaceService) Delete(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func newSessionsRouter(svc WorkspaceServiceInterface) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewSessionsHandler(svc, cvmiddleware.NewValidator(), logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api/sessions", handler.Routes())
	return r
}

func uploadRequest(t *testing.T, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSessionsHandler_Upload(t *testing.T) {
	const csv = "a,b\n1,2\n"

	tests := []struct {
		name           string
		fileName       string
		fields         map[string]string
		setupMock      func(*MockWorkspaceService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:     "successful upload",
			fileName: "data.csv",
			setupMock: func(m *MockWorkspaceService) {
				m.On("Upload", "data.csv", []byte(csv), dataset.DelimiterAuto).
					Return(&domain.View{SessionID: testSessionID, FileName: "data.csv", Rows: 1}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:     "explicit tab delimiter",
			fileName: "data.tsv",
			fields:   map[string]string{"delimiter": "tab"},
			setupMock: func(m *MockWorkspaceService) {
				m.On("Upload", "data.tsv", []byte(csv), dataset.DelimiterTab).
					Return(&domain.View{SessionID: testSessionID}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing file",
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name:           "unknown delimiter",
			fileName:       "data.csv",
			fields:         map[string]string{"delimiter": "semicolon"},
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name:     "parse failure",
			fileName: "data.csv",
			setupMock: func(m *MockWorkspaceService) {
				m.On("Upload", "data.csv", []byte(csv), dataset.DelimiterAuto).
					Return(nil, fmt.Errorf("failed to load: %w: line 3 has too many fields", dataset.ErrParse))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeParseFailed,
		},
		{
			name:     "too many sessions",
			fileName: "data.csv",
			setupMock: func(m *MockWorkspaceService) {
				m.On("Upload", "data.csv", []byte(csv), dataset.DelimiterAuto).Return(nil, session.ErrStoreFull)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   apierrors.CodeServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWorkspaceService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			newSessionsRouter(mockService).ServeHTTP(w, uploadRequest(t, tt.fileName, csv, tt.fields))

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["error_code"])
			} else {
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, "/api/sessions/"+testSessionID, w.Header().Get("Location"))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSessionsHandler_GetView(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockWorkspaceService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "plain view",
			path: "/api/sessions/" + testSessionID,
			setupMock: func(m *MockWorkspaceService) {
				m.On("View", testSessionID, services.ViewOptions{}).Return(&domain.View{SessionID: testSessionID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "stats and plot",
			path: "/api/sessions/" + testSessionID + "?stats=true&plot=scatter&x=a&y=b",
			setupMock: func(m *MockWorkspaceService) {
				m.On("View", testSessionID, services.ViewOptions{
					ShowStats: true,
					Plot:      &services.PlotRequest{Kind: charts.KindScatter, X: "a", Y: "b"},
				}).Return(&domain.View{SessionID: testSessionID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown plot kind",
			path:           "/api/sessions/" + testSessionID + "?plot=pie",
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name:           "invalid stats flag",
			path:           "/api/sessions/" + testSessionID + "?stats=maybe",
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name:           "malformed session id",
			path:           "/api/sessions/not-a-session",
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.CodeSessionNotFound,
		},
		{
			name: "expired session",
			path: "/api/sessions/" + testSessionID,
			setupMock: func(m *MockWorkspaceService) {
				m.On("View", testSessionID, services.ViewOptions{}).Return(nil, session.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.CodeSessionNotFound,
		},
		{
			name: "column not numeric",
			path: "/api/sessions/" + testSessionID + "?plot=histogram&x=name",
			setupMock: func(m *MockWorkspaceService) {
				m.On("View", testSessionID, services.ViewOptions{
					Plot: &services.PlotRequest{Kind: charts.KindHistogram, X: "name"},
				}).Return(nil, fmt.Errorf("%w: %q has kind text", services.ErrColumnNotNumeric, "name"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWorkspaceService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			newSessionsRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["error_code"])
			} else {
				assert.Equal(t, "success", body["status"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSessionsHandler_Clean(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockWorkspaceService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "apply cleaning",
			body: `{"drop_empty_rows":true,"renames":{"a":"alpha"}}`,
			setupMock: func(m *MockWorkspaceService) {
				m.On("Clean", testSessionID, dataset.CleanOptions{
					DropEmptyRows: true,
					Renames:       map[string]string{"a": "alpha"},
				}).Return(&domain.View{SessionID: testSessionID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "duplicate rename target",
			body: `{"renames":{"a":"b"}}`,
			setupMock: func(m *MockWorkspaceService) {
				m.On("Clean", testSessionID, mock.Anything).
					Return(nil, fmt.Errorf("failed to clean: %w: %q", dataset.ErrDuplicateColumn, "b"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   apierrors.CodeDuplicateColumn,
		},
		{
			name: "unknown rename source",
			body: `{"renames":{"zzz":"b"}}`,
			setupMock: func(m *MockWorkspaceService) {
				m.On("Clean", testSessionID, mock.Anything).
					Return(nil, fmt.Errorf("failed to clean: %w: %q", dataset.ErrUnknownColumn, "zzz"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name:           "malformed json",
			body:           `{"drop_empty_rows":`,
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeInvalidRequest,
		},
		{
			name:           "empty rename source",
			body:           `{"renames":{"":"b"}}`,
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWorkspaceService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+testSessionID+"/cleaning", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			newSessionsRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["error_code"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSessionsHandler_Delete(t *testing.T) {
	mockService := new(MockWorkspaceService)
	mockService.On("Delete", testSessionID).Return(nil).Once()
	mockService.On("Delete", testSessionID).Return(session.ErrNotFound).Once()
	router := newSessionsRouter(mockService)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+testSessionID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+testSessionID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.AssertExpectations(t)
}

func TestSessionsHandler_Summary(t *testing.T) {
	mean := 1.5
	mockService := new(MockWorkspaceService)
	mockService.On("Summary", testSessionID).Return([]domain.ColumnStats{{Column: "a", Count: 2, Mean: &mean}}, nil)

	w := httptest.NewRecorder()
	newSessionsRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+testSessionID+"/summary", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "a", first["column"])
	assert.Equal(t, 1.5, first["mean"])
	assert.Nil(t, first["std"])
}

func TestSessionsHandler_Plot(t *testing.T) {
	png := []byte("\x89PNG fake")

	tests := []struct {
		name                string
		path                string
		setupMock           func(*MockWorkspaceService)
		expectedStatus      int
		expectedCode        string
		expectedDisposition string
	}{
		{
			name: "inline histogram",
			path: "/plots/histogram?x=a",
			setupMock: func(m *MockWorkspaceService) {
				m.On("RenderPlot", testSessionID, services.PlotRequest{Kind: charts.KindHistogram, X: "a"}).
					Return(&services.Chart{Kind: charts.KindHistogram, FileName: "histogram.png", X: "a", PNG: png}, nil)
			},
			expectedStatus:      http.StatusOK,
			expectedDisposition: `inline; filename=histogram.png`,
		},
		{
			name: "download scatter",
			path: "/plots/scatter?download=true",
			setupMock: func(m *MockWorkspaceService) {
				m.On("RenderPlot", testSessionID, services.PlotRequest{Kind: charts.KindScatter}).
					Return(&services.Chart{Kind: charts.KindScatter, FileName: "scatter_plot.png", PNG: png}, nil)
			},
			expectedStatus:      http.StatusOK,
			expectedDisposition: `attachment; filename=scatter_plot.png`,
		},
		{
			name:           "unknown kind",
			path:           "/plots/pie",
			setupMock:      func(m *MockWorkspaceService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name: "pca with too little data",
			path: "/plots/pca",
			setupMock: func(m *MockWorkspaceService) {
				m.On("RenderPlot", testSessionID, services.PlotRequest{Kind: charts.KindPCA}).
					Return(nil, fmt.Errorf("%w: 1 numeric column", analysis.ErrInsufficientData))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.CodeInsufficientData,
		},
		{
			name: "volcano without columns",
			path: "/plots/volcano",
			setupMock: func(m *MockWorkspaceService) {
				m.On("RenderPlot", testSessionID, services.PlotRequest{Kind: charts.KindVolcano}).
					Return(nil, analysis.ErrMissingVolcanoColumns)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.CodeMissingVolcanoColumns,
		},
		{
			name: "all values missing",
			path: "/plots/box",
			setupMock: func(m *MockWorkspaceService) {
				m.On("RenderPlot", testSessionID, services.PlotRequest{Kind: charts.KindBox}).
					Return(nil, fmt.Errorf("%w: column %q has no values", analysis.ErrNoValues, "a"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.CodeNoPlottableData,
		},
		{
			name: "render failure",
			path: "/plots/heatmap",
			setupMock: func(m *MockWorkspaceService) {
				m.On("RenderPlot", testSessionID, services.PlotRequest{Kind: charts.KindHeatmap}).
					Return(nil, fmt.Errorf("failed to render heatmap: boom"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWorkspaceService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			newSessionsRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+testSessionID+tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
				assert.Equal(t, tt.expectedDisposition, w.Header().Get("Content-Disposition"))
				assert.Equal(t, png, w.Body.Bytes())
			} else if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeBody(t, w)["error_code"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSessionsHandler_Downloads(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		setupMock   func(*MockWorkspaceService)
		contentType string
		fileName    string
		body        string
	}{
		{
			name: "plot bundle",
			path: "/plots.zip",
			setupMock: func(m *MockWorkspaceService) {
				m.On("PlotBundle", testSessionID).Return([]byte("PK zip"), nil)
			},
			contentType: contentTypeZip,
			fileName:    "plots.zip",
			body:        "PK zip",
		},
		{
			name: "report",
			path: "/report",
			setupMock: func(m *MockWorkspaceService) {
				m.On("Report", testSessionID).Return("# Data Summary Report\n", nil)
			},
			contentType: contentTypeMarkdown,
			fileName:    "summary_report.md",
			body:        "# Data Summary Report\n",
		},
		{
			name: "csv export",
			path: "/export.csv",
			setupMock: func(m *MockWorkspaceService) {
				m.On("ExportCSV", testSessionID).Return([]byte("a,b\n1,2\n"), nil)
			},
			contentType: contentTypeCSV,
			fileName:    "cleaned_data.csv",
			body:        "a,b\n1,2\n",
		},
		{
			name: "xlsx export",
			path: "/export.xlsx",
			setupMock: func(m *MockWorkspaceService) {
				m.On("ExportXLSX", testSessionID).Return([]byte("PK xlsx"), nil)
			},
			contentType: contentTypeXLSX,
			fileName:    "cleaned_data.xlsx",
			body:        "PK xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockWorkspaceService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			newSessionsRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+testSessionID+tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename="+tt.fileName, w.Header().Get("Content-Disposition"))
			assert.Equal(t, tt.body, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}

func TestSessionsHandler_DownloadSessionNotFound(t *testing.T) {
	mockService := new(MockWorkspaceService)
	mockService.On("ExportCSV", testSessionID).Return(nil, session.ErrNotFound)

	w := httptest.NewRecorder()
	newSessionsRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+testSessionID+"/export.csv", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", strings.Split(w.Header().Get("Content-Type"), ";")[0])
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"session missing", session.ErrNotFound, http.StatusNotFound, apierrors.CodeSessionNotFound},
		{"store full", session.ErrStoreFull, http.StatusServiceUnavailable, apierrors.CodeServiceUnavailable},
		{"parse", fmt.Errorf("%w: %w", dataset.ErrParse, dataset.ErrNoColumns), http.StatusBadRequest, apierrors.CodeParseFailed},
		{"duplicate", dataset.ErrDuplicateColumn, http.StatusConflict, apierrors.CodeDuplicateColumn},
		{"unknown kind", charts.ErrUnknownKind, http.StatusBadRequest, apierrors.CodeValidationFailed},
		{"no numeric columns", analysis.ErrNoNumericColumns, http.StatusUnprocessableEntity, apierrors.CodeNoPlottableData},
		{"no points", charts.ErrNoPoints, http.StatusUnprocessableEntity, apierrors.CodeNoPlottableData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *apierrors.APIError
			require.ErrorAs(t, mapServiceError(tt.err), &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}

	assert.Nil(t, mapServiceError(nil))
	plain := fmt.Errorf("disk on fire")
	assert.Equal(t, plain, mapServiceError(plain))
}
