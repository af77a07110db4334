package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	barcodeapp "github.com/barcodeprint/backend/internal/application/barcode"
	printingapp "github.com/barcodeprint/backend/internal/application/printing"
	"github.com/barcodeprint/backend/internal/infrastructure/persistence"
	"github.com/barcodeprint/backend/internal/infrastructure/persistence/models"
	infra "github.com/barcodeprint/backend/internal/infrastructure/printing"
	"github.com/barcodeprint/backend/internal/interfaces/http/middleware"
	"github.com/barcodeprint/backend/internal/interfaces/http/router"
	"github.com/barcodeprint/backend/tests/testutil"
)

// testAPI is the full barcode and print API over an in-memory database
type testAPI struct {
	engine   *gin.Engine
	renderer *testutil.FakePDFRenderer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.BarcodeModel{}, &models.PrintJobModel{}))

	storage, err := infra.NewFileSystemStorage(&infra.FileSystemStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	barcodes := persistence.NewGormBarcodeRepository(db)
	jobs := persistence.NewGormPrintJobRepository(db)
	renderer := testutil.NewFakePDFRenderer()

	barcodeService := barcodeapp.NewBarcodeService(barcodes, nil)
	labelService := printingapp.NewLabelService(
		barcodes, jobs, infra.NewCode128Rasterizer(), renderer, storage,
		printingapp.DefaultLabelServiceConfig(), nil,
	)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Register(BarcodeRoutes(NewBarcodeHandler(barcodeService))).
		Register(PrintRoutes(NewPrintHandler(labelService))).
		Setup()

	return &testAPI{engine: engine, renderer: renderer}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// generate creates n barcodes and returns them in generation order
func (a *testAPI) generate(t *testing.T, n int) []barcodeapp.BarcodeResponse {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/v1/barcodes/generate", map[string]int{"count": n})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[[]barcodeapp.BarcodeResponse](t, w).Data
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()

	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NotNil(t, resp.Error, w.Body.String())
	return resp
}
