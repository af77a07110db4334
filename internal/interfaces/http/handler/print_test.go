package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	printingapp "github.com/barcodeprint/backend/internal/application/printing"
	infra "github.com/barcodeprint/backend/internal/infrastructure/printing"
)

func idsOf(t *testing.T, api *testAPI, n int) []uuid.UUID {
	t.Helper()

	items := api.generate(t, n)
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestPrintHandler_ReferenceData(t *testing.T) {
	api := newTestAPI(t)

	t.Run("paper sizes", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/paper-sizes", nil)

		require.Equal(t, http.StatusOK, w.Code)
		sizes := decode[[]printingapp.PaperSizeResponse](t, w).Data
		require.Len(t, sizes, 3)

		byCode := map[string]printingapp.PaperSizeResponse{}
		for _, s := range sizes {
			byCode[s.Code] = s
		}
		assert.Equal(t, "GRID", byCode["A4"].DefaultLayout)
		assert.Greater(t, byCode["A4"].ItemsPerPage, 1)
		assert.Equal(t, "SINGLE", byCode["LABEL_40X20"].DefaultLayout)
		assert.True(t, byCode["LABEL_20X10"].IsLabel)
	})

	t.Run("settings defaults", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/settings/defaults", nil)

		require.Equal(t, http.StatusOK, w.Code)
		defaults := decode[printingapp.SettingsDefaultsResponse](t, w).Data
		assert.False(t, defaults.Export.PrintMode)
		assert.Contains(t, defaults.Print, "20mm")
		assert.Contains(t, defaults.Print, "40mm")
		assert.True(t, defaults.Print["40mm"].PrintMode)
	})
}

func TestPrintHandler_ExportAndDownload(t *testing.T) {
	api := newTestAPI(t)
	ids := idsOf(t, api, 3)

	w := api.do(t, http.MethodPost, "/api/v1/print/export", map[string]any{"barcode_ids": ids})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode[printingapp.JobResponse](t, w).Data
	assert.Equal(t, "EXPORT", job.Kind)
	assert.Equal(t, "A4", job.PaperSize)
	assert.Equal(t, "GRID", job.LayoutMode)
	assert.Equal(t, "COMPLETED", job.Status)
	assert.Equal(t, 3, job.ItemCount)
	assert.Equal(t, printingapp.ExportFileName, job.FileName)
	assert.Equal(t, ids, job.BarcodeIDs)
	assert.Len(t, api.renderer.Requests(), 1)

	t.Run("get job", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs/"+job.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, job.ID, decode[printingapp.JobResponse](t, w).Data.ID)
	})

	t.Run("download as attachment", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs/"+job.ID.String()+"/download", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename=barcodes.pdf`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.4 test", w.Body.String())
	})

	t.Run("download inline", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs/"+job.ID.String()+"/download?inline=true", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `inline; filename=barcodes.pdf`, w.Header().Get("Content-Disposition"))
	})
}

func TestPrintHandler_PrintLabels(t *testing.T) {
	api := newTestAPI(t)
	ids := idsOf(t, api, 2)

	w := api.do(t, http.MethodPost, "/api/v1/print/labels", map[string]any{
		"barcode_ids": ids,
		"paper_size":  "40mm",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode[printingapp.JobResponse](t, w).Data
	assert.Equal(t, "PRINT", job.Kind)
	assert.Equal(t, "LABEL_40X20", job.PaperSize)
	assert.Equal(t, "SINGLE", job.LayoutMode)
	assert.Equal(t, 2, job.PageCount)
	assert.Equal(t, printingapp.PrintFileName, job.FileName)
	assert.Empty(t, api.renderer.Requests(), "label printing does not go through the PDF renderer")

	w = api.do(t, http.MethodGet, "/api/v1/print/jobs/"+job.ID.String()+"/download", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, `inline; filename=labels.html`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, labelDocumentCSP, w.Header().Get("Content-Security-Policy"))
	assert.Contains(t, w.Body.String(), "window.print()")
	assert.Contains(t, w.Body.String(), "data:image/png;base64,")
}

func TestPrintHandler_Validation(t *testing.T) {
	api := newTestAPI(t)
	ids := idsOf(t, api, 1)

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "export without selection",
			path:   "/api/v1/print/export",
			body:   map[string]any{"barcode_ids": []uuid.UUID{}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
		},
		{
			name:   "export with unknown paper",
			path:   "/api/v1/print/export",
			body:   map[string]any{"barcode_ids": ids, "paper_size": "LETTER"},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
		},
		{
			name:   "export of unknown barcode",
			path:   "/api/v1/print/export",
			body:   map[string]any{"barcode_ids": []uuid.UUID{uuid.New()}},
			status: http.StatusNotFound,
			code:   "ERR_NOT_FOUND",
		},
		{
			name:   "export with out of range settings",
			path:   "/api/v1/print/export",
			body:   map[string]any{"barcode_ids": ids, "settings": map[string]int{"dpi": 1}},
			status: http.StatusBadRequest,
			code:   "ERR_INVALID_SETTINGS",
		},
		{
			name:   "print without label size",
			path:   "/api/v1/print/labels",
			body:   map[string]any{"barcode_ids": ids},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
		},
		{
			name:   "print on A4",
			path:   "/api/v1/print/labels",
			body:   map[string]any{"barcode_ids": ids, "paper_size": "A4"},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}

	w := api.do(t, http.MethodGet, "/api/v1/print/jobs", nil)
	assert.Equal(t, int64(0), decode[[]printingapp.JobResponse](t, w).Meta.Total, "rejected requests create no job")
}

func TestPrintHandler_RenderFailure(t *testing.T) {
	api := newTestAPI(t)
	ids := idsOf(t, api, 1)
	api.renderer.SetError(infra.NewRenderError(infra.ErrCodeRenderFailed, "chrome crashed", errors.New("target closed")))

	w := api.do(t, http.MethodPost, "/api/v1/print/export", map[string]any{"barcode_ids": ids})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "ERR_RENDER_FAILED", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "target closed")

	w = api.do(t, http.MethodGet, "/api/v1/print/jobs?status=FAILED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	failed := decode[[]printingapp.JobResponse](t, w).Data
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ErrorMessage, "RENDER_FAILED")

	t.Run("failed job has no output", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs/"+failed[0].ID.String()+"/download", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ERR_INVALID_STATE", decodeError(t, w).Error.Code)
	})
}

func TestPrintHandler_ListJobs(t *testing.T) {
	api := newTestAPI(t)
	ids := idsOf(t, api, 2)

	require.Equal(t, http.StatusCreated,
		api.do(t, http.MethodPost, "/api/v1/print/export", map[string]any{"barcode_ids": ids}).Code)
	require.Equal(t, http.StatusCreated,
		api.do(t, http.MethodPost, "/api/v1/print/labels", map[string]any{"barcode_ids": ids, "paper_size": "20mm"}).Code)

	t.Run("all", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[[]printingapp.JobResponse](t, w)
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, int64(2), resp.Meta.Total)
	})

	t.Run("by kind", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs?kind=PRINT", nil)

		require.Equal(t, http.StatusOK, w.Code)
		jobs := decode[[]printingapp.JobResponse](t, w).Data
		require.Len(t, jobs, 1)
		assert.Equal(t, "LABEL_20X10", jobs[0].PaperSize)
	})

	t.Run("bad filter", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs?kind=FAX", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed job id", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/print/jobs/xyz/download", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Error.Message, "Invalid job ID format")
	})
}
