package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	barcodeapp "github.com/barcodeprint/backend/internal/application/barcode"
)

var formattedCode = regexp.MustCompile(`^\d{4} \d{4} \d{4}$`)

func TestBarcodeHandler_Generate(t *testing.T) {
	api := newTestAPI(t)

	items := api.generate(t, 3)

	require.Len(t, items, 3)
	seen := map[string]bool{}
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("Title %d", i+1), item.Title)
		assert.Regexp(t, formattedCode, item.Code)
		assert.Len(t, item.Digits, 12)
		assert.False(t, seen[item.Code], "duplicate code %s", item.Code)
		seen[item.Code] = true
	}
}

func TestBarcodeHandler_Generate_InvalidCount(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body any
	}{
		{"zero", map[string]int{"count": 0}},
		{"above maximum", map[string]int{"count": 101}},
		{"negative", map[string]int{"count": -1}},
		{"missing", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/api/v1/barcodes/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "ERR_VALIDATION", decodeError(t, w).Error.Code)
		})
	}

	w := api.do(t, http.MethodGet, "/api/v1/barcodes/count", nil)
	assert.Equal(t, int64(0), decode[CountData](t, w).Data.Count)
}

func TestBarcodeHandler_Generate_MalformedJSON(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/barcodes/generate", "not an object")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_JSON", decodeError(t, w).Error.Code)
}

func TestBarcodeHandler_List(t *testing.T) {
	api := newTestAPI(t)
	api.generate(t, 5)

	t.Run("pages", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes?page=2&page_size=2", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[[]barcodeapp.BarcodeResponse](t, w)
		assert.Len(t, resp.Data, 2)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(5), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("orders by title", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes?order_by=title&order_dir=asc", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[[]barcodeapp.BarcodeResponse](t, w)
		require.Len(t, resp.Data, 5)
		assert.Equal(t, "Title 1", resp.Data[0].Title)
		assert.Equal(t, "Title 5", resp.Data[4].Title)
	})

	t.Run("searches titles", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes?search=Title%203", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[[]barcodeapp.BarcodeResponse](t, w)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Title 3", resp.Data[0].Title)
	})

	t.Run("rejects unknown sort field", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes?order_by=secret", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("counts", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/count", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(5), decode[CountData](t, w).Data.Count)
	})
}

func TestBarcodeHandler_Get(t *testing.T) {
	api := newTestAPI(t)
	created := api.generate(t, 1)[0]

	t.Run("found", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/"+created.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		got := decode[barcodeapp.BarcodeResponse](t, w).Data
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Code, got.Code)
	})

	t.Run("unknown", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ERR_NOT_FOUND", decodeError(t, w).Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Error.Message, "Invalid barcode ID format")
	})
}

func TestBarcodeHandler_Lookup(t *testing.T) {
	api := newTestAPI(t)
	created := api.generate(t, 1)[0]

	for _, code := range []string{created.Digits, url.QueryEscape(created.Code)} {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/lookup?code="+code, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, created.ID, decode[barcodeapp.BarcodeResponse](t, w).Data.ID)
	}

	t.Run("malformed code", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/lookup?code=12ab", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_VALIDATION", decodeError(t, w).Error.Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		missing := "000000000000"
		if created.Digits == missing {
			missing = "000000000001"
		}
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/lookup?code="+missing, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBarcodeHandler_Image(t *testing.T) {
	api := newTestAPI(t)
	created := api.generate(t, 1)[0]
	path := "/api/v1/barcodes/" + created.ID.String() + "/image"

	for _, mode := range []string{"", "display", "EXPORT", "print"} {
		t.Run("mode "+mode, func(t *testing.T) {
			w := api.do(t, http.MethodGet, path+"?mode="+mode, nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
		})
	}

	t.Run("unknown mode", func(t *testing.T) {
		w := api.do(t, http.MethodGet, path+"?mode=poster", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown barcode", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/barcodes/"+uuid.NewString()+"/image", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBarcodeHandler_Rename(t *testing.T) {
	api := newTestAPI(t)
	created := api.generate(t, 1)[0]
	path := "/api/v1/barcodes/" + created.ID.String() + "/title"

	t.Run("trims and stores", func(t *testing.T) {
		w := api.do(t, http.MethodPatch, path, map[string]string{"title": "  Shelf A  "})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[barcodeapp.BarcodeResponse](t, w).Data
		assert.Equal(t, "Shelf A", got.Title)
		assert.Equal(t, created.Code, got.Code)

		w = api.do(t, http.MethodGet, "/api/v1/barcodes/"+created.ID.String(), nil)
		assert.Equal(t, "Shelf A", decode[barcodeapp.BarcodeResponse](t, w).Data.Title)
	})

	t.Run("blank title", func(t *testing.T) {
		w := api.do(t, http.MethodPatch, path, map[string]string{"title": "   "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_TITLE", decodeError(t, w).Error.Code)
	})

	t.Run("unknown barcode", func(t *testing.T) {
		w := api.do(t, http.MethodPatch, "/api/v1/barcodes/"+uuid.NewString()+"/title", map[string]string{"title": "x"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBarcodeHandler_Delete(t *testing.T) {
	api := newTestAPI(t)
	created := api.generate(t, 2)
	path := "/api/v1/barcodes/" + created[0].ID.String()

	w := api.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/barcodes/count", nil)
	assert.Equal(t, int64(1), decode[CountData](t, w).Data.Count)
}

func TestBarcodeHandler_BatchDelete(t *testing.T) {
	api := newTestAPI(t)
	created := api.generate(t, 3)

	w := api.do(t, http.MethodPost, "/api/v1/barcodes/batch-delete", map[string]any{
		"ids": []uuid.UUID{created[0].ID, created[2].ID, uuid.New()},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[barcodeapp.BatchDeleteResponse](t, w).Data
	assert.Equal(t, 3, got.Requested)
	assert.Equal(t, int64(2), got.Deleted)

	w = api.do(t, http.MethodGet, "/api/v1/barcodes", nil)
	remaining := decode[[]barcodeapp.BarcodeResponse](t, w).Data
	require.Len(t, remaining, 1)
	assert.Equal(t, created[1].ID, remaining[0].ID)

	t.Run("empty selection", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/barcodes/batch-delete", map[string]any{"ids": []uuid.UUID{}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
