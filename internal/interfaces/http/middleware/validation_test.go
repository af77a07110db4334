package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barcodeprint/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type lookup struct {
		Code string `form:"code" binding:"barcode_code"`
	}
	assert.NoError(t, v.Struct(lookup{Code: "123456789012"}))
	assert.NoError(t, v.Struct(lookup{Code: "1234 5678 9012"}))
	assert.Error(t, v.Struct(lookup{Code: "1234"}))
	assert.Error(t, v.Struct(lookup{Code: "12345678901x"}))
}

func TestFormatValidationErrors(t *testing.T) {
	type generateInput struct {
		Count int    `json:"count" binding:"required,min=1,max=100"`
		Paper string `json:"paper_size" binding:"omitempty,oneof=A4 LABEL_40X20 LABEL_20X10"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req generateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("lists each invalid field by its json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"count": 500, "paper_size": "A3"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		assert.ElementsMatch(t, []dto.ValidationDetail{
			{Field: "count", Message: "Must be at most 100"},
			{Field: "paper_size", Message: "Must be one of: A4 LABEL_40X20 LABEL_20X10"},
		}, resp.Error.Details)
	})

	t.Run("accepts valid input", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"count": 5}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Required string   `validate:"required"`
		Title    string   `validate:"max=3"`
		IDs      []string `validate:"min=1"`
		Count    int      `validate:"min=1"`
		Mode     string   `validate:"oneof=GRID SINGLE"`
		ID       string   `validate:"uuid"`
		DPI      int      `validate:"lte=600"`
		Code     string   `validate:"barcode_code"`
	}

	v := validator.New()
	registerBarcodeValidations(v)

	err := v.Struct(input{
		Title: "Shelf A",
		IDs:   []string{},
		Mode:  "POSTER",
		ID:    "nope",
		DPI:   1200,
		Code:  "12",
	})
	require.Error(t, err)

	got := make(map[string]string)
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, map[string]string{
		"Required": "This field is required",
		"Title":    "Must be at most 3 characters",
		"IDs":      "Must contain at least 1 items",
		"Count":    "Must be at least 1",
		"Mode":     "Must be one of: GRID SINGLE",
		"ID":       "Invalid UUID format",
		"DPI":      "Must be less than or equal to 600",
		"Code":     "Must be a 12-digit barcode code",
	}, got)
}
