package handler

import (
	"net/http"
	"strconv"

	barcodeapp "github.com/barcodeprint/backend/internal/application/barcode"
	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/gin-gonic/gin"
)

// BarcodeHandler handles barcode record endpoints
type BarcodeHandler struct {
	BaseHandler
	barcodeService *barcodeapp.BarcodeService
}

// NewBarcodeHandler creates a new BarcodeHandler
func NewBarcodeHandler(barcodeService *barcodeapp.BarcodeService) *BarcodeHandler {
	return &BarcodeHandler{
		barcodeService: barcodeService,
	}
}

// Generate godoc
//
//	@ID				generateBarcodes
//
//	@Summary		Generate barcodes
//	@Description	Create count new random 12-digit codes titled "Title 1".."Title N".
//	@Description	Send an Idempotency-Key header to make retries safe.
//	@Tags			barcodes
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Client supplied retry key"
//	@Param			request			body		barcodeapp.GenerateRequest		true	"Generation request"
//	@Success		201				{object}	APIResponse[[]barcodeapp.BarcodeResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Router			/barcodes/generate [post]
func (h *BarcodeHandler) Generate(c *gin.Context) {
	var req barcodeapp.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.barcodeService.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List godoc
//
//	@ID				listBarcodes
//
//	@Summary		List barcodes
//	@Description	Page through barcodes, newest first unless ordered otherwise.
//	@Description	search matches title or code.
//	@Tags			barcodes
//	@Produce		json
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			page_size	query		int		false	"Page size"			default(10)
//	@Param			order_by	query		string	false	"Order by field"	Enums(title, code, created_at)
//	@Param			order_dir	query		string	false	"Order direction"	Enums(asc, desc)
//	@Param			search		query		string	false	"Search term"
//	@Success		200			{object}	APIResponse[[]barcodeapp.BarcodeResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/barcodes [get]
func (h *BarcodeHandler) List(c *gin.Context) {
	var req barcodeapp.ListBarcodesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.barcodeService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
//
//	@ID				getBarcode
//
//	@Summary		Get barcode by ID
//	@Tags			barcodes
//	@Produce		json
//	@Param			id	path		string	true	"Barcode ID"	format(uuid)
//	@Success		200	{object}	APIResponse[barcodeapp.BarcodeResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/barcodes/{id} [get]
func (h *BarcodeHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "barcode")
	if !ok {
		return
	}

	result, err := h.barcodeService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Lookup godoc
//
//	@ID				lookupBarcode
//
//	@Summary		Find barcode by code
//	@Description	Resolve a scanned code, raw or grouped, to its barcode record
//	@Tags			barcodes
//	@Produce		json
//	@Param			code	query		string	true	"12-digit code"	example(123456789012)
//	@Success		200		{object}	APIResponse[barcodeapp.BarcodeResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/barcodes/lookup [get]
func (h *BarcodeHandler) Lookup(c *gin.Context) {
	var req barcodeapp.LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.barcodeService.Lookup(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Image godoc
//
//	@ID				getBarcodeImage
//
//	@Summary		Render barcode image
//	@Description	Render the barcode as a PNG using the constants of the given mode
//	@Tags			barcodes
//	@Produce		png
//	@Param			id		path		string	true	"Barcode ID"	format(uuid)
//	@Param			mode	query		string	false	"Render mode"	Enums(DISPLAY, EXPORT, PRINT)	default(DISPLAY)
//	@Success		200		{file}		binary	"PNG image"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/barcodes/{id}/image [get]
func (h *BarcodeHandler) Image(c *gin.Context) {
	id, ok := h.parseID(c, "id", "barcode")
	if !ok {
		return
	}

	mode, err := barcode.ParseRenderMode(c.Query("mode"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	img, err := h.barcodeService.Preview(c.Request.Context(), id, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Header("Content-Length", strconv.Itoa(len(img.PNG)))
	c.Data(http.StatusOK, "image/png", img.PNG)
}

// Rename godoc
//
//	@ID				renameBarcode
//
//	@Summary		Rename barcode
//	@Description	Replace the title. Leading and trailing whitespace is trimmed; an empty title is rejected.
//	@Tags			barcodes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Barcode ID"	format(uuid)
//	@Param			request	body		barcodeapp.RenameRequest	true	"New title"
//	@Success		200		{object}	APIResponse[barcodeapp.BarcodeResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/barcodes/{id}/title [patch]
func (h *BarcodeHandler) Rename(c *gin.Context) {
	id, ok := h.parseID(c, "id", "barcode")
	if !ok {
		return
	}

	var req barcodeapp.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.barcodeService.Rename(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
//
//	@ID				deleteBarcode
//
//	@Summary		Delete barcode
//	@Tags			barcodes
//	@Param			id	path	string	true	"Barcode ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/barcodes/{id} [delete]
func (h *BarcodeHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "barcode")
	if !ok {
		return
	}

	if err := h.barcodeService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// BatchDelete godoc
//
//	@ID				batchDeleteBarcodes
//
//	@Summary		Delete several barcodes
//	@Description	Unknown IDs are ignored; the response reports how many rows were removed
//	@Tags			barcodes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		barcodeapp.BatchDeleteRequest	true	"IDs to delete"
//	@Success		200		{object}	APIResponse[barcodeapp.BatchDeleteResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/barcodes/batch-delete [post]
func (h *BarcodeHandler) BatchDelete(c *gin.Context) {
	var req barcodeapp.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.barcodeService.DeleteMany(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Count godoc
//
//	@ID				countBarcodes
//
//	@Summary		Count barcodes
//	@Tags			barcodes
//	@Produce		json
//	@Success		200	{object}	APIResponse[CountData]
//	@Router			/barcodes/count [get]
func (h *BarcodeHandler) Count(c *gin.Context) {
	count, err := h.barcodeService.CountBarcodes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}
