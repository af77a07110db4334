package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"

	printingapp "github.com/barcodeprint/backend/internal/application/printing"
	"github.com/gin-gonic/gin"
)

// PrintHandler handles export, label printing and job history endpoints
type PrintHandler struct {
	BaseHandler
	labelService *printingapp.LabelService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(labelService *printingapp.LabelService) *PrintHandler {
	return &PrintHandler{
		labelService: labelService,
	}
}

// =============================================================================
// Reference Data Endpoints
// =============================================================================

// GetSettingsDefaults godoc
//
//	@ID				getPrintSettingsDefaults
//
//	@Summary		Get default render settings
//	@Description	Starting settings for export and for each label size, with the accepted ranges
//	@Tags			print-reference
//	@Produce		json
//	@Success		200	{object}	APIResponse[printingapp.SettingsDefaultsResponse]
//	@Router			/print/settings/defaults [get]
func (h *PrintHandler) GetSettingsDefaults(c *gin.Context) {
	h.Success(c, h.labelService.SettingsDefaults())
}

// GetPaperSizes godoc
//
//	@ID				getPrintReferencePaperSizes
//
//	@Summary		Get available paper sizes
//	@Description	Retrieve all supported paper sizes with their default layout
//	@Tags			print-reference
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]printingapp.PaperSizeResponse]
//	@Router			/print/paper-sizes [get]
func (h *PrintHandler) GetPaperSizes(c *gin.Context) {
	h.Success(c, h.labelService.PaperSizes())
}

// =============================================================================
// Rendering Endpoints
// =============================================================================

// Export godoc
//
//	@ID				exportBarcodesPDF
//
//	@Summary		Export barcodes to PDF
//	@Description	Render the selected barcodes, in selection order, into one PDF.
//	@Description	A failure on any item aborts the whole batch and no file is kept.
//	@Description	Bar width, height, font size and text offset settings are range-checked
//	@Description	but the EXPORT profile values are used for rendering.
//	@Tags			print-jobs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		printingapp.ExportRequest	true	"Export request"
//	@Success		201		{object}	APIResponse[printingapp.JobResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		504		{object}	ErrorResponse
//	@Router			/print/export [post]
func (h *PrintHandler) Export(c *gin.Context) {
	var req printingapp.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.labelService.Export(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// PrintLabels godoc
//
//	@ID				printBarcodeLabels
//
//	@Summary		Print barcode labels
//	@Description	Lay the selected barcodes out one per 20mm or 40mm label page.
//	@Description	The resulting document opens the browser print dialog when loaded.
//	@Description	Bar width, height, font size and text offset settings are range-checked
//	@Description	but the PRINT profile values are used for rendering.
//	@Tags			print-jobs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		printingapp.PrintRequest	true	"Print request"
//	@Success		201		{object}	APIResponse[printingapp.JobResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/print/labels [post]
func (h *PrintHandler) PrintLabels(c *gin.Context) {
	var req printingapp.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.labelService.Print(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// =============================================================================
// Print Job Endpoints
// =============================================================================

// ListJobs godoc
//
//	@ID				listPrintJobJobs
//
//	@Summary		List print jobs
//	@Description	Retrieve a paginated list of print jobs, newest first
//	@Tags			print-jobs
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			kind		query		string	false	"Filter by kind"	Enums(EXPORT, PRINT)
//	@Param			status		query		string	false	"Filter by status"	Enums(PENDING, RENDERING, COMPLETED, FAILED)
//	@Success		200			{object}	APIResponse[[]printingapp.JobResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/print/jobs [get]
func (h *PrintHandler) ListJobs(c *gin.Context) {
	var req printingapp.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.labelService.ListJobs(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetJob godoc
//
//	@ID				getPrintJobJob
//
//	@Summary		Get print job by ID
//	@Tags			print-jobs
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"	format(uuid)
//	@Success		200	{object}	APIResponse[printingapp.JobResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/print/jobs/{id} [get]
func (h *PrintHandler) GetJob(c *gin.Context) {
	id, ok := h.parseID(c, "id", "job")
	if !ok {
		return
	}

	result, err := h.labelService.GetJob(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// labelDocumentCSP replaces the API-wide policy for rendered label sheets
const labelDocumentCSP = "default-src 'none'; img-src data:; style-src 'unsafe-inline'; script-src 'unsafe-inline'; frame-ancestors 'self'"

// Download godoc
//
//	@ID				downloadPrintJobOutput
//
//	@Summary		Download job output
//	@Description	Stream the rendered document of a completed job, or redirect to
//	@Description	a presigned object storage link. HTML label sheets are served inline.
//	@Tags			print-jobs
//	@Produce		application/pdf
//	@Produce		html
//	@Param			id		path	string	true	"Job ID"	format(uuid)
//	@Param			inline	query	bool	false	"Display instead of download"
//	@Success		200		{file}	binary	"Rendered document"
//	@Success		307		"Redirect to object storage"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/print/jobs/{id}/download [get]
func (h *PrintHandler) Download(c *gin.Context) {
	id, ok := h.parseID(c, "id", "job")
	if !ok {
		return
	}

	out, err := h.labelService.OpenOutput(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if out.RedirectURL != "" {
		c.Redirect(http.StatusTemporaryRedirect, out.RedirectURL)
		return
	}
	defer out.Body.Close()

	isHTML := strings.HasPrefix(out.ContentType, "text/html")
	disposition := "attachment"
	if c.Query("inline") == "true" || isHTML {
		disposition = "inline"
	}
	if isHTML {
		// the label sheet runs its own print hook and embeds images as data URIs
		c.Header("Content-Security-Policy", labelDocumentCSP)
	}
	c.Header("Content-Type", out.ContentType)
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": out.FileName}))
	c.Status(http.StatusOK)

	// headers are already sent; a failed copy can only be dropped
	_, _ = io.Copy(c.Writer, out.Body)
}
