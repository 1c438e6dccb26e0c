package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/export"
	"kopilka/internal/services"
)

// defaultReportDays is the window used when no days parameter is given.
const defaultReportDays = 30

// ReportHandler serves read-only rollups and CSV exports.
type ReportHandler struct {
	reportService services.ReportServicer
	// archiver is nil when no export bucket is configured.
	archiver export.Archiver
}

// NewReportHandler creates a new ReportHandler. archiver may be nil.
func NewReportHandler(reportService services.ReportServicer, archiver export.Archiver) *ReportHandler {
	return &ReportHandler{reportService: reportService, archiver: archiver}
}

// GetSummary returns expenses per category.
// @Summary     Expense summary
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       days    query int false "Lookback window in days (default 30)"
// @Param       user_id query int false "Only this member's transactions"
// @Success     200 {object} services.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	householdID, window, ok := h.reportArgs(c)
	if !ok {
		return
	}
	summary, err := h.reportService.Summary(householdID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetBalance compares incomes and expenses.
// @Summary     Balance
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       days    query int false "Lookback window in days (default 30)"
// @Param       user_id query int false "Only this member's transactions"
// @Success     200 {object} services.Balance "Balance"
// @Router      /reports/balance [get]
func (h *ReportHandler) GetBalance(c *gin.Context) {
	householdID, window, ok := h.reportArgs(c)
	if !ok {
		return
	}
	balance, err := h.reportService.Balance(householdID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetMembers returns expenses per member.
// @Summary     Expenses by member
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Lookback window in days (default 30)"
// @Success     200 {object} services.MembersReport "Members"
// @Router      /reports/members [get]
func (h *ReportHandler) GetMembers(c *gin.Context) {
	householdID, window, ok := h.reportArgs(c)
	if !ok {
		return
	}
	report, err := h.reportService.Members(householdID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetShops returns expenses per merchant.
// @Summary     Expenses by merchant
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       days    query int false "Lookback window in days (default 30)"
// @Param       user_id query int false "Only this member's transactions"
// @Success     200 {object} services.ShopsReport "Shops"
// @Router      /reports/shops [get]
func (h *ReportHandler) GetShops(c *gin.Context) {
	householdID, window, ok := h.reportArgs(c)
	if !ok {
		return
	}
	report, err := h.reportService.Shops(householdID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export returns the window's transactions as CSV. With archive=true the
// file is also written to the export bucket and its URI returned in the
// X-Export-Location header.
// @Summary     Export transactions
// @Tags        reports
// @Produce     text/csv
// @Security    BearerAuth
// @Param       days    query int  false "Lookback window in days (default 30)"
// @Param       user_id query int  false "Only this member's transactions"
// @Param       archive query bool false "Also store the file in the export bucket"
// @Success     200 {string} string "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	householdID, window, ok := h.reportArgs(c)
	if !ok {
		return
	}

	archive := c.Query("archive") == "true"
	if archive && h.archiver == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "export archiving is not configured"))
		return
	}

	transactions, err := h.reportService.Transactions(householdID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTransactions(&buf, transactions); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	if archive {
		uri, err := h.archiver.Archive(c.Request.Context(), householdID, buf.Bytes())
		if err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		c.Header("X-Export-Location", uri)
	}

	filename := fmt.Sprintf("transactions-%dd.csv", window.Days)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ReportHandler) reportArgs(c *gin.Context) (uint, services.ReportWindow, bool) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return 0, services.ReportWindow{}, false
	}
	window, err := parseWindow(c, defaultReportDays)
	if err != nil {
		respondWithError(c, err)
		return 0, services.ReportWindow{}, false
	}
	return householdID, window, true
}
