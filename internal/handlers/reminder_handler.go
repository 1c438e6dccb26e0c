package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/services"
)

// ReminderHandler handles payment reminder requests.
type ReminderHandler struct {
	reminderService services.ReminderServicer
	auditService    services.AuditServicer
	now             func() time.Time
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService services.ReminderServicer, auditService services.AuditServicer) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService, auditService: auditService, now: time.Now}
}

// CreateReminderRequest represents the request payload for a new reminder.
type CreateReminderRequest struct {
	Title        string           `json:"title" binding:"required,max=200"`
	Amount       *decimal.Decimal `json:"amount"`
	Currency     string           `json:"currency" binding:"omitempty,iso4217"`
	IntervalDays *int             `json:"interval_days" binding:"omitempty,min=1"`
	NextRunAt    *time.Time       `json:"next_run_at"`
}

// CreateReminder adds a payment reminder.
// @Summary     Create reminder
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateReminderRequest true "Reminder"
// @Success     201 {object} models.Reminder "Reminder created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	reminder, err := h.reminderService.Create(householdID, optionalUserID(c), services.CreateReminderInput{
		Title:        req.Title,
		Amount:       req.Amount,
		Currency:     req.Currency,
		IntervalDays: req.IntervalDays,
		NextRunAt:    req.NextRunAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reminder": reminder})
}

// ListReminders returns all reminders, active ones first.
// @Summary     List reminders
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Reminder "Reminders"
// @Router      /reminders [get]
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminders, err := h.reminderService.List(householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// DueReminders returns the household's reminders that are due now.
// @Summary     Due reminders
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Reminder "Due reminders"
// @Router      /reminders/due [get]
func (h *ReminderHandler) DueReminders(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminders, err := h.reminderService.Due(householdID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// AllDueReminders returns due reminders across every household. Operator route.
// @Summary     Due reminders of all households
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {array} models.Reminder "Due reminders"
// @Router      /admin/reminders/due [get]
func (h *ReminderHandler) AllDueReminders(c *gin.Context) {
	reminders, err := h.reminderService.AllDue(h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// MarkPaid records the payment of a reminder and schedules the next one.
// @Summary     Mark reminder paid
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Reminder ID"
// @Success     200 {object} services.MarkPaidResult "Paid"
// @Failure     400 {object} ErrorResponse "Reminder inactive"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id}/paid [post]
func (h *ReminderHandler) MarkPaid(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reminderService.MarkPaid(householdID, reminderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{"is_active": result.Reminder.IsActive, "next_run_at": result.Reminder.NextRunAt}
	if result.Transaction != nil {
		changes["transaction_id"] = result.Transaction.ID
	}
	h.auditService.Log(householdID, optionalUserID(c), "MARK_PAID", "reminder", reminderID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, result)
}
