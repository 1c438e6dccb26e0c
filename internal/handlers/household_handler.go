package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kopilka/internal/confirm"
	apperrors "kopilka/internal/errors"
	"kopilka/internal/middleware"
	"kopilka/internal/services"
)

// HouseholdHandler handles household, membership and invite requests.
type HouseholdHandler struct {
	householdService services.HouseholdServicer
	inviteService    services.InviteServicer
	auditService     services.AuditServicer
	leaveConfirm     *confirm.Store
}

// NewHouseholdHandler creates a new HouseholdHandler. leaveConfirm holds the
// pending two-step leave confirmations.
func NewHouseholdHandler(
	householdService services.HouseholdServicer,
	inviteService services.InviteServicer,
	auditService services.AuditServicer,
	leaveConfirm *confirm.Store,
) *HouseholdHandler {
	return &HouseholdHandler{
		householdService: householdService,
		inviteService:    inviteService,
		auditService:     auditService,
		leaveConfirm:     leaveConfirm,
	}
}

// RenameHouseholdRequest is the payload for renaming the household.
type RenameHouseholdRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// SetCurrencyRequest is the payload for changing the household currency.
type SetCurrencyRequest struct {
	Currency string `json:"currency" binding:"required,iso4217"`
}

// SetDisplayNameRequest is the payload for changing the caller's display name.
type SetDisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=64"`
}

// JoinRequest is the payload for redeeming an invite.
type JoinRequest struct {
	Code string `json:"code" binding:"required,invite_code"`
}

// LeaveRequest carries the confirmation token of the second leave step.
type LeaveRequest struct {
	Token string `json:"token"`
}

// LeaveResponse describes the state of a two-step leave.
type LeaveResponse struct {
	State            confirm.State         `json:"state"`
	Token            string                `json:"token,omitempty"`
	ExpiresInSeconds int                   `json:"expires_in_seconds,omitempty"`
	Result           *services.LeaveResult `json:"result,omitempty"`
}

// GetHousehold returns the caller's household card.
// @Summary     Get household
// @Description Get the caller's household with its members
// @Tags        household
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.HouseholdInfo "Household"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Router      /household [get]
func (h *HouseholdHandler) GetHousehold(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	info, err := h.householdService.GetInfo(householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"household": info, "role": getRole(c)})
}

// RenameHousehold renames the caller's household.
// @Summary     Rename household
// @Tags        household
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RenameHouseholdRequest true "New name"
// @Success     200 {object} models.Household "Household renamed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not owner or admin"
// @Router      /household [put]
func (h *HouseholdHandler) RenameHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RenameHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.Rename(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(household.ID, &userID, "RENAME_HOUSEHOLD", "household", household.ID, c.ClientIP(),
		map[string]interface{}{"name": household.Name})

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// SetCurrency changes the household's default currency.
// @Summary     Set household currency
// @Tags        household
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetCurrencyRequest true "ISO 4217 code"
// @Success     200 {object} models.Household "Currency changed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not owner or admin"
// @Router      /household/currency [put]
func (h *HouseholdHandler) SetCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.SetCurrency(userID, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(household.ID, &userID, "SET_CURRENCY", "household", household.ID, c.ClientIP(),
		map[string]interface{}{"currency": household.Currency})

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// SetDisplayName changes how the caller is shown to other members.
// @Summary     Set display name
// @Tags        household
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetDisplayNameRequest true "Display name"
// @Success     200 {object} models.User "User updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /me [put]
func (h *HouseholdHandler) SetDisplayName(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetDisplayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.householdService.SetDisplayName(userID, req.DisplayName)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateInvite issues an invite code for the caller's household.
// @Summary     Create invite
// @Tags        household
// @Produce     json
// @Security    BearerAuth
// @Success     201 {object} models.HouseholdInvite "Invite issued"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /household/invites [post]
func (h *HouseholdHandler) CreateInvite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invite, err := h.inviteService.Issue(householdID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(householdID, &userID, "CREATE_INVITE", "invite", invite.ID, c.ClientIP(),
		map[string]interface{}{"expires_at": invite.ExpiresAt})

	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

// Join redeems an invite code, moving the caller into its household.
// @Summary     Join household
// @Tags        household
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body JoinRequest true "Invite code"
// @Success     200 {object} services.JoinResult "Joined"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Owner cannot leave current household"
// @Failure     404 {object} ErrorResponse "Unknown or expired code"
// @Router      /household/join [post]
func (h *HouseholdHandler) Join(c *gin.Context) {
	identity := c.GetString(middleware.IdentityKey)
	if identity == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "This action needs a user identity"))
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.inviteService.Join(identity, req.Code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !result.AlreadyMember {
		h.auditService.Log(result.Household.ID, optionalUserID(c), "JOIN_HOUSEHOLD", "household", result.Household.ID, c.ClientIP(),
			map[string]interface{}{"identity": identity, "left_household_id": result.LeftHouseholdID})
	}

	c.JSON(http.StatusOK, result)
}

// Leave removes the caller from their household in two steps. The first call
// returns a confirmation token; repeating the call with that token before it
// expires performs the leave.
// @Summary     Leave household
// @Tags        household
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LeaveRequest false "Confirmation token"
// @Success     200 {object} LeaveResponse "Left the household"
// @Success     202 {object} LeaveResponse "Confirmation required"
// @Failure     403 {object} ErrorResponse "Owner cannot leave while others remain"
// @Router      /household/leave [post]
func (h *HouseholdHandler) Leave(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// The body is optional; chunked requests carry no ContentLength.
	var req LeaveRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	key := strconv.FormatUint(uint64(userID), 10)
	if req.Token == "" {
		h.awaitLeave(c, key, confirm.StateAwaiting)
		return
	}
	if h.leaveConfirm.Confirm(key, req.Token) != confirm.StateConfirmed {
		h.awaitLeave(c, key, confirm.StateExpired)
		return
	}

	result, err := h.householdService.Leave(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(result.HouseholdID, &userID, "LEAVE_HOUSEHOLD", "household", result.HouseholdID, c.ClientIP(),
		map[string]interface{}{"household_deleted": result.HouseholdDeleted})

	c.JSON(http.StatusOK, LeaveResponse{State: confirm.StateConfirmed, Result: result})
}

// LeaveStatus reports whether the caller has a pending leave confirmation.
// @Summary     Leave confirmation state
// @Tags        household
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} LeaveResponse "awaiting with seconds left, or expired"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /household/leave [get]
func (h *HouseholdHandler) LeaveStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	state, left := h.leaveConfirm.Status(strconv.FormatUint(uint64(userID), 10))
	c.JSON(http.StatusOK, LeaveResponse{State: state, ExpiresInSeconds: int(left.Seconds())})
}

// awaitLeave starts (or restarts) the confirmation flow for key.
func (h *HouseholdHandler) awaitLeave(c *gin.Context, key string, state confirm.State) {
	token, err := h.leaveConfirm.Begin(key)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(http.StatusAccepted, LeaveResponse{
		State:            state,
		Token:            token,
		ExpiresInSeconds: int(h.leaveConfirm.TTL().Seconds()),
	})
}
