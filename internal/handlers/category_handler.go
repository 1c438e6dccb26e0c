package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/services"
)

// CategoryHandler handles category registry requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// RenameCategoryRequest represents the request payload for renaming a category.
type RenameCategoryRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required,max=100"`
}

// MergeCategoriesRequest represents the request payload for merging categories.
type MergeCategoriesRequest struct {
	Source string `json:"source" binding:"required"`
	Target string `json:"target" binding:"required"`
}

// ListCategories returns the household's categories.
// @Summary     List categories
// @Description List categories, reconciling names only found on transactions
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Category "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.List(householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory adds a category.
// @Summary     Create category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Category exists"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.Create(householdID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// RenameCategory renames a category and every transaction that uses it.
// @Summary     Rename category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RenameCategoryRequest true "Old and new name"
// @Success     200 {object} models.Category "Category renamed"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Name taken"
// @Router      /categories/rename [put]
func (h *CategoryHandler) RenameCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.Rename(householdID, req.From, req.To)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(householdID, optionalUserID(c), "RENAME_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"from": req.From, "to": category.Name})

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// MergeCategories folds source into target.
// @Summary     Merge categories
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body MergeCategoriesRequest true "Source and target"
// @Success     200 {object} services.MergeResult "Merged"
// @Failure     400 {object} ErrorResponse "Source equals target"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/merge [post]
func (h *CategoryHandler) MergeCategories(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MergeCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.categoryService.Merge(householdID, req.Source, req.Target)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(householdID, optionalUserID(c), "MERGE_CATEGORY", "category", 0, c.ClientIP(),
		map[string]interface{}{"source": result.Source, "target": result.Target, "moved": result.TransactionsMoved})

	c.JSON(http.StatusOK, result)
}

// DeleteCategory removes an unused category.
// @Summary     Delete category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       name path string true "Category name"
// @Success     200 {object} map[string]string "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category in use"
// @Router      /categories/{name} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	name := c.Param("name")
	if err := h.categoryService.Delete(householdID, name); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(householdID, optionalUserID(c), "DELETE_CATEGORY", "category", 0, c.ClientIP(),
		map[string]interface{}{"name": name})

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// NormalizeCategories merges case-insensitive duplicate categories of one
// household. Operator route.
// @Summary     Normalize duplicate categories
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Household ID"
// @Success     200 {object} map[string]int "Groups merged"
// @Router      /admin/households/{id}/categories/normalize [post]
func (h *CategoryHandler) NormalizeCategories(c *gin.Context) {
	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.categoryService.NormalizeDuplicates(householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if groups > 0 {
		h.auditService.Log(householdID, nil, "NORMALIZE_CATEGORIES", "category", 0, c.ClientIP(),
			map[string]interface{}{"groups": groups})
	}

	c.JSON(http.StatusOK, gin.H{"household_id": householdID, "groups_merged": groups})
}
