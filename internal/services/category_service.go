package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/logger"
	"kopilka/internal/models"
)

// textFromCategory reads the current name of a transaction's linked category.
const textFromCategory = "(SELECT name FROM categories WHERE categories.id = transactions.category_id)"

// categoryService maintains the category registry and keeps the legacy
// free-text category on transactions in step with it.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// normalizeCategoryName trims and collapses inner whitespace.
func normalizeCategoryName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// canonicalScore ranks spellings of the same name: a leading capital is worth
// two points and title case one more.
func canonicalScore(name string) int {
	score := 0
	if first, _ := utf8.DecodeRuneInString(name); unicode.IsUpper(first) {
		score += 2
	}
	if isTitleCase(name) {
		score++
	}
	return score
}

func isTitleCase(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		runes := []rune(word)
		if unicode.IsLetter(runes[0]) && !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes[1:] {
			if unicode.IsUpper(r) {
				return false
			}
		}
	}
	return true
}

// pickCanonical returns the best-scoring category; ties go to the lowest ID.
func pickCanonical(group []models.Category) models.Category {
	best := group[0]
	for _, c := range group[1:] {
		bs, cs := canonicalScore(best.Name), canonicalScore(c.Name)
		if cs > bs || (cs == bs && c.ID < best.ID) {
			best = c
		}
	}
	return best
}

func loadCategories(tx *gorm.DB, householdID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := tx.Where("household_id = ?", householdID).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// matchCategory finds name among categories: exact first, then case-insensitive.
// The category with excludeID is skipped.
func matchCategory(categories []models.Category, name string, excludeID uint) *models.Category {
	for i := range categories {
		if categories[i].ID != excludeID && categories[i].Name == name {
			return &categories[i]
		}
	}
	for i := range categories {
		if categories[i].ID != excludeID && strings.EqualFold(categories[i].Name, name) {
			return &categories[i]
		}
	}
	return nil
}

func findCategory(tx *gorm.DB, householdID uint, name string) (*models.Category, error) {
	categories, err := loadCategories(tx, householdID)
	if err != nil {
		return nil, err
	}
	category := matchCategory(categories, name, 0)
	if category == nil {
		return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, fmt.Sprintf("category %q not found", name))
	}
	return category, nil
}

// List returns the household's categories after reconciling legacy data:
// every free-text category on a transaction gets a Category row, legacy-only
// transactions are linked to it, and drifted text is refreshed.
func (s *categoryService) List(householdID uint) ([]models.Category, error) {
	var result []models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories, err := loadCategories(tx, householdID)
		if err != nil {
			return err
		}

		var texts []string
		if err := tx.Model(&models.Transaction{}).
			Where("household_id = ? AND category <> ''", householdID).
			Distinct().
			Pluck("category", &texts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		sort.SliceStable(texts, func(i, j int) bool {
			si, sj := canonicalScore(texts[i]), canonicalScore(texts[j])
			if si != sj {
				return si > sj
			}
			return texts[i] < texts[j]
		})

		for _, text := range texts {
			name := normalizeCategoryName(text)
			if name == "" {
				continue
			}
			category := matchCategory(categories, name, 0)
			if category == nil {
				category, err = s.createIn(tx, householdID, name, len(categories))
				if err != nil {
					return err
				}
				categories = append(categories, *category)
			}
			if err := tx.Model(&models.Transaction{}).
				Where("household_id = ? AND category_id IS NULL AND category = ?", householdID, text).
				Updates(map[string]interface{}{"category_id": category.ID, "category": category.Name}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := syncCategoryText(tx, householdID); err != nil {
			return err
		}

		if err := tx.Where("household_id = ?", householdID).
			Order("sort_order ASC, name ASC").
			Find(&result).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// syncCategoryText rewrites the free-text category of linked transactions
// whose text no longer matches the category name.
func syncCategoryText(tx *gorm.DB, householdID uint) error {
	err := tx.Model(&models.Transaction{}).
		Where("household_id = ? AND category_id IS NOT NULL", householdID).
		Where("category <> " + textFromCategory).
		Update("category", gorm.Expr(textFromCategory)).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// createIn inserts a category, returning the concurrent winner on a name race.
func (s *categoryService) createIn(tx *gorm.DB, householdID uint, name string, sortOrder int) (*models.Category, error) {
	category := &models.Category{HouseholdID: householdID, Name: name, SortOrder: sortOrder}
	if err := createIsolated(tx, category); err != nil {
		if !isDuplicate(err) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var winner models.Category
		if err := tx.Where("household_id = ? AND name = ?", householdID, name).First(&winner).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &winner, nil
	}
	return category, nil
}

// ResolveOrCreate finds a category by exact, then case-insensitive name, or creates it.
func (s *categoryService) ResolveOrCreate(tx *gorm.DB, householdID uint, name string) (*models.Category, error) {
	name = normalizeCategoryName(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	categories, err := loadCategories(tx, householdID)
	if err != nil {
		return nil, err
	}
	if category := matchCategory(categories, name, 0); category != nil {
		return category, nil
	}
	return s.createIn(tx, householdID, name, len(categories))
}

// Create adds a category. Names are unique per household ignoring case.
func (s *categoryService) Create(householdID uint, name string) (*models.Category, error) {
	name = normalizeCategoryName(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var category *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories, err := loadCategories(tx, householdID)
		if err != nil {
			return err
		}
		if existing := matchCategory(categories, name, 0); existing != nil {
			return apperrors.WithMessage(apperrors.ErrCategoryExists, fmt.Sprintf("category %q already exists", existing.Name))
		}

		category = &models.Category{HouseholdID: householdID, Name: name, SortOrder: len(categories)}
		if err := tx.Create(category).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.Wrap(apperrors.ErrCategoryExists, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Rename changes a category's name and rewrites the free-text category of
// every transaction that held the old name.
func (s *categoryService) Rename(householdID uint, oldName, newName string) (*models.Category, error) {
	oldName = normalizeCategoryName(oldName)
	newName = normalizeCategoryName(newName)
	if oldName == "" || newName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "both the current and the new category name are required")
	}

	var category *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories, err := loadCategories(tx, householdID)
		if err != nil {
			return err
		}
		category = matchCategory(categories, oldName, 0)
		if category == nil {
			return apperrors.WithMessage(apperrors.ErrCategoryNotFound, fmt.Sprintf("category %q not found", oldName))
		}
		if clash := matchCategory(categories, newName, category.ID); clash != nil {
			return apperrors.WithMessage(apperrors.ErrCategoryExists, fmt.Sprintf("category %q already exists, merge instead", clash.Name))
		}
		if category.Name == newName {
			return nil
		}

		previous := category.Name
		texts, err := legacyTexts(tx, householdID, previous)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).Where("id = ?", category.ID).Update("name", newName).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.Wrap(apperrors.ErrCategoryExists, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		category.Name = newName

		if err := tx.Model(&models.Transaction{}).
			Where("household_id = ? AND category_id IS NULL AND (category = ? OR category IN ?)", householdID, previous, texts).
			Update("category_id", category.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.Transaction{}).
			Where("household_id = ? AND (category_id = ? OR category = ?)", householdID, category.ID, previous).
			Update("category", newName).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Merge moves every transaction and budget of source onto target, then deletes source.
func (s *categoryService) Merge(householdID uint, sourceName, targetName string) (*MergeResult, error) {
	sourceName = normalizeCategoryName(sourceName)
	targetName = normalizeCategoryName(targetName)
	if sourceName == "" || targetName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "both the source and the target category are required")
	}

	var result *MergeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		source, err := findCategory(tx, householdID, sourceName)
		if err != nil {
			return err
		}
		target, err := findCategory(tx, householdID, targetName)
		if err != nil {
			return err
		}
		if source.ID == target.ID {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot merge a category into itself")
		}

		moved, err := reassignCategory(tx, householdID, source, target)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Category{}, source.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result = &MergeResult{Source: source.Name, Target: target.Name, TransactionsMoved: moved}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reassignCategory points every transaction and budget of from at to. Both
// category fields are rewritten before the caller deletes from.
func reassignCategory(tx *gorm.DB, householdID uint, from, to *models.Category) (int64, error) {
	texts, err := legacyTexts(tx, householdID, from.Name)
	if err != nil {
		return 0, err
	}
	res := tx.Model(&models.Transaction{}).
		Where("household_id = ? AND (category_id = ? OR category = ? OR (category_id IS NULL AND category IN ?))",
			householdID, from.ID, from.Name, texts).
		Updates(map[string]interface{}{"category_id": to.ID, "category": to.Name})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}

	var budgets []models.CategoryBudget
	if err := tx.Where("household_id = ? AND category_id = ?", householdID, from.ID).Find(&budgets).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, budget := range budgets {
		var taken int64
		if err := tx.Model(&models.CategoryBudget{}).
			Where("household_id = ? AND category_id = ? AND period = ?", householdID, to.ID, budget.Period).
			Count(&taken).Error; err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// the surviving category keeps its own limit for that month
		if taken > 0 {
			err := tx.Delete(&models.CategoryBudget{}, budget.ID).Error
			if err != nil {
				return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			continue
		}
		if err := tx.Model(&models.CategoryBudget{}).Where("id = ?", budget.ID).Update("category_id", to.ID).Error; err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return res.RowsAffected, nil
}

// legacyTexts returns the distinct free-text categories of unlinked
// transactions that spell name, ignoring case and spacing.
func legacyTexts(tx *gorm.DB, householdID uint, name string) ([]string, error) {
	var texts []string
	if err := tx.Model(&models.Transaction{}).
		Where("household_id = ? AND category_id IS NULL AND category <> ''", householdID).
		Distinct().
		Pluck("category", &texts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	name = normalizeCategoryName(name)
	matched := texts[:0]
	for _, text := range texts {
		if strings.EqualFold(normalizeCategoryName(text), name) {
			matched = append(matched, text)
		}
	}
	return matched, nil
}

// Delete removes an unused category. A transaction linked by ID or holding
// the name as free text counts as a use.
func (s *categoryService) Delete(householdID uint, name string) error {
	name = normalizeCategoryName(name)
	if name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, householdID, name)
		if err != nil {
			return err
		}

		var uses int64
		if err := tx.Model(&models.Transaction{}).
			Where("household_id = ? AND (category_id = ? OR category = ?)", householdID, category.ID, category.Name).
			Count(&uses).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if uses == 0 {
			texts, err := legacyTexts(tx, householdID, category.Name)
			if err != nil {
				return err
			}
			uses = int64(len(texts))
		}
		if uses > 0 {
			return apperrors.WithMessage(apperrors.ErrCategoryInUse,
				fmt.Sprintf("category %q is used by transactions, merge it into another category instead", category.Name))
		}

		if err := tx.Where("category_id = ?", category.ID).Delete(&models.CategoryBudget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.Category{}, category.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// NormalizeDuplicates folds categories whose names differ only by case into
// one canonical category. Each group commits in its own transaction. It
// returns the number of groups changed.
func (s *categoryService) NormalizeDuplicates(householdID uint) (int, error) {
	categories, err := loadCategories(s.db, householdID)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]models.Category)
	var keys []string
	for _, c := range categories {
		key := strings.ToLower(normalizeCategoryName(c.Name))
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], c)
	}

	changed := 0
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		canonical := pickCanonical(group)

		err := s.db.Transaction(func(tx *gorm.DB) error {
			for i := range group {
				loser := group[i]
				if loser.ID == canonical.ID {
					continue
				}
				if _, err := reassignCategory(tx, householdID, &loser, &canonical); err != nil {
					return err
				}
				if err := tx.Delete(&models.Category{}, loser.ID).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
			return nil
		})
		if err != nil {
			return changed, err
		}

		logger.Get().Infow("merged duplicate categories",
			"household_id", householdID,
			"canonical", canonical.Name,
			"merged", len(group)-1,
		)
		changed++
	}
	return changed, nil
}
