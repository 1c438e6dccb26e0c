package services

import (
	"testing"

	"kopilka/internal/models"
	"kopilka/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)

		cat, err := svc.Create(hh.ID, "  Кафе   и  рестораны ")
		testutil.AssertNoError(t, err)

		if cat.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if cat.Name != "Кафе и рестораны" {
			t.Errorf("expected collapsed name, got %q", cat.Name)
		}
	})

	t.Run("duplicate_ignoring_case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)

		_, err := svc.Create(hh.ID, "Такси")
		testutil.AssertNoError(t, err)

		_, err = svc.Create(hh.ID, "такси")
		testutil.AssertAppError(t, err, "CATEGORY_EXISTS")
	})

	t.Run("same_name_in_other_household", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh1, _ := testutil.CreateTestHousehold(t, db)
		hh2, _ := testutil.CreateTestHousehold(t, db)

		_, err := svc.Create(hh1.ID, "Food")
		testutil.AssertNoError(t, err)
		_, err = svc.Create(hh2.ID, "Food")
		testutil.AssertNoError(t, err)
	})

	t.Run("blank_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)

		_, err := svc.Create(hh.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListCategories(t *testing.T) {
	t.Run("reconciles_legacy_text", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		legacy := testutil.CreateLegacyTransaction(t, db, hh.ID, "Аптека", "350")

		cats, err := svc.List(hh.ID)
		testutil.AssertNoError(t, err)

		if len(cats) != 1 || cats[0].Name != "Аптека" {
			t.Fatalf("expected one category Аптека, got %+v", cats)
		}
		var reloaded models.Transaction
		db.First(&reloaded, legacy.ID)
		if reloaded.CategoryID == nil || *reloaded.CategoryID != cats[0].ID {
			t.Errorf("expected legacy row linked to %d, got %v", cats[0].ID, reloaded.CategoryID)
		}
	})

	t.Run("legacy_spelling_variant_links_to_existing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		cat := testutil.CreateTestCategory(t, db, hh.ID, "Такси")
		legacy := testutil.CreateLegacyTransaction(t, db, hh.ID, "такси", "500")

		cats, err := svc.List(hh.ID)
		testutil.AssertNoError(t, err)

		if len(cats) != 1 {
			t.Fatalf("expected no new category, got %+v", cats)
		}
		var reloaded models.Transaction
		db.First(&reloaded, legacy.ID)
		if reloaded.CategoryID == nil || *reloaded.CategoryID != cat.ID || reloaded.Category != "Такси" {
			t.Errorf("expected row projected onto Такси, got %v %q", reloaded.CategoryID, reloaded.Category)
		}
	})

	t.Run("refreshes_drifted_text", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		cat := testutil.CreateTestCategory(t, db, hh.ID, "Дом")
		tx := testutil.CreateTestTransaction(t, db, hh.ID, nil, cat, "10")
		db.Model(&models.Transaction{}).Where("id = ?", tx.ID).Update("category", "Старое")

		_, err := svc.List(hh.ID)
		testutil.AssertNoError(t, err)

		var reloaded models.Transaction
		db.First(&reloaded, tx.ID)
		if reloaded.Category != "Дом" {
			t.Errorf("expected text Дом, got %q", reloaded.Category)
		}
	})

	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)

		cats, err := svc.List(hh.ID)
		testutil.AssertNoError(t, err)
		if len(cats) != 0 {
			t.Errorf("expected no categories, got %d", len(cats))
		}
	})
}

func TestRenameCategory(t *testing.T) {
	t.Run("rewrites_both_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		cat := testutil.CreateTestCategory(t, db, hh.ID, "Еда")
		testutil.CreateTestTransaction(t, db, hh.ID, nil, cat, "100")
		testutil.CreateLegacyTransaction(t, db, hh.ID, "Еда", "200")

		renamed, err := svc.Rename(hh.ID, "Еда", "Продукты")
		testutil.AssertNoError(t, err)
		if renamed.Name != "Продукты" {
			t.Errorf("expected Продукты, got %q", renamed.Name)
		}

		var stale int64
		db.Model(&models.Transaction{}).Where("household_id = ? AND category = ?", hh.ID, "Еда").Count(&stale)
		if stale != 0 {
			t.Errorf("expected no transaction left on the old name, got %d", stale)
		}
		var linked int64
		db.Model(&models.Transaction{}).
			Where("household_id = ? AND category = ? AND category_id = ?", hh.ID, "Продукты", cat.ID).
			Count(&linked)
		if linked != 2 {
			t.Errorf("expected 2 transactions on Продукты, got %d", linked)
		}
	})

	t.Run("links_legacy_case_variants", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		cat := testutil.CreateTestCategory(t, db, hh.ID, "Такси")
		legacy := testutil.CreateLegacyTransaction(t, db, hh.ID, "такси ", "300")

		_, err := svc.Rename(hh.ID, "Такси", "Поездки")
		testutil.AssertNoError(t, err)

		var reloaded models.Transaction
		if err := db.First(&reloaded, legacy.ID).Error; err != nil {
			t.Fatalf("failed to reload transaction: %v", err)
		}
		if reloaded.CategoryID == nil || *reloaded.CategoryID != cat.ID || reloaded.Category != "Поездки" {
			t.Errorf("expected legacy row on Поездки, got %v/%q", reloaded.CategoryID, reloaded.Category)
		}

		categories, err := svc.List(hh.ID)
		testutil.AssertNoError(t, err)
		if len(categories) != 1 || categories[0].Name != "Поездки" {
			t.Errorf("expected only Поездки, got %+v", categories)
		}
	})

	t.Run("case_only_change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		testutil.CreateTestCategory(t, db, hh.ID, "такси")

		renamed, err := svc.Rename(hh.ID, "такси", "Такси")
		testutil.AssertNoError(t, err)
		if renamed.Name != "Такси" {
			t.Errorf("expected Такси, got %q", renamed.Name)
		}
	})

	t.Run("target_exists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		testutil.CreateTestCategory(t, db, hh.ID, "A")
		testutil.CreateTestCategory(t, db, hh.ID, "B")

		_, err := svc.Rename(hh.ID, "A", "b")
		testutil.AssertAppError(t, err, "CATEGORY_EXISTS")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)

		_, err := svc.Rename(hh.ID, "Ghost", "Spirit")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestMergeCategories(t *testing.T) {
	t.Run("moves_transactions_and_deletes_source", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		source := testutil.CreateTestCategory(t, db, hh.ID, "Кофе")
		target := testutil.CreateTestCategory(t, db, hh.ID, "Кафе")
		testutil.CreateTestTransaction(t, db, hh.ID, nil, source, "150")
		testutil.CreateLegacyTransaction(t, db, hh.ID, "Кофе", "200")
		testutil.CreateTestTransaction(t, db, hh.ID, nil, target, "900")

		var before int64
		db.Model(&models.Transaction{}).Where("household_id = ?", hh.ID).Count(&before)

		result, err := svc.Merge(hh.ID, "Кофе", "Кафе")
		testutil.AssertNoError(t, err)
		if result.TransactionsMoved != 2 {
			t.Errorf("expected 2 moved, got %d", result.TransactionsMoved)
		}

		var after, onTarget, sources int64
		db.Model(&models.Transaction{}).Where("household_id = ?", hh.ID).Count(&after)
		db.Model(&models.Transaction{}).
			Where("category_id = ? AND category = ?", target.ID, "Кафе").Count(&onTarget)
		db.Model(&models.Category{}).Where("id = ?", source.ID).Count(&sources)
		if after != before {
			t.Errorf("expected %d transactions, got %d", before, after)
		}
		if onTarget != 3 {
			t.Errorf("expected 3 transactions on target, got %d", onTarget)
		}
		if sources != 0 {
			t.Error("expected source category deleted")
		}
	})

	t.Run("folds_legacy_case_variants", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		testutil.CreateTestCategory(t, db, hh.ID, "Такси")
		target := testutil.CreateTestCategory(t, db, hh.ID, "Транспорт")
		legacy := testutil.CreateLegacyTransaction(t, db, hh.ID, "такси", "450")

		err := svc.Delete(hh.ID, "Такси")
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")

		result, err := svc.Merge(hh.ID, "Такси", "Транспорт")
		testutil.AssertNoError(t, err)
		if result.TransactionsMoved != 1 {
			t.Errorf("expected 1 moved, got %d", result.TransactionsMoved)
		}

		var reloaded models.Transaction
		if err := db.First(&reloaded, legacy.ID).Error; err != nil {
			t.Fatalf("failed to reload transaction: %v", err)
		}
		if reloaded.CategoryID == nil || *reloaded.CategoryID != target.ID || reloaded.Category != "Транспорт" {
			t.Errorf("expected legacy row on Транспорт, got %v/%q", reloaded.CategoryID, reloaded.Category)
		}

		categories, err := svc.List(hh.ID)
		testutil.AssertNoError(t, err)
		if len(categories) != 1 || categories[0].Name != "Транспорт" {
			t.Errorf("expected only Транспорт, got %+v", categories)
		}
	})

	t.Run("budget_follows_unless_target_has_one", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		source := testutil.CreateTestCategory(t, db, hh.ID, "S")
		target := testutil.CreateTestCategory(t, db, hh.ID, "T")
		moved := testutil.CreateTestBudget(t, db, hh.ID, source.ID, "2026-01", "100")
		testutil.CreateTestBudget(t, db, hh.ID, source.ID, "2026-02", "100")
		testutil.CreateTestBudget(t, db, hh.ID, target.ID, "2026-02", "500")

		_, err := svc.Merge(hh.ID, "S", "T")
		testutil.AssertNoError(t, err)

		var budgets []models.CategoryBudget
		db.Where("household_id = ?", hh.ID).Order("period ASC").Find(&budgets)
		if len(budgets) != 2 {
			t.Fatalf("expected 2 budgets, got %d", len(budgets))
		}
		if budgets[0].ID != moved.ID || budgets[0].CategoryID != target.ID {
			t.Errorf("expected January budget moved to target, got %+v", budgets[0])
		}
		testutil.AssertAmount(t, budgets[1].LimitAmount, "500")
	})

	t.Run("into_itself", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		testutil.CreateTestCategory(t, db, hh.ID, "Same")

		_, err := svc.Merge(hh.ID, "Same", "same")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		testutil.CreateTestCategory(t, db, hh.ID, "Here")

		_, err := svc.Merge(hh.ID, "Here", "Nowhere")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("unused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		cat := testutil.CreateTestCategory(t, db, hh.ID, "Temp")
		testutil.CreateTestBudget(t, db, hh.ID, cat.ID, "2026-10", "100")

		testutil.AssertNoError(t, svc.Delete(hh.ID, "temp"))

		var count int64
		db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count)
		if count != 0 {
			t.Error("expected category deleted")
		}
		db.Model(&models.CategoryBudget{}).Where("category_id = ?", cat.ID).Count(&count)
		if count != 0 {
			t.Error("expected its budgets deleted")
		}
	})

	t.Run("in_use_by_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		cat := testutil.CreateTestCategory(t, db, hh.ID, "Busy")
		testutil.CreateTestTransaction(t, db, hh.ID, nil, cat, "1")

		err := svc.Delete(hh.ID, "Busy")
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("in_use_by_legacy_text", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		testutil.CreateTestCategory(t, db, hh.ID, "Old")
		testutil.CreateLegacyTransaction(t, db, hh.ID, "old", "1")

		err := svc.Delete(hh.ID, "Old")
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)

		err := svc.Delete(hh.ID, "Ghost")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestNormalizeDuplicates(t *testing.T) {
	t.Run("folds_case_variants_into_canonical", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		lower := testutil.CreateTestCategory(t, db, hh.ID, "такси")
		upper := testutil.CreateTestCategory(t, db, hh.ID, "Такси")
		testutil.CreateTestCategory(t, db, hh.ID, "Продукты")
		testutil.CreateTestTransaction(t, db, hh.ID, nil, lower, "300")
		testutil.CreateTestBudget(t, db, hh.ID, lower.ID, "2026-10", "1000")

		changed, err := svc.NormalizeDuplicates(hh.ID)
		testutil.AssertNoError(t, err)
		if changed != 1 {
			t.Errorf("expected 1 group changed, got %d", changed)
		}

		var cats []models.Category
		db.Where("household_id = ?", hh.ID).Order("id ASC").Find(&cats)
		if len(cats) != 2 || cats[0].ID != upper.ID {
			t.Fatalf("expected Такси and Продукты to remain, got %+v", cats)
		}

		var moved int64
		db.Model(&models.Transaction{}).Where("category_id = ? AND category = ?", upper.ID, "Такси").Count(&moved)
		if moved != 1 {
			t.Errorf("expected transaction on canonical category, got %d", moved)
		}
		var budget models.CategoryBudget
		db.Where("household_id = ?", hh.ID).First(&budget)
		if budget.CategoryID != upper.ID {
			t.Errorf("expected budget on canonical category, got %d", budget.CategoryID)
		}
	})

	t.Run("nothing_to_do", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		hh, _ := testutil.CreateTestHousehold(t, db)
		testutil.CreateTestCategory(t, db, hh.ID, "One")
		testutil.CreateTestCategory(t, db, hh.ID, "Two")

		changed, err := svc.NormalizeDuplicates(hh.ID)
		testutil.AssertNoError(t, err)
		if changed != 0 {
			t.Errorf("expected 0 groups, got %d", changed)
		}
	})
}

func TestResolveOrCreateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	hh, _ := testutil.CreateTestHousehold(t, db)
	existing := testutil.CreateTestCategory(t, db, hh.ID, "Связь")

	found, err := svc.ResolveOrCreate(db, hh.ID, "связь")
	testutil.AssertNoError(t, err)
	if found.ID != existing.ID {
		t.Errorf("expected case-insensitive match %d, got %d", existing.ID, found.ID)
	}

	created, err := svc.ResolveOrCreate(db, hh.ID, "Подписки")
	testutil.AssertNoError(t, err)
	if created.ID == existing.ID || created.Name != "Подписки" {
		t.Errorf("expected a new category, got %+v", created)
	}

	_, err = svc.ResolveOrCreate(db, hh.ID, " ")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestCanonicalScore(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"Такси", 3},
		{"Кафе и рестораны", 2},
		{"Кафе И Рестораны", 3},
		{"такси", 0},
		{"ТАКСИ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canonicalScore(tt.name); got != tt.want {
				t.Errorf("canonicalScore(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}
