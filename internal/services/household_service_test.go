package services

import (
	"testing"

	"kopilka/internal/models"
	"kopilka/internal/testutil"
)

func TestResolveOrCreate(t *testing.T) {
	t.Run("provisions_on_first_contact", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "EUR")

		m, err := svc.ResolveOrCreate("tg:42")
		testutil.AssertNoError(t, err)

		if m.User == nil || m.User.ExternalID != "tg:42" {
			t.Fatalf("expected user tg:42, got %+v", m.User)
		}
		if m.Role != models.RoleOwner {
			t.Errorf("expected owner role, got %s", m.Role)
		}
		if m.Household.Currency != "EUR" {
			t.Errorf("expected default currency EUR, got %s", m.Household.Currency)
		}
	})

	t.Run("second_call_is_stable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")

		first, err := svc.ResolveOrCreate("tg:42")
		testutil.AssertNoError(t, err)
		second, err := svc.ResolveOrCreate("  tg:42 ")
		testutil.AssertNoError(t, err)

		if first.Household.ID != second.Household.ID || first.User.ID != second.User.ID {
			t.Errorf("expected the same membership, got %d/%d and %d/%d",
				first.User.ID, first.Household.ID, second.User.ID, second.Household.ID)
		}

		var households int64
		db.Model(&models.Household{}).Count(&households)
		if households != 1 {
			t.Errorf("expected 1 household, got %d", households)
		}
	})

	t.Run("blank_identity_uses_default_household", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")

		first, err := svc.ResolveOrCreate("")
		testutil.AssertNoError(t, err)
		second, err := svc.ResolveOrCreate("   ")
		testutil.AssertNoError(t, err)

		if first.User != nil {
			t.Errorf("expected no user for tooling calls, got %+v", first.User)
		}
		if first.Household.ID != second.Household.ID {
			t.Errorf("expected one default household, got %d and %d", first.Household.ID, second.Household.ID)
		}
	})

	t.Run("existing_member_keeps_household", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		hh, _ := testutil.CreateTestHousehold(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, hh.ID, user.ID, models.RoleMember)

		m, err := svc.ResolveOrCreate(user.ExternalID)
		testutil.AssertNoError(t, err)
		if m.Household.ID != hh.ID || m.Role != models.RoleMember {
			t.Errorf("expected member of %d, got %s of %d", hh.ID, m.Role, m.Household.ID)
		}
	})
}

func TestGetInfo(t *testing.T) {
	t.Run("lists_members_in_joining_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		hh, owner := testutil.CreateTestHousehold(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, hh.ID, other.ID, models.RoleMember)

		info, err := svc.GetInfo(hh.ID)
		testutil.AssertNoError(t, err)

		if len(info.Members) != 2 {
			t.Fatalf("expected 2 members, got %d", len(info.Members))
		}
		if info.Members[0].UserID != owner.ID || info.Members[0].Role != models.RoleOwner {
			t.Errorf("expected owner first, got %+v", info.Members[0])
		}
		if info.Members[1].ExternalID != other.ExternalID || info.Members[1].Role != models.RoleMember {
			t.Errorf("expected member second, got %+v", info.Members[1])
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")

		_, err := svc.GetInfo(9999)
		testutil.AssertAppError(t, err, "HOUSEHOLD_NOT_FOUND")
	})
}

func TestRenameHousehold(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		_, owner := testutil.CreateTestHousehold(t, db)

		hh, err := svc.Rename(owner.ID, "  Family  ")
		testutil.AssertNoError(t, err)
		if hh.Name != "Family" {
			t.Errorf("expected name Family, got %q", hh.Name)
		}
	})

	t.Run("admin", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		hh, _ := testutil.CreateTestHousehold(t, db)
		admin := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, hh.ID, admin.ID, models.RoleAdmin)

		_, err := svc.Rename(admin.ID, "Flat 12")
		testutil.AssertNoError(t, err)
	})

	t.Run("member_is_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		hh, _ := testutil.CreateTestHousehold(t, db)
		member := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, hh.ID, member.ID, models.RoleMember)

		_, err := svc.Rename(member.ID, "Mine now")
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("blank_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		_, owner := testutil.CreateTestHousehold(t, db)

		_, err := svc.Rename(owner.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("no_membership", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		loner := testutil.CreateTestUser(t, db)

		_, err := svc.Rename(loner.ID, "Anything")
		testutil.AssertAppError(t, err, "NO_MEMBERSHIP")
	})
}

func TestSetCurrency(t *testing.T) {
	t.Run("normalizes_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		_, owner := testutil.CreateTestHousehold(t, db)

		hh, err := svc.SetCurrency(owner.ID, " usd ")
		testutil.AssertNoError(t, err)
		if hh.Currency != "USD" {
			t.Errorf("expected USD, got %s", hh.Currency)
		}
	})

	t.Run("unknown_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		_, owner := testutil.CreateTestHousehold(t, db)

		_, err := svc.SetCurrency(owner.ID, "XYZ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestSetDisplayName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewHouseholdService(db, "RUB")
	user := testutil.CreateTestUser(t, db)

	updated, err := svc.SetDisplayName(user.ID, " Маша ")
	testutil.AssertNoError(t, err)
	if updated.Label() != "Маша" {
		t.Errorf("expected label Маша, got %q", updated.Label())
	}

	_, err = svc.SetDisplayName(user.ID, "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestLeave(t *testing.T) {
	t.Run("owner_with_others_is_refused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		hh, owner := testutil.CreateTestHousehold(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, hh.ID, other.ID, models.RoleMember)

		_, err := svc.Leave(owner.ID)
		testutil.AssertAppError(t, err, "OWNER_CANNOT_LEAVE")

		var members int64
		db.Model(&models.HouseholdMember{}).Where("household_id = ?", hh.ID).Count(&members)
		if members != 2 {
			t.Errorf("expected membership untouched, got %d members", members)
		}
	})

	t.Run("sole_owner_deletes_household", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		hh, owner := testutil.CreateTestHousehold(t, db)
		cat := testutil.CreateTestCategory(t, db, hh.ID, "Продукты")
		testutil.CreateTestTransaction(t, db, hh.ID, &owner.ID, cat, "100")
		testutil.CreateTestBudget(t, db, hh.ID, cat.ID, "2026-10", "5000")

		result, err := svc.Leave(owner.ID)
		testutil.AssertNoError(t, err)
		if !result.HouseholdDeleted || result.HouseholdID != hh.ID {
			t.Errorf("expected household %d deleted, got %+v", hh.ID, result)
		}

		var count int64
		db.Model(&models.Household{}).Where("id = ?", hh.ID).Count(&count)
		if count != 0 {
			t.Error("expected household row removed")
		}
		db.Model(&models.Transaction{}).Where("household_id = ?", hh.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected transactions purged, got %d", count)
		}
	})

	t.Run("member_leaves", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		hh, _ := testutil.CreateTestHousehold(t, db)
		member := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, hh.ID, member.ID, models.RoleMember)

		result, err := svc.Leave(member.ID)
		testutil.AssertNoError(t, err)
		if result.HouseholdDeleted {
			t.Error("expected household to survive")
		}
	})

	t.Run("no_membership", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db, "RUB")
		loner := testutil.CreateTestUser(t, db)

		_, err := svc.Leave(loner.ID)
		testutil.AssertAppError(t, err, "NO_MEMBERSHIP")
	})
}
