package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kopilka/internal/config"
	"kopilka/internal/logger"
	"kopilka/internal/middleware"
	"kopilka/internal/models"
	"kopilka/internal/testutil"
)

func init() {
	logger.Init("test")
}

func testEnv(db *gorm.DB) *env {
	cfg := &config.Config{
		DBDriver:         "sqlite",
		JWTSecret:        "cli-secret",
		JWTExpirationDur: time.Hour,
	}
	return &env{
		loadConfig: func() (*config.Config, error) { return cfg, nil },
		openDB: func(*config.Config) (*gorm.DB, func() error, error) {
			if db == nil {
				return nil, nil, errors.New("no database")
			}
			return db, func() error { return nil }, nil
		},
	}
}

func runCtl(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(e)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenIssue(t *testing.T) {
	out, err := runCtl(t, testEnv(nil), "token", "issue", "tg:42", "--ttl", "10m")
	require.NoError(t, err)

	identity, err := middleware.ParseToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "tg:42", identity)

	_, err = runCtl(t, testEnv(nil), "token", "issue")
	assert.Error(t, err)
}

func TestCategoriesNormalize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	hh, _ := testutil.CreateTestHousehold(t, db)
	other, _ := testutil.CreateTestHousehold(t, db)
	keep := testutil.CreateTestCategory(t, db, hh.ID, "Продукты")
	dup := testutil.CreateTestCategory(t, db, hh.ID, "продукты ")
	testutil.CreateTestTransaction(t, db, hh.ID, nil, dup, "100")
	testutil.CreateTestCategory(t, db, other.ID, "Кафе")

	out, err := runCtl(t, testEnv(db), "categories", "normalize")
	require.NoError(t, err)
	assert.Contains(t, out, "2 household(s) checked, 1 group(s) merged")

	var names []string
	db.Model(&models.Category{}).Where("household_id = ?", hh.ID).Pluck("name", &names)
	assert.Len(t, names, 1)

	var moved int64
	db.Model(&models.Transaction{}).Where("household_id = ? AND category_id = ?", hh.ID, keep.ID).Count(&moved)
	assert.Equal(t, int64(1), moved)

	var audits int64
	db.Model(&models.AuditLog{}).Where("household_id = ? AND action = ?", hh.ID, "NORMALIZE_CATEGORIES").Count(&audits)
	assert.Equal(t, int64(1), audits)

	out, err = runCtl(t, testEnv(db), "categories", "normalize", "--household", "999")
	require.NoError(t, err)
	assert.Contains(t, out, "1 household(s) checked, 0 group(s) merged")
}

func TestRemindersDue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	hh, _ := testutil.CreateTestHousehold(t, db)

	past := time.Now().UTC().Add(-time.Hour)
	rent := models.Reminder{HouseholdID: hh.ID, Title: "Аренда", Currency: "RUB", NextRunAt: past, IsActive: true}
	rent.Amount.Decimal = testutil.Amount(t, "8000")
	rent.Amount.Valid = true
	require.NoError(t, db.Create(&rent).Error)
	later := models.Reminder{HouseholdID: hh.ID, Title: "Страховка", NextRunAt: past.Add(72 * time.Hour), IsActive: true}
	require.NoError(t, db.Create(&later).Error)

	out, err := runCtl(t, testEnv(db), "reminders", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Аренда")
	assert.Contains(t, out, "8000.00 RUB")
	assert.NotContains(t, out, "Страховка")
}

func TestDatabaseErrors(t *testing.T) {
	_, err := runCtl(t, testEnv(nil), "reminders", "due")
	assert.ErrorContains(t, err, "opening database")

	_, err = runCtl(t, testEnv(nil), "migrate", "up")
	assert.ErrorContains(t, err, "DB_DRIVER=postgres")
}
