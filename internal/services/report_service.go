package services

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

const (
	uncategorized    = "Uncategorized"
	unattributedName = "unattributed"
)

// reportService computes read-only rollups over a lookback window.
type reportService struct {
	db  *gorm.DB
	now clock
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db, now: utcNow}
}

// window loads the household's transactions dated at or after now minus
// window.Days, oldest first. kind narrows the rows when non-empty.
func (s *reportService) window(householdID uint, window ReportWindow, kind models.TransactionKind) ([]models.Transaction, string, error) {
	if window.Days < 1 {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be at least 1")
	}
	fallback, err := householdCurrency(s.db, householdID)
	if err != nil {
		return nil, "", err
	}

	cutoff := s.now().AddDate(0, 0, -window.Days)
	q := s.db.Preload("User").Where("household_id = ? AND date >= ?", householdID, cutoff)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if window.UserID != nil {
		q = q.Where("user_id = ?", *window.UserID)
	}

	var transactions []models.Transaction
	if err := q.Order("date ASC, id ASC").Find(&transactions).Error; err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	currency := fallback
	if len(transactions) > 0 && transactions[0].Currency != "" {
		currency = transactions[0].Currency
	}
	return transactions, currency, nil
}

// Transactions returns every transaction of the window, oldest first.
func (s *reportService) Transactions(householdID uint, window ReportWindow) ([]models.Transaction, error) {
	transactions, _, err := s.window(householdID, window, "")
	return transactions, err
}

// Summary totals expenses of the window and breaks them down by category text.
func (s *reportService) Summary(householdID uint, window ReportWindow) (*Summary, error) {
	expenses, currency, err := s.window(householdID, window, models.KindExpense)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, t := range expenses {
		total = total.Add(t.Amount)
		key := strings.TrimSpace(t.Category)
		if key == "" {
			key = uncategorized
		}
		byCategory[key] = byCategory[key].Add(t.Amount)
	}

	categories := make(map[string]float64, len(byCategory))
	for name, sum := range byCategory {
		categories[name] = sum.Round(2).InexactFloat64()
	}
	return &Summary{
		Days:        window.Days,
		Currency:    currency,
		TotalAmount: total.Round(2).InexactFloat64(),
		Categories:  categories,
	}, nil
}

// Balance compares incomes with expenses over the window.
func (s *reportService) Balance(householdID uint, window ReportWindow) (*Balance, error) {
	transactions, currency, err := s.window(householdID, window, "")
	if err != nil {
		return nil, err
	}

	var expenses, incomes decimal.Decimal
	for _, t := range transactions {
		switch t.Kind {
		case models.KindExpense:
			expenses = expenses.Add(t.Amount)
		case models.KindIncome:
			incomes = incomes.Add(t.Amount)
		}
	}
	return &Balance{
		Days:     window.Days,
		Currency: currency,
		Expenses: expenses.Round(2).InexactFloat64(),
		Incomes:  incomes.Round(2).InexactFloat64(),
		Net:      incomes.Sub(expenses).Round(2).InexactFloat64(),
	}, nil
}

// Members sums expenses per user, largest first.
func (s *reportService) Members(householdID uint, window ReportWindow) (*MembersReport, error) {
	expenses, currency, err := s.window(householdID, window, models.KindExpense)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		userID *uint
		name   string
		sum    decimal.Decimal
	}
	var order []uint
	buckets := make(map[uint]*bucket)
	for _, t := range expenses {
		var key uint
		if t.UserID != nil {
			key = *t.UserID
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: unattributedName}
			if t.UserID != nil {
				id := *t.UserID
				b.userID = &id
				if t.User != nil {
					b.name = t.User.Label()
				}
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum = b.sum.Add(t.Amount)
	}

	members := make([]MemberTotal, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		members = append(members, MemberTotal{UserID: b.userID, Name: b.name, Amount: b.sum.Round(2).InexactFloat64()})
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Amount > members[j].Amount
	})
	return &MembersReport{Days: window.Days, Currency: currency, Members: members}, nil
}

// Shops sums expenses per merchant. Rows whose merchant cannot be worked out
// are left out, as are merchants with a non-positive total.
func (s *reportService) Shops(householdID uint, window ReportWindow) (*ShopsReport, error) {
	expenses, currency, err := s.window(householdID, window, models.KindExpense)
	if err != nil {
		return nil, err
	}

	var order []string
	names := make(map[string]string)
	sums := make(map[string]decimal.Decimal)
	for _, t := range expenses {
		merchant := resolveMerchant(t)
		if merchant == "" {
			continue
		}
		key := strings.ToLower(merchant)
		if _, ok := names[key]; !ok {
			names[key] = merchant
			order = append(order, key)
		}
		sums[key] = sums[key].Add(t.Amount)
	}

	shops := make([]ShopTotal, 0, len(order))
	for _, key := range order {
		sum := sums[key].Round(2)
		if !sum.IsPositive() {
			continue
		}
		shops = append(shops, ShopTotal{Merchant: names[key], Amount: sum.InexactFloat64()})
	}
	sort.SliceStable(shops, func(i, j int) bool {
		return shops[i].Amount > shops[j].Amount
	})
	return &ShopsReport{Days: window.Days, Currency: currency, Shops: shops}, nil
}
