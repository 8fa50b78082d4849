package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindExpense EntryKind = "expense"
	KindIncome  EntryKind = "income"
)

// GeneralIncomeName is the label for expenses not linked to any income.
const GeneralIncomeName = "General"

// DefaultCategories are seeded for every new user at registration.
var DefaultCategories = []string{
	"Food", "Transportation", "Clothing", "Bills",
	"Health", "Entertainment", "Other",
}

type (
	EntryKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID       int64
		Username string
		Password string // opaque credential, compared by value
		Email    string
	}

	Category struct {
		ID       int64
		Username string
		Name     string
	}

	// Income is a deposit with an original amount and a live remaining
	// balance. Remaining is derived state: 0 <= Remaining <= Amount.
	Income struct {
		ID        int64
		Username  string
		Name      string
		Amount    Money
		Date      Date
		Remaining Money
	}

	// Expense is a recorded outflow. IncomeID links it to the income it
	// consumes; 0 means the expense is general (unlinked). Category is a
	// plain string value, deliberately not a foreign key.
	Expense struct {
		ID       int64
		Username string
		Name     string
		Category string
		Date     Date
		Amount   Money
		IncomeID int64
	}

	// Entry is the shape shared by expenses and incomes in the activity
	// feed. Category and IncomeID are only meaningful for expenses.
	Entry struct {
		Kind     EntryKind
		ID       int64
		Name     string
		Category string
		Date     Date
		Amount   Money
		IncomeID int64
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidUsername = errors.New("username must be at least 3 characters of letters, numbers, _ or -")
	ErrInvalidPassword = errors.New("password must be at least 6 characters")
	ErrInvalidEmail    = errors.New("invalid email address")

	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// DateLayout is the wire and storage form of ledger dates.
const DateLayout = "2006-01-02"

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (i Income) Validate() error {
	if len(strings.TrimSpace(i.Name)) == 0 {
		return ErrEmptyName
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	return i.Date.Validate()
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return e.Date.Validate()
}

// AsEntry tags an expense for the activity feed.
func (e Expense) AsEntry() Entry {
	return Entry{
		Kind:     KindExpense,
		ID:       e.ID,
		Name:     e.Name,
		Category: e.Category,
		Date:     e.Date,
		Amount:   e.Amount,
		IncomeID: e.IncomeID,
	}
}

// AsEntry tags an income for the activity feed.
func (i Income) AsEntry() Entry {
	return Entry{
		Kind:   KindIncome,
		ID:     i.ID,
		Name:   i.Name,
		Date:   i.Date,
		Amount: i.Amount,
	}
}

// ValidateUsername enforces the registration format rules: at least three
// characters, letters/digits/underscore/hyphen only.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return ErrInvalidUsername
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return ErrInvalidUsername
		}
	}
	return nil
}

// ValidatePassword enforces the minimum credential length. The credential is
// otherwise opaque to this package.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateEmail accepts an empty address (email is optional) or a minimal
// user@host.tld shape.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	if !strings.Contains(email[at+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}
