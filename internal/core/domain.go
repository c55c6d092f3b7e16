package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinYear = 2000
	MaxYear = 3000

	MaxCategoryLen = 50
	MaxNoteLen     = 200

	DateLayout = "2006-01-02"
)

var (
	ErrInvalidYear  = errors.New("year must be between 2000 and 3000")
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidDate  = errors.New("date must be a calendar date in YYYY-MM-DD format")

	dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

type (
	Date struct {
		time.Time
	}

	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Period is one user's ledger for a calendar month. At most one exists
	// per (UserID, Year, Month).
	Period struct {
		ID        string
		UserID    string
		Year      int
		Month     int
		Salary    Money
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Expense struct {
		ID        string
		PeriodID  string
		Category  string
		Amount    Money
		Date      Date
		Note      string
		CreatedAt time.Time
	}

	// ExpenseInput is the raw caller payload for a new expense.
	ExpenseInput struct {
		Year     int
		Month    int
		Category string
		Amount   string
		Date     string
		Note     string
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts exactly YYYY-MM-DD and rejects impossible dates.
func ParseDate(s string) (Date, error) {
	if !dateShape.MatchString(s) {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// ValidateYearMonth checks the period coordinates.
func ValidateYearMonth(year, month int) error {
	ve := &ValidationError{}
	checkYearMonth(ve, year, month)
	return ve.OrNil()
}

func checkYearMonth(ve *ValidationError, year, month int) {
	if year < MinYear || year > MaxYear {
		ve.Add("year", ErrInvalidYear.Error())
	}
	if month < 1 || month > 12 {
		ve.Add("month", ErrInvalidMonth.Error())
	}
}

func amountMessage(field string, err error) string {
	if errors.Is(err, ErrAmountTooLarge) {
		return field + " must be at most 9999999999.99"
	}
	return field + " must be a non-negative decimal with at most two fractional digits"
}

// ParseSalary validates the period coordinates and the salary string.
func ParseSalary(year, month int, salary string) (Money, error) {
	ve := &ValidationError{}
	checkYearMonth(ve, year, month)
	m, err := ParseAmount(salary)
	if err != nil {
		ve.Add("salary", amountMessage("salary", err))
	}
	if err := ve.OrNil(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Parse validates every field of the input and returns the expense to
// insert. PeriodID and ID are left for the caller.
//
// The date is not compared with Year/Month: entries dated outside their
// period are accepted.
//
// Category is trimmed before its length is checked and is stored trimmed.
// A blank category is rejected, and surrounding spaces do not count
// toward the 50 character limit.
func (in ExpenseInput) Parse() (Expense, error) {
	ve := &ValidationError{}
	checkYearMonth(ve, in.Year, in.Month)

	category := strings.TrimSpace(in.Category)
	if n := utf8.RuneCountInString(category); n < 1 || n > MaxCategoryLen {
		ve.Add("category", "category must be between 1 and 50 characters")
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		ve.Add("amount", amountMessage("amount", err))
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		ve.Add("date", err.Error())
	}

	if utf8.RuneCountInString(in.Note) > MaxNoteLen {
		ve.Add("note", "note must be at most 200 characters")
	}

	if err := ve.OrNil(); err != nil {
		return Expense{}, err
	}
	return Expense{
		Category: category,
		Amount:   amount,
		Date:     date,
		Note:     in.Note,
	}, nil
}
