package http

import (
	"net/url"
	"strconv"
	"strings"

	"budget/internal/core"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type salaryRequest struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Salary string `json:"salary"`
}

type expenseRequest struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Note     string `json:"note"`
}

func (r expenseRequest) input() core.ExpenseInput {
	return core.ExpenseInput{
		Year:     r.Year,
		Month:    r.Month,
		Category: sanitizeInput(r.Category),
		Amount:   strings.TrimSpace(r.Amount),
		Date:     strings.TrimSpace(r.Date),
		Note:     sanitizeInput(r.Note),
	}
}

// parseYearMonth reads the required year and month query parameters.
// Missing or non-numeric values are reported per field.
func parseYearMonth(query url.Values) (int, int, error) {
	ve := &core.ValidationError{}
	year, yerr := strconv.Atoi(strings.TrimSpace(query.Get("year")))
	if yerr != nil {
		ve.Add("year", core.ErrInvalidYear.Error())
	}
	month, merr := strconv.Atoi(strings.TrimSpace(query.Get("month")))
	if merr != nil {
		ve.Add("month", core.ErrInvalidMonth.Error())
	}
	if err := ve.OrNil(); err != nil {
		return 0, 0, err
	}
	if err := core.ValidateYearMonth(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// sanitizeInput drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
