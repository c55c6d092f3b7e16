package core

// Summary is derived on every read and never stored.
type Summary struct {
	Salary        Money
	TotalExpenses Money
	Balance       Money
}

// SummaryStrings is the wire form of a Summary.
type SummaryStrings struct {
	Salary        string `json:"salary"`
	TotalExpenses string `json:"totalExpenses"`
	Balance       string `json:"balance"`
}

// Summarize adds up the expenses of a period. A nil period yields zeros.
// A total outside the int64 cent range fails with ErrAmountOverflow rather
// than wrapping.
func Summarize(p *Period, expenses []Expense) (Summary, error) {
	if p == nil {
		return Summary{}, nil
	}
	var (
		total Money
		err   error
	)
	for _, e := range expenses {
		if total, err = total.Add(e.Amount); err != nil {
			return Summary{}, err
		}
	}
	balance, err := p.Salary.Sub(total)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Salary:        p.Salary,
		TotalExpenses: total,
		Balance:       balance,
	}, nil
}

func (s Summary) Strings() SummaryStrings {
	return SummaryStrings{
		Salary:        s.Salary.String(),
		TotalExpenses: s.TotalExpenses.String(),
		Balance:       s.Balance.String(),
	}
}
