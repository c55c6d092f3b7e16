package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"budget/internal/core"
	ports "budget/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	salarySheet   string
}

var _ ports.Mirror = (*Client)(nil)

type Options struct {
	SpreadsheetID   string
	ExpensesSheet   string
	SalarySheet     string
	CredentialsJSON string
	CredentialsFile string

	// ClientOptions replace the credential lookup when set.
	ClientOptions []goption.ClientOption
}

// New creates a Sheets client. Without ClientOptions it authenticates with
// the service account given inline or by file.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.ExpensesSheet == "" {
		opts.ExpensesSheet = "Expenses"
	}
	if opts.SalarySheet == "" {
		opts.SalarySheet = "Salaries"
	}

	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 {
		creds, err := loadCredentials(ctx, opts.CredentialsJSON, opts.CredentialsFile)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
			goption.WithHTTPClient(newHTTPClientWithPooling()),
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"expenses_sheet", opts.ExpensesSheet,
		"salary_sheet", opts.SalarySheet)

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		expensesSheet: opts.ExpensesSheet,
		salarySheet:   opts.SalarySheet,
	}, nil
}

func loadCredentials(ctx context.Context, inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read service account credentials", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm between
// events.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) AppendExpense(ctx context.Context, ev core.LedgerEvent) error {
	if ev.Expense == nil {
		return errors.New("expense event without expense")
	}
	ref, err := c.appendRow(ctx, c.expensesSheet, ports.ExpenseRow(ev))
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense mirrored", "expense_id", ev.Expense.ID, "sheets_ref", ref)
	return nil
}

func (c *Client) AppendSalary(ctx context.Context, ev core.LedgerEvent) error {
	ref, err := c.appendRow(ctx, c.salarySheet, ports.SalaryRow(ev))
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Salary mirrored", "period_id", ev.PeriodID, "sheets_ref", ref)
	return nil
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) (string, error) {
	rng := fmt.Sprintf("%s!A:H", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// DeleteExpense clears the row whose first column holds expenseID. A
// missing row is not an error: the event may be delivered twice.
func (c *Client) DeleteExpense(ctx context.Context, expenseID string) error {
	rng := fmt.Sprintf("%s!A:A", c.expensesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	row := findRow(resp.Values, expenseID)
	if row == 0 {
		slog.WarnContext(ctx, "Expense row not found in sheet", "expense_id", expenseID, "sheet", c.expensesSheet)
		return nil
	}

	target := rowRange(c.expensesSheet, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, target, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", target, err)
	}
	slog.InfoContext(ctx, "Expense row cleared", "expense_id", expenseID, "sheets_ref", target)
	return nil
}
