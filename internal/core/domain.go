package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical form every transaction date is stored in.
// Zero-padded so string comparison orders the same way the calendar does.
const DateLayout = "2006-01-02"

// ClearConfirmationToken must accompany a clear-all request verbatim.
const ClearConfirmationToken = "DELETE_ALL_DATA"

type (
	// Transaction is one recorded sale or service event. Records are
	// append-only: never updated, removed only by the bulk clear.
	Transaction struct {
		ID           int64     `json:"id"`
		CustomerName string    `json:"customerName"`
		PhoneNumber  string    `json:"phoneNumber"`
		Service      string    `json:"service"`
		AmountPaid   float64   `json:"amountPaid"`
		ServiceBy    string    `json:"serviceBy"`
		Expenses     float64   `json:"expenses"`
		Date         string    `json:"date"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// Message is one chat entry between the portal and the dashboard.
	Message struct {
		ID          int64     `json:"id"`
		Text        string    `json:"text"`
		Sender      string    `json:"sender"`
		CreatedAt   time.Time `json:"createdAt"`
		DisplayTime string    `json:"displayTime"`
	}

	// TransactionInput carries caller-supplied fields for a new transaction.
	// Date is kept raw here; NormalizeDate converts it to DateLayout.
	TransactionInput struct {
		CustomerName string  `json:"customerName"`
		PhoneNumber  string  `json:"phoneNumber"`
		Service      string  `json:"service"`
		AmountPaid   float64 `json:"amountPaid"`
		ServiceBy    string  `json:"serviceBy"`
		Expenses     float64 `json:"expenses"`
		Date         string  `json:"date"`
	}

	// MessageInput carries caller-supplied fields for a new chat message.
	MessageInput struct {
		Text   string `json:"text"`
		Sender string `json:"sender"`
	}
)

var (
	ErrMissingCustomerName = errors.New("customer name is required")
	ErrMissingPhoneNumber  = errors.New("phone number is required")
	ErrMissingService      = errors.New("service is required")
	ErrInvalidAmount       = errors.New("amount paid must be a positive number")
	ErrMissingServiceBy    = errors.New("service by is required")
	ErrNegativeExpenses    = errors.New("expenses cannot be negative")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyText           = errors.New("message text is required")
	ErrEmptySender         = errors.New("message sender is required")
	ErrBadConfirmation     = errors.New("confirmation token mismatch")
)

var validationErrors = []error{
	ErrMissingCustomerName,
	ErrMissingPhoneNumber,
	ErrMissingService,
	ErrInvalidAmount,
	ErrMissingServiceBy,
	ErrNegativeExpenses,
	ErrInvalidDate,
	ErrEmptyText,
	ErrEmptySender,
}

// IsValidationError reports whether err stems from rejected caller input,
// as opposed to a storage or infrastructure failure.
func IsValidationError(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// acceptedDateLayouts are the representations NormalizeDate understands,
// tried in order.
var acceptedDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return ErrMissingCustomerName
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return ErrMissingPhoneNumber
	}
	if strings.TrimSpace(in.Service) == "" {
		return ErrMissingService
	}
	// Zero is rejected alongside negatives: a sale with nothing paid is
	// treated as a missing amount.
	if in.AmountPaid <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(in.ServiceBy) == "" {
		return ErrMissingServiceBy
	}
	if in.Expenses < 0 {
		return ErrNegativeExpenses
	}
	if strings.TrimSpace(in.Date) == "" {
		return ErrInvalidDate
	}
	if _, err := NormalizeDate(in.Date); err != nil {
		return err
	}
	return nil
}

func (in MessageInput) Validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return ErrEmptyText
	}
	if strings.TrimSpace(in.Sender) == "" {
		return ErrEmptySender
	}
	return nil
}

// NormalizeDate converts any accepted date representation to DateLayout.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidDate
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", ErrInvalidDate
}

// FormatDisplayTime renders the clock portion of a timestamp the way the
// chat panes show it.
func FormatDisplayTime(t time.Time) string {
	return t.Format("3:04:05 PM")
}

// NetProfit is the per-transaction margin used by exports.
func (t Transaction) NetProfit() float64 {
	return t.AmountPaid - t.Expenses
}
