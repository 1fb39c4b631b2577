package billing

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billkhata/api/internal/enum"
	"github.com/billkhata/api/internal/shop"
)

// Errors returned by Finalize.
var (
	ErrAlreadyPaid        = errors.New("bill is already paid")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// LineItem is one row of a bill. It has no identity of its own; it belongs
// to the bill that contains it.
type LineItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal returns quantity x price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Bill is one customer transaction. Field names in the persisted JSON keep
// the original record format so existing history records remain readable.
type Bill struct {
	ID            string          `json:"id"`
	ShopID        shop.ID         `json:"shopId"`
	ShopName      string          `json:"shopName"`
	ShopAddress   string          `json:"shopAddress"`
	ShopContact   string          `json:"shopContact"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Items         []LineItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMode   string          `json:"paymentMode,omitempty"`
	PaymentStatus string          `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ShortID returns the last 6 characters of the bill id, the handle shown on
// invoices and matched by history search.
func (b Bill) ShortID() string {
	if len(b.ID) <= 6 {
		return b.ID
	}
	return b.ID[len(b.ID)-6:]
}

// FieldError describes a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every violation found in one create attempt so
// the caller can report them all at once. A failed create never produces a
// partial bill.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Create validates the inputs and builds a new bill in the Due state with
// its total computed and a fresh random id. The creation instant is passed
// in by the caller; Create never reads the clock itself.
func Create(s shop.Info, customerName, customerPhone string, items []LineItem, now time.Time) (Bill, error) {
	var verrs ValidationErrors

	if utf8.RuneCountInString(strings.TrimSpace(customerName)) < 2 {
		verrs = append(verrs, FieldError{Field: "customerName", Message: "name must be at least 2 characters"})
	}
	if !phonePattern.MatchString(customerPhone) {
		verrs = append(verrs, FieldError{Field: "customerPhone", Message: "must be a valid 10-digit phone number"})
	}
	if len(items) == 0 {
		verrs = append(verrs, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			verrs = append(verrs, FieldError{Field: fmt.Sprintf("items[%d].name", i), Message: "item name is required"})
		}
		if item.Quantity < 1 {
			verrs = append(verrs, FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be at least 1"})
		}
		if item.Price.IsNegative() {
			verrs = append(verrs, FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "price must not be negative"})
		}
	}
	if len(verrs) > 0 {
		return Bill{}, verrs
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return Bill{
		ID:            uuid.New().String(),
		ShopID:        s.ID,
		ShopName:      s.Name,
		ShopAddress:   s.Address,
		ShopContact:   s.Contact,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Items:         items,
		TotalAmount:   total,
		PaymentStatus: enum.PaymentStatusDue,
		CreatedAt:     now,
	}, nil
}

// Finalize marks a Due bill as paid with the given payment mode. It is a
// pure transformation: the input bill is not modified and nothing is
// persisted here.
func Finalize(b Bill, paymentMode string) (Bill, error) {
	if paymentMode != enum.PaymentModeCash && paymentMode != enum.PaymentModeUPI {
		return Bill{}, ErrInvalidPaymentMode
	}
	if b.PaymentStatus != enum.PaymentStatusDue {
		return Bill{}, ErrAlreadyPaid
	}
	paid := b
	paid.PaymentMode = paymentMode
	paid.PaymentStatus = enum.PaymentStatusPaid
	return paid, nil
}
