package domain

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// CartLine is one product in the current user's cart. A line with
// quantity <= 0 must not exist; removal is the only representation of zero.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef"`
	Quantity  int             `json:"quantity"`
}

// CartSnapshot is the in-memory copy of the server cart. It is replaced
// wholesale after every successful mutation or refresh, never patched.
type CartSnapshot struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

func EmptySnapshot() CartSnapshot {
	return CartSnapshot{Total: decimal.Zero}
}

// BuildSnapshot derives itemCount and total from the given lines.
// Total is rounded to 2 decimal places. Line order is preserved.
func BuildSnapshot(lines []CartLine) CartSnapshot {
	count := 0
	total := decimal.Zero
	for _, l := range lines {
		count += l.Quantity
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return CartSnapshot{
		Lines:     lines,
		ItemCount: count,
		Total:     total.Round(2),
	}
}

// Line returns the line for the given product id, if present.
func (c CartSnapshot) Line(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

func (c CartSnapshot) Empty() bool { return c.ItemCount == 0 }

var productIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// ValidProductID reports whether s is a well-formed backend product
// identifier. Malformed ids are rejected client-side before any network call.
func ValidProductID(s string) bool {
	return productIDPattern.MatchString(s)
}
