package order

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	receiptRule  = "═══════════════════════════"
	receiptSplit = "───────────────────────────"
)

// Receipt renders the customer-facing text receipt in the given location.
func (o *Order) Receipt(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	at := o.CreatedAt.In(loc)

	lines := []string{
		receiptRule,
		"        🍔 AJABO BURGER",
		"           CHEK",
		receiptRule,
		"",
		"📅 " + at.Format("2006-01-02") + "   🕐 " + at.Format("15:04"),
		"📋 Buyurtma: #" + shortID(o.ID),
		"",
		receiptSplit,
		"🍔 " + o.ProductName,
		"   " + strconv.Itoa(o.Quantity) + " x " + FormatPrice(o.UnitPrice()),
		receiptSplit,
		"💰 JAMI: " + FormatPrice(o.TotalPrice),
		receiptSplit,
		"",
		"👤 " + o.CustomerName,
		"📞 " + o.PhoneNumber,
		"💳 " + o.PaymentMethod.Label(),
		"📦 " + o.OrderType.Label(),
		"",
		receiptRule,
		"    Xaridingiz uchun rahmat!",
		receiptRule,
	}
	return strings.Join(lines, "\n")
}

// FormatPrice groups thousands with spaces and appends the currency.
func FormatPrice(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " so'm"
	if neg {
		out = "-" + out
	}
	return out
}

// DisplayID turns a raw id into the short AA-prefixed form shown to customers.
func DisplayID(raw string) string {
	if raw != "" && isDigits(raw) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			s := strconv.FormatInt(n, 10)
			if len(s) < 6 {
				s = strings.Repeat("0", 6-len(s)) + s
			}
			return "AA" + s
		}
	}
	clean := strings.ToUpper(strings.ReplaceAll(raw, "-", ""))
	if len(clean) > 6 {
		clean = clean[:6]
	}
	return "AA" + clean
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
