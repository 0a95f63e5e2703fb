package payment

import (
	"encoding/base64"
	"errors"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformedLink = errors.New("payment: malformed link")

var mobileAgent = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

const (
	clickWebURL   = "https://my.click.uz/services/pay"
	clickAppURL   = "click://pay"
	paymeCheckout = "https://checkout.paycom.uz/"
	uzumPayURL    = "https://uzumbank.uz/pay"
	paynetPayURL  = "https://paynet.uz/pay"
)

// Request is the data embedded into a provider redirect.
type Request struct {
	OrderID     string
	Amount      float64
	ProductName string
	PhoneNumber string
}

// Generator builds provider redirect URLs. Output depends only on its inputs and configuration.
type Generator struct {
	resolver  *Resolver
	merchants Merchants
	baseURL   string
}

func NewGenerator(m Merchants, publicBaseURL string) *Generator {
	return &Generator{
		resolver:  NewResolver(m),
		merchants: m,
		baseURL:   strings.TrimRight(publicBaseURL, "/"),
	}
}

// Generate returns the redirect URL for an online method, or false when none can be built.
func (g *Generator) Generate(m Method, req Request, userAgent string) (string, bool) {
	if strings.TrimSpace(req.OrderID) == "" || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return "", false
	}
	if !m.IsOnline() || !g.resolver.IsConfigured(m) {
		return "", false
	}

	amount := formatAmount(req.Amount)
	returnURL := g.ReturnURL(true, req.OrderID, m, req.Amount)

	switch m {
	case MethodClick:
		q := query(
			"service_id", g.merchants.ClickServiceID,
			"merchant_id", g.merchants.ClickMerchantID,
			"amount", amount,
			"transaction_param", req.OrderID,
			"return_url", returnURL,
		)
		if IsMobile(userAgent) {
			return clickAppURL + "?" + q, true
		}
		return clickWebURL + "?" + q, true
	case MethodPayme:
		tiyin := int64(math.Round(req.Amount * 100))
		params := "m=" + g.merchants.PaymeMerchantID +
			";ac.order_id=" + req.OrderID +
			";a=" + strconv.FormatInt(tiyin, 10) +
			";c=" + returnURL
		return paymeCheckout + base64.StdEncoding.EncodeToString([]byte(params)), true
	case MethodUzum:
		return uzumPayURL + "?" + query(
			"merchant_id", g.merchants.UzumMerchantID,
			"amount", amount,
			"order_id", req.OrderID,
			"return_url", returnURL,
		), true
	case MethodPaynet:
		return paynetPayURL + "?" + query(
			"service_id", g.merchants.PaynetServiceID,
			"amount", amount,
			"order_id", req.OrderID,
			"return_url", returnURL,
		), true
	}
	return "", false
}

// ReturnURL points the provider back at the success or failure page.
func (g *Generator) ReturnURL(success bool, orderID string, m Method, amount float64) string {
	page := "/payment/failed"
	if success {
		page = "/payment/success"
	}
	return g.baseURL + page + "?" + query(
		"order_id", orderID,
		"method", string(m),
		"amount", formatAmount(amount),
	)
}

// IsMobile reports whether the user agent belongs to a phone or tablet.
func IsMobile(userAgent string) bool {
	return mobileAgent.MatchString(userAgent)
}

// ParseLink extracts the order id and amount embedded in a generated link.
func ParseLink(m Method, link string) (orderID string, amount float64, err error) {
	switch m {
	case MethodPayme:
		raw, ok := strings.CutPrefix(link, paymeCheckout)
		if !ok {
			return "", 0, ErrMalformedLink
		}
		decoded, decErr := base64.StdEncoding.DecodeString(raw)
		if decErr != nil {
			return "", 0, ErrMalformedLink
		}
		var tiyin int64 = -1
		for _, part := range strings.Split(string(decoded), ";") {
			k, v, _ := strings.Cut(part, "=")
			switch k {
			case "ac.order_id":
				orderID = v
			case "a":
				tiyin, err = strconv.ParseInt(v, 10, 64)
				if err != nil {
					return "", 0, ErrMalformedLink
				}
			}
		}
		if orderID == "" || tiyin < 0 {
			return "", 0, ErrMalformedLink
		}
		return orderID, float64(tiyin) / 100, nil
	case MethodClick, MethodUzum, MethodPaynet:
		u, perr := url.Parse(link)
		if perr != nil {
			return "", 0, ErrMalformedLink
		}
		q := u.Query()
		key := "order_id"
		if m == MethodClick {
			key = "transaction_param"
		}
		orderID = q.Get(key)
		amount, err = strconv.ParseFloat(q.Get("amount"), 64)
		if orderID == "" || err != nil {
			return "", 0, ErrMalformedLink
		}
		return orderID, amount, nil
	}
	return "", 0, ErrUnknownMethod
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// query encodes key/value pairs in the given order.
func query(kv ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[i]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[i+1]))
	}
	return b.String()
}
