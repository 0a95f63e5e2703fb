package payment

// Merchants holds per-provider credentials. Empty values leave the provider unconfigured.
type Merchants struct {
	ClickServiceID  string
	ClickMerchantID string
	PaymeMerchantID string
	UzumMerchantID  string
	PaynetServiceID string
}

// Toggles are the admin-controlled per-method switches.
type Toggles map[Method]bool

// Option is a method as offered to the storefront.
type Option struct {
	Method Method `json:"method"`
	Label  string `json:"label"`
	Online bool   `json:"online"`
}

type Resolver struct {
	merchants Merchants
}

func NewResolver(m Merchants) *Resolver {
	return &Resolver{merchants: m}
}

// IsConfigured reports whether the deployment carries credentials for the method.
func (r *Resolver) IsConfigured(m Method) bool {
	switch m {
	case MethodCash:
		return true
	case MethodClick:
		return r.merchants.ClickServiceID != "" && r.merchants.ClickMerchantID != ""
	case MethodPayme:
		return r.merchants.PaymeMerchantID != ""
	case MethodUzum:
		return r.merchants.UzumMerchantID != ""
	case MethodPaynet:
		return r.merchants.PaynetServiceID != ""
	}
	return false
}

func (r *Resolver) IsOnline(m Method) bool { return m.IsOnline() }

func (r *Resolver) IsEnabled(m Method, t Toggles) bool {
	return r.IsConfigured(m) && t[m]
}

// Available returns the enabled methods in display order.
func (r *Resolver) Available(t Toggles) []Option {
	out := make([]Option, 0, len(Methods))
	for _, m := range Methods {
		if r.IsEnabled(m, t) {
			out = append(out, Option{Method: m, Label: m.Label(), Online: m.IsOnline()})
		}
	}
	return out
}
