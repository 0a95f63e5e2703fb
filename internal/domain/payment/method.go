package payment

import "errors"

var ErrUnknownMethod = errors.New("payment: unknown method")

type Method string

const (
	MethodCash   Method = "cash"
	MethodClick  Method = "click"
	MethodPayme  Method = "payme"
	MethodUzum   Method = "uzum"
	MethodPaynet Method = "paynet"
)

// Methods lists every supported method in display order.
var Methods = []Method{MethodCash, MethodClick, MethodPayme, MethodUzum, MethodPaynet}

func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.Valid() {
		return "", ErrUnknownMethod
	}
	return m, nil
}

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodClick, MethodPayme, MethodUzum, MethodPaynet:
		return true
	}
	return false
}

// IsOnline reports whether the method settles on a provider page before the order is paid.
func (m Method) IsOnline() bool {
	return m.Valid() && m != MethodCash
}

func (m Method) Label() string {
	switch m {
	case MethodCash:
		return "Naqd pul"
	case MethodClick:
		return "Click"
	case MethodPayme:
		return "Payme"
	case MethodUzum:
		return "Uzum Bank"
	case MethodPaynet:
		return "Paynet"
	}
	return string(m)
}
