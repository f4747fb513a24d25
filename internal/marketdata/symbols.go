package marketdata

import "strings"

// cryptoTickers are bare crypto symbols that the provider only knows in
// paired-quote form.
var cryptoTickers = map[string]struct{}{
	"BTC":  {},
	"ETH":  {},
	"SOL":  {},
	"ADA":  {},
	"DOGE": {},
	"XRP":  {},
}

// quoteCurrency is appended to bare crypto tickers.
const quoteCurrency = "USD"

// ProviderSymbol translates an internal symbol to the provider's expected
// format: bare crypto tickers get a quote-currency suffix (BTC -> BTC-USD),
// everything else is passed through upper-cased.
func ProviderSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := cryptoTickers[s]; ok {
		return s + "-" + quoteCurrency
	}
	return s
}

// IsCrypto reports whether a bare symbol is a known crypto ticker.
func IsCrypto(symbol string) bool {
	_, ok := cryptoTickers[strings.ToUpper(strings.TrimSpace(symbol))]
	return ok
}
