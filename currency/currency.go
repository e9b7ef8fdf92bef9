// Package currency переводит текстовый вывод PostgreSQL MONEY в числа.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrEmpty = errors.New("empty currency value")

var replacer = strings.NewReplacer("$", "", ",", "")

// ParseDecimal разбирает строки вида "$1,234.56", "-$5.00" и "($5.00)".
// Уже очищенное значение "1234.56" разбирается так же.
func ParseDecimal(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Zero, ErrEmpty
	}

	negative := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		negative = true
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	v = replacer.Replace(v)
	if strings.HasPrefix(v, "-") {
		negative = !negative
		v = v[1:]
	}
	if v == "" {
		return decimal.Zero, fmt.Errorf("parse currency %q: %w", s, ErrEmpty)
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse currency %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Parse возвращает значение как float64
func Parse(s string) (float64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
