package instrument

import (
	"fmt"
	"regexp"
	"strings"
)

// Broker is the profile of a broker: who it is and how its symbols look.
type Broker struct {
	ID            string
	Name          string
	Description   string
	ImportFormats []string  // e.g. "csv", "mt5".
	Patterns      []Pattern // tried in order when no explicit alias exists.
}

// Pattern rewrites a broker symbol into a canonical symbol.
//
// Expr is matched case-insensitively against the whole broker symbol, and
// Canonical is a template where $1, $2... are replaced by the upper-cased
// submatches. For instance OANDA symbols follow
//
//	Pattern{Expr: `^([A-Z]{3})_([A-Z]{3})$`, Canonical: "$1$2"}
type Pattern struct {
	Expr      string `json:"expr"`
	Canonical string `json:"canonical"`
}

// compiledPattern is a Pattern ready to be matched.
type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

func compilePattern(p Pattern) (compiledPattern, error) {
	expr := p.Expr
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return compiledPattern{}, NewFieldError(ErrConfiguration, "pattern", "invalid expression %q: %v", p.Expr, err)
	}
	return compiledPattern{Pattern: p, re: re}, nil
}

// expand returns the canonical symbol for 'symbol', if the pattern matches.
func (p compiledPattern) expand(symbol string) (string, bool) {
	m := p.re.FindStringSubmatch(symbol)
	if m == nil {
		return "", false
	}
	canonical := p.Canonical
	// replace from the highest group so that $1 does not eat into $10.
	for i := len(m) - 1; i >= 1; i-- {
		canonical = strings.ReplaceAll(canonical, fmt.Sprintf("$%d", i), strings.ToUpper(m[i]))
	}
	return NormalizeSymbol(canonical), true
}

// normalizeBroker returns the canonical form of a broker id.
func normalizeBroker(id string) string { return strings.ToLower(strings.TrimSpace(id)) }
