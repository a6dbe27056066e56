package search

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/etnz/instrument"
)

// The query language is small:
//
//	eur usd          both terms (AND is implicit)
//	eur AND usd      same thing
//	gold OR silver   either term, OR binds loosest
//	"s&p 500"        tokens must be consecutive
//	euro -gbp        documents matching gbp are excluded
//
// A term made of several tokens, like EUR/USD, behaves like a phrase.

// term is a single word or quoted phrase of a query.
type term struct {
	text    string // as typed.
	tokens  []string
	compact string
	negate  bool
}

// clause is a conjunction of terms.
type clause struct {
	terms []term
}

// positives returns the non negated terms.
func (c clause) positives() []term {
	var list []term
	for _, t := range c.terms {
		if !t.negate {
			list = append(list, t)
		}
	}
	return list
}

// query is a disjunction of clauses.
type query struct {
	clauses []clause
}

type lexKind int

const (
	lexTerm lexKind = iota
	lexAnd
	lexOr
)

type lexeme struct {
	kind   lexKind
	text   string
	negate bool
}

// lex splits a query text into terms and operators.
func lex(text string) ([]lexeme, error) {
	var list []lexeme
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		negate := false
		if r == '-' {
			negate = true
			i += size
			if i >= len(text) {
				return nil, fmt.Errorf("dangling '-' at the end of %q: %w", text, instrument.ErrInvalidArgument)
			}
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				return nil, fmt.Errorf("dangling '-' in %q: %w", text, instrument.ErrInvalidArgument)
			}
		}
		if r == '"' {
			end := strings.IndexByte(text[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote in %q: %w", text, instrument.ErrInvalidArgument)
			}
			list = append(list, lexeme{kind: lexTerm, text: text[i+1 : i+1+end], negate: negate})
			i += end + 2
			continue
		}
		end := strings.IndexFunc(text[i:], unicode.IsSpace)
		if end < 0 {
			end = len(text) - i
		}
		word := text[i : i+end]
		i += end
		switch {
		case !negate && word == "AND":
			list = append(list, lexeme{kind: lexAnd, text: word})
		case !negate && word == "OR":
			list = append(list, lexeme{kind: lexOr, text: word})
		default:
			list = append(list, lexeme{kind: lexTerm, text: word, negate: negate})
		}
	}
	return list, nil
}

// parse parses a query text.
func parse(text string) (query, error) {
	lexemes, err := lex(text)
	if err != nil {
		return query{}, err
	}
	var q query
	var cur clause
	seen := false // an operand was read since the last OR.
	pending := "" // operator waiting for its right operand.
	for _, lx := range lexemes {
		switch lx.kind {
		case lexAnd, lexOr:
			if !seen || pending != "" {
				return query{}, fmt.Errorf("dangling operator %s in %q: %w", lx.text, text, instrument.ErrInvalidArgument)
			}
			pending = lx.text
			if lx.kind == lexOr {
				q.clauses = append(q.clauses, cur)
				cur, seen = clause{}, false
			}
		default:
			seen, pending = true, ""
			tokens := Tokenize(lx.text)
			if len(tokens) == 0 {
				continue
			}
			cur.terms = append(cur.terms, term{
				text:    lx.text,
				tokens:  tokens,
				compact: strings.Join(tokens, ""),
				negate:  lx.negate,
			})
		}
	}
	if pending != "" {
		return query{}, fmt.Errorf("dangling operator %s at the end of %q: %w", pending, text, instrument.ErrInvalidArgument)
	}
	q.clauses = append(q.clauses, cur)
	return q, nil
}
