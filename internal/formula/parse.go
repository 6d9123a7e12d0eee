package formula

import (
	"strconv"
	"strings"
	"unicode"
)

// The expression grammar mirrors ordinary arithmetic with Python-style
// floor-division and power operators. Bitwise operators are kept in the
// grammar for forward compatibility; they are practically unused.
//
//	bitor   := bitxor { "|" bitxor }
//	bitxor  := bitand { "^" bitand }
//	bitand  := shift { "&" shift }
//	shift   := sum { ("<<" | ">>") sum }
//	sum     := product { ("+" | "-") product }
//	product := unary { ("*" | "/" | "//" | "%") unary }
//	unary   := ("+" | "-") unary | power
//	power   := primary [ "**" unary ]
//	primary := NUMBER | STRING | IDENT [ "(" args ")" ] | "(" bitor ")"

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type node interface{}

type numberNode float64

type stringNode string

type nameNode string

type unaryNode struct {
	op      string
	operand node
}

type binaryNode struct {
	op          string
	left, right node
}

type callNode struct {
	fn   string
	args []node
}

// lex splits the source into tokens, or fails with a syntax error on any
// character outside the expression alphabet.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			// Exponent suffix.
			if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
				k := j + 1
				if k < len(src) && (src[k] == '+' || src[k] == '-') {
					k++
				}
				if k < len(src) && src[k] >= '0' && src[k] <= '9' {
					for k < len(src) && src[k] >= '0' && src[k] <= '9' {
						k++
					}
					j = k
				}
			}
			text := src[i:j]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, syntaxErrorf("invalid number %q", text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: num})
			i = j
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(src) && src[j] != quote {
				j++
			}
			if j >= len(src) {
				return nil, syntaxErrorf("unterminated string literal")
			}
			toks = append(toks, token{kind: tokString, text: src[i+1 : j]})
			i = j + 1
		case c == '_' || unicode.IsLetter(rune(c)):
			j := i
			for j < len(src) && (src[j] == '_' || src[j] >= '0' && src[j] <= '9' || unicode.IsLetter(rune(src[j]))) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j]})
			i = j
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case strings.ContainsRune("+-%&|^", rune(c)):
			toks = append(toks, token{kind: tokOp, text: string(c)})
			i++
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				toks = append(toks, token{kind: tokOp, text: "**"})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "*"})
				i++
			}
		case c == '/':
			if i+1 < len(src) && src[i+1] == '/' {
				toks = append(toks, token{kind: tokOp, text: "//"})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "/"})
				i++
			}
		case c == '<' || c == '>':
			if i+1 < len(src) && src[i+1] == c {
				toks = append(toks, token{kind: tokOp, text: string(c) + string(c)})
				i += 2
			} else {
				return nil, syntaxErrorf("unexpected character %q", string(c))
			}
		default:
			return nil, syntaxErrorf("unexpected character %q", string(c))
		}
	}
	toks = append(toks, token{kind: tokEOF, text: ""})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.next()
			return op, true
		}
	}
	return "", false
}

// parse builds the expression tree for the whole source.
func parse(src string) (node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, syntaxErrorf("empty formula")
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErrorf("unexpected %q", t.text)
	}
	return root, nil
}

func (p *parser) parseBitOr() (node, error) {
	return p.parseBinaryLevel([]string{"|"}, p.parseBitXor)
}

func (p *parser) parseBitXor() (node, error) {
	return p.parseBinaryLevel([]string{"^"}, p.parseBitAnd)
}

func (p *parser) parseBitAnd() (node, error) {
	return p.parseBinaryLevel([]string{"&"}, p.parseShift)
}

func (p *parser) parseShift() (node, error) {
	return p.parseBinaryLevel([]string{"<<", ">>"}, p.parseSum)
}

func (p *parser) parseSum() (node, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseProduct)
}

func (p *parser) parseProduct() (node, error) {
	return p.parseBinaryLevel([]string{"*", "//", "/", "%"}, p.parseUnary)
}

func (p *parser) parseBinaryLevel(ops []string, next func() (node, error)) (node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(ops...)
		if !ok {
			return left, nil
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if op, ok := p.acceptOp("+", "-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("**"); ok {
		// Right-associative; the exponent may carry its own sign.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: "**", left: base, right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode(t.num), nil
	case tokString:
		return stringNode(t.text), nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return callNode{fn: t.text, args: args}, nil
		}
		return nameNode(t.text), nil
	case tokLParen:
		inner, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, syntaxErrorf("missing closing parenthesis")
		}
		return inner, nil
	case tokEOF:
		return nil, syntaxErrorf("unexpected end of formula")
	default:
		return nil, syntaxErrorf("unexpected %q", t.text)
	}
}

func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch t := p.next(); t.kind {
		case tokComma:
		case tokRParen:
			return args, nil
		default:
			return nil, syntaxErrorf("unexpected %q in argument list", t.text)
		}
	}
}
