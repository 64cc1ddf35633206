package search

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

type nodeKind int

const (
	nodeAnd nodeKind = iota
	nodeOr
	nodeTerm
	nodeKeyword
)

// Node is a parsed query. Terms carry Field/Op/Value, keywords only Value.
type Node struct {
	Kind     nodeKind
	Children []*Node
	Field    string
	Op       string
	Value    string
}

type token struct {
	text   string
	quoted bool
}

var (
	labelled  = regexp.MustCompile(`^(.+) \((.+)\)$`)
	labelText = regexp.MustCompile(`[:=<>!"()]|\b(AND|OR)\b`)
	termShape = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(:|!=|>=|<=|==|=|>|<)(.*)$`)
)

// Unwrap strips the "Saved filter name (condition)" form used by saved filters.
func Unwrap(query string) string {
	query = strings.TrimSpace(query)
	if m := labelled.FindStringSubmatch(query); m != nil && !labelText.MatchString(m[1]) {
		return strings.TrimSpace(m[2])
	}
	return query
}

// Parse builds a query tree. OR binds looser than AND, and adjacent terms
// without an operator are joined with AND. An empty query returns nil.
func Parse(query string) (*Node, error) {
	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("unexpected %q at position %d", p.tokens[p.pos].text, p.pos)
	}
	return node, nil
}

func tokenize(query string) ([]token, error) {
	var tokens []token
	runes := []rune(query)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(' || r == ')':
			tokens = append(tokens, token{text: string(r)})
			i++
		case r == '"':
			end := indexRune(runes, i+1, '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote")
			}
			tokens = append(tokens, token{text: string(runes[i+1 : end]), quoted: true})
			i = end + 1
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '(' && runes[i] != ')' {
				if runes[i] == '"' {
					end := indexRune(runes, i+1, '"')
					if end < 0 {
						return nil, fmt.Errorf("unterminated quote")
					}
					i = end + 1
					continue
				}
				i++
			}
			tokens = append(tokens, token{text: string(runes[start:i])})
		}
	}

	return tokens, nil
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) isKeyword(word string) bool {
	t, ok := p.peek()
	return ok && !t.quoted && t.text == word
}

func (p *parser) parseOr() (*Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}
	for p.isKeyword("OR") {
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &Node{Kind: nodeOr, Children: children}, nil
}

func (p *parser) parseAnd() (*Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}
	for {
		t, ok := p.peek()
		if !ok || (!t.quoted && (t.text == ")" || t.text == "OR")) {
			break
		}
		if !t.quoted && t.text == "AND" {
			p.pos++
		}
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &Node{Kind: nodeAnd, Children: children}, nil
}

func (p *parser) parseUnary() (*Node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of query")
	}
	p.pos++

	if !t.quoted && t.text == "(" {
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing, ok := p.peek(); !ok || closing.quoted || closing.text != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return node, nil
	}
	if !t.quoted && (t.text == ")" || t.text == "AND" || t.text == "OR") {
		return nil, fmt.Errorf("unexpected %q", t.text)
	}

	if !t.quoted {
		if m := termShape.FindStringSubmatch(t.text); m != nil {
			op := m[2]
			if op == "==" {
				op = "="
			}
			return &Node{Kind: nodeTerm, Field: strings.ToLower(m[1]), Op: op, Value: strings.Trim(m[3], `"`)}, nil
		}
	}
	return &Node{Kind: nodeKeyword, Value: t.text}, nil
}
