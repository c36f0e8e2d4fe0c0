// Package parser implements SQALE's recursive-descent parser: one token
// of look-ahead over the lexer's token stream, turning it into the
// uniform bracketed ast.Node tree.
package parser

import (
	"strconv"
	"strings"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/lexer"
)

// Parser reads forms from a Lexer with one token of look-ahead.
type Parser struct {
	lex    *lexer.Lexer
	peeked *lexer.Token
}

// New creates a Parser over src, read from a file named filename (used only
// for position reporting).
func New(filename string, src string) *Parser {
	return &Parser{lex: lexer.NewLexer(filename, strings.NewReader(src))}
}

// ParseTopLevel returns a single synthetic LIST node wrapping every
// top-level form.
func (p *Parser) ParseTopLevel() (*ast.Node, error) {
	begin := p.lex.Pos()

	top := ast.NewList(begin, begin)

	for {
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}

		if form == nil {
			break
		}

		top.AddChildren(form)
	}

	top.EndPos = p.lex.Pos()

	return top, nil
}

// parseForm reads one form. It returns (nil, nil) at EOF or at a stray
// ']': unterminated lists are tolerated silently, and a stray ']' simply
// ends whatever form-reading loop is in progress.
func (p *Parser) parseForm() (*ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case lexer.EOF, lexer.RBRACK:
		return nil, nil
	case lexer.LBRACK:
		return p.parseList()
	case lexer.COLON:
		p.advance()
		return ast.NewSymbol(":", tok.Pos, tok.End), nil
	case lexer.ARROW:
		p.advance()
		return ast.NewSymbol("->", tok.Pos, tok.End), nil
	case lexer.INT:
		p.advance()

		v, _ := strconv.ParseInt(tok.Text, 10, 64)

		return ast.NewInt(v, tok.Pos, tok.End), nil
	case lexer.FLOAT:
		p.advance()

		v, _ := strconv.ParseFloat(tok.Text, 64)

		return ast.NewFloat(v, tok.Pos, tok.End), nil
	case lexer.STRING:
		p.advance()

		return ast.NewString(stripQuotes(tok.Text), tok.Pos, tok.End), nil
	case lexer.SYMBOL:
		p.advance()

		switch tok.Text {
		case "true":
			return ast.NewBool(true, tok.Pos, tok.End), nil
		case "false":
			return ast.NewBool(false, tok.Pos, tok.End), nil
		default:
			return ast.NewSymbol(tok.Text, tok.Pos, tok.End), nil
		}
	case lexer.ERROR:
		// Lexical errors recover silently: consume one character and
		// continue.
		p.advance()

		return p.parseForm()
	default:
		p.advance()

		return p.parseForm()
	}
}

// parseList consumes '[', reads forms until ']' or EOF, and consumes ']'
// if present.
func (p *Parser) parseList() (*ast.Node, error) {
	open, err := p.advance()
	if err != nil {
		return nil, err
	}

	list := ast.NewList(open.Pos, open.End)

	for {
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}

		if form == nil {
			break
		}

		list.AddChildren(form)
	}

	closeTok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if closeTok.Kind == lexer.RBRACK {
		p.advance()
		list.EndPos = closeTok.End
	} else {
		// EOF closed the list silently.
		list.EndPos = p.lex.Pos()
	}

	return list, nil
}

// stripQuotes removes the leading '"' and, if present, the trailing '"'
// from a raw STRING token (which may be missing its closing quote when
// the source ended mid-string).
func stripQuotes(text string) string {
	if len(text) == 0 {
		return text
	}

	text = text[1:]

	if len(text) > 0 && text[len(text)-1] == '"' {
		text = text[:len(text)-1]
	}

	return text
}

func (p *Parser) peek() (lexer.Token, error) {
	if p.peeked == nil {
		t, err := p.lex.Next()
		if err != nil {
			return lexer.Token{}, err
		}

		p.peeked = &t
	}

	return *p.peeked, nil
}

func (p *Parser) advance() (lexer.Token, error) {
	t, err := p.peek()
	if err != nil {
		return t, err
	}

	p.peeked = nil

	return t, nil
}
