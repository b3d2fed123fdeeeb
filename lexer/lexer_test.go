package lexer_test

import (
	"testing"

	"github.com/pl0lang/pl0c/lexer"
)

func tokenKinds(src string) []lexer.Kind {
	l := lexer.New(src)
	var kinds []lexer.Kind
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == lexer.EOF {
			break
		}
	}
	return kinds
}

func TestReservedWords(t *testing.T) {
	kinds := tokenKinds("begin end if then else while do call const var procedure write read odd")
	want := []lexer.Kind{
		lexer.Begin, lexer.End, lexer.If, lexer.Then, lexer.Else, lexer.While,
		lexer.Do, lexer.Call, lexer.Const, lexer.Var, lexer.Proc, lexer.Write,
		lexer.Read, lexer.Odd, lexer.EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
}

func TestCompoundOperators(t *testing.T) {
	kinds := tokenKinds(":= <= >= <> < >")
	want := []lexer.Kind{lexer.Becomes, lexer.Leq, lexer.Geq, lexer.Neq, lexer.Less, lexer.Gtr, lexer.EOF}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
}

func TestLoneColonBecomesBecomes(t *testing.T) {
	// Reproduces the reference implementation's latent bug: a bare ':'
	// with no following '=' is still accepted as Becomes.
	l := lexer.New(": x")
	tok := l.NextToken()
	if tok.Kind != lexer.Becomes {
		t.Fatalf("got %s, want Becomes (reproducing reference bug)", tok.Kind)
	}
}

func TestIdentifierAndNumberLiterals(t *testing.T) {
	l := lexer.New("foo123 42")
	tok := l.NextToken()
	if tok.Kind != lexer.Ident || tok.Literal != "foo123" {
		t.Fatalf("got %v", tok)
	}
	tok = l.NextToken()
	if tok.Kind != lexer.Number || tok.Literal != "42" {
		t.Fatalf("got %v", tok)
	}
}

func TestBlockCommentsStripped(t *testing.T) {
	kinds := tokenKinds("var /* this is a comment\nspanning lines */ x;")
	want := []lexer.Kind{lexer.Var, lexer.Ident, lexer.Semicolon, lexer.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
}

func TestOverlongIdentifierReportsIssue26(t *testing.T) {
	l := lexer.New("abcdefghijklmnop")
	l.NextToken()
	issues := l.Issues()
	if len(issues) != 1 || issues[0].Code != 26 {
		t.Fatalf("got %v, want one issue with code 26", issues)
	}
}

func TestOverlongNumberReportsIssue25(t *testing.T) {
	l := lexer.New("123456")
	l.NextToken()
	issues := l.Issues()
	if len(issues) != 1 || issues[0].Code != 25 {
		t.Fatalf("got %v, want one issue with code 25", issues)
	}
}

func TestUnknownSymbolReportsIssue27(t *testing.T) {
	l := lexer.New("x $ y")
	l.NextToken() // x
	l.NextToken() // $
	issues := l.Issues()
	if len(issues) != 1 || issues[0].Code != 27 {
		t.Fatalf("got %v, want one issue with code 27", issues)
	}
}

func TestEmptyInputYieldsJustEOF(t *testing.T) {
	kinds := tokenKinds("")
	if len(kinds) != 1 || kinds[0] != lexer.EOF {
		t.Fatalf("got %v, want just EOF", kinds)
	}
}
