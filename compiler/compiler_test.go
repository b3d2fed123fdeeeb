package compiler_test

import (
	"strings"
	"testing"

	"github.com/pl0lang/pl0c/code"
	"github.com/pl0lang/pl0c/compiler"
)

func compileOK(t *testing.T, src string) (*code.Stream, *compiler.ErrorList) {
	t.Helper()
	stream, _, errs := compiler.Compile(src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %s", errs.Error())
	}
	return stream, errs
}

func TestSimpleAssignAndWrite(t *testing.T) {
	stream, _ := compileOK(t, "var x; begin x := 7; write x end.")

	var sawInc, sawSto, sawSio bool
	for _, ins := range stream.All() {
		switch ins.Op {
		case code.INC:
			sawInc = true
		case code.STO:
			sawSto = true
		case code.SIOWrite:
			sawSio = true
		}
	}
	if !sawInc || !sawSto || !sawSio {
		t.Fatalf("missing expected opcodes in stream: %v", stream.All())
	}
	last := stream.At(stream.Len() - 1)
	if last.Op != code.SIOHalt {
		t.Fatalf("expected trailing SIOHalt, got %s", last.Op)
	}
}

func TestConstantReferenceEmitsLiteral(t *testing.T) {
	stream, _ := compileOK(t, "const c = 42; var x; begin x := c + 1; write x end.")
	found := false
	for _, ins := range stream.All() {
		if ins.Op == code.LIT && ins.M == 42 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a LIT 42 for the constant reference")
	}
}

func TestIfElseEmitsBothBranchesAndBackpatches(t *testing.T) {
	stream, _ := compileOK(t, "var x; begin x := 1; if x = 1 then write x else write 0 end.")
	for i, ins := range stream.All() {
		if (ins.Op == code.JMP || ins.Op == code.JPC) && ins.M == 0 && i != 0 {
			t.Fatalf("instruction %d (%s) left unpatched at m=0", i, ins.Op)
		}
	}
}

func TestWhileLoopBacktargetsLoopTop(t *testing.T) {
	src := "var i, s; begin i := 1; s := 0; while i <= 10 do begin s := s + i; i := i + 1 end; write s end."
	stream, _ := compileOK(t, src)
	var jmpBack bool
	for i, ins := range stream.All() {
		if ins.Op == code.JMP && ins.M < i {
			jmpBack = true
		}
	}
	if !jmpBack {
		t.Fatalf("expected a backward JMP closing the while loop")
	}
}

func TestProcedureCallResolvesStaticLink(t *testing.T) {
	src := "var x; procedure p; begin x := x + 1 end; begin x := 0; call p; call p; write x end."
	stream, _ := compileOK(t, src)
	var sawCal bool
	for _, ins := range stream.All() {
		if ins.Op == code.CAL {
			sawCal = true
			if ins.L != 0 {
				t.Fatalf("call from level 0 of a procedure declared at level 0 should have L=0, got %d", ins.L)
			}
		}
	}
	if !sawCal {
		t.Fatalf("expected a CAL instruction")
	}
}

func TestLiteralOverflowReportsError25(t *testing.T) {
	_, _, errs := compiler.Compile("var x; begin x := 2049 end.")
	if !errs.HasErrors() {
		t.Fatalf("expected error 25")
	}
	first, _ := errs.First()
	if first.Code != 25 {
		t.Fatalf("got code %d, want 25", first.Code)
	}
}

func TestLiteralAtBoundaryCompiles(t *testing.T) {
	compileOK(t, "var x; begin x := 2047 end.")
}

func TestLiteralJustOverBoundaryErrors(t *testing.T) {
	_, _, errs := compiler.Compile("var x; begin x := 2048 end.")
	if !errs.HasErrors() {
		t.Fatalf("expected error 25 at 2048")
	}
}

func TestIdentifierExactly11CharsOK(t *testing.T) {
	compileOK(t, "var abcdefghijk; begin abcdefghijk := 1 end.")
}

func TestIdentifier12CharsReportsError26(t *testing.T) {
	_, _, errs := compiler.Compile("var abcdefghijkl; begin abcdefghijkl := 1 end.")
	if !errs.HasErrors() {
		t.Fatalf("expected error 26 for a 12-char identifier")
	}
	first, _ := errs.First()
	if first.Code != 26 {
		t.Fatalf("got code %d, want 26", first.Code)
	}
}

func TestNestedProcedureDepthsOneTwoThreeOK(t *testing.T) {
	src := "procedure p1; procedure p2; procedure p3; begin end; begin call p3 end; begin call p2 end; begin call p1 end."
	compileOK(t, src)
}

func TestNestedProcedureDepthFourReportsError26(t *testing.T) {
	src := "procedure p1; procedure p2; procedure p3; procedure p4; begin end; " +
		"begin call p4 end; begin call p3 end; begin call p2 end; begin call p1 end."
	_, _, errs := compiler.Compile(src)
	if !errs.HasErrors() {
		t.Fatalf("expected error 26 past max lexical depth")
	}
	var got bool
	for _, e := range errs.All() {
		if e.Code == 26 {
			got = true
		}
	}
	if !got {
		t.Fatalf("expected code 26 among errors, got %v", errs.All())
	}
}

func TestUndeclaredIdentifierReportsError11(t *testing.T) {
	_, _, errs := compiler.Compile("var x; begin y := 1 end.")
	first, _ := errs.First()
	if first.Code != 11 {
		t.Fatalf("got code %d, want 11", first.Code)
	}
}

func TestAssignmentToConstantReportsError12(t *testing.T) {
	_, _, errs := compiler.Compile("const c = 1; begin c := 2 end.")
	first, ok := errs.First()
	if !ok || first.Code != 12 {
		t.Fatalf("got %+v, want code 12", first)
	}
}

func TestCallOfVariableReportsError15(t *testing.T) {
	_, _, errs := compiler.Compile("var x; begin call x end.")
	first, ok := errs.First()
	if !ok || first.Code != 15 {
		t.Fatalf("got %+v, want code 15", first)
	}
}

func TestMissingPeriodReportsError9(t *testing.T) {
	_, _, errs := compiler.Compile("var x; begin x := 1 end")
	first, ok := errs.First()
	if !ok || first.Code != 9 {
		t.Fatalf("got %+v, want code 9", first)
	}
}

func TestInnerRedeclarationShadowsOuter(t *testing.T) {
	src := "var x; procedure p; var x; begin x := 9 end; begin x := 1; call p; write x end."
	_, table, errs := compiler.Compile(src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %s", errs.Error())
	}
	// Two distinct "x" symbols should have been entered, at different levels.
	var levels []int
	for i := 1; i <= table.Len(); i++ {
		sym, _ := table.At(i)
		if sym.Name == "x" {
			levels = append(levels, sym.Level)
		}
	}
	if len(levels) != 2 || levels[0] == levels[1] {
		t.Fatalf("expected two distinctly-leveled x symbols, got %v", levels)
	}
}

func TestErrorMessageTableCoversAllCodes(t *testing.T) {
	for code := 1; code <= 27; code++ {
		if msg := compiler.Message(code); strings.TrimSpace(msg) == "" {
			t.Errorf("code %d has no message", code)
		}
	}
}
