package driver_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/takoeight0821/lox/driver"
)

func stageOf(t *testing.T, err error) driver.Stage {
	t.Helper()

	var de *driver.Error
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *driver.Error", err)
	}
	return de.Stage
}

func TestRunStages(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input string
		stage driver.Stage
	}{
		{"print 1; @", driver.StageLex},
		{"print \"open", driver.StageLex},
		{"print 1", driver.StageParse},
		{"(1 + 2;", driver.StageParse},
		{"print x;", driver.StageRuntime},
		{"print 1 / 0;", driver.StageRuntime},
	}

	for _, tc := range testcases {
		var out bytes.Buffer
		err := driver.NewSession(&out).Run(tc.input)
		if stage := stageOf(t, err); stage != tc.stage {
			t.Errorf("Run(%q) failed at %v, want %v", tc.input, stage, tc.stage)
		}
	}
}

func TestParseErrorRunsNothing(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := driver.NewSession(&out).Run("print 1;\nprint ;\nprint 3;")
	if stageOf(t, err) != driver.StageParse {
		t.Fatalf("got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
}

func TestSessionKeepsEnvironment(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s := driver.NewSession(&out)
	lines := []string{
		"var a = 1;",
		"a = a + ;",
		"print a;",
		"a + 1",
		"b",
		"a = \"s\"",
	}
	for _, line := range lines {
		_ = s.RunLine(line)
	}

	if diff := cmp.Diff("1\n2\ns\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunLineReportsProgramError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := driver.NewSession(&out).RunLine("print (1;")
	if stageOf(t, err) != driver.StageParse {
		t.Errorf("got %v, want parse error", err)
	}
}

func TestDump(t *testing.T) {
	t.Parallel()

	out, err := driver.Dump("print -1;")
	if err != nil {
		t.Fatal(err)
	}
	expected := strings.Join([]string{
		`{PRINT, "print", 1, <nil>}`,
		`{MINUS, "-", 1, <nil>}`,
		`{NUMBER, "1", 1, 1}`,
		`{SEMICOLON, ";", 1, <nil>}`,
		`{EOF, "", 1, <nil>}`,
		`(print (unary - (literal 1)))`,
		``,
	}, "\n")
	if diff := cmp.Diff(expected, out); diff != "" {
		t.Errorf("Dump mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s := driver.NewSession(&out)

	testcases := []struct {
		input    string
		expected []string
	}{
		{"print ;\nvar 1;", []string{
			"[line 1] Error at `;`: unexpected token: expected expression",
			"[line 2] Error at `1`: unexpected token: expected variable name",
		}},
		{"print 1", []string{
			"[line 1] Error at end: unexpected token: expected `;`",
		}},
		{"\n\nprint nope;", []string{
			"[line 3] Error at `nope`: undefined variable `nope`",
		}},
		{"print (1 + 2;", []string{
			"[line 1] Error at `;`: missing `)` to close `(` at line 1, column 7",
		}},
		{"1 @", []string{
			"[line 1] Error: unexpected character: '@' at line 1, column 3",
		}},
	}

	for _, tc := range testcases {
		err := s.Run(tc.input)
		if diff := cmp.Diff(tc.expected, driver.Diagnostics(err)); diff != "" {
			t.Errorf("Diagnostics(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}

	if msgs := driver.Diagnostics(nil); msgs != nil {
		t.Errorf("Diagnostics(nil) = %v", msgs)
	}
}
