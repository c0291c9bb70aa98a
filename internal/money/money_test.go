package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	amount, err := Parse("  -52.80 ")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("-52.80")) {
		t.Errorf("got %s, want -52.80", amount)
	}

	for _, input := range []string{"", "   ", "abc", "1,5"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidAmount", input, err)
		}
	}
}

func TestParseRateRejectsNonPositive(t *testing.T) {
	if _, err := ParseRate("21.936"); err != nil {
		t.Fatalf("ParseRate returned error: %v", err)
	}
	for _, input := range []string{"0", "-1.5", "x"} {
		if _, err := ParseRate(input); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("ParseRate(%q) = %v, want ErrInvalidRate", input, err)
		}
	}
}

func TestRound2HalfToEven(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2.675", "2.68"},
		{"2.665", "2.66"},
		{"-90.909090", "-90.91"},
		{"1.005", "1"},
		{"10", "10"},
	}
	for _, c := range cases {
		got := Round2(decimal.RequireFromString(c.in))
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("Round2(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}
