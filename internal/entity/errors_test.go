// internal/entity/errors_test.go
//
// Unit-tests for the validation-code round trip.
//
// Run: go test ./internal/entity -v

package entity

import "testing"

func TestEncodeCodes(t *testing.T) {
	cases := []struct {
		in   []int
		want string
	}{
		{nil, ""},
		{[]int{5}, "5"},
		{[]int{5, 2, 5}, "2,5"},
		{[]int{3, 1, 2, 1}, "1,2,3"},
	}
	for _, c := range cases {
		if got := EncodeCodes(c.in); got != c.want {
			t.Errorf("EncodeCodes(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDecodeCodes_IgnoresJunk(t *testing.T) {
	got := DecodeCodes("2, x, 5,,9zz")
	if len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Fatalf("DecodeCodes = %v, want [2 5]", got)
	}
	if DecodeCodes("") != nil {
		t.Fatal("DecodeCodes(\"\") should be nil")
	}
}

func TestMessages(t *testing.T) {
	typ, _ := NewType("chapter", "chapter", "Chapter", "Chapters")
	typ.Errors = map[int]string{1: "Bad since.", 2: "Bad ceased."}

	got := Messages(typ, []int{2, 9, 1})
	if len(got) != 2 || got[0] != "Bad ceased." || got[1] != "Bad since." {
		t.Fatalf("Messages = %v", got)
	}
}
