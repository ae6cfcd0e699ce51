package sanitize

import "testing"

func TestPath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"slash", "AC/DC", "AC DC"},
		{"quote", `Money"Shot`, `Money\"Shot`},
		{"dollar", "Money$", "MoneyS"},
		{"plain", "Back In Black", "Back In Black"},
		{"all three", `A/B"C$D`, `A B\"CSD`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Path(c.in); got != c.want {
				t.Errorf("Path(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestPathIdempotent(t *testing.T) {
	inputs := []string{"Back In Black", "Money Shot", "plain text 123"}
	for _, in := range inputs {
		once := Path(in)
		twice := Path(once)
		if once != twice {
			t.Errorf("Path not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
