package cmd

import "testing"

func TestSplitAssignment(t *testing.T) {
	cases := []struct {
		in    string
		name  string
		value string
		ok    bool
	}{
		{"DB_HOST=10.0.0.5", "DB_HOST", "10.0.0.5", true},
		{"EMPTY=", "EMPTY", "", true},
		{"URL=http://x=y", "URL", "http://x=y", true},
		{"noequals", "", "", false},
	}
	for _, c := range cases {
		name, value, ok := splitAssignment(c.in)
		if ok != c.ok || name != c.name || value != c.value {
			t.Errorf("splitAssignment(%q) = (%q, %q, %v), want (%q, %q, %v)", c.in, name, value, ok, c.name, c.value, c.ok)
		}
	}
}
