package auth

import "testing"

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer aaa.bbb.ccc", "aaa.bbb.ccc", true},
		{"bearer aaa.bbb.ccc", "aaa.bbb.ccc", true},
		{"  Bearer   aaa.bbb.ccc  ", "aaa.bbb.ccc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer aaa.bbb", "", false},
		{"Bearer aaa..ccc", "", false},
		{"Bearer aaa.bbb.ccc extra", "", false},
		{"Token aaa.bbb.ccc", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractBearer(tc.header)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ExtractBearer(%q) = %q, %v; want %q, %v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}
