package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"Go & Gin: a tour", "go-and-gin-a-tour"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"!!!", "untitled"},
		{"", "untitled"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
