package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "ns/doc.pdf", want: "ns/doc.pdf"},
		{name: "prefix", prefix: "pms", key: "ns/doc.pdf", want: "pms/ns/doc.pdf"},
		{name: "slashes both sides", prefix: "/pms/", key: "/ns/doc.pdf", want: "pms/ns/doc.pdf"},
		{name: "empty key", prefix: "pms", key: "", want: "pms"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
