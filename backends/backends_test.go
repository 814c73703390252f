package backends

import "testing"

func TestEnabled(t *testing.T) {
	cases := []struct {
		name  string
		env   string
		query string
		want  bool
	}{
		{name: "empty enables all", env: "", query: "redis", want: true},
		{name: "all enables all", env: "all", query: "dynamo", want: true},
		{name: "listed", env: "redis,nats", query: "nats", want: true},
		{name: "not listed", env: "redis,nats", query: "mysql", want: false},
		{name: "case insensitive", env: "Redis", query: "redis", want: true},
		{name: "whitespace tolerated", env: " redis , nats ", query: "redis", want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("STORETEST_BACKENDS", tc.env)
			if got := Enabled(tc.query); got != tc.want {
				t.Fatalf("Enabled(%q) with env %q = %v, want %v", tc.query, tc.env, got, tc.want)
			}
		})
	}
}
