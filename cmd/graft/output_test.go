package main

import "testing"

func TestFormatPathForOutput(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{name: "inside root", root: "/ws", path: "/ws/src/shop.ts", want: "src/shop.ts"},
		{name: "outside root", root: "/ws", path: "/other/shop.ts", want: "/other/shop.ts"},
		{name: "empty root", root: "", path: "/ws/src/shop.ts", want: "/ws/src/shop.ts"},
		{name: "empty path", root: "/ws", path: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPathForOutput(tt.root, tt.path); got != tt.want {
				t.Errorf("formatPathForOutput(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
			}
		})
	}
}

func TestReadUIMode(t *testing.T) {
	for _, valid := range []string{"", "auto", "on", "off", "AUTO", " on "} {
		if _, err := readUIMode(valid); err != nil {
			t.Errorf("readUIMode(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := readUIMode("fancy"); err == nil {
		t.Error("readUIMode(\"fancy\") expected error")
	}
}
