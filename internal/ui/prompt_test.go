package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionSearcher(t *testing.T) {
	options := []SelectOption{
		{Label: "Calculator", Detail: "org.gnome.Calculator/x86_64/stable", Value: "0"},
		{Label: "Calculator", Detail: "org.gnome.Calculator/x86_64/beta", Value: "1"},
		{Label: "Firefox", Detail: "org.mozilla.firefox/x86_64/stable", Value: "2"},
	}
	search := optionSearcher(options)

	tests := []struct {
		name  string
		input string
		index int
		want  bool
	}{
		{"empty input matches all", "", 2, true},
		{"label match", "calc", 0, true},
		{"detail match", "beta", 1, true},
		{"no match", "beta", 0, false},
		{"out of range", "calc", 5, false},
		{"negative index", "calc", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search(tt.input, tt.index))
		})
	}
}

func TestIsInteractive(_ *testing.T) {
	// Depends on how tests are run; only ensure it does not panic
	_ = IsInteractive()
}
