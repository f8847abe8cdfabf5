package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"My Page Title", "my-page-title"},
		{"My Page!! Title", "my-page-title"},
		{"Already-Slugged", "already-slugged"},
		{"  multiple   spaces ", "-multiple-spaces-"},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"Ünïcode Stripped", "ncode-stripped"},
		{"123 Numbers OK", "123-numbers-ok"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveSlug(tt.title))
		})
	}
}
