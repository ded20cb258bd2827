package mwalimu

import (
	"reflect"
	"testing"
)

func TestChapterVariants(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"3", []string{"3", "3.1", "3.2", "3.3", "3.4", "3.5", "3.6", "3.7", "3.8", "3.9"}},
		{"3.7", []string{"3.7"}},
		{" 2 ", []string{"2", "2.1", "2.2", "2.3", "2.4", "2.5", "2.6", "2.7", "2.8", "2.9"}},
		{"", nil},
		{"  ", nil},
	}

	for _, tt := range tests {
		got := ChapterVariants(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ChapterVariants(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMajorChapter(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3.7", "3"},
		{"3", "3"},
		{"12.5", "12"},
		{" 4.1 ", "4"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := MajorChapter(tt.input); got != tt.want {
			t.Errorf("MajorChapter(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
