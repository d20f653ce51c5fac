package greenhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisTitle(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		layout string
		want   string
	}{
		{"default layout", "2023-03-16.jsonl", "", "3/16/2023"},
		{"custom layout", "2023-03-16.jsonl", "2006-01-02", "2023-03-16"},
		{"no extension", "2023-03-05", DefaultDateLayout, "3/5/2023"},
		{"not a date", "latest.jsonl", DefaultDateLayout, "latest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AxisTitle(tt.file, tt.layout))
		})
	}
}

func TestDescribeFiles(t *testing.T) {
	files := DescribeFiles([]string{"2023-03-16.jsonl", "2023-03-17.jsonl"}, DefaultDateLayout)

	assert.Equal(t, []FileDescriptor{
		{Index: 0, FileName: "2023-03-16.jsonl", DisplayDate: "3/16/2023"},
		{Index: 1, FileName: "2023-03-17.jsonl", DisplayDate: "3/17/2023"},
	}, files)
	assert.Empty(t, DescribeFiles(nil, DefaultDateLayout))
}

func TestSortDesc(t *testing.T) {
	in := []string{"2023-03-15.jsonl", "notes.txt", "2023-03-17.jsonl", "2023-03-16.jsonl", "zz"}

	got := SortDesc(in)

	assert.Equal(t, []string{"2023-03-17.jsonl", "2023-03-16.jsonl", "2023-03-15.jsonl", "notes.txt", "zz"}, got)
	assert.Equal(t, "2023-03-15.jsonl", in[0], "input must not be reordered")
}
