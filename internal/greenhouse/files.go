package greenhouse

import (
	"sort"
	"strings"
	"time"
)

const (
	// FileDateLayout is how the gateway names its daily files.
	FileDateLayout = "2006-01-02"
	// DefaultDateLayout renders dates like en-US toLocaleDateString.
	DefaultDateLayout = "1/2/2006"
)

// FilePrefix returns the part of name before the first '.'.
func FilePrefix(name string) string {
	prefix, _, _ := strings.Cut(name, ".")
	return prefix
}

// FileDate parses the date encoded in a daily file name.
func FileDate(name string) (time.Time, error) {
	return time.Parse(FileDateLayout, FilePrefix(name))
}

// AxisTitle formats the date of fileName with layout. Names that do not
// carry a date fall back to their prefix.
func AxisTitle(fileName, layout string) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	d, err := FileDate(fileName)
	if err != nil {
		return FilePrefix(fileName)
	}
	return d.Format(layout)
}

// DescribeFiles turns gateway file names into descriptors, keeping order.
func DescribeFiles(names []string, layout string) []FileDescriptor {
	out := make([]FileDescriptor, 0, len(names))
	for i, name := range names {
		out = append(out, FileDescriptor{
			Index:       i,
			FileName:    name,
			DisplayDate: AxisTitle(name, layout),
		})
	}
	return out
}

// SortDesc orders file names newest first by the date in their name.
// Names without a parsable date sink to the end in their original order.
func SortDesc(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		di, erri := FileDate(out[i])
		dj, errj := FileDate(out[j])
		switch {
		case erri != nil:
			return false
		case errj != nil:
			return true
		}
		return di.After(dj)
	})
	return out
}
