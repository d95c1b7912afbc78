// Package latest picks the most recent export by the date in its file name.
package latest

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultPrefix is the export file name prefix.
	DefaultPrefix = "SiteAnalyticsData"
	// DateLayout matches tokens such as 01-Jan,2024.
	DateLayout = "2-Jan,2006"
)

// Selection is the result of scanning file names.
type Selection struct {
	Path     string
	Date     time.Time
	Rejected []string
}

// ParseFileDate extracts the date token from <prefix>_<day>-<Mon>,<year><ext>.
func ParseFileDate(name, prefix, ext string) (time.Time, error) {
	base := filepath.Base(name)
	if !matches(base, prefix, ext) {
		return time.Time{}, fmt.Errorf("%s does not match %s_<date>%s", base, prefix, ext)
	}
	stem := base[:len(base)-len(ext)]
	token := stem[strings.LastIndex(stem, "_")+1:]
	date, err := time.Parse(DateLayout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date token %q in %s: %w", token, base, err)
	}
	return date, nil
}

// Select returns the matching path with the latest date. Names that match the
// pattern but carry an unparseable date are listed in Rejected. The bool is
// false when nothing matched.
func Select(paths []string, prefix, ext string) (Selection, bool) {
	var sel Selection
	found := false
	for _, path := range paths {
		if !matches(filepath.Base(path), prefix, ext) {
			continue
		}
		date, err := ParseFileDate(path, prefix, ext)
		if err != nil {
			sel.Rejected = append(sel.Rejected, filepath.Base(path))
			continue
		}
		if !found || date.After(sel.Date) {
			sel.Path = path
			sel.Date = date
			found = true
		}
	}
	return sel, found
}

func matches(base, prefix, ext string) bool {
	return strings.HasPrefix(base, prefix+"_") && strings.HasSuffix(strings.ToLower(base), strings.ToLower(ext))
}
