package daemonmd

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pbaille/daemon/internal/domain"
)

var (
	// [SECTION_NAME] or [SECTION_NAME].unpublished, nothing else on the line
	headerPattern = regexp.MustCompile(`^\[([A-Z_]+)\](\.unpublished)?$`)

	// Priority tags such as P0:, M1:, G:
	tagPattern = regexp.MustCompile(`^[PMG]\d*:`)

	lastUpdatedPattern = regexp.MustCompile(`\*Last updated:\s*(\d{4}-\d{2}-\d{2})\*`)
)

const listMarker = "- "

// dateLayout is the YYYY-MM-DD form used for lastUpdated
const dateLayout = "2006-01-02"

// ParseSections splits daemon.md content into named sections.
// Lines before the first header are discarded. Sections whose header carries
// the .unpublished suffix consume their body but are left out of the result.
// A repeated header overwrites the earlier value.
func ParseSections(content string) domain.Sections {
	sections := make(domain.Sections)
	current := ""
	unpublished := false
	var body []string

	commit := func() {
		if current == "" || unpublished {
			return
		}
		if _, dup := sections[current]; dup {
			slog.Warn("duplicate section overwrites earlier value",
				"component", "daemonmd",
				"operation", "parse_sections",
				"section", current)
		}
		sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
	}

	for _, line := range strings.Split(content, "\n") {
		m := headerPattern.FindStringSubmatch(line)
		if m == nil {
			if current != "" {
				body = append(body, line)
			}
			continue
		}
		commit()
		current = m[1]
		unpublished = m[2] != ""
		body = body[:0]
	}
	commit()

	return sections
}

// ParseList returns the text of every "- " item in content, marker removed.
// Other lines are ignored.
func ParseList(content string) []string {
	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, listMarker) {
			items = append(items, trimmed[len(listMarker):])
		}
	}
	return items
}

// ParseTelos returns list items that start with a priority tag, keeping the tag.
func ParseTelos(content string) []string {
	items := []string{}
	for _, item := range ParseList(content) {
		if tagPattern.MatchString(item) {
			items = append(items, item)
		}
	}
	return items
}

// ParseLastUpdated finds the "*Last updated: YYYY-MM-DD*" footer anywhere in
// the raw document. Without one, now's UTC date is used.
func ParseLastUpdated(content string, now time.Time) string {
	if m := lastUpdatedPattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return now.UTC().Format(dateLayout)
}
