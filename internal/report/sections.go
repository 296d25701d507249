package report

import (
	"strings"

	"trade-report/internal/models"
)

// DefaultExcerptLength is the number of characters kept in a section excerpt.
const DefaultExcerptLength = 700

// Segment is the text collected for one canonical section.
type Segment struct {
	Key  models.SectionKey
	Text string
}

// CompactSpaces collapses whitespace runs into single spaces and trims the ends.
func CompactSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SegmentPages assigns page texts to the canonical sections.
//
// A page carrying a section heading joins that section. A page without a
// heading maps to the section at its own position, and pages past the last
// section without a heading are dropped. The result always holds the five
// sections in canonical order.
func SegmentPages(pages []string) []Segment {
	texts := make(map[models.SectionKey][]string, len(catalog))

	for idx, page := range pages {
		compact := CompactSpaces(page)
		if compact == "" {
			continue
		}

		key := detectHeading(compact)
		if key == "" {
			if idx >= len(catalog) {
				continue
			}
			key = catalog[idx].Key
		}
		texts[key] = append(texts[key], compact)
	}

	segments := make([]Segment, len(catalog))
	for i, def := range catalog {
		segments[i] = Segment{Key: def.Key, Text: strings.Join(texts[def.Key], " ")}
	}
	return segments
}

func detectHeading(compact string) models.SectionKey {
	for _, def := range catalog {
		if def.Heading.MatchString(compact) {
			return def.Key
		}
	}
	return ""
}

// BuildSections segments the pages and extracts each section's metric tokens.
func BuildSections(pages []string, excerptLength int) []models.Section {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}

	segments := SegmentPages(pages)
	sections := make([]models.Section, len(segments))
	for i, seg := range segments {
		def := catalog[i]
		metrics := make(map[string]string, len(def.Metrics))
		for _, d := range def.Metrics {
			if value, ok := ExtractMetric(seg.Text, d); ok {
				metrics[d.Label] = value
			}
		}
		sections[i] = models.Section{
			Key:     seg.Key,
			Title:   def.Title,
			Metrics: metrics,
			Excerpt: truncateRunes(seg.Text, excerptLength),
			RawText: seg.Text,
		}
	}
	return sections
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
