package review

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"reviewflow/internal/models"
)

// Canonical field names the normalizer resolves from a table header.
const (
	fieldAuthor     = "author"
	fieldReviewer   = "reviewer"
	fieldFeedback   = "feedback"
	fieldTime       = "time"
	fieldAssignment = "assignment"
	fieldRound      = "round"
)

// columnAliases maps each canonical field to the header spellings accepted
// for it. Matching is on trimmed, lowercased names; first hit wins.
var columnAliases = map[string][]string{
	fieldAuthor:     {"author", "authorname", "owner_name", "ownername"},
	fieldReviewer:   {"reviewer", "reviewername"},
	fieldFeedback:   {"feedback", "comment", "review", "text"},
	fieldTime:       {"time", "timestamp", "date", "datetime", "created_at"},
	fieldAssignment: {"assignment", "hw", "homework", "task"},
	fieldRound:      {"round", "iteration", "attempt"},
}

// DetectColumns resolves canonical field names against a table header.
// Unresolvable fields map to "".
func DetectColumns(header []string) map[string]string {
	trimmed := make([]string, len(header))
	lowered := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
		lowered[i] = strings.ToLower(trimmed[i])
	}

	mapping := make(map[string]string, len(columnAliases))
	for field, aliases := range columnAliases {
		mapping[field] = ""
		for _, alias := range aliases {
			for i, name := range lowered {
				if name == alias {
					mapping[field] = trimmed[i]
					break
				}
			}
			if mapping[field] != "" {
				break
			}
		}
	}
	return mapping
}

// IdentifierMap assigns sequential integer identifiers, starting at 1, to
// the distinct non-empty non-sentinel names in lexicographic order. The
// ordering is what makes identifier assignment reproducible across runs.
func IdentifierMap(names []string) map[string]int {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, models.AuthorUnknown) {
			continue
		}
		seen[name] = struct{}{}
	}
	distinct := make([]string, 0, len(seen))
	for name := range seen {
		distinct = append(distinct, name)
	}
	sort.Strings(distinct)

	ids := make(map[string]int, len(distinct))
	for i, name := range distinct {
		ids[name] = i + 1
	}
	return ids
}

// Normalize converts a raw table into canonical review records with names
// replaced by their integer identifiers.
//
// A row is dropped when its reviewer cell is empty or the case-insensitive
// sentinel "NULL". A row with an empty/"NULL" author is kept with the author
// normalized to the sentinel: those are anonymous or self reviews, not bad
// data. Unparseable round values default to 1.
func Normalize(t Table) ([]models.ReviewRecord, models.NormalizeStats) {
	cols := DetectColumns(t.Columns)
	stats := models.NormalizeStats{TotalRows: len(t.Rows)}

	if cols[fieldAuthor] == "" || cols[fieldReviewer] == "" {
		stats.Warnings = append(stats.Warnings,
			fmt.Sprintf("could not resolve author/reviewer columns from header %v", t.Columns))
	}

	cell := func(row map[string]string, field string) string {
		col := cols[field]
		if col == "" {
			return ""
		}
		return row[col]
	}

	var authors, reviewers []string
	for _, row := range t.Rows {
		if a := strings.TrimSpace(cell(row, fieldAuthor)); a != "" && !strings.EqualFold(a, models.AuthorUnknown) {
			authors = append(authors, a)
		}
		if r := strings.TrimSpace(cell(row, fieldReviewer)); r != "" && !strings.EqualFold(r, models.AuthorUnknown) {
			reviewers = append(reviewers, r)
		}
	}
	authorIDs := IdentifierMap(authors)
	reviewerIDs := IdentifierMap(reviewers)
	stats.UniqueAuthors = len(authorIDs)
	stats.UniqueReviewers = len(reviewerIDs)

	records := make([]models.ReviewRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		reviewer := strings.TrimSpace(cell(row, fieldReviewer))
		if reviewer == "" || strings.EqualFold(reviewer, models.AuthorUnknown) {
			continue
		}

		reviewer = strconv.Itoa(reviewerIDs[reviewer])

		author := strings.TrimSpace(cell(row, fieldAuthor))
		if author == "" || strings.EqualFold(author, models.AuthorUnknown) {
			author = models.AuthorUnknown
		} else {
			author = strconv.Itoa(authorIDs[author])
		}

		feedback := cell(row, fieldFeedback)
		if strings.EqualFold(strings.TrimSpace(feedback), models.AuthorUnknown) {
			feedback = ""
		}

		records = append(records, models.ReviewRecord{
			Author:     author,
			Reviewer:   reviewer,
			Feedback:   feedback,
			Time:       cell(row, fieldTime),
			Assignment: strings.TrimSpace(cell(row, fieldAssignment)),
			Round:      parseRound(cell(row, fieldRound)),
		})
	}
	stats.ConvertedRecords = len(records)
	return records, stats
}

// parseRound defaults missing or non-numeric values to round 1. This is a
// documented default, not an error.
func parseRound(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
