package review

import (
	"regexp"
	"strconv"

	"reviewflow/internal/models"
)

var hwNamePattern = regexp.MustCompile(`^HW(\d+)$`)

type groupKey struct {
	assignment string
	author     string
	reviewer   string
}

// Group folds flat records into per-assignment, per-(author, reviewer)
// groups. The first record seen for a key initializes the group header and
// every record for that key appends one round entry, preserving input
// encounter order.
//
// Records with a truly empty author or reviewer are excluded here; the
// normalizer's "NULL" sentinel passes through, since those rows still carry
// a usable review.
func Group(records []models.ReviewRecord, hwStart, hwEnd int) models.GroupedReviews {
	groups := make(map[groupKey]*models.AssignmentGroup)
	order := make(map[string][]groupKey)

	for _, rec := range records {
		if rec.Author == "" || rec.Reviewer == "" {
			continue
		}
		key := groupKey{assignment: rec.Assignment, author: rec.Author, reviewer: rec.Reviewer}
		g, ok := groups[key]
		if !ok {
			g = &models.AssignmentGroup{
				Assignment: rec.Assignment,
				Author:     rec.Author,
				Reviewer:   rec.Reviewer,
			}
			groups[key] = g
			order[rec.Assignment] = append(order[rec.Assignment], key)
		}
		g.Rounds = append(g.Rounds, models.RoundEntry{
			Round:    rec.Round,
			Time:     rec.Time,
			Feedback: rec.Feedback,
		})
	}

	out := make(models.GroupedReviews, len(order))
	for assignment, keys := range order {
		if !inHWRange(assignment, hwStart, hwEnd) {
			continue
		}
		list := make([]models.AssignmentGroup, 0, len(keys))
		for _, key := range keys {
			list = append(list, *groups[key])
		}
		out[assignment] = list
	}
	return out
}

// inHWRange reports whether an assignment survives the homework-range
// filter. An unusable range (start < 1 or end < start) disables filtering
// entirely rather than silently dropping every assignment.
func inHWRange(assignment string, hwStart, hwEnd int) bool {
	if hwStart < 1 || hwEnd < hwStart {
		return true
	}
	m := hwNamePattern.FindStringSubmatch(assignment)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return n >= hwStart && n <= hwEnd
}

// GroupStats summarizes a grouping pass for the run summary.
func GroupStats(inputRecords int, grouped models.GroupedReviews) models.OrganizeStats {
	stats := models.OrganizeStats{
		InputRecords:  inputRecords,
		HomeworkCount: len(grouped),
		HWBreakdown:   make(map[string]int, len(grouped)),
	}
	for hw, list := range grouped {
		stats.HWBreakdown[hw] = len(list)
		stats.TotalAssignments += len(list)
	}
	return stats
}
