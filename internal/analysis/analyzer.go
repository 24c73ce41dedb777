package analysis

import (
	"fmt"
	"sort"

	"reviewflow/internal/models"
)

// labelTally counts how many of a student's reviews carried each label.
type labelTally struct {
	Relevance    int `json:"relevance"`
	Concreteness int `json:"concreteness"`
	Constructive int `json:"constructive"`
}

type givenReview struct {
	relevance    int
	concreteness int
	constructive int
}

// studentActivity aggregates one student's review traffic across the run.
type studentActivity struct {
	givenByHW     map[string][]givenReview
	receivedByHW  map[string]int
	totalGiven    int
	totalReceived int
	qualityGiven  labelTally
}

// DataPoint is one student's row in a per-homework correlation series.
type DataPoint struct {
	StudentID         string  `json:"student_id"`
	Name              string  `json:"name"`
	HWScore           int     `json:"hw_score"`
	ReviewsGiven      int     `json:"reviews_given"`
	ReviewsReceived   int     `json:"reviews_received"`
	QualityScore      float64 `json:"quality_score"`
	RelevanceScore    float64 `json:"relevance_score"`
	ConcretenessScore float64 `json:"concreteness_score"`
	ConstructiveScore float64 `json:"constructive_score"`
}

type HWStats struct {
	AvgScore        float64 `json:"avg_score"`
	AvgGiven        float64 `json:"avg_given"`
	AvgQuality      float64 `json:"avg_quality"`
	AvgRelevance    float64 `json:"avg_relevance"`
	AvgConcreteness float64 `json:"avg_concreteness"`
	AvgConstructive float64 `json:"avg_constructive"`
	StdScore        float64 `json:"std_score"`
	TotalStudents   int     `json:"total_students"`
}

// HWCorrelation holds the Pearson coefficients between the homework score
// and each review metric, plus the series they were computed from.
type HWCorrelation struct {
	DataPoints              []DataPoint `json:"data_points"`
	CorrelationGiven        float64     `json:"correlation_given"`
	CorrelationQuality      float64     `json:"correlation_quality"`
	CorrelationRelevance    float64     `json:"correlation_relevance"`
	CorrelationConcreteness float64     `json:"correlation_concreteness"`
	CorrelationConstructive float64     `json:"correlation_constructive"`
	Stats                   HWStats     `json:"stats"`
}

// StudentDetail summarizes one student across all homework units.
type StudentDetail struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	HWScores          map[string]int `json:"hw_scores"`
	AvgHWScore        float64        `json:"avg_hw_score"`
	Midterm           int            `json:"midterm"`
	Final             int            `json:"final"`
	ReviewsGiven      int            `json:"reviews_given"`
	ReviewsReceived   int            `json:"reviews_received"`
	QualityScore      float64        `json:"quality_score"`
	RelevanceScore    float64        `json:"relevance_score"`
	ConcretenessScore float64        `json:"concreteness_score"`
	ConstructiveScore float64        `json:"constructive_score"`
	QualityBreakdown  labelTally     `json:"quality_breakdown"`
}

type Report struct {
	Summary      models.AnalyzeStats      `json:"summary"`
	Correlations map[string]HWCorrelation `json:"correlations"`
	Students     []StudentDetail          `json:"students"`
}

// Analyze joins labeled review data with the external score table and
// computes per-homework Pearson correlations between homework score and
// review activity. Both inputs are read-only.
func Analyze(grouped models.GroupedReviews, scores map[string]models.ScoreRow, hwStart, hwEnd int) *Report {
	activity := collectActivity(grouped)

	report := &Report{
		Correlations: make(map[string]HWCorrelation),
	}

	for hw := hwStart; hw <= hwEnd; hw++ {
		hwName := fmt.Sprintf("HW%d", hw)
		points := buildDataPoints(hwName, scores, activity)
		if len(points) < 2 {
			continue
		}

		hwScores := make([]float64, len(points))
		given := make([]float64, len(points))
		quality := make([]float64, len(points))
		relevance := make([]float64, len(points))
		concreteness := make([]float64, len(points))
		constructive := make([]float64, len(points))
		for i, p := range points {
			hwScores[i] = float64(p.HWScore)
			given[i] = float64(p.ReviewsGiven)
			quality[i] = p.QualityScore
			relevance[i] = p.RelevanceScore
			concreteness[i] = p.ConcretenessScore
			constructive[i] = p.ConstructiveScore
		}

		report.Correlations[hwName] = HWCorrelation{
			DataPoints:              points,
			CorrelationGiven:        Pearson(hwScores, given),
			CorrelationQuality:      Pearson(hwScores, quality),
			CorrelationRelevance:    Pearson(hwScores, relevance),
			CorrelationConcreteness: Pearson(hwScores, concreteness),
			CorrelationConstructive: Pearson(hwScores, constructive),
			Stats: HWStats{
				AvgScore:        round2(mean(hwScores)),
				AvgGiven:        round2(mean(given)),
				AvgQuality:      round2(mean(quality)),
				AvgRelevance:    round2(mean(relevance)),
				AvgConcreteness: round2(mean(concreteness)),
				AvgConstructive: round2(mean(constructive)),
				StdScore:        round2(stddev(hwScores)),
				TotalStudents:   len(points),
			},
		}
	}

	report.Students = buildStudentDetails(scores, activity)

	withReviews := 0
	totalGiven := 0
	for _, act := range activity {
		if act.totalGiven > 0 {
			withReviews++
		}
		totalGiven += act.totalGiven
	}
	report.Summary = models.AnalyzeStats{
		TotalStudents:      len(scores),
		StudentsWithReview: withReviews,
		TotalReviewsGiven:  totalGiven,
	}
	return report
}

func collectActivity(grouped models.GroupedReviews) map[string]*studentActivity {
	activity := make(map[string]*studentActivity)
	get := func(id string) *studentActivity {
		act, ok := activity[id]
		if !ok {
			act = &studentActivity{
				givenByHW:    make(map[string][]givenReview),
				receivedByHW: make(map[string]int),
			}
			activity[id] = act
		}
		return act
	}

	for hwName, groups := range grouped {
		for _, group := range groups {
			if group.Reviewer == "" {
				continue
			}
			for _, round := range group.Rounds {
				if round.Feedback == "" {
					continue
				}
				gr := givenReview{
					relevance:    labelValue(round.Relevance),
					concreteness: labelValue(round.Concreteness),
					constructive: labelValue(round.Constructive),
				}
				reviewer := get(group.Reviewer)
				reviewer.givenByHW[hwName] = append(reviewer.givenByHW[hwName], gr)
				reviewer.totalGiven++
				reviewer.qualityGiven.Relevance += gr.relevance
				reviewer.qualityGiven.Concreteness += gr.concreteness
				reviewer.qualityGiven.Constructive += gr.constructive

				if group.Author != "" && group.Author != models.AuthorUnknown {
					author := get(group.Author)
					author.receivedByHW[hwName]++
					author.totalReceived++
				}
			}
		}
	}
	return activity
}

func labelValue(p *int) int {
	if p != nil && *p == 1 {
		return 1
	}
	return 0
}

func buildDataPoints(hwName string, scores map[string]models.ScoreRow, activity map[string]*studentActivity) []DataPoint {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	points := make([]DataPoint, 0, len(ids))
	for _, id := range ids {
		row := scores[id]
		point := DataPoint{
			StudentID: id,
			Name:      row.Name,
			HWScore:   row.HWScores[hwName],
		}
		if act, ok := activity[id]; ok {
			given := act.givenByHW[hwName]
			point.ReviewsGiven = len(given)
			point.ReviewsReceived = act.receivedByHW[hwName]
			if len(given) > 0 {
				var rel, con, ctr int
				for _, g := range given {
					rel += g.relevance
					con += g.concreteness
					ctr += g.constructive
				}
				n := float64(len(given))
				point.QualityScore = round2(float64(rel+con+ctr) / (n * 3) * 100)
				point.RelevanceScore = round2(float64(rel) / n * 100)
				point.ConcretenessScore = round2(float64(con) / n * 100)
				point.ConstructiveScore = round2(float64(ctr) / n * 100)
			}
		}
		points = append(points, point)
	}
	return points
}

func buildStudentDetails(scores map[string]models.ScoreRow, activity map[string]*studentActivity) []StudentDetail {
	details := make([]StudentDetail, 0, len(scores))
	for id, row := range scores {
		detail := StudentDetail{
			ID:       id,
			Name:     row.Name,
			HWScores: row.HWScores,
			Midterm:  row.Midterm,
			Final:    row.Final,
		}
		if len(row.HWScores) > 0 {
			var sum int
			for _, s := range row.HWScores {
				sum += s
			}
			detail.AvgHWScore = round2(float64(sum) / float64(len(row.HWScores)))
		}
		if act, ok := activity[id]; ok {
			detail.ReviewsGiven = act.totalGiven
			detail.ReviewsReceived = act.totalReceived
			detail.QualityBreakdown = act.qualityGiven
			if act.totalGiven > 0 {
				n := float64(act.totalGiven)
				detail.RelevanceScore = round2(float64(act.qualityGiven.Relevance) / n * 100)
				detail.ConcretenessScore = round2(float64(act.qualityGiven.Concreteness) / n * 100)
				detail.ConstructiveScore = round2(float64(act.qualityGiven.Constructive) / n * 100)
				detail.QualityScore = round2((detail.RelevanceScore + detail.ConcretenessScore + detail.ConstructiveScore) / 3)
			}
		}
		details = append(details, detail)
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details
}
