package domain

// CourseAverage is the mean score of one course across all rows that have a value for it.
type CourseAverage struct {
	Course  string  `json:"course"`
	Average float64 `json:"average"`
}

// SemesterAverage is the mean row total of every row in one semester.
type SemesterAverage struct {
	Semester string  `json:"semester"`
	Average  float64 `json:"average"`
	Students int     `json:"students"`
}

// StudentRanking is one entry of the top students list
type StudentRanking struct {
	Name       string  `json:"name"`
	Semester   string  `json:"semester"`
	Total      float64 `json:"total"`
	BestCourse string  `json:"best_course"`
}

// AnalysisResult holds every statistic the summary report is built from.
// Averages keep course order and semester first-appearance order.
type AnalysisResult struct {
	CourseAverages   []CourseAverage   `json:"course_averages"`
	HighestCourse    CourseAverage     `json:"highest_course"`
	LowestCourse     CourseAverage     `json:"lowest_course"`
	SemesterAverages []SemesterAverage `json:"semester_averages"`
	BestSemester     SemesterAverage   `json:"best_semester"`
	WorstSemester    SemesterAverage   `json:"worst_semester"`
	TopStudents      []StudentRanking  `json:"top_students"`
	Recommendations  []string          `json:"recommendations"`
	RowCount         int               `json:"row_count"`
	Source           string            `json:"source,omitempty"`
}
