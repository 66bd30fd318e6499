package types

// UserProfile describes a student requesting recommendations.
type UserProfile struct {
	UserID     string             `json:"user_id"`
	Age        int                `json:"age,omitempty"`
	ClassLevel string             `json:"class_level,omitempty"`
	Stream     string             `json:"stream,omitempty"`
	Interests  []string           `json:"interests,omitempty"`
	Location   Document           `json:"location,omitempty"`
	QuizScores map[string]float64 `json:"quiz_scores,omitempty"`
}

// StreamRecommendation suggests an academic stream with supporting context.
type StreamRecommendation struct {
	Stream           string   `json:"stream"`
	Confidence       float64  `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
	CareerPaths      []string `json:"career_paths"`
	RequiredSubjects []string `json:"required_subjects"`
}

// CollegeRecommendation scores a college against a user profile.
type CollegeRecommendation struct {
	CollegeID  string   `json:"college_id"`
	Name       string   `json:"name"`
	MatchScore float64  `json:"match_score"`
	Reasons    []string `json:"reasons"`
	Programs   []string `json:"programs"`
}

// CareerPathway describes a career option and the path into it.
type CareerPathway struct {
	Career           string   `json:"career"`
	EducationPath    []string `json:"education_path"`
	SkillsRequired   []string `json:"skills_required"`
	JobOpportunities []string `json:"job_opportunities"`
	SalaryRange      Document `json:"salary_range"`
	GrowthProspects  string   `json:"growth_prospects"`
}

// QuizResponse is a single answered quiz question.
type QuizResponse struct {
	UserID         string `json:"user_id"`
	QuestionID     string `json:"question_id"`
	SelectedAnswer int    `json:"selected_answer"`
	TimeTaken      int    `json:"time_taken,omitempty"`
}

// QuizReport summarizes a set of quiz responses.
type QuizReport struct {
	Scores           map[string]int `json:"scores"`
	AverageScore     float64        `json:"average_score"`
	TotalTime        int            `json:"total_time"`
	PerformanceLevel string         `json:"performance_level"`
	Recommendations  []string       `json:"recommendations"`
}

// EnvironmentInfo is a static snapshot of the host the engine runs on,
// reported by the status endpoint.
type EnvironmentInfo struct {
	OS            string  `json:"os"`
	Architecture  string  `json:"architecture"`
	GoVersion     string  `json:"go_version"`
	CPUCores      int     `json:"cpu_cores"`
	CPUModel      string  `json:"cpu_model,omitempty"`
	TotalMemoryGB float64 `json:"total_memory_gb,omitempty"`
}
