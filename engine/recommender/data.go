package recommender

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/eduniti/guidance/engine/types"
)

// College is one row of the college dataset.
type College struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Location   types.Document `json:"location"`
	Programs   []string       `json:"programs"`
	Streams    []string       `json:"streams"`
	CutOff     float64        `json:"cut_off"`
	Facilities []string       `json:"facilities"`
}

// Career is one row of the career dataset.
type Career struct {
	Career        string         `json:"career"`
	Stream        string         `json:"stream"`
	EducationPath []string       `json:"education_path"`
	Skills        []string       `json:"skills"`
	SalaryRange   types.Document `json:"salary_range"`
	Growth        string         `json:"growth"`
}

// Stream is one row of the academic stream dataset.
type Stream struct {
	Stream      string   `json:"stream"`
	Subjects    []string `json:"subjects"`
	Careers     []string `json:"careers"`
	Description string   `json:"description"`
}

// Dataset bundles the three seed tables the recommender scores against.
type Dataset struct {
	Colleges []College `json:"colleges"`
	Careers  []Career  `json:"careers"`
	Streams  []Stream  `json:"streams"`
}

// LoadDataset reads a dataset from a JSON file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}
	return &ds, nil
}

// DefaultDataset returns the built-in seed data used when no dataset file is
// configured.
func DefaultDataset() *Dataset {
	return &Dataset{
		Colleges: []College{
			{
				ID:   "1",
				Name: "Delhi University",
				Type: "government",
				Location: types.Document{
					"state": "Delhi", "city": "New Delhi",
				},
				Programs:   []string{"B.A.", "B.Sc.", "B.Com.", "B.Tech"},
				Streams:    []string{"arts", "science", "commerce", "engineering"},
				CutOff:     85,
				Facilities: []string{"hostel", "library", "sports", "labs"},
			},
			{
				ID:   "2",
				Name: "IIT Delhi",
				Type: "government",
				Location: types.Document{
					"state": "Delhi", "city": "New Delhi",
				},
				Programs:   []string{"B.Tech", "M.Tech", "Ph.D"},
				Streams:    []string{"engineering"},
				CutOff:     95,
				Facilities: []string{"hostel", "library", "sports", "labs", "research_center"},
			},
			{
				ID:   "3",
				Name: "JNU",
				Type: "government",
				Location: types.Document{
					"state": "Delhi", "city": "New Delhi",
				},
				Programs:   []string{"B.A.", "M.A.", "Ph.D"},
				Streams:    []string{"arts"},
				CutOff:     80,
				Facilities: []string{"hostel", "library", "sports"},
			},
		},
		Careers: []Career{
			{
				Career:        "Software Engineer",
				Stream:        "engineering",
				EducationPath: []string{"B.Tech Computer Science", "M.Tech (Optional)"},
				Skills:        []string{"Programming", "Problem Solving", "Mathematics"},
				SalaryRange:   types.Document{"min": 500000, "max": 2000000},
				Growth:        "High",
			},
			{
				Career:        "Doctor",
				Stream:        "medical",
				EducationPath: []string{"MBBS", "MD/MS (Specialization)"},
				Skills:        []string{"Biology", "Chemistry", "Empathy", "Communication"},
				SalaryRange:   types.Document{"min": 800000, "max": 3000000},
				Growth:        "High",
			},
			{
				Career:        "Teacher",
				Stream:        "arts",
				EducationPath: []string{"B.Ed", "M.A. in Subject"},
				Skills:        []string{"Communication", "Patience", "Subject Knowledge"},
				SalaryRange:   types.Document{"min": 300000, "max": 800000},
				Growth:        "Medium",
			},
		},
		Streams: []Stream{
			{
				Stream:      "science",
				Subjects:    []string{"Physics", "Chemistry", "Mathematics", "Biology"},
				Careers:     []string{"Engineer", "Doctor", "Scientist", "Researcher"},
				Description: "Focus on scientific subjects and analytical thinking",
			},
			{
				Stream:      "arts",
				Subjects:    []string{"History", "Geography", "Political Science", "Literature"},
				Careers:     []string{"Teacher", "Journalist", "Lawyer", "Social Worker"},
				Description: "Focus on humanities and social sciences",
			},
			{
				Stream:      "commerce",
				Subjects:    []string{"Accountancy", "Business Studies", "Economics", "Mathematics"},
				Careers:     []string{"CA", "MBA", "Banking", "Finance"},
				Description: "Focus on business and financial subjects",
			},
		},
	}
}
