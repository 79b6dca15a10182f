package model

// PresentEnd marks an ongoing date range in a normalized profile.
const PresentEnd = "Present"

// CanonicalProfile is the application's unified representation of an imported
// profile. Field names and list shapes are stable: CV creation depends on
// them structurally. Section slices are always non-nil; every list entry
// carries a synthetic id assigned at normalization time.
type CanonicalProfile struct {
	PersonalInfo        PersonalInfo          `json:"personal_info"`
	Experience          []Experience          `json:"experience"`
	Education           []Education           `json:"education"`
	Skills              []Skill               `json:"skills"`
	Languages           []Language            `json:"languages"`
	Projects            []Project             `json:"projects"`
	Certifications      []Certification       `json:"certifications"`
	VolunteerExperience []VolunteerExperience `json:"volunteer_experience"`
	Publications        []Publication         `json:"publications"`
	Courses             []Course              `json:"courses"`
	Organizations       []Organization        `json:"organizations"`
}

type PersonalInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Headline  string `json:"headline"`
	Summary   string `json:"summary"`
	Location  string `json:"location"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
}

// DateRange is a normalized start/end pair. EndDate is PresentEnd for
// ongoing entries.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	DateRange
}

type Education struct {
	ID     string `json:"id"`
	School string `json:"school"`
	Degree string `json:"degree"`
	Field  string `json:"field"`
	DateRange
}

type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

type Language struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	DateRange
}

type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	URL    string `json:"url"`
}

type VolunteerExperience struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
	Description  string `json:"description"`
	DateRange
}

type Publication struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	URL       string `json:"url"`
}

type Course struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
