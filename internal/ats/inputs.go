package ats

// ClientInput is the validated payload for client create/update.
type ClientInput struct {
	CompanyName string `form:"company_name" validate:"required,min=2"`
	ContactName string `form:"contact_name"`
	Email       string `form:"email" validate:"omitempty,email"`
	Phone       string `form:"phone"`
	Website     string `form:"website" validate:"omitempty,url"`
	Address     string `form:"address"`
	AssignedTo  string `form:"assigned_to" validate:"required"`
}

// JobInput is the validated payload for job create/update. Range pairs are
// cross-checked after struct validation.
type JobInput struct {
	ClientID      string   `form:"client_id" validate:"required"`
	Title         string   `form:"title" validate:"required"`
	Description   string   `form:"description"`
	Locations     []string `form:"locations" validate:"required,min=1,dive,required"`
	JobType       string   `form:"job_type"`
	ExperienceMin int      `form:"experience_min" validate:"gte=0"`
	ExperienceMax int      `form:"experience_max" validate:"gte=0"`
	SalaryMin     int64    `form:"salary_min" validate:"gte=0"`
	SalaryMax     int64    `form:"salary_max" validate:"gte=0"`
	ScreeningQ1   string   `form:"screening_q1" validate:"required"`
	ScreeningQ2   string   `form:"screening_q2" validate:"required"`
	TeamIDs       []string `form:"team"`
}

// CandidateInput is the validated payload for the internal candidate form.
type CandidateInput struct {
	FirstName        string `form:"first_name" validate:"required"`
	LastName         string `form:"last_name" validate:"required"`
	Email            string `form:"email" validate:"required,email"`
	Phone            string `form:"phone" validate:"required"`
	Location         string `form:"location" validate:"required"`
	Skills           string `form:"skills"`
	ExperienceYears  int    `form:"experience_years" validate:"gte=0"`
	Education        string `form:"education"`
	CurrentCompany   string `form:"current_company"`
	CurrentSalary    int64  `form:"current_salary" validate:"gte=0"`
	ExpectedSalary   int64  `form:"expected_salary" validate:"gte=0"`
	NoticePeriodDays int    `form:"notice_period_days" validate:"gte=0"`
	Notes            string `form:"notes"`
}

// SubmitInput is the validated payload of the public apply form. ResumePath
// is set by the handler after the upload passes type and size checks.
type SubmitInput struct {
	FirstName  string `form:"first_name" validate:"required"`
	LastName   string `form:"last_name" validate:"required"`
	Email      string `form:"email" validate:"required,email"`
	Phone      string `form:"phone" validate:"required"`
	Location   string `form:"location" validate:"required"`
	Answer1    string `form:"screening_answer_1" validate:"required,min=2"`
	Answer2    string `form:"screening_answer_2" validate:"required,min=2"`
	CoverNote  string `form:"cover_note"`
	ResumePath string `form:"-" validate:"required"`
}

// Enrichment carries the richer professional fields written onto a candidate
// when an application is accepted.
type Enrichment struct {
	Skills           string `form:"skills"`
	ExperienceYears  int    `form:"experience_years" validate:"gte=0"`
	Education        string `form:"education"`
	CurrentCompany   string `form:"current_company"`
	CurrentSalary    int64  `form:"current_salary" validate:"gte=0"`
	ExpectedSalary   int64  `form:"expected_salary" validate:"gte=0"`
	NoticePeriodDays int    `form:"notice_period_days" validate:"gte=0"`
	Notes            string `form:"notes"`
}
