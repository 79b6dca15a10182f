package normalizer

// Alias tables map each canonical field to the provider-specific names it may
// arrive under, in priority order. Resolution takes the first non-empty
// match, which makes the precedence reviewable instead of being buried in
// lookup chains.

// Personal info fields.
var (
	firstNameAliases = []string{"firstName", "first_name", "given_name"}
	lastNameAliases  = []string{"lastName", "last_name", "family_name", "surname"}
	fullNameAliases  = []string{"fullName", "full_name", "name"}
	headlineAliases  = []string{"headline", "sub_title", "tagline", "occupation"}
	summaryAliases   = []string{"summary", "about", "bio"}
	locationAliases  = []string{"location", "location_name", "geo_location", "city"}
	emailAliases     = []string{"email", "email_address", "contact_email"}
	phoneAliases     = []string{"phone", "phone_number", "mobile"}
	websiteAliases   = []string{"website", "public_profile_url", "profile_url", "url"}
)

// Section lists. Missing sections default to an empty sequence.
var (
	experienceSectionAliases    = []string{"experience", "experiences", "positions", "work_experience", "jobs"}
	educationSectionAliases     = []string{"education", "educations", "schools"}
	skillsSectionAliases        = []string{"skills", "skill_list"}
	languagesSectionAliases     = []string{"languages", "language_list"}
	projectsSectionAliases      = []string{"projects", "accomplishment_projects"}
	certificationsSectionAliases = []string{"certifications", "certificates", "licenses", "accomplishment_certifications"}
	volunteerSectionAliases     = []string{"volunteerExperience", "volunteer_experience", "volunteering", "volunteer_work"}
	publicationsSectionAliases  = []string{"publications", "accomplishment_publications"}
	coursesSectionAliases       = []string{"courses", "accomplishment_courses"}
	organizationsSectionAliases = []string{"organizations", "accomplishment_organisations", "groups"}
)

// Entry-level fields.
var (
	jobTitleAliases      = []string{"title", "position", "job_title", "role"}
	companyAliases       = []string{"company", "companyName", "company_name", "organization", "employer"}
	descriptionAliases   = []string{"description", "details", "text"}
	schoolAliases        = []string{"school", "schoolName", "school_name", "institution", "university"}
	degreeAliases        = []string{"degree", "degreeName", "degree_name"}
	studyFieldAliases    = []string{"field", "fieldOfStudy", "field_of_study", "major"}
	skillNameAliases     = []string{"name", "skill", "title"}
	skillLevelAliases    = []string{"level", "proficiency", "rating"}
	languageNameAliases  = []string{"name", "language", "title"}
	proficiencyAliases   = []string{"proficiency", "level", "fluency"}
	projectNameAliases   = []string{"name", "title", "project_name"}
	urlAliases           = []string{"url", "link", "href", "credential_url"}
	issuerAliases        = []string{"issuer", "authority", "organization", "issuing_organization"}
	dateAliases          = []string{"date", "issued_on", "issue_date", "published_on", "year"}
	volunteerRoleAliases = []string{"role", "title", "position"}
	publisherAliases     = []string{"publisher", "publication", "journal"}
	courseProviderAliases = []string{"provider", "institution", "authority", "platform"}
	orgRoleAliases       = []string{"role", "position", "title"}
)
