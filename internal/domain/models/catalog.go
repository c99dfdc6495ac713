package models

import "strings"

// Roles a user can hold.
const (
	RoleStudent      = "student"
	RoleStudentGroup = "student_group"
	RoleOrganization = "organization"
	RoleAdmin        = "admin"
)

var roles = []string{RoleStudent, RoleStudentGroup, RoleOrganization, RoleAdmin}

// categories is the fixed list a job's categories are drawn from.
var categories = []string{
	"Animal Welfare",
	"Arts & Heritage",
	"Children & Youth",
	"Community",
	"Disability",
	"Education",
	"Elderly",
	"Environment",
	"Family",
	"Health",
	"Social Service",
	"Sports",
	"Technology",
}

// suitability is the fixed list of audiences a job can be marked suitable for.
var suitability = []string{
	"Individuals",
	"Groups",
	"Families",
	"Youth",
	"Seniors",
	"Persons with Disabilities",
}

var (
	roleSet        = makeSet(roles)
	categorySet    = makeSet(categories)
	suitabilitySet = makeSet(suitability)
)

func makeSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

// Roles returns the role enumeration.
func Roles() []string { return append([]string(nil), roles...) }

// Categories returns the category enumeration in display order.
func Categories() []string { return append([]string(nil), categories...) }

// Suitability returns the suitability enumeration in display order.
func Suitability() []string { return append([]string(nil), suitability...) }

// IsCategory reports whether c is one of the fixed categories (exact match).
func IsCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}

// IsSuitability reports whether s is one of the fixed suitability values.
func IsSuitability(s string) bool {
	_, ok := suitabilitySet[s]
	return ok
}

// ParseRole maps user input to a role constant. It accepts the constants
// themselves plus the spellings the web client uses ("Student Group",
// "StudentGroup", ...).
func ParseRole(s string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(s))
	r = strings.NewReplacer(" ", "_", "-", "_").Replace(r)
	if r == "studentgroup" {
		r = RoleStudentGroup
	}
	_, ok := roleSet[r]
	return r, ok
}
