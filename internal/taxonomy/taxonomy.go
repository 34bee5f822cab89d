// Package taxonomy holds the fixed mapping between report types and the
// municipal department responsible for them. It is pure lookup data: no
// persistence, no side effects.
package taxonomy

// Departments
const (
	PublicWorks    = "public_works"
	PublicServices = "public_services"
	PublicSafety   = "public_safety"
	Health         = "health"
	Environment    = "environment"
)

// typesByDepartment lists the canonical report types each department handles.
// The first type in a list is the department's default, used when a report is
// reassigned across departments and no valid type is suggested.
var typesByDepartment = map[string][]string{
	PublicWorks:    {"pothole", "damaged_pavement", "broken_sidewalk", "storm_drain"},
	PublicServices: {"water_leak", "street_light", "water_outage", "garbage", "street_cleaning"},
	PublicSafety:   {"unsafe_area", "accident", "crime"},
	Health:         {"pest_infestation", "injured_animal", "pollution"},
	Environment:    {"fallen_tree", "deforestation", "illegal_burning"},
}

// aliases maps legacy plural spellings, still present in older data, onto
// their canonical type.
var aliases = map[string]string{
	"potholes":         "pothole",
	"broken_sidewalks": "broken_sidewalk",
	"storm_drains":     "storm_drain",
	"water_leaks":      "water_leak",
	"accidents":        "accident",
	"crimes":           "crime",
	"pests":            "pest_infestation",
	"injured_animals":  "injured_animal",
	"fallen_trees":     "fallen_tree",
	"illegal_burnings": "illegal_burning",
}

var departmentByType = func() map[string]string {
	m := make(map[string]string)
	for dept, types := range typesByDepartment {
		for _, t := range types {
			m[t] = dept
		}
	}
	return m
}()

// Canonical resolves alias spellings to the canonical type. Unknown types are
// returned unchanged.
func Canonical(reportType string) string {
	if c, ok := aliases[reportType]; ok {
		return c
	}
	return reportType
}

// DepartmentOf returns the department owning a report type, or "" if the type
// is unknown.
func DepartmentOf(reportType string) string {
	return departmentByType[Canonical(reportType)]
}

// TypesOf returns the canonical types a department handles, in default-first
// order. The returned slice must not be mutated.
func TypesOf(department string) []string {
	return typesByDepartment[department]
}

// IsValidFor reports whether reportType belongs to department.
func IsValidFor(reportType, department string) bool {
	return DepartmentOf(reportType) == department && department != ""
}

// SuggestType picks the best type for a report moving to targetDepartment:
// the current type if it is already valid there, else the department's
// default, else the current type unchanged.
func SuggestType(currentType, targetDepartment string) string {
	current := Canonical(currentType)
	if IsValidFor(current, targetDepartment) {
		return current
	}
	if types := typesByDepartment[targetDepartment]; len(types) > 0 {
		return types[0]
	}
	return current
}

// Departments returns all known departments.
func Departments() []string {
	out := make([]string, 0, len(typesByDepartment))
	for dept := range typesByDepartment {
		out = append(out, dept)
	}
	return out
}
