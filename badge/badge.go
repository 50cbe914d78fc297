// Package badge maps cumulative points to the badge catalogue and decides
// certificate eligibility. Everything here is pure.
package badge

import "opengalaxy/apperr"

type Tier struct {
	Threshold int
	Name      string
}

// Catalogue is ordered by ascending threshold.
var Catalogue = []Tier{
	{1, "Code Spark"},
	{3, "Stellar Coder"},
	{5, "Cosmic Contributor"},
	{7, "Galaxy Explorer"},
	{10, "Nebula Navigator"},
	{12, "Star Solver"},
	{15, "Orbit Master"},
	{17, "Astro Achiever"},
	{20, "Supernova Star"},
	{25, "Interstellar Innovator"},
	{30, "Cosmic Trailblazer"},
	{35, "Galactic Guru"},
	{40, "Stellar Vanguard"},
	{45, "Nebula Champion"},
	{50, "Universal Legend"},
}

const FinalBadge = "Universal Legend"

// RequiredBadges is how many catalogue badges a user needs before a
// certificate can be issued.
const RequiredBadges = 1

const (
	DefaultCourseTitle  = "Welcome to OpenGalaxy"
	DefaultPrimarySkill = "Getting Started"
)

// EarnedFor returns every badge whose threshold is <= points, in catalogue order.
func EarnedFor(points int) []string {
	var out []string
	for _, t := range Catalogue {
		if points >= t.Threshold {
			out = append(out, t.Name)
		}
	}
	return out
}

// Assign appends each earned badge missing from current. Existing badges are
// never reordered or removed. All thresholds are checked, so several tiers can
// be granted at once.
func Assign(points int, current []string) []string {
	have := make(map[string]struct{}, len(current))
	out := make([]string, 0, len(Catalogue))
	for _, b := range current {
		have[b] = struct{}{}
		out = append(out, b)
	}
	for _, t := range Catalogue {
		if points < t.Threshold {
			continue
		}
		if _, ok := have[t.Name]; ok {
			continue
		}
		have[t.Name] = struct{}{}
		out = append(out, t.Name)
	}
	return out
}

// AwardPoint adds one point and recomputes badges. granted reports whether the
// badge list grew.
func AwardPoint(points int, current []string) (newPoints int, badges []string, granted bool) {
	newPoints = points + 1
	badges = Assign(newPoints, current)
	return newPoints, badges, len(badges) > len(current)
}

// Next returns the next badge to earn and the points still missing. ok is
// false once the whole catalogue is earned.
func Next(points int) (name string, missing int, ok bool) {
	for _, t := range Catalogue {
		if points < t.Threshold {
			return t.Name, t.Threshold - points, true
		}
	}
	return "", 0, false
}

func IsCatalogued(name string) bool {
	for _, t := range Catalogue {
		if t.Name == name {
			return true
		}
	}
	return false
}

// CheckEligibility fails with a Forbidden error naming required versus held
// badge counts.
func CheckEligibility(badges []string) error {
	held := 0
	for _, b := range badges {
		if IsCatalogued(b) {
			held++
		}
	}
	if held < RequiredBadges {
		return apperr.Forbidden("certificate requires at least %d badge(s), user holds %d", RequiredBadges, held)
	}
	return nil
}

func PrimarySkill(badges []string) string {
	if len(badges) == 0 {
		return DefaultPrimarySkill
	}
	return badges[len(badges)-1]
}

func CourseTitle(badges []string) string {
	if len(badges) == 0 {
		return DefaultCourseTitle
	}
	switch badges[len(badges)-1] {
	case "Code Spark":
		return "Problem Solving Fundamentals"
	case "Stellar Coder", "Cosmic Contributor":
		return "Intermediate Problem Solving"
	default:
		return "Advanced Problem Solving"
	}
}
