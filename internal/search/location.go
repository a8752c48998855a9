package search

import "strings"

// cityAliasGroups lists spellings of the same city. Entries are folded on
// first use, so diacritics are fine here.
var cityAliasGroups = [][]string{
	{"prishtina", "prishtinë", "prishtine", "pristina", "priština"},
	{"prizren", "prizreni"},
	{"peja", "pejë", "peje", "peć", "pec"},
	{"gjakova", "gjakovë", "gjakove", "đakovica", "djakovica"},
	{"ferizaj", "ferizaji", "uroševac", "urosevac"},
	{"gjilan", "gjilani", "gnjilane"},
	{"mitrovica", "mitrovicë", "mitrovice"},
	{"podujeva", "podujevë", "podujeve", "podujevo"},
	{"vushtrri", "vushtrria", "vučitrn", "vucitrn"},
}

var cityAliasIndex = buildAliasIndex()

func buildAliasIndex() map[string][]string {
	index := make(map[string][]string)
	for _, group := range cityAliasGroups {
		folded := make([]string, 0, len(group))
		seen := make(map[string]struct{})
		for _, alias := range group {
			f := Fold(alias)
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			folded = append(folded, f)
		}
		for _, f := range folded {
			index[f] = folded
		}
	}
	return index
}

// ExpandLocations parses a comma-separated city list into the set of folded
// spellings that should match. An empty set means no location filter.
func ExpandLocations(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Split(raw, ",") {
		f := Fold(token)
		if f == "" {
			continue
		}
		set[f] = struct{}{}
		for _, alias := range cityAliasIndex[f] {
			set[alias] = struct{}{}
		}
	}
	return set
}

// CanonicalCity returns the first spelling of the alias group f belongs to,
// or f itself when the city is unknown. f must already be folded.
func CanonicalCity(f string) string {
	if group, ok := cityAliasIndex[f]; ok {
		return group[0]
	}
	return f
}

// MatchesLocation reports whether city falls in the expanded location set.
func MatchesLocation(city string, locations map[string]struct{}) bool {
	_, ok := locations[Fold(city)]
	return ok
}
