package drivetree

// This file is part of the package tests (package drivetree) and provides
// helpers that allow tests in the external package to access internal
// package constructs.

// PartialRatio exposes the fuzzy search score.
func PartialRatio(term, name string) int {
	return partialRatio(term, name)
}

// TokenSort exposes the word normalization of fuzzy search.
func TokenSort(s string) string {
	return tokenSort(s)
}

// DisambiguatedName exposes the local name given to duplicate siblings on pull.
func DisambiguatedName(name string, id NodeID) string {
	return disambiguatedName(name, id)
}

// LocalName exposes the conversion of remote names to local path elements.
func LocalName(name string) string {
	return localName(name)
}
