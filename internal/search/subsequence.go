package search

// Subsequence matches when every query rune appears in the document text in
// order, not necessarily adjacent. It never reorders and scores every hit 0.
type Subsequence struct{}

var _ Matcher = Subsequence{}

func (Subsequence) Search(query string, corpus []Document) ([]Match, error) {
	q := []rune(query)
	var matches []Match
	for i, d := range corpus {
		if IsSubsequence(q, d.Text) {
			matches = append(matches, Match{Index: i})
		}
	}
	return matches, nil
}

// IsSubsequence reports whether query occurs in order within target.
func IsSubsequence(query []rune, target string) bool {
	if len(query) == 0 {
		return true
	}
	qi := 0
	for _, r := range target {
		if r == query[qi] {
			qi++
			if qi == len(query) {
				return true
			}
		}
	}
	return false
}
