package catalog

import (
	"context"
	"regexp"
)

const IndexURL = "https://catalog.wcupa.edu/general-information/index-course-prefix-guide/course-index/undergraduate/index.xml"

var subjectPathRegex = regexp.MustCompile(`general-information/index-course-prefix-guide/course-index/undergraduate/([^/<>"\s]+)/`)

// Getter returns the body of a url, *fetch.Fetcher implements it.
type Getter interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// EnumerateSubjects returns every subject directory named in the index, in
// the order they appear. Duplicates are kept.
func EnumerateSubjects(body string) []string {
	subjects := []string{}
	for _, submatches := range subjectPathRegex.FindAllStringSubmatch(body, -1) {
		subjects = append(subjects, submatches[1])
	}
	return subjects
}

func ScrapeSubjects(ctx context.Context, getter Getter, indexURL string) ([]string, error) {
	body, err := getter.Fetch(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	return EnumerateSubjects(body), nil
}

// Dedupe drops repeated subjects, keeping the first occurrence.
func Dedupe(subjects []string) []string {
	seen := make(map[string]bool, len(subjects))
	unique := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		if seen[subject] {
			continue
		}
		seen[subject] = true
		unique = append(unique, subject)
	}
	return unique
}
