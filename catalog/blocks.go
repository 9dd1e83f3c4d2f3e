package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Bwc9876/wcu-course-db/db"
)

// Block is the raw markup of one course inside a subject listing.
type Block struct {
	Number uint32
	Raw    string
}

func blockRegex(subject string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?is)<course code="` + regexp.QuoteMeta(subject) + ` (\d+)">\s*<!\[CDATA\[(.*?)\]\]>`)
}

// SplitBlocks extracts the course containers of a subject listing in the
// order they appear.
func SplitBlocks(subject, body string) ([]Block, error) {
	re, err := blockRegex(subject)
	if err != nil {
		return nil, &ParseError{Code: subject, Reason: "invalid subject", Err: err}
	}

	blocks := []Block{}
	for _, submatches := range re.FindAllStringSubmatch(body, -1) {
		number, err := strconv.ParseUint(submatches[1], 10, 32)
		if err != nil {
			return nil, &ParseError{Code: subject + " " + submatches[1], Reason: "course number", Err: err}
		}
		blocks = append(blocks, Block{Number: uint32(number), Raw: submatches[2]})
	}

	return blocks, nil
}

// ParseSubject splits a subject listing and parses every block in it.
func ParseSubject(subject, body string) ([]db.Course, error) {
	blocks, err := SplitBlocks(subject, body)
	if err != nil {
		return nil, err
	}

	prefix := strings.ToUpper(subject)
	courses := make([]db.Course, 0, len(blocks))
	for _, block := range blocks {
		course, err := ParseBlock(db.NewCourseCode(prefix, block.Number), block.Raw)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, nil
}
