package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Bwc9876/wcu-course-db/db"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	distanceMarker = "Distance education offering may be available."
	prereqMarker   = "Pre / Co requisites:"
	genEdMarker    = "Gen Ed Attribute:"
	offeredMarker  = "Typically offered in"

	descriptionMarker = "courseblockdesc"
	paragraphBreak    = "<br />\n"
	noDescription     = "No Description"
)

var fullDetailRegex = regexp.MustCompile(`(?s)<strong>.*&#160;.*\.  (.*)\.  ([+-]?(?:\d*\.)?\d+).*</strong>.*<p[^>]*courseblockdesc[^>]*>(.*)<br />\n</p>`)
var emptyDescriptionRegex = regexp.MustCompile(`<p[^>]*courseblockdesc[^>]*>\s*</p>`)
var stubRegex = regexp.MustCompile(`(?s)<strong>.*&#160;.*\.  (.*)\.  (\d+).*</strong>`)

// blockMatch is what an extraction rule pulls out of a raw block.
type blockMatch struct {
	title   string
	credits string
	// nil for stub entries
	paragraphs []string
}

type extractionRule struct {
	name    string
	extract func(raw string) (blockMatch, bool)
}

// tried in order, the first match wins
var extractionRules = []extractionRule{
	{name: "full-detail", extract: extractFullDetail},
	{name: "stub", extract: extractStub},
}

func extractFullDetail(raw string) (blockMatch, bool) {
	submatches := fullDetailRegex.FindStringSubmatch(raw)
	if submatches == nil {
		return blockMatch{}, false
	}
	return blockMatch{
		title:      submatches[1],
		credits:    submatches[2],
		paragraphs: strings.Split(strings.TrimSpace(submatches[3]), paragraphBreak),
	}, true
}

// Stub entries have no description paragraph, or an empty one. A block with
// a non-empty description that failed the full-detail rule is malformed.
func extractStub(raw string) (blockMatch, bool) {
	if strings.Contains(raw, descriptionMarker) && !emptyDescriptionRegex.MatchString(raw) {
		return blockMatch{}, false
	}
	loc := stubRegex.FindStringSubmatchIndex(raw)
	if loc == nil {
		return blockMatch{}, false
	}
	// stub credits are whole numbers, "1.50" must not read as 1
	if rest := raw[loc[5]:]; len(rest) > 1 && rest[0] == '.' && unicode.IsDigit(rune(rest[1])) {
		return blockMatch{}, false
	}
	return blockMatch{title: raw[loc[2]:loc[3]], credits: raw[loc[4]:loc[5]]}, true
}

// ParseBlock turns the raw markup of one course into a Course.
func ParseBlock(code db.CourseCode, raw string) (db.Course, error) {
	for _, rule := range extractionRules {
		match, ok := rule.extract(raw)
		if !ok {
			continue
		}
		return buildCourse(code, rule.name, match)
	}
	return db.Course{}, &ParseError{Code: code.String(), Reason: "block matches no known markup"}
}

func buildCourse(code db.CourseCode, rule string, match blockMatch) (db.Course, error) {
	credits, err := strconv.ParseFloat(match.credits, 64)
	if err != nil {
		return db.Course{}, &ParseError{Code: code.String(), Reason: rule + " credits " + strconv.Quote(match.credits), Err: err}
	}

	course := db.Course{
		Title:             html.UnescapeString(match.title),
		Code:              code,
		Description:       noDescription,
		Credits:           credits,
		PreRequirements:   []string{},
		GenEdFulfillments: []string{},
		OfferedTerms:      []string{},
	}

	if match.paragraphs == nil {
		return course, nil
	}

	course.Description = strings.TrimSpace(match.paragraphs[0])

	for _, paragraph := range match.paragraphs[1:] {
		paragraph = strings.TrimSpace(paragraph)
		switch {
		case strings.Contains(paragraph, distanceMarker):
			course.DistanceAvailable = true
		case strings.HasPrefix(paragraph, prereqMarker):
			requisites, err := prerequisites(code, paragraph)
			if err != nil {
				return db.Course{}, err
			}
			course.PreRequirements = appendUnique(course.PreRequirements, requisites...)
		case strings.HasPrefix(paragraph, genEdMarker):
			course.GenEdFulfillments = splitAttribute(paragraph, genEdMarker)
		case strings.HasPrefix(paragraph, offeredMarker):
			course.OfferedTerms = splitAttribute(paragraph, offeredMarker)
		}
	}

	return course, nil
}

// prerequisites lists the title attributes of a requisites paragraph. The
// catalog sometimes links the course itself first, that link is dropped.
func prerequisites(code db.CourseCode, paragraph string) ([]string, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(paragraph))
	if err != nil {
		return nil, &ParseError{Code: code.String(), Reason: "requisites", Err: err}
	}

	requisites := []string{}
	document.Find("[title]").Each(func(i int, s *goquery.Selection) {
		title := s.AttrOr("title", "")
		title = strings.ReplaceAll(title, "\u00a0", " ")
		title = strings.ReplaceAll(title, "&#160;", " ")
		title = strings.TrimSpace(strings.ReplaceAll(title, `"`, ""))
		if title == "" {
			return
		}
		if i == 0 && sameCode(code, title) {
			return
		}
		requisites = append(requisites, title)
	})

	return requisites, nil
}

// sameCode compares a linked "PREFIX NUMBER" title against code, numbers
// are compared by value so "MAT 050" is MAT 50.
func sameCode(code db.CourseCode, title string) bool {
	prefix, number, found := strings.Cut(title, " ")
	if !found || !strings.EqualFold(prefix, code.Prefix) {
		return false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(number), 10, 32)
	if err != nil {
		return false
	}
	return uint32(n) == code.Number
}

func splitAttribute(paragraph, marker string) []string {
	text := strings.TrimPrefix(paragraph, marker)
	text = strings.ReplaceAll(text, "&amp;", "&")

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '&'
	})

	values := []string{}
	for _, field := range fields {
		field = strings.TrimRightFunc(field, func(r rune) bool {
			return r == '.' || unicode.IsSpace(r)
		})
		field = strings.TrimLeftFunc(field, unicode.IsSpace)
		if field == "" {
			continue
		}
		values = append(values, field)
	}
	return values
}

func appendUnique(values []string, additions ...string) []string {
	for _, addition := range additions {
		found := false
		for _, value := range values {
			if value == addition {
				found = true
				break
			}
		}
		if !found {
			values = append(values, addition)
		}
	}
	return values
}
