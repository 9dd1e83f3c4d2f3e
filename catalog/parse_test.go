package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/Bwc9876/wcu-course-db/db"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const biologyBlock = "<strong>BIO&#160;110.  Intro to Biology.  3.00 Credit Hours.  </strong><p class=courseblockdesc>Basic concepts.<br />\nPre / Co requisites: <a title=\"BIO 100\">BIO 100</a> <br />\nGen Ed Attribute: Natural Science &amp; Lab.<br />\n</p>\n"

const dataStructuresBlock = "<strong>CSC&#160;241.  Data Structures &amp; Algorithms.  3 Credits.  </strong>\n" +
	"<p class=\"courseblockdesc\">Lists, trees and graphs.<br />\n" +
	"Pre / Co requisites: <a href=\"/search/?P=CSC%20241\" title=\"CSC&#160;241\" class=\"bubblelink code\">CSC&#160;241</a> requires " +
	"<a title=\"CSC&#160;142\">CSC&#160;142</a> and <a title=\"MAT&#160;151\">MAT&#160;151</a> or <a title=\"CSC&#160;142\">CSC&#160;142</a>.<br />\n" +
	"Typically offered in Fall, Spring &amp; Summer.<br />\n" +
	"Distance education offering may be available.<br />\n" +
	"</p>\n"

const stubBlock = "<strong>CSC&#160;101.  Intro to Programming.  3</strong>"

func TestParseBlockFullDetail(t *testing.T) {
	course, err := ParseBlock(db.NewCourseCode("BIO", 110), biologyBlock)
	require.NoError(t, err)

	expected := db.Course{
		Title:             "Intro to Biology",
		Code:              db.NewCourseCode("BIO", 110),
		Description:       "Basic concepts.",
		Credits:           3.00,
		PreRequirements:   []string{"BIO 100"},
		GenEdFulfillments: []string{"Natural Science", "Lab"},
		DistanceAvailable: false,
		OfferedTerms:      []string{},
	}
	if diff := cmp.Diff(expected, course); diff != "" {
		t.Fatalf("course mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlockAttributes(t *testing.T) {
	course, err := ParseBlock(db.NewCourseCode("CSC", 241), dataStructuresBlock)
	require.NoError(t, err)

	require.Equal(t, "Data Structures & Algorithms", course.Title)
	require.Equal(t, 3.0, course.Credits)
	require.Equal(t, "Lists, trees and graphs.", course.Description)
	// the self link is skipped and the repeated CSC 142 is dropped
	require.Equal(t, []string{"CSC 142", "MAT 151"}, course.PreRequirements)
	require.Equal(t, []string{"Fall", "Spring", "Summer"}, course.OfferedTerms)
	require.Empty(t, course.GenEdFulfillments)
	require.True(t, course.DistanceAvailable)
}

func TestParseBlockStub(t *testing.T) {
	course, err := ParseBlock(db.NewCourseCode("CSC", 101), stubBlock)
	require.NoError(t, err)

	expected := db.Course{
		Title:             "Intro to Programming",
		Code:              db.NewCourseCode("CSC", 101),
		Description:       "No Description",
		Credits:           3.0,
		PreRequirements:   []string{},
		GenEdFulfillments: []string{},
		OfferedTerms:      []string{},
	}
	if diff := cmp.Diff(expected, course); diff != "" {
		t.Fatalf("course mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlockEmptyDescription(t *testing.T) {
	raw := "<strong>CSC&#160;102.  Seminar.  1 Credit</strong>\n<p class=\"courseblockdesc\">\n</p>\n"

	course, err := ParseBlock(db.NewCourseCode("CSC", 102), raw)
	require.NoError(t, err)
	require.Equal(t, "Seminar", course.Title)
	require.Equal(t, "No Description", course.Description)
	require.Equal(t, 1.0, course.Credits)
	require.Empty(t, course.PreRequirements)
}

func TestParseBlockIdempotent(t *testing.T) {
	for _, raw := range []string{biologyBlock, dataStructuresBlock, stubBlock} {
		code := db.NewCourseCode("CSC", 241)
		first, err := ParseBlock(code, raw)
		require.NoError(t, err)
		second, err := ParseBlock(code, raw)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(first, second))
	}
}

func TestParseBlockErrors(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "no markup", raw: "<div>nothing to see</div>"},
		{name: "empty", raw: ""},
		{
			// a description paragraph the full rule cannot read is not a stub
			name: "malformed description",
			raw:  "<strong>CSC&#160;300.  Topics.  3</strong><p class=\"courseblockdesc\">No break here</p>",
		},
		{
			name: "fractional stub credits",
			raw:  "<strong>CSC&#160;300.  Topics.  1.50 Credit Hours</strong>",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseBlock(db.NewCourseCode("CSC", 300), test.raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrParse))

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			require.Equal(t, "CSC 300", parseErr.Code)
		})
	}
}

func TestBuildCourseBadCredits(t *testing.T) {
	_, err := buildCourse(db.NewCourseCode("CSC", 1), "stub", blockMatch{title: "x", credits: "three"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrParse))
	require.Contains(t, err.Error(), "three")
}

func TestSplitAttribute(t *testing.T) {
	testCases := []struct {
		paragraph string
		marker    string
		expected  []string
	}{
		{
			paragraph: "Gen Ed Attribute: Natural Science &amp; Lab.",
			marker:    genEdMarker,
			expected:  []string{"Natural Science", "Lab"},
		},
		{
			paragraph: "Gen Ed Attribute: Diverse Communities, Writing Emphasis.",
			marker:    genEdMarker,
			expected:  []string{"Diverse Communities", "Writing Emphasis"},
		},
		{
			paragraph: "Typically offered in Fall , Spring.. &amp; ",
			marker:    offeredMarker,
			expected:  []string{"Fall", "Spring"},
		},
		{
			paragraph: "Typically offered in",
			marker:    offeredMarker,
			expected:  []string{},
		},
	}

	for _, test := range testCases {
		values := splitAttribute(test.paragraph, test.marker)
		require.Equal(t, test.expected, values)
		for _, value := range values {
			require.False(t, strings.HasSuffix(value, "."))
			require.Equal(t, strings.TrimSpace(value), value)
		}
	}
}

func TestPrerequisitesOrder(t *testing.T) {
	paragraph := `Pre / Co requisites: <a title="MAT&#160;161">MAT 161</a>, <a title="CSC&#160;142">CSC 142</a>, <a title="MAT&#160;161">MAT 161</a>`

	requisites, err := prerequisites(db.NewCourseCode("CSC", 240), paragraph)
	require.NoError(t, err)
	// only a self link is skipped, other first entries are kept
	require.Equal(t, []string{"MAT 161", "CSC 142", "MAT 161"}, requisites)
	require.Equal(t, []string{"MAT 161", "CSC 142"}, appendUnique([]string{}, requisites...))
}

func TestPrerequisitesSelfLinkLeadingZero(t *testing.T) {
	paragraph := `Pre / Co requisites: <a title="MAT&#160;050">MAT 050</a> requires <a title="MAT&#160;010">MAT 010</a>`

	requisites, err := prerequisites(db.NewCourseCode("MAT", 50), paragraph)
	require.NoError(t, err)
	require.Equal(t, []string{"MAT 010"}, requisites)

	require.True(t, sameCode(db.NewCourseCode("MAT", 50), "MAT 050"))
	require.True(t, sameCode(db.NewCourseCode("MAT", 50), "MAT 50"))
	require.False(t, sameCode(db.NewCourseCode("MAT", 50), "MAT 500"))
	require.False(t, sameCode(db.NewCourseCode("MAT", 50), "CSC 050"))
	require.False(t, sameCode(db.NewCourseCode("MAT", 50), "Placement exam"))
}

func TestDistanceMarker(t *testing.T) {
	withMarker := strings.Replace(biologyBlock, "Gen Ed Attribute:", "Distance education offering may be available.<br />\nGen Ed Attribute:", 1)

	course, err := ParseBlock(db.NewCourseCode("BIO", 110), withMarker)
	require.NoError(t, err)
	require.True(t, course.DistanceAvailable)
	require.Equal(t, []string{"Natural Science", "Lab"}, course.GenEdFulfillments)

	course, err = ParseBlock(db.NewCourseCode("BIO", 110), biologyBlock)
	require.NoError(t, err)
	require.False(t, course.DistanceAvailable)
}
