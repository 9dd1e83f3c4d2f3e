package db

import "fmt"

// CourseCode identifies a course, ex: BIO 110, CSC 241
type CourseCode struct {
	Prefix string `json:"prefix"`
	Number uint32 `json:"number"`
}

func NewCourseCode(prefix string, number uint32) CourseCode {
	return CourseCode{Prefix: prefix, Number: number}
}

func (c CourseCode) String() string {
	return fmt.Sprintf("%v %v", c.Prefix, c.Number)
}

type Course struct {
	Title       string     `json:"title"`
	Code        CourseCode `json:"code"`
	Description string     `json:"description"`
	Credits     float64    `json:"credits"`

	PreRequirements   []string `json:"pre_requirements"`
	GenEdFulfillments []string `json:"gen_ed_fulfillments"`
	DistanceAvailable bool     `json:"distance_available"`
	OfferedTerms      []string `json:"offered_terms"`
}

// CourseSet is the unit written to and read from the cache.
type CourseSet struct {
	Courses  []Course `json:"courses"`
	Prefixes []string `json:"prefixes"`
}

func (s CourseSet) Subject(prefix string) []Course {
	var courses []Course
	for _, course := range s.Courses {
		if course.Code.Prefix == prefix {
			courses = append(courses, course)
		}
	}
	return courses
}

func (s CourseSet) Lookup(code CourseCode) (Course, bool) {
	for _, course := range s.Courses {
		if course.Code == code {
			return course, true
		}
	}
	return Course{}, false
}

// normalized returns a copy of s with nil slices replaced, so it serializes
// [] instead of null. The caller's courses are left untouched.
func (s CourseSet) normalized() CourseSet {
	courses := make([]Course, len(s.Courses))
	copy(courses, s.Courses)
	for i := range courses {
		c := &courses[i]
		if c.PreRequirements == nil {
			c.PreRequirements = []string{}
		}
		if c.GenEdFulfillments == nil {
			c.GenEdFulfillments = []string{}
		}
		if c.OfferedTerms == nil {
			c.OfferedTerms = []string{}
		}
	}

	prefixes := s.Prefixes
	if prefixes == nil {
		prefixes = []string{}
	}

	return CourseSet{Courses: courses, Prefixes: prefixes}
}

type Relation struct {
	SourceId string
	TargetId string
}
