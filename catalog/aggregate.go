package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/Bwc9876/wcu-course-db/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("catalog")

const CatalogURL = "https://catalog.wcupa.edu/ribbit/"
const getCoursesQuery = "?page=getcourse.rjs&subject="

// SubjectResult is reported once per subject as it completes.
type SubjectResult struct {
	Subject   string
	Courses   int
	Completed int
	Total     int
}

type Aggregator struct {
	Getter  Getter
	BaseURL string
	// subjects fetched at once, values below 1 mean sequential
	Concurrency int
	OnSubject   func(SubjectResult)
}

func (a *Aggregator) SubjectURL(subject string) string {
	base := a.BaseURL
	if base == "" {
		base = CatalogURL
	}
	return base + getCoursesQuery + url.QueryEscape(subject)
}

// Subject fetches and parses the listing of one subject.
func (a *Aggregator) Subject(ctx context.Context, subject string) ([]db.Course, error) {
	ctx, span := tracer.Start(ctx, "Subject")
	defer span.End()
	span.SetAttributes(attribute.String("subject", subject))

	body, err := a.Getter.Fetch(ctx, a.SubjectURL(subject))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch subject")
		return nil, err
	}

	courses, err := ParseSubject(subject, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse subject")
		return nil, err
	}

	slog.DebugContext(ctx, "parsed subject", "subject", subject, "courses", len(courses))
	return courses, nil
}

// Aggregate fetches every subject and concatenates the courses in subject
// order. The first failure aborts the whole aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, subjects []string) (db.CourseSet, error) {
	results := make([][]db.Course, len(subjects))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(a.Concurrency, 1))

	var progressMutex sync.Mutex
	completed := 0

	for i, subject := range subjects {
		group.Go(func() error {
			courses, err := a.Subject(ctx, subject)
			if err != nil {
				return fmt.Errorf("subject %v: %w", subject, err)
			}
			results[i] = courses

			progressMutex.Lock()
			defer progressMutex.Unlock()
			completed++
			if a.OnSubject != nil {
				a.OnSubject(SubjectResult{
					Subject:   subject,
					Courses:   len(courses),
					Completed: completed,
					Total:     len(subjects),
				})
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return db.CourseSet{}, err
	}

	set := db.CourseSet{
		Courses:  []db.Course{},
		Prefixes: append([]string{}, subjects...),
	}
	for _, courses := range results {
		set.Courses = append(set.Courses, courses...)
	}

	return set, nil
}

// Run enumerates the subjects of the index and aggregates each of them once.
func (a *Aggregator) Run(ctx context.Context, indexURL string) (db.CourseSet, error) {
	subjects, err := ScrapeSubjects(ctx, a.Getter, indexURL)
	if err != nil {
		return db.CourseSet{}, fmt.Errorf("subjects: %w", err)
	}
	return a.Aggregate(ctx, Dedupe(subjects))
}
