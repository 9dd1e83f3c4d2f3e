package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const createSubjects = `CREATE TABLE IF NOT EXISTS subjects (code TEXT PRIMARY KEY)`
const createCourses = `CREATE TABLE IF NOT EXISTS courses (node_id TEXT PRIMARY KEY, prefix TEXT NOT NULL, number INTEGER NOT NULL, title TEXT NOT NULL, description TEXT NOT NULL, credits DOUBLE PRECISION NOT NULL, distance_available BOOLEAN NOT NULL, pre_requirements TEXT[] NOT NULL, gen_ed_fulfillments TEXT[] NOT NULL, offered_terms TEXT[] NOT NULL)`
const createRelations = `CREATE TABLE IF NOT EXISTS relations (source_id TEXT NOT NULL, target_id TEXT NOT NULL, PRIMARY KEY (source_id, target_id))`

const listSubjects = `SELECT code FROM subjects ORDER BY code`
const insertSubject = `INSERT INTO subjects (code) VALUES ($1) ON CONFLICT DO NOTHING`

const insertCourse = `INSERT INTO courses (node_id, prefix, number, title, description, credits, distance_available, pre_requirements, gen_ed_fulfillments, offered_terms) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) ON CONFLICT (node_id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description, credits=EXCLUDED.credits, distance_available=EXCLUDED.distance_available, pre_requirements=EXCLUDED.pre_requirements, gen_ed_fulfillments=EXCLUDED.gen_ed_fulfillments, offered_terms=EXCLUDED.offered_terms`
const insertRelation = `INSERT INTO relations (source_id, target_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

func insertCallback(ct pgconn.CommandTag) error {
	return nil
}

func (d *Database) CreateTables(ctx context.Context) error {
	for _, sql := range []string{createSubjects, createCourses, createRelations} {
		if _, err := d.Pool.Exec(ctx, sql); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.Query(ctx, listSubjects)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

func (d *Database) InsertSubjects(ctx context.Context, subjects []string) error {
	if len(subjects) == 0 {
		return nil
	}

	batch := pgx.Batch{}
	var queuedQueries []*pgx.QueuedQuery

	for _, subject := range subjects {
		queuedQueries = append(queuedQueries, batch.Queue(insertSubject, subject))
	}

	for _, queuedQuery := range queuedQueries {
		queuedQuery.Exec(insertCallback)
	}

	if err := d.Pool.SendBatch(ctx, &batch).Close(); err != nil {
		return err
	}

	return nil
}

func (d *Database) InsertCourses(ctx context.Context, courses []Course) error {
	if len(courses) == 0 {
		return nil
	}

	batch := pgx.Batch{}
	var queuedQueries []*pgx.QueuedQuery

	for _, course := range courses {
		queuedQueries = append(
			queuedQueries,
			batch.Queue(
				insertCourse,
				ValueNodeId(course.Code),
				course.Code.Prefix,
				int64(course.Code.Number),
				course.Title,
				strings.ReplaceAll(course.Description, "\x00", ""),
				course.Credits,
				course.DistanceAvailable,
				nonNil(course.PreRequirements),
				nonNil(course.GenEdFulfillments),
				nonNil(course.OfferedTerms),
			),
		)
	}

	for _, queuedQuery := range queuedQueries {
		queuedQuery.Exec(insertCallback)
	}

	if err := d.Pool.SendBatch(ctx, &batch).Close(); err != nil {
		return err
	}

	return nil
}

func (d *Database) InsertRelations(ctx context.Context, relations []Relation) error {
	if len(relations) == 0 {
		return nil
	}

	batch := pgx.Batch{}
	var queuedQueries []*pgx.QueuedQuery

	for _, relation := range relations {
		queuedQueries = append(queuedQueries, batch.Queue(insertRelation, relation.SourceId, relation.TargetId))
	}

	for _, queuedQuery := range queuedQueries {
		queuedQuery.Exec(insertCallback)
	}

	if err := d.Pool.SendBatch(ctx, &batch).Close(); err != nil {
		return err
	}

	return nil
}

// TEXT[] columns are NOT NULL, pgx encodes a nil slice as NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
