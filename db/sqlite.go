package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS prefixes (
		position INTEGER PRIMARY KEY,
		code TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		position INTEGER PRIMARY KEY,
		prefix TEXT NOT NULL,
		number INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		credits REAL NOT NULL,
		distance_available INTEGER NOT NULL,
		pre_requirements TEXT NOT NULL,
		gen_ed_fulfillments TEXT NOT NULL,
		offered_terms TEXT NOT NULL
	)`,
}

const insertSqlitePrefix = `INSERT INTO prefixes (position, code) VALUES (?, ?)`
const insertSqliteCourse = `INSERT INTO courses (position, prefix, number, title, description, credits, distance_available, pre_requirements, gen_ed_fulfillments, offered_terms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
const listSqlitePrefixes = `SELECT code FROM prefixes ORDER BY position`
const listSqliteCourses = `SELECT prefix, number, title, description, credits, distance_available, pre_requirements, gen_ed_fulfillments, offered_terms FROM courses ORDER BY position`

// SQLite is a local cache of a course set, an alternative to the JSON file.
type SQLite struct {
	path string
	db   *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
			return nil, &PersistenceError{Path: path, Err: err}
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	// a single connection keeps :memory: databases alive and serializes writers
	conn.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, &PersistenceError{Path: path, Err: err}
		}
	}

	return &SQLite{path: path, db: conn}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveCourseSet replaces the cached course set.
func (s *SQLite) SaveCourseSet(ctx context.Context, set CourseSet) error {
	set = set.normalized()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM prefixes"); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM courses"); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}

	for i, prefix := range set.Prefixes {
		if _, err := tx.ExecContext(ctx, insertSqlitePrefix, i, prefix); err != nil {
			return &PersistenceError{Path: s.path, Err: err}
		}
	}

	for i, course := range set.Courses {
		preRequirements, err := json.Marshal(course.PreRequirements)
		if err != nil {
			return &PersistenceError{Path: s.path, Err: err}
		}
		genEdFulfillments, err := json.Marshal(course.GenEdFulfillments)
		if err != nil {
			return &PersistenceError{Path: s.path, Err: err}
		}
		offeredTerms, err := json.Marshal(course.OfferedTerms)
		if err != nil {
			return &PersistenceError{Path: s.path, Err: err}
		}

		_, err = tx.ExecContext(
			ctx, insertSqliteCourse,
			i,
			course.Code.Prefix,
			course.Code.Number,
			course.Title,
			course.Description,
			course.Credits,
			course.DistanceAvailable,
			string(preRequirements),
			string(genEdFulfillments),
			string(offeredTerms),
		)
		if err != nil {
			return &PersistenceError{Path: s.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}

func (s *SQLite) LoadCourseSet(ctx context.Context) (CourseSet, error) {
	var set CourseSet

	prefixRows, err := s.db.QueryContext(ctx, listSqlitePrefixes)
	if err != nil {
		return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
	}
	defer prefixRows.Close()

	for prefixRows.Next() {
		var prefix string
		if err := prefixRows.Scan(&prefix); err != nil {
			return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
		}
		set.Prefixes = append(set.Prefixes, prefix)
	}
	if err := prefixRows.Err(); err != nil {
		return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
	}

	courseRows, err := s.db.QueryContext(ctx, listSqliteCourses)
	if err != nil {
		return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
	}
	defer courseRows.Close()

	for courseRows.Next() {
		var course Course
		var preRequirements, genEdFulfillments, offeredTerms string
		err := courseRows.Scan(
			&course.Code.Prefix,
			&course.Code.Number,
			&course.Title,
			&course.Description,
			&course.Credits,
			&course.DistanceAvailable,
			&preRequirements,
			&genEdFulfillments,
			&offeredTerms,
		)
		if err != nil {
			return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
		}

		if err := json.Unmarshal([]byte(preRequirements), &course.PreRequirements); err != nil {
			return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
		}
		if err := json.Unmarshal([]byte(genEdFulfillments), &course.GenEdFulfillments); err != nil {
			return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
		}
		if err := json.Unmarshal([]byte(offeredTerms), &course.OfferedTerms); err != nil {
			return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
		}

		set.Courses = append(set.Courses, course)
	}
	if err := courseRows.Err(); err != nil {
		return CourseSet{}, &PersistenceError{Path: s.path, Err: err}
	}

	set = set.normalized()
	return set, nil
}
