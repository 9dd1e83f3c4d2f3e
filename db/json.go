package db

import (
	"encoding/json"
	"os"
)

func SaveJSON(path string, set CourseSet) error {
	set = set.normalized()

	content, err := json.Marshal(set)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	return nil
}

func LoadJSON(path string) (CourseSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return CourseSet{}, &PersistenceError{Path: path, Err: err}
	}

	var set CourseSet
	if err := json.Unmarshal(content, &set); err != nil {
		return CourseSet{}, &PersistenceError{Path: path, Err: err}
	}
	set = set.normalized()

	return set, nil
}
