package model

import "errors"

var (
	// ErrProjectFailed indicates that one project could not be summarized.
	ErrProjectFailed = errors.New("project digest failed")
	// ErrNoProjects indicates that there was nothing to report on.
	ErrNoProjects = errors.New("no projects to report")
)
