package deploy

import (
	"fmt"
	"strings"
)

// Status is the outcome of a deployment.
type Status int

const (
	Success Status = iota + 1
	Failure
)

// ParseStatus maps the --status flag value to a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return Success, nil
	case "failure":
		return Failure, nil
	}
	return 0, fmt.Errorf("invalid status %q, must be one of: success, failure", s)
}

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Commit is the git commit that was deployed. Hash and message always come together.
type Commit struct {
	Hash    string
	Message string
}

// NewCommit returns nil unless both the hash and the message were supplied.
// A supplied empty string still counts.
func NewCommit(hash, message *string) *Commit {
	if hash == nil || message == nil {
		return nil
	}
	return &Commit{
		Hash:    *hash,
		Message: *message,
	}
}

// Report describes a finished pipeline run.
type Report struct {
	Status      Status
	Service     string
	Environment string
	User        string
	Version     string
	BuildNumber uint64
	BuildURL    string
	Commit      *Commit
}

// Validate checks that the free text fields of the report are not empty.
func (r *Report) Validate() error {
	if r.Status != Success && r.Status != Failure {
		return fmt.Errorf("invalid status %s", r.Status)
	}

	required := []struct {
		name  string
		value string
	}{
		{"service", r.Service},
		{"environment", r.Environment},
		{"user", r.User},
		{"version", r.Version},
		{"build-url", r.BuildURL},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s must not be empty", field.name)
		}
	}

	return nil
}
