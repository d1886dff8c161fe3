// Package ci derives a stable build/run identity from CI environment state.
//
// Resolution is a pure function over a CIEnvironment snapshot so that tests can
// drive it without touching the process environment. Callers that want "the
// identity right now" capture a snapshot with CaptureEnv and pass it in; the
// reporting layer does this on every report so identity reflects the
// environment at call time.
package ci

import "os"

// CIEnvironment is a snapshot of the CI variables that identify a run.
// Zero values mean "not set".
type CIEnvironment struct {
	JobName     string
	BuildNumber string
	BuildID     string
	BuildURL    string
	GitCommit   string
	GitBranch   string
}

// RunIdentity identifies one execution of the CI pipeline. Field names are a
// persisted contract shared with the dashboard; do not rename.
type RunIdentity struct {
	BuildID   string `json:"build_id"`
	JobName   string `json:"job_name"`
	BuildURL  string `json:"build_url"`
	GitCommit string `json:"git_commit"`
	GitBranch string `json:"git_branch"`
}

// Defaults applied when the corresponding variable is absent.
const (
	DefaultBuildID   = "local"
	DefaultJobName   = "manual-run"
	DefaultBuildURL  = "local"
	DefaultGitCommit = "unknown"
	DefaultGitBranch = "main"
)

// CaptureEnv snapshots the Jenkins-style CI variables from the process
// environment.
func CaptureEnv() CIEnvironment {
	return CIEnvironment{
		JobName:     os.Getenv("JOB_NAME"),
		BuildNumber: os.Getenv("BUILD_NUMBER"),
		BuildID:     os.Getenv("BUILD_ID"),
		BuildURL:    os.Getenv("BUILD_URL"),
		GitCommit:   os.Getenv("GIT_COMMIT"),
		GitBranch:   os.Getenv("GIT_BRANCH"),
	}
}

// Resolve derives a fully populated RunIdentity from an environment snapshot.
// It always succeeds; missing values fall back to defaults.
//
// Build id precedence, first match wins:
//  1. job name and build number both set -> "<job>-<number>"
//  2. explicit build id set              -> that value
//  3. build number set                   -> that value
//  4. none                               -> "local"
func Resolve(env CIEnvironment) RunIdentity {
	id := RunIdentity{
		BuildID:   DefaultBuildID,
		JobName:   DefaultJobName,
		BuildURL:  DefaultBuildURL,
		GitCommit: DefaultGitCommit,
		GitBranch: DefaultGitBranch,
	}

	switch {
	case env.JobName != "" && env.BuildNumber != "":
		id.BuildID = env.JobName + "-" + env.BuildNumber
	case env.BuildID != "":
		id.BuildID = env.BuildID
	case env.BuildNumber != "":
		id.BuildID = env.BuildNumber
	}

	if env.JobName != "" {
		id.JobName = env.JobName
	}
	if env.BuildURL != "" {
		id.BuildURL = env.BuildURL
	}
	if env.GitCommit != "" {
		id.GitCommit = env.GitCommit
	}
	if env.GitBranch != "" {
		id.GitBranch = env.GitBranch
	}

	return id
}
