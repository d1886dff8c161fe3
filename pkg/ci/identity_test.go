package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBuildIDPrecedence(t *testing.T) {
	cases := []struct {
		name string
		env  CIEnvironment
		want string
	}{
		{
			name: "job name and build number",
			env:  CIEnvironment{JobName: "DDN-Nightly-Tests", BuildNumber: "7"},
			want: "DDN-Nightly-Tests-7",
		},
		{
			name: "job name and build number win over explicit build id",
			env:  CIEnvironment{JobName: "DDN-Nightly-Tests", BuildNumber: "7", BuildID: "jenkins-42"},
			want: "DDN-Nightly-Tests-7",
		},
		{
			name: "explicit build id",
			env:  CIEnvironment{BuildID: "jenkins-42"},
			want: "jenkins-42",
		},
		{
			name: "explicit build id wins over bare build number",
			env:  CIEnvironment{BuildID: "jenkins-42", BuildNumber: "7"},
			want: "jenkins-42",
		},
		{
			name: "bare build number",
			env:  CIEnvironment{BuildNumber: "7"},
			want: "7",
		},
		{
			name: "job name alone is not enough",
			env:  CIEnvironment{JobName: "DDN-Nightly-Tests"},
			want: "local",
		},
		{
			name: "nothing set",
			env:  CIEnvironment{},
			want: "local",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.env).BuildID)
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	id := Resolve(CIEnvironment{})

	assert.Equal(t, "local", id.BuildID)
	assert.Equal(t, "manual-run", id.JobName)
	assert.Equal(t, "local", id.BuildURL)
	assert.Equal(t, "unknown", id.GitCommit)
	assert.Equal(t, "main", id.GitBranch)
}

func TestResolvePassesThroughValues(t *testing.T) {
	id := Resolve(CIEnvironment{
		JobName:     "DDN-Nightly-Tests",
		BuildNumber: "12",
		BuildURL:    "https://ci.example.com/job/DDN-Nightly-Tests/12/",
		GitCommit:   "4f2a9c1",
		GitBranch:   "release/5.2",
	})

	assert.Equal(t, "DDN-Nightly-Tests-12", id.BuildID)
	assert.Equal(t, "DDN-Nightly-Tests", id.JobName)
	assert.Equal(t, "https://ci.example.com/job/DDN-Nightly-Tests/12/", id.BuildURL)
	assert.Equal(t, "4f2a9c1", id.GitCommit)
	assert.Equal(t, "release/5.2", id.GitBranch)
}

// Identity resolution must not depend on process state: two calls with the
// same snapshot are identical even if os.Environ changed in between.
func TestResolveIsPure(t *testing.T) {
	env := CIEnvironment{JobName: "DDN-Nightly-Tests", BuildNumber: "3"}

	first := Resolve(env)
	t.Setenv("JOB_NAME", "something-else")
	second := Resolve(env)

	assert.Equal(t, first, second)
}

func TestCaptureEnv(t *testing.T) {
	t.Setenv("JOB_NAME", "DDN-Nightly-Tests")
	t.Setenv("BUILD_NUMBER", "12")
	t.Setenv("BUILD_ID", "")
	t.Setenv("BUILD_URL", "https://ci.example.com/12/")
	t.Setenv("GIT_COMMIT", "abc123")
	t.Setenv("GIT_BRANCH", "main")

	env := CaptureEnv()
	assert.Equal(t, "DDN-Nightly-Tests", env.JobName)
	assert.Equal(t, "12", env.BuildNumber)
	assert.Equal(t, "https://ci.example.com/12/", env.BuildURL)

	id := Resolve(env)
	assert.Equal(t, "DDN-Nightly-Tests-12", id.BuildID)
}
