package cli

import (
	"os"

	"github.com/dbtx/dbtx/internal/project"
	"github.com/dbtx/dbtx/runner"
)

func loadProjectFromWD() (*project.Project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return project.Discover(wd)
}

func newRunnerFromWD() (*runner.Runner, error) {
	proj, err := loadProjectFromWD()
	if err != nil {
		return nil, err
	}
	return runner.New(proj), nil
}
