package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbtx/dbtx/adapters"
	"github.com/dbtx/dbtx/hooks"
	"github.com/dbtx/dbtx/internal/dbtutil"
	"github.com/dbtx/dbtx/internal/project"
)

func newDoctorCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose dbtx prerequisites and project issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show passing checks too")
	return cmd
}

type doctorContext struct {
	Project *project.Project
}

type doctorCheck struct {
	Name string
	Fn   func(*doctorContext) error
}

func runDoctor(cmd *cobra.Command, verbose bool) error {
	ctx := &doctorContext{}
	wd, _ := os.Getwd()
	checks := []doctorCheck{
		{Name: "project layout", Fn: func(c *doctorContext) error {
			proj, err := project.Discover(wd)
			if err != nil {
				return err
			}
			c.Project = proj
			return nil
		}},
		{Name: "dbt installed", Fn: checkDbtInstalled},
		{Name: "dbt version supported", Fn: checkDbtVersion},
		{Name: "profiles.yml present", Fn: checkProfilesPresent},
		{Name: "profile defined", Fn: checkProfileDefined},
		{Name: "callbacks resolvable", Fn: checkCallbacks},
		{Name: "custom adapter resolvable", Fn: checkAdapter},
	}

	var failures []string
	for _, check := range checks {
		err := check.Fn(ctx)
		if err != nil {
			failures = append(failures, fmt.Sprintf("✗ %s: %v", check.Name, err))
			continue
		}
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", check.Name)
		}
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), failure)
		}
		return fmt.Errorf("%d doctor checks failed", len(failures))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "healthy!")
	return nil
}

func checkDbtInstalled(ctx *doctorContext) error {
	bin := dbtutil.DefaultBinary
	if ctx.Project != nil && ctx.Project.Config.DbtBin != "" {
		bin = ctx.Project.Config.DbtBin
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found on PATH", bin)
	}
	return nil
}

func checkDbtVersion(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errors.New("project not discovered")
	}
	v, err := dbtutil.Version(ctx.Project.Root, ctx.Project.Config.DbtBin)
	if err != nil {
		return err
	}
	return dbtutil.CheckSupported(v)
}

func checkProfilesPresent(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errors.New("project not discovered")
	}
	if profilesPath(ctx.Project) == "" {
		return errors.New("no profiles.yml found; set profiles_dir in dbtx.toml or DBT_PROFILES_DIR")
	}
	return nil
}

func checkProfileDefined(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errors.New("project not discovered")
	}
	want := ctx.Project.Spec.Profile
	if want == "" {
		return errors.New("dbt_project.yml does not name a profile")
	}
	path := profilesPath(ctx.Project)
	if path == "" {
		return errors.New("profiles.yml missing")
	}
	profiles, err := project.LoadProfiles(path)
	if err != nil {
		return err
	}
	if _, ok := profiles[want]; !ok {
		known := make([]string, 0, len(profiles))
		for name := range profiles {
			known = append(known, name)
		}
		return fmt.Errorf("profile %q not defined in %s (found: %s)", want, path, strings.Join(known, ", "))
	}
	return nil
}

func checkCallbacks(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errors.New("project not discovered")
	}
	var names []string
	names = append(names, ctx.Project.Config.Callbacks...)
	if raw, ok := ctx.Project.Vars()["dbt_callbacks"]; ok {
		for _, name := range strings.Split(fmt.Sprint(raw), ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	for _, name := range names {
		if _, err := hooks.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}

func checkAdapter(ctx *doctorContext) error {
	if ctx.Project == nil {
		return errors.New("project not discovered")
	}
	name := adapters.ConfiguredName(nil, ctx.Project.Vars())
	if name == "" {
		return nil
	}
	_, err := adapters.Resolve(name)
	return err
}

// profilesPath locates the effective profiles.yml, or "" when none is
// found anywhere dbt would look.
func profilesPath(proj *project.Project) string {
	if dir := proj.ProfilesDir(""); dir != "" {
		candidate := filepath.Join(dir, "profiles.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		return ""
	}
	candidate := filepath.Join(proj.Root, "profiles.yml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}
