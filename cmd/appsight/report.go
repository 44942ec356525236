package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/appsight"
	"github.com/jward/appsight/version"
)

type report struct {
	short string
	run   func(*cobra.Command, *appsight.Session) error
}

var reports = map[string]report{
	"frontend-majors": {
		short: "repositories per frontend major version",
		run:   majorsReport(func(r *appsight.Record) version.Version { return r.FrontendVersion }),
	},
	"backend-majors": {
		short: "repositories per backend major version",
		run:   majorsReport(func(r *appsight.Record) version.Version { return r.BackendVersion }),
	},
	"pinned-frontend": {
		short: "repositories pinned to an exact frontend version",
		run:   pinnedFrontendReport,
	},
	"prerelease": {
		short: "deployments running a prerelease frontend or backend",
		run:   prereleaseReport,
	},
}

var reportCmd = &cobra.Command{
	Use:       "report <name>",
	Short:     "Run a canned report",
	Long:      "Run a canned report. Available reports:\n\n" + reportList(),
	Args:      cobra.ExactArgs(1),
	ValidArgs: reportNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, ok := reports[args[0]]
		if !ok {
			return fmt.Errorf("unknown report %q, available:\n%s", args[0], reportList())
		}
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return rep.run(cmd, s)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func reportNames() []string {
	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func reportList() string {
	out := ""
	for _, name := range reportNames() {
		out += fmt.Sprintf("  %-16s %s\n", name, reports[name].short)
	}
	return out
}

// majorsReport counts distinct repositories per major version of the given
// attribute. Repositories without the attribute land in the "none" bucket.
func majorsReport(ver func(*appsight.Record) version.Version) func(*cobra.Command, *appsight.Session) error {
	return func(cmd *cobra.Command, s *appsight.Session) error {
		groups := s.Apps().
			UniqueRepos().
			GroupBy(appsight.F("major", func(r *appsight.Record) any {
				v := ver(r)
				if !v.Exists() {
					return "none"
				}
				return strconv.Itoa(v.Major())
			})).
			OrderByCount(true)
		return groups.Table(cmd.OutOrStdout(), appsight.Count())
	}
}

// pinnedFrontendReport lists repositories whose frontend reference names an
// exact version rather than a floating major tag like "4".
func pinnedFrontendReport(cmd *cobra.Command, s *appsight.Session) error {
	pinned := s.Apps().
		UniqueRepos().
		Where(func(r *appsight.Record) bool {
			v := r.FrontendVersion
			return v.Exists() && v.Patch() >= 0
		}).
		OrderByFunc(func(a, b *appsight.Record) int {
			return version.Order(a.FrontendVersion, b.FrontendVersion)
		})
	return pinned.Table(cmd.OutOrStdout(),
		mustField("repo"), mustField("frontend_version"), mustField("repo_url"))
}

// prereleaseReport lists deployments running a prerelease frontend or
// backend build anywhere.
func prereleaseReport(cmd *cobra.Command, s *appsight.Session) error {
	pre := s.Apps().Where(func(r *appsight.Record) bool {
		return r.FrontendVersion.IsPrerelease() || r.BackendVersion.IsPrerelease()
	})
	return pre.Table(cmd.OutOrStdout(),
		mustField("key"), mustField("frontend_version"), mustField("backend_version"))
}

func mustField(name string) (f appsight.Field) {
	f, ok := appsight.FieldByName(name)
	if !ok {
		panic("unknown standard field: " + name)
	}
	return f
}
