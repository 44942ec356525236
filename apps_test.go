package appsight

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/appsight/version"
)

func rec(env, org, app, frontend string) *Record {
	return &Record{
		Env: env, Org: org, App: app,
		FrontendVersion: version.Parse(frontend),
	}
}

func testApps() Apps {
	return FromRecords([]*Record{
		rec("dev", "acme", "permits", "4.18.2"),
		rec("prod", "acme", "permits", "4"),
		rec("prod", "acme", "claims", "3.2.0"),
		rec("prod", "umbrella", "intake", ""),
	})
}

func TestWhere(t *testing.T) {
	prod := testApps().Where(func(r *Record) bool { return r.Env == "prod" })
	assert.Equal(t, 3, prod.Len())

	v4 := testApps().Where(func(r *Record) bool { return r.FrontendVersion.AtLeast("4") })
	// The absent version and 3.2.0 both fail the predicate.
	assert.Equal(t, 2, v4.Len())
}

func TestUniqueRepos(t *testing.T) {
	repos := testApps().UniqueRepos().Collect()
	require.Len(t, repos, 3)

	// First environment encountered wins for the duplicated repo.
	assert.Equal(t, "dev", repos[0].Env)
	assert.Equal(t, "acme/permits", repos[0].RepoKey())
}

func TestUnique(t *testing.T) {
	doubled := append(testApps().Collect(), rec("prod", "acme", "claims", "3.2.0"))
	assert.Equal(t, 4, FromRecords(doubled).Unique().Len())
}

func TestOrderByStable(t *testing.T) {
	ordered := testApps().OrderBy(func(r *Record) string { return r.Org }, false).Collect()
	require.Len(t, ordered, 4)
	// Same org keeps load order.
	assert.Equal(t, "permits", ordered[0].App)
	assert.Equal(t, "permits", ordered[1].App)
	assert.Equal(t, "claims", ordered[2].App)
	assert.Equal(t, "umbrella", ordered[3].Org)
}

func TestOrderByFuncVersions(t *testing.T) {
	ordered := testApps().OrderByFunc(func(a, b *Record) int {
		return version.Order(a.FrontendVersion, b.FrontendVersion)
	}).Collect()

	got := make([]string, len(ordered))
	for i, r := range ordered {
		got[i] = r.FrontendVersion.String()
	}
	// Absent first, then releases, the floating "4" above its pins.
	assert.Equal(t, []string{"", "3.2.0", "4.18.2", "4"}, got)
}

func TestSomeEveryFirst(t *testing.T) {
	apps := testApps()
	assert.True(t, apps.Some(func(r *Record) bool { return r.Org == "umbrella" }))
	assert.False(t, apps.Every(func(r *Record) bool { return r.FrontendVersion.Exists() }))

	first, ok := apps.Where(func(r *Record) bool { return r.App == "claims" }).First()
	require.True(t, ok)
	assert.Equal(t, "prod-acme-claims", first.Key())

	_, ok = apps.Where(func(r *Record) bool { return false }).First()
	assert.False(t, ok)
	assert.True(t, apps.IsNotEmpty())
}

func TestGroupByCounts(t *testing.T) {
	orgField, ok := FieldByName("org")
	require.True(t, ok)

	groups := testApps().GroupBy(orgField).Collect()
	require.Len(t, groups, 2)

	total := 0
	for _, g := range groups {
		total += g.Apps.Len()
	}
	assert.Equal(t, testApps().Len(), total)

	v, ok := groups[0].Value("org")
	require.True(t, ok)
	assert.Equal(t, "acme", v)
	assert.Equal(t, "acme", groups[0].Key())
}

func TestGroupByCompositeKey(t *testing.T) {
	envField, _ := FieldByName("env")
	orgField, _ := FieldByName("org")

	groups := testApps().GroupBy(envField, orgField)
	assert.Equal(t, 3, groups.Len())

	rows := groups.Select(Count()).Collect()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"env", "org", "count"}, rows[0].Columns())
	assert.Equal(t, []any{"dev", "acme", 1}, rows[0].Values())
}

func TestGroupByKeysAreRendered(t *testing.T) {
	mixed := F("major", func(r *Record) any {
		if r.Env == "dev" {
			return 4
		}
		return "4"
	})

	records := []*Record{
		rec("dev", "acme", "permits", "4.18.2"),
		rec("prod", "acme", "permits", "4"),
	}
	groups := FromRecords(records).GroupBy(mixed).Collect()
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Apps.Len())
}

func TestGroupsOrderByCount(t *testing.T) {
	orgField, _ := FieldByName("org")
	groups := testApps().GroupBy(orgField).OrderByCount(true).Collect()
	require.Len(t, groups, 2)
	assert.Equal(t, "acme", groups[0].Key())
	assert.Equal(t, 3, groups[0].Apps.Len())
}

func TestSelectAndTable(t *testing.T) {
	orgField, _ := FieldByName("org")
	appField, _ := FieldByName("app")

	var buf bytes.Buffer
	err := testApps().Limit(2).Table(&buf, orgField, appField)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "permits")
	assert.Contains(t, buf.String(), "Count: 2")
}

func TestCSVOutput(t *testing.T) {
	keyField, _ := FieldByName("key")

	var buf bytes.Buffer
	err := testApps().Limit(1).CSV(&buf, keyField)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "key", lines[0])
	assert.Equal(t, "dev-acme-permits", lines[1])
}

func TestCSVEmptyViewKeepsHeader(t *testing.T) {
	keyField, _ := FieldByName("key")
	orgField, _ := FieldByName("org")

	var buf bytes.Buffer
	none := testApps().Where(func(r *Record) bool { return false })
	require.NoError(t, none.CSV(&buf, orgField, keyField))
	assert.Equal(t, "org,key\n", buf.String())

	buf.Reset()
	groups := testApps().GroupBy(orgField).Where(func(Group) bool { return false })
	require.NoError(t, groups.CSV(&buf, Count()))
	assert.Equal(t, "org,count\n", buf.String())
}

func TestViewsAreReusable(t *testing.T) {
	apps := testApps()
	prod := apps.Where(func(r *Record) bool { return r.Env == "prod" })
	assert.Equal(t, 3, prod.Len())
	assert.Equal(t, 3, prod.Len())
	// Building the filtered view did not consume the base view.
	assert.Equal(t, 4, apps.Len())
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(context.Background(), "does-not-exist")
	assert.Error(t, err)
}

func TestOpenEmptyDir(t *testing.T) {
	s, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 0, s.Len())
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.Apps().IsNotEmpty())
}
