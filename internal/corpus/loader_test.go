package corpus

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/appsight/jsonq"
)

func writeZip(t *testing.T, dir, name string, files map[string]string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for path, content := range files {
		w, err := zw.Create(path)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeZip(t, dir, "prod-acme-permits.zip", map[string]string{
		"permits/App/config/applicationmetadata.json": `{"id": "acme/permits", "title": {"nb": "Permits"}}`,
		"permits/App/appsettings.json":                `{"GeneralSettings": {"Flag": "base"}}`,
		"permits/App/appsettings.Production.json":     `{"GeneralSettings": {"Flag": "prod"}}`,
		"permits/App/ui/layout-sets.json":             `{"sets": [{"id": "form", "dataType": "model", "tasks": ["Task_1"]}]}`,
		"permits/App/ui/form/layouts/page1.json":      `{"data": {"layout": [{"id": "name", "type": "Input"}, {"id": "submit", "type": "Button"}]}}`,
		"permits/App/ui/form/Settings.json":           `{"pages": {"order": ["page1"]}}`,
		"permits/App/config/texts/resource.nb.json":   `{"language": "nb", "resources": [{"id": "title", "value": "Skjema"}]}`,
		"permits/App/logic/Validator.cs":              `public class Validator : IInstanceValidator { }`,
		"permits/App/App.csproj": `<Project>
  <PropertyGroup><TargetFramework>net6.0</TargetFramework></PropertyGroup>
  <ItemGroup><PackageReference Include="App.Core" Version="7.4.0" /></ItemGroup>
</Project>`,
		"permits/App/views/Home/Index.cshtml": `<script src="https://cdn.example.com/toolkits/app-frontend/4/app-frontend.js"></script>`,
	})

	// Older layout: no layout-sets.json, a single FormLayout.json.
	writeZip(t, dir, "dev-acme-legacy.zip", map[string]string{
		"legacy/App/ui/FormLayout.json": `{"data": {"layout": [{"id": "field", "type": "Input"}]}}`,
	})

	return dir
}

func loadFixture(t *testing.T, opts LoadOptions) []*Record {
	t.Helper()
	records, err := Load(context.Background(), fixtureDir(t), nil, opts)
	require.NoError(t, err)
	return records
}

func TestLoadScansDirectory(t *testing.T) {
	records := loadFixture(t, LoadOptions{})
	require.Len(t, records, 2)

	// scanDir orders by key.
	assert.Equal(t, "dev-acme-legacy", records[0].Key())
	assert.Equal(t, "prod-acme-permits", records[1].Key())
}

func TestLoadRecordContents(t *testing.T) {
	records := loadFixture(t, LoadOptions{Environments: []string{"prod"}})
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, "prod", r.Env)
	assert.Equal(t, "acme", r.Org)
	assert.Equal(t, "permits", r.App)
	assert.Equal(t, "acme/permits", r.RepoKey())

	id, ok := r.MetadataAt(jsonq.MustPath(".id")).AsString()
	require.True(t, ok)
	assert.Equal(t, "acme/permits", id)
}

func TestLoadVersions(t *testing.T) {
	records := loadFixture(t, LoadOptions{Environments: []string{"prod"}})
	r := records[0]

	assert.Equal(t, "4", r.FrontendVersion.String())
	assert.Equal(t, "7.4.0", r.BackendVersion.String())
	assert.Equal(t, "6.0", r.DotnetVersion.String())
}

func TestLoadVersionsAbsent(t *testing.T) {
	records := loadFixture(t, LoadOptions{Environments: []string{"dev"}})
	r := records[0]

	assert.False(t, r.FrontendVersion.Exists())
	assert.False(t, r.BackendVersion.Exists())
	assert.False(t, r.DotnetVersion.Exists())
}

func TestLoadLayoutSets(t *testing.T) {
	records := loadFixture(t, LoadOptions{Environments: []string{"prod"}})
	r := records[0]

	require.Len(t, r.LayoutSets, 1)
	ls := r.LayoutSets[0]
	assert.Equal(t, "form", ls.ID)
	assert.Equal(t, "model", ls.DataType)
	assert.Equal(t, []string{"Task_1"}, ls.Tasks)
	assert.True(t, ls.Settings.Exists())
	require.Len(t, ls.Layouts, 1)
	assert.Equal(t, "page1", ls.Layouts[0].Name)

	comps := r.Components().Collect()
	require.Len(t, comps, 2)
	assert.Equal(t, "name", comps[0].ID)
	assert.Equal(t, "Input", comps[0].Type)
	assert.Equal(t, "form", comps[0].LayoutSet)
	assert.Equal(t, "page1", comps[0].Layout)

	assert.Equal(t, 1, r.ComponentsOfType("Button").Len())
}

func TestLoadSingleSetFallback(t *testing.T) {
	records := loadFixture(t, LoadOptions{Environments: []string{"dev"}})
	r := records[0]

	require.Len(t, r.LayoutSets, 1)
	assert.Equal(t, "", r.LayoutSets[0].ID)
	assert.Equal(t, 1, r.Components().Len())
}

func TestLoadAppSettings(t *testing.T) {
	records := loadFixture(t, LoadOptions{Environments: []string{"prod"}})
	r := records[0]

	require.Len(t, r.AppSettings, 2)

	flag, ok := r.SettingFor("Production", jsonq.MustPath(".GeneralSettings.Flag")).AsString()
	require.True(t, ok)
	assert.Equal(t, "prod", flag)

	flag, ok = r.SettingFor("default", jsonq.MustPath(".GeneralSettings.Flag")).AsString()
	require.True(t, ok)
	assert.Equal(t, "base", flag)
}

func TestLoadTextsAndSources(t *testing.T) {
	records := loadFixture(t, LoadOptions{Environments: []string{"prod"}})
	r := records[0]

	require.Len(t, r.TextResources, 1)
	assert.Equal(t, "nb", r.TextResources[0].Language)

	require.Len(t, r.Sources, 1)
	assert.True(t, r.Sources[0].Exists())
}

func TestLoadSkipsUnreadableArchive(t *testing.T) {
	dir := fixtureDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod-acme-corrupt.zip"), []byte("not a zip"), 0o644))

	records, err := Load(context.Background(), dir, nil, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
