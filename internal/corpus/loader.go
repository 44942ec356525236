package corpus

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jward/appsight/csharp"
	"github.com/jward/appsight/internal/store"
	"github.com/jward/appsight/jsonq"
	"github.com/jward/appsight/version"
)

// LoadOptions configures a corpus load.
type LoadOptions struct {
	// Environments restricts which environments load; empty means all.
	Environments []string
	// MaxParallel bounds concurrent archive loads. Defaults to 8.
	MaxParallel int
	// RepoBaseURL and AppDomain shape the derived repo/app URLs.
	RepoBaseURL string
	AppDomain   string
}

func (o *LoadOptions) defaults() {
	if o.MaxParallel <= 0 {
		o.MaxParallel = 8
	}
	if o.RepoBaseURL == "" {
		o.RepoBaseURL = "https://studio.local/repos"
	}
	if o.AppDomain == "" {
		o.AppDomain = "apps.local"
	}
}

func (o *LoadOptions) wantsEnv(env string) bool {
	if len(o.Environments) == 0 {
		return true
	}
	for _, e := range o.Environments {
		if e == env {
			return true
		}
	}
	return false
}

// Load builds the record collection from the cache directory. The inventory
// store, when non-nil, is the authoritative list of archives (failed
// fetches excluded); otherwise the directory is scanned for env-org-app.zip
// archives. A single unreadable archive is logged and skipped rather than
// aborting the load, and input order is preserved in the result.
func Load(ctx context.Context, dir string, inv *store.Store, opts LoadOptions) ([]*Record, error) {
	opts.defaults()

	entries, err := loadEntries(dir, inv)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxParallel)
	for i, e := range entries {
		if !opts.wantsEnv(e.Env) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := loadOne(dir, e, opts)
			if err != nil {
				log.Printf("appsight: skipping %s: %v", e.Key(), err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := records[:0]
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func loadEntries(dir string, inv *store.Store) ([]store.Deployment, error) {
	if inv != nil {
		deps, err := inv.Deployments(true)
		if err != nil {
			return nil, fmt.Errorf("read inventory: %w", err)
		}
		return deps, nil
	}
	return scanDir(dir)
}

// scanDir discovers archives by filename when no inventory is available.
// Archive names are env-org-app.zip; env and org are conventionally free of
// dashes, so the first two dashes delimit the key.
func scanDir(dir string) ([]store.Deployment, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan cache dir: %w", err)
	}
	var out []store.Deployment
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".zip") {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(name, ".zip"), "-", 3)
		if len(parts) != 3 {
			continue
		}
		out = append(out, store.Deployment{
			Env: parts[0], Org: parts[1], App: parts[2],
			Status: store.StatusSuccess,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

// Artifact locations within an archive, relative to the application root.
var (
	metadataRE    = regexp.MustCompile(`/App/config/applicationmetadata\.json$`)
	appsettingsRE = regexp.MustCompile(`/App/appsettings(\.([^./]+))?\.json$`)
	layoutSetsRE  = regexp.MustCompile(`/App/ui/layout-sets\.json$`)
	textRE        = regexp.MustCompile(`/App/config/texts/resource\.([^./]+)\.json$`)
	csRE          = regexp.MustCompile(`/App/.*\.cs$`)
	csprojRE      = regexp.MustCompile(`/App/[^/]+\.csproj$`)
	indexCshtmlRE = regexp.MustCompile(`/App/views/Home/Index\.cshtml$`)
)

// Version fingerprints within artifacts.
var (
	frontendVersionRE = regexp.MustCompile(`src="[^"]*/toolkits/app-frontend/([A-Za-z0-9.\-]+)/app-frontend\.js"`)
	backendVersionRE  = regexp.MustCompile(`(?i)Include="App\.(Core|Api|Common)"\s+Version="([A-Za-z0-9.\-]+)"`)
	dotnetVersionRE   = regexp.MustCompile(`<TargetFramework>net([0-9.]+)</TargetFramework>`)
)

// Paths used while assembling records.
var (
	pathSets      = jsonq.MustPath(".sets.[]?")
	pathSetID     = jsonq.MustPath(".id?")
	pathDataType  = jsonq.MustPath(".dataType?")
	pathTasks     = jsonq.MustPath(".tasks.[]?")
	pathLayout    = jsonq.MustPath(".data.layout.[]?")
	pathComponent = jsonq.MustPath(".id?")
	pathCompType  = jsonq.MustPath(".type?")
)

// archive is one fully read zip, keyed by entry path, names sorted for
// deterministic artifact order.
type archive struct {
	names []string
	files map[string][]byte
}

func readArchive(path string) (*archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	a := &archive{files: make(map[string][]byte, len(zr.File))}
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", zf.Name, err)
		}
		a.files[zf.Name] = data
		a.names = append(a.names, zf.Name)
	}
	sort.Strings(a.names)
	return a, nil
}

func (a *archive) matching(re *regexp.Regexp) []string {
	var out []string
	for _, n := range a.names {
		if re.MatchString(n) {
			out = append(out, n)
		}
	}
	return out
}

func (a *archive) first(re *regexp.Regexp) (string, []byte, bool) {
	for _, n := range a.names {
		if re.MatchString(n) {
			return n, a.files[n], true
		}
	}
	return "", nil, false
}

func loadOne(dir string, dep store.Deployment, opts LoadOptions) (*Record, error) {
	arch, err := readArchive(filepath.Join(dir, dep.Key()+".zip"))
	if err != nil {
		return nil, err
	}

	r := &Record{
		Org:     dep.Org,
		App:     dep.App,
		Env:     dep.Env,
		RepoURL: fmt.Sprintf("%s/%s/%s.git", opts.RepoBaseURL, dep.Org, dep.App),
		AppURL:  fmt.Sprintf("https://%s.%s/%s/%s/", dep.Org, opts.AppDomain, dep.Org, dep.App),
	}

	if _, data, ok := arch.first(metadataRE); ok {
		r.Metadata = jsonq.Parse(data)
	}
	r.AppSettings = loadAppSettings(arch)
	r.LayoutSets = loadLayoutSets(arch)
	stampLayoutSetIDs(r.LayoutSets)
	r.TextResources = loadTexts(arch)
	r.Sources = loadSources(arch)
	r.FrontendVersion, r.BackendVersion, r.DotnetVersion = loadVersions(arch)

	return r, nil
}

func loadAppSettings(arch *archive) []AppSettings {
	var out []AppSettings
	for _, name := range arch.matching(appsettingsRE) {
		m := appsettingsRE.FindStringSubmatch(name)
		env := "default"
		if m[2] != "" {
			env = m[2]
		}
		cfg := jsonq.Parse(arch.files[name])
		if !cfg.Exists() {
			continue
		}
		out = append(out, AppSettings{Environment: env, Config: cfg})
	}
	return out
}

func loadLayoutSets(arch *archive) []LayoutSet {
	if name, data, ok := arch.first(layoutSetsRE); ok {
		uiBase := strings.TrimSuffix(name, "layout-sets.json")
		var out []LayoutSet
		for _, setJSON := range jsonq.Parse(data).AllAt(pathSets) {
			id, _ := setJSON.At(pathSetID).AsString()
			if id == "" {
				continue
			}
			ls := loadLayoutSet(arch, uiBase+id+"/")
			ls.ID = id
			ls.DataType, _ = setJSON.At(pathDataType).AsString()
			for _, t := range setJSON.AllAt(pathTasks) {
				if task, ok := t.AsString(); ok {
					ls.Tasks = append(ls.Tasks, task)
				}
			}
			if len(ls.Layouts) == 0 {
				continue
			}
			out = append(out, ls)
		}
		return out
	}

	// No layout-sets file: a single unnamed set directly under /App/ui/.
	uiBase := ""
	for _, n := range arch.names {
		if i := strings.Index(n, "/App/ui/"); i >= 0 {
			uiBase = n[:i] + "/App/ui/"
			break
		}
	}
	if uiBase == "" {
		return nil
	}
	ls := loadLayoutSet(arch, uiBase)
	if len(ls.Layouts) == 0 {
		return nil
	}
	return []LayoutSet{ls}
}

// loadLayoutSet assembles one layout set rooted at base (which ends in /).
// Layout files live in base/layouts/, or as a single base/FormLayout.json.
func loadLayoutSet(arch *archive, base string) LayoutSet {
	var ls LayoutSet

	layoutNames := arch.matching(regexp.MustCompile(`^` + regexp.QuoteMeta(base+"layouts/") + `[^/]+\.json$`))
	if len(layoutNames) == 0 {
		if _, ok := arch.files[base+"FormLayout.json"]; ok {
			layoutNames = []string{base + "FormLayout.json"}
		}
	}
	for _, name := range layoutNames {
		raw := jsonq.Parse(arch.files[name])
		if !raw.Exists() {
			continue
		}
		layout := Layout{
			Name: strings.TrimSuffix(path.Base(name), ".json"),
			Raw:  raw,
		}
		for _, cj := range raw.AllAt(pathLayout) {
			id, _ := cj.At(pathComponent).AsString()
			ctype, _ := cj.At(pathCompType).AsString()
			layout.Components = append(layout.Components, Component{
				ID:     id,
				Type:   ctype,
				Layout: layout.Name,
				Raw:    cj,
			})
		}
		ls.Layouts = append(ls.Layouts, layout)
	}

	if data, ok := arch.files[base+"Settings.json"]; ok {
		ls.Settings = jsonq.Parse(data)
	}
	if data, ok := arch.files[base+"RuleConfiguration.json"]; ok {
		ls.RuleConfiguration = jsonq.Parse(data)
	}
	if data, ok := arch.files[base+"RuleHandler.js"]; ok {
		ls.RuleHandler = string(data)
	}
	return ls
}

func loadTexts(arch *archive) []TextResource {
	var out []TextResource
	for _, name := range arch.matching(textRE) {
		raw := jsonq.Parse(arch.files[name])
		if !raw.Exists() {
			continue
		}
		out = append(out, TextResource{
			Language: textRE.FindStringSubmatch(name)[1],
			FileName: path.Base(name),
			Raw:      raw,
		})
	}
	return out
}

func loadSources(arch *archive) []*csharp.File {
	var out []*csharp.File
	for _, name := range arch.matching(csRE) {
		out = append(out, csharp.ParseFile(name, arch.files[name]))
	}
	return out
}

func loadVersions(arch *archive) (frontend, backend, dotnet version.Version) {
	if _, data, ok := arch.first(indexCshtmlRE); ok {
		if m := frontendVersionRE.FindSubmatch(data); m != nil {
			frontend = version.Parse(string(m[1]))
		}
	}
	for _, name := range arch.matching(csprojRE) {
		data := arch.files[name]
		if !backend.Exists() {
			if m := backendVersionRE.FindSubmatch(data); m != nil {
				backend = version.Parse(string(m[2]))
			}
		}
		if !dotnet.Exists() {
			if m := dotnetVersionRE.FindSubmatch(data); m != nil {
				dotnet = version.Parse(string(m[1]))
			}
		}
	}
	return frontend, backend, dotnet
}

// stampLayoutSetIDs records the owning set id on each component once the
// sets are fully assembled.
func stampLayoutSetIDs(sets []LayoutSet) {
	for si := range sets {
		for li := range sets[si].Layouts {
			for ci := range sets[si].Layouts[li].Components {
				sets[si].Layouts[li].Components[ci].LayoutSet = sets[si].ID
			}
		}
	}
}
