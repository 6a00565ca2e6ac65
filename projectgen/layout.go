package projectgen

import (
	"bytes"
	"embed"
	"path"
	"strings"
	"text/template"

	"github.com/kballard/go-shellquote"

	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Kind is the family of project being generated
type Kind string

const (
	KindIOS  Kind = "ios"
	KindJava Kind = "java"
)

// AppDir is the directory of the app module under the output root
const AppDir = "App"

// layout places a project's files and picks its build templates
type layout struct {
	kind          Kind
	flavor        string
	mainLanguage  filegen.Language
	buildFileName string
	libTemplate   string
	appTemplate   string
	// resources maps templates to paths relative to the output root
	resources map[string]string
	// languages the project's emitters produce
	languages   []filegen.Language
	javaPackage string
}

func newLayout(kind Kind, flavor, javaPackage string) (*layout, error) {
	switch kind {
	case KindIOS:
		l := &layout{
			kind:         kind,
			flavor:       flavor,
			mainLanguage: filegen.Swift,
			languages:    []filegen.Language{filegen.Swift, filegen.ObjC},
		}
		switch flavor {
		case config.ProjectGeneratorBazel:
			l.buildFileName = "BUILD.bazel"
			l.libTemplate, l.appTemplate = "bazel_ios_lib.tmpl", "bazel_ios_app.tmpl"
			l.resources = map[string]string{
				"info_plist.tmpl":      path.Join(AppDir, "Info.plist"),
				"workspace_bazel.tmpl": "WORKSPACE.bazel",
			}
		case config.ProjectGeneratorBuck:
			l.buildFileName = "BUCK"
			l.libTemplate, l.appTemplate = "buck_ios_lib.tmpl", "buck_ios_app.tmpl"
			l.resources = map[string]string{
				"info_plist.tmpl": path.Join(AppDir, "Info.plist"),
				"buckconfig.tmpl": ".buckconfig",
			}
		default:
			return nil, errors.NewConfigError("unknown project generator type %q", flavor)
		}
		return l, nil

	case KindJava:
		return &layout{
			kind:          kind,
			flavor:        config.ProjectGeneratorBazel,
			mainLanguage:  filegen.Java,
			languages:     []filegen.Language{filegen.Java},
			buildFileName: "BUILD.bazel",
			libTemplate:   "bazel_java_lib.tmpl",
			appTemplate:   "bazel_java_app.tmpl",
			resources:     map[string]string{"module_bazel.tmpl": "MODULE.bazel"},
			javaPackage:   javaPackage,
		}, nil
	}
	return nil, errors.NewConfigError("unknown project kind %q", kind)
}

// srcDir is where a module's sources live, relative to the output root
func (l *layout) srcDir(module string) string {
	if l.kind == KindJava {
		return path.Join(module, "src", "main", "java", packagePath(l.javaPackage, module))
	}
	return path.Join(module, "Sources")
}

// mainPath is the app entry point file, relative to the output root
func (l *layout) mainPath(fileName string) string {
	if l.kind == KindJava {
		return path.Join(AppDir, "src", "main", "java", packagePath(l.javaPackage), fileName)
	}
	return path.Join(AppDir, fileName)
}

func packagePath(parts ...string) string {
	return strings.ReplaceAll(strings.Join(parts, "."), ".", "/")
}

// labels turns module names into build target labels under prefix
func labels(prefix string, modules []string) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = "//" + path.Join(prefix, m) + ":" + m
	}
	return out
}

// buildData is the view build templates render
type buildData struct {
	Name     string
	Language string
	Deps     []string // target labels
	WMO      bool
	Package  string
}

func renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}
	return buf.String(), nil
}

// exampleCommand is a shell command building the generated app
func (l *layout) exampleCommand(outputDir string) string {
	build := []string{"bazel", "build", "//App:App"}
	if l.flavor == config.ProjectGeneratorBuck {
		build = []string{"buck", "project", "//App:App"}
	}
	return shellquote.Join("cd", outputDir) + " && " + shellquote.Join(build...)
}
