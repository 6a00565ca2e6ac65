package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleyba/uber-poet/catalog"
	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/projectgen"
)

// execute runs args against a fresh root holding sub, isolated from the
// user's config files and from earlier runs.
func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("HOME", t.TempDir())

	resetFlags(sub)

	root := &cobra.Command{Use: "uberpoet", SilenceErrors: true, SilenceUsage: true}
	root.PersistentFlags().CountP("verbose", "v", "")
	root.PersistentFlags().Bool("json", false, "")
	root.PersistentFlags().String("config", "", "")
	root.AddCommand(sub)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.Execute()
	return out.String(), err
}

// resetFlags restores defaults on sub and its children; package-level
// commands keep flag values between executions
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, GraphCmd, "--gen_type", "layered", "--module_count", "2", "--app_layer_count", "2")
	require.NoError(t, err)
	assert.Equal(t, "MockLib1_0 MockLib0_0\nApp MockLib1_0\n", out)
}

func TestGraphCommandDot(t *testing.T) {
	dot := filepath.Join(t.TempDir(), "deps.dot")
	require.NoError(t, os.WriteFile(dot, []byte(`digraph {
  "//App:App" -> "//Lib:Lib";
  "//Lib:Lib" -> "//Base:Base";
}
`), 0644))

	out, err := execute(t, GraphCmd, "--gen_type", "dot", "--dot_file_path", dot, "--dot_root_node_name", "App")
	require.NoError(t, err)
	assert.Contains(t, out, "App Lib\n")
	assert.Contains(t, out, "Lib Base\n")
}

func TestGraphCommandInvalid(t *testing.T) {
	_, err := execute(t, GraphCmd, "--gen_type", "spiral")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestIOSCommand(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "mock_app")
	catalogPath := filepath.Join(t.TempDir(), "catalog.db")
	t.Setenv("UBERPOET_CATALOG_PATH", catalogPath)

	out, err := execute(t, IOSCmd,
		"--json",
		"-o", outDir,
		"--gen_type", "flat",
		"--module_count", "3",
		"--swift_lines_of_code", "300",
		"--cloc_binary", "",
		"--seed", "7",
		"--concurrency", "2",
	)
	require.NoError(t, err)

	var s summary
	require.NoError(t, json.Unmarshal([]byte(out), &s), out)
	assert.Equal(t, outDir, s.OutputDir)
	assert.Equal(t, 3, s.Modules)
	assert.Positive(t, s.Files)
	assert.Positive(t, s.Lines)
	assert.Contains(t, s.ExampleCommand, "bazel build //App:App")

	index, err := projectgen.ReadModuleIndex(outDir)
	require.NoError(t, err)
	assert.Len(t, index, 3)
	assert.FileExists(t, filepath.Join(outDir, "App", "AppDelegate.swift"))

	data, err := os.ReadFile(filepath.Join(outDir, projectgen.ProjectInfoFile))
	require.NoError(t, err)
	var info projectgen.ProjectInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, "flat", info.GraphConfig)
	assert.Equal(t, "bazel", info.GeneratorType)
	assert.GreaterOrEqual(t, info.TimeToGenerate, 0.0)

	// The run is in the catalog
	out, err = execute(t, HistoryCmd, "ls", "--json")
	require.NoError(t, err)
	var runs []catalog.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs), out)
	require.Len(t, runs, 1)
	assert.Equal(t, s.RunID, runs[0].ID)
	assert.Equal(t, "ios", runs[0].Command)

	out, err = execute(t, HistoryCmd, "show", s.RunID[:8], "--json")
	require.NoError(t, err)
	var run catalog.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run), out)
	assert.Len(t, run.Modules, 3)
	assert.Equal(t, "MockLib0", run.Modules[0].Name)
	assert.Equal(t, "Swift", run.Modules[0].Language)
}

func TestIOSCommandPrintsGraph(t *testing.T) {
	out, err := execute(t, IOSCmd, "--gen_type", "flat", "--module_count", "2", "--print_dependency_graph")
	require.NoError(t, err)
	assert.Equal(t, "App MockLib0\nApp MockLib1\n", out)
}

func TestIOSCommandNeedsOutputDirectory(t *testing.T) {
	_, err := execute(t, IOSCmd, "--module_count", "2")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestJavaCommandWithoutCatalog(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "mock_java")
	catalogPath := filepath.Join(t.TempDir(), "catalog.db")
	t.Setenv("UBERPOET_CATALOG_PATH", catalogPath)

	_, err := execute(t, JavaCmd,
		"-o", outDir,
		"--gen_type", "layered",
		"--module_count", "2",
		"--app_layer_count", "2",
		"--java_lines_of_code", "200",
		"--java_package", "org.acme",
		"--cloc_binary", "",
		"--catalog=false",
	)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "App", "src", "main", "java", "org", "acme", "Main.java"))
	assert.FileExists(t, filepath.Join(outDir, "MODULE.bazel"))
	assert.NoFileExists(t, catalogPath)
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, ConfigCmd, "show", "--format", "json")
	require.NoError(t, err)

	var settings map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &settings), out)
	assert.Contains(t, settings, "generation")
	assert.Contains(t, settings, "ios")
}

func TestConfigShowWithExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[generation]\nmodule_count = 42\n"), 0644))

	out, err := execute(t, ConfigCmd, "show", "--config", path, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "module_count: 42")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uberpoet.toml")

	_, err := execute(t, ConfigCmd, "init", path)
	require.NoError(t, err)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Generation.ModuleCount, cfg.Generation.ModuleCount)

	_, err = execute(t, ConfigCmd, "init", path)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	_, err = execute(t, ConfigCmd, "init", path, "--force")
	require.NoError(t, err)
	assert.FileExists(t, path+".back1")
}

func TestConfigValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[generation]\ngen_type = \"spiral\"\n"), 0644))

	_, err := execute(t, ConfigCmd, "validate", "--config", path)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	_, err = execute(t, ConfigCmd, "validate")
	require.NoError(t, err)
}

func TestHistoryShowUnknown(t *testing.T) {
	t.Setenv("UBERPOET_CATALOG_PATH", filepath.Join(t.TempDir(), "catalog.db"))

	_, err := execute(t, HistoryCmd, "show", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, VersionCmd, "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info), out)
	assert.NotEmpty(t, info["go_version"])
}

func TestPrintError(t *testing.T) {
	err := errors.WithHint(errors.NewConfigError("module_count must be > 0"), "pass --module_count")

	var buf bytes.Buffer
	PrintError(&buf, err, false)
	assert.Equal(t, "Error: module_count must be > 0\nHint: pass --module_count\n", buf.String())

	buf.Reset()
	PrintError(&buf, err, true)
	assert.Contains(t, buf.String(), "commands_test.go")
}
