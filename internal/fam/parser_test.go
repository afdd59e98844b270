package fam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDeclaration = `# Example application
App(
    appid="pc_monitor",
    name="PC Monitor",
    apptype=FlipperAppType.EXTERNAL,
    entry_point="pc_monitor_app",
    requires=["gui"],
    stack_size=4 * 1024,
    order=20,
    fap_category="USB",
    fap_icon="pc_monitor_10px.png",
    fap_version=(1, 2),
    fap_author="someone",
    fap_description="Shows PC sensor readings "
    "on the device screen",
    fap_weburl="https://example.com/pc-monitor",
)
`

// TestParseRealWorldShape exercises the declaration shape produced by real
// application trees: comments, keyword arguments, integer products, tuples,
// nested lists and implicit string concatenation.
func TestParseRealWorldShape(t *testing.T) {
	t.Parallel()

	apps, err := Parse(sampleDeclaration, "application.fam")
	require.NoError(t, err)
	require.Len(t, apps, 1)

	app := apps[0]
	require.Equal(t, "pc_monitor", app.ID)
	require.Equal(t, AppTypeExternal, app.Type)
	require.Equal(t, "PC Monitor", app.Name)
	require.Equal(t, 4096, app.StackSize)
	require.Equal(t, []string{"gui"}, app.Requires)
	require.Equal(t, []string{"all"}, app.Targets)
	require.Equal(t, []int{1, 2}, app.Version)
	require.Equal(t, "1.2", app.VersionString())
	require.Equal(t, "pc_monitor_10px.png", app.Icon)
	require.Equal(t, "Shows PC sensor readings on the device screen", app.Description)
	require.Equal(t, "application.fam", app.Path)
}

// TestParseMultipleApps checks that one file may declare several targets.
func TestParseMultipleApps(t *testing.T) {
	t.Parallel()

	src := `
App(appid="one", apptype=FlipperAppType.EXTERNAL)
App(appid="two", apptype=FlipperAppType.PLUGIN, targets=["f7"])
`

	apps, err := Parse(src, "application.fam")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	require.Equal(t, AppTypePlugin, apps[1].Type)
	require.Equal(t, []string{"f7"}, apps[1].Targets)
}

// TestParseVersionForms accepts both the tuple and the dotted-string version
// spellings.
func TestParseVersionForms(t *testing.T) {
	t.Parallel()

	apps, err := Parse(`App(appid="a", apptype=FlipperAppType.EXTERNAL, fap_version="2.5")`, "f")
	require.NoError(t, err)
	require.Equal(t, []int{2, 5}, apps[0].Version)

	apps, err = Parse(`App(appid="a", apptype=FlipperAppType.EXTERNAL, fap_version=(0, 9))`, "f")
	require.NoError(t, err)
	require.Equal(t, "0.9", apps[0].VersionString())
}

// TestParseNestedConstructors ensures ExtFile and Lib calls are accepted and
// grammar-checked without being retained.
func TestParseNestedConstructors(t *testing.T) {
	t.Parallel()

	src := `
App(
    appid="a",
    apptype=FlipperAppType.EXTERNAL,
    fap_extbuild=[ExtFile(path="dist/a.fap", command="make")],
    fap_private_libs=[Lib(name="mlib", cflags=["-Wno-error"])],
)
`

	apps, err := Parse(src, "f")
	require.NoError(t, err)
	require.Equal(t, "a", apps[0].ID)
}

// TestParseRejectsArbitraryCode verifies that anything outside the fixed
// constructor set fails instead of being interpreted.
func TestParseRejectsArbitraryCode(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"statement":        `import os`,
		"assignment":       `x = 1`,
		"unknown call":     `Exec(cmd="rm -rf /")`,
		"unknown ident":    `App(appid=__import__)`,
		"positional args":  `App("a", FlipperAppType.EXTERNAL)`,
		"string multiply":  `App(appid="a" * 3, apptype=FlipperAppType.EXTERNAL)`,
		"bad apptype":      `App(appid="a", apptype="External")`,
		"unknown constant": `App(appid="a", apptype=FlipperAppType.NOPE)`,
		"empty file":       ``,
		"missing appid":    `App(apptype=FlipperAppType.EXTERNAL)`,
		"missing apptype":  `App(appid="a")`,
	}

	for name, src := range cases {
		_, err := Parse(src, "f")
		require.ErrorIs(t, err, ErrMalformed, name)
	}
}

// TestParseTolerantOfUnknownFields keeps forward compatibility with fields
// the bundler does not consume.
func TestParseTolerantOfUnknownFields(t *testing.T) {
	t.Parallel()

	src := `
App(
    appid="a",
    apptype=FlipperAppType.EXTERNAL,
    sdk_headers=["api.h"],
    cdefines=["APP_A"],
    sources=["*.c"],
    flags=["Default"],
    fap_libs=["assets"],
    fap_icon_assets="images",
)
`

	apps, err := Parse(src, "f")
	require.NoError(t, err)
	require.Equal(t, "images", apps[0].IconAssets)
}
