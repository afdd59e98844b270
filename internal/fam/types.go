package fam

// AppType classifies a declared application target.
type AppType string

// Application kinds understood by the build tool's declaration format.
// Only External targets are distributable through the catalog.
const (
	AppTypeService     AppType = "Service"
	AppTypeSystem      AppType = "System"
	AppTypeApp         AppType = "App"
	AppTypePlugin      AppType = "Plugin"
	AppTypeDebug       AppType = "Debug"
	AppTypeArchive     AppType = "Archive"
	AppTypeSettings    AppType = "Settings"
	AppTypeStartup     AppType = "StartupHook"
	AppTypeExternal    AppType = "External"
	AppTypeMetapackage AppType = "Package"
)

// appTypeByConstant maps the `FlipperAppType.X` constants used in
// declaration files to their AppType values.
var appTypeByConstant = map[string]AppType{
	"SERVICE":     AppTypeService,
	"SYSTEM":      AppTypeSystem,
	"APP":         AppTypeApp,
	"PLUGIN":      AppTypePlugin,
	"DEBUG":       AppTypeDebug,
	"ARCHIVE":     AppTypeArchive,
	"SETTINGS":    AppTypeSettings,
	"STARTUP":     AppTypeStartup,
	"EXTERNAL":    AppTypeExternal,
	"METAPACKAGE": AppTypeMetapackage,
}

// Application is one target declared in an application.fam file.
// Field defaults follow the declaration format's own defaults.
type Application struct {
	// ID is the unique application identifier (appid).
	ID string
	// Type is the target kind (apptype).
	Type AppType
	// Name is the display name.
	Name string
	// EntryPoint is the symbol the firmware jumps into.
	EntryPoint string
	// StackSize is the requested stack size in bytes.
	StackSize int
	// Order is the menu ordering hint.
	Order int
	// Requires lists service dependencies.
	Requires []string
	// Targets lists supported hardware targets (defaults to ["all"]).
	Targets []string
	// Version is the declared semantic version as an ordered integer tuple
	// (defaults to 0.1).
	Version []int
	// Icon is the source-tree-relative path of the 10x10 application icon
	// (fap_icon).
	Icon string
	// Category is the catalog category (fap_category).
	Category string
	// Description is the one-line summary (fap_description).
	Description string
	// Author is the declared author (fap_author).
	Author string
	// WebURL is the project home page (fap_weburl).
	WebURL string
	// IconAssets is the directory of additional image assets
	// (fap_icon_assets).
	IconAssets string
	// Path is the declaration file the target was parsed from.
	Path string
}

// newApplication returns an Application with the format's default values.
func newApplication(path string) *Application {
	return &Application{
		StackSize: 2048,
		Targets:   []string{"all"},
		Version:   []int{0, 1},
		Path:      path,
	}
}

// VersionString renders the version tuple in dotted form.
func (a *Application) VersionString() string {
	return joinInts(a.Version, ".")
}
