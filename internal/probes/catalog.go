package probes

import (
	"github.com/rs/zerolog"

	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/pkg/executil"
)

// Task ids for the entries that are added conditionally.
const (
	NodeModulesID   = "node-modules"
	CustomFoldersID = "custom-folders"
)

// Options configures DefaultCatalog.
type Options struct {
	Env           Env
	Exec          executil.Executor
	Logger        zerolog.Logger
	Docker        bool
	DockerBinary  string
	Projects      []string
	CustomFolders []string
	Disabled      []string
	SizeWorkers   int
}

type pathTask struct {
	id, name, desc string
	category       task.Category
	itemType       string
	patterns       []string
}

var pathTasks = []pathTask{
	{
		id: "expo-cache", name: "Expo Cache", category: task.CategoryCache, itemType: "expo_cache",
		desc:     "Clean Expo development cache and temporary files",
		patterns: []string{"~/.expo", "~/Library/Caches/Expo", "~/AppData/Local/Expo"},
	},
	{
		id: "metro-cache", name: "Metro Cache", category: task.CategoryCache, itemType: "metro_cache",
		desc: "Clean Metro bundler cache files",
		patterns: []string{
			"~/.metro", "~/Library/Caches/Metro", "~/AppData/Local/Metro",
			"$TMPDIR/metro-cache", "$TMPDIR/react-native-packager-cache",
		},
	},
	{
		id: "npm-cache", name: "NPM Cache", category: task.CategoryCache, itemType: "npm_cache",
		desc: "Clean Node.js package manager cache",
		patterns: []string{
			"~/.npm/_cacache", "~/.yarn/cache", "~/Library/Caches/npm", "~/Library/Caches/yarn",
			"~/AppData/Roaming/npm-cache", "~/AppData/Local/Yarn/Cache",
		},
	},
	{
		id: "ios-cache", name: "iOS Build Cache", category: task.CategoryBuild, itemType: "ios_cache",
		desc: "Clean iOS simulator and build artifacts",
		patterns: []string{
			"~/Library/Developer/Xcode/DerivedData",
			"~/Library/Caches/com.apple.dt.Xcode",
			"~/Library/Developer/CoreSimulator/Caches",
			"~/Library/Logs/CoreSimulator",
			"~/Library/Developer/Xcode/iOS DeviceSupport",
			"~/Library/Developer/Xcode/watchOS DeviceSupport",
			"~/Library/Developer/Xcode/tvOS DeviceSupport",
		},
	},
	{
		id: "android-cache", name: "Android Cache", category: task.CategoryBuild, itemType: "android_cache",
		desc: "Clean Android build cache and temporary files",
		patterns: []string{
			"~/.gradle/caches", "~/.gradle/daemon", "~/.android/cache", "~/.android/avd/.temp",
			"~/Library/Android/sdk/.temp", "~/AppData/Local/Android/Sdk/.temp",
			"~/AppData/Local/Temp/AndroidEmulator",
		},
	},
	{
		id: "watchman-cache", name: "Watchman Logs", category: task.CategoryLogs, itemType: "watchman_cache",
		desc:     "Clean Watchman file watching service logs",
		patterns: []string{"~/.watchman", "$TMPDIR/watchman", "~/Library/Logs/watchman"},
	},
	{
		id: "cocoapods-cache", name: "CocoaPods Cache", category: task.CategoryCache, itemType: "cocoapods_cache",
		desc:     "Clean CocoaPods dependency cache",
		patterns: []string{"~/Library/Caches/CocoaPods", "~/.cocoapods/repos"},
	},
	{
		id: "flipper-logs", name: "Flipper Logs", category: task.CategoryLogs, itemType: "flipper_logs",
		desc:     "Clean Flipper debugging tool logs",
		patterns: []string{"~/.flipper", "~/Library/Application Support/flipper", "~/AppData/Roaming/flipper"},
	},
	{
		id: "temp-files", name: "Temp Files", category: task.CategoryTemp, itemType: "temp_files",
		desc: "Clean system temporary files",
		patterns: []string{
			"$TMPDIR/react-native-*", "$TMPDIR/metro-*", "$TMPDIR/expo-*", "$TMPDIR/haste-map-*", "~/.tmp",
		},
	},
	{
		id: "react-native-cache", name: "React Native Cache", category: task.CategoryCache, itemType: "react_native_cache",
		desc:     "Clean React Native CLI cache and development files",
		patterns: []string{"~/.react-native", "~/Library/Caches/com.facebook.react", "~/AppData/Local/React Native"},
	},
	{
		id: "hermes-cache", name: "Hermes Cache", category: task.CategoryCache, itemType: "hermes_cache",
		desc:     "Clean Hermes JavaScript engine cache",
		patterns: []string{"~/.hermes", "~/Library/Caches/Hermes", "~/AppData/Local/Hermes", "$TMPDIR/hermes-*"},
	},
	{
		id: "vscode-cache", name: "VS Code Cache", category: task.CategoryTools, itemType: "vscode_cache",
		desc: "Clean Visual Studio Code logs and extensions",
		patterns: []string{
			"~/.vscode/extensions", "~/Library/Application Support/Code/logs",
			"~/Library/Caches/com.microsoft.VSCode", "~/AppData/Roaming/Code/logs",
			"~/AppData/Roaming/Code/CachedExtensions",
		},
	},
	{
		id: "android-studio-cache", name: "Android Studio Cache", category: task.CategoryTools, itemType: "android_studio_cache",
		desc: "Clean Android Studio system cache and logs",
		patterns: []string{
			"~/Library/Application Support/Google/AndroidStudio*/system",
			"~/Library/Logs/Google/AndroidStudio*",
			"~/Library/Caches/Google/AndroidStudio*",
			"~/AppData/Local/Google/AndroidStudio*/system",
			"~/AppData/Local/Google/AndroidStudio*/log",
		},
	},
	{
		id: "build-artifacts", name: "Build Artifacts", category: task.CategoryBuild, itemType: "build_artifacts",
		desc: "Clean old APK and IPA files from common folders",
		patterns: []string{
			"~/Desktop/*.apk", "~/Desktop/*.ipa",
			"~/Downloads/*.apk", "~/Downloads/*.ipa",
			"~/Documents/*.apk", "~/Documents/*.ipa",
		},
	},
	{
		id: "homebrew-cache", name: "Homebrew Cache", category: task.CategoryTools, itemType: "homebrew_cache",
		desc:     "Clean Homebrew package manager cache",
		patterns: []string{"/opt/homebrew/var/cache", "/usr/local/var/cache", "~/Library/Caches/Homebrew"},
	},
	{
		id: "pnpm-cache", name: "PNPM Store", category: task.CategoryCache, itemType: "pnpm_cache",
		desc:     "Clean the pnpm content-addressable store",
		patterns: []string{"~/.pnpm-store", "~/Library/pnpm", "~/AppData/Local/pnpm-cache"},
	},
	{
		id: "simulator-cache", name: "Simulator Data", category: task.CategoryBuild, itemType: "simulator_cache",
		desc: "Clean iOS simulator devices and saved state",
		patterns: []string{
			"~/Library/Developer/CoreSimulator/Devices",
			"~/Library/Logs/CoreSimulator",
			"~/Library/Saved Application State/com.apple.iphonesimulator.savedState",
		},
	},
}

type dockerTask struct {
	id, name, desc string
	kind           DockerKind
}

var dockerTasks = []dockerTask{
	{id: "docker-containers", name: "Docker Containers", desc: "Remove stopped Docker containers", kind: DockerContainer},
	{id: "docker-images", name: "Docker Images", desc: "Remove dangling Docker images", kind: DockerImage},
	{id: "docker-volumes", name: "Docker Volumes", desc: "Remove dangling Docker volumes", kind: DockerVolume},
	{id: "docker-build-cache", name: "Docker Build Cache", desc: "Prune the Docker builder cache", kind: DockerCache},
}

// AllIDs lists every task id DefaultCatalog can produce, in catalog order.
func AllIDs() []string {
	ids := make([]string, 0, len(pathTasks)+len(dockerTasks)+2)
	for _, t := range pathTasks {
		ids = append(ids, t.id)
	}
	for _, t := range dockerTasks {
		ids = append(ids, t.id)
	}
	return append(ids, NodeModulesID, CustomFoldersID)
}

// DefaultCatalog builds the catalog for this machine. Docker, node_modules,
// and custom folder tasks are only present when configured, and any id in
// Options.Disabled is left out.
func DefaultCatalog(opts Options) (*task.Catalog, error) {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, id := range opts.Disabled {
		disabled[id] = true
	}

	sizer := Sizer{Workers: opts.SizeWorkers}
	binary := opts.DockerBinary
	if binary == "" {
		binary = "docker"
	}

	var defs []task.Definition
	add := func(d task.Definition) {
		if !disabled[d.ID] {
			defs = append(defs, d)
		}
	}

	for _, t := range pathTasks {
		add(task.Definition{
			ID:          t.id,
			Name:        t.name,
			Description: t.desc,
			Category:    t.category,
			Probe:       &PathProbe{Type: t.itemType, Patterns: t.patterns, Env: opts.Env, Sizer: sizer},
		})
	}

	if opts.Docker && opts.Exec != nil {
		for _, t := range dockerTasks {
			add(task.Definition{
				ID:          t.id,
				Name:        t.name,
				Description: t.desc,
				Category:    task.CategoryDocker,
				Probe: &DockerProbe{
					Kind:   t.kind,
					Binary: binary,
					Exec:   opts.Exec,
					Logger: opts.Logger,
				},
			})
		}
	}

	if len(opts.Projects) > 0 {
		add(task.Definition{
			ID:          NodeModulesID,
			Name:        "Project node_modules",
			Description: "Remove node_modules folders from configured project roots",
			Category:    task.CategoryBuild,
			Probe:       &NodeModulesProbe{Roots: opts.Projects, Env: opts.Env, Sizer: sizer},
		})
	}

	if len(opts.CustomFolders) > 0 {
		add(task.Definition{
			ID:          CustomFoldersID,
			Name:        "Custom Folders",
			Description: "Clean user-configured folders",
			Category:    task.CategoryCache,
			Probe:       &PathProbe{Type: "custom_folder", Patterns: opts.CustomFolders, Env: opts.Env, Sizer: sizer},
		})
	}

	return task.NewCatalog(defs...)
}
