package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"nmsmc/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Tools.ExtractTimeout = 30
	cfgVal.Tools.CompileTimeout = 30
	cfgVal.Tools.PackTimeout = 30

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHistoryDisabled turns off the build ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries writes working stand-ins for psar and MBINCompiler,
// points the config at them, and prepends their directory to PATH.
//
// The psar stub extracts each requested document as a small text file and
// packs by writing a manifest of "== <name>" headers followed by each file's
// contents. The MBINCompiler stub decompiles every .MBIN into a fixed EXML
// tree and compiles every .EXML by copying it back to .MBIN.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		psarPath := filepath.Join(binDir, "psar")
		compilerPath := filepath.Join(binDir, "MBINCompiler")
		writeScript(b.t, psarPath, psarStub)
		writeScript(b.t, compilerPath, compilerStub)

		b.cfg.Tools.Psar = psarPath
		b.cfg.Tools.MBINCompiler = compilerPath
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithFailingBinary replaces the named tool with a script that prints a
// message and exits 3.
func WithFailingBinary(name string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, name)
		writeScript(b.t, target, "#!/bin/sh\necho \""+name+" exploded\" >&2\nexit 3\n")
		switch name {
		case "psar":
			b.cfg.Tools.Psar = target
		case "MBINCompiler":
			b.cfg.Tools.MBINCompiler = target
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}

// WriteConfigFile serializes cfg as TOML next to its temp directories and
// returns the path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "nmsmc.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writeScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}

const psarStub = `#!/bin/sh
mode="$1"
shift
case "$mode" in
-yxf)
	shift
	shift
	dest="$1"
	shift
	for id in "$@"; do
		mkdir -p "$dest/$(dirname "$id")"
		printf 'mbin %s\n' "$id" > "$dest/$id"
	done
	;;
-yrczf)
	out="$1"
	shift
	shift
	src="$1"
	shift
	: > "$out"
	for f in "$@"; do
		printf '== %s\n' "$f" >> "$out"
		cat "$src/$f" >> "$out"
	done
	;;
*)
	echo "unexpected mode $mode" >&2
	exit 2
	;;
esac
`

const compilerStub = `#!/bin/sh
decompile=0
for a in "$@"; do
	[ "$a" = "--no-version" ] && decompile=1
done
for a in "$@"; do
	case "$a" in
	-*) continue ;;
	esac
	if [ "$decompile" = 1 ]; then
		printf '<?xml version="1.0" encoding="utf-8"?>\n<Data template="GcStub">\n  <Property name="Speed" value="1" />\n  <Property name="Items">\n    <Property name="Item" value="Sword" />\n  </Property>\n</Data>\n' > "${a%.MBIN}.EXML"
	else
		cp "$a" "${a%.EXML}.MBIN"
	fi
done
`
