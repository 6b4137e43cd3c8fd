package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/keyfactory/pkg/errors"
	"github.com/arthur-debert/keyfactory/pkg/logging"
)

// EnvPrefix prefixes environment overrides. Sections and keys are
// separated by a double underscore: KEYFACTORY_DISCOVERY__ON_INVALID.
const EnvPrefix = "KEYFACTORY_"

// FileNames are the config files looked up in the working directory, in
// order of preference.
var FileNames = []string{".keyfactory.toml", "keyfactory.toml"}

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config is the effective keyfactory configuration.
type Config struct {
	Marker    Marker    `koanf:"marker" toml:"marker"`
	Discovery Discovery `koanf:"discovery" toml:"discovery"`
	Output    Output    `koanf:"output" toml:"output"`
}

type Marker struct {
	Package string `koanf:"package" toml:"package"`
	Tag     string `koanf:"tag" toml:"tag"`
}

type Discovery struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	OnInvalid string   `koanf:"on_invalid" toml:"on_invalid"`
	SkipTag   string   `koanf:"skip_tag" toml:"skip_tag"`
}

type Output struct {
	Suffix          string `koanf:"suffix" toml:"suffix"`
	BuildConstraint bool   `koanf:"build_constraint" toml:"build_constraint"`
	Workers         int    `koanf:"workers" toml:"workers"`
	Prune           bool   `koanf:"prune" toml:"prune"`
}

// LoadOptions selects the layers Load reads.
type LoadOptions struct {
	// Path is an explicit config file. It must exist when set.
	Path string
	// Dir is searched for FileNames when Path is empty. Empty means the
	// current directory.
	Dir string
	// Overrides are dotted keys applied last, e.g. "output.workers".
	Overrides map[string]interface{}
}

// rawBytesProvider feeds embedded TOML to koanf.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrNotImplemented, "raw bytes provider only supports ReadBytes")
}

// Load builds the effective configuration.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load embedded defaults")
	}

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return decode(k)
}

// Default returns the embedded defaults, ignoring files and environment.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(err)
	}
	cfg, err := decode(k)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				trimSpaceHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s is not readable", opts.Path).
				WithDetail("path", opts.Path)
		}
		return opts.Path, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// envKey maps KEYFACTORY_OUTPUT__BUILD_CONSTRAINT to output.build_constraint.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func trimSpaceHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.String {
			return data, nil
		}
		items, ok := data.([]string)
		if !ok {
			return data, nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
}

var tagPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Validate checks values the loaders cannot type-check.
func (c *Config) Validate() error {
	var problems []string
	if c.Marker.Package == "" {
		problems = append(problems, "marker.package must not be empty")
	}
	if c.Marker.Tag == "" || strings.ContainsAny(c.Marker.Tag, " :\"`") {
		problems = append(problems, "marker.tag must be a struct tag key")
	}
	switch strings.ToLower(c.Discovery.OnInvalid) {
	case "skip", "warn", "error":
	default:
		problems = append(problems, "discovery.on_invalid must be skip, warn or error, got "+c.Discovery.OnInvalid)
	}
	if !tagPattern.MatchString(c.Discovery.SkipTag) {
		problems = append(problems, "discovery.skip_tag must be a valid build tag, got "+c.Discovery.SkipTag)
	}
	if !strings.HasSuffix(c.Output.Suffix, ".go") || strings.HasSuffix(c.Output.Suffix, "_test.go") || strings.ContainsRune(c.Output.Suffix, filepath.Separator) {
		problems = append(problems, "output.suffix must end in .go, not _test.go, and contain no path separator")
	}
	if c.Output.Workers < 1 {
		problems = append(problems, "output.workers must be at least 1")
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrConfigValid, "invalid configuration: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
