package discovery_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/keyfactory/pkg/discovery"
	"github.com/arthur-debert/keyfactory/pkg/errors"
)

const markerPath = discovery.DefaultMarkerPackage

func TestRun_AcceptsStringKey(t *testing.T) {
	res, err := runFixture(t, `
type EmailHandler struct {
	_ factory.Registration[Handler, string] `+"`factory:\"email\"`"+`
	From string
}

func (*EmailHandler) Handle() string { return "email" }
`, discovery.Options{})
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	assert.Empty(t, res.Diagnostics)

	unit := res.Units[0]
	assert.Equal(t, "example.com/app", unit.PkgPath)
	assert.Equal(t, "app", unit.PkgName)
	assert.Equal(t, "/src/example.com/app", unit.Dir)
	assert.Equal(t, "EmailHandler", unit.TypeName)
	assert.Equal(t, "handlers.go", unit.Source)
	assert.Equal(t, "factory.", unit.Factory)
	assert.Equal(t, "reflect.", unit.Reflect)
	assert.Equal(t, []discovery.Import{
		{Name: "factory", Path: markerPath},
		{Name: "reflect", Path: "reflect"},
	}, unit.Imports)

	require.Len(t, unit.Bindings, 1)
	b := unit.Bindings[0]
	assert.Equal(t, "Handler", b.Base)
	assert.Equal(t, "string", b.KeyType)
	assert.Equal(t, "&EmailHandler{}", b.Construct)
	assert.Equal(t, discovery.Key{Kind: discovery.KeyString, Text: "email", Expr: `"email"`}, b.Key)
	assert.Equal(t, "/src/example.com/app/handlers.go", b.Pos.Filename)
}

func TestRun_KeyRendering(t *testing.T) {
	tests := []struct {
		name     string
		keyType  string
		tag      string
		wantKind discovery.KeyKind
		wantExpr string
		wantType string
	}{
		{"string literal", "string", "alpha", discovery.KeyString, `"alpha"`, "string"},
		{"string with quotes", "string", `say \"hi\"`, discovery.KeyString, `"say \"hi\""`, "string"},
		{"named string constant", "Topic", "TopicAlerts", discovery.KeyEnum, "TopicAlerts", "Topic"},
		{"named string without constant", "Topic", "audit", discovery.KeyString, `"audit"`, "Topic"},
		{"enum by name", "Kind", "KindDelete", discovery.KeyEnum, "KindDelete", "Kind"},
		{"enum by value", "Kind", "1", discovery.KeyEnum, "KindCreate", "Kind"},
		{"enum without constant", "Kind", "7", discovery.KeyEnum, "Kind(7)", "Kind"},
		{"imported enum by name", "kinds.Kind", "Create", discovery.KeyEnum, "kinds.Create", "kinds.Kind"},
		{"imported enum by selector", "kinds.Kind", "kinds.Delete", discovery.KeyEnum, "kinds.Delete", "kinds.Kind"},
		{"imported enum alias constant", "kinds.Kind", "Remove", discovery.KeyEnum, "kinds.Remove", "kinds.Kind"},
		{"imported enum by value picks first", "kinds.Kind", "2", discovery.KeyEnum, "kinds.Delete", "kinds.Kind"},
		{"imported enum hidden constant", "kinds.Kind", "9", discovery.KeyEnum, "kinds.Kind(9)", "kinds.Kind"},
		{"int literal", "int", "42", discovery.KeyLiteral, "42", "int"},
		{"int constant", "int", "answer", discovery.KeyLiteral, "answer", "int"},
		{"negative int", "int", "-3", discovery.KeyLiteral, "-3", "int"},
		{"bool literal", "bool", "true", discovery.KeyLiteral, "true", "bool"},
		{"float literal", "float64", "0.5", discovery.KeyLiteral, "0.5", "float64"},
		{"rational float expression", "float64", "1.0 / 3", discovery.KeyLiteral, "(1.0 / 3)", "float64"},
		{"expression over imported constant", "int", "int(kinds.Delete) * 10", discovery.KeyLiteral, "20", "int"},
		{"expression over local constant", "int", "answer + 1", discovery.KeyLiteral, "43", "int"},
		{"imported enum arithmetic", "kinds.Kind", "kinds.Create + 5", discovery.KeyEnum, "kinds.Kind(6)", "kinds.Kind"},
		{"imported enum arithmetic matching constant", "kinds.Kind", "kinds.Create + 1", discovery.KeyEnum, "kinds.Delete", "kinds.Kind"},
		{"interface key keeps default type", "any", "40 + 2", discovery.KeyLiteral, "int(42)", "any"},
		{"interface key keeps constant type", "any", "kinds.Create + 5", discovery.KeyLiteral, "kinds.Kind(6)", "any"},
		{"type key", "reflect.Type", "EmailHandler", discovery.KeyType, "reflect.TypeFor[EmailHandler]()", "reflect.Type"},
		{"imported type key", "reflect.Type", "kinds.Kind", discovery.KeyType, "reflect.TypeFor[kinds.Kind]()", "reflect.Type"},
		{"pointer type key", "reflect.Type", "*EmailHandler", discovery.KeyType, "reflect.TypeFor[*EmailHandler]()", "reflect.Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runFixture(t, `
type EmailHandler struct {
	_ factory.Registration[Handler, `+tt.keyType+"] `factory:\""+tt.tag+"\"`"+`
}

func (*EmailHandler) Handle() string { return "email" }
`, discovery.Options{})
			require.NoError(t, err)
			require.Empty(t, res.Diagnostics)
			unit := unitFor(t, res, "EmailHandler")
			require.Len(t, unit.Bindings, 1)

			b := unit.Bindings[0]
			assert.Equal(t, tt.wantKind, b.Key.Kind)
			assert.Equal(t, tt.wantExpr, b.Key.Expr)
			assert.Equal(t, tt.wantType, b.KeyType)
		})
	}
}

func TestRun_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		decls  string
		reason discovery.Reason
	}{
		{
			name: "missing tag",
			decls: `
type Target struct {
	_ factory.Registration[Handler, string]
}
`,
			reason: discovery.ReasonMissingKey,
		},
		{
			name: "empty tag",
			decls: `
type Target struct {
	_ factory.Registration[Handler, string] ` + "`factory:\"\"`" + `
}
`,
			reason: discovery.ReasonMissingKey,
		},
		{
			name: "other tag only",
			decls: `
type Target struct {
	_ factory.Registration[Handler, string] ` + "`json:\"target\"`" + `
}
`,
			reason: discovery.ReasonMissingKey,
		},
		{
			name: "nil key",
			decls: `
type Target struct {
	_ factory.Registration[Handler, int] ` + "`factory:\"nil\"`" + `
}
`,
			reason: discovery.ReasonMissingKey,
		},
		{
			name: "nil type key",
			decls: `
type Target struct {
	_ factory.Registration[Handler, reflect.Type] ` + "`factory:\"nil\"`" + `
}
`,
			reason: discovery.ReasonMissingKey,
		},
		{
			name: "unresolved base",
			decls: `
type Target struct {
	_ factory.Registration[Undefined, string] ` + "`factory:\"target\"`" + `
}
`,
			reason: discovery.ReasonMissingBase,
		},
		{
			name: "unresolved key type",
			decls: `
type Target struct {
	_ factory.Registration[Handler, Undefined] ` + "`factory:\"target\"`" + `
}
`,
			reason: discovery.ReasonUnresolvedKeyType,
		},
		{
			name: "non-comparable key type",
			decls: `
type Target struct {
	_ factory.Registration[Handler, []string] ` + "`factory:\"target\"`" + `
}
`,
			reason: discovery.ReasonUnresolvedKeyType,
		},
		{
			name: "key is not a constant",
			decls: `
type Target struct {
	_ factory.Registration[Handler, int] ` + "`factory:\"unknown\"`" + `
}
`,
			reason: discovery.ReasonInvalidKey,
		},
		{
			name: "key overflows key type",
			decls: `
type Target struct {
	_ factory.Registration[Handler, Kind] ` + "`factory:\"300\"`" + `
}
`,
			reason: discovery.ReasonInvalidKey,
		},
		{
			name: "key has wrong type",
			decls: `
type Target struct {
	_ factory.Registration[Handler, int] ` + "`factory:\"TopicAlerts\"`" + `
}
`,
			reason: discovery.ReasonInvalidKey,
		},
		{
			name: "key is not an expression",
			decls: `
type Target struct {
	_ factory.Registration[Handler, int] ` + "`factory:\"1 +\"`" + `
}
`,
			reason: discovery.ReasonInvalidKey,
		},
		{
			name: "type key names a value",
			decls: `
type Target struct {
	_ factory.Registration[Handler, reflect.Type] ` + "`factory:\"KindCreate\"`" + `
}
`,
			reason: discovery.ReasonInvalidKey,
		},
		{
			name: "generic type",
			decls: `
type Target[T any] struct {
	_ factory.Registration[Handler, string] ` + "`factory:\"target\"`" + `
	value T
}
`,
			reason: discovery.ReasonGeneric,
		},
		{
			name: "does not implement base",
			decls: `
type Target struct {
	_ factory.Registration[Handler, string] ` + "`factory:\"target\"`" + `
}
`,
			reason: discovery.ReasonNotAssignable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls := tt.decls
			if tt.reason != discovery.ReasonNotAssignable && tt.reason != discovery.ReasonGeneric {
				decls += "\nfunc (*Target) Handle() string { return \"\" }\n"
			}

			res, err := runFixture(t, decls, discovery.Options{})
			require.NoError(t, err)
			assert.Empty(t, res.Units)
			require.Len(t, res.Diagnostics, 1)

			d := res.Diagnostics[0]
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, "Target", d.TypeName)
			assert.Equal(t, "example.com/app", d.Package)
			assert.Equal(t, "/src/example.com/app/handlers.go", d.Pos.Filename)
			assert.NotEmpty(t, d.Message)
		})
	}
}

func TestRun_MissingKeyWhenValidOtherwise(t *testing.T) {
	// Missing keys are reported even when the type implements its base.
	res, err := runFixture(t, `
type Target struct {
	_ factory.Registration[Handler, string]
}

func (*Target) Handle() string { return "" }
`, discovery.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Units)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, discovery.ReasonMissingKey, res.Diagnostics[0].Reason)
}

func TestRun_ValueConstruction(t *testing.T) {
	res, err := runFixture(t, `
type Settings struct {
	_ factory.Registration[Settings, string] `+"`factory:\"settings\"`"+`
	Name string
}

type Echo struct {
	_ factory.Registration[Handler, string] `+"`factory:\"echo\"`"+`
}

func (Echo) Handle() string { return "echo" }
`, discovery.Options{})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	assert.Equal(t, "Settings{}", unitFor(t, res, "Settings").Bindings[0].Construct)
	assert.Equal(t, "&Echo{}", unitFor(t, res, "Echo").Bindings[0].Construct)
}

func TestRun_MultipleMarkers(t *testing.T) {
	res, err := runFixture(t, `
type Multi struct {
	_ factory.Registration[Handler, string] `+"`factory:\"multi\"`"+`
	_ factory.Registration[Handler, Kind]   `+"`factory:\"KindDelete\"`"+`
}

func (*Multi) Handle() string { return "multi" }
`, discovery.Options{})
	require.NoError(t, err)
	require.Len(t, res.Units, 1)

	bindings := res.Units[0].Bindings
	require.Len(t, bindings, 2)
	assert.Equal(t, "string", bindings[0].KeyType)
	assert.Equal(t, `"multi"`, bindings[0].Key.Expr)
	assert.Equal(t, "Kind", bindings[1].KeyType)
	assert.Equal(t, "KindDelete", bindings[1].Key.Expr)
}

func TestRun_PartiallyValidType(t *testing.T) {
	res, err := runFixture(t, `
type Partial struct {
	_ factory.Registration[Handler, string]     `+"`factory:\"ok\"`"+`
	_ factory.Registration[Handler, kinds.Kind] `+"`factory:\"Nope\"`"+`
}

func (*Partial) Handle() string { return "partial" }
`, discovery.Options{})
	require.NoError(t, err)

	unit := unitFor(t, res, "Partial")
	require.Len(t, unit.Bindings, 1)
	assert.Equal(t, `"ok"`, unit.Bindings[0].Key.Expr)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, discovery.ReasonInvalidKey, res.Diagnostics[0].Reason)

	// The rejected marker's key type must not leak an import.
	for _, imp := range unit.Imports {
		assert.NotEqual(t, "example.com/kinds", imp.Path)
	}
}

func TestRun_SourceOrder(t *testing.T) {
	res, err := runFixture(t, `
type Second struct {
	_ factory.Registration[Handler, string] `+"`factory:\"second\"`"+`
}

func (*Second) Handle() string { return "" }

type (
	First struct {
		_ factory.Registration[Handler, string] `+"`factory:\"first\"`"+`
	}
	Plain struct{ Name string }
)

func (*First) Handle() string { return "" }
`, discovery.Options{})
	require.NoError(t, err)
	require.Len(t, res.Units, 2)
	assert.Equal(t, "Second", res.Units[0].TypeName)
	assert.Equal(t, "First", res.Units[1].TypeName)
}

func TestRun_IgnoresLookalikeMarker(t *testing.T) {
	res, err := runFixture(t, `
type Registration[V any, K comparable] struct{}

type Impostor struct {
	_ Registration[Handler, string] `+"`factory:\"impostor\"`"+`
}

func (*Impostor) Handle() string { return "" }
`, discovery.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Units)
	assert.Empty(t, res.Diagnostics)
}

func TestRun_IgnoresOtherMarkerPackage(t *testing.T) {
	src := `package app

import other "example.com/other/factory"

type Handler interface{ Handle() string }

type Impostor struct {
	_ other.Registration[Handler, string] ` + "`factory:\"impostor\"`" + `
}

func (*Impostor) Handle() string { return "" }
`
	pkg := checkSource(t, "handlers.go", src)

	res, err := discovery.New(discovery.Options{}).Run([]*discovery.Package{pkg})
	require.NoError(t, err)
	assert.Empty(t, res.Units)

	// The same package is found once it is configured as the marker package.
	res, err = discovery.New(discovery.Options{MarkerPackage: "example.com/other/factory"}).Run([]*discovery.Package{pkg})
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	assert.Equal(t, "factory.", res.Units[0].Factory)
	assert.Equal(t, "example.com/other/factory", res.Units[0].Imports[0].Path)
}

func TestRun_CustomTagName(t *testing.T) {
	res, err := runFixture(t, `
type Target struct {
	_ factory.Registration[Handler, string] `+"`factory:\"ignored\" kind:\"target\"`"+`
}

func (*Target) Handle() string { return "" }
`, discovery.Options{TagName: "kind"})
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	assert.Equal(t, `"target"`, res.Units[0].Bindings[0].Key.Expr)
}

func TestRun_ImportAliases(t *testing.T) {
	src := `package app

import (
	"reflect"

	kf "github.com/arthur-debert/keyfactory/pkg/factory"
)

type Handler interface{ Handle() string }

var factory = "shadowed"

type Target struct {
	_ kf.Registration[Handler, reflect.Type] ` + "`factory:\"Target\"`" + `
}

func (*Target) Handle() string { return factory }
`
	pkg := checkSource(t, "target.go", src)

	res, err := discovery.New(discovery.Options{}).Run([]*discovery.Package{pkg})
	require.NoError(t, err)
	require.Len(t, res.Units, 1)

	unit := res.Units[0]
	assert.Equal(t, "target.go", unit.Source)
	assert.Equal(t, "factory2.", unit.Factory)
	assert.Equal(t, []discovery.Import{
		{Name: "factory2", Path: markerPath, Renamed: true},
		{Name: "reflect", Path: "reflect"},
	}, unit.Imports)
	assert.Equal(t, "reflect.TypeFor[Target]()", unit.Bindings[0].Key.Expr)
}

func TestRun_ConstantKeyExpressionsNeedNoImports(t *testing.T) {
	src := `package app

import (
	k "example.com/kinds"
	"github.com/arthur-debert/keyfactory/pkg/factory"
)

type Handler interface{ Handle() string }

type Scaled struct {
	_ factory.Registration[Handler, int] ` + "`factory:\"int(k.Delete) * 10\"`" + `
}

type Shifted struct {
	_ factory.Registration[Handler, k.Kind] ` + "`factory:\"k.Create + 5\"`" + `
}

func (*Scaled) Handle() string  { return "scaled" }
func (*Shifted) Handle() string { return "shifted" }
`
	pkg := checkSource(t, "keys.go", src)

	res, err := discovery.New(discovery.Options{}).Run([]*discovery.Package{pkg})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	scaled := unitFor(t, res, "Scaled")
	assert.Equal(t, "20", scaled.Bindings[0].Key.Expr)
	for _, imp := range scaled.Imports {
		assert.NotEqual(t, "example.com/kinds", imp.Path)
	}

	shifted := unitFor(t, res, "Shifted")
	assert.Equal(t, "kinds.Kind(6)", shifted.Bindings[0].Key.Expr)
	assert.Equal(t, "kinds.Kind", shifted.Bindings[0].KeyType)
	assert.Contains(t, shifted.Imports, discovery.Import{Name: "kinds", Path: "example.com/kinds"})
}

func TestRun_SkipsTestFiles(t *testing.T) {
	src := `package app

import "github.com/arthur-debert/keyfactory/pkg/factory"

type Handler interface{ Handle() string }

type Fake struct {
	_ factory.Registration[Handler, string] ` + "`factory:\"fake\"`" + `
}

func (*Fake) Handle() string { return "" }
`
	pkg := checkSource(t, "fake_test.go", src)

	res, err := discovery.New(discovery.Options{}).Run([]*discovery.Package{pkg})
	require.NoError(t, err)
	assert.Empty(t, res.Units)
}

func TestRun_SkipsPackagesWithoutTypes(t *testing.T) {
	res, err := discovery.New(discovery.Options{}).Run([]*discovery.Package{{Path: "example.com/broken"}})
	require.NoError(t, err)
	assert.Empty(t, res.Units)
}

const invalidFixture = `
type Good struct {
	_ factory.Registration[Handler, string] ` + "`factory:\"good\"`" + `
}

func (*Good) Handle() string { return "" }

type Bad struct {
	_ factory.Registration[Handler, string] ` + "`factory:\"bad\"`" + `
}
`

func TestRun_Policies(t *testing.T) {
	t.Run("skip logs at debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

		res, err := runFixture(t, invalidFixture, discovery.Options{OnInvalid: discovery.PolicySkip, Logger: &logger})
		require.NoError(t, err)
		assert.Len(t, res.Units, 1)
		assert.Len(t, res.Diagnostics, 1)
		assert.Empty(t, buf.String())
	})

	t.Run("warn logs a warning", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

		res, err := runFixture(t, invalidFixture, discovery.Options{OnInvalid: discovery.PolicyWarn, Logger: &logger})
		require.NoError(t, err)
		assert.Len(t, res.Units, 1)
		assert.Contains(t, buf.String(), `"level":"warn"`)
		assert.Contains(t, buf.String(), `"reason":"not-assignable"`)
		assert.Contains(t, buf.String(), `"type":"example.com/app.Bad"`)
	})

	t.Run("error fails after the full scan", func(t *testing.T) {
		res, err := runFixture(t, invalidFixture, discovery.Options{OnInvalid: discovery.PolicyError})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCandidateInvalid))
		assert.Contains(t, err.Error(), "Bad: not-assignable")

		require.NotNil(t, res)
		assert.Len(t, res.Units, 1)

		details := errors.GetErrorDetails(err)
		diags, ok := details["diagnostics"].([]discovery.Diagnostic)
		require.True(t, ok)
		assert.Len(t, diags, 1)
	})

	t.Run("error without rejections", func(t *testing.T) {
		res, err := runFixture(t, `
type Good struct {
	_ factory.Registration[Handler, string] `+"`factory:\"good\"`"+`
}

func (*Good) Handle() string { return "" }
`, discovery.Options{OnInvalid: discovery.PolicyError})
		require.NoError(t, err)
		assert.Len(t, res.Units, 1)
	})
}
