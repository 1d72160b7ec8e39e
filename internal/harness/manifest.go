package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Manifest declares builders, the lifecycle to drive them through and the
// probes to run afterwards.
type Manifest struct {
	// Name identifies the manifest; golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what the manifest exercises.
	Description string `yaml:"description,omitempty"`

	// Checkpoint is the hook that replays deferred builders. Defaults to
	// "init".
	Checkpoint string `yaml:"checkpoint,omitempty"`

	// Hooks is the lifecycle fired after Builders are applied. Defaults to
	// DefaultLifecycle. The checkpoint is fired first when not listed.
	Hooks []string `yaml:"hooks,omitempty"`

	// Builders are applied before the lifecycle runs, so their calls are
	// deferred.
	Builders []BuilderStep `yaml:"builders"`

	// Late builders are applied after the lifecycle and take the immediate
	// path.
	Late []BuilderStep `yaml:"late,omitempty"`

	// Requests probe the host once everything is registered.
	Requests []Request `yaml:"requests,omitempty"`

	// Assertions are evaluated against the result.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DefaultLifecycle is the hook order a run fires when the manifest names
// none.
var DefaultLifecycle = []string{
	"plugins_loaded",
	"init",
	"widgets_init",
	"rest_api_init",
	"admin_menu",
	"admin_init",
	"wp_dashboard_setup",
}

// BuilderStep obtains one builder and makes calls on it.
type BuilderStep struct {
	Category string `yaml:"category"`
	Key      string `yaml:"key"`
	Calls    []Call `yaml:"calls"`
}

// Call is one method invocation, written as {method: [args...]}.
type Call struct {
	Method string
	Args   []any
}

// UnmarshalYAML accepts {method: [args]}, {method: arg}, {method: null} and a
// bare method name.
func (c *Call) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		c.Method = n.Value
		return nil
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return fmt.Errorf("line %d: call must be a single-key map {method: [args]}", n.Line)
	}
	c.Method = n.Content[0].Value
	v := n.Content[1]
	switch {
	case v.Kind == yaml.SequenceNode:
		return v.Decode(&c.Args)
	case v.Tag == "!!null":
		c.Args = nil
		return nil
	default:
		var a any
		if err := v.Decode(&a); err != nil {
			return err
		}
		c.Args = []any{a}
		return nil
	}
}

// Request kinds.
const (
	RequestShortcode = "shortcode"
	RequestAjax      = "ajax"
	RequestRest      = "rest"
	RequestHTTP      = "http"
)

// Request probes one host entry point.
type Request struct {
	// Kind is shortcode, ajax, rest or http.
	Kind string `yaml:"kind"`

	// Target is the shortcode tag, AJAX action, REST path ("/atom/v1/hello")
	// or, for http, the request path.
	Target string `yaml:"target"`

	// Public selects the unauthenticated AJAX variant.
	Public bool `yaml:"public,omitempty"`

	// Method is the HTTP method for http requests. Defaults to POST.
	Method string `yaml:"method,omitempty"`

	// Data holds shortcode attributes or submitted values.
	Data map[string]string `yaml:"data,omitempty"`

	// Expect is checked against the outcome when present.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a request.
type Expect struct {
	Status   int    `yaml:"status,omitempty"`
	Success  *bool  `yaml:"success,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// checkpoint returns the manifest checkpoint or the default.
func (m *Manifest) checkpoint() string {
	if m.Checkpoint == "" {
		return "init"
	}
	return m.Checkpoint
}

// lifecycle returns the hooks to fire, checkpoint included.
func (m *Manifest) lifecycle() []string {
	hooks := m.Hooks
	if len(hooks) == 0 {
		hooks = DefaultLifecycle
	}
	cp := m.checkpoint()
	for _, h := range hooks {
		if h == cp {
			return hooks
		}
	}
	return append([]string{cp}, hooks...)
}

// LoadManifest reads a manifest from a .yaml, .yml or .cue file.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields or is missing required fields.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		data, err = compileCUE(path, data)
		if err != nil {
			return nil, err
		}
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported manifest extension %q", filepath.Ext(path))
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ParseManifest decodes YAML (or JSON) manifest bytes with strict field
// checking and validates required fields.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := validateManifest(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// compileCUE evaluates a CUE manifest and exports it as JSON, which the YAML
// decoder reads like any other manifest.
func compileCUE(path string, src []byte) ([]byte, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE manifest: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE manifest is not concrete: %w", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export CUE manifest: %w", err)
	}
	return out, nil
}

// validateManifest checks that required fields are present.
func validateManifest(m *Manifest) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(m.Builders) == 0 && len(m.Late) == 0 {
		return fmt.Errorf("builders or late must be non-empty")
	}
	if err := validateSteps("builders", m.Builders); err != nil {
		return err
	}
	if err := validateSteps("late", m.Late); err != nil {
		return err
	}
	for i, r := range m.Requests {
		if r.Kind == "" {
			return fmt.Errorf("requests[%d]: kind is required", i)
		}
		if r.Target == "" {
			return fmt.Errorf("requests[%d]: target is required", i)
		}
	}
	for i := range m.Assertions {
		if err := validateAssertion(i, &m.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateSteps(section string, steps []BuilderStep) error {
	for i, s := range steps {
		if s.Category == "" {
			return fmt.Errorf("%s[%d]: category is required", section, i)
		}
		if s.Key == "" {
			return fmt.Errorf("%s[%d]: key is required", section, i)
		}
		for j, c := range s.Calls {
			if c.Method == "" {
				return fmt.Errorf("%s[%d].calls[%d]: method is required", section, i, j)
			}
		}
	}
	return nil
}
