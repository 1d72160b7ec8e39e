package builder

import (
	"context"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
)

const (
	defaultSettingsParent     = "options-general.php"
	defaultSettingsCapability = "manage_options"
)

// MenuOptions overrides where and how a settings page appears.
// TopLevel places the page in the main menu instead of under Parent.
type MenuOptions struct {
	Parent     string
	TopLevel   bool
	Title      string
	Menu       string
	Position   int
	Icon       string
	Capability string
}

// Settings is the chainable surface of a settings page builder.
type Settings interface {
	Field(name string, typ ...string) Settings
	FieldWith(name, typ string, opts FieldOptions) Settings
	OnlyFor(capability string) Settings
	Menu(opts MenuOptions) Settings
	Call(method string, args ...any) Settings
}

// SettingsBuilder registers an admin settings page on admin_menu and its
// options on admin_init.
type SettingsBuilder struct {
	env        *Env
	slug       string
	fields     fieldList
	capability string
	menu       MenuOptions
	registered bool
}

// NewSettings creates a settings builder.
func NewSettings(env *Env, key ir.Key) *SettingsBuilder {
	return &SettingsBuilder{env: env, slug: SanitizeKey(string(key))}
}

func (b *SettingsBuilder) Slug() string { return b.slug }

func (b *SettingsBuilder) Field(name string, typ ...string) Settings {
	return b.FieldWith(name, firstType(typ), FieldOptions{})
}

// FieldWith declares a setting with a label, description or required flag.
func (b *SettingsBuilder) FieldWith(name, typ string, opts FieldOptions) Settings {
	b.fields = b.fields.set(newField(name, typ, opts, plainText))
	b.register()
	return b
}

func (b *SettingsBuilder) OnlyFor(capability string) Settings {
	b.capability = capability
	b.register()
	return b
}

func (b *SettingsBuilder) Menu(opts MenuOptions) Settings {
	b.menu = opts
	b.register()
	return b
}

func (b *SettingsBuilder) Call(method string, args ...any) Settings {
	callLogged(b.env, ir.CategorySettings, b.slug, b, method, args)
	return b
}

// Dispatch implements deferral.Dispatcher.
func (b *SettingsBuilder) Dispatch(method string, args []any) error {
	return settingsOps.Dispatch(b, method, args)
}

// Page computes the admin page from the current configuration.
func (b *SettingsBuilder) Page() host.MenuPage {
	title := titleize(b.slug)
	p := host.MenuPage{
		Slug:       b.slug,
		Parent:     defaultSettingsParent,
		Title:      title,
		Menu:       title,
		Capability: defaultSettingsCapability,
		Icon:       b.menu.Icon,
		Position:   b.menu.Position,
	}
	if b.capability != "" {
		p.Capability = b.capability
	}
	if b.menu.Capability != "" {
		p.Capability = b.menu.Capability
	}
	if b.menu.Title != "" {
		p.Title = b.menu.Title
	}
	if b.menu.Menu != "" {
		p.Menu = b.menu.Menu
	}
	switch {
	case b.menu.TopLevel:
		p.Parent = ""
	case b.menu.Parent != "":
		p.Parent = b.menu.Parent
	}
	return p
}

// Save stores submitted values for this page's settings, sanitized by type.
func (b *SettingsBuilder) Save(ctx context.Context, values map[string]string) error {
	return b.env.Host.SaveSettings(ctx, b.slug, values, SanitizeField)
}

func (b *SettingsBuilder) register() {
	if b.registered {
		return
	}
	b.registered = true
	h := b.env.Host

	h.AddActionOrRun("admin_menu", func() {
		h.AddMenuPage(b.Page())
	})
	h.AddActionOrRun("admin_init", func() {
		for _, f := range b.fields {
			h.RegisterSetting(b.slug, f.Name, f.Type)
		}
	})
}

// menuArg reads a MenuOptions value or a decoded map of the same keys.
func menuArg(args []any) (MenuOptions, error) {
	if len(args) == 0 {
		return MenuOptions{}, &deferral.ArgError{Index: 0, Want: "MenuOptions", Missing: true}
	}
	switch v := args[0].(type) {
	case MenuOptions:
		return v, nil
	case map[string]any:
		var o MenuOptions
		if p, ok := v["parent"]; ok {
			s, _ := p.(string)
			o.Parent = s
			o.TopLevel = p == nil || s == ""
		}
		o.Title, _ = v["title"].(string)
		o.Menu, _ = v["menu"].(string)
		o.Icon, _ = v["icon"].(string)
		o.Capability, _ = v["capability"].(string)
		if pos, ok := v["position"]; ok && pos != nil {
			n, err := deferral.ArgInt([]any{pos}, 0)
			if err != nil {
				return MenuOptions{}, err
			}
			o.Position = n
		}
		return o, nil
	}
	return MenuOptions{}, &deferral.ArgError{Index: 0, Want: "MenuOptions", Got: args[0]}
}

var settingsOps = deferral.Table[*SettingsBuilder]{
	"field": func(b *SettingsBuilder, args []any) error {
		f, err := fieldArgs(args, plainText)
		if err != nil {
			return err
		}
		b.fields = b.fields.set(f)
		b.register()
		return nil
	},
	"onlyFor": func(b *SettingsBuilder, args []any) error {
		c, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.OnlyFor(c)
		return nil
	},
	"menu": func(b *SettingsBuilder, args []any) error {
		opts, err := menuArg(args)
		if err != nil {
			return err
		}
		b.Menu(opts)
		return nil
	},
}

// DeferredSettings records Settings calls on a facade.
type DeferredSettings struct {
	f *deferral.Facade
}

func NewDeferredSettings(f *deferral.Facade) *DeferredSettings { return &DeferredSettings{f: f} }

func (d *DeferredSettings) Facade() *deferral.Facade { return d.f }

func (d *DeferredSettings) Field(name string, typ ...string) Settings {
	return d.Call("field", fieldCallArgs(name, typ)...)
}
func (d *DeferredSettings) FieldWith(name, typ string, opts FieldOptions) Settings {
	return d.Call("field", name, typ, opts)
}
func (d *DeferredSettings) OnlyFor(capability string) Settings { return d.Call("onlyFor", capability) }
func (d *DeferredSettings) Menu(opts MenuOptions) Settings     { return d.Call("menu", opts) }

func (d *DeferredSettings) Call(method string, args ...any) Settings {
	d.f.Call(method, args...)
	return d
}
