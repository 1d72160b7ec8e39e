package builder

import (
	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
)

// ColumnFunc renders a custom list column for a post.
type ColumnFunc func(postID int) string

// ColumnCell is the value passed through a post type's custom column filter.
type ColumnCell struct {
	Column string
	PostID int
	Output string
}

// PostType is the chainable surface of a post type builder.
type PostType interface {
	Fields(names ...string) PostType
	Field(name string, typ ...string) PostType
	FieldWith(name, typ string, opts FieldOptions) PostType
	Public(public ...bool) PostType
	Icon(icon string) PostType
	OnlyFor(capability string) PostType
	Label(label string) PostType
	MenuPosition(pos int) PostType
	Sortable(cols ...string) PostType
	NotSortable(cols ...string) PostType
	Column(key, label string, render ColumnFunc) PostType
	Call(method string, args ...any) PostType
}

type column struct {
	Key    string
	Label  string
	Render ColumnFunc
}

// PostTypeBuilder registers a post type on the init hook. The first
// configuring call schedules registration; the arguments are read when the
// hook runs, so every call made before then is reflected.
type PostTypeBuilder struct {
	env          *Env
	slug         string
	fields       fieldList
	public       *bool
	icon         string
	capability   string
	label        string
	menuPosition int
	sortable     []string
	notSortable  []string
	columns      []column
	registered   bool
}

// NewPostType creates a post type builder.
func NewPostType(env *Env, key ir.Key) *PostTypeBuilder {
	return &PostTypeBuilder{env: env, slug: SanitizeKey(string(key))}
}

// Slug returns the sanitized post type slug.
func (b *PostTypeBuilder) Slug() string { return b.slug }

func (b *PostTypeBuilder) Fields(names ...string) PostType {
	for _, n := range names {
		b.Field(n)
	}
	return b
}

func (b *PostTypeBuilder) Field(name string, typ ...string) PostType {
	return b.FieldWith(name, firstType(typ), FieldOptions{})
}

func (b *PostTypeBuilder) FieldWith(name, typ string, opts FieldOptions) PostType {
	b.fields = b.fields.set(newField(name, typ, opts, plainText))
	b.register()
	return b
}

// Public sets visibility; without an argument the post type is public.
func (b *PostTypeBuilder) Public(public ...bool) PostType {
	v := true
	if len(public) > 0 {
		v = public[0]
	}
	b.public = &v
	b.register()
	return b
}

func (b *PostTypeBuilder) Icon(icon string) PostType {
	b.icon = icon
	b.register()
	return b
}

func (b *PostTypeBuilder) OnlyFor(capability string) PostType {
	b.capability = capability
	b.register()
	return b
}

func (b *PostTypeBuilder) Label(label string) PostType {
	b.label = label
	b.register()
	return b
}

func (b *PostTypeBuilder) MenuPosition(pos int) PostType {
	b.menuPosition = pos
	b.register()
	return b
}

// Sortable replaces the sortable columns. No columns clears them.
func (b *PostTypeBuilder) Sortable(cols ...string) PostType {
	b.sortable = append([]string(nil), cols...)
	b.register()
	return b
}

func (b *PostTypeBuilder) NotSortable(cols ...string) PostType {
	b.notSortable = append([]string(nil), cols...)
	b.register()
	return b
}

// Column adds or replaces a custom list column.
func (b *PostTypeBuilder) Column(key, label string, render ColumnFunc) PostType {
	c := column{Key: key, Label: label, Render: render}
	for i := range b.columns {
		if b.columns[i].Key == key {
			b.columns[i] = c
			b.register()
			return b
		}
	}
	b.columns = append(b.columns, c)
	b.register()
	return b
}

func (b *PostTypeBuilder) Call(method string, args ...any) PostType {
	callLogged(b.env, ir.CategoryPostType, b.slug, b, method, args)
	return b
}

// Dispatch implements deferral.Dispatcher.
func (b *PostTypeBuilder) Dispatch(method string, args []any) error {
	return postTypeOps.Dispatch(b, method, args)
}

// Args computes the registration arguments from the current configuration.
func (b *PostTypeBuilder) Args() host.PostTypeArgs {
	args := host.PostTypeArgs{
		Label:          b.label,
		Supports:       b.fields.names(),
		MenuIcon:       b.icon,
		CapabilityType: b.capability,
		MenuPosition:   b.menuPosition,
	}
	if args.Label == "" {
		args.Label = titleize(b.slug)
	}
	if b.public != nil {
		args.Public = *b.public
	}
	return args
}

func (b *PostTypeBuilder) register() {
	if b.registered {
		return
	}
	b.registered = true
	h := b.env.Host

	h.AddActionOrRun("init", func() {
		h.RegisterPostType(b.slug, b.Args())
	})

	h.AddFilter("manage_"+b.slug+"_posts_columns", func(v any) any {
		cols, _ := v.(map[string]string)
		if cols == nil {
			cols = make(map[string]string)
		}
		for _, c := range b.columns {
			cols[c.Key] = c.Label
		}
		return cols
	})
	h.AddFilter("manage_"+b.slug+"_posts_custom_column", func(v any) any {
		cell, ok := v.(ColumnCell)
		if !ok {
			return v
		}
		for _, c := range b.columns {
			if c.Key == cell.Column && c.Render != nil {
				cell.Output = c.Render(cell.PostID)
			}
		}
		return cell
	})
	h.AddFilter("manage_edit-"+b.slug+"_sortable_columns", func(v any) any {
		cols, _ := v.(map[string]string)
		if cols == nil {
			cols = make(map[string]string)
		}
		for _, c := range b.sortable {
			cols[c] = c
		}
		return cols
	})
	h.AddFilter("manage_edit-"+b.slug+"_sortable_columns", func(v any) any {
		cols, _ := v.(map[string]string)
		for _, c := range b.notSortable {
			delete(cols, c)
		}
		return cols
	}, 20)
}

// columnListArgs reads sortable-style arguments: strings, string lists, or
// false to clear.
func columnListArgs(args []any) ([]string, error) {
	if len(args) == 1 {
		if v, ok := args[0].(bool); ok && !v {
			return nil, nil
		}
	}
	return deferral.ArgStrings(args, 0)
}

var postTypeOps = deferral.Table[*PostTypeBuilder]{
	"fields": func(b *PostTypeBuilder, args []any) error {
		names, err := deferral.ArgStrings(args, 0)
		if err != nil {
			return err
		}
		b.Fields(names...)
		return nil
	},
	"field": func(b *PostTypeBuilder, args []any) error {
		f, err := fieldArgs(args, plainText)
		if err != nil {
			return err
		}
		b.fields = b.fields.set(f)
		b.register()
		return nil
	},
	"public": func(b *PostTypeBuilder, args []any) error {
		v, err := deferral.OptArg(args, 0, true)
		if err != nil {
			return err
		}
		b.Public(v)
		return nil
	},
	"icon": func(b *PostTypeBuilder, args []any) error {
		icon, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.Icon(icon)
		return nil
	},
	"onlyFor": func(b *PostTypeBuilder, args []any) error {
		c, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.OnlyFor(c)
		return nil
	},
	"label": func(b *PostTypeBuilder, args []any) error {
		l, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.Label(l)
		return nil
	},
	"menuPosition": func(b *PostTypeBuilder, args []any) error {
		pos, err := deferral.ArgInt(args, 0)
		if err != nil {
			return err
		}
		b.MenuPosition(pos)
		return nil
	},
	"sortable": func(b *PostTypeBuilder, args []any) error {
		cols, err := columnListArgs(args)
		if err != nil {
			return err
		}
		b.Sortable(cols...)
		return nil
	},
	"notSortable": func(b *PostTypeBuilder, args []any) error {
		cols, err := columnListArgs(args)
		if err != nil {
			return err
		}
		b.NotSortable(cols...)
		return nil
	},
	"column": func(b *PostTypeBuilder, args []any) error {
		key, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		label, err := deferral.Arg[string](args, 1)
		if err != nil {
			return err
		}
		var render ColumnFunc
		switch fn := argOrNil(args, 2).(type) {
		case ColumnFunc:
			render = fn
		case func(int) string:
			render = fn
		case nil:
		default:
			return &deferral.ArgError{Index: 2, Want: "ColumnFunc", Got: fn}
		}
		b.Column(key, label, render)
		return nil
	},
}

func argOrNil(args []any, i int) any {
	if i >= len(args) {
		return nil
	}
	return args[i]
}

// DeferredPostType records PostType calls on a facade.
type DeferredPostType struct {
	f *deferral.Facade
}

func NewDeferredPostType(f *deferral.Facade) *DeferredPostType { return &DeferredPostType{f: f} }

func (d *DeferredPostType) Facade() *deferral.Facade { return d.f }

func (d *DeferredPostType) Fields(names ...string) PostType {
	return d.Call("fields", stringsToAny(names)...)
}
func (d *DeferredPostType) Field(name string, typ ...string) PostType {
	return d.Call("field", fieldCallArgs(name, typ)...)
}
func (d *DeferredPostType) FieldWith(name, typ string, opts FieldOptions) PostType {
	return d.Call("field", name, typ, opts)
}
func (d *DeferredPostType) Public(public ...bool) PostType {
	args := make([]any, len(public))
	for i, p := range public {
		args[i] = p
	}
	return d.Call("public", args...)
}
func (d *DeferredPostType) Icon(icon string) PostType        { return d.Call("icon", icon) }
func (d *DeferredPostType) OnlyFor(capability string) PostType { return d.Call("onlyFor", capability) }
func (d *DeferredPostType) Label(label string) PostType      { return d.Call("label", label) }
func (d *DeferredPostType) MenuPosition(pos int) PostType    { return d.Call("menuPosition", pos) }
func (d *DeferredPostType) Sortable(cols ...string) PostType {
	return d.Call("sortable", stringsToAny(cols)...)
}
func (d *DeferredPostType) NotSortable(cols ...string) PostType {
	return d.Call("notSortable", stringsToAny(cols)...)
}
func (d *DeferredPostType) Column(key, label string, render ColumnFunc) PostType {
	return d.Call("column", key, label, render)
}

func (d *DeferredPostType) Call(method string, args ...any) PostType {
	d.f.Call(method, args...)
	return d
}
