package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const contactManifest = `name: contact
builders:
  - category: form
    key: contact
    calls:
      - field: [name]
      - onSubmit: [{handler: greet}]
      - shortcode: [contact]
requests:
  - kind: ajax
    target: atom_form_contact_submit
    public: true
    data: {name: Ada}
    expect: {success: true, contains: "Hello, Ada!"}
assertions:
  - type: trace_order
    calls: [form:contact.field, form:contact.shortcode]
`

const failingManifest = `name: failing
builders:
  - category: ajax
    key: ping
    calls:
      - onSubmit: [{handler: fail}]
requests:
  - kind: ajax
    target: ping
    expect: {success: true}
`

const invalidManifest = `name: invalid
builders:
  - category: widget
    key: sidebar
    calls:
      - title: [Hi]
`

// writeManifest writes content to dir/name and returns the path.
func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
