// Package harness executes builder manifests against an in-process host.
//
// A manifest declares builders by category and key, the calls made on each
// and when they are made: before the checkpoint (recorded and replayed) or
// after it (applied immediately). The harness then probes the resulting
// registrations with requests and evaluates assertions over the replay trace.
//
// # Manifest Format
//
// Manifests are YAML or CUE files with the following structure:
//
//	name: contact
//	description: "Contact form declared before init"
//	checkpoint: init
//	builders:
//	  - category: form
//	    key: contact
//	    calls:
//	      - field: [email]
//	      - onSubmit: [{handler: greet}]
//	      - shortcode: [contact]
//	late:
//	  - category: rest
//	    key: hello
//	    calls:
//	      - onSubmit: [{handler: echo}]
//	requests:
//	  - kind: ajax
//	    target: atom_form_contact_submit
//	    data: {email: ada@example.com}
//	    expect: {success: true}
//	assertions:
//	  - type: trace_order
//	    calls: [form:contact.field, form:contact.shortcode]
//
// Each call is a single-key map from method name to its argument list. A
// bare string is a call without arguments. The map argument {handler: name}
// resolves to one of the built-in submit handlers (echo, greet, fail) and
// {column: prefix} to a list column renderer.
//
// # Assertion Types
//
//   - trace_contains: a call label appears in the trace, optionally with an outcome
//   - trace_order: call labels appear in the given order
//   - trace_count: a call label appears exactly N times
//   - hook_fired: a hook fired exactly N times (at least once when N is 0)
//   - option: a stored option has the given value
//
// Call labels have the form category:key.method.
//
// # Deterministic Runs
//
// Pass IDs come from a sequence generator and every run uses a fresh host,
// so the same manifest always produces the same trace. Render and
// AssertGolden turn that trace into text for golden comparison.
package harness
