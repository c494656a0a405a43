// Package assets provides LaTeX templates and the page-size preset table.
//
// Built-in templates are embedded; a Resolver layers a user directory laid
// out as {dir}/templates/{name}.tex over them, so one file can replace a
// single built-in template while the rest stay available.
//
// Names are plain identifiers (no separators or dots). Directory reads go
// through os.OpenInRoot and cannot follow a symlink out of the directory.
package assets
