package python

import (
	"fmt"
	"io"
	"strings"

	"github.com/codelldb/lldb-dist/pkg/target"
)

// WriteInittab writes config.c, which defines _PyImport_Inittab for the
// selected extensions.
func WriteInittab(w io.Writer, exts []IncludedExtension) error {
	var b strings.Builder
	b.WriteString("#include \"Python.h\"\n")
	for _, e := range exts {
		if e.InitFn != "NULL" {
			fmt.Fprintf(&b, "extern PyObject* %s(void);\n", e.InitFn)
		}
	}
	b.WriteString("struct _inittab _PyImport_Inittab[] = {\n")
	for _, e := range exts {
		fmt.Fprintf(&b, "    { \"%s\", %s },\n", e.Name, e.InitFn)
	}
	b.WriteString("    { 0, 0 }\n")
	b.WriteString("};\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteExports writes the list of exported symbols of the shared runtime: a
// linker version script on Linux and an exported symbols list on Darwin.
func WriteExports(w io.Writer, systemName string, major string, minor string) error {
	var s string
	switch systemName {
	case target.Linux:
		s = fmt.Sprintf("libpython%s%s.so\n{\nglobal:\nPy*;_Py*;__Py*;\nlocal:\n*;\n};\n", major, minor)
	case target.Darwin:
		s = "Py*\n_Py*\n__Py*\n"
	default:
		return fmt.Errorf("no exports list for %s", systemName)
	}
	_, err := io.WriteString(w, s)
	return err
}
