package fragment_test

import (
	"fmt"

	"github.com/annacrombie/pkgconf/pkg/fragment"
)

func ExampleParse() {
	list, _ := fragment.Parse("-I/usr/include/foo -DFOO -lfoo")
	for _, f := range list {
		fmt.Printf("%c %s\n", f.Type, f.Data)
	}
	// Output:
	// I /usr/include/foo
	// D FOO
	// l foo
}

func ExampleMerge() {
	// Duplicate include and define flags collapse; -l flags repeat
	// because link order can require them more than once.
	a, _ := fragment.Parse("-I/opt/include -lfoo")
	b, _ := fragment.Parse("-I/opt/include -lfoo")
	fmt.Println(fragment.Merge(a, b).Render())
	// Output:
	// -I/opt/include -lfoo -lfoo
}

func ExampleSysrootPrefix() {
	list, _ := fragment.Parse("-I/usr/include -DFOO")
	fmt.Println(fragment.SysrootPrefix(list, "/sysroot").Render())
	// Output:
	// -I/sysroot/usr/include -DFOO
}

func ExampleList_Render() {
	// Shell metacharacters are backslash-escaped.
	list, _ := fragment.Parse(`"-I/opt/dir with spaces"`)
	fmt.Println(list.Render())
	// Output:
	// -I/opt/dir\ with\ spaces
}
