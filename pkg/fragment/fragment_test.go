package fragment

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  List
	}{
		{
			name:  "Empty",
			input: "",
			want:  nil,
		},
		{
			name:  "Cflags",
			input: "-I/usr/include/foo -DFOO_STATIC",
			want: List{
				{Type: 'I', Data: "/usr/include/foo"},
				{Type: 'D', Data: "FOO_STATIC"},
			},
		},
		{
			name:  "Libs",
			input: "-L/usr/lib -lfoo -lbar",
			want: List{
				{Type: 'L', Data: "/usr/lib"},
				{Type: 'l', Data: "foo"},
				{Type: 'l', Data: "bar"},
			},
		},
		{
			name:  "SpacedIncludeDir",
			input: "-I /opt/foo/include -lfoo",
			want: List{
				{Type: 'I', Data: "/opt/foo/include"},
				{Type: 'l', Data: "foo"},
			},
		},
		{
			name:  "QuotedPathWithSpace",
			input: `-I"/opt/program files/include" -lfoo`,
			want: List{
				{Type: 'I', Data: "/opt/program files/include"},
				{Type: 'l', Data: "foo"},
			},
		},
		{
			name:  "EscapedSpace",
			input: `-I/opt/weird\ dir/include`,
			want: List{
				{Type: 'I', Data: "/opt/weird dir/include"},
			},
		},
		{
			name:  "BareWord",
			input: "/usr/lib/libfoo.a -pthread",
			want: List{
				{Data: "/usr/lib/libfoo.a"},
				{Type: 'p', Data: "thread"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	if _, err := Parse(`-I"/oops`); !errors.Is(err, ErrUnterminatedQuote) {
		t.Errorf("err = %v, want ErrUnterminatedQuote", err)
	}
}

func TestMergeCollapsesPathDuplicates(t *testing.T) {
	a, _ := Parse("-I/usr/include -L/usr/lib -lfoo")
	b, _ := Parse("-I/usr/include -L/usr/lib -lbar -lfoo")

	got := Merge(a, b).Render()
	want := "-I/usr/include -L/usr/lib -lfoo -lbar -lfoo"
	if got != want {
		t.Errorf("Merge render = %q, want %q", got, want)
	}
}

func TestOfTypeAndExceptType(t *testing.T) {
	list, _ := Parse("-I/inc -DFOO -L/lib -lfoo -pthread")

	if got := OfType(list, 'I').Render(); got != "-I/inc" {
		t.Errorf("OfType(I) = %q", got)
	}
	if got := OfType(list, 'l', 'L').Render(); got != "-L/lib -lfoo" {
		t.Errorf("OfType(l, L) = %q", got)
	}
	if got := ExceptType(list, 'I').Render(); got != "-DFOO -L/lib -lfoo -pthread" {
		t.Errorf("ExceptType(I) = %q", got)
	}
}

func TestSysrootPrefix(t *testing.T) {
	list, _ := Parse("-I/usr/include -L/usr/lib -lfoo -DBAR")

	got := SysrootPrefix(list, "/sysroot").Render()
	want := "-I/sysroot/usr/include -L/sysroot/usr/lib -lfoo -DBAR"
	if got != want {
		t.Errorf("SysrootPrefix = %q, want %q", got, want)
	}

	// Already-prefixed paths stay put.
	again := SysrootPrefix(SysrootPrefix(list, "/sysroot"), "/sysroot").Render()
	if again != want {
		t.Errorf("double SysrootPrefix = %q, want %q", again, want)
	}
}

func TestRenderQuoting(t *testing.T) {
	list := List{
		{Type: 'I', Data: "/opt/program files/include"},
		{Type: 'D', Data: `NAME="foo"`},
		{Type: 'l', Data: "foo"},
	}

	got := list.Render()
	want := `-I/opt/program\ files/include -DNAME=\"foo\" -lfoo`
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
