package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/annacrombie/pkgconf/pkg/resolver"
)

var (
	colorCyan = lipgloss.Color("36")  // Teal - package names
	colorRed  = lipgloss.Color("167") // Soft red - errors
	colorDim  = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// styleName for package identifiers in listings.
	styleName = lipgloss.NewStyle().Foreground(colorCyan)

	// styleDesc for secondary description text.
	styleDesc = lipgloss.NewStyle().Foreground(colorDim)

	// styleError for diagnostic prefixes.
	styleError = lipgloss.NewStyle().Foreground(colorRed)
)

// printListing writes the --list-all table: one line per package, the
// id column padded to the widest id.
func printListing(w io.Writer, pkgs []*resolver.Package) {
	width := 0
	for _, pkg := range pkgs {
		if len(pkg.ID) > width {
			width = len(pkg.ID)
		}
	}

	for _, pkg := range pkgs {
		pad := width - len(pkg.ID) + 1
		fmt.Fprintf(w, "%s%*s%s - %s\n",
			styleName.Render(pkg.ID), pad, "",
			pkg.RealName, styleDesc.Render(pkg.Description))
	}
}

// errorPrefix renders the prefix for CLI-level diagnostics.
func errorPrefix() string {
	return styleError.Render("error:")
}
