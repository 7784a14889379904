package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"tools.zach/dev/iconmarker/internal/ico"
)

// inspect prints the header and directory of the icon container at path.
func inspect(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read icon: %w", err)
	}
	f, err := ico.Parse(data)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	fmt.Fprintf(w, "%s: %d entries, %d bytes\n", path, len(f.Entries), len(data))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSIZE\tKIND\tBPP\tBYTES\tOFFSET")
	for i, e := range f.Entries {
		fmt.Fprintf(tw, "%d\t%dx%d\t%s\t%d\t%d\t%d\n", i, e.Size(), e.Size(), e.Kind, e.BitCount, e.Length, e.Offset)
	}
	return tw.Flush()
}
