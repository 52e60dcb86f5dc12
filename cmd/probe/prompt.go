package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirmRunAll asks whether every probe should run. Anything but an
// explicit yes, including EOF, declines.
func confirmRunAll(in io.Reader, out io.Writer, probes, apps int) bool {
	fmt.Fprintf(out, "Run all %d probes across %d applications? [y/N] ", probes, apps)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
