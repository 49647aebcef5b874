// Command metaaudio recognises MP3 files in a directory against Shazam's
// discovery endpoint and writes the result back as ID3 metadata, following
// original_source/metaaudio.py's CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/metaaudio/fingerprint/internal/driver"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("metaaudio", flag.ContinueOnError)
	rename := fs.Bool("rename", false, "rename recognised files to \"artist - title.mp3\"")
	overwrite := fs.Bool("overwrite", false, "allow --rename to replace an existing file (requires --rename)")
	delay := fs.Float64("delay", 0, "base retry delay in seconds (floored at 0.5s)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: metaaudio [flags] input_dir")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *overwrite && !*rename {
		fmt.Fprintln(os.Stderr, "Error:", driver.ErrConflictingFlags)
		return 1
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	inputDir := fs.Arg(0)

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", inputDir)
		return 1
	}

	d := driver.New()
	opts := driver.Options{
		Rename:    *rename,
		Overwrite: *overwrite,
		Delay:     time.Duration(*delay * float64(time.Second)),
	}
	if err := d.ProcessDir(context.Background(), inputDir, opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
