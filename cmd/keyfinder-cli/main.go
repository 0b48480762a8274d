// SPDX-License-Identifier: EPL-2.0

// Command keyfinder-cli estimates the musical key of an audio file
// and prints it in the chosen notation. Silence prints nothing.
//
// Usage:
//
//	keyfinder-cli [-h] [-n key-notation] [-major profile] [-minor profile] filename
//
// Set KEYFINDER_DEBUG for per-stream decode diagnostics on stderr.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	keyfinder "github.com/Stepan-Kasyanenko/keyfinder-cli"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/keyfind"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/notation"
)

func main() {
	level := slog.LevelError
	if os.Getenv("KEYFINDER_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var notationName, majorCSV, minorCSV string

	fs := flag.NewFlagSet("keyfinder-cli", flag.ContinueOnError)
	fs.StringVar(&notationName, "n", "standard", "key notation: standard, camelot or openkey")
	fs.StringVar(&notationName, "notation", "standard", "long form of -n")
	fs.StringVar(&majorCSV, "major", "", "major tone profile override, twelve comma-separated weights")
	fs.StringVar(&minorCSV, "minor", "", "minor tone profile override, twelve comma-separated weights")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-h] [-n key-notation] [-major profile] [-minor profile] filename\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	table, err := notation.Lookup(notationName)
	if err != nil {
		fail("%v", err)
	}

	major := keyfind.MajorProfile
	if majorCSV != "" {
		if major, err = parseProfile(majorCSV); err != nil {
			fail("invalid major profile: %v", err)
		}
	}

	minor := keyfind.MinorProfile
	if minorCSV != "" {
		if minor, err = parseProfile(minorCSV); err != nil {
			fail("invalid minor profile: %v", err)
		}
	}

	key, err := keyfinder.New(logger).FindKey(fs.Arg(0), keyfind.NewWithProfiles(major, minor))
	if err != nil {
		fail("%v", err)
	}

	if key != keyfind.KeySilence {
		fmt.Println(table.Label(key))
	}
}

// parseProfile parses twelve comma-separated semitone weights.
func parseProfile(s string) ([12]float64, error) {
	var p [12]float64

	fields := strings.Split(s, ",")
	if len(fields) != len(p) {
		return p, fmt.Errorf("got %d weights, want %d", len(fields), len(p))
	}

	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return p, err
		}
		p[i] = v
	}

	return p, nil
}

// fail prints one line to stderr and exits nonzero.
func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
