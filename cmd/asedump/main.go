// Command asedump prints what metasprite reads from Aseprite files: canvas,
// group tree, layers, frame tags, meta layer actions and warnings.
//
// Usage:
//
//	asedump [-settings import.yaml] [-process] [-v] file.ase...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/retroblast-engine/metasprite"
	"github.com/retroblast-engine/metasprite/processors"
)

func main() {
	settingsPath := flag.String("settings", "", "YAML import settings")
	process := flag.Bool("process", false, "run the meta layer processors and print their output")
	strict := flag.Bool("strict", false, "fail on the first warning")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: asedump [flags] <file.ase>...")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	settings := metasprite.DefaultSettings()
	if *settingsPath != "" {
		var err error
		if settings, err = metasprite.LoadSettings(*settingsPath); err != nil {
			log.Err(err).Msgf("failed to load settings: %v", err)
			os.Exit(1)
		}
	}

	opts := []metasprite.Option{metasprite.WithLogger(log.Logger)}
	if *strict {
		opts = append(opts, metasprite.WithStrictParsing())
	}

	files, err := metasprite.OpenMany(context.Background(), flag.Args(), opts...)
	if err != nil {
		log.Err(err).Msgf("failed to parse input: %v", err)
		os.Exit(1)
	}

	for i, f := range files {
		path := flag.Arg(i)
		var size int64
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
		dump(os.Stdout, path, size, f)

		if *process {
			if err := runProcessors(os.Stdout, f, settings); err != nil {
				log.Err(err).Msgf("%s: processing failed: %v", path, err)
				os.Exit(1)
			}
		}
	}
}

// formatFileSize converts the file size to a human-readable format
func formatFileSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1fK", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.1fM", float64(size)/(1024*1024))
	default:
		return fmt.Sprintf("%.1fG", float64(size)/(1024*1024*1024))
	}
}

func dump(w io.Writer, path string, size int64, f *metasprite.File) {
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintln(w, strings.Repeat("=", len(path)))
	fmt.Fprintf(w, "Size: %d x %d pixels (%s)\n", f.Width, f.Height, formatFileSize(size))
	fmt.Fprintf(w, "Number of Frames: %d\n", len(f.Frames))
	fmt.Fprintf(w, "Color Profile: %s\n", f.ColorProfile)
	fmt.Fprintln(w)

	printTree(w, f)
	fmt.Fprintln(w)
	printTags(w, f)

	if len(f.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range f.Warnings {
			fmt.Fprintf(w, "  %s\n", warn)
		}
	}
	fmt.Fprintln(w)
}

// printTree prints groups and their layers as an indented hierarchy.
func printTree(w io.Writer, f *metasprite.File) {
	fmt.Fprintln(w, "Layer name and hierarchy      Layer index")
	fmt.Fprintln(w, "-----------------------------------------------")
	printGroup(w, f.Root(), 0)
}

func printGroup(w io.Writer, g *metasprite.Group, depth int) {
	indent := strings.Repeat("  ", depth)
	prefix := "- "
	if depth > 0 {
		prefix = "`- "
	}
	fmt.Fprintf(w, "%s%s%s/%s%d\n", indent, prefix, g.Name, pad(indent+prefix+g.Name+"/"), g.Index)

	inner := strings.Repeat("  ", depth+1)
	for _, l := range g.ContentLayers {
		line := inner + "|- " + l.Name
		fmt.Fprintf(w, "%s%s%d\n", line, pad(line), l.Index)
	}
	for _, l := range g.MetaLayers {
		line := inner + "|- " + l.Name
		fmt.Fprintf(w, "%s%s%d  action %s%s\n", line, pad(line), l.Index, l.Action, formatParams(l.Params()))
	}
	for _, c := range g.Children() {
		printGroup(w, c, depth+1)
	}
}

func pad(s string) string {
	const column = 30
	if len(s) >= column {
		return " "
	}
	return strings.Repeat(" ", column-len(s))
}

func formatParams(params []metasprite.Param) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func printTags(w io.Writer, f *metasprite.File) {
	if len(f.FrameTags) == 0 {
		fmt.Fprintln(w, "No frame tags")
		return
	}
	fmt.Fprintln(w, "Frame tags:")
	for _, tag := range f.FrameTags {
		var props []string
		for p := range tag.Properties {
			props = append(props, "#"+p)
		}
		sort.Strings(props)
		fmt.Fprintf(w, "  %-12s frames %d-%d, %s, %v", tag.Name, tag.From, tag.To, tag.Direction, f.TagDuration(tag))
		if len(props) > 0 {
			fmt.Fprintf(w, " %s", strings.Join(props, " "))
		}
		fmt.Fprintln(w)
	}
}

func runProcessors(w io.Writer, f *metasprite.File, settings *metasprite.ImportSettings) error {
	reg, err := processors.NewRegistry()
	if err != nil {
		return err
	}
	ctx := metasprite.NewImportContext(f, settings, log.Logger)
	if err := reg.Run(ctx); err != nil {
		return err
	}

	paths := make([]string, 0, len(ctx.Pivots))
	for p := range ctx.Pivots {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		first := ctx.Pivots[p][0]
		fmt.Fprintf(w, "Pivot %s: (%.2f, %.2f) relative (%.3f, %.3f)\n",
			p, first.Pivot.X, first.Pivot.Y, first.Relative.X, first.Relative.Y)
	}

	for _, tag := range f.FrameTags {
		clip, ok := ctx.Clips[tag.Name]
		if !ok || clip.Tag != tag {
			continue
		}
		bindings := make([]metasprite.CurveBinding, 0, len(clip.Curves))
		for b := range clip.Curves {
			bindings = append(bindings, b)
		}
		sort.Slice(bindings, func(i, j int) bool {
			if bindings[i].Path != bindings[j].Path {
				return bindings[i].Path < bindings[j].Path
			}
			return bindings[i].Property < bindings[j].Property
		})
		for _, b := range bindings {
			fmt.Fprintf(w, "Clip %s %s %s:", clip.Name, b.Path, b.Property)
			for _, k := range clip.Curves[b].Keys {
				fmt.Fprintf(w, " %v=%.3f", k.Time, k.Value)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}
