package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

func runSample(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(out)
	in := fs.String("in", "", "input ping table (CSV)")
	outPath := fs.String("out", "", "output path for the sample")
	n := fs.Int("n", 500, "rows drawn per class")
	seed := fs.Uint64("seed", 0, "random seed")
	classes := fs.String("classes", "", "comma separated classes to keep (default all)")
	exclude := fs.String("exclude", "", "comma separated individuals to drop")
	var schema schemaFlags
	registerSchemaFlags(fs, &schema)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *outPath == "" {
		return errors.New("-in and -out are required")
	}

	ds, err := readDataset(*in, schema.options())
	if err != nil {
		return err
	}

	filtered := ds.Filter(splitList(*classes), splitList(*exclude))
	sampled, err := filtered.SamplePerClass(filtered.Classes(), *n, *seed)
	if err != nil {
		return err
	}
	sorted, err := sampled.SortByIndividualAndTime()
	if err != nil {
		return err
	}
	if err := writeDataset(*outPath, sorted); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s rows (%s per class) to %s\n",
		color.GreenString("sampled"),
		humanize.Comma(int64(sorted.Len())),
		humanize.Comma(int64(*n)),
		*outPath)
	return nil
}
