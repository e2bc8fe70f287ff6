package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/pingprep/internal/spectrogram"
)

func runSpectrogram(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("spectrogram", flag.ContinueOnError)
	fs.SetOutput(out)
	in := fs.String("in", "", "input ping table (CSV)")
	class := fs.String("class", "", "species class to resample")
	length := fs.Int("length", 200, "rows per spectrogram")
	count := fs.Int("count", 1, "number of spectrograms")
	seed := fs.Uint64("seed", 0, "seed of the first spectrogram")
	dir := fs.String("out", "", "output directory")
	var schema schemaFlags
	registerSchemaFlags(fs, &schema)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *class == "" || *dir == "" {
		return errors.New("-in, -class and -out are required")
	}

	ds, err := readDataset(*in, schema.options())
	if err != nil {
		return err
	}
	resampler, err := spectrogram.NewResampler(ds)
	if err != nil {
		return err
	}
	specs, err := resampler.GenerateClass(*class, *length, *count, *seed)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	for i, s := range specs {
		path := filepath.Join(*dir, fmt.Sprintf("%s_%04d.csv", *class, i))
		if err := writeSpectrogram(path, s); err != nil {
			return err
		}
		log.Debug().Str("path", path).Str("individual", s.IndividualID).Msg("Spectrogram written")
	}

	fmt.Fprintf(out, "%s %s spectrograms of %s x %d for class %s in %s\n",
		color.GreenString("wrote"),
		humanize.Comma(int64(len(specs))),
		humanize.Comma(int64(*length)),
		len(resampler.Frequencies()),
		*class,
		*dir)
	return nil
}

func writeSpectrogram(path string, s *spectrogram.Spectrogram) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(s.Frequencies); err != nil {
		f.Close()
		return err
	}
	for _, row := range s.Rows() {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(cells); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
