// Command pingprep prepares fish sonar ping tables for classifier training
// without the API server: it augments under-represented species, resamples
// fixed-size spectrograms and draws balanced samples.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/pingprep/internal/dataset"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "augment":
		err = runAugment(os.Args[2:], os.Stdout)
	case "spectrogram":
		err = runSpectrogram(os.Args[2:], os.Stdout)
	case "sample":
		err = runSample(os.Args[2:], os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: pingprep <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  augment      -in data.csv -out aug.csv [-strategy group-average] [-n 100] [-classes LT,SMB]")
	fmt.Fprintln(w, "  spectrogram  -in data.csv -class LT [-length 200] [-count 1] -out dir")
	fmt.Fprintln(w, "  sample       -in data.csv -out sample.csv [-n 500] [-seed 0] [-exclude LT008,LT016]")
}

// schemaFlags are the column-name flags shared by every command
type schemaFlags struct {
	id, class, time, prefix string
}

func schemaDefaults() schemaFlags {
	d := dataset.DefaultSchemaOptions()
	return schemaFlags{id: d.IDColumn, class: d.ClassColumn, time: d.TimeColumn, prefix: d.FrequencyPrefix}
}

func (s *schemaFlags) options() dataset.SchemaOptions {
	opts := dataset.DefaultSchemaOptions()
	opts.IDColumn = s.id
	opts.ClassColumn = s.class
	opts.TimeColumn = s.time
	opts.FrequencyPrefix = s.prefix
	opts.LeadingColumns = []string{s.id, s.class, "Index"}
	return opts
}

func readDataset(path string, opts dataset.SchemaOptions) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := dataset.ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("rows", ds.Len()).Strs("classes", ds.Classes()).Msg("Dataset loaded")
	return ds, nil
}

func writeDataset(path string, ds *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(f, ds); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
