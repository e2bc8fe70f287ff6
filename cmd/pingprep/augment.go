package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/RMahshie/pingprep/internal/augment"
)

func runAugment(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("augment", flag.ContinueOnError)
	fs.SetOutput(out)
	in := fs.String("in", "", "input ping table (CSV)")
	outPath := fs.String("out", "", "output path for the augmented table")
	strategy := fs.String("strategy", string(augment.StrategyGroupAverage), "pairwise or group-average")
	n := fs.Int("n", 100, "synthetic samples per class")
	balance := fs.Int("balance", 0, "top every class up to this many rows instead of using -n")
	noise := fs.Float64("noise", 1, "standard deviation of the Gaussian noise")
	seed := fs.Uint64("seed", 0, "random seed")
	maxIter := fs.Int("max-iterations", 0, "generation attempts per class, 0 for no cap")
	parallel := fs.Int("parallel", 1, "classes augmented at once")
	classes := fs.String("classes", "", "comma separated classes to augment (default all)")
	var schema schemaFlags
	registerSchemaFlags(fs, &schema)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *outPath == "" {
		return errors.New("-in and -out are required")
	}

	s, err := augment.ParseStrategy(*strategy)
	if err != nil {
		return err
	}

	ds, err := readDataset(*in, schema.options())
	if err != nil {
		return err
	}

	var targets []augment.Target
	if *balance > 0 {
		targets = augment.BalanceTargets(ds.Filter(splitList(*classes), nil), *balance)
	} else {
		selected := splitList(*classes)
		if len(selected) == 0 {
			selected = ds.Classes()
		}
		targets = augment.FixedTargets(selected, *n)
	}

	orchestrator, err := augment.NewOrchestrator(s,
		augment.WithNoise(*noise),
		augment.WithSeed(*seed),
		augment.WithMaxIterations(*maxIter),
		augment.WithParallelism(*parallel),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := orchestrator.Run(ctx, ds, targets)
	if err != nil {
		return err
	}
	if err := writeDataset(*outPath, result.Dataset); err != nil {
		return err
	}

	printReport(out, result.Report)
	return nil
}

func printReport(w io.Writer, report augment.Report) {
	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	for _, c := range report.Classes {
		line := fmt.Sprintf("%-8s %s / %s", c.Class, humanize.Comma(int64(c.Produced)), humanize.Comma(int64(c.Requested)))
		if c.Warning != nil {
			fmt.Fprintf(w, "%s  %s\n", warn(line), c.Warning.Reason)
			continue
		}
		fmt.Fprintln(w, ok(line))
	}
	fmt.Fprintf(w, "%s %s source + %s synthetic = %s rows\n",
		bold("total"),
		humanize.Comma(int64(report.SourceRows)),
		humanize.Comma(int64(report.SyntheticRows)),
		humanize.Comma(int64(report.TotalRows)))
}

func registerSchemaFlags(fs *flag.FlagSet, s *schemaFlags) {
	defaults := schemaDefaults()
	fs.StringVar(&s.id, "id-column", defaults.id, "individual id column")
	fs.StringVar(&s.class, "class-column", defaults.class, "species class column")
	fs.StringVar(&s.time, "time-column", defaults.time, "ping time column")
	fs.StringVar(&s.prefix, "frequency-prefix", defaults.prefix, "prefix of frequency columns")
}
