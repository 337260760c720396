/*
primalscheme is the command-line entry point: a single main() calling
run(os.Args) over an application() *cli.App, the same separation the
teacher's cmd/poly uses to keep main() itself trivially untestable-but-tiny
and push everything else behind urfave/cli/v2 commands.
*/
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	run(os.Args)
}

func run(args []string) {
	app := application()
	if err := app.Run(args); err != nil {
		log.Fatal(err)
	}
}

func application() *cli.App {
	return &cli.App{
		Name:  "primalscheme",
		Usage: "Design tiling or panel multiplex PCR primer schemes from multiple sequence alignments.",

		Commands: []*cli.Command{
			{
				Name:  "scheme",
				Usage: "Design a primer scheme.",
				Subcommands: []*cli.Command{
					{
						Name:   "tiling",
						Usage:  "Tile a set of aligned genomes end to end with overlapping amplicons.",
						Flags:  schemeFlags(),
						Action: tilingCommand,
					},
					{
						Name:   "panel",
						Usage:  "Cover the requested regions (or whole genomes) with the fewest amplicons.",
						Flags:  append(schemeFlags(), &cli.StringFlag{Name: "regions", Usage: "BED file of regions to cover; omitted means whole-genome (ALL mode)."}, &cli.IntFlag{Name: "max-amplicons", Usage: "Stop after this many amplicons (0 = unbounded)."}),
						Action: panelCommand,
					},
				},
			},
			{
				Name:   "validate",
				Usage:  "Validate a configuration file and, if given, a primer BED's consistency with it.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Required: true, Usage: "Path to a run configuration JSON file."},
					&cli.StringFlag{Name: "bed", Usage: "Primer BED file to additionally check for name/pool consistency."},
				},
				Action: validateCommand,
			},
			{
				Name:  "remap",
				Usage: "Translate a primer BED from one reference's coordinate space to another's.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bed", Required: true, Usage: "Primer BED to translate."},
					&cli.StringFlag{Name: "from", Required: true, Usage: "Aligned FASTA whose first/consensus row the BED is currently expressed against."},
					&cli.StringFlag{Name: "to", Required: true, Usage: "Aligned FASTA whose first/consensus row to translate into."},
					&cli.StringFlag{Name: "mapping", Value: "first", Usage: "Mapping mode: first or consensus."},
					&cli.StringFlag{Name: "out", Required: true, Usage: "Destination path for the translated BED."},
				},
				Action: remapCommand,
			},
		},
	}
}

func schemeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "msa", Required: true, Usage: "Aligned FASTA input(s); repeat for multiple targets."},
		&cli.StringFlag{Name: "config", Usage: "Path to a run configuration JSON file; omitted uses built-in defaults."},
		&cli.StringFlag{Name: "outdir", Required: true, Usage: "Output directory for the primer BED, amplicon BED, reference FASTA and run-state files."},
		&cli.IntFlag{Name: "pools", Usage: "Override n_pools from the config."},
		&cli.BoolFlag{Name: "high-gc", Usage: "Apply the high-GC default overrides."},
	}
}
