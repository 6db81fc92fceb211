package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/pnlbook/pnlbook/store"
)

// snapshotsCmd holds the flags for the 'snapshots' subcommand.
type snapshotsCmd struct {
	config string
}

func (*snapshotsCmd) Name() string     { return "snapshots" }
func (*snapshotsCmd) Synopsis() string { return "list the as-of dates with a stored result set" }
func (*snapshotsCmd) Usage() string {
	return `pbk snapshots [-c <config>]

  Lists every as-of date saved with 'pbk pnl -save'. Any of them can be
  replayed with 'pbk pnl -d <date>'.
`
}

func (c *snapshotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "c", "", "Config file (default pnlbook.yaml if present)")
}

func (c *snapshotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(c.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	db, err := store.Open(cfg.DBPath, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	dates, err := db.Dates()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, d := range dates {
		fmt.Println(d)
	}
	return subcommands.ExitSuccess
}
