package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/pageinfo"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := pageinfo.SnapshotFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.URL = &c.URL
	}

	snapshots, err := deps.Snapshots.FindSnapshots(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pageinfo.ErrorMessage(err))
		return err
	}

	if len(snapshots) == 0 {
		fmt.Fprintln(deps.Stdout, "No snapshots found. Use 'pageinfo fetch --save' to create one.")
		return nil
	}

	for _, s := range snapshots {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d  %s  %s\n",
			s.ID, s.FetchedAt.Format(time.RFC3339), s.StatusCode, s.ContentHash, s.URL)
	}

	return nil
}
