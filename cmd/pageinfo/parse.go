package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/pageinfo"
	"github.com/fwojciec/pageinfo/webpage"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	client := webpage.NewClient(deps.Fetcher, deps.Extractor)

	var info *pageinfo.HTMLInfo
	var err error
	if c.File == "" || c.File == "-" {
		info, err = client.ParseReader(deps.Stdin, c.Base)
	} else {
		info, err = client.ParseFile(c.File, c.Base)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pageinfo.ErrorMessage(err))
		return err
	}

	return writeJSON(deps, info)
}

func writeJSON(deps *Dependencies, v any) error {
	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
