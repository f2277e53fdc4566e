package main

import (
	"fmt"

	"github.com/trezcool/maendeleo/storage/catalog"
)

// checkCatalog validates a catalog file without touching the DB.
func (cli *commandLine) checkCatalog(path string) error {
	if path == "" {
		path = cli.conf.CatalogFilePath()
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("catalog OK: %d levels, %d achievements, %d rewards, milestones %v\n",
		len(cat.Levels()), len(cat.Achievements()), len(cat.Rewards()), cat.Milestones())
	return nil
}
