package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// writeLeadsOutput writes leads to the given destination. "-" means stdout
// (TSV); a path ending in .xlsx gets an Excel workbook, anything else TSV.
func writeLeadsOutput(dest string, leads []model.Lead) error {
	if dest == "" || dest == "-" {
		_, err := os.Stdout.WriteString(export.TSV(leads))
		return eris.Wrap(err, "write stdout")
	}

	if strings.EqualFold(filepath.Ext(dest), ".xlsx") {
		f, err := os.Create(dest)
		if err != nil {
			return eris.Wrapf(err, "create %s", dest)
		}
		if err := export.WriteXLSX(f, leads); err != nil {
			f.Close()
			return err
		}
		// Close failures matter here: the workbook may be truncated.
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "close %s", dest)
		}
		return nil
	}

	if err := os.WriteFile(dest, []byte(export.TSV(leads)), 0644); err != nil {
		return eris.Wrapf(err, "write %s", dest)
	}
	return nil
}
