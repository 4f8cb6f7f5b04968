package command

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/DjonatanS/dasida/internal/database"
	"github.com/DjonatanS/dasida/internal/interfaces"
)

func renderObjects(out io.Writer, contents []*interfaces.ObjectInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSIZE\tLAST MODIFIED\tETAG\tSTORAGE CLASS")
	for _, obj := range contents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			obj.Key,
			humanize.IBytes(uint64(obj.Size)),
			obj.LastModified.UTC().Format(time.RFC3339),
			obj.ETag,
			obj.StorageClass,
		)
	}
	return w.Flush()
}

func renderRuns(out io.Writer, runs []*database.DeleteRun) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tPROVIDER\tBUCKET\tPREFIX\tPATTERN\tDELETED\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Provider,
			run.Bucket,
			run.Prefix,
			run.Pattern,
			run.DeletedCount,
			run.ErrorCount,
		)
	}
	return w.Flush()
}
