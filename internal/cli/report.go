package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// printResult writes the final report: the "get started" text, or the full
// result as a JSON object under --json.
func printResult(w io.Writer, res *model.Result) error {
	if jsonOutput {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to encode report", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintln(w, res.NextSteps)
	if len(res.Removed) > 0 {
		fmt.Fprintf(w, "\nRemoved template files: %s\n", strings.Join(res.Removed, ", "))
	}
	fmt.Fprintln(w)
	return nil
}
