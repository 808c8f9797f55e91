package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"soilwater/internal/soil"
)

// BatchFile is the YAML document read by the batch command.
//
//	samples:
//	  - name: north-40
//	    sand: 33
//	    clay: 33
//	    organic_matter: 2.5
type BatchFile struct {
	Samples []BatchEntry `yaml:"samples"`
}

type BatchEntry struct {
	Name        string `yaml:"name"`
	soil.Sample `yaml:",inline"`
}

// BatchOutcome is one entry of the batch command's JSON output.
type BatchOutcome struct {
	Index  int          `json:"index"`
	Name   string       `json:"name,omitempty"`
	Result *soil.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Analyze every sample listed in a YAML file",
		Long: `Analyze every sample listed in a YAML file.

Every entry is analyzed even when an earlier one is rejected. The command
exits with status 1 if any entry was rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadBatchFile(args[0])
			if err != nil {
				return err
			}
			return runBatch(cmd, rootOpts, file)
		},
	}
}

func loadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitUsage, "cannot read batch file", err)
	}

	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, WrapExitError(ExitUsage, "invalid batch file "+path, err)
	}
	if len(file.Samples) == 0 {
		return nil, NewExitError(ExitUsage, "batch file "+path+" lists no samples")
	}
	return &file, nil
}

func runBatch(cmd *cobra.Command, rootOpts *RootOptions, file *BatchFile) error {
	outcomes := make([]BatchOutcome, len(file.Samples))
	failed := 0
	for i, entry := range file.Samples {
		outcomes[i] = BatchOutcome{Index: i, Name: entry.Name}
		r, err := soil.Analyze(entry.Sample)
		if err != nil {
			outcomes[i].Error = err.Error()
			failed++
			continue
		}
		outcomes[i].Result = r
	}

	w := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		if err := writeJSON(w, outcomes); err != nil {
			return err
		}
	} else {
		for i, o := range outcomes {
			if i > 0 {
				fmt.Fprintln(w)
			}
			name := o.Name
			if name == "" {
				name = fmt.Sprintf("sample %d", o.Index+1)
			}
			fmt.Fprintf(w, "== %s ==\n", name)
			if o.Error != "" {
				fmt.Fprintf(w, "rejected: %s\n", o.Error)
				continue
			}
			writeReport(w, file.Samples[i].Sample, o.Result)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d samples rejected", failed, len(outcomes)))
	}
	return nil
}
