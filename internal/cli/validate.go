package cli

import (
	"github.com/spf13/cobra"

	"github.com/nebuladata/colbuild/pkg/ingesterr"
	"github.com/nebuladata/colbuild/pkg/validate"
)

// NewValidateCommand builds the Arrow IPC file validator command.
func NewValidateCommand(use string) *cobra.Command {
	opts := validate.DefaultOptions()

	cmd := &cobra.Command{
		Use:   use + " <arrow_file>",
		Short: "Validate an Arrow IPC file's content against output invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.CheckSafe, "check-safe", opts.CheckSafe, "Check every string value and column name is valid UTF-8")
	flags.BoolVar(&opts.CheckFloatsAllFinite, "check-floats-all-finite", opts.CheckFloatsAllFinite, "Fail if any float column holds NaN or Inf")
	flags.BoolVar(&opts.CheckDictionaryValuesAllUsed, "check-dictionary-values-all-used", opts.CheckDictionaryValuesAllUsed, "Fail if a dictionary column has an entry no row references")
	flags.BoolVar(&opts.CheckDictionaryValuesNotNull, "check-dictionary-values-not-null", opts.CheckDictionaryValuesNotNull, "Fail if a dictionary column's value set contains a null")
	flags.BoolVar(&opts.CheckDictionaryValuesUnique, "check-dictionary-values-unique", opts.CheckDictionaryValuesUnique, "Fail if a dictionary column's value set has a duplicate")
	flags.BoolVar(&opts.CheckColumnNameControlChars, "check-column-name-control-characters", opts.CheckColumnNameControlChars, "Fail if any column name contains a control character")
	flags.Uint32Var(&opts.CheckColumnNameMaxBytes, "check-column-name-max-bytes", opts.CheckColumnNameMaxBytes, "Fail if any column name exceeds this many bytes (0 = unchecked)")

	return cmd
}

func runValidate(inputPath string, opts validate.Options) error {
	f, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := validate.File(f, opts); err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeData, "validation failed")
	}
	return nil
}
