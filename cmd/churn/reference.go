package main

import (
	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/features"
	"github.com/spf13/cobra"
)

func referenceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "Show reference dataset statistics",
		Long: `Load the reference dataset and show the statistics used to normalize
loyalty and engagement, plus the medians used to fill missing values.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ds, err := a.loadReference()
			if err != nil {
				return err
			}
			if err := cli.WriteReference(a.out, ds); err != nil {
				return err
			}
			// Surface a degenerate population here rather than at the first prediction.
			_, err = features.NewPipeline(ds)
			return err
		},
	}
}
