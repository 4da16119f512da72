package cmd

import (
	"context"

	"fmt"

	"github.com/lynnxiaofeng/parkyoga/internal/adapters/render/screen"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/spf13/cobra"
)

func newRecommendCmd(app *app) *cobra.Command {
	var manual bool
	var refresh bool
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend courses near your location",
		Long:  "recommend looks up your configured location, matches it against the served regions and suggests up to two courses. With --manual, a denied location still yields random suggestions. With --refresh, detection re-runs only when location access is already granted, without asking again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withSpinner(cmd, format, "Finding courses near you...", func(ctx context.Context) error {
				if refresh {
					app.engine.Resume(ctx)
					return nil
				}
				app.engine.Request(ctx, manual)
				return nil
			})
			if err != nil {
				return err
			}

			snapshot := app.engine.Snapshot()
			if refresh && snapshot.State == domain.LocationIdle {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Location access has not been granted; run recommend without --refresh.")
			}
			return writeScreen(cmd, format, toRecommendationView(snapshot), func() (string, error) {
				return screen.Recommendations(snapshot)
			})
		},
	}

	cmd.Flags().BoolVar(&manual, "manual", false, "Suggest random courses when location access is denied")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-detect your location if access was already granted")
	cmd.MarkFlagsMutuallyExclusive("manual", "refresh")
	format.bind(cmd)

	return cmd
}
