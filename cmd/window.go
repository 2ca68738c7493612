package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/nexthour/api/prices"
	"github.com/kilianp07/nexthour/app"
	"github.com/kilianp07/nexthour/config"
	"github.com/kilianp07/nexthour/connectors/clients/elprisen"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/core/pricing"
)

var (
	windowDuration string
	windowGLN      string
	windowMaxStart string
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Print the cheapest window for a task and exit",
	RunE:  printWindow,
}

func init() {
	windowCmd.Flags().StringVarP(&windowDuration, "duration", "d", "", "task length, e.g. 2h30m")
	windowCmd.Flags().StringVar(&windowGLN, "gln", "", "GLN number of the grid company (defaults to prices.default_gln)")
	windowCmd.Flags().StringVar(&windowMaxStart, "max-start", "", "latest allowed start time (ISO 8601)")
	_ = windowCmd.MarkFlagRequired("duration")
	rootCmd.AddCommand(windowCmd)
}

func printWindow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	core, err := app.NewCore(cfg, nil, nil)
	if err != nil {
		return err
	}

	dur, err := model.ParseTaskDuration(windowDuration)
	if err != nil {
		return err
	}
	req := pricing.Request{Partition: windowGLN, Duration: dur}
	if req.Partition == "" {
		req.Partition = cfg.Prices.DefaultGLN
	}
	if windowMaxStart != "" {
		if req.MaxStart, err = core.Engine.ParseDeadline(windowMaxStart); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Server.RequestTimeout())
	defer cancel()
	win, err := core.Engine.NextOptimalWindow(ctx, req)
	if err != nil {
		return err
	}
	win.From, win.To = win.From.UTC(), win.To.UTC()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(prices.WindowResponse{Price: win, Credits: elprisen.Credits}); err != nil {
		return err
	}
	loc := cfg.Prices.Loc()
	fmt.Fprintf(cmd.ErrOrStderr(), "start %s, end %s (%s)\n",
		win.From.In(loc).Format(time.DateTime), win.To.In(loc).Format(time.DateTime), loc)
	return nil
}
