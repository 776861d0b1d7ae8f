package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"crovpos/internal/config"
	"crovpos/internal/infra"
	"crovpos/internal/worker"

	"github.com/spf13/cobra"
)

var colasFallidos int64

var colasCmd = &cobra.Command{
	Use:   "colas",
	Short: "Show pending and dead-lettered jobs per queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		colas := []string{worker.QueueReportes, worker.QueueEmail}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COLA\tPENDIENTES\tDLQ")
		for _, q := range colas {
			pendientes, err := worker.QueueLength(cmd.Context(), rdb, q)
			if err != nil {
				return fmt.Errorf("%s: %w", q, err)
			}
			muertos, err := worker.DLQLength(cmd.Context(), rdb, q)
			if err != nil {
				return fmt.Errorf("%s dlq: %w", q, err)
			}
			fmt.Fprintf(w, "%s\t%d\t%d\n", q, pendientes, muertos)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if colasFallidos <= 0 {
			return nil
		}
		var fallidos []worker.DLQEntry
		for _, q := range colas {
			entries, err := worker.ListDLQ(cmd.Context(), rdb, q, colasFallidos)
			if err != nil {
				return fmt.Errorf("%s dlq: %w", q, err)
			}
			fallidos = append(fallidos, entries...)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return escribirFallidos(cmd.OutOrStdout(), fallidos)
	},
}

func init() {
	colasCmd.Flags().Int64Var(&colasFallidos, "fallidos", 0, "also list the last N dead-lettered jobs per queue")
}

// escribirFallidos prints one row per dead-lettered job. Report jobs show the
// branch and date they were for; email jobs show the subject.
func escribirFallidos(out io.Writer, entries []worker.DLQEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLA\tTIPO\tFALLÓ\tINTENTOS\tDETALLE\tMOTIVO")
	for _, e := range entries {
		detalle := e.Asunto
		if e.SucursalID != "" {
			detalle = fmt.Sprintf("%s %s %s", e.SucursalID, e.Tipo, e.Fecha)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.OriginalQueue, e.JobType, e.FailedAt.Format(time.DateTime), e.Attempts, detalle, e.Reason)
	}
	return w.Flush()
}
