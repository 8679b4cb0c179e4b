// Package main provee litioctl, la herramienta de mantenimiento del almacén.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/jhoicas/litio-erp/internal/application/auth"
	"github.com/jhoicas/litio-erp/internal/application/backup"
	"github.com/jhoicas/litio-erp/internal/application/billing"
	"github.com/jhoicas/litio-erp/internal/application/notifier"
	"github.com/jhoicas/litio-erp/internal/application/stats"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/internal/infrastructure/store"
	"github.com/jhoicas/litio-erp/pkg/config"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env configuración, logger y almacén abiertos para un comando.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store repository.RecordStore
	close func()
}

func openEnv(ctx context.Context, verbose bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Output: os.Stderr})
	s, closeFn, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: s, close: closeFn}, nil
}

func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "litioctl",
		Short: "Mantenimiento del almacén de Litio ERP",
		Long: `Operaciones de respaldo y mantenimiento sobre el almacén configurado
(STORE_DRIVER y variables de conexión, igual que la API).

Ejemplos:
  litioctl stats
  litioctl export --out respaldo.json
  litioctl import respaldo.json
  litioctl clear --yes
  litioctl seed
  litioctl notify
`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log detallado en stderr")

	run := func(fn func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			e, err := openEnv(ctx, verbose)
			if err != nil {
				return err
			}
			defer e.close()
			return fn(ctx, e, args)
		}
	}

	cmd.AddCommand(statsCmd(run), exportCmd(run), importCmd(run), clearCmd(run), seedCmd(run), notifyCmd(run))
	return cmd
}

type runner func(fn func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error

func statsCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Cantidad de registros por colección",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, e *env, _ []string) error {
			s, err := stats.NewUseCase(e.store).Stats(ctx)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(s))
			for k := range s {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				fmt.Printf("%-20s %d\n", k, s[k])
			}
			return nil
		}),
	}
}

func exportCmd(run runner) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporta el respaldo JSON completo",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, e *env, _ []string) error {
			doc, err := backup.NewUseCase(e.store, e.log).Export(ctx)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = os.Stdout.Write(doc)
				return err
			}
			if out == "" {
				out = backup.FileName(time.Now())
			}
			if err := os.WriteFile(out, doc, 0o600); err != nil {
				return fmt.Errorf("escribir %s: %w", out, err)
			}
			fmt.Printf("respaldo escrito en %s (%d bytes)\n", out, len(doc))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Archivo destino (\"-\" para stdout; por defecto litio-erp-backup-<fecha>.json)")
	return cmd
}

func importCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "import <archivo>",
		Short: "Importa un respaldo JSON, reemplazando cada colección presente",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, e *env, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("leer %s: %w", args[0], err)
			}
			res, err := backup.NewUseCase(e.store, e.log).Import(ctx, data)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(res)
		}),
	}
}

func clearCmd(run runner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Borra todas las colecciones, incluidas credenciales y sesiones",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, e *env, _ []string) error {
			if !yes {
				return fmt.Errorf("operación destructiva: confirmar con --yes")
			}
			if err := backup.NewUseCase(e.store, e.log).Clear(ctx); err != nil {
				return err
			}
			fmt.Println("almacén vaciado")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirma el borrado")
	return cmd
}

func seedCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Siembra los usuarios por defecto y la configuración si faltan",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, e *env, _ []string) error {
			authUC := auth.NewAuthUseCase(e.store, auth.Config{
				Secret:     e.cfg.JWT.Secret,
				ExpMinutes: e.cfg.JWT.Expiration,
				Issuer:     e.cfg.JWT.Issuer,
				BcryptCost: e.cfg.Auth.BcryptCost,
			}, e.log)
			if err := authUC.InitializeUsers(ctx); err != nil {
				return err
			}
			if _, err := usecase.NewSettingsUseCase(e.store, e.log).Get(ctx); err != nil {
				return err
			}
			fmt.Println("usuarios y configuración listos")
			return nil
		}),
	}
}

func notifyCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Ejecuta una pasada del notificador de vencimientos",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, e *env, _ []string) error {
			taxRate, err := billing.ParseTaxRate(e.cfg.Billing.TaxRate)
			if err != nil {
				return err
			}
			job := notifier.NewJob(
				usecase.NewWorkshopUseCase(e.store, e.log),
				usecase.NewNotificationUseCase(e.store, e.log),
				billing.NewInvoiceUseCase(e.store, taxRate, e.log),
				usecase.NewSettingsUseCase(e.store, e.log),
				e.cfg.Notifier.Interval, e.log,
			)
			res, err := job.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("vencidas: %d, por vencer: %d, demoradas: %d, facturas vencidas: %d\n", res.Overdue, res.Deadline, res.Delayed, res.InvoicesOverdue)
			return nil
		}),
	}
}
