// agendactl tareas de operación: migraciones del esquema e importación del
// organigrama inicial.
//
// Uso:
//
//	agendactl migrate up
//	agendactl migrate down -n 1
//	agendactl migrate version
//	agendactl migrate force 1
//	agendactl seed --sectors setores.csv --users usuarios.csv [--latin1]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Agenda-api/internal/application/orgchart"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Agenda-api/pkg/config"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "agendactl",
	Short:         "Operación de Agenda API",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// newMigrator lee la configuración y abre el migrador. El llamador debe cerrar.
func newMigrator() (*postgres.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	return postgres.NewMigrator(cfg.DB.ConnectionString())
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Gestionar migraciones del esquema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Aplicar migraciones pendientes",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Up(); err != nil {
			return err
		}
		return printVersion(cmd, m)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revertir migraciones",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Down(steps); err != nil {
			return err
		}
		return printVersion(cmd, m)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Mostrar la versión del esquema",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()
		return printVersion(cmd, m)
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Fijar la versión sin ejecutar SQL (estado dirty)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("versión inválida %q", args[0])
		}
		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Force(version); err != nil {
			return err
		}
		return printVersion(cmd, m)
	},
}

func printVersion(cmd *cobra.Command, m *postgres.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Versión del esquema: %d", v)
	if dirty {
		cmd.Print(" (dirty)")
	}
	cmd.Println()
	return nil
}

// seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Importar sectores y usuarios desde CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectorsPath, _ := cmd.Flags().GetString("sectors")
		usersPath, _ := cmd.Flags().GetString("users")
		latin1, _ := cmd.Flags().GetBool("latin1")
		if sectorsPath == "" && usersPath == "" {
			return fmt.Errorf("indique --sectors y/o --users")
		}

		var sectors []orgchart.SectorRow
		if sectorsPath != "" {
			f, err := os.Open(sectorsPath)
			if err != nil {
				return fmt.Errorf("abrir %s: %w", sectorsPath, err)
			}
			sectors, err = orgchart.ReadSectors(f, latin1)
			f.Close()
			if err != nil {
				return err
			}
		}
		var users []orgchart.UserRow
		if usersPath != "" {
			f, err := os.Open(usersPath)
			if err != nil {
				return fmt.Errorf("abrir %s: %w", usersPath, err)
			}
			users, err = orgchart.ReadUsers(f, latin1)
			f.Close()
			if err != nil {
				return err
			}
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "agendactl"})
		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()
		_, tx := postgres.NewStore(pool, cfg.DB)

		sum, err := orgchart.NewImporter(tx, log).Import(ctx, sectors, users)
		if err != nil {
			return err
		}
		cmd.Printf("Sectores: %d creados, %d existentes\n", sum.SectorsCreated, sum.SectorsSkipped)
		cmd.Printf("Usuarios: %d creados, %d existentes\n", sum.UsersCreated, sum.UsersSkipped)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateDownCmd.Flags().IntP("steps", "n", 1, "Cantidad de migraciones a revertir")
	migrateCmd.AddCommand(migrateVersionCmd)
	migrateCmd.AddCommand(migrateForceCmd)

	seedCmd.Flags().String("sectors", "", "CSV de sectores (name,parent,description)")
	seedCmd.Flags().String("users", "", "CSV de usuarios (email,name,role,sector,password)")
	seedCmd.Flags().Bool("latin1", false, "Los CSV están en ISO-8859-1")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
