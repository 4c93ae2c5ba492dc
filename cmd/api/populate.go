package main

import (
	"github.com/spf13/cobra"
)

func populateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Importa clínicas e especialidades da planilha de referência",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.SeedFile
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			out, err := newPopulateUseCase(db, file, logger).Execute(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().
				Str("file", file).
				Int("inserted_clinics", out.InsertedClinics).
				Int("inserted_specialties", out.InsertedSpecialties).
				Int64("clinics", out.TotalClinics).
				Int64("specialties", out.TotalSpecialties).
				Msg("importação concluída")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "caminho do .xlsx (padrão: SEED_FILE)")
	return cmd
}
