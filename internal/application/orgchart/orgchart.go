// Package orgchart importa el organigrama inicial (sectores y usuarios) desde
// archivos CSV exportados por RR.HH., en UTF-8 o ISO-8859-1.
package orgchart

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/pkg/logger"
	"github.com/jhoicas/Agenda-api/pkg/textfold"
)

const minPasswordLen = 8

// SectorRow fila del CSV de sectores: name,parent,description.
type SectorRow struct {
	Name        string
	Parent      string
	Description string
}

// UserRow fila del CSV de usuarios: email,name,role,sector,password.
type UserRow struct {
	Email    string
	Name     string
	Role     string
	Sector   string
	Password string
}

// Summary resultado de una importación.
type Summary struct {
	SectorsCreated int
	SectorsSkipped int
	UsersCreated   int
	UsersSkipped   int
}

// ReadSectors lee el CSV de sectores. La primera fila es la cabecera.
func ReadSectors(r io.Reader, latin1 bool) ([]SectorRow, error) {
	records, err := readCSV(r, latin1, 2)
	if err != nil {
		return nil, err
	}
	out := make([]SectorRow, 0, len(records))
	for _, rec := range records {
		row := SectorRow{Name: field(rec, 0), Parent: field(rec, 1), Description: field(rec, 2)}
		if row.Name == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// ReadUsers lee el CSV de usuarios. La primera fila es la cabecera.
func ReadUsers(r io.Reader, latin1 bool) ([]UserRow, error) {
	records, err := readCSV(r, latin1, 5)
	if err != nil {
		return nil, err
	}
	out := make([]UserRow, 0, len(records))
	for _, rec := range records {
		row := UserRow{
			Email:    strings.ToLower(field(rec, 0)),
			Name:     field(rec, 1),
			Role:     strings.ToUpper(field(rec, 2)),
			Sector:   field(rec, 3),
			Password: field(rec, 4),
		}
		if row.Email == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func readCSV(r io.Reader, latin1 bool, minFields int) ([][]string, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", domain.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	records = records[1:]
	for i, rec := range records {
		if len(rec) < minFields {
			return nil, fmt.Errorf("%w: fila %d: se esperaban al menos %d columnas", domain.ErrInvalidInput, i+2, minFields)
		}
	}
	return records, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Importer carga el organigrama en una única transacción. Es idempotente:
// sectores con el mismo nombre y usuarios con el mismo email se omiten.
type Importer struct {
	tx   repository.TxRunner
	log  *logger.Logger
	cost int
}

// NewImporter construye el importador.
func NewImporter(tx repository.TxRunner, log *logger.Logger) *Importer {
	return &Importer{tx: tx, log: log.Component("orgchart"), cost: bcrypt.DefaultCost}
}

// WithBcryptCost ajusta el costo de bcrypt.
func (im *Importer) WithBcryptCost(cost int) *Importer {
	im.cost = cost
	return im
}

// Import crea sectores (padres antes que hijos) y luego usuarios.
func (im *Importer) Import(ctx context.Context, sectors []SectorRow, users []UserRow) (Summary, error) {
	var sum Summary
	err := im.tx.Run(ctx, func(r repository.Repos) error {
		sum = Summary{}
		ids, err := im.importSectors(ctx, r.Sectors, sectors, &sum)
		if err != nil {
			return err
		}
		return im.importUsers(ctx, r.Users, users, ids, &sum)
	})
	if err != nil {
		return Summary{}, err
	}
	im.log.Info().
		Int("sectors_created", sum.SectorsCreated).
		Int("sectors_skipped", sum.SectorsSkipped).
		Int("users_created", sum.UsersCreated).
		Int("users_skipped", sum.UsersSkipped).
		Msg("organigrama importado")
	return sum, nil
}

// importSectors devuelve el índice nombre plegado → id, incluidos los existentes.
func (im *Importer) importSectors(ctx context.Context, repo repository.SectorRepository, rows []SectorRow, sum *Summary) (map[string]int64, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar sectores: %w", err)
	}
	ids := make(map[string]int64, len(existing)+len(rows))
	for _, s := range existing {
		ids[textfold.Key(s.Name)] = s.ID
	}

	pending := rows
	for len(pending) > 0 {
		var next []SectorRow
		for _, row := range pending {
			key := textfold.Key(row.Name)
			if _, ok := ids[key]; ok {
				sum.SectorsSkipped++
				continue
			}
			var parentID *int64
			if row.Parent != "" {
				pid, ok := ids[textfold.Key(row.Parent)]
				if !ok {
					next = append(next, row)
					continue
				}
				parentID = &pid
			}
			sec := &entity.Sector{Name: row.Name, Description: row.Description, ParentID: parentID}
			if err := repo.Create(ctx, sec); err != nil {
				return nil, fmt.Errorf("crear sector %q: %w", row.Name, err)
			}
			ids[key] = sec.ID
			sum.SectorsCreated++
		}
		if len(next) == len(pending) {
			names := make([]string, 0, len(next))
			for _, row := range next {
				names = append(names, row.Name+" ← "+row.Parent)
			}
			return nil, fmt.Errorf("%w: padres desconocidos o en ciclo: %s", domain.ErrInvalidInput, strings.Join(names, ", "))
		}
		pending = next
	}
	return ids, nil
}

func (im *Importer) importUsers(ctx context.Context, repo repository.UserRepository, rows []UserRow, sectors map[string]int64, sum *Summary) error {
	for i, row := range rows {
		line := i + 2
		found, err := repo.GetByEmail(ctx, row.Email)
		if err != nil {
			return fmt.Errorf("buscar usuario %q: %w", row.Email, err)
		}
		if found != nil {
			sum.UsersSkipped++
			continue
		}
		role := entity.Role(row.Role)
		if !role.Valid() {
			return fmt.Errorf("%w: fila %d: rol %q desconocido", domain.ErrInvalidInput, line, row.Role)
		}
		sectorID, ok := sectors[textfold.Key(row.Sector)]
		if !ok {
			return fmt.Errorf("%w: fila %d: sector %q desconocido", domain.ErrInvalidInput, line, row.Sector)
		}
		if len(row.Password) < minPasswordLen {
			return fmt.Errorf("%w: fila %d: password debe tener al menos %d caracteres", domain.ErrInvalidInput, line, minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(row.Password), im.cost)
		if err != nil {
			return err
		}
		u := &entity.User{
			Email:        row.Email,
			Name:         nonEmpty(row.Name, row.Email),
			PasswordHash: string(hash),
			Role:         role,
			SectorID:     sectorID,
			IsActive:     true,
		}
		if err := repo.Create(ctx, u); err != nil {
			return fmt.Errorf("crear usuario %q: %w", row.Email, err)
		}
		sum.UsersCreated++
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
