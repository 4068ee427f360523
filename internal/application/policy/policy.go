// Package policy arma el evaluador de acceso sobre la jerarquía vigente de sectores.
package policy

import (
	"context"
	"fmt"

	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

// Snapshot evaluador y sectores leídos en la misma consulta.
type Snapshot struct {
	Evaluator *access.Evaluator
	Sectors   []*entity.Sector
}

// Sector busca un sector del snapshot por id.
func (s *Snapshot) Sector(id int64) *entity.Sector {
	for _, sec := range s.Sectors {
		if sec.ID == id {
			return sec
		}
	}
	return nil
}

// Provider construye un Snapshot por petición; la jerarquía se lee siempre fresca.
type Provider struct {
	sectors   repository.SectorRepository
	executive []string
}

// NewProvider construye el proveedor. executive vacío usa los sectores ejecutivos por defecto.
func NewProvider(sectors repository.SectorRepository, executive []string) *Provider {
	return &Provider{sectors: sectors, executive: executive}
}

// Load lee los sectores y arma el evaluador.
func (p *Provider) Load(ctx context.Context) (*Snapshot, error) {
	sectors, err := p.sectors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: listar sectores: %w", err)
	}
	opts := []access.Option{}
	if len(p.executive) > 0 {
		opts = append(opts, access.WithExecutiveSectors(p.executive...))
	}
	return &Snapshot{
		Evaluator: access.NewEvaluator(access.HierarchyFromSectors(sectors), opts...),
		Sectors:   sectors,
	}, nil
}
