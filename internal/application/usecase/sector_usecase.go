package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// SectorUseCase directorio de sectores con jerarquía y conteos.
type SectorUseCase struct {
	sectors repository.SectorRepository
	users   repository.UserRepository
	tx      repository.TxRunner
	policy  *policy.Provider
	log     *logger.Logger
}

// NewSectorUseCase construye el caso de uso.
func NewSectorUseCase(
	sectors repository.SectorRepository,
	users repository.UserRepository,
	tx repository.TxRunner,
	provider *policy.Provider,
	log *logger.Logger,
) *SectorUseCase {
	return &SectorUseCase{sectors: sectors, users: users, tx: tx, policy: provider, log: log.Component("sectors")}
}

// List devuelve todos los sectores con view_all_sectors; si no, los alcanzables.
func (uc *SectorUseCase) List(ctx context.Context, actor *access.Actor) ([]dto.SectorResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	all := access.HasPermission(actor, access.ViewAllSectors)
	reach := snap.Evaluator.AccessibleSectors(actor)
	out := make([]dto.SectorResponse, 0, len(snap.Sectors))
	for _, s := range snap.Sectors {
		if all || reach.Has(s.ID) {
			out = append(out, dto.NewSectorResponse(s))
		}
	}
	return out, nil
}

// Get ficha del sector. Gerente y miembros se consultan en paralelo.
func (uc *SectorUseCase) Get(ctx context.Context, actor *access.Actor, id int64) (*dto.SectorDetailResponse, error) {
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	sector := snap.Sector(id)
	if sector == nil {
		return nil, domain.ErrNotFound
	}
	if !snap.Evaluator.CanViewSector(actor, id) {
		return nil, denied(uc.log, actor, "ver sector", "sector", id)
	}

	type managerResult struct {
		user *entity.User
		err  error
	}
	type membersResult struct {
		users []*entity.User
		err   error
	}
	managerCh := make(chan managerResult, 1)
	membersCh := make(chan membersResult, 1)

	go func() {
		if sector.ManagerID == nil {
			managerCh <- managerResult{}
			return
		}
		u, err := uc.users.GetByID(ctx, *sector.ManagerID)
		managerCh <- managerResult{u, err}
	}()
	go func() {
		us, err := uc.users.List(ctx, repository.UserFilter{SectorIDs: []int64{id}})
		membersCh <- membersResult{us, err}
	}()

	manager := <-managerCh
	members := <-membersCh
	if manager.err != nil {
		return nil, fmt.Errorf("sector: gerente: %w", manager.err)
	}
	if members.err != nil {
		return nil, fmt.Errorf("sector: miembros: %w", members.err)
	}

	out := &dto.SectorDetailResponse{
		SectorResponse: dto.NewSectorResponse(sector),
		Members:        make([]dto.UserResponse, 0, len(members.users)),
		Children:       []dto.SectorResponse{},
		Accessible:     uc.reachableBelow(snap, actor, id),
	}
	if manager.user != nil {
		m := dto.NewUserResponse(manager.user)
		out.Manager = &m
	}
	for _, u := range members.users {
		out.Members = append(out.Members, dto.NewUserResponse(u))
	}
	for _, s := range snap.Sectors {
		if s.ParentID != nil && *s.ParentID == id && s.ID != id {
			out.Children = append(out.Children, dto.NewSectorResponse(s))
		}
	}
	return out, nil
}

// Accessible ids del subárbol de id que el actor puede alcanzar.
func (uc *SectorUseCase) Accessible(ctx context.Context, actor *access.Actor, id int64) (*dto.AccessibleSectorsResponse, error) {
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Sector(id) == nil {
		return nil, domain.ErrNotFound
	}
	if !snap.Evaluator.CanViewSector(actor, id) {
		return nil, denied(uc.log, actor, "ver sector", "sector", id)
	}
	return &dto.AccessibleSectorsResponse{SectorID: id, Accessible: uc.reachableBelow(snap, actor, id)}, nil
}

func (uc *SectorUseCase) reachableBelow(snap *policy.Snapshot, actor *access.Actor, id int64) []int64 {
	reach := snap.Evaluator.AccessibleSectors(actor)
	out := []int64{}
	for _, d := range snap.Evaluator.Hierarchy().Descendants(id) {
		if reach.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Create requiere create_sector. El padre y el gerente deben existir.
func (uc *SectorUseCase) Create(ctx context.Context, actor *access.Actor, in dto.SectorRequest) (*dto.SectorResponse, error) {
	if !access.HasPermission(actor, access.CreateSector) {
		return nil, denied(uc.log, actor, "crear sector", "sector", 0)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil && snap.Sector(*in.ParentID) == nil {
		return nil, fmt.Errorf("%w: sector padre %d no existe", domain.ErrInvalidInput, *in.ParentID)
	}
	if err := uc.checkManager(ctx, in.ManagerID); err != nil {
		return nil, err
	}

	sector := &entity.Sector{Name: name, Description: strings.TrimSpace(in.Description), ManagerID: in.ManagerID, ParentID: in.ParentID}
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Sectors.Create(ctx, sector); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditCreateSector, "sector", sector.ID, sector.Name))
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewSectorResponse(sector)
	return &out, nil
}

// Update reemplaza los datos del sector. Cambiar el padre exige edit_sector y no
// puede cerrar un ciclo.
func (uc *SectorUseCase) Update(ctx context.Context, actor *access.Actor, id int64, in dto.SectorRequest) (*dto.SectorResponse, error) {
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	current := snap.Sector(id)
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if !snap.Evaluator.CanEditSector(actor, &id) {
		return nil, denied(uc.log, actor, "editar sector", "sector", id)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if !sameID(current.ParentID, in.ParentID) {
		if !access.HasPermission(actor, access.EditSector) && actor.Role != entity.RoleITAdmin {
			return nil, denied(uc.log, actor, "mover sector", "sector", id)
		}
		if in.ParentID != nil && snap.Sector(*in.ParentID) == nil {
			return nil, fmt.Errorf("%w: sector padre %d no existe", domain.ErrInvalidInput, *in.ParentID)
		}
		if access.WouldCreateCycle(snap.Sectors, id, in.ParentID) {
			return nil, domain.ErrSectorCycle
		}
	}
	if err := uc.checkManager(ctx, in.ManagerID); err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = name
	updated.Description = strings.TrimSpace(in.Description)
	updated.ManagerID = in.ManagerID
	updated.ParentID = in.ParentID
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Sectors.Update(ctx, &updated); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditUpdateSector, "sector", id, updated.Name))
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewSectorResponse(&updated)
	return &out, nil
}

// Delete requiere delete_sector y un sector sin usuarios ni sub-sectores.
func (uc *SectorUseCase) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if !access.HasPermission(actor, access.DeleteSector) {
		return denied(uc.log, actor, "eliminar sector", "sector", id)
	}
	sector, err := uc.sectors.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("eliminar sector: %w", err)
	}
	if sector == nil {
		return domain.ErrNotFound
	}
	if sector.Users > 0 || sector.SubSectors > 0 {
		return fmt.Errorf("%w: el sector tiene %d usuario(s) y %d sub-sector(es)", domain.ErrConflict, sector.Users, sector.SubSectors)
	}
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Sectors.Delete(ctx, id); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditDeleteSector, "sector", id, sector.Name))
	})
}

func (uc *SectorUseCase) checkManager(ctx context.Context, managerID *int64) error {
	if managerID == nil {
		return nil
	}
	u, err := uc.users.GetByID(ctx, *managerID)
	if err != nil {
		return fmt.Errorf("sector: gerente: %w", err)
	}
	if u == nil {
		return fmt.Errorf("%w: gerente %d no existe", domain.ErrInvalidInput, *managerID)
	}
	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
