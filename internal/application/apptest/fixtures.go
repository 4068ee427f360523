package apptest

import (
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// Ids del organigrama de prueba:
//
//	1 Presidência
//	└── 2 DAF
//	    ├── 4 Compras
//	    └── 5 Contabilidade
//	3 TI
const (
	SectorPresidency int64 = 1
	SectorDAF        int64 = 2
	SectorIT         int64 = 3
	SectorPurchasing int64 = 4
	SectorAccounting int64 = 5
)

// Ids de usuarios de prueba.
const (
	UserAdmin        int64 = 1
	UserPresident    int64 = 2
	UserManagerDAF   int64 = 7
	UserCollabBuying int64 = 8
	UserCollabIT     int64 = 9
	UserITAdmin      int64 = 10
)

func ptr(v int64) *int64 { return &v }

// Seed carga el organigrama y los usuarios de prueba. hash es el PasswordHash común.
func Seed(s *Store, hash string) {
	s.AddSector(SectorPresidency, "Presidência", nil)
	s.AddSector(SectorDAF, "DAF", ptr(SectorPresidency))
	s.AddSector(SectorIT, "TI", nil)
	s.AddSector(SectorPurchasing, "Compras", ptr(SectorDAF))
	s.AddSector(SectorAccounting, "Contabilidade", ptr(SectorDAF))

	s.AddUser(entity.User{ID: UserAdmin, Email: "admin@org.br", Name: "Admin", Role: entity.RoleAdmin, SectorID: SectorIT, PasswordHash: hash})
	s.AddUser(entity.User{ID: UserPresident, Email: "pres@org.br", Name: "Presidente", Role: entity.RoleManager, SectorID: SectorPresidency, PasswordHash: hash})
	s.AddUser(entity.User{ID: UserManagerDAF, Email: "ana@org.br", Name: "Ana", Role: entity.RoleManager, SectorID: SectorDAF, PasswordHash: hash})
	s.AddUser(entity.User{ID: UserCollabBuying, Email: "bia@org.br", Name: "Bia", Role: entity.RoleCollaborator, SectorID: SectorPurchasing, PasswordHash: hash})
	s.AddUser(entity.User{ID: UserCollabIT, Email: "caio@org.br", Name: "Caio", Role: entity.RoleCollaborator, SectorID: SectorIT, PasswordHash: hash})
	s.AddUser(entity.User{ID: UserITAdmin, Email: "ti@org.br", Name: "Suporte", Role: entity.RoleITAdmin, SectorID: SectorIT, PasswordHash: hash})
}

// Actor devuelve el actor de un usuario sembrado.
func (s *Store) Actor(userID int64) *access.Actor {
	return access.ActorFromUser(s.User(userID))
}
