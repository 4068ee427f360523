package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type refKind uint8

const (
	refNone refKind = iota
	refByID
	refByObject
)

// Ref referencia débil a un usuario (participante, responsable, asignado).
// Llega como id escalar o como objeto {userId, id, user:{id}}.
type Ref struct {
	kind   refKind
	id     int64
	userID *int64
	objID  *int64
	nested *int64
}

// RefByID construye una referencia por id escalar.
func RefByID(id int64) Ref {
	return Ref{kind: refByID, id: id}
}

// RefByObject construye una referencia con la forma de objeto.
func RefByObject(userID, id, nestedUserID *int64) Ref {
	return Ref{kind: refByObject, userID: userID, objID: id, nested: nestedUserID}
}

// Resolve devuelve el id de usuario referenciado. Prioridad: userId, id, user.id.
func (r Ref) Resolve() (int64, bool) {
	switch r.kind {
	case refByID:
		return r.id, true
	case refByObject:
		switch {
		case r.userID != nil:
			return *r.userID, true
		case r.objID != nil:
			return *r.objID, true
		case r.nested != nil:
			return *r.nested, true
		}
	}
	return 0, false
}

// Refers informa si la referencia apunta al usuario indicado.
func (r Ref) Refers(userID int64) bool {
	id, ok := r.Resolve()
	return ok && id == userID
}

type refObject struct {
	UserID *int64 `json:"userId,omitempty"`
	ID     *int64 `json:"id,omitempty"`
	User   *struct {
		ID *int64 `json:"id,omitempty"`
	} `json:"user,omitempty"`
}

// UnmarshalJSON acepta un número o un objeto.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] != '{' {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("ref: id inválido: %w", err)
		}
		*r = RefByID(id)
		return nil
	}
	var obj refObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ref: objeto inválido: %w", err)
	}
	var nested *int64
	if obj.User != nil {
		nested = obj.User.ID
	}
	*r = RefByObject(obj.UserID, obj.ID, nested)
	return nil
}

// MarshalJSON serializa por id escalar cuando se puede resolver.
func (r Ref) MarshalJSON() ([]byte, error) {
	if id, ok := r.Resolve(); ok {
		return json.Marshal(id)
	}
	return []byte("null"), nil
}

// ResolveRefs devuelve los ids resolubles de una lista de referencias.
func ResolveRefs(refs []Ref) []int64 {
	out := make([]int64, 0, len(refs))
	for _, r := range refs {
		if id, ok := r.Resolve(); ok {
			out = append(out, id)
		}
	}
	return out
}
