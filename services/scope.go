package services

// Scope is the resolved identity of the caller. Every scoped operation
// filters reads by WorkshopID and stamps it on writes.
type Scope struct {
	UserID     uint   `json:"id"`
	Role       string `json:"role"`
	WorkshopID uint   `json:"workshop_id"`
}

func (s Scope) validate() error {
	if s.WorkshopID == 0 {
		return unauthorized("missing workshop scope")
	}
	return nil
}
