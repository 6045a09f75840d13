package service

import (
	"context"

	"sukiism/internal/model"
	"sukiism/internal/repository"

	"github.com/rs/zerolog/log"
)

// Auditor records who performed each write against the spreadsheet.
type Auditor interface {
	Record(ctx context.Context, actor, action, entityCode, detail string)
}

type auditor struct {
	repo repository.AuditRepository
}

// NewAuditor persists entries through repo. A nil repo gives an auditor that
// only logs.
func NewAuditor(repo repository.AuditRepository) Auditor {
	return &auditor{repo: repo}
}

// Record never fails the caller: the spreadsheet write already happened.
func (a *auditor) Record(ctx context.Context, actor, action, entityCode, detail string) {
	log.Info().
		Str("actor", actor).
		Str("action", action).
		Str("entity", entityCode).
		Msg("audit")
	if a.repo == nil {
		return
	}
	entry := &model.AuditLog{Actor: actor, Action: action, EntityCode: entityCode, Detail: detail}
	if err := a.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Str("entity", entityCode).Msg("audit entry not persisted")
	}
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, string, string, string, string) {}

func auditorOrNop(a Auditor) Auditor {
	if a == nil {
		return nopAuditor{}
	}
	return a
}
