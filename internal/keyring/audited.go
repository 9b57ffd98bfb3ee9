package keyring

import (
	"log/slog"

	"github.com/benaskins/latch/internal/audit"
	"github.com/benaskins/latch/internal/credential"
)

// AuditedEntry wraps a Store and records every operation to an audit log.
// The password itself is never logged.
type AuditedEntry struct {
	inner Store
	audit *audit.Logger
	actor string
}

// NewAuditedEntry wraps inner. actor names who is acting, e.g. "cli".
func NewAuditedEntry(inner Store, auditLog *audit.Logger, actor string) *AuditedEntry {
	return &AuditedEntry{inner: inner, audit: auditLog, actor: actor}
}

func (a *AuditedEntry) Credential() credential.PlatformCredential {
	return a.inner.Credential()
}

func (a *AuditedEntry) SetPassword(password string) error {
	err := a.inner.SetPassword(password)
	a.record(audit.ActionCredentialWrite, err)
	return err
}

func (a *AuditedEntry) GetPassword() (string, error) {
	password, err := a.inner.GetPassword()
	a.record(audit.ActionCredentialRead, err)
	return password, err
}

func (a *AuditedEntry) DeletePassword() error {
	err := a.inner.DeletePassword()
	a.record(audit.ActionCredentialDelete, err)
	return err
}

// record is best-effort: a failure to write the audit log is reported but
// does not change the outcome of the operation.
func (a *AuditedEntry) record(action audit.Action, opErr error) {
	entry := describe(a.inner.Credential())
	entry.Action = action
	entry.Actor = a.actor
	if opErr != nil {
		entry.Outcome = "error"
		if kind, ok := credential.KindOf(opErr); ok {
			entry.Outcome = kind.String()
		}
		entry.Error = opErr.Error()
	}

	if err := a.audit.Log(entry); err != nil {
		slog.Warn("audit log write failed", "action", action, "path", a.audit.Path(), "error", err)
	}
}

func describe(cred credential.PlatformCredential) audit.Entry {
	if cred == nil {
		return audit.Entry{}
	}
	service, user := credential.Identity(cred)
	entry := audit.Entry{
		Platform: string(cred.Platform()),
		Service:  service,
		Account:  user,
	}
	if mac, ok := cred.(*credential.MacCredential); ok {
		entry.Domain = mac.Domain.String()
	}
	return entry
}
