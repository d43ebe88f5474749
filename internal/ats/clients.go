package ats

import (
	"context"
	"errors"
	"fmt"

	"atrios.org/internal/auth"
)

// Clients is the registry of hiring companies.
type Clients struct {
	store Store
	users UserDirectory
	files FileRemover
	audit Recorder
}

// NewClients constructs the client registry.
func NewClients(store Store, users UserDirectory, files FileRemover, audit Recorder) *Clients {
	if audit == nil {
		audit = noopRecorder{}
	}
	return &Clients{store: store, users: users, files: files, audit: audit}
}

// Create registers a client owned by an active staff user.
func (s *Clients) Create(ctx context.Context, actor auth.Principal, in ClientInput, agreementPath string) (*Client, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	c := &Client{
		CompanyName:   in.CompanyName,
		ContactName:   in.ContactName,
		Email:         in.Email,
		Phone:         in.Phone,
		Website:       in.Website,
		Address:       in.Address,
		AssignedTo:    in.AssignedTo,
		AgreementPath: agreementPath,
		Status:        ClientStatusActive,
	}
	if err := s.store.Clients(ctx).Create(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.User.ID, "client.created", "client", c.ID, "Added client "+c.CompanyName)
	return c, nil
}

// Update applies the edit form. When newAgreementPath is non-empty the
// previous document is deleted only after the replacement is persisted.
func (s *Clients) Update(ctx context.Context, actor auth.Principal, id string, in ClientInput, newAgreementPath string) (*Client, error) {
	c, err := s.store.Clients(ctx).Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	oldAgreement := c.AgreementPath
	c.CompanyName = in.CompanyName
	c.ContactName = in.ContactName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Website = in.Website
	c.Address = in.Address
	c.AssignedTo = in.AssignedTo
	if newAgreementPath != "" {
		c.AgreementPath = newAgreementPath
	}
	if err := s.store.Clients(ctx).Update(ctx, c); err != nil {
		return nil, err
	}
	if newAgreementPath != "" && oldAgreement != "" && oldAgreement != newAgreementPath && s.files != nil {
		// Best effort: the new document is already stored and recorded.
		_ = s.files.Remove(oldAgreement)
	}
	s.audit.Record(ctx, actor.User.ID, "client.updated", "client", c.ID, "Updated client "+c.CompanyName)
	return c, nil
}

// Deactivate soft-deletes a client. Refused while any owned job is still in
// draft or active status.
func (s *Clients) Deactivate(ctx context.Context, actor auth.Principal, id string) error {
	c, err := s.store.Clients(ctx).Find(ctx, id)
	if err != nil {
		return err
	}
	open, err := s.store.Clients(ctx).CountOpenJobs(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return &ConflictError{Reason: fmt.Sprintf("client has %d open job(s); close them first", open)}
	}
	if err := s.store.Clients(ctx).SetStatus(ctx, id, ClientStatusInactive); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.User.ID, "client.deactivated", "client", id, "Deactivated client "+c.CompanyName)
	return nil
}

// Find loads one client.
func (s *Clients) Find(ctx context.Context, id string) (*Client, error) {
	return s.store.Clients(ctx).Find(ctx, id)
}

// List returns clients matching the filter. The HTTP layer restricts this
// page to admins and managers.
func (s *Clients) List(ctx context.Context, filter ClientFilter, page Page) ([]*Client, error) {
	return s.store.Clients(ctx).List(ctx, filter, page.Normalize())
}

func (s *Clients) validate(ctx context.Context, in *ClientInput) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	if in.Phone != "" {
		phone, err := NormalizePhone(in.Phone)
		if err != nil {
			return err
		}
		in.Phone = phone
	}
	owner, err := s.users.Find(ctx, in.AssignedTo)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return newFieldError("assigned_to", "must be an existing user")
		}
		return err
	}
	if !owner.Active() {
		return newFieldError("assigned_to", "must be an active user")
	}
	return nil
}
